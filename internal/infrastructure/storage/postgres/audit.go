package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/klauspost/compress/zstd"

	"fuelbook/internal/core/appctx"
	"fuelbook/internal/core/id"
	"fuelbook/internal/domain/audit"
	"fuelbook/internal/schema"
)

// CompressionAlgo specifies the compression algorithm used for a stored
// audit payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// auditCompressThreshold is the payload size above which before/after
// snapshots are stored zstd-compressed.
const auditCompressThreshold = 10 * 1024

// Compile-time check that AuditRepo implements audit.Recorder.
var _ audit.Recorder = (*AuditRepo)(nil)

// auditRow is the audit_log storage shape.
type auditRow struct {
	ID                  id.ID           `db:"id"`
	TableName           string          `db:"table_name"`
	RecordID            id.ID           `db:"record_id"`
	Action              audit.Action    `db:"action"`
	OldValues           json.RawMessage `db:"old_values"`
	NewValues           json.RawMessage `db:"new_values"`
	OldValuesCompressed []byte          `db:"old_values_compressed"`
	NewValuesCompressed []byte          `db:"new_values_compressed"`
	CompressionAlgo     CompressionAlgo `db:"compression_algo"`
	ActorID             id.ID           `db:"actor_id"`
	CreatedAt           time.Time       `db:"created_at"`
}

// AuditRepo writes the append-only audit trail. Large before/after
// snapshots are stored zstd-compressed; within a transaction, entries
// commit and roll back with the mutation they describe.
type AuditRepo struct {
	txm     *TxManager
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewAuditRepo creates the audit trail repository.
func NewAuditRepo(txm *TxManager) (*AuditRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditRepo{
		txm:     txm,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Record appends one audit entry.
func (r *AuditRepo) Record(ctx context.Context, entry audit.Entry) error {
	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	if id.IsNil(entry.ActorID) {
		entry.ActorID = appctx.GetActorID(ctx)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	row := auditRow{
		ID:              entry.ID,
		TableName:       entry.Table,
		RecordID:        entry.RecordID,
		Action:          entry.Action,
		CompressionAlgo: CompressionNone,
		ActorID:         entry.ActorID,
		CreatedAt:       entry.CreatedAt,
	}

	oldJSON, newJSON, err := marshalSnapshots(entry)
	if err != nil {
		return err
	}

	if len(oldJSON)+len(newJSON) > auditCompressThreshold {
		row.OldValuesCompressed = r.compress(oldJSON)
		row.NewValuesCompressed = r.compress(newJSON)
		row.CompressionAlgo = CompressionZstd
	} else {
		row.OldValues = oldJSON
		row.NewValues = newJSON
	}

	return InsertRecord(ctx, r.txm, schema.KindAuditLog, row)
}

// GetHistory retrieves the audit trail for one record, newest first.
func (r *AuditRepo) GetHistory(ctx context.Context, table string, recordID id.ID, limit int) ([]audit.Entry, error) {
	q := Builder().
		Select(
			"id", "table_name", "record_id", "action",
			"old_values", "new_values",
			"old_values_compressed", "new_values_compressed",
			"compression_algo", "actor_id", "created_at",
		).
		From("audit_log").
		Where(squirrel.Eq{"table_name": table, "record_id": recordID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.txm.GetQuerier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var row auditRow
		if err := rows.Scan(
			&row.ID, &row.TableName, &row.RecordID, &row.Action,
			&row.OldValues, &row.NewValues,
			&row.OldValuesCompressed, &row.NewValuesCompressed,
			&row.CompressionAlgo, &row.ActorID, &row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}

		entry, err := r.toEntry(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (r *AuditRepo) toEntry(row auditRow) (audit.Entry, error) {
	entry := audit.Entry{
		ID:        row.ID,
		Table:     row.TableName,
		RecordID:  row.RecordID,
		Action:    row.Action,
		ActorID:   row.ActorID,
		CreatedAt: row.CreatedAt,
	}

	oldJSON, newJSON := row.OldValues, row.NewValues
	if row.CompressionAlgo == CompressionZstd {
		var err error
		if oldJSON, err = r.decompress(row.OldValuesCompressed); err != nil {
			return entry, fmt.Errorf("decompress old values: %w", err)
		}
		if newJSON, err = r.decompress(row.NewValuesCompressed); err != nil {
			return entry, fmt.Errorf("decompress new values: %w", err)
		}
	}

	if len(oldJSON) > 0 {
		if err := json.Unmarshal(oldJSON, &entry.OldValues); err != nil {
			return entry, fmt.Errorf("unmarshal old values: %w", err)
		}
	}
	if len(newJSON) > 0 {
		if err := json.Unmarshal(newJSON, &entry.NewValues); err != nil {
			return entry, fmt.Errorf("unmarshal new values: %w", err)
		}
	}

	return entry, nil
}

func (r *AuditRepo) compress(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	return r.encoder.EncodeAll(data, nil)
}

func (r *AuditRepo) decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return r.decoder.DecodeAll(data, nil)
}

func marshalSnapshots(entry audit.Entry) (oldJSON, newJSON json.RawMessage, err error) {
	if entry.OldValues != nil {
		if oldJSON, err = json.Marshal(entry.OldValues); err != nil {
			return nil, nil, fmt.Errorf("marshal old values: %w", err)
		}
	}
	if entry.NewValues != nil {
		if newJSON, err = json.Marshal(entry.NewValues); err != nil {
			return nil, nil, fmt.Errorf("marshal new values: %w", err)
		}
	}
	return oldJSON, newJSON, nil
}
