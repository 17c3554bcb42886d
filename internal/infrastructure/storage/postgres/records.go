package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"fuelbook/internal/schema"
)

// Builder returns a squirrel builder with PostgreSQL placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// InsertRecord runs a gated insert for one record kind. The entity's
// db-tagged fields are validated against the kind's write contract before
// any SQL is built, so a payload the gate rejects never reaches the
// database.
func InsertRecord(ctx context.Context, txm *TxManager, kind schema.RecordKind, entity any) error {
	def, ok := schema.DefinitionFor(kind)
	if !ok {
		return fmt.Errorf("no definition for record kind %q", kind)
	}

	data := StructToMap(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity for %s", def.TableName)
	}

	if err := schema.Validate(ctx, kind, data); err != nil {
		return err
	}

	q := Builder().
		Insert(def.TableName).
		SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", def.TableName, err)
	}

	return nil
}
