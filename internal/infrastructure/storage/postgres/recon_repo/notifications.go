package recon_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
	"fuelbook/internal/domain/variance"
	"fuelbook/internal/infrastructure/storage/postgres"
	"fuelbook/internal/schema"
)

const notificationsTable = "notifications"

var notificationColumns = postgres.ExtractDBColumns[variance.Notification]()

// NotificationRepo implements variance.NotificationRepository.
type NotificationRepo struct {
	txm *postgres.TxManager
}

// NewNotificationRepo creates a notification repository.
func NewNotificationRepo(txm *postgres.TxManager) *NotificationRepo {
	return &NotificationRepo{txm: txm}
}

var _ variance.NotificationRepository = (*NotificationRepo)(nil)

// Create inserts a notification.
func (r *NotificationRepo) Create(ctx context.Context, n *variance.Notification) error {
	return postgres.InsertRecord(ctx, r.txm, schema.KindNotification, n)
}

// ListOpenByStation retrieves unresolved notifications for a station,
// newest first.
func (r *NotificationRepo) ListOpenByStation(ctx context.Context, stationID id.ID) ([]*variance.Notification, error) {
	q := postgres.Builder().
		Select(notificationColumns...).
		From(notificationsTable).
		Where(squirrel.Eq{
			"station_id": stationID,
			"status":     variance.StatusOpen,
		}).
		OrderBy("created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var notifications []*variance.Notification
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &notifications, sql, args...); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return notifications, nil
}

// UpdateStatus advances a notification through the resolution workflow.
func (r *NotificationRepo) UpdateStatus(ctx context.Context, notificationID id.ID, status variance.NotificationStatus) error {
	q := postgres.Builder().
		Update(notificationsTable).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": notificationID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update notification status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(notificationsTable, notificationID.String())
	}

	return nil
}
