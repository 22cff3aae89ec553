package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
)

const notificationColumns = `id, tenant_id, user_id, type, title, body, link, is_read, read_at, created_at`

// NotificationPostgres is a PostgreSQL implementation of repository.NotificationRepository.
type NotificationPostgres struct {
	db *sql.DB
}

// NewNotificationPostgres creates a new NotificationPostgres repository.
func NewNotificationPostgres(db *sql.DB) *NotificationPostgres {
	return &NotificationPostgres{db: db}
}

var _ repository.NotificationRepository = (*NotificationPostgres)(nil)

func scanNotification(s scanner) (*model.Notification, error) {
	var n model.Notification
	if err := s.Scan(
		&n.ID,
		&n.TenantID,
		&n.UserID,
		&n.Type,
		&n.Title,
		&n.Body,
		&n.Link,
		&n.IsRead,
		&n.ReadAt,
		&n.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationPostgres) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.TenantID = tid
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	const q = `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + notificationColumns
	return scanNotification(r.db.QueryRowContext(ctx, q,
		n.ID, n.TenantID, n.UserID, n.Type, n.Title, n.Body, n.Link, n.IsRead, n.ReadAt, n.CreatedAt,
	))
}

func (r *NotificationPostgres) ListForUser(ctx context.Context, userID string, unreadOnly bool, pq repository.PageQuery) (*repository.PageResult[model.Notification], error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}

	const qCount = `
		SELECT COUNT(*) FROM notifications
		WHERE tenant_id = $1 AND user_id = $2 AND (NOT $3 OR NOT is_read)
	`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, tid, userID, unreadOnly).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE tenant_id = $1 AND user_id = $2 AND (NOT $3 OR NOT is_read)
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.QueryContext(ctx, qList, tid, userID, unreadOnly, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Notification]{Items: items, Total: total}, nil
}

// MarkRead returns sql.ErrNoRows when the notification does not belong to userID.
func (r *NotificationPostgres) MarkRead(ctx context.Context, userID, id string, at time.Time) error {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	const q = `
		UPDATE notifications SET is_read = TRUE, read_at = COALESCE(read_at, $4)
		WHERE tenant_id = $1 AND user_id = $2 AND id = $3
	`
	res, err := r.db.ExecContext(ctx, q, tid, userID, id, at)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *NotificationPostgres) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return 0, err
	}
	const q = `
		UPDATE notifications SET is_read = TRUE, read_at = $3
		WHERE tenant_id = $1 AND user_id = $2 AND NOT is_read
	`
	res, err := r.db.ExecContext(ctx, q, tid, userID, at)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *NotificationPostgres) UnreadCount(ctx context.Context, userID string) (int, error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE tenant_id = $1 AND user_id = $2 AND NOT is_read`, tid, userID,
	).Scan(&n)
	return n, err
}
