package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	Create(ctx context.Context, ns ...*Notification) error
	MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, link, is_read, created_at, read_at
		FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR is_read = FALSE)
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query notifications for user %s: %w", userID, err)
	}
	defer rows.Close()

	out := make([]Notification, 0)
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating notifications: %w", err)
	}
	return out, nil
}

func (r *repository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to count unread notifications: %w", err)
	}
	return n, nil
}

// Create inserts all notifications in one batch.
func (r *repository) Create(ctx context.Context, ns ...*Notification) error {
	if len(ns) == 0 {
		return nil
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, n := range ns {
		if n.ID == uuid.Nil {
			id, err := uuid.NewV4()
			if err != nil {
				return fmt.Errorf("repository: failed to generate notification id: %w", err)
			}
			n.ID = id
		}
		n.CreatedAt = now
		batch.Queue(`
			INSERT INTO notifications (id, user_id, type, title, message, link, is_read, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)`,
			n.ID, n.UserID, n.Type, n.Title, n.Message, n.Link, n.CreatedAt)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("repository: failed to insert notifications: %w", err)
	}
	return nil
}

func (r *repository) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = $3
		WHERE user_id = $1 AND id = ANY($2) AND is_read = FALSE`,
		userID, ids, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("repository: failed to mark notifications read: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

func (r *repository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = $2
		WHERE user_id = $1 AND is_read = FALSE`,
		userID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("repository: failed to mark all notifications read: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
