package notifications

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventboard/backend/internal/models"
)

// Store is the persistence interface for notifications.
type Store interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*models.Notification, error)
}

// Repository handles notifications persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a notifications repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a notification and fills in its id and creation time.
func (r *Repository) Create(ctx context.Context, n *models.Notification) error {
	const q = `INSERT INTO notifications (user_id, event_id, message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, n.UserID, n.EventID, n.Message).Scan(&n.ID, &n.CreatedAt)
}

// ListByUser returns a user's notifications, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.Notification, error) {
	const q = `SELECT id, user_id, event_id, message, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`
	rows, err := r.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.EventID, &n.Message, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}
