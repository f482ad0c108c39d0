package repository

import (
	"context"

	"github.com/citycare/issue-service/internal/domain"
)

// NotificationRepository persists personal and broadcast notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	// ListForUser returns notifications addressed to userID plus every broadcast.
	ListForUser(ctx context.Context, userID string) ([]domain.Notification, error)
	ListWithTarget(ctx context.Context) ([]domain.NotificationWithTarget, error)
}

type notificationRepository struct {
	db DBTX
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(db DBTX) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (title, message, target_user_id)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		notification.Title,
		notification.Message,
		notification.TargetUserID,
	).Scan(&notification.ID, &notification.CreatedAt)
	return translatePgError(err)
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	const query = `
        SELECT id, title, message, target_user_id, created_at
        FROM notifications
        WHERE target_user_id=$1 OR target_user_id IS NULL
        ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.TargetUserID, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) ListWithTarget(ctx context.Context) ([]domain.NotificationWithTarget, error) {
	const query = `
        SELECT n.id, n.title, n.message, n.target_user_id, n.created_at,
               u.id, u.name, u.email
        FROM notifications n
        LEFT JOIN users u ON u.id = n.target_user_id
        ORDER BY n.created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.NotificationWithTarget{}
	for rows.Next() {
		var (
			item                        domain.NotificationWithTarget
			targetID, targetName, email *string
		)
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Message,
			&item.TargetUserID,
			&item.CreatedAt,
			&targetID,
			&targetName,
			&email,
		); err != nil {
			return nil, err
		}
		if targetID != nil {
			item.Target = &domain.UserSummary{ID: *targetID, Name: deref(targetName), Email: deref(email)}
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
