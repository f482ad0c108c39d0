package repository

import (
	"context"

	"github.com/citycare/issue-service/internal/domain"
)

// FeedbackRepository stores feedback entries.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	ListDetailed(ctx context.Context) ([]domain.FeedbackDetail, error)
}

type feedbackRepository struct {
	db DBTX
}

// NewFeedbackRepository builds repository.
func NewFeedbackRepository(db DBTX) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	const query = `
        INSERT INTO feedback (issue_id, user_id, feedback_text)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		feedback.IssueID,
		feedback.UserID,
		feedback.FeedbackText,
	).Scan(&feedback.ID, &feedback.CreatedAt)
	return translatePgError(err)
}

func (r *feedbackRepository) ListDetailed(ctx context.Context) ([]domain.FeedbackDetail, error) {
	const query = `
        SELECT f.id, f.issue_id, f.user_id, f.feedback_text, f.created_at,
               i.id, i.problem, i.location, i.status,
               u.id, u.name, u.email
        FROM feedback f
        JOIN issues i ON i.id = f.issue_id
        JOIN users u ON u.id = f.user_id
        ORDER BY f.created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.FeedbackDetail{}
	for rows.Next() {
		var item domain.FeedbackDetail
		if err := rows.Scan(
			&item.ID,
			&item.IssueID,
			&item.UserID,
			&item.FeedbackText,
			&item.CreatedAt,
			&item.Issue.ID,
			&item.Issue.Problem,
			&item.Issue.Location,
			&item.Issue.Status,
			&item.Author.ID,
			&item.Author.Name,
			&item.Author.Email,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
