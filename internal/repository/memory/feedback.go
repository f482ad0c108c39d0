package memory

import (
	"context"
	"time"

	"github.com/citycare/issue-service/internal/domain"
	"github.com/citycare/issue-service/internal/repository"
)

type feedbackRepository struct {
	store *Store
}

func (r *feedbackRepository) Create(_ context.Context, feedback *domain.Feedback) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findIssue(feedback.IssueID) == nil {
		return repository.ErrMissingReference
	}
	if _, ok := s.users[feedback.UserID]; !ok {
		return repository.ErrMissingReference
	}
	feedback.ID = newID()
	feedback.CreatedAt = s.now()

	stored := *feedback
	s.feedback = append(s.feedback, &stored)
	return nil
}

func (r *feedbackRepository) ListDetailed(_ context.Context) ([]domain.FeedbackDetail, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	order := newestFirst(len(s.feedback), func(i int) time.Time { return s.feedback[i].CreatedAt })
	result := []domain.FeedbackDetail{}
	for _, i := range order {
		f := s.feedback[i]
		issue := s.findIssue(f.IssueID)
		author, ok := s.users[f.UserID]
		if issue == nil || !ok {
			continue
		}
		result = append(result, domain.FeedbackDetail{
			Feedback: *f,
			Issue: domain.IssueSummary{
				ID:       issue.ID,
				Problem:  issue.Problem,
				Location: issue.Location,
				Status:   issue.Status,
			},
			Author: author.Summary(),
		})
	}
	return result, nil
}
