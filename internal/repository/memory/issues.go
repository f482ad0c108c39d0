package memory

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/citycare/issue-service/internal/domain"
	"github.com/citycare/issue-service/internal/repository"
)

type issueRepository struct {
	store *Store
}

func (r *issueRepository) Create(_ context.Context, issue *domain.Issue) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[issue.UserID]; !ok {
		return repository.ErrMissingReference
	}
	now := s.now()
	issue.ID = newID()
	issue.Date = now
	issue.CreatedAt = now
	issue.UpdatedAt = now

	stored := *issue
	s.issues = append(s.issues, &stored)
	return nil
}

func (r *issueRepository) GetByID(_ context.Context, id string) (*domain.Issue, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	issue := s.findIssue(id)
	if issue == nil {
		return nil, pgx.ErrNoRows
	}
	clone := *issue
	return &clone, nil
}

func (r *issueRepository) List(_ context.Context, filter repository.IssueFilter) ([]domain.Issue, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.Issue{}
	for _, i := range s.issueOrder() {
		if matches(s.issues[i], filter) {
			result = append(result, *s.issues[i])
		}
	}
	return result, nil
}

func (r *issueRepository) ListWithOwner(_ context.Context, filter repository.IssueFilter) ([]domain.IssueWithOwner, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.IssueWithOwner{}
	for _, i := range s.issueOrder() {
		issue := s.issues[i]
		if !matches(issue, filter) {
			continue
		}
		owner, ok := s.users[issue.UserID]
		if !ok {
			continue
		}
		result = append(result, domain.IssueWithOwner{Issue: *issue, Owner: owner.Summary()})
	}
	return result, nil
}

func (r *issueRepository) UpdateStatus(_ context.Context, id string, status domain.IssueStatus) (*domain.StatusChange, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	issue := s.findIssue(id)
	if issue == nil {
		return nil, pgx.ErrNoRows
	}
	change := &domain.StatusChange{OldStatus: issue.Status, NewStatus: status}
	issue.Status = status
	issue.UpdatedAt = s.now()
	change.Issue = *issue
	return change, nil
}

func (s *Store) findIssue(id string) *domain.Issue {
	for _, issue := range s.issues {
		if issue.ID == id {
			return issue
		}
	}
	return nil
}

func (s *Store) issueOrder() []int {
	return newestFirst(len(s.issues), func(i int) time.Time { return s.issues[i].CreatedAt })
}

func matches(issue *domain.Issue, filter repository.IssueFilter) bool {
	if filter.UserID != nil && issue.UserID != *filter.UserID {
		return false
	}
	if filter.Status != nil && issue.Status != *filter.Status {
		return false
	}
	return true
}
