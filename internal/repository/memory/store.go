// Package memory provides process-local implementations of the repository
// interfaces. It backs the service when no Postgres DSN is configured and is
// used throughout the service and HTTP tests.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/citycare/issue-service/internal/domain"
	"github.com/citycare/issue-service/internal/repository"
)

// Store holds every table behind a single lock so joined reads stay consistent.
type Store struct {
	mu            sync.RWMutex
	now           func() time.Time
	users         map[string]*domain.User
	emails        map[string]string
	issues        []*domain.Issue
	feedback      []*domain.Feedback
	notifications []*domain.Notification
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		now:    func() time.Time { return time.Now().UTC() },
		users:  make(map[string]*domain.User),
		emails: make(map[string]string),
	}
}

// Users exposes the account table.
func (s *Store) Users() repository.UserRepository { return &userRepository{store: s} }

// Issues exposes the issue table.
func (s *Store) Issues() repository.IssueRepository { return &issueRepository{store: s} }

// Feedback exposes the feedback table.
func (s *Store) Feedback() repository.FeedbackRepository { return &feedbackRepository{store: s} }

// Notifications exposes the notification table.
func (s *Store) Notifications() repository.NotificationRepository {
	return &notificationRepository{store: s}
}

func newID() string {
	return uuid.NewString()
}

// newestFirst returns indexes of n rows ordered by created time descending,
// later inserts winning ties.
func newestFirst(n int, createdAt func(int) time.Time) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = n - 1 - i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return createdAt(idx[a]).After(createdAt(idx[b]))
	})
	return idx
}
