package memory

import (
	"context"
	"time"

	"github.com/citycare/issue-service/internal/domain"
	"github.com/citycare/issue-service/internal/repository"
)

type notificationRepository struct {
	store *Store
}

func (r *notificationRepository) Create(_ context.Context, notification *domain.Notification) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if notification.TargetUserID != nil {
		if _, ok := s.users[*notification.TargetUserID]; !ok {
			return repository.ErrMissingReference
		}
	}
	notification.ID = newID()
	notification.CreatedAt = s.now()

	stored := *notification
	if notification.TargetUserID != nil {
		target := *notification.TargetUserID
		stored.TargetUserID = &target
	}
	s.notifications = append(s.notifications, &stored)
	return nil
}

func (r *notificationRepository) ListForUser(_ context.Context, userID string) ([]domain.Notification, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.Notification{}
	for _, i := range s.notificationOrder() {
		n := s.notifications[i]
		if n.IsGlobal() || *n.TargetUserID == userID {
			result = append(result, *n)
		}
	}
	return result, nil
}

func (r *notificationRepository) ListWithTarget(_ context.Context) ([]domain.NotificationWithTarget, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.NotificationWithTarget{}
	for _, i := range s.notificationOrder() {
		n := s.notifications[i]
		item := domain.NotificationWithTarget{Notification: *n}
		if !n.IsGlobal() {
			if target, ok := s.users[*n.TargetUserID]; ok {
				summary := target.Summary()
				item.Target = &summary
			}
		}
		result = append(result, item)
	}
	return result, nil
}

func (s *Store) notificationOrder() []int {
	return newestFirst(len(s.notifications), func(i int) time.Time { return s.notifications[i].CreatedAt })
}
