package memory

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/citycare/issue-service/internal/domain"
	"github.com/citycare/issue-service/internal/repository"
)

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[user.Email]; taken {
		return repository.ErrDuplicateEmail
	}
	now := s.now()
	user.ID = newID()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	s.users[user.ID] = &stored
	s.emails[user.Email] = user.ID
	return nil
}

func (r *userRepository) Update(_ context.Context, user *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if owner, taken := s.emails[user.Email]; taken && owner != user.ID {
		return repository.ErrDuplicateEmail
	}
	delete(s.emails, current.Email)
	s.emails[user.Email] = user.ID

	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = s.now()
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.store.mu.RLock()
	id, ok := r.store.emails[email]
	r.store.mu.RUnlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}
