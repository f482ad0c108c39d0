package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/citycare/issue-service/internal/auth"
	"github.com/citycare/issue-service/internal/domain"
	"github.com/citycare/issue-service/internal/repository"
	apperrors "github.com/citycare/issue-service/pkg/util/errorutil"
)

// UserService owns account records and credentials.
type UserService struct {
	users       repository.UserRepository
	bcryptCost  int
	resetLength int
}

// UserDependencies bundles the user service collaborators.
type UserDependencies struct {
	UserRepo            repository.UserRepository
	BcryptCost          int
	ResetPasswordLength int
}

// CreateUserInput describes a new account.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	IsAdmin  bool
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:       deps.UserRepo,
		bcryptCost:  deps.BcryptCost,
		resetLength: deps.ResetPasswordLength,
	}
}

// CreateUser registers an active account with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if err := requireFields(map[string]string{
		"name":     input.Name,
		"email":    input.Email,
		"password": input.Password,
	}); err != nil {
		return nil, err
	}
	email := NormalizeEmail(input.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      input.IsAdmin,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewDuplicateEmail(email)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Authenticate returns the active user matching the credentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if err := requireFields(map[string]string{"email": email, "password": password}); err != nil {
		return nil, err
	}
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}
	if !user.IsActive {
		return nil, apperrors.NewInvalidCredentials()
	}
	return user, nil
}

// GetByID loads an account.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": id})
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of update.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name must not be empty", nil)
		}
		user.Name = name
	}
	if update.Email != nil {
		email := NormalizeEmail(*update.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if update.Password != nil {
		if *update.Password == "" {
			return nil, apperrors.NewValidationError("password must not be empty", nil)
		}
		hash, err := auth.HashPassword(*update.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewDuplicateEmail(user.Email)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ResetPassword replaces the password of the account with a random one and
// returns the plaintext. It is never stored.
func (s *UserService) ResetPassword(ctx context.Context, email string) (*domain.User, string, error) {
	if err := requireFields(map[string]string{"email": email}); err != nil {
		return nil, "", err
	}
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, "", notFoundOr(err, "user", nil)
	}

	password, err := auth.GenerateRandomPassword(s.resetLength)
	if err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return nil, "", apperrors.MapError(err)
	}
	return user, password, nil
}
