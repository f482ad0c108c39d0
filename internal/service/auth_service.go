package service

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/citycare/issue-service/internal/auth"
	"github.com/citycare/issue-service/internal/domain"
	"github.com/citycare/issue-service/internal/events"
	"github.com/citycare/issue-service/internal/mail"
	apperrors "github.com/citycare/issue-service/pkg/util/errorutil"
)

// AuthService coordinates registration, login and token lifecycle flows.
type AuthService struct {
	users       *UserService
	tokens      *auth.TokenManager
	revocations auth.RevocationStore
	mailer      mail.Sender
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	allowAdmin  bool
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Users                  *UserService
	Tokens                 *auth.TokenManager
	Revocations            auth.RevocationStore
	Mailer                 mail.Sender
	Dispatcher             events.Dispatcher
	Logger                 *zap.Logger
	AllowAdminRegistration bool
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:       deps.Users,
		tokens:      deps.Tokens,
		revocations: deps.Revocations,
		mailer:      deps.Mailer,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		allowAdmin:  deps.AllowAdminRegistration,
	}
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, input CreateUserInput) (*domain.User, *domain.TokenPair, error) {
	if input.IsAdmin && !s.allowAdmin {
		return nil, nil, apperrors.NewForbidden("admin self-registration is disabled")
	}
	user, err := s.users.CreateUser(ctx, input)
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	if s.dispatcher != nil {
		if err := s.dispatcher.Publish(ctx, events.New(events.EventUserRegistered, user.ID, user.ID, nil)); err != nil {
			s.logger.Warn("event handler failed", zap.String("event_type", string(events.EventUserRegistered)), zap.Error(err))
		}
	}
	return user, pair, nil
}

// Login verifies credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	return user, pair, nil
}

// Logout revokes the caller's refresh token. An empty token is a no-op.
func (s *AuthService) Logout(ctx context.Context, caller *domain.User, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.ParseToken(refreshToken, domain.TokenTypeRefresh)
	if err != nil || claims.Subject != caller.ID {
		return apperrors.NewInvalidToken(http.StatusBadRequest)
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperrors.NewInternalError(fmt.Errorf("revoke refresh token: %w", err))
	}
	return nil
}

// Refresh exchanges a live refresh token for a new pair. The presented token
// is revoked in the same step that checks it, so only one exchange can win.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.NewValidationError("refresh token is required", nil)
	}
	claims, err := s.tokens.ParseToken(refreshToken, domain.TokenTypeRefresh)
	if err != nil {
		return nil, apperrors.NewInvalidToken(http.StatusUnauthorized)
	}
	claimed, err := s.revocations.RevokeIfAbsent(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("revoke refresh token: %w", err))
	}
	if !claimed {
		return nil, apperrors.NewInvalidToken(http.StatusUnauthorized)
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil || !user.IsActive {
		return nil, apperrors.NewInvalidToken(http.StatusUnauthorized)
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return pair, nil
}

// ForgotPassword resets the account password and mails the new one.
// Mail delivery is best-effort.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, password, err := s.users.ResetPassword(ctx, email)
	if err != nil {
		return err
	}
	msg := mail.Message{
		To:      user.Email,
		Subject: passwordResetSubject,
		Body:    renderPasswordReset(user, password),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Warn("password reset email failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	return nil
}

// EditProfile updates the caller's own account.
func (s *AuthService) EditProfile(ctx context.Context, caller *domain.User, update domain.ProfileUpdate) (*domain.User, error) {
	if !auth.IsOwnerOrAdmin(caller, caller) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return s.users.UpdateProfile(ctx, caller.ID, update)
}
