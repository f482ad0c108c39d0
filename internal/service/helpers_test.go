package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/citycare/issue-service/internal/auth"
	"github.com/citycare/issue-service/internal/domain"
	"github.com/citycare/issue-service/internal/events"
	"github.com/citycare/issue-service/internal/mail"
	"github.com/citycare/issue-service/internal/repository/memory"
	"github.com/citycare/issue-service/internal/service"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg mail.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// sent returns the messages passed to Send so far.
func (m *mockSender) sent() []mail.Message {
	var out []mail.Message
	for _, call := range m.Calls {
		if call.Method == "Send" {
			out = append(out, call.Arguments.Get(1).(mail.Message))
		}
	}
	return out
}

type harness struct {
	store         *memory.Store
	mailer        *mockSender
	tokens        *auth.TokenManager
	revocations   *auth.MemoryRevocationStore
	users         *service.UserService
	auth          *service.AuthService
	issues        *service.IssueService
	feedback      *service.FeedbackService
	notifications *service.NotificationService
}

func setup(t *testing.T) *harness {
	t.Helper()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	mailer := new(mockSender)
	tokens := auth.NewTokenManager("test-secret", time.Minute, time.Hour)
	revocations := auth.NewMemoryRevocationStore()

	users := service.NewUserService(service.UserDependencies{
		UserRepo:            store.Users(),
		BcryptCost:          bcrypt.MinCost,
		ResetPasswordLength: 8,
	})
	notifications := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: store.Notifications(),
		UserRepo:         store.Users(),
		Dispatcher:       dispatcher,
	})
	service.NewStatusNotifier(store.Users(), notifications, mailer, nil).RegisterHandlers(dispatcher)

	return &harness{
		store:       store,
		mailer:      mailer,
		tokens:      tokens,
		revocations: revocations,
		users:       users,
		auth: service.NewAuthService(service.AuthDependencies{
			Users:                  users,
			Tokens:                 tokens,
			Revocations:            revocations,
			Mailer:                 mailer,
			Dispatcher:             dispatcher,
			AllowAdminRegistration: true,
		}),
		issues: service.NewIssueService(service.IssueDependencies{
			IssueRepo:  store.Issues(),
			Dispatcher: dispatcher,
		}),
		feedback: service.NewFeedbackService(service.FeedbackDependencies{
			FeedbackRepo: store.Feedback(),
			IssueRepo:    store.Issues(),
			Dispatcher:   dispatcher,
		}),
		notifications: notifications,
	}
}

func (h *harness) createUser(t *testing.T, name, email string, admin bool) *domain.User {
	t.Helper()
	user, err := h.users.CreateUser(context.Background(), service.CreateUserInput{
		Name:     name,
		Email:    email,
		Password: "password1",
		IsAdmin:  admin,
	})
	require.NoError(t, err)
	return user
}

func (h *harness) reportIssue(t *testing.T, owner *domain.User, problem string) *domain.Issue {
	t.Helper()
	issue, err := h.issues.Report(context.Background(), owner.ID, service.ReportInput{
		Problem:     problem,
		ProblemType: "roads",
		Location:    "Main St",
		Description: "needs attention",
	})
	require.NoError(t, err)
	return issue
}
