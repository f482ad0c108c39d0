package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/citycare/issue-service/internal/api/http"
	"github.com/citycare/issue-service/internal/api/http/handlers"
	"github.com/citycare/issue-service/internal/auth"
	"github.com/citycare/issue-service/internal/config"
	"github.com/citycare/issue-service/internal/events"
	"github.com/citycare/issue-service/internal/mail"
	"github.com/citycare/issue-service/internal/observability"
	"github.com/citycare/issue-service/internal/persistence"
	"github.com/citycare/issue-service/internal/repository/memory"
	"github.com/citycare/issue-service/internal/service"
	"github.com/citycare/issue-service/internal/worker"
)

type recordingMailer struct {
	mu       sync.Mutex
	messages []mail.Message
	fail     bool
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.messages = append(m.messages, msg)
	return nil
}

type fixedCounter struct {
	mu   sync.Mutex
	hits map[string]int64
	err  error
}

func (f *fixedCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, 0, f.err
	}
	f.hits[key]++
	return f.hits[key], window, nil
}

type testServer struct {
	app     *fiber.App
	mailer  *recordingMailer
	counter *fixedCounter
	store   *memory.Store
}

type testOptions struct {
	reportLimit int
	redis       *persistence.Redis
}

func newTestServer(t *testing.T, opts testOptions) *testServer {
	t.Helper()

	logger := zap.NewNop()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	mailer := &recordingMailer{}
	counter := &fixedCounter{hits: map[string]int64{}}
	tokens := auth.NewTokenManager("test-secret", time.Minute, time.Hour)

	users := service.NewUserService(service.UserDependencies{
		UserRepo:            store.Users(),
		BcryptCost:          bcrypt.MinCost,
		ResetPasswordLength: 8,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		Users:                  users,
		Tokens:                 tokens,
		Revocations:            auth.NewMemoryRevocationStore(),
		Mailer:                 mailer,
		Dispatcher:             dispatcher,
		Logger:                 logger,
		AllowAdminRegistration: true,
	})
	issues := service.NewIssueService(service.IssueDependencies{IssueRepo: store.Issues(), Dispatcher: dispatcher, Logger: logger})
	feedback := service.NewFeedbackService(service.FeedbackDependencies{
		FeedbackRepo: store.Feedback(),
		IssueRepo:    store.Issues(),
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	notifications := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: store.Notifications(),
		UserRepo:         store.Users(),
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	worker.StartNotificationWorker(dispatcher,
		service.NewStatusNotifier(store.Users(), notifications, mailer, logger),
		service.NewAuditLogger(logger),
	)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(handlers.HealthDependencies{
			ServiceName: "citycare-test",
			Version:     "test",
			Redis:       opts.redis,
			Metrics:     metrics,
		}),
		Auth:          handlers.NewAuthHandler(authService),
		Issues:        handlers.NewIssuesHandler(issues),
		Feedback:      handlers.NewFeedbackHandler(feedback),
		Notifications: handlers.NewNotificationsHandler(notifications),
		Admin: handlers.NewAdminHandler(handlers.AdminDependencies{
			Issues:        issues,
			Feedback:      feedback,
			Notifications: notifications,
		}),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Users()),
		ReportLimiter:  httptransport.IssueRateLimiter(counter, "rl:issues", opts.reportLimit, logger),
	})

	return &testServer{app: app, mailer: mailer, counter: counter, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

type account struct {
	id      string
	access  string
	refresh string
}

func (s *testServer) register(t *testing.T, name, email string, admin bool) account {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"name": name, "email": email, "password": "secret", "is_admin": admin})
	require.NoError(t, err)

	status, body := s.do(t, http.MethodPost, "/auth/register", "", string(payload))
	require.Equal(t, http.StatusCreated, status, body)

	data := body["data"].(map[string]any)
	tokens := data["tokens"].(map[string]any)
	return account{
		id:      data["user"].(map[string]any)["id"].(string),
		access:  tokens["access"].(string),
		refresh: tokens["refresh"].(string),
	}
}

func (s *testServer) report(t *testing.T, citizen account, problem string) string {
	t.Helper()
	payload, err := json.Marshal(map[string]string{
		"problem":      problem,
		"problem_type": "roads",
		"location":     "Main St",
		"description":  "deep and wide",
	})
	require.NoError(t, err)

	status, body := s.do(t, http.MethodPost, "/issues/report", citizen.access, string(payload))
	require.Equal(t, http.StatusCreated, status, body)
	return body["data"].(map[string]any)["id"].(string)
}

func errorCode(body map[string]any) string {
	errBody, ok := body["error"].(map[string]any)
	if !ok {
		return ""
	}
	code, _ := errBody["code"].(string)
	return code
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	srv.register(t, "Ana", "ana@example.com", false)

	status, body := srv.do(t, http.MethodPost, "/auth/register", "", `{"name":"Ana","email":"ANA@example.com","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "DUPLICATE_EMAIL", errorCode(body))

	status, body = srv.do(t, http.MethodPost, "/auth/login", "", `{"email":"ana@example.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, status)
	user := body["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "ana@example.com", user["email"])
	assert.Equal(t, false, user["is_admin"])

	status, body = srv.do(t, http.MethodPost, "/auth/login", "", `{"email":"ana@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(body))
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t, testOptions{})

	status, body := srv.do(t, http.MethodPost, "/auth/register", "", `{"name":"Ana"}`)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, "required", details["email"])
	assert.Equal(t, "required", details["password"])

	status, body = srv.do(t, http.MethodPost, "/auth/register", "", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t, testOptions{})

	status, body := srv.do(t, http.MethodGet, "/issues/user", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, _ = srv.do(t, http.MethodGet, "/notifications", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminRoutesRejectCitizens(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	citizen := srv.register(t, "Ana", "ana@example.com", false)
	issueID := srv.report(t, citizen, "Pothole")

	testCases := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/admin/issues", ""},
		{http.MethodPut, "/admin/issues/" + issueID + "/status", `{"status":`},
		{http.MethodGet, "/admin/feedback", ""},
		{http.MethodGet, "/admin/notifications", ""},
		{http.MethodPost, "/admin/notifications/send", `{}`},
	}
	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			status, body := srv.do(t, tc.method, tc.path, citizen.access, tc.body)
			assert.Equal(t, http.StatusForbidden, status)
			assert.Equal(t, "FORBIDDEN", errorCode(body))
		})
	}

	status, body := srv.do(t, http.MethodGet, "/issues/user", citizen.access, "")
	require.Equal(t, http.StatusOK, status)
	items := body["data"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "PENDING", items[0].(map[string]any)["status"])
}

func TestStatusChangeNotifiesOwner(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	citizen := srv.register(t, "Ana", "ana@example.com", false)
	admin := srv.register(t, "Root", "root@example.com", true)
	issueID := srv.report(t, citizen, "Pothole")

	status, body := srv.do(t, http.MethodGet, "/admin/issues?status=PENDING", admin.access, "")
	require.Equal(t, http.StatusOK, status)
	listed := body["data"].([]any)
	require.Len(t, listed, 1)
	owner := listed[0].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "ana@example.com", owner["email"])

	status, body = srv.do(t, http.MethodPut, "/admin/issues/"+issueID+"/status", admin.access, `{"status":"REPORT"}`)
	require.Equal(t, http.StatusOK, status, body)
	change := body["data"].(map[string]any)
	assert.Equal(t, "PENDING", change["old_status"])
	assert.Equal(t, "REPORT", change["status"])

	status, body = srv.do(t, http.MethodGet, "/notifications", citizen.access, "")
	require.Equal(t, http.StatusOK, status)
	notifications := body["data"].([]any)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Issue Report: Pothole", notifications[0].(map[string]any)["title"])
	assert.Equal(t, false, notifications[0].(map[string]any)["is_global"])

	require.Len(t, srv.mailer.messages, 1)
	assert.Equal(t, "ana@example.com", srv.mailer.messages[0].To)
	assert.Equal(t, "Issue Report: Pothole", srv.mailer.messages[0].Subject)

	status, body = srv.do(t, http.MethodGet, "/admin/notifications", admin.access, "")
	require.Equal(t, http.StatusOK, status)
	adminView := body["data"].([]any)
	require.Len(t, adminView, 1)
	target := adminView[0].(map[string]any)["target_user"].(map[string]any)
	assert.Equal(t, citizen.id, target["id"])
}

func TestStatusChangeSucceedsWhenMailFails(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	citizen := srv.register(t, "Ana", "ana@example.com", false)
	admin := srv.register(t, "Root", "root@example.com", true)
	issueID := srv.report(t, citizen, "Broken lamp")
	srv.mailer.fail = true

	status, _ := srv.do(t, http.MethodPut, "/admin/issues/"+issueID+"/status", admin.access, `{"status":"RESOLVED"}`)
	require.Equal(t, http.StatusOK, status)

	_, body := srv.do(t, http.MethodGet, "/notifications", citizen.access, "")
	notifications := body["data"].([]any)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Issue Resolved: Broken lamp", notifications[0].(map[string]any)["title"])
}

func TestStatusChangeErrors(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	citizen := srv.register(t, "Ana", "ana@example.com", false)
	admin := srv.register(t, "Root", "root@example.com", true)
	issueID := srv.report(t, citizen, "Pothole")

	status, body := srv.do(t, http.MethodPut, "/admin/issues/"+issueID+"/status", admin.access, `{"status":"CLOSED"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body = srv.do(t, http.MethodPut, "/admin/issues/not-a-uuid/status", admin.access, `{"status":"RESOLVED"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, body = srv.do(t, http.MethodGet, "/admin/issues?status=closed", admin.access, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestFeedbackOnMissingIssue(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	citizen := srv.register(t, "Ana", "ana@example.com", false)
	admin := srv.register(t, "Root", "root@example.com", true)

	status, body := srv.do(t, http.MethodPost, "/feedback/submit", citizen.access,
		`{"issue_id":"7d1f3f5e-8a6b-4c59-9d4e-1b2c3d4e5f60","feedback_text":"still broken"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, body = srv.do(t, http.MethodGet, "/admin/feedback", admin.access, "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["data"])
}

func TestFeedbackListedForAdmin(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	citizen := srv.register(t, "Ana", "ana@example.com", false)
	admin := srv.register(t, "Root", "root@example.com", true)
	issueID := srv.report(t, citizen, "Pothole")

	status, _ := srv.do(t, http.MethodPost, "/feedback/submit", citizen.access,
		`{"issue_id":"`+issueID+`","feedback_text":"thanks for the quick fix"}`)
	require.Equal(t, http.StatusCreated, status)

	_, body := srv.do(t, http.MethodGet, "/admin/feedback", admin.access, "")
	entries := body["data"].([]any)
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]any)
	assert.Equal(t, "Pothole", entry["issue"].(map[string]any)["problem"])
	assert.Equal(t, "ana@example.com", entry["user"].(map[string]any)["email"])
}

func TestBroadcastNotification(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	citizen := srv.register(t, "Ana", "ana@example.com", false)
	admin := srv.register(t, "Root", "root@example.com", true)

	status, body := srv.do(t, http.MethodPost, "/admin/notifications/send", admin.access,
		`{"title":"Water outage","message":"Tuesday 9-12"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["data"].(map[string]any)["is_global"])

	status, body = srv.do(t, http.MethodPost, "/admin/notifications/send", admin.access,
		`{"title":"Hi","message":"there","target_user_id":"7d1f3f5e-8a6b-4c59-9d4e-1b2c3d4e5f60"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	_, body = srv.do(t, http.MethodGet, "/notifications", citizen.access, "")
	notifications := body["data"].([]any)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Water outage", notifications[0].(map[string]any)["title"])
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	citizen := srv.register(t, "Ana", "ana@example.com", false)

	status, _ := srv.do(t, http.MethodPost, "/auth/logout", citizen.access, `{"refresh":"`+citizen.refresh+`"}`)
	require.Equal(t, http.StatusOK, status)

	status, body := srv.do(t, http.MethodPost, "/auth/token/refresh", "", `{"refresh":"`+citizen.refresh+`"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", errorCode(body))

	status, body = srv.do(t, http.MethodPost, "/auth/logout", citizen.access, `{"refresh":"garbage"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_TOKEN", errorCode(body))

	status, _ = srv.do(t, http.MethodPost, "/auth/logout", citizen.access, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestRefreshRotatesTokens(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	citizen := srv.register(t, "Ana", "ana@example.com", false)

	status, body := srv.do(t, http.MethodPost, "/auth/token/refresh", "", `{"refresh":"`+citizen.refresh+`"}`)
	require.Equal(t, http.StatusOK, status)
	rotated := body["data"].(map[string]any)["refresh"].(string)
	assert.NotEqual(t, citizen.refresh, rotated)

	status, _ = srv.do(t, http.MethodPost, "/auth/token/refresh", "", `{"refresh":"`+citizen.refresh+`"}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = srv.do(t, http.MethodPost, "/auth/token/refresh", "", `{"refresh":"`+rotated+`"}`)
	assert.Equal(t, http.StatusOK, status)
}

func TestEditProfile(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	srv.register(t, "Bo", "bo@example.com", false)
	citizen := srv.register(t, "Ana", "ana@example.com", false)

	status, body := srv.do(t, http.MethodPut, "/auth/edit-profile", citizen.access, `{"email":"bo@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "DUPLICATE_EMAIL", errorCode(body))

	status, body = srv.do(t, http.MethodPut, "/auth/edit-profile", citizen.access, `{"name":"Ana Maria"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ana Maria", body["data"].(map[string]any)["name"])
	assert.Equal(t, "ana@example.com", body["data"].(map[string]any)["email"])
}

func TestForgotPasswordMailsNewPassword(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	srv.register(t, "Ana", "ana@example.com", false)

	status, body := srv.do(t, http.MethodPost, "/auth/forgot-password", "", `{"email":"nobody@example.com"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, _ = srv.do(t, http.MethodPost, "/auth/forgot-password", "", `{"email":"ana@example.com"}`)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, srv.mailer.messages, 1)
	assert.Equal(t, "City Care - Password Reset", srv.mailer.messages[0].Subject)

	status, _ = srv.do(t, http.MethodPost, "/auth/login", "", `{"email":"ana@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestIssueReportRateLimit(t *testing.T) {
	srv := newTestServer(t, testOptions{reportLimit: 1})
	citizen := srv.register(t, "Ana", "ana@example.com", false)
	srv.report(t, citizen, "Pothole")

	status, body := srv.do(t, http.MethodPost, "/issues/report", citizen.access,
		`{"problem":"Again","problem_type":"roads","location":"Main St","description":"d"}`)
	require.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.EqualValues(t, 24*60*60, details["retry_after"])

	srv.counter.err = errors.New("redis down")
	status, _ = srv.do(t, http.MethodPost, "/issues/report", citizen.access,
		`{"problem":"Again","problem_type":"roads","location":"Main St","description":"d"}`)
	assert.Equal(t, http.StatusCreated, status)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, testOptions{})

	status, body := srv.do(t, http.MethodGet, "/health/live", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = srv.do(t, http.MethodGet, "/health/ready", "", "")
	require.Equal(t, http.StatusOK, status)
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "disabled", deps["postgres"])
	assert.Equal(t, "disabled", deps["redis"])

	status, body = srv.do(t, http.MethodGet, "/health/metrics", "", "")
	require.Equal(t, http.StatusOK, status)
	requests := body["data"].(map[string]any)["requests"].([]any)
	assert.NotEmpty(t, requests)
}

func TestReadinessWithUnreachableRedis(t *testing.T) {
	rdb := persistence.NewRedis(config.RedisConfig{Addr: "127.0.0.1:1"}, zap.NewNop())
	t.Cleanup(rdb.Close)
	srv := newTestServer(t, testOptions{redis: rdb})

	status, body := srv.do(t, http.MethodGet, "/health/ready", "", "")
	require.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", errorCode(body))

	require.Error(t, rdb.DisableIfUnreachable(context.Background()))
	assert.False(t, rdb.Enabled())

	status, body = srv.do(t, http.MethodGet, "/health/ready", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "disabled", body["dependencies"].(map[string]any)["redis"])
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	srv := newTestServer(t, testOptions{})

	status, body := srv.do(t, http.MethodGet, "/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}
