package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/citycare/issue-service/internal/api/http"
	"github.com/citycare/issue-service/internal/api/http/handlers"
	"github.com/citycare/issue-service/internal/auth"
	"github.com/citycare/issue-service/internal/config"
	"github.com/citycare/issue-service/internal/events"
	"github.com/citycare/issue-service/internal/mail"
	"github.com/citycare/issue-service/internal/observability"
	"github.com/citycare/issue-service/internal/persistence"
	"github.com/citycare/issue-service/internal/repository"
	"github.com/citycare/issue-service/internal/repository/memory"
	"github.com/citycare/issue-service/internal/service"
	"github.com/citycare/issue-service/internal/worker"
)

type repositories struct {
	users         repository.UserRepository
	issues        repository.IssueRepository
	feedback      repository.FeedbackRepository
	notifications repository.NotificationRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	repos := buildRepositories(pg)

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var (
		revocations auth.RevocationStore
		counter     httptransport.HitCounter
	)
	if err := redis.DisableIfUnreachable(ctx); err == nil {
		revocations = auth.NewRedisRevocationStore(redis.Client)
		counter = httptransport.NewRedisHitCounter(redis.Client)
	} else {
		memoryRevocations := auth.NewMemoryRevocationStore()
		sweeper, err := worker.NewRevocationSweeper(cfg.Auth.RevocationSweepSpec, memoryRevocations, logger)
		if err != nil {
			logger.Fatal("failed to schedule revocation sweeper", zap.Error(err))
		}
		sweeper.Start()
		defer sweeper.Stop()
		revocations = memoryRevocations
	}

	mailer, err := mail.NewSender(cfg.Mail, logger)
	if err != nil {
		logger.Fatal("failed to init mailer", zap.Error(err))
	}
	if closer, ok := mailer.(io.Closer); ok {
		defer closer.Close() //nolint:errcheck
	}
	if cfg.Mail.Transport == config.MailTransportAMQP {
		var delivery mail.Sender = mail.NewLogSender(logger)
		if cfg.Mail.SMTPHost != "" {
			delivery = mail.NewSMTPSender(cfg.Mail)
		}
		consumer := mail.NewConsumer(cfg.Mail.AMQPURL, cfg.Mail.Queue, delivery, logger)
		done := worker.StartMailWorker(ctx, consumer, logger)
		defer func() { cancel(); <-done }()
	}

	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL())

	userService := service.NewUserService(service.UserDependencies{
		UserRepo:            repos.users,
		BcryptCost:          cfg.Auth.BcryptCost,
		ResetPasswordLength: cfg.Auth.ResetPasswordLength,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		Users:                  userService,
		Tokens:                 tokens,
		Revocations:            revocations,
		Mailer:                 mailer,
		Dispatcher:             dispatcher,
		Logger:                 logger,
		AllowAdminRegistration: cfg.Auth.AllowAdminRegistration,
	})
	issueService := service.NewIssueService(service.IssueDependencies{
		IssueRepo:  repos.issues,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	feedbackService := service.NewFeedbackService(service.FeedbackDependencies{
		FeedbackRepo: repos.feedback,
		IssueRepo:    repos.issues,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: repos.notifications,
		UserRepo:         repos.users,
		Dispatcher:       dispatcher,
		Logger:           logger,
	})

	worker.StartNotificationWorker(dispatcher,
		service.NewStatusNotifier(repos.users, notificationService, mailer, logger),
		service.NewAuditLogger(logger),
	)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(handlers.HealthDependencies{
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
			Postgres:    pg,
			Redis:       redis,
			Metrics:     metrics,
		}),
		Auth:          handlers.NewAuthHandler(authService),
		Issues:        handlers.NewIssuesHandler(issueService),
		Feedback:      handlers.NewFeedbackHandler(feedbackService),
		Notifications: handlers.NewNotificationsHandler(notificationService),
		Admin: handlers.NewAdminHandler(handlers.AdminDependencies{
			Issues:        issueService,
			Feedback:      feedbackService,
			Notifications: notificationService,
		}),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, repos.users),
		ReportLimiter:  httptransport.IssueRateLimiter(counter, cfg.RateLimit.Prefix, cfg.RateLimit.IssueReportsPerDay, logger),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func buildRepositories(pg *persistence.Postgres) repositories {
	if !pg.Enabled() {
		store := memory.NewStore()
		return repositories{
			users:         store.Users(),
			issues:        store.Issues(),
			feedback:      store.Feedback(),
			notifications: store.Notifications(),
		}
	}
	pool := pg.PoolHandle()
	return repositories{
		users:         repository.NewUserRepository(pool),
		issues:        repository.NewIssueRepository(pool),
		feedback:      repository.NewFeedbackRepository(pool),
		notifications: repository.NewNotificationRepository(pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
