package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/portal-service/internal/api/http"
	"github.com/spec-kit/portal-service/internal/api/http/handlers"
	"github.com/spec-kit/portal-service/internal/auth"
	"github.com/spec-kit/portal-service/internal/bootstrap"
	"github.com/spec-kit/portal-service/internal/config"
	"github.com/spec-kit/portal-service/internal/credit"
	"github.com/spec-kit/portal-service/internal/events"
	"github.com/spec-kit/portal-service/internal/observability"
	"github.com/spec-kit/portal-service/internal/persistence"
	"github.com/spec-kit/portal-service/internal/service"
	"github.com/spec-kit/portal-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, err := bootstrap.OpenRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer repos.Close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	authService := service.NewAuthService(*cfg, repos.Employees)
	orgService := service.NewOrgService(service.OrgDependencies{
		EmployeeRepo: repos.Employees,
		GroupRepo:    repos.Groups,
	})
	functionalityService := service.NewFunctionalityService(repos.Functionalities, logger)
	ticketDeps := service.TicketDependencies{
		TicketRepo:        repos.Tickets,
		FunctionalityRepo: repos.Functionalities,
		Org:               orgService,
		Rules:             credit.NewRules(credit.NewResolver(logger), logger),
		Dispatcher:        dispatcher,
		Logger:            logger,
		Metrics:           metrics,
		UpdateRetries:     cfg.Tickets.UpdateRetries,
	}
	ticketService := service.NewTicketService(ticketDeps)
	assignmentService := service.NewAssignmentService(ticketDeps)
	analyticsService := service.NewAnalyticsService(service.AnalyticsDependencies{
		Tickets:     repos.Tickets,
		Cache:       redis,
		CacheTTL:    cfg.Analytics.CacheTTL(),
		RecentLimit: cfg.Analytics.RecentLimit,
		Metrics:     metrics,
		Logger:      logger,
	})
	notificationService := service.NewNotificationService(logger, cfg.Notification)
	worker.StartSubscribers(dispatcher, logger, notificationService, analyticsService)

	checks := []handlers.DependencyCheck{{Name: repos.Backend, Ping: repos.Ping}}
	if redis.Client != nil {
		checks = append(checks, handlers.DependencyCheck{Name: "redis", Ping: redis.Ping})
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.Employees)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks...),
		Auth:            handlers.NewAuthHandler(authService),
		Org:             handlers.NewOrgHandler(orgService),
		Functionalities: handlers.NewFunctionalityHandler(functionalityService),
		Tickets:         handlers.NewTicketsHandler(ticketService, assignmentService),
		Analytics:       handlers.NewAnalyticsHandler(analyticsService),
		AuthMiddleware:  authMiddleware,
		Registry:        metrics.Registry(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
