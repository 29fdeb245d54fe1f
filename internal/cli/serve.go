package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/spec-kit/ops-desk/internal/api/http"
	"github.com/spec-kit/ops-desk/internal/api/http/handlers"
	"github.com/spec-kit/ops-desk/internal/auth"
	"github.com/spec-kit/ops-desk/internal/cache"
	"github.com/spec-kit/ops-desk/internal/events"
	"github.com/spec-kit/ops-desk/internal/observability"
	"github.com/spec-kit/ops-desk/internal/persistence"
	"github.com/spec-kit/ops-desk/internal/repository"
	"github.com/spec-kit/ops-desk/internal/service"
	"github.com/spec-kit/ops-desk/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()
	cfg, logger := rt.cfg, rt.logger

	if err := rt.migrate(); err != nil {
		return err
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := rt.pg.PoolHandle()
	eventRepo := repository.NewEventRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	var sink *events.KafkaSink
	if cfg.Kafka.Enabled() {
		sink = events.NewKafkaSink(events.NewKafkaWriter(cfg.Kafka, logger), logger)
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Warn("kafka writer close failed", zap.Error(err))
			}
		}()
		logger.Info("forwarding events to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(dispatcher, notifications, sink)

	dashboardService := service.NewDashboardService(service.DashboardDependencies{
		TicketRepo: ticketRepo,
		EventRepo:  eventRepo,
		Cache:      cache.NewSummaryCache(redis.Client, cfg.Redis.SummaryCacheTTL),
		Logger:     logger,
	})
	auditService := service.NewAuditService(repository.NewAuditRepository(pool), logger)
	eventService := service.NewEventService(service.EventDependencies{
		EventRepo:  eventRepo,
		Audit:      auditService,
		Dispatcher: dispatcher,
		Summary:    dashboardService,
		Logger:     logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		AttachmentRepo: repository.NewAttachmentRepository(pool),
		Profiles:       profileRepo,
		Audit:          auditService,
		Dispatcher:     dispatcher,
		Summary:        dashboardService,
		Logger:         logger,
		Config:         cfg.Tickets,
	})
	articleService := service.NewArticleService(service.ArticleDependencies{
		ArticleRepo: repository.NewArticleRepository(pool),
		Audit:       auditService,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	authService := service.NewAuthService(cfg.Auth, profileRepo)

	app := httptransport.NewApp(cfg.App.Name, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, rt.pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Events:         handlers.NewEventsHandler(eventService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Articles:       handlers.NewArticlesHandler(articleService),
		Audit:          handlers.NewAuditHandler(auditService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), profileRepo),
	}, httptransport.AppDeps{
		Logger:  logger,
		Metrics: metrics,
		Timeout: cfg.App.RequestTimeout(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		return app.Listen(cfg.App.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})
	if cfg.Scheduler.PayoutReminderEnabled {
		reminder := worker.NewPayoutReminder(eventRepo, dispatcher, metrics, logger)
		g.Go(func() error {
			return reminder.Run(gctx, cfg.Scheduler.PayoutReminderInterval)
		})
	}

	err = g.Wait()
	logger.Info("ops-desk stopped")
	return err
}
