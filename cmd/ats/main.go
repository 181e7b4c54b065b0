package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-ats/cmd/ats/cli"
	"github.com/odyssey-erp/odyssey-ats/internal/announcements"
	"github.com/odyssey-erp/odyssey-ats/internal/app"
	"github.com/odyssey-erp/odyssey-ats/internal/auth"
	"github.com/odyssey-erp/odyssey-ats/internal/candidates"
	"github.com/odyssey-erp/odyssey-ats/internal/emaillogs"
	"github.com/odyssey-erp/odyssey-ats/internal/feed"
	"github.com/odyssey-erp/odyssey-ats/internal/interviews"
	"github.com/odyssey-erp/odyssey-ats/internal/jobposts"
	"github.com/odyssey-erp/odyssey-ats/internal/notify"
	"github.com/odyssey-erp/odyssey-ats/internal/observability"
	"github.com/odyssey-erp/odyssey-ats/internal/pipeline"
	"github.com/odyssey-erp/odyssey-ats/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-ats/internal/platform/db"
	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
	"github.com/odyssey-erp/odyssey-ats/internal/reports"
	"github.com/odyssey-erp/odyssey-ats/internal/resume"
	"github.com/odyssey-erp/odyssey-ats/internal/roles"
	"github.com/odyssey-erp/odyssey-ats/internal/search"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
	"github.com/odyssey-erp/odyssey-ats/internal/teams"
	"github.com/odyssey-erp/odyssey-ats/internal/timeentries"
	"github.com/odyssey-erp/odyssey-ats/internal/transfer"
	"github.com/odyssey-erp/odyssey-ats/internal/users"
	"github.com/odyssey-erp/odyssey-ats/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}
	if err := newRootCmd().Execute(); err != nil {
		slog.Default().Error("ats", slog.Any("error", err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ats",
		Short:         "Recruitment management API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})
	root.AddCommand(newJobsCmd())
	return root
}

func newJobsCmd() *cobra.Command {
	var helper *cli.JobsCLI
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and trigger background jobs",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			helper = cli.NewJobsCLI(cfg.Redis().Asynq())
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if helper == nil {
				return nil
			}
			return helper.Close()
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "digest [YYYY-MM-DD]",
		Short: "Enqueue the interview digest now",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := ""
			if len(args) == 1 {
				date = args[0]
			}
			info, err := helper.TriggerDigest(cmd.Context(), date)
			if err != nil {
				return err
			}
			cmd.Printf("enqueued %s as %s\n", info.Type, info.ID)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "test-email <address>",
		Short: "Queue a test email through the worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := helper.TestEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.Printf("enqueued %s as %s\n", info.Type, info.ID)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show default queue counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := helper.InspectQueue(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d failed=%d\n",
				stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Failed)
			return nil
		},
	})
	return cmd
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.Postgres())
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	redisOpts := cfg.Redis().Asynq()
	queue, err := jobs.NewClient(redisOpts)
	if err != nil {
		return fmt.Errorf("init job client: %w", err)
	}
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	activity := shared.NewActivityLogger(dbpool, logger)
	idempotency := shared.NewIdempotencyStore(dbpool)
	notifier := notify.NewNotifier(queue, cfg.NotifyTo, logger)

	rolesService := roles.NewService(roles.NewRepository(dbpool), roles.NewCache(redisClient, 5*time.Minute, logger), activity, logger)
	if err := rolesService.EnsureSystemRoles(ctx); err != nil {
		return fmt.Errorf("seed system roles: %w", err)
	}
	resolver := rbac.NewResolver(rolesService, logger, metrics.Registerer())
	rbacMiddleware := rbac.Middleware{Resolver: resolver, Logger: logger}

	usersService := users.NewService(users.NewRepository(dbpool), rolesService, activity)
	authService := auth.NewService(
		usersService,
		resolver,
		auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer),
		auth.NewRevocationStore(redisClient),
		auth.Options{RegistrationEnabled: cfg.RegistrationEnabled, RegistrationRole: cfg.RegistrationRole},
		logger,
	)

	candidateRepo := candidates.NewRepository(dbpool)
	interviewRepo := interviews.NewRepository(dbpool)
	coordinator := pipeline.NewCoordinator(candidateRepo, interviewRepo, notifier, logger)
	candidateService := candidates.NewService(candidateRepo, nil, activity)
	candidateService.SetWriter(coordinator)
	interviewService := interviews.NewService(interviewRepo, nil, activity)
	interviewService.SetWriter(coordinator)

	jobRepo := jobposts.NewRepository(dbpool)
	jobService := jobposts.NewService(jobRepo, notifier, activity, logger)
	announcementService := announcements.NewService(announcements.NewRepository(dbpool), activity)

	feedBuilder := feed.NewBuilder(interviewRepo, jobRepo, announcementService, feed.NewRedisReads(redisClient), cfg.FeedLocation(), cfg.FeedJobWindow)
	importer := transfer.NewImporter(candidateService, idempotency, logger)
	reportService := reports.NewService(reports.NewRepository(dbpool), reports.NewCache(redisClient, cfg.ReportsCacheTTL), logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		Metrics:              metrics,
		RBACMiddleware:       rbacMiddleware,
		Authenticate:         authService.Authenticator,
		AuthHandler:          auth.NewHandler(logger, authService),
		UsersHandler:         users.NewHandler(logger, usersService, rbacMiddleware),
		RolesHandler:         roles.NewHandler(logger, rolesService, rbacMiddleware),
		CandidatesHandler:    candidates.NewHandler(logger, candidateService, rbacMiddleware),
		JobPostsHandler:      jobposts.NewHandler(logger, jobService, rbacMiddleware),
		InterviewsHandler:    interviews.NewHandler(logger, interviewService, rbacMiddleware),
		TeamsHandler:         teams.NewHandler(logger, teams.NewService(teams.NewRepository(dbpool), activity), rbacMiddleware),
		TimeEntriesHandler:   timeentries.NewHandler(logger, timeentries.NewService(timeentries.NewRepository(dbpool), cfg.FeedLocation(), activity), rbacMiddleware),
		AnnouncementsHandler: announcements.NewHandler(logger, announcementService, rbacMiddleware),
		EmailLogsHandler:     emaillogs.NewHandler(logger, emaillogs.NewService(emaillogs.NewRepository(dbpool), queue, activity), rbacMiddleware),
		FeedHandler:          feed.NewHandler(logger, feedBuilder, rbacMiddleware),
		TransferHandler:      transfer.NewHandler(logger, importer, jobService, rbacMiddleware),
		SearchHandler:        search.NewHandler(logger, search.NewService(candidateService), rbacMiddleware),
		ResumeHandler:        resume.NewHandler(logger, resume.NewParser(cfg.ResumeUploadDir), cfg.ResumeMaxBytes, rbacMiddleware),
		ReportsHandler:       reports.NewHandler(logger, reportService, rbacMiddleware),
		QueueHandler:         jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
