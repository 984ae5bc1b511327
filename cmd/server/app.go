package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/focal-api/internal/config"
	"github.com/phrazzld/focal-api/internal/domain/elo"
	"github.com/phrazzld/focal-api/internal/events"
	"github.com/phrazzld/focal-api/internal/generation"
	"github.com/phrazzld/focal-api/internal/platform/clock"
	"github.com/phrazzld/focal-api/internal/platform/gemini"
	"github.com/phrazzld/focal-api/internal/platform/postgres"
	"github.com/phrazzld/focal-api/internal/scheduler"
	"github.com/phrazzld/focal-api/internal/service/auth"
	"github.com/phrazzld/focal-api/internal/service/comparison"
	"github.com/phrazzld/focal-api/internal/service/dependency"
	"github.com/phrazzld/focal-api/internal/service/postpone"
	"github.com/phrazzld/focal-api/internal/service/ranking"
	"github.com/phrazzld/focal-api/internal/store"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// application holds the fully wired components of the running server.
type application struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *sql.DB
	scheduler *scheduler.Scheduler
	server    *http.Server
}

// newApplication wires the whole dependency graph: database, stores,
// services, scheduler jobs, and the HTTP server. It runs pending migrations
// before anything touches the schema.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := postgres.MigrateUp(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	clk := clock.System{}
	emitter := events.NewInMemoryEmitter(logger)

	taskStore := postgres.NewTaskStore(db, logger)
	depStore := postgres.NewDependencyStore(db, logger)
	postponeStore := postgres.NewPostponeStore(db, logger)
	comparisonStore := postgres.NewComparisonStore(db, logger)
	tx := store.NewTransactor(db)

	depManager := dependency.NewManager(taskStore, depStore, tx, clk, logger)
	comparisonSvc := comparison.NewService(
		taskStore, comparisonStore, tx, elo.NewDefaultService(), clk, logger)
	resolver := ranking.NewResolver(taskStore, depManager, comparisonSvc, clk, logger)

	thresholds := postpone.Thresholds{
		PostponeCount: cfg.Scheduler.PostponeThreshold,
		RepeatReason:  cfg.Scheduler.RepeatReasonThreshold,
	}
	coordinator := postpone.NewCoordinator(
		taskStore, postponeStore, depManager, tx, emitter, clk, thresholds, logger)

	sessions, err := auth.NewSessionService(cfg.Auth, auth.NewBcryptVerifier())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session service: %w", err)
	}

	// Suggestions degrade gracefully: with no API key the endpoint reports
	// the feature as unavailable instead of failing startup.
	var generator generation.Generator
	if cfg.Generation.GeminiAPIKey != "" {
		g, err := gemini.NewGenerator(ctx, logger, cfg.Generation)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create suggestion generator: %w", err)
		}
		generator = g
	} else {
		logger.Info("no Gemini API key configured, subtask suggestions disabled")
	}

	sched := scheduler.New(logger)
	sched.Register(
		scheduler.NewDeferredActivationJob(taskStore, depManager, coordinator, emitter, clk, logger),
		cfg.Scheduler.DeferredActivationInterval)
	sched.Register(
		scheduler.NewDelegatedFollowUpJob(taskStore, emitter, clk, logger),
		cfg.Scheduler.DelegatedFollowUpInterval)
	sched.Register(
		scheduler.NewSomedayReviewJob(taskStore, emitter, logger),
		cfg.Scheduler.SomedayReviewInterval)
	sched.Register(
		scheduler.NewInterventionScanJob(taskStore, emitter, thresholds, logger),
		cfg.Scheduler.InterventionScanInterval)

	router := newRouter(routerDeps{
		logger:      logger,
		sessions:    sessions,
		taskStore:   taskStore,
		coordinator: coordinator,
		resolver:    resolver,
		comparisons: comparisonSvc,
		depManager:  depManager,
		generator:   generator,
		scheduler:   sched,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &application{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		scheduler: sched,
		server:    server,
	}, nil
}

// routerDeps bundles everything the router needs, so newRouter stays a flat
// list of route registrations.
type routerDeps struct {
	logger      *slog.Logger
	sessions    auth.SessionService
	taskStore   store.TaskStore
	coordinator *postpone.Coordinator
	resolver    *ranking.Resolver
	comparisons *comparison.Service
	depManager  *dependency.Manager
	generator   generation.Generator
	scheduler   *scheduler.Scheduler
}

// Start begins serving requests and running scheduler jobs.
func (a *application) Start() error {
	a.scheduler.Start()
	a.logger.Info("server listening", slog.Int("port", a.cfg.Server.Port))

	err := a.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown stops the scheduler, drains in-flight requests, and closes the
// database.
func (a *application) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down")
	a.scheduler.Stop()

	if err := a.server.Shutdown(ctx); err != nil {
		a.db.Close()
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if err := a.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
