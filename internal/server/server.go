// Package server owns the process lifecycle: it connects every backing
// service, builds the HTTP kernel and serves until the context ends.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/sdscatalog/app/controllers"
	"github.com/shashiranjanraj/sdscatalog/app/repositories"
	"github.com/shashiranjanraj/sdscatalog/app/routes"
	"github.com/shashiranjanraj/sdscatalog/app/services"
	"github.com/shashiranjanraj/sdscatalog/config"
	"github.com/shashiranjanraj/sdscatalog/internal/kernel"
	"github.com/shashiranjanraj/sdscatalog/pkg/audit"
	"github.com/shashiranjanraj/sdscatalog/pkg/cache"
	"github.com/shashiranjanraj/sdscatalog/pkg/database"
	"github.com/shashiranjanraj/sdscatalog/pkg/extract"
	"github.com/shashiranjanraj/sdscatalog/pkg/hazard"
	"github.com/shashiranjanraj/sdscatalog/pkg/latex"
	"github.com/shashiranjanraj/sdscatalog/pkg/logger"
	"github.com/shashiranjanraj/sdscatalog/pkg/middleware"
	"github.com/shashiranjanraj/sdscatalog/pkg/migration"
	"github.com/shashiranjanraj/sdscatalog/pkg/search"
	"github.com/shashiranjanraj/sdscatalog/pkg/storage"
	"github.com/shashiranjanraj/sdscatalog/pkg/units"
	"github.com/shashiranjanraj/sdscatalog/pkg/workerpool"
)

// shutdownGrace bounds in-flight requests on shutdown; a checkout may be
// mid-render.
const shutdownGrace = 30 * time.Second

// App is every long-lived resource of a running catalog.
type App struct {
	DB       *gorm.DB
	Cache    *cache.Redis
	Disk     storage.Disk
	Pool     *workerpool.Pool
	Recorder audit.Recorder
	Limiter  *middleware.Limiter

	Catalog  *services.SdsService
	Checkout *services.CheckoutService
}

// Boot connects the database, cache, blob store, search index, extractor
// and audit trail, and builds the services on top of them. Optional
// backends that are down are logged and replaced by their no-op form.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}

	db, err := database.Connect()
	if err != nil {
		return nil, err
	}

	a := &App{DB: db}

	a.Cache, err = cache.Connect(ctx)
	if err != nil {
		logger.Warn("cache unavailable, record lookups go to the database", "error", err)
	}

	a.Disk, err = storage.New(ctx, storage.ConfigFromEnv())
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Recorder = audit.Noop{}
	if uri := config.MongoURI(); uri != "" {
		rec, err := audit.Connect(ctx, uri, config.AuditDatabase(), config.AuditCollection(), func(err error) {
			logger.Error("audit: insert failed", "error", err)
		})
		if err != nil {
			logger.Warn("audit trail unavailable", "error", err)
		} else {
			a.Recorder = rec
		}
	}

	renderer, err := latex.NewRenderer(
		latex.NewPDFLaTeX(config.LatexBin()),
		latex.WithTimeout(config.LatexTimeout()),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Pool = workerpool.New(config.RenderWorkers())
	a.Limiter = middleware.NewLimiter(config.RateLimit(), time.Minute)

	repo := repositories.NewSdsRepository(db)
	indexer := search.NewMeili(config.SearchURL(), config.SearchAPIKey(), config.SearchIndex(), config.FetchTimeout())
	extractor := extract.New(config.ExtractorURL(), config.FetchTimeout())

	a.Catalog = services.NewSdsService(repo, a.Disk, extractor, indexer, a.Cache, config.CacheTTL())
	a.Checkout = services.NewCheckoutService(
		repo,
		storage.NewFetcher(config.FetchTimeout()),
		renderer,
		a.Pool,
		services.WithStatementPolicy(hazard.ParseStatementPolicy(config.StatementPolicy())),
		services.WithFormatter(units.Formatter{BelowNano: units.ParseBelowNano(config.BelowNanoPolicy())}),
		services.WithFetchConcurrency(config.FetchConcurrency()),
		services.WithRecorder(a.Recorder),
	)
	return a, nil
}

// API exposes the controllers for the route table.
func (a *App) API() routes.API {
	return routes.API{
		Sds:      controllers.NewSdsController(a.Catalog),
		Checkout: controllers.NewCheckoutController(a.Checkout),
		Throttle: a.Limiter.Middleware,
	}
}

// Close releases everything Boot acquired. The pool drains first so no
// render outlives the audit recorder it reports to.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Shutdown()
	}
	if a.Recorder != nil {
		if err := a.Recorder.Close(); err != nil {
			logger.Warn("audit: close", "error", err)
		}
	}
	if err := a.Cache.Close(); err != nil {
		logger.Warn("cache: close", "error", err)
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			logger.Warn("database: close", "error", err)
		}
	}
}

// Start boots the app, applies pending migrations, optionally syncs the
// search index, and serves until ctx is cancelled.
func Start(ctx context.Context) error {
	a, err := Boot(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := migration.New(a.DB, io.Discard).Run(); err != nil {
		return fmt.Errorf("server: migrate: %w", err)
	}

	if config.SearchSyncOnStart() {
		go func() {
			n, err := a.Catalog.SyncIndex(ctx)
			if err != nil {
				logger.Error("search: sync on start failed", "synced", n, "error", err)
				return
			}
			logger.Info("search: sync on start complete", "synced", n)
		}()
	}

	go a.Limiter.Run(ctx)

	return Serve(ctx, ":"+config.AppPort(), kernel.Handler(a.API()))
}

// Serve runs handler on addr until ctx ends, then drains in-flight requests.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("sds catalog listening", "addr", addr, "env", config.AppEnv())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
