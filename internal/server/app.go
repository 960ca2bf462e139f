// Package server initializes and runs the MissionSet application server.
// It opens the relational store, runs schema migrations, opens the search
// index, wires the services, and starts the HTTP server with graceful
// shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/missionset/missionset/internal/logging"
	"github.com/missionset/missionset/internal/search"
	"github.com/missionset/missionset/internal/server/config"
	"github.com/missionset/missionset/internal/server/repositories/repomanager"
	"github.com/missionset/missionset/internal/server/services"
	"github.com/missionset/missionset/internal/server/web"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// termination signal.
const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	index  search.Index
	web    *web.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	manager := repomanager.NewPostgresRepositoryManager()
	if err := manager.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	index, err := search.Open(cfg.SearchIndexPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("search index init error: %w", err)
	}

	userService := services.NewUserService(db, manager, cfg)
	itemService := services.NewItemService(db, manager, index, logger)
	profileService := services.NewProfileService(db, manager)
	dashboardService := services.NewDashboardService(db, manager)
	searchService := services.NewSearchService(index, logger)

	webServer := web.NewServer(logger, userService, itemService, profileService, dashboardService, searchService)

	return &App{config: cfg, logger: logger, db: db, index: index, web: webServer}, nil
}

// Run serves HTTP until the context is canceled or a termination signal
// arrives, then drains in-flight requests and closes the store and index.
func (app *App) Run(ctx context.Context) error {

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.web.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting http server", "addr", app.config.EndpointAddrHTTP)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		app.logger.Info(ctx, "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.close(ctx)
			return fmt.Errorf("http server error: %w", err)
		}
	}

	app.close(ctx)
	return nil
}

func (app *App) close(ctx context.Context) {
	if err := app.index.Close(); err != nil {
		app.logger.Error(ctx, "error closing search index", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing db", "error", err)
	}
}
