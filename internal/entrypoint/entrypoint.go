package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/metadata"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/storage"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App is the catalog service wired to its configured storage backend.
type App struct {
	Config  *config.Config
	Backend *storage.Backend
	Catalog *catalog.Service
}

// Bootstrap validates cfg, applies the log level and opens the catalog.
// The caller owns the returned App and must Close it.
func Bootstrap(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	SetLogLevel(cfg.Logging.Level)

	backend, err := storage.Open(cfg.Storage)
	if err != nil {
		return nil, err
	}

	svc := catalog.NewService(backend.Store)
	if cfg.OpenLibrary.BaseURL != "" {
		svc.SetMetadataProvider(metadata.NewOpenLibraryClient(metadata.WithBaseURL(cfg.OpenLibrary.BaseURL)))
	}

	return &App{Config: cfg, Backend: backend, Catalog: svc}, nil
}

func (a *App) Close() error {
	return a.Backend.Close()
}

// SetLogLevel applies a textual level; unknown values keep the current one.
func SetLogLevel(level string) {
	if level == "" {
		return
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.Warn("unknown log level, keeping default", "level", level)
		return
	}
	log.SetLevel(parsed)
}

// Serve runs srv until SIGINT or SIGTERM, then shuts it down within timeout.
func Serve(srv *http.Server, timeout time.Duration, onShutdown ShutdownFunc) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		log.Info("shutting down server", "signal", sig.String(), "timeout", timeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so no sweep or import outlives storage.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("server exiting")
	return nil
}

// Run starts the HTTP API together with the overdue sweep scheduler and the
// task queue, and blocks until the process is signalled to stop.
func Run(cfg *config.Config, version string) error {
	app, err := Bootstrap(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("error closing storage", "err", err)
		}
	}()

	log.Info("starting bookshelf", "version", version, "backend", app.Backend.Name)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	routerCfg := http_controllers.RouterConfig{
		Catalog:      app.Catalog,
		Storage:      app.Backend,
		UpcomingDays: cfg.Catalog.UpcomingDays,
		Version:      version,
	}

	var sweeper *scheduler.OverdueSweepScheduler
	if cfg.OverdueSweep.Enabled {
		sweeper = scheduler.NewOverdueSweepScheduler(app.Catalog, cfg.OverdueSweep.Schedule)
		if err := sweeper.Start(ctx); err != nil {
			return fmt.Errorf("failed to start overdue sweep: %w", err)
		}
		routerCfg.Scheduler = sweeper
	} else {
		log.Info("overdue sweep scheduler disabled")
	}

	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Tasks.DatabasePath, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error("error closing task client", "err", err)
			}
		}()

		taskClient.Register(
			tasks.NewOverdueSweepQueue(app.Catalog),
			tasks.NewImportISBNQueue(app.Catalog),
		)
		go taskClient.Start(ctx)
		routerCfg.TaskQueue = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	onShutdown := func(ctx context.Context) {
		if sweeper != nil {
			sweeper.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		cancel()
	}

	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	return Serve(srv, timeout, onShutdown)
}
