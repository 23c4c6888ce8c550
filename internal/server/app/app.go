package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slatedeck/slate/internal/server/domain"
	"github.com/slatedeck/slate/internal/server/executor"
	httpapi "github.com/slatedeck/slate/internal/server/http"
	"github.com/slatedeck/slate/internal/server/monitor"
	"github.com/slatedeck/slate/internal/server/service"
	"github.com/slatedeck/slate/internal/server/store"
	"github.com/slatedeck/slate/internal/server/store/drivers/sqlite"
	"github.com/slatedeck/slate/internal/server/ws"
	"github.com/slatedeck/slate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application wires the deck server together: store, services, the session
// protocol engine and its background workers, and the HTTP surface.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	authService    *service.AuthService
	profileService *service.ProfileService
	buttonService  *service.ButtonService
	actionService  *service.ActionService
	housekeeping   *service.HousekeepingService

	registry  *ws.Registry
	sessions  *ws.SessionHandler
	heartbeat *ws.Heartbeat
	stats     *ws.StatsBroadcaster

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "slate-server",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.seedDefaults(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to seed defaults: %w", err)
	}

	app.initServices()
	app.initSessions()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.heartbeat.Start()
	app.stats.Start()
	app.housekeeping.Start()

	app.logger.Info("slate server starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown stops the background workers, drains the HTTP server, closes the
// remaining websockets, then the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down slate server...")

	app.heartbeat.Stop()
	app.stats.Stop()
	app.housekeeping.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.sessions.CloseAll()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("slate server stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// seedDefaults gives a fresh install something to show: a Default profile
// with the three media buttons.
func (app *Application) seedDefaults(ctx context.Context) error {
	profiles, err := app.db.Profiles().ListProfiles(ctx)
	if err != nil {
		return err
	}
	if len(profiles) > 0 {
		return nil
	}

	profile := domain.Profile{
		ID:        "default",
		Name:      "Default",
		CreatedAt: time.Now(),
	}

	seed := []domain.Button{
		{ID: "media-prev", Label: "Previous", Icon: "skip-back", ActionType: domain.ActionMediaPrev},
		{ID: "media-play-pause", Label: "Play/Pause", Icon: "play", ActionType: domain.ActionMediaPlayPause},
		{ID: "media-next", Label: "Next", Icon: "skip-forward", ActionType: domain.ActionMediaNext},
	}

	if err := app.db.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Profiles().CreateProfile(ctx, profile); err != nil {
			return err
		}
		for _, b := range seed {
			if err := tx.Buttons().CreateButton(ctx, b, profile.ID); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	app.logger.Info("seeded default profile", "buttons", len(seed))
	return nil
}

func (app *Application) initServices() {
	app.authService = service.NewAuthService(app.db, app.cfg.QRTokenTTL)
	app.profileService = service.NewProfileService(app.db)
	app.buttonService = service.NewButtonService(app.db)

	app.actionService = service.NewActionService()
	for _, e := range []interface {
		service.Executor
		SupportedActions() []domain.ActionType
	}{
		executor.NewMedia(),
		executor.NewHotkey(),
		executor.NewAppLaunch(),
		executor.NewOpenURL(),
		executor.NewOpenFolder(),
	} {
		app.actionService.Register(e, e.SupportedActions()...)
	}

	app.housekeeping = service.NewHousekeepingService(
		app.authService,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initSessions() {
	app.registry = ws.NewRegistry()
	app.sessions = ws.NewSessionHandler(
		app.registry,
		app.authService,
		app.profileService,
		app.buttonService,
		app.actionService,
		app.logger,
	)

	app.heartbeat = ws.NewHeartbeat(app.registry, app.logger, app.cfg.PingInterval, app.cfg.PongTimeout)
	app.stats = ws.NewStatsBroadcaster(
		app.registry,
		monitor.NewSystemMonitor(app.logger),
		app.logger,
		app.cfg.StatsInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.authService,
		app.profileService,
		app.buttonService,
		app.sessions,
		app.logger,
		app.cfg.Env,
		app.cfg.Port,
	)
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
