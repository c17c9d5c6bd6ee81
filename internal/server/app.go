// Package server initializes and runs the newsletter application server.
// It opens the database, applies migrations, wires the services together,
// and starts the HTTP server with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dbocharov/newsletter/internal/logging"
	"github.com/dbocharov/newsletter/internal/server/config"
	"github.com/dbocharov/newsletter/internal/server/email"
	"github.com/dbocharov/newsletter/internal/server/httpapi"
	"github.com/dbocharov/newsletter/internal/server/repositories/repomanager"
	"github.com/dbocharov/newsletter/internal/server/services"
	"github.com/dbocharov/newsletter/internal/server/sessions"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	subscriptions *services.SubscriptionService
	confirmations *services.ConfirmationService
	auth          *services.AuthService
	sessionStore  *sessions.Store
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	notifier := email.NewClient(cfg.EmailEndpoint, cfg.EmailSender, cfg.EmailAuthToken, cfg.EmailTimeout)
	store := sessions.NewStore(sessions.NewPostgresBackend(db), cfg.SessionIdleTimeout, []byte(cfg.SecretKey))

	auth, err := services.NewAuthService(db, m, cfg)
	if err != nil {
		return nil, fmt.Errorf("auth init error: %w", err)
	}

	return &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		subscriptions: services.NewSubscriptionService(db, m, notifier, cfg),
		confirmations: services.NewConfirmationService(db, m),
		auth:          auth,
		sessionStore:  store,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger,
		app.subscriptions, app.confirmations, app.auth, app.sessionStore)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
