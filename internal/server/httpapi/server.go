// Package httpapi exposes the newsletter service over HTTP: the public
// subscription endpoints, the admin area behind a session cookie, and a
// health check.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dbocharov/newsletter/internal/logging"
	"github.com/dbocharov/newsletter/internal/server/services"
	"github.com/dbocharov/newsletter/internal/server/sessions"
)

type HTTPServer struct {
	address       string
	logger        logging.Logger
	subscriptions *services.SubscriptionService
	confirmations *services.ConfirmationService
	auth          *services.AuthService
	sessionStore  *sessions.Store
}

func NewHTTPServer(a string, l logging.Logger, subs *services.SubscriptionService,
	conf *services.ConfirmationService, auth *services.AuthService, store *sessions.Store) (*HTTPServer, error) {
	return &HTTPServer{
		address:       a,
		logger:        l.With("module", "http_server"),
		subscriptions: subs,
		confirmations: conf,
		auth:          auth,
		sessionStore:  store,
	}, nil
}

func (s *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health_check", s.healthCheck)
	mux.HandleFunc("POST /subscriptions", s.subscribe)
	mux.HandleFunc("GET /subscriptions/confirm", s.confirm)
	mux.HandleFunc("GET /login", s.loginForm)
	mux.HandleFunc("POST /login", s.login)
	mux.HandleFunc("GET /admin/dashboard", s.dashboard)
	mux.HandleFunc("GET /admin/password", s.changePasswordForm)
	mux.HandleFunc("POST /admin/password", s.changePassword)
	mux.HandleFunc("POST /admin/logout", s.logout)
	return mux
}

func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HTTPServer) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
