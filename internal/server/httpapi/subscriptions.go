package httpapi

import (
	"errors"
	"net/http"

	"github.com/dbocharov/newsletter/internal/common"
	"github.com/dbocharov/newsletter/internal/server/services"
)

// subscribe handles the public subscription form. Invalid input is the
// caller's fault (400); everything past validation is a server fault (500),
// including a failed confirmation email.
func (s *HTTPServer) subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form data", http.StatusBadRequest)
		return
	}

	input, err := services.ParseNewSubscriber(r.PostFormValue("email"), r.PostFormValue("name"))
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Reason, http.StatusBadRequest)
			return
		}
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	if err := s.subscriptions.Subscribe(ctx, input); err != nil {
		if errors.Is(err, common.ErrNotification) {
			s.logger.Error(ctx, "confirmation email not sent", "error", err)
		} else {
			s.logger.Error(ctx, "error storing subscriber", "error", err)
		}
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// confirm handles the emailed confirmation link. An unknown token is
// unauthorized, not a server fault.
func (s *HTTPServer) confirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := r.URL.Query().Get("subscription_token")
	if token == "" {
		http.Error(w, "missing subscription_token", http.StatusBadRequest)
		return
	}

	if err := s.confirmations.Confirm(ctx, token); err != nil {
		if errors.Is(err, common.ErrUnknownToken) {
			http.Error(w, "", http.StatusUnauthorized)
			return
		}
		s.logger.Error(ctx, "error confirming subscriber", "error", err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
