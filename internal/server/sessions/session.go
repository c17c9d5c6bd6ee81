package sessions

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	gsessions "github.com/gorilla/sessions"

	"github.com/dbocharov/newsletter/internal/common"
)

// userIDKey is the session attribute carrying the authenticated user id.
const userIDKey = "user_id"

// Session wraps a single request's gorilla session together with the
// response writer it saves through. It is the only session handle the
// handlers and services see; the raw id never leaves this package except
// through ID.
type Session struct {
	store *Store
	gs    *gsessions.Session
	w     http.ResponseWriter
	r     *http.Request
}

// FromRequest returns the session the request's cookie points at, creating
// a fresh anonymous one when there is none.
func FromRequest(store *Store, w http.ResponseWriter, r *http.Request) (*Session, error) {
	gs, err := store.Get(r, CookieSession)
	if err != nil {
		return nil, err
	}
	return &Session{store: store, gs: gs, w: w, r: r}, nil
}

// ID returns the opaque session id.
func (s *Session) ID() string {
	return s.gs.ID
}

// IsNew reports whether the session was created for this request rather
// than loaded from the store.
func (s *Session) IsNew() bool {
	return s.gs.IsNew
}

// Save persists the session and refreshes the cookie.
func (s *Session) Save(ctx context.Context) error {
	return s.store.Save(s.r.WithContext(ctx), s.w, s.gs)
}

// Renew rotates the session id while preserving its attributes, the
// defense against session fixation at privilege changes. The new row is
// written before the old one is deleted, so a crash between the two leaves
// a stale extra row (which ages out) rather than a logged-in user with no
// session.
func (s *Session) Renew(ctx context.Context) error {
	oldID := s.gs.ID
	s.gs.ID = newSessionID()

	if err := s.Save(ctx); err != nil {
		s.gs.ID = oldID
		return err
	}
	if err := s.store.backend.Delete(ctx, oldID); err != nil {
		return err
	}
	s.gs.IsNew = false
	return nil
}

// InsertUserID records the authenticated user on the session.
func (s *Session) InsertUserID(ctx context.Context, userID uuid.UUID) error {
	s.gs.Values[userIDKey] = userID.String()
	return s.Save(ctx)
}

// GetUserID returns the user id recorded on the session, or
// common.ErrorNotFound for anonymous sessions.
func (s *Session) GetUserID(ctx context.Context) (uuid.UUID, error) {
	v, ok := s.gs.Values[userIDKey].(string)
	if !ok {
		return uuid.Nil, common.ErrorNotFound
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, errors.Join(common.ErrorNotFound, err)
	}
	return id, nil
}

// LogOut destroys the session server side and rebinds the handle to a
// fresh anonymous session, so a post-logout flash message has somewhere to
// live. The destroyed id can never be replayed.
func (s *Session) LogOut(ctx context.Context) error {
	if err := s.store.backend.Delete(ctx, s.gs.ID); err != nil {
		return err
	}

	fresh := gsessions.NewSession(s.store, s.gs.Name())
	opts := *s.store.Options
	fresh.Options = &opts
	fresh.IsNew = true
	fresh.ID = newSessionID()
	s.gs = fresh

	return s.Save(ctx)
}

// AddFlash queues a one-time message for the next page view.
func (s *Session) AddFlash(ctx context.Context, msg string) error {
	s.gs.AddFlash(msg)
	return s.Save(ctx)
}

// Flashes returns the queued one-time messages and consumes them.
func (s *Session) Flashes(ctx context.Context) ([]string, error) {
	raw := s.gs.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}
	// consuming flashes mutates the session, persist the removal
	if err := s.Save(ctx); err != nil {
		return nil, err
	}
	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if m, ok := f.(string); ok {
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}
