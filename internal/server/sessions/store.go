// Package sessions provides server-side sessions on top of gorilla/sessions:
// opaque unguessable ids mapped to small attribute sets, with an idle expiry
// enforced by the store itself. Only the securecookie-encoded session id
// travels in the cookie; attributes stay server side, so a session can be
// expired or revoked regardless of what the browser still holds.
package sessions

import (
	"context"
	"encoding/base32"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	gsessions "github.com/gorilla/sessions"

	"github.com/dbocharov/newsletter/internal/common"
	"github.com/dbocharov/newsletter/internal/server/models"
)

// CookieSession is the name of the session cookie.
const CookieSession = "session"

// Backend persists encoded session rows keyed by the opaque session id.
type Backend interface {
	// Save inserts a session row or overwrites an existing one.
	Save(ctx context.Context, sess *models.Session) error

	// Get returns a live session row, or common.ErrorNotFound for ids that
	// are unknown or expired. Expired rows are discarded on access.
	Get(ctx context.Context, id string) (*models.Session, error)

	// Delete destroys a session row. Deleting an unknown id is a no-op.
	Delete(ctx context.Context, id string) error
}

// timeNow is a seam for idle-expiry tests.
var timeNow = time.Now

// newSessionID returns a fresh opaque session id: 32 random bytes, base32
// encoded so it survives cookie and SQL transport untouched.
func newSessionID() string {
	return base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32))
}

// Store is a session store backed by a Backend (Postgres in production,
// memory in tests).
//
// Store implements the gorilla/sessions Store interface.
type Store struct {
	Codecs      []securecookie.Codec
	Options     *gsessions.Options
	backend     Backend
	idleTimeout time.Duration
}

// NewStore returns a Store over the given backend. Key pairs are handed to
// securecookie: the first key of each pair authenticates the cookie, the
// optional second one encrypts it.
func NewStore(b Backend, idleTimeout time.Duration, keyPairs ...[]byte) *Store {
	codecs := securecookie.CodecsFromPairs(keyPairs...)
	for _, codec := range codecs {
		if sc, ok := codec.(*securecookie.SecureCookie); ok {
			sc.MaxAge(int(idleTimeout.Seconds()))
		}
	}

	return &Store{
		Codecs: codecs,
		Options: &gsessions.Options{
			Path:     "/",
			MaxAge:   int(idleTimeout.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
		backend:     b,
		idleTimeout: idleTimeout,
	}
}

// Get returns the request's session after registering it, so repeated
// lookups within one request reuse the same decoded session.
//
// Satisfies the gorilla/sessions Store interface.
func (s *Store) Get(r *http.Request, name string) (*gsessions.Session, error) {
	return gsessions.GetRegistry(r).Get(s, name)
}

// New returns the session the request's cookie points at, or a fresh
// anonymous one when the cookie is absent, undecodable, or names a session
// that is unknown or expired; check IsNew to tell the two apart. Loading a
// live session pushes its idle expiry forward.
//
// Satisfies the gorilla/sessions Store interface.
func (s *Store) New(r *http.Request, name string) (*gsessions.Session, error) {
	session := gsessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true
	session.ID = newSessionID()

	c, err := r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) {
		return session, nil
	} else if err != nil {
		return session, err
	}

	// The cookie carries only the encoded session id; an undecodable
	// cookie counts as no cookie.
	if err := securecookie.DecodeMulti(name, c.Value, &session.ID, s.Codecs...); err != nil {
		session.ID = newSessionID()
		return session, nil
	}

	row, err := s.backend.Get(r.Context(), session.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			session.ID = newSessionID()
			return session, nil
		}
		return session, err
	}

	if err := securecookie.DecodeMulti(name, row.Values, &session.Values, s.Codecs...); err != nil {
		return session, err
	}
	session.IsNew = false

	// touch: accessing a live session extends it by the idle timeout
	row.Expires = timeNow().Add(s.idleTimeout)
	if err := s.backend.Save(r.Context(), row); err != nil {
		return session, err
	}

	return session, nil
}

// Save persists the session to the backend and refreshes the cookie with
// the encoded session id. Saving with a non-positive MaxAge deletes the
// session and clears the cookie instead.
//
// Satisfies the gorilla/sessions Store interface.
func (s *Store) Save(r *http.Request, w http.ResponseWriter, session *gsessions.Session) error {
	if session.Options.MaxAge <= 0 {
		if err := s.backend.Delete(r.Context(), session.ID); err != nil {
			return err
		}
		http.SetCookie(w, gsessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.Values, s.Codecs...)
	if err != nil {
		return err
	}
	err = s.backend.Save(r.Context(), &models.Session{
		ID:      session.ID,
		Values:  encoded,
		Expires: timeNow().Add(s.idleTimeout),
	})
	if err != nil {
		return err
	}

	encodedID, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return err
	}
	http.SetCookie(w, gsessions.NewCookie(session.Name(), encodedID, session.Options))

	return nil
}
