package models

import "time"

// Session is a server-side session record keyed by an opaque unguessable id.
// Values holds the securecookie-encoded attribute map; only the encoded id
// ever travels to the client. Expires is advanced on every access by the
// idle timeout.
type Session struct {
	ID      string
	Values  string
	Expires time.Time
}
