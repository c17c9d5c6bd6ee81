package httpapi

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dbocharov/newsletter/internal/common"
	"github.com/dbocharov/newsletter/internal/server/services"
	"github.com/dbocharov/newsletter/internal/server/sessions"
)

const loginPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta http-equiv="content-type" content="text/html; charset=utf-8">
    <title>Login</title>
</head>
<body>
    %s<form action="/login" method="post">
        <label>Username
            <input type="text" placeholder="Enter Username" name="username">
        </label>
        <label>Password
            <input type="password" placeholder="Enter Password" name="password">
        </label>
        <button type="submit">Login</button>
    </form>
</body>
</html>`

const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta http-equiv="content-type" content="text/html; charset=utf-8">
    <title>Admin dashboard</title>
</head>
<body>
    <p>Welcome %s!</p>
    <p>Available actions:</p>
    <ol>
        <li><a href="/admin/password">Change password</a></li>
        <li>
            <form name="logoutForm" action="/admin/logout" method="post">
                <input type="submit" value="Logout">
            </form>
        </li>
    </ol>
</body>
</html>`

const changePasswordPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta http-equiv="content-type" content="text/html; charset=utf-8">
    <title>Change password</title>
</head>
<body>
    %s<form action="/admin/password" method="post">
        <label>Current password
            <input type="password" placeholder="Enter current password" name="current_password">
        </label>
        <label>New password
            <input type="password" placeholder="Enter new password" name="new_password">
        </label>
        <label>Confirm new password
            <input type="password" placeholder="Type the new password again" name="new_password_check">
        </label>
        <button type="submit">Change password</button>
    </form>
    <p><a href="/admin/dashboard">&lt;- Back</a></p>
</body>
</html>`

// session returns the request's session, creating an anonymous one when the
// cookie is absent, undecodable, or expired.
func (s *HTTPServer) session(w http.ResponseWriter, r *http.Request) (*sessions.Session, error) {
	return sessions.FromRequest(s.sessionStore, w, r)
}

// flashHTML renders and consumes the session's one-shot messages, or ""
// when there are none.
func (s *HTTPServer) flashHTML(r *http.Request, sess *sessions.Session) string {
	msgs, err := sess.Flashes(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "error reading flash messages", "error", err)
		return ""
	}
	var b strings.Builder
	for _, msg := range msgs {
		fmt.Fprintf(&b, "<p><i>%s</i></p>\n    ", html.EscapeString(msg))
	}
	return b.String()
}

// flash queues a one-shot message; a failure is logged but never blocks the
// redirect it precedes.
func (s *HTTPServer) flash(r *http.Request, sess *sessions.Session, msg string) {
	if err := sess.AddFlash(r.Context(), msg); err != nil {
		s.logger.Error(r.Context(), "error storing flash message", "error", err)
	}
}

// authenticatedSession resolves the request's session and its user id.
// Anonymous (or expired) sessions get redirected to /login; the caller must
// return immediately when ok is false.
func (s *HTTPServer) authenticatedSession(w http.ResponseWriter, r *http.Request) (*sessions.Session, uuid.UUID, bool) {
	sess, err := s.session(w, r)
	if err != nil {
		s.logger.Error(r.Context(), "error resolving session", "error", err)
		http.Error(w, "", http.StatusInternalServerError)
		return nil, uuid.Nil, false
	}

	userID, err := sess.GetUserID(r.Context())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return nil, uuid.Nil, false
		}
		s.logger.Error(r.Context(), "error reading session", "error", err)
		http.Error(w, "", http.StatusInternalServerError)
		return nil, uuid.Nil, false
	}
	return sess, userID, true
}

func (s *HTTPServer) loginForm(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.logger.Error(r.Context(), "error resolving session", "error", err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, loginPage, s.flashHTML(r, sess))
}

// login validates the submitted credentials and binds the user to a rotated
// session. Both unknown usernames and wrong passwords surface the same
// generic flash message.
func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form data", http.StatusBadRequest)
		return
	}

	sess, err := s.session(w, r)
	if err != nil {
		s.logger.Error(ctx, "error resolving session", "error", err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	_, err = s.auth.Login(ctx, sess, r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			s.flash(r, sess, "Authentication failed")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		s.logger.Error(ctx, "login error", "error", err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

func (s *HTTPServer) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, userID, ok := s.authenticatedSession(w, r)
	if !ok {
		return
	}

	username, err := s.auth.Username(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "error loading username", "error", err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, dashboardPage, html.EscapeString(username))
}

func (s *HTTPServer) changePasswordForm(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.authenticatedSession(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, changePasswordPage, s.flashHTML(r, sess))
}

func (s *HTTPServer) changePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form data", http.StatusBadRequest)
		return
	}

	sess, userID, ok := s.authenticatedSession(w, r)
	if !ok {
		return
	}

	err := s.auth.ChangePassword(ctx, userID,
		r.PostFormValue("current_password"),
		r.PostFormValue("new_password"),
		r.PostFormValue("new_password_check"))
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			s.flash(r, sess, "You entered two different new passwords - the field values must match.")
		case errors.Is(err, common.ErrInvalidCredentials):
			s.flash(r, sess, "The current password is incorrect.")
		default:
			s.logger.Error(ctx, "error changing password", "error", err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/admin/password", http.StatusSeeOther)
		return
	}

	s.flash(r, sess, "Your password has been changed.")
	http.Redirect(w, r, "/admin/password", http.StatusSeeOther)
}

// logout destroys an authenticated session and redirects to the login page.
// For anonymous sessions it is a plain redirect.
func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := s.session(w, r)
	if err != nil {
		s.logger.Error(ctx, "error resolving session", "error", err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	loggedOut, err := s.auth.Logout(ctx, sess)
	if err != nil {
		s.logger.Error(ctx, "logout error", "error", err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	if loggedOut {
		// the flash lands on the fresh anonymous session logout left behind
		s.flash(r, sess, "You have successfully logged out.")
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
