package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dbocharov/newsletter/internal/common"
	"github.com/dbocharov/newsletter/internal/passhash"
	"github.com/dbocharov/newsletter/internal/server/config"
	"github.com/dbocharov/newsletter/internal/server/repositories/repomanager"
	"github.com/dbocharov/newsletter/internal/server/sessions"
)

// Hashing seams, swappable in tests to avoid paying the argon2 cost and to
// observe verification calls.
var (
	hashPassword   = passhash.Hash
	verifyPassword = passhash.Verify
)

// AuthService provides admin authentication:
// - ValidateCredentials: check a username/password pair
// - Login: validate and bind the user to a rotated session
// - Logout: destroy the session
// - ChangePassword: re-authenticate and store a new hash
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hashParams  passhash.Params

	// fallbackHash is verified against when the username is unknown, so that
	// the unknown-user path costs the same as a failed password check.
	fallbackHash string
}

// NewAuthService constructs an AuthService using repositories and server
// config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) (*AuthService, error) {
	params := passhash.Params{
		Memory:  cfg.Argon2Memory,
		Time:    cfg.Argon2Time,
		Threads: cfg.Argon2Threads,
	}

	dummy, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("error generating fallback password: %w", err)
	}
	fallback, err := hashPassword(dummy, params)
	if err != nil {
		return nil, fmt.Errorf("error hashing fallback password: %w", err)
	}

	return &AuthService{
		db:           db,
		repomanager:  m,
		hashParams:   params,
		fallbackHash: fallback,
	}, nil
}

// ValidateCredentials checks a username/password pair and returns the user id
// on success. Unknown usernames and wrong passwords are indistinguishable:
// both cost one hash verification and both yield common.ErrInvalidCredentials.
func (s *AuthService) ValidateCredentials(ctx context.Context, username, password string) (uuid.UUID, error) {
	repo := s.repomanager.Credentials(s.db)

	cred, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = verifyPassword(s.fallbackHash, password)
			return uuid.Nil, common.ErrInvalidCredentials
		}
		return uuid.Nil, fmt.Errorf("error loading credentials: %w", err)
	}

	ok, err := verifyPassword(cred.PasswordHash, password)
	if err != nil {
		return uuid.Nil, fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return uuid.Nil, common.ErrInvalidCredentials
	}
	return cred.UserID, nil
}

// Login validates the credentials and binds the user to the session. The
// session id is rotated before the user id is stored, so the pre-login id
// never identifies an authenticated session.
func (s *AuthService) Login(ctx context.Context, sess *sessions.Session, username, password string) (uuid.UUID, error) {
	userID, err := s.ValidateCredentials(ctx, username, password)
	if err != nil {
		return uuid.Nil, err
	}
	if err := sess.Renew(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("error rotating session: %w", err)
	}
	if err := sess.InsertUserID(ctx, userID); err != nil {
		return uuid.Nil, fmt.Errorf("error binding session: %w", err)
	}
	return userID, nil
}

// Logout destroys the session if it is authenticated and reports whether a
// user was actually logged out. An anonymous session is left untouched.
func (s *AuthService) Logout(ctx context.Context, sess *sessions.Session) (bool, error) {
	_, err := sess.GetUserID(ctx)
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error reading session: %w", err)
	}
	if err := sess.LogOut(ctx); err != nil {
		return false, fmt.Errorf("error destroying session: %w", err)
	}
	return true, nil
}

// Username returns the username behind a user id, used to greet the
// logged-in admin.
func (s *AuthService) Username(ctx context.Context, userID uuid.UUID) (string, error) {
	username, err := s.repomanager.Credentials(s.db).GetUsername(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("error loading username: %w", err)
	}
	return username, nil
}

// ChangePassword re-authenticates the user with their current password and
// stores a hash of the new one. newPassword and newPasswordCheck must match;
// a mismatch yields a *ValidationError without touching the store.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword, newPasswordCheck string) error {
	if newPassword != newPasswordCheck {
		return &ValidationError{Reason: "you entered two different new passwords - the field values must match"}
	}

	repo := s.repomanager.Credentials(s.db)

	username, err := repo.GetUsername(ctx, userID)
	if err != nil {
		return fmt.Errorf("error loading username: %w", err)
	}
	if _, err := s.ValidateCredentials(ctx, username, currentPassword); err != nil {
		return err
	}

	hash, err := hashPassword(newPassword, s.hashParams)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := repo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("error storing password hash: %w", err)
	}
	return nil
}
