package services

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbocharov/newsletter/internal/common"
	"github.com/dbocharov/newsletter/internal/passhash"
	"github.com/dbocharov/newsletter/internal/server/config"
	"github.com/dbocharov/newsletter/internal/server/repositories/repomanager"
	"github.com/dbocharov/newsletter/internal/server/sessions"
)

// newTestSession returns an anonymous session over an in-memory backend so
// the rotation and logout behavior can be observed directly.
func newTestSession(t *testing.T) (*sessions.Session, *sessions.MemoryBackend) {
	t.Helper()
	backend := sessions.NewMemoryBackend()
	store := sessions.NewStore(backend, time.Minute, []byte("test-secret-key"))
	sess, err := sessions.FromRequest(store, httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	return sess, backend
}

// hashingStub replaces the argon2 seams with a transparent fake so tests stay
// fast and can count verification calls.
type hashingStub struct {
	verifyCalls int
}

func stubHashing(t *testing.T) *hashingStub {
	t.Helper()
	origHash, origVerify := hashPassword, verifyPassword
	t.Cleanup(func() {
		hashPassword, verifyPassword = origHash, origVerify
	})

	s := &hashingStub{}
	hashPassword = func(password string, p passhash.Params) (string, error) {
		return "hash(" + password + ")", nil
	}
	verifyPassword = func(encoded, password string) (bool, error) {
		s.verifyCalls++
		return encoded == "hash("+password+")", nil
	}
	return s
}

func newAuthService(t *testing.T, db *sql.DB) *AuthService {
	t.Helper()
	m, err := repomanager.NewPostgresRepositoryManager(db)
	require.NoError(t, err)
	cfg := &config.Config{}
	cfg.LoadDefaults()
	svc, err := NewAuthService(db, m, cfg)
	require.NoError(t, err)
	return svc
}

func expectCredentialLookup(mock sqlmock.Sqlmock, username string, userID uuid.UUID, hash string) {
	mock.ExpectQuery(`(?s)^SELECT\s+user_id,\s*username,\s*password_hash\s+FROM\s+users`).
		WithArgs(username).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "password_hash"}).
			AddRow(userID.String(), username, hash))
}

func TestAuthService_ValidateCredentials(t *testing.T) {
	stubHashing(t)
	db, mock := newDBMock(t)
	svc := newAuthService(t, db)

	userID := uuid.New()
	expectCredentialLookup(mock, "admin", userID, "hash(secret)")

	got, err := svc.ValidateCredentials(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestAuthService_ValidateCredentialsWrongPassword(t *testing.T) {
	stub := stubHashing(t)
	db, mock := newDBMock(t)
	svc := newAuthService(t, db)

	expectCredentialLookup(mock, "admin", uuid.New(), "hash(secret)")

	_, err := svc.ValidateCredentials(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Equal(t, 1, stub.verifyCalls)
}

func TestAuthService_ValidateCredentialsUnknownUser(t *testing.T) {
	stub := stubHashing(t)
	db, mock := newDBMock(t)
	svc := newAuthService(t, db)

	mock.ExpectQuery(`(?s)^SELECT\s+user_id,\s*username,\s*password_hash\s+FROM\s+users`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := svc.ValidateCredentials(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Equal(t, 1, stub.verifyCalls,
		"unknown usernames must still pay one hash verification")
}

func TestAuthService_ValidateCredentialsStoreError(t *testing.T) {
	stubHashing(t)
	db, mock := newDBMock(t)
	svc := newAuthService(t, db)

	mock.ExpectQuery(`(?s)^SELECT\s+user_id,\s*username,\s*password_hash\s+FROM\s+users`).
		WillReturnError(errors.New("connection reset"))

	_, err := svc.ValidateCredentials(context.Background(), "admin", "secret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrInvalidCredentials,
		"store failures must not masquerade as bad credentials")
}

func TestAuthService_Login(t *testing.T) {
	stubHashing(t)
	db, mock := newDBMock(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	sess, backend := newTestSession(t)
	anonymousID := sess.ID()

	userID := uuid.New()
	expectCredentialLookup(mock, "admin", userID, "hash(secret)")

	got, err := svc.Login(ctx, sess, "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	require.NotEqual(t, anonymousID, sess.ID(), "login must rotate the session id")

	bound, err := sess.GetUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, userID, bound)

	// the pre-login id must be gone from the store
	_, err = backend.Get(ctx, anonymousID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAuthService_LoginBadCredentials(t *testing.T) {
	stubHashing(t)
	db, mock := newDBMock(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	sess, _ := newTestSession(t)
	anonymousID := sess.ID()

	expectCredentialLookup(mock, "admin", uuid.New(), "hash(secret)")

	_, err := svc.Login(ctx, sess, "admin", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Equal(t, anonymousID, sess.ID(), "failed login must not rotate the session")

	_, err = sess.GetUserID(ctx)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAuthService_Logout(t *testing.T) {
	stubHashing(t)
	db, mock := newDBMock(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	sess, backend := newTestSession(t)

	userID := uuid.New()
	expectCredentialLookup(mock, "admin", userID, "hash(secret)")
	_, err := svc.Login(ctx, sess, "admin", "secret")
	require.NoError(t, err)
	boundID := sess.ID()

	loggedOut, err := svc.Logout(ctx, sess)
	require.NoError(t, err)
	assert.True(t, loggedOut)

	// the authenticated id must not be replayable after logout
	_, err = backend.Get(ctx, boundID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = sess.GetUserID(ctx)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAuthService_LogoutAnonymous(t *testing.T) {
	stubHashing(t)
	db, _ := newDBMock(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	sess, _ := newTestSession(t)

	loggedOut, err := svc.Logout(ctx, sess)
	require.NoError(t, err)
	assert.False(t, loggedOut, "logging out an anonymous session is a no-op")
}

func TestAuthService_ChangePassword(t *testing.T) {
	stubHashing(t)
	db, mock := newDBMock(t)
	svc := newAuthService(t, db)

	userID := uuid.New()
	mock.ExpectQuery(`(?s)^SELECT\s+username\s+FROM\s+users`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("admin"))
	expectCredentialLookup(mock, "admin", userID, "hash(oldpass)")
	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+password_hash`).
		WithArgs("hash(newpass)", userID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.ChangePassword(context.Background(), userID, "oldpass", "newpass", "newpass")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_ChangePasswordMismatch(t *testing.T) {
	stubHashing(t)
	db, mock := newDBMock(t)
	svc := newAuthService(t, db)

	err := svc.ChangePassword(context.Background(), uuid.New(), "oldpass", "newpass", "different")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.NoError(t, mock.ExpectationsWereMet(), "a mismatch must not touch the store")
}

func TestAuthService_ChangePasswordWrongCurrent(t *testing.T) {
	stubHashing(t)
	db, mock := newDBMock(t)
	svc := newAuthService(t, db)

	userID := uuid.New()
	mock.ExpectQuery(`(?s)^SELECT\s+username\s+FROM\s+users`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("admin"))
	expectCredentialLookup(mock, "admin", userID, "hash(oldpass)")

	err := svc.ChangePassword(context.Background(), userID, "wrong", "newpass", "newpass")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}
