package subscribers

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/dbocharov/newsletter/internal/common"
	"github.com/dbocharov/newsletter/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestInsertSubscriber_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+subscriptions\s*\(id,\s*email,\s*name,\s*subscribed_at,\s*status\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*$`

	sub := &models.Subscriber{
		ID:           uuid.New(),
		Email:        "ursula@example.com",
		Name:         "Ursula Le Guin",
		Status:       models.StatusPendingConfirmation,
		SubscribedAt: time.Now(),
	}

	mock.ExpectExec(q).
		WithArgs(sub.ID, sub.Email, sub.Name, sub.SubscribedAt, sub.Status).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.InsertSubscriber(context.Background(), sub); err != nil {
		t.Fatalf("InsertSubscriber error: %v", err)
	}
}

func TestInsertSubscriber_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+subscriptions`

	mock.ExpectExec(q).WillReturnError(errors.New("db down"))

	err := repo.InsertSubscriber(context.Background(), &models.Subscriber{ID: uuid.New()})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestInsertToken_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+subscription_tokens\s*\(subscription_token,\s*subscriber_id\)\s*VALUES\s*\(\$1,\s*\$2\)\s*$`

	id := uuid.New()
	mock.ExpectExec(q).
		WithArgs("tok25tok25tok25tok25tok25", id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.InsertToken(context.Background(), id, "tok25tok25tok25tok25tok25"); err != nil {
		t.Fatalf("InsertToken error: %v", err)
	}
}

func TestInsertToken_DuplicateSurfacesAsDBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+subscription_tokens`

	mock.ExpectExec(q).WillReturnError(errors.New("duplicate key value violates unique constraint"))

	err := repo.InsertToken(context.Background(), uuid.New(), "sametoken")
	if err == nil || !regexp.MustCompile(`db error: .*duplicate key`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestResolveToken_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+subscriber_id\s+FROM\s+subscription_tokens\s+WHERE\s+subscription_token\s*=\s*\$1\s*$`

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"subscriber_id"}).AddRow(id.String())
	mock.ExpectQuery(q).WithArgs("goodtoken").WillReturnRows(rows)

	got, err := repo.ResolveToken(context.Background(), "goodtoken")
	if err != nil {
		t.Fatalf("ResolveToken error: %v", err)
	}
	if got != id {
		t.Fatalf("unexpected subscriber id: %v", got)
	}
}

func TestResolveToken_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+subscriber_id\s+FROM\s+subscription_tokens`

	mock.ExpectQuery(q).WithArgs("ghosttoken").WillReturnError(sql.ErrNoRows)

	_, err := repo.ResolveToken(context.Background(), "ghosttoken")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestSetConfirmed_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+subscriptions\s+SET\s+status\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2\s*$`

	id := uuid.New()
	mock.ExpectExec(q).
		WithArgs(models.StatusConfirmed, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetConfirmed(context.Background(), id); err != nil {
		t.Fatalf("SetConfirmed error: %v", err)
	}
}

func TestSetConfirmed_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+subscriptions`

	mock.ExpectExec(q).WillReturnError(errors.New("db err"))

	err := repo.SetConfirmed(context.Background(), uuid.New())
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*email,\s*name,\s*status,\s*subscribed_at\s+FROM\s+subscriptions\s+WHERE\s+email\s*=\s*\$1\s*$`

	id := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "name", "status", "subscribed_at"}).
		AddRow(id.String(), "ursula@example.com", "Ursula Le Guin", models.StatusPendingConfirmation, now)
	mock.ExpectQuery(q).WithArgs("ursula@example.com").WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "ursula@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != id || got.Status != models.StatusPendingConfirmation {
		t.Fatalf("unexpected subscriber: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*email,\s*name,\s*status,\s*subscribed_at\s+FROM\s+subscriptions`

	mock.ExpectQuery(q).WithArgs("nobody@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}
