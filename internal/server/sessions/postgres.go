package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dbocharov/newsletter/internal/common"
	"github.com/dbocharov/newsletter/internal/dbx"
	"github.com/dbocharov/newsletter/internal/server/models"
)

// PostgresBackend stores session rows in the sessions table.
type PostgresBackend struct {
	db dbx.DBTX
}

// NewPostgresBackend creates a session backend over an open connection pool.
func NewPostgresBackend(db dbx.DBTX) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (b *PostgresBackend) Save(ctx context.Context, sess *models.Session) error {
	query := `
		INSERT INTO sessions (id, data, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at;
	`
	_, err := b.db.ExecContext(ctx, query, sess.ID, sess.Values, sess.Expires)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Get(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT id, data, expires_at FROM sessions WHERE id = $1;`

	var sess models.Session
	row := b.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&sess.ID, &sess.Values, &sess.Expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if !sess.Expires.After(timeNow()) {
		// expired rows are discarded lazily, on first access past expiry
		if err := b.Delete(ctx, id); err != nil {
			return nil, err
		}
		return nil, common.ErrorNotFound
	}

	return &sess, nil
}

func (b *PostgresBackend) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM sessions WHERE id = $1;`
	if _, err := b.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
