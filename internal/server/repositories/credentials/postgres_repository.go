package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dbocharov/newsletter/internal/common"
	"github.com/dbocharov/newsletter/internal/dbx"
	"github.com/dbocharov/newsletter/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Credential, error) {

	query :=
		`SELECT user_id, username, password_hash FROM users
		 WHERE username = $1
		 `

	cred := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&cred.UserID, &cred.Username, &cred.PasswordHash)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return cred, nil
}

func (r *PostgresRepository) GetUsername(ctx context.Context, userID uuid.UUID) (string, error) {

	query :=
		`SELECT username FROM users
		 WHERE user_id = $1
		 `

	var username string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&username)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	return username, nil
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, passwordHash string) error {

	query :=
		`UPDATE users SET password_hash = $1
		 WHERE user_id = $2
		 `

	_, err := r.db.ExecContext(ctx, query, passwordHash, userID)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, cred *models.Credential) error {

	query :=
		`INSERT INTO users (user_id, username, password_hash)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
		 `

	_, err := r.db.ExecContext(ctx, query, cred.UserID, cred.Username, cred.PasswordHash)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
