package subscribers

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

func (r *PostgresRepository) InsertSubscriber(ctx context.Context, sub *models.Subscriber) error {

	query :=
		`INSERT INTO subscriptions (id, email, name, subscribed_at, status)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	_, err := r.db.ExecContext(ctx, query,
		sub.ID, sub.Email, sub.Name, sub.SubscribedAt, sub.Status)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) InsertToken(ctx context.Context, subscriberID uuid.UUID, token string) error {

	query :=
		`INSERT INTO subscription_tokens (subscription_token, subscriber_id)
		 VALUES ($1, $2)
		 `

	_, err := r.db.ExecContext(ctx, query, token, subscriberID)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ResolveToken(ctx context.Context, token string) (uuid.UUID, error) {

	query :=
		`SELECT subscriber_id FROM subscription_tokens
		 WHERE subscription_token = $1
		 `

	var subscriberID uuid.UUID
	err := r.db.QueryRowContext(ctx, query, token).Scan(&subscriberID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, common.ErrorNotFound
		}
		return uuid.Nil, fmt.Errorf("db error: %w", err)
	}

	return subscriberID, nil
}

func (r *PostgresRepository) SetConfirmed(ctx context.Context, subscriberID uuid.UUID) error {

	query :=
		`UPDATE subscriptions SET status = $1
		 WHERE id = $2
		 `

	_, err := r.db.ExecContext(ctx, query, models.StatusConfirmed, subscriberID)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Subscriber, error) {

	query :=
		`SELECT id, email, name, status, subscribed_at FROM subscriptions
		 WHERE email = $1
		 `

	sub := &models.Subscriber{}
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&sub.ID, &sub.Email, &sub.Name, &sub.Status, &sub.SubscribedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return sub, nil
}
