// Package subscribers persists newsletter subscribers and their
// confirmation tokens.
package subscribers

import (
	"context"

	"github.com/google/uuid"

	"github.com/dbocharov/newsletter/internal/server/models"
)

// Repository is the persistence boundary for subscribers and confirmation
// tokens. Implementations are bound to a dbx.DBTX at construction, so the
// same interface serves both pooled and transactional access.
type Repository interface {
	// InsertSubscriber stores a new subscriber row.
	InsertSubscriber(ctx context.Context, sub *models.Subscriber) error

	// InsertToken stores a confirmation token referencing a subscriber.
	// Token values are globally unique; a duplicate surfaces as a db error.
	InsertToken(ctx context.Context, subscriberID uuid.UUID, token string) error

	// ResolveToken returns the subscriber id a token was issued for, or
	// common.ErrorNotFound when the token was never issued.
	ResolveToken(ctx context.Context, token string) (uuid.UUID, error)

	// SetConfirmed flips a subscriber's status to confirmed. Confirming an
	// already-confirmed subscriber is a no-op.
	SetConfirmed(ctx context.Context, subscriberID uuid.UUID) error

	// GetByEmail returns the subscriber with the given email, or
	// common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.Subscriber, error)
}
