// Package credentials persists admin login records.
package credentials

import (
	"context"

	"github.com/google/uuid"

	"github.com/dbocharov/newsletter/internal/server/models"
)

// Repository is the persistence boundary for admin credentials. The store is
// read-mostly; only the password-change path and out-of-band provisioning
// write to it.
type Repository interface {
	// GetByUsername returns the credential record for a username, or
	// common.ErrorNotFound.
	GetByUsername(ctx context.Context, username string) (*models.Credential, error)

	// GetUsername returns the username for a user id, or common.ErrorNotFound.
	GetUsername(ctx context.Context, userID uuid.UUID) (string, error)

	// UpdatePasswordHash overwrites the stored hash. Old hashes are not
	// retained.
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, passwordHash string) error

	// Upsert creates the credential record or replaces its hash, used by
	// out-of-band admin provisioning.
	Upsert(ctx context.Context, cred *models.Credential) error
}
