package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dbocharov/newsletter/internal/common"
	"github.com/dbocharov/newsletter/internal/server/repositories/repomanager"
)

// ConfirmationService activates pending subscribers when they follow the
// emailed confirmation link.
type ConfirmationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewConfirmationService(db *sql.DB, m repomanager.RepositoryManager) *ConfirmationService {
	return &ConfirmationService{db: db, repomanager: m}
}

// Confirm resolves a confirmation token and flips the subscriber to
// confirmed. Tokens stay valid after use, so repeating a confirmation
// succeeds and changes nothing. A token that was never issued yields
// common.ErrUnknownToken.
func (s *ConfirmationService) Confirm(ctx context.Context, token string) error {
	repo := s.repomanager.Subscribers(s.db)

	subscriberID, err := repo.ResolveToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUnknownToken
		}
		return fmt.Errorf("error resolving subscription token: %w", err)
	}

	if err := repo.SetConfirmed(ctx, subscriberID); err != nil {
		return fmt.Errorf("error confirming subscriber: %w", err)
	}
	return nil
}
