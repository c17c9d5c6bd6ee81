// Package services contains server-side business logic: the subscription and
// confirmation workflows and admin authentication.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dbocharov/newsletter/internal/common"
	"github.com/dbocharov/newsletter/internal/dbx"
	"github.com/dbocharov/newsletter/internal/server/config"
	"github.com/dbocharov/newsletter/internal/server/email"
	"github.com/dbocharov/newsletter/internal/server/models"
	"github.com/dbocharov/newsletter/internal/server/repositories/repomanager"
)

// SubscriptionService registers new subscribers and sends them a
// confirmation link.
type SubscriptionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notifier    email.Notifier
	baseURL     string
}

// NewSubscriptionService constructs a SubscriptionService using repositories
// and server config.
func NewSubscriptionService(db *sql.DB, m repomanager.RepositoryManager, n email.Notifier, cfg *config.Config) *SubscriptionService {
	return &SubscriptionService{
		db:          db,
		repomanager: m,
		notifier:    n,
		baseURL:     cfg.BaseURL,
	}
}

// Subscribe stores a pending subscriber together with a confirmation token in
// one transaction, then emails the confirmation link. The subscriber row is
// durable before the email leaves the process, so a notification failure
// (returned wrapping common.ErrNotification) never loses the registration.
func (s *SubscriptionService) Subscribe(ctx context.Context, input models.NewSubscriber) error {
	sub := &models.Subscriber{
		ID:           uuid.New(),
		Email:        input.Email,
		Name:         input.Name,
		Status:       models.StatusPendingConfirmation,
		SubscribedAt: time.Now(),
	}

	token, err := newSubscriptionToken()
	if err != nil {
		return fmt.Errorf("error issuing subscription token: %w", err)
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Subscribers(tx)
		if err := repo.InsertSubscriber(ctx, sub); err != nil {
			return fmt.Errorf("error storing subscriber: %w", err)
		}
		if err := repo.InsertToken(ctx, sub.ID, token); err != nil {
			return fmt.Errorf("error storing subscription token: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}

	if err := s.sendConfirmationEmail(ctx, sub.Email, token); err != nil {
		return fmt.Errorf("%w: %v", common.ErrNotification, err)
	}
	return nil
}

func (s *SubscriptionService) sendConfirmationEmail(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/subscriptions/confirm?subscription_token=%s", s.baseURL, token)
	return s.notifier.Send(ctx, email.Email{
		To:      to,
		Subject: "Welcome!",
		HTMLBody: fmt.Sprintf(
			"Welcome to our newsletter!<br />Click <a href=\"%s\">here</a> to confirm your subscription.", link),
		TextBody: fmt.Sprintf(
			"Welcome to our newsletter!\nVisit %s to confirm your subscription.", link),
	})
}
