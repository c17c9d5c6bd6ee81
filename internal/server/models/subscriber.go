// Package models contains the persisted record types of the newsletter
// service.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber status values. A subscriber enters as pending and is flipped to
// confirmed by the confirmation workflow; rows are never deleted.
const (
	StatusPendingConfirmation = "pending_confirmation"
	StatusConfirmed           = "confirmed"
)

// Subscriber is a newsletter subscriber row.
type Subscriber struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Status       string
	SubscribedAt time.Time
}

// NewSubscriber carries validated subscription input. Construct it through
// services.ParseNewSubscriber; a zero value has not been validated.
type NewSubscriber struct {
	Email string
	Name  string
}
