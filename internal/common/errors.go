// Package common defines shared constants and sentinel errors used across
// the newsletter service. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password. The two cases are deliberately indistinguishable to the
	// caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnknownToken marks a confirmation token that was never issued.
	// Reported to clients as an unauthorized outcome, not a server fault.
	ErrUnknownToken = errors.New("unknown subscription token")

	// ErrNotification marks a failed confirmation-email send after the
	// subscriber was already durably persisted.
	ErrNotification = errors.New("notification failed")
)
