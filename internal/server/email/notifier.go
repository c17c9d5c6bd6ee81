// Package email sends transactional email through an external HTTP API.
// Sending is best-effort and fail-fast: one attempt, surfaced failure, no
// queueing or retries.
package email

import "context"

// Email is one outbound message. Both HTML and plain-text bodies are
// provided so the receiving client can pick.
type Email struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Notifier is the outbound email boundary consumed by the subscription
// workflow.
type Notifier interface {
	Send(ctx context.Context, msg Email) error
}
