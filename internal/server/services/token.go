package services

import "github.com/dbocharov/newsletter/internal/common"

const (
	subscriptionTokenLength   = 25
	subscriptionTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// newSubscriptionToken issues a confirmation token. Tokens are opaque and
// case-sensitive; their only guarantee is unguessability.
var newSubscriptionToken = func() (string, error) {
	return common.MakeRandString(subscriptionTokenLength, subscriptionTokenAlphabet)
}
