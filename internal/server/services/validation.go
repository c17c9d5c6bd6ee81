package services

import (
	"net/mail"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dbocharov/newsletter/internal/server/models"
)

const maxNameGraphemes = 256

// Characters that would let a subscriber name break out of the HTML or
// templating contexts it is rendered in.
const forbiddenNameChars = `/()"<>\{}`

// ParseNewSubscriber validates raw subscription input and returns it as a
// models.NewSubscriber. Invalid input yields a *ValidationError.
func ParseNewSubscriber(email, name string) (models.NewSubscriber, error) {
	if err := validateEmail(email); err != nil {
		return models.NewSubscriber{}, err
	}
	if err := validateName(name); err != nil {
		return models.NewSubscriber{}, err
	}
	return models.NewSubscriber{Email: email, Name: name}, nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &ValidationError{Reason: "invalid email address"}
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Reason: "name must not be empty"}
	}
	if uniseg.GraphemeClusterCount(name) > maxNameGraphemes {
		return &ValidationError{Reason: "name is too long"}
	}
	if strings.ContainsAny(name, forbiddenNameChars) {
		return &ValidationError{Reason: "name contains forbidden characters"}
	}
	return nil
}
