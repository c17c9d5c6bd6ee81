package models

import "github.com/google/uuid"

// Credential is an admin login record. PasswordHash is a self-describing
// PHC string, so rows hashed under older cost parameters stay verifiable.
type Credential struct {
	UserID       uuid.UUID
	Username     string
	PasswordHash string
}
