package models

import "time"

// OneTimeToken is the shared shape of password-reset and email-verification
// tokens. UsedAt is set at most once; a used token is permanently inert even
// if it has not yet expired.
type OneTimeToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
