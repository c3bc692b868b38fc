package models

import "time"

// RefreshToken is a durable session record. The token value is an opaque
// random string; UserAgent and IPAddress are informational client metadata
// captured at login and carried forward on rotation.
//
// Revocation is monotonic: once IsRevoked is set, the token is permanently
// unusable regardless of its expiry state.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	UserAgent string
	IPAddress string
	IsRevoked bool
	ExpiresAt time.Time
	CreatedAt time.Time
}
