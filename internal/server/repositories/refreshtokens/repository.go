// Package refreshtokens declares the session-store contract: durable refresh
// tokens with monotonic revocation.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking
// refresh tokens.
//
// Validity is always decided by the caller from the returned record
// (exists, not revoked, expiry strictly in the future); the store itself
// only persists state.
type Repository interface {
	// Create stores a new refresh token. The caller supplies the opaque
	// token value and the absolute expiry; a duplicate token value is a db
	// error (unique constraint), not a retry case.
	Create(ctx context.Context, token *models.RefreshToken) (*models.RefreshToken, error)

	// Find looks a refresh token up by its opaque value.
	// Returns common.ErrNotFound when the value is unknown.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Revoke marks a token revoked. Idempotent: revoking an already-revoked
	// or unknown token is not an error.
	Revoke(ctx context.Context, token string) error

	// RevokeIfActive marks a token revoked only if it is not revoked yet and
	// reports whether this call performed the transition. Used by rotation so
	// that exactly one of two concurrent refreshes wins.
	RevokeIfActive(ctx context.Context, token string) (bool, error)

	// RevokeAllForUser revokes every token belonging to the user. Idempotent.
	RevokeAllForUser(ctx context.Context, userID string) error

	// DeleteExpired removes tokens whose expiry lies before the given
	// instant and returns the number of rows deleted.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
