// Package onetimetokens provides the generic store for single-use, time-boxed
// tokens. Password-reset and email-verification tokens share this contract
// and implementation, parameterized only by the backing table, so the
// consumption and expiry rules cannot drift between the two.
package onetimetokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository defines operations for issuing and consuming single-use tokens.
type Repository interface {
	// Create stores a new token for userID with the given opaque value and
	// absolute expiry.
	Create(ctx context.Context, userID, token string, expiresAt time.Time) (*models.OneTimeToken, error)

	// Find looks a token up by its opaque value.
	// Returns common.ErrNotFound when the value is unknown.
	Find(ctx context.Context, token string) (*models.OneTimeToken, error)

	// MarkUsed records consumption at usedAt, only if the token has not been
	// consumed before, and reports whether this call won the transition.
	// At most one concurrent caller observes true.
	MarkUsed(ctx context.Context, token string, usedAt time.Time) (bool, error)

	// DeleteExpired removes tokens whose expiry lies before the given
	// instant and returns the number of rows deleted.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
