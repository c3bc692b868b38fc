// Package users declares the repository contract for identity records.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository defines persistence operations for users. Lookups return
// common.ErrNotFound when no row matches.
type Repository interface {
	// Create inserts a new user and returns it with server-assigned fields.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail looks a user up by normalized email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID looks a user up by id.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// UpdatePasswordHash replaces the stored credential hash.
	UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error

	// SetEmailVerified marks the user's email address as verified.
	SetEmailVerified(ctx context.Context, id string) error

	// UpdatePlan sets the user's plan code and optional plan expiry.
	UpdatePlan(ctx context.Context, id string, plan string, planExpiresAt *time.Time) error
}
