// Package plans declares the read-only repository contract for the
// subscription plan catalog.
package plans

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository defines lookups into the plan catalog. Lookups return
// common.ErrNotFound when no row matches.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*models.SubscriptionPlan, error)
	FindByID(ctx context.Context, id string) (*models.SubscriptionPlan, error)
	ListAll(ctx context.Context) ([]*models.SubscriptionPlan, error)
}
