package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

// UserService provides account and subscription-plan operations for
// authenticated users.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager

	now func() time.Time
}

// NewUserService constructs a UserService.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: m, now: time.Now}
}

// GetCurrentUser returns the user's account record. A plan whose paid period
// has lapsed is downgraded to the free tier on read, so callers always see
// the effective plan.
func (s *UserService) GetCurrentUser(ctx context.Context, userID string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, common.ErrInternal
	}

	if user.PlanExpiresAt != nil && !user.PlanExpiresAt.After(s.now()) {
		if err := repo.UpdatePlan(ctx, user.ID, models.PlanFree, nil); err != nil {
			return nil, common.ErrInternal
		}
		user.Plan = models.PlanFree
		user.PlanExpiresAt = nil
	}

	return user, nil
}

// UpgradePlan switches the user to the plan identified by code and sets the
// plan expiry from the plan's billing cycle: one month ahead for monthly
// plans, one year for yearly, no expiry for non-recurring plans.
func (s *UserService) UpgradePlan(ctx context.Context, userID, code string) (*models.User, error) {
	plan, err := s.repomanager.Plans(s.db).FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrPlanNotFound
		}
		return nil, common.ErrInternal
	}

	var expiresAt *time.Time
	switch plan.BillingCycle {
	case models.BillingMonthly:
		t := s.now().AddDate(0, 1, 0)
		expiresAt = &t
	case models.BillingYearly:
		t := s.now().AddDate(1, 0, 0)
		expiresAt = &t
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.UpdatePlan(ctx, userID, plan.Code, expiresAt); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, common.ErrInternal
	}

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, common.ErrInternal
	}
	return user, nil
}

// DowngradePlan puts the user back on the free tier with no expiry.
func (s *UserService) DowngradePlan(ctx context.Context, userID string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	if err := repo.UpdatePlan(ctx, userID, models.PlanFree, nil); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, common.ErrInternal
	}

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, common.ErrInternal
	}
	return user, nil
}

// ListPlans returns the plan catalog.
func (s *UserService) ListPlans(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	list, err := s.repomanager.Plans(s.db).ListAll(ctx)
	if err != nil {
		return nil, common.ErrInternal
	}
	return list, nil
}
