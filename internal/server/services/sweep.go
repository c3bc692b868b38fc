package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

// SweepResult reports how many expired rows a sweep pass removed per table.
type SweepResult struct {
	RefreshTokens           int64
	PasswordResetTokens     int64
	EmailVerificationTokens int64
}

// SweepService deletes expired token rows. Expiry already makes the tokens
// unusable; the sweep only keeps the tables from growing without bound.
type SweepService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger

	now func() time.Time
}

// NewSweepService constructs a SweepService.
func NewSweepService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *SweepService {
	return &SweepService{db: db, repomanager: m, logger: logger.With("module", "sweep"), now: time.Now}
}

// Sweep runs one deletion pass over all three token tables.
func (s *SweepService) Sweep(ctx context.Context) (*SweepResult, error) {
	before := s.now()
	res := &SweepResult{}

	var err error
	if res.RefreshTokens, err = s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, before); err != nil {
		return nil, fmt.Errorf("error sweeping refresh tokens: %v", err)
	}
	if res.PasswordResetTokens, err = s.repomanager.PasswordResetTokens(s.db).DeleteExpired(ctx, before); err != nil {
		return nil, fmt.Errorf("error sweeping password reset tokens: %v", err)
	}
	if res.EmailVerificationTokens, err = s.repomanager.EmailVerificationTokens(s.db).DeleteExpired(ctx, before); err != nil {
		return nil, fmt.Errorf("error sweeping email verification tokens: %v", err)
	}

	s.logger.Info(ctx, "sweep pass finished",
		"refresh_tokens", res.RefreshTokens,
		"password_reset_tokens", res.PasswordResetTokens,
		"email_verification_tokens", res.EmailVerificationTokens,
	)
	return res, nil
}
