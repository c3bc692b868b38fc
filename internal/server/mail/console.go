package mail

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

// ConsoleSender writes deliveries to the structured log instead of sending
// real email. Intended for development and tests.
type ConsoleSender struct {
	logger logging.Logger
}

func NewConsoleSender(l logging.Logger) *ConsoleSender {
	return &ConsoleSender{logger: l.With("module", "mail")}
}

func (s *ConsoleSender) SendVerification(ctx context.Context, email, token string) error {
	s.logger.Info(ctx, "verification email", "to", email, "token", token)
	return nil
}

func (s *ConsoleSender) SendPasswordReset(ctx context.Context, email, token string) error {
	s.logger.Info(ctx, "password reset email", "to", email, "token", token)
	return nil
}
