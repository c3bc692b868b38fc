// Package mail defines the notification sender used to deliver single-use
// tokens to users. Delivery is best-effort from the orchestrator's point of
// view: failures are logged, never surfaced to the caller.
package mail

import "context"

// Sender delivers verification and password-reset tokens out of band.
type Sender interface {
	SendVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}
