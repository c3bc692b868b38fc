// Package httpapi exposes the authentication and account services over a
// JSON HTTP API.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
)

// AuthService is the authentication surface the transport depends on.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string, meta services.ClientMeta) (*models.User, *services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string, revokeAll bool) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	SendVerificationEmail(ctx context.Context, userID string) error
	VerifyEmail(ctx context.Context, token string) error
}

// UserService is the account surface the transport depends on.
type UserService interface {
	GetCurrentUser(ctx context.Context, userID string) (*models.User, error)
	UpgradePlan(ctx context.Context, userID, code string) (*models.User, error)
	DowngradePlan(ctx context.Context, userID string) (*models.User, error)
	ListPlans(ctx context.Context) ([]*models.SubscriptionPlan, error)
}

const shutdownTimeout = 5 * time.Second

// HTTPServer serves the public JSON API.
type HTTPServer struct {
	address string
	auth    AuthService
	users   UserService
	codec   *auth.Codec
	logger  logging.Logger
}

// NewHTTPServer constructs an HTTPServer bound to the given address.
func NewHTTPServer(a string, l logging.Logger, as AuthService, us UserService, codec *auth.Codec) (*HTTPServer, error) {
	return &HTTPServer{
		address: a,
		logger:  l.With("module", "http_server"),
		auth:    as,
		users:   us,
		codec:   codec,
	}, nil
}

// routes wires all endpoints into a mux. Split out of Run so tests can drive
// the handlers without a listening socket.
func (s *HTTPServer) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/refresh", s.handleRefresh)
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
	mux.HandleFunc("POST /auth/forgot-password", s.handleForgotPassword)
	mux.HandleFunc("POST /auth/reset-password", s.handleResetPassword)
	mux.HandleFunc("POST /auth/verify-email", s.handleVerifyEmail)
	mux.HandleFunc("POST /auth/resend-verification", s.requireAuth(s.handleResendVerification))

	mux.HandleFunc("GET /users/me", s.requireAuth(s.handleGetCurrentUser))

	mux.HandleFunc("GET /plans", s.handleListPlans)
	mux.HandleFunc("POST /plans/upgrade", s.requireAuth(s.handleUpgradePlan))
	mux.HandleFunc("POST /plans/downgrade", s.requireAuth(s.handleDowngradePlan))

	mux.HandleFunc("GET /healthz", s.handleHealth)

	return mux
}

// Run starts the server and blocks until ctx is cancelled, then shuts down
// gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.routes(),
	}

	errCh := make(chan error, 1)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		errCh <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return <-errCh
}
