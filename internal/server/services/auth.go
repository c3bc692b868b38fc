// Package services contains server-side business logic. This file implements
// AuthService, which handles registration, login, refresh-token rotation,
// logout, and the single-use password-reset and email-verification flows.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/mail"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

// dummyPasswordHash is compared against when login hits an unknown email, so
// the request costs a bcrypt verification either way and response timing does
// not reveal whether the account exists.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// ClientMeta is informational request metadata stored alongside a refresh
// token when a session is created.
type ClientMeta struct {
	UserAgent string
	IPAddress string
}

// AuthService provides authentication and session-lifecycle operations:
//   - Register: create accounts and start email verification
//   - Login: verify credentials and mint token pairs
//   - Refresh: rotate refresh tokens and mint new access tokens
//   - Logout: revoke one session or all sessions of a user
//   - ForgotPassword / ResetPassword: single-use reset tokens
//   - SendVerificationEmail / VerifyEmail: single-use verification tokens
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
	hasher      password.Hasher
	mailer      mail.Sender
	logger      logging.Logger

	refreshTokenValidityDuration           time.Duration
	passwordResetTokenValidityDuration     time.Duration
	emailVerificationTokenValidityDuration time.Duration

	now func() time.Time
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec,
	hasher password.Hasher, mailer mail.Sender, logger logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		codec:       codec,
		hasher:      hasher,
		mailer:      mailer,
		logger:      logger.With("module", "auth"),

		refreshTokenValidityDuration:           cfg.RefreshTokenValidityDuration,
		passwordResetTokenValidityDuration:     cfg.PasswordResetTokenValidityDuration,
		emailVerificationTokenValidityDuration: cfg.EmailVerificationTokenValidityDuration,

		now: time.Now,
	}
}

// Register creates a new user with the normalized email and kicks off email
// verification. No session is issued: the caller logs in afterwards. The
// verification mail is best-effort: a delivery failure is logged, not
// returned.
func (s *AuthService) Register(ctx context.Context, email, plaintext string) (*models.User, error) {
	email = common.NormalizeEmail(email)

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, common.ErrEmailTaken
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInternal
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, common.ErrInternal
	}

	user, err := repo.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Plan:         models.PlanFree,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %v", err)
	}

	s.deliverVerificationToken(ctx, user)

	return user, nil
}

// Login verifies the credentials and, on success, returns the user and a new
// TokenPair. Unknown email and wrong password are indistinguishable to the
// caller.
func (s *AuthService) Login(ctx context.Context, email, plaintext string, meta ClientMeta) (*models.User, *TokenPair, error) {
	email = common.NormalizeEmail(email)

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// burn a comparison so the miss costs as much as a hit
			s.hasher.Compare(plaintext, dummyPasswordHash)
			return nil, nil, common.ErrInvalidCredentials
		}
		return nil, nil, common.ErrInternal
	}

	if !s.hasher.Compare(plaintext, user.PasswordHash) {
		return nil, nil, common.ErrInvalidCredentials
	}

	pair, err := s.generateTokenPair(ctx, user, s.db, meta)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh validates a refresh token, rotates it transactionally, and returns
// a fresh TokenPair. Exactly one of two concurrent calls with the same token
// succeeds; the loser gets ErrTokenRevoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrTokenUnknown
		}
		return nil, fmt.Errorf("error searching refresh token: %v", err)
	}
	if token.IsRevoked {
		return nil, common.ErrTokenRevoked
	}
	if !token.ExpiresAt.After(s.now()) {
		return nil, common.ErrTokenExpired
	}

	meta := ClientMeta{UserAgent: token.UserAgent, IPAddress: token.IPAddress}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		won, err := s.repomanager.RefreshTokens(tx).RevokeIfActive(ctx, refreshToken)
		if err != nil {
			return fmt.Errorf("error revoking refresh token: %v", err)
		}
		if !won {
			// a concurrent refresh rotated this token first
			return common.ErrTokenRevoked
		}

		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrTokenUnknown
			}
			return common.ErrInternal
		}

		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user, tx, meta)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes the session behind the given refresh token, or every
// session of its owner when revokeAll is set. An unknown or already-revoked
// token is not an error: logout succeeds from the client's point of view.
func (s *AuthService) Logout(ctx context.Context, refreshToken string, revokeAll bool) error {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("error searching refresh token: %v", err)
	}

	if revokeAll {
		return repo.RevokeAllForUser(ctx, token.UserID)
	}
	return repo.Revoke(ctx, refreshToken)
}

// ForgotPassword issues a single-use reset token and mails it to the user.
// The outcome for an unknown email is identical to the success path, so the
// endpoint cannot be used to probe which addresses have accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = common.NormalizeEmail(email)

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return common.ErrInternal
	}

	token := uuid.NewString()
	expiresAt := s.now().Add(s.passwordResetTokenValidityDuration)
	if _, err := s.repomanager.PasswordResetTokens(s.db).Create(ctx, user.ID, token, expiresAt); err != nil {
		return common.ErrInternal
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		s.logger.Error(ctx, "error sending password reset mail", "error", err)
	}
	return nil
}

// ResetPassword consumes a reset token, replaces the user's password, and
// revokes all of the user's sessions in the same transaction. At most one
// concurrent call per token succeeds.
func (s *AuthService) ResetPassword(ctx context.Context, tokenValue, plaintext string) error {
	token, err := s.checkSingleUseToken(ctx, s.repomanager.PasswordResetTokens(s.db), tokenValue)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return common.ErrInternal
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		won, err := s.repomanager.PasswordResetTokens(tx).MarkUsed(ctx, tokenValue, s.now())
		if err != nil {
			return fmt.Errorf("error consuming reset token: %v", err)
		}
		if !won {
			return common.ErrTokenAlreadyUsed
		}

		if err := s.repomanager.Users(tx).UpdatePasswordHash(ctx, token.UserID, hash); err != nil {
			return fmt.Errorf("error updating password: %v", err)
		}

		// force re-authentication everywhere with the new password
		if err := s.repomanager.RefreshTokens(tx).RevokeAllForUser(ctx, token.UserID); err != nil {
			return fmt.Errorf("error revoking sessions: %v", err)
		}
		return nil
	})
}

// SendVerificationEmail issues a fresh verification token for the user and
// mails it. Already-verified users are a no-op.
func (s *AuthService) SendVerificationEmail(ctx context.Context, userID string) error {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUserNotFound
		}
		return common.ErrInternal
	}
	if user.IsEmailVerified {
		return nil
	}
	return s.deliverVerificationToken(ctx, user)
}

// VerifyEmail consumes a verification token and marks the owning user's email
// address as verified. At most one concurrent call per token succeeds.
func (s *AuthService) VerifyEmail(ctx context.Context, tokenValue string) error {
	token, err := s.checkSingleUseToken(ctx, s.repomanager.EmailVerificationTokens(s.db), tokenValue)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		won, err := s.repomanager.EmailVerificationTokens(tx).MarkUsed(ctx, tokenValue, s.now())
		if err != nil {
			return fmt.Errorf("error consuming verification token: %v", err)
		}
		if !won {
			return common.ErrTokenAlreadyUsed
		}
		if err := s.repomanager.Users(tx).SetEmailVerified(ctx, token.UserID); err != nil {
			return fmt.Errorf("error marking email verified: %v", err)
		}
		return nil
	})
}

// --- helpers below ---

func (s *AuthService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User, db dbx.DBTX, meta ClientMeta) (*TokenPair, error) {
	access, err := s.codec.Issue(user.ID, user.Email, user.Role, user.Plan)
	if err != nil {
		return nil, common.ErrInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrInternal
	}

	refreshRepo := s.repomanager.RefreshTokens(db)
	if _, err := refreshRepo.Create(ctx, &models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
		ExpiresAt: s.now().Add(s.refreshTokenValidityDuration),
	}); err != nil {
		return nil, common.ErrInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// checkSingleUseToken loads a single-use token and rejects it when unknown,
// consumed, or expired. The returned record is advisory: consumption is still
// decided by MarkUsed inside a transaction.
func (s *AuthService) checkSingleUseToken(ctx context.Context, repo interface {
	Find(ctx context.Context, token string) (*models.OneTimeToken, error)
}, tokenValue string) (*models.OneTimeToken, error) {
	token, err := repo.Find(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrTokenUnknown
		}
		return nil, fmt.Errorf("error searching token: %v", err)
	}
	if token.UsedAt != nil {
		return nil, common.ErrTokenAlreadyUsed
	}
	if !token.ExpiresAt.After(s.now()) {
		return nil, common.ErrTokenExpired
	}
	return token, nil
}

func (s *AuthService) deliverVerificationToken(ctx context.Context, user *models.User) error {
	token := uuid.NewString()
	expiresAt := s.now().Add(s.emailVerificationTokenValidityDuration)
	if _, err := s.repomanager.EmailVerificationTokens(s.db).Create(ctx, user.ID, token, expiresAt); err != nil {
		return common.ErrInternal
	}
	if err := s.mailer.SendVerification(ctx, user.Email, token); err != nil {
		s.logger.Error(ctx, "error sending verification mail", "error", err)
	}
	return nil
}
