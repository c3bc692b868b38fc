package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	onetimetokensrepo "github.com/dmitrijs2005/authkeeper/internal/server/repositories/onetimetokens"
	plansrepo "github.com/dmitrijs2005/authkeeper/internal/server/repositories/plans"
	refreshtokensrepo "github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// --- shared test doubles ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error
	created   *models.User

	getByEmailOut *models.User
	getByEmailErr error

	getByIDOut *models.User
	getByIDErr error

	updatePassErr  error
	lastPassUserID string
	lastPassHash   string

	setVerifiedErr error
	verifiedUserID string

	updatePlanErr     error
	lastPlanUserID    string
	lastPlanCode      string
	lastPlanExpiresAt *time.Time
	updatePlanCalls   int
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.created = u
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	u.ID = "new-user"
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getByEmailErr != nil {
		return nil, f.getByEmailErr
	}
	return f.getByEmailOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	return f.getByIDOut, nil
}

func (f *fakeUsersRepo) UpdatePasswordHash(ctx context.Context, id string, hash string) error {
	f.lastPassUserID = id
	f.lastPassHash = hash
	return f.updatePassErr
}

func (f *fakeUsersRepo) SetEmailVerified(ctx context.Context, id string) error {
	f.verifiedUserID = id
	return f.setVerifiedErr
}

func (f *fakeUsersRepo) UpdatePlan(ctx context.Context, id string, plan string, expiresAt *time.Time) error {
	f.updatePlanCalls++
	f.lastPlanUserID = id
	f.lastPlanCode = plan
	f.lastPlanExpiresAt = expiresAt
	return f.updatePlanErr
}

type fakeRefreshRepo struct {
	createErr error
	created   *models.RefreshToken

	findOut *models.RefreshToken
	findErr error

	revokeErr    error
	revokedToken string

	revokeIfActiveWon bool
	revokeIfActiveErr error

	revokeAllErr    error
	revokedAllUser  string
	revokeAllCalled bool

	deleteExpiredN   int64
	deleteExpiredErr error
}

func (f *fakeRefreshRepo) Create(ctx context.Context, token *models.RefreshToken) (*models.RefreshToken, error) {
	f.created = token
	if f.createErr != nil {
		return nil, f.createErr
	}
	return token, nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Revoke(ctx context.Context, token string) error {
	f.revokedToken = token
	return f.revokeErr
}

func (f *fakeRefreshRepo) RevokeIfActive(ctx context.Context, token string) (bool, error) {
	if f.revokeIfActiveErr != nil {
		return false, f.revokeIfActiveErr
	}
	return f.revokeIfActiveWon, nil
}

func (f *fakeRefreshRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	f.revokeAllCalled = true
	f.revokedAllUser = userID
	return f.revokeAllErr
}

func (f *fakeRefreshRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return f.deleteExpiredN, f.deleteExpiredErr
}

type fakeOneTimeRepo struct {
	createErr     error
	createdToken  string
	createdUserID string
	createdExpiry time.Time

	findOut *models.OneTimeToken
	findErr error

	markUsedWon bool
	markUsedErr error

	deleteExpiredN   int64
	deleteExpiredErr error
}

func (f *fakeOneTimeRepo) Create(ctx context.Context, userID, token string, expiresAt time.Time) (*models.OneTimeToken, error) {
	f.createdUserID = userID
	f.createdToken = token
	f.createdExpiry = expiresAt
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.OneTimeToken{UserID: userID, Token: token, ExpiresAt: expiresAt}, nil
}

func (f *fakeOneTimeRepo) Find(ctx context.Context, token string) (*models.OneTimeToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeOneTimeRepo) MarkUsed(ctx context.Context, token string, usedAt time.Time) (bool, error) {
	if f.markUsedErr != nil {
		return false, f.markUsedErr
	}
	return f.markUsedWon, nil
}

func (f *fakeOneTimeRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return f.deleteExpiredN, f.deleteExpiredErr
}

type fakePlansRepo struct {
	findByCodeOut *models.SubscriptionPlan
	findByCodeErr error

	listOut []*models.SubscriptionPlan
	listErr error
}

func (f *fakePlansRepo) FindByCode(ctx context.Context, code string) (*models.SubscriptionPlan, error) {
	if f.findByCodeErr != nil {
		return nil, f.findByCodeErr
	}
	return f.findByCodeOut, nil
}

func (f *fakePlansRepo) FindByID(ctx context.Context, id string) (*models.SubscriptionPlan, error) {
	return f.findByCodeOut, f.findByCodeErr
}

func (f *fakePlansRepo) ListAll(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

type fakeRepoManager struct {
	u  *fakeUsersRepo
	r  *fakeRefreshRepo
	pr *fakeOneTimeRepo
	ev *fakeOneTimeRepo
	p  *fakePlansRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.r
}
func (m *fakeRepoManager) PasswordResetTokens(db dbx.DBTX) onetimetokensrepo.Repository {
	return m.pr
}
func (m *fakeRepoManager) EmailVerificationTokens(db dbx.DBTX) onetimetokensrepo.Repository {
	return m.ev
}
func (m *fakeRepoManager) Plans(db dbx.DBTX) plansrepo.Repository { return m.p }

type fakeHasher struct {
	hashErr      error
	compareCalls int
}

func (f *fakeHasher) Hash(plaintext string) (string, error) {
	if f.hashErr != nil {
		return "", f.hashErr
	}
	return "hashed:" + plaintext, nil
}

func (f *fakeHasher) Compare(plaintext, hash string) bool {
	f.compareCalls++
	return hash == "hashed:"+plaintext
}

type fakeMailer struct {
	verificationTo    string
	verificationToken string
	verificationErr   error

	resetTo    string
	resetToken string
	resetErr   error
}

func (f *fakeMailer) SendVerification(ctx context.Context, email, token string) error {
	f.verificationTo = email
	f.verificationToken = token
	return f.verificationErr
}

func (f *fakeMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	f.resetTo = email
	f.resetToken = token
	return f.resetErr
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }
