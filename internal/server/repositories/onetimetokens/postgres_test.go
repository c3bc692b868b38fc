package onetimetokens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

func newRepoWithMock(t *testing.T, ctor func(db *sql.DB) *PostgresRepository) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return ctor(db), mock, db
}

func newResetRepo(db *sql.DB) *PostgresRepository        { return NewPasswordResetRepository(db) }
func newVerificationRepo(db *sql.DB) *PostgresRepository { return NewEmailVerificationRepository(db) }

func TestCreate_UsesKindTable(t *testing.T) {
	tests := []struct {
		name  string
		ctor  func(db *sql.DB) *PostgresRepository
		table string
	}{
		{"password reset", newResetRepo, TablePasswordReset},
		{"email verification", newVerificationRepo, TableEmailVerification},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t, tt.ctor)
			defer db.Close()

			mock.ExpectQuery(`INSERT\s+INTO\s+`+tt.table+`\b`).
				WithArgs(sqlmock.AnyArg(), "u1", "tok123", sqlmock.AnyArg()).
				WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

			got, err := repo.Create(context.Background(), "u1", "tok123", time.Now().Add(time.Hour))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID == "" || got.Token != "tok123" {
				t.Fatalf("unexpected token: %+v", got)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestFind_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t, newResetRepo)
	defer db.Close()

	expires := time.Now().Add(time.Hour)
	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "used_at", "created_at"}).
		AddRow("t1", "u1", "tok123", expires, nil, time.Now())

	mock.ExpectQuery(`SELECT\s+.*FROM\s+` + TablePasswordReset + `\s+WHERE\s+token\s*=\s*\$1`).
		WithArgs("tok123").
		WillReturnRows(rows)

	got, err := repo.Find(context.Background(), "tok123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != "u1" || got.UsedAt != nil || !got.ExpiresAt.Equal(expires) {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestFind_UsedTokenCarriesTimestamp(t *testing.T) {
	repo, mock, db := newRepoWithMock(t, newVerificationRepo)
	defer db.Close()

	used := time.Now().Add(-time.Minute)
	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "used_at", "created_at"}).
		AddRow("t1", "u1", "tok123", time.Now().Add(time.Hour), used, time.Now())

	mock.ExpectQuery(`SELECT\s+.*FROM\s+` + TableEmailVerification).
		WithArgs("tok123").
		WillReturnRows(rows)

	got, err := repo.Find(context.Background(), "tok123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UsedAt == nil || !got.UsedAt.Equal(used) {
		t.Fatalf("unexpected used_at: %v", got.UsedAt)
	}
}

func TestFind_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t, newResetRepo)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.*FROM\s+` + TablePasswordReset).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestMarkUsed_SingleWinner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t, newResetRepo)
	defer db.Close()

	q := `UPDATE\s+` + TablePasswordReset + `\s+SET\s+used_at\s*=\s*\$2\s+WHERE\s+token\s*=\s*\$1\s+AND\s+used_at\s+IS\s+NULL`
	now := time.Now()

	mock.ExpectExec(q).WithArgs("tok", now).WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.MarkUsed(context.Background(), "tok", now)
	if err != nil || !ok {
		t.Fatalf("first consumption: ok=%v err=%v", ok, err)
	}

	mock.ExpectExec(q).WithArgs("tok", now).WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.MarkUsed(context.Background(), "tok", now)
	if err != nil || ok {
		t.Fatalf("second consumption: ok=%v err=%v", ok, err)
	}
}

func TestDeleteExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t, newVerificationRepo)
	defer db.Close()

	before := time.Now()
	mock.ExpectExec(`DELETE\s+FROM\s+`+TableEmailVerification+`\s+WHERE\s+expires_at\s*<\s*\$1`).
		WithArgs(before).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.DeleteExpired(context.Background(), before)
	if err != nil || n != 2 {
		t.Fatalf("DeleteExpired: n=%d err=%v", n, err)
	}
}
