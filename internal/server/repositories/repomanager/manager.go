// Package repomanager wires repository constructors together and exposes a
// schema migration hook.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/onetimetokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/plans"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// the same repository code against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	PasswordResetTokens(db dbx.DBTX) onetimetokens.Repository
	EmailVerificationTokens(db dbx.DBTX) onetimetokens.Repository
	Plans(db dbx.DBTX) plans.Repository
}
