package repomanager

import (
	"context"
	"database/sql"

	"github.com/dbocharov/newsletter/internal/dbx"
	"github.com/dbocharov/newsletter/internal/server/repositories/credentials"
	"github.com/dbocharov/newsletter/internal/server/repositories/subscribers"
)

// RepositoryManager vends repository implementations bound to a DBTX and
// exposes a schema migration hook. Passing a *sql.Tx yields repositories
// participating in that transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Subscribers(db dbx.DBTX) subscribers.Repository
	Credentials(db dbx.DBTX) credentials.Repository
}
