// Package repomanager vends repository implementations bound to a DBTX, so
// services can run several repositories over one transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/rms/internal/dbx"
	"github.com/dmitrijs2005/rms/internal/server/repositories/identities"
	"github.com/dmitrijs2005/rms/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/rms/internal/server/repositories/vendors"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Identities(db dbx.DBTX) identities.Repository
	Sessions(db dbx.DBTX) sessions.Store
	Vendors(db dbx.DBTX) vendors.Repository
}
