package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/lifetrack/internal/dbx"
	"github.com/dmitrijs2005/lifetrack/internal/primary/repositories/achievements"
	"github.com/dmitrijs2005/lifetrack/internal/primary/repositories/ideas"
	"github.com/dmitrijs2005/lifetrack/internal/primary/repositories/todos"
)

// RepositoryManager vends repositories bound to a DBTX so services can use
// the same repository against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Todos(db dbx.DBTX) todos.Repository
	Ideas(db dbx.DBTX) ideas.Repository
	Achievements(db dbx.DBTX) achievements.Repository
}
