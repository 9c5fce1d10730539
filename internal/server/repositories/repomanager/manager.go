package repomanager

import (
	"context"
	"database/sql"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/dbx"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/repositories/analyses"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/repositories/catalog"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Analyses(db dbx.DBTX) analyses.Repository
	Catalog(db dbx.DBTX) catalog.Repository
}
