package analyses

import (
	"context"
	"time"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/models"
)

// Repository is the record store for analyses.
//
// Owner-scoped methods match only rows of the given user and report
// common.ErrorNotFound otherwise; Admin* variants match any row.
type Repository interface {
	Create(ctx context.Context, a *models.Analysis) (*models.Analysis, error)

	ListActive(ctx context.Context, userID int64) ([]models.Analysis, error)
	ListTrash(ctx context.Context, userID int64) ([]models.Analysis, error)

	SoftDelete(ctx context.Context, id, userID int64) error
	Restore(ctx context.Context, id, userID int64) error
	Purge(ctx context.Context, id, userID int64) (models.BlobRefs, error)
	EmptyTrash(ctx context.Context, userID int64) ([]models.BlobRefs, error)
	RestoreAll(ctx context.Context, userID int64) (int64, error)

	AdminSoftDelete(ctx context.Context, id int64) error
	AdminRestore(ctx context.Context, id int64) error
	ListAllActive(ctx context.Context) ([]models.Analysis, error)
	ListAllTrash(ctx context.Context) ([]models.Analysis, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]models.Analysis, error)

	// DeleteByUser removes every record of the user, active or trashed.
	DeleteByUser(ctx context.Context, userID int64) ([]models.BlobRefs, error)
	// PurgeTrashedBefore removes records trashed before cutoff.
	PurgeTrashedBefore(ctx context.Context, cutoff time.Time) ([]models.BlobRefs, error)
}
