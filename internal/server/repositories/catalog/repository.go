package catalog

import (
	"context"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/models"
)

// Repository is the store for disease and treatment reference data.
type Repository interface {
	ListDiseases(ctx context.Context) ([]models.Disease, error)
	GetDiseaseByClass(ctx context.Context, classifierTag string) (*models.Disease, error)
	UpdateDisease(ctx context.Context, id int64, upd models.DiseaseUpdate) (*models.Disease, error)

	ListTreatments(ctx context.Context, diseaseID int64) ([]models.Treatment, error)
	GetTreatment(ctx context.Context, id int64) (*models.Treatment, error)
	CreateTreatment(ctx context.Context, t *models.Treatment) (*models.Treatment, error)
	UpdateTreatment(ctx context.Context, t *models.Treatment) error
	DeleteTreatment(ctx context.Context, id int64) error
}
