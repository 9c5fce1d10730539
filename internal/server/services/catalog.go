package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/common"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/logging"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/cache"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/models"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/repositories/repomanager"
)

const diseasesCacheKey = "diseases"

func treatmentsCacheKey(diseaseID int64) string {
	return fmt.Sprintf("treatments:%d", diseaseID)
}

// CatalogService serves disease and treatment reference data. Read paths go
// through the cache; admin edits invalidate the affected keys.
type CatalogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       *cache.Cache
	ttl         time.Duration
	log         logging.Logger
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager, c *cache.Cache, ttl time.Duration, log logging.Logger) *CatalogService {
	return &CatalogService{
		db:          db,
		repomanager: m,
		cache:       c,
		ttl:         ttl,
		log:         log.With("module", "catalog"),
	}
}

func (s *CatalogService) Diseases(ctx context.Context) ([]models.Disease, error) {
	var out []models.Disease
	err := s.cache.CacheAside(ctx, diseasesCacheKey, &out, s.ttl, func() error {
		list, err := s.repomanager.Catalog(s.db).ListDiseases(ctx)
		out = nonNil(list)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error listing diseases: %w", err)
	}
	return nonNil(out), nil
}

// DiseaseInfo returns the disease the classifier calls tag, with its treatments.
func (s *CatalogService) DiseaseInfo(ctx context.Context, tag string) (*models.DiseaseInfo, error) {
	repo := s.repomanager.Catalog(s.db)

	d, err := repo.GetDiseaseByClass(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("error loading disease: %w", err)
	}

	treatments, err := s.treatments(ctx, d.ID)
	if err != nil {
		return nil, err
	}

	return &models.DiseaseInfo{Info: *d, Recommendations: treatments}, nil
}

// TreatmentDoses lists the treatments of a disease in dose-screen form,
// ordered by commercial name.
func (s *CatalogService) TreatmentDoses(ctx context.Context, diseaseID int64) ([]models.TreatmentDose, error) {
	treatments, err := s.treatments(ctx, diseaseID)
	if err != nil {
		return nil, err
	}

	out := make([]models.TreatmentDose, 0, len(treatments))
	for _, t := range treatments {
		d := models.TreatmentDose{
			ID:               t.ID,
			CommercialName:   t.CommercialName,
			ActiveIngredient: t.ActiveIngredient,
			Kind:             t.Kind,
		}
		if t.DoseValue != nil {
			d.Dose = *t.DoseValue
		}
		if t.DoseUnit != nil {
			d.Unit = *t.DoseUnit
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CommercialName < out[j].CommercialName })

	return out, nil
}

func (s *CatalogService) treatments(ctx context.Context, diseaseID int64) ([]models.Treatment, error) {
	var out []models.Treatment
	err := s.cache.CacheAside(ctx, treatmentsCacheKey(diseaseID), &out, s.ttl, func() error {
		list, err := s.repomanager.Catalog(s.db).ListTreatments(ctx, diseaseID)
		out = nonNil(list)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error listing treatments: %w", err)
	}
	return nonNil(out), nil
}

// UpdateDisease applies a partial edit and returns the stored disease.
func (s *CatalogService) UpdateDisease(ctx context.Context, id int64, upd models.DiseaseUpdate) (*models.Disease, error) {
	if upd.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", common.ErrorValidation)
	}

	d, err := s.repomanager.Catalog(s.db).UpdateDisease(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("error updating disease: %w", err)
	}

	s.invalidate(ctx, diseasesCacheKey)
	return d, nil
}

func validateTreatment(t *models.Treatment) error {
	t.CommercialName = strings.TrimSpace(t.CommercialName)
	t.ActiveIngredient = strings.TrimSpace(t.ActiveIngredient)
	if t.CommercialName == "" || t.ActiveIngredient == "" {
		return fmt.Errorf("%w: nombre_comercial and ingrediente_activo are required", common.ErrorValidation)
	}
	return nil
}

func (s *CatalogService) CreateTreatment(ctx context.Context, t *models.Treatment) (*models.Treatment, error) {
	if t.DiseaseID <= 0 {
		return nil, fmt.Errorf("%w: id_enfermedad is required", common.ErrorValidation)
	}
	if err := validateTreatment(t); err != nil {
		return nil, err
	}

	created, err := s.repomanager.Catalog(s.db).CreateTreatment(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("error creating treatment: %w", err)
	}

	s.invalidate(ctx, treatmentsCacheKey(created.DiseaseID))
	return created, nil
}

// UpdateTreatment overwrites the descriptive fields of treatment t.ID.
func (s *CatalogService) UpdateTreatment(ctx context.Context, t *models.Treatment) (*models.Treatment, error) {
	if err := validateTreatment(t); err != nil {
		return nil, err
	}

	repo := s.repomanager.Catalog(s.db)
	if err := repo.UpdateTreatment(ctx, t); err != nil {
		return nil, fmt.Errorf("error updating treatment: %w", err)
	}

	updated, err := repo.GetTreatment(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading treatment: %w", err)
	}

	s.invalidate(ctx, treatmentsCacheKey(updated.DiseaseID))
	return updated, nil
}

func (s *CatalogService) DeleteTreatment(ctx context.Context, id int64) error {
	repo := s.repomanager.Catalog(s.db)

	t, err := repo.GetTreatment(ctx, id)
	if err != nil {
		return fmt.Errorf("error loading treatment: %w", err)
	}
	if err := repo.DeleteTreatment(ctx, id); err != nil {
		return fmt.Errorf("error deleting treatment: %w", err)
	}

	s.invalidate(ctx, treatmentsCacheKey(t.DiseaseID))
	return nil
}

// CalculateDose scales the per-plant amounts of a treatment to plantCount plants.
func (s *CatalogService) CalculateDose(ctx context.Context, treatmentID int64, plantCount int) (*models.Dose, error) {
	if treatmentID <= 0 {
		return nil, fmt.Errorf("%w: treatment_id is required", common.ErrorValidation)
	}
	if plantCount <= 0 {
		return nil, fmt.Errorf("%w: plant_count must be greater than zero", common.ErrorValidation)
	}

	t, err := s.repomanager.Catalog(s.db).GetTreatment(ctx, treatmentID)
	if err != nil {
		return nil, fmt.Errorf("error loading treatment: %w", err)
	}
	if t.ProductPerPlant == nil || t.WaterPerPlant == nil {
		return nil, fmt.Errorf("%w: dose data for this treatment is incomplete", common.ErrorValidation)
	}

	product := *t.ProductPerPlant * float64(plantCount)
	water := *t.WaterPerPlant * float64(plantCount) / 1000

	return &models.Dose{
		ProductMl:   product,
		WaterLitres: water,
		Message: fmt.Sprintf("Para tratar %d plantas, necesitas %.2f ml de producto y %.2f litros de agua.",
			plantCount, product, water),
	}, nil
}

func (s *CatalogService) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn(ctx, "cache invalidation failed", "keys", keys, "error", err)
	}
}
