// Package catalog holds the PostgreSQL queries for diseases and their treatments.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/common"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/dbx"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	diseaseColumns   = `id_enfermedad, nombre_comun, roboflow_class, imagen_url, tipo, prevencion, riesgo`
	treatmentColumns = `id_tratamiento, id_enfermedad, nombre_comercial, ingrediente_activo, tipo_tratamiento, dosis, frecuencia_aplicacion, notas_adicionales, dosis_valor, dosis_unidad, dosis_por_planta_ml, agua_por_planta_ml`
)

type scanner interface {
	Scan(dest ...any) error
}

func scanDisease(s scanner) (*models.Disease, error) {
	d := &models.Disease{}
	if err := s.Scan(&d.ID, &d.CommonName, &d.ClassifierTag, &d.ImageURL, &d.Kind, &d.Prevention, &d.Risk); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func scanTreatment(s scanner) (*models.Treatment, error) {
	t := &models.Treatment{}
	err := s.Scan(&t.ID, &t.DiseaseID, &t.CommercialName, &t.ActiveIngredient, &t.Kind, &t.Dose,
		&t.Frequency, &t.Notes, &t.DoseValue, &t.DoseUnit, &t.ProductPerPlant, &t.WaterPerPlant)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) ListDiseases(ctx context.Context) ([]models.Disease, error) {
	query :=
		`SELECT ` + diseaseColumns + ` FROM enfermedades
		 ORDER BY nombre_comun ASC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Disease
	for rows.Next() {
		d, err := scanDisease(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}

// GetDiseaseByClass looks a disease up by the label the classifier reports.
func (r *PostgresRepository) GetDiseaseByClass(ctx context.Context, classifierTag string) (*models.Disease, error) {
	query :=
		`SELECT ` + diseaseColumns + ` FROM enfermedades
		 WHERE roboflow_class = $1
		 `
	return scanDisease(r.db.QueryRowContext(ctx, query, classifierTag))
}

// UpdateDisease sets only the non-nil fields of upd and returns the stored row.
func (r *PostgresRepository) UpdateDisease(ctx context.Context, id int64, upd models.DiseaseUpdate) (*models.Disease, error) {
	query :=
		`UPDATE enfermedades
		 SET imagen_url = COALESCE($1, imagen_url),
		     tipo = COALESCE($2, tipo),
		     prevencion = COALESCE($3, prevencion),
		     riesgo = COALESCE($4, riesgo)
		 WHERE id_enfermedad = $5
		 RETURNING ` + diseaseColumns + `
		 `
	return scanDisease(r.db.QueryRowContext(ctx, query, upd.ImageURL, upd.Kind, upd.Prevention, upd.Risk, id))
}

func (r *PostgresRepository) ListTreatments(ctx context.Context, diseaseID int64) ([]models.Treatment, error) {
	query :=
		`SELECT ` + treatmentColumns + ` FROM tratamientos
		 WHERE id_enfermedad = $1
		 ORDER BY id_tratamiento ASC
		 `

	rows, err := r.db.QueryContext(ctx, query, diseaseID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Treatment
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}

func (r *PostgresRepository) GetTreatment(ctx context.Context, id int64) (*models.Treatment, error) {
	query :=
		`SELECT ` + treatmentColumns + ` FROM tratamientos
		 WHERE id_tratamiento = $1
		 `
	return scanTreatment(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) CreateTreatment(ctx context.Context, t *models.Treatment) (*models.Treatment, error) {
	query :=
		`INSERT INTO tratamientos (id_enfermedad, nombre_comercial, ingrediente_activo, tipo_tratamiento,
		                           dosis, frecuencia_aplicacion, notas_adicionales)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id_tratamiento
		 `

	err := r.db.QueryRowContext(ctx, query,
		t.DiseaseID, t.CommercialName, t.ActiveIngredient, t.Kind, t.Dose, t.Frequency, t.Notes).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

// UpdateTreatment overwrites the descriptive fields of the treatment.
func (r *PostgresRepository) UpdateTreatment(ctx context.Context, t *models.Treatment) error {
	query :=
		`UPDATE tratamientos
		 SET nombre_comercial = $1, ingrediente_activo = $2, tipo_tratamiento = $3,
		     dosis = $4, frecuencia_aplicacion = $5, notas_adicionales = $6
		 WHERE id_tratamiento = $7
		 `
	return r.exec(ctx, query, t.CommercialName, t.ActiveIngredient, t.Kind, t.Dose, t.Frequency, t.Notes, t.ID)
}

func (r *PostgresRepository) DeleteTreatment(ctx context.Context, id int64) error {
	query :=
		`DELETE FROM tratamientos
		 WHERE id_tratamiento = $1
		 `
	return r.exec(ctx, query, id)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
