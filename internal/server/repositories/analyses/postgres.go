// Package analyses provides the PostgreSQL-backed record store for analyses,
// including the soft-delete, trash and purge statements.
package analyses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/common"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/dbx"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	columns      = `a.id_analisis, a.id_usuario, a.url_imagen, a.url_imagen_reverso, a.resultado_prediccion, a.confianza, a.fecha_analisis, a.fecha_eliminado`
	adminColumns = columns + `, u.email`
)

// Create inserts a new active record and fills in its id and timestamp.
func (r *PostgresRepository) Create(ctx context.Context, a *models.Analysis) (*models.Analysis, error) {
	query :=
		`INSERT INTO analisis (id_usuario, url_imagen, url_imagen_reverso, resultado_prediccion, confianza, fecha_analisis)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 RETURNING id_analisis, fecha_analisis
		 `

	err := r.db.QueryRowContext(ctx, query,
		a.UserID, a.ImageURL, a.BackImageURL, a.Prediction, a.Confidence).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}

func (r *PostgresRepository) list(ctx context.Context, withEmail bool, query string, args ...any) ([]models.Analysis, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Analysis
	for rows.Next() {
		var a models.Analysis
		dest := []any{&a.ID, &a.UserID, &a.ImageURL, &a.BackImageURL, &a.Prediction, &a.Confidence, &a.CreatedAt, &a.DeletedAt}
		if withEmail {
			dest = append(dest, &a.OwnerEmail)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}

// ListActive returns the user's records outside the trash, newest first.
func (r *PostgresRepository) ListActive(ctx context.Context, userID int64) ([]models.Analysis, error) {
	query :=
		`SELECT ` + columns + ` FROM analisis a
		 WHERE a.id_usuario = $1 AND a.fecha_eliminado IS NULL
		 ORDER BY a.fecha_analisis DESC
		 `
	return r.list(ctx, false, query, userID)
}

// ListTrash returns the user's trashed records, most recently trashed first.
func (r *PostgresRepository) ListTrash(ctx context.Context, userID int64) ([]models.Analysis, error) {
	query :=
		`SELECT ` + columns + ` FROM analisis a
		 WHERE a.id_usuario = $1 AND a.fecha_eliminado IS NOT NULL
		 ORDER BY a.fecha_eliminado DESC
		 `
	return r.list(ctx, false, query, userID)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
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

// SoftDelete moves a record to the trash. A record already in the trash
// keeps its original deletion time.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id, userID int64) error {
	query :=
		`UPDATE analisis SET fecha_eliminado = COALESCE(fecha_eliminado, NOW())
		 WHERE id_analisis = $1 AND id_usuario = $2
		 `
	return r.execOne(ctx, query, id, userID)
}

// Restore takes a record out of the trash.
func (r *PostgresRepository) Restore(ctx context.Context, id, userID int64) error {
	query :=
		`UPDATE analisis SET fecha_eliminado = NULL
		 WHERE id_analisis = $1 AND id_usuario = $2
		 `
	return r.execOne(ctx, query, id, userID)
}

func (r *PostgresRepository) AdminSoftDelete(ctx context.Context, id int64) error {
	query :=
		`UPDATE analisis SET fecha_eliminado = COALESCE(fecha_eliminado, NOW())
		 WHERE id_analisis = $1
		 `
	return r.execOne(ctx, query, id)
}

func (r *PostgresRepository) AdminRestore(ctx context.Context, id int64) error {
	query :=
		`UPDATE analisis SET fecha_eliminado = NULL
		 WHERE id_analisis = $1
		 `
	return r.execOne(ctx, query, id)
}

// Purge removes the row and returns its image references.
func (r *PostgresRepository) Purge(ctx context.Context, id, userID int64) (models.BlobRefs, error) {
	query :=
		`DELETE FROM analisis
		 WHERE id_analisis = $1 AND id_usuario = $2
		 RETURNING url_imagen, url_imagen_reverso
		 `

	var refs models.BlobRefs
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&refs.ImageURL, &refs.BackImageURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.BlobRefs{}, common.ErrorNotFound
		}
		return models.BlobRefs{}, fmt.Errorf("db error: %w", err)
	}

	return refs, nil
}

func (r *PostgresRepository) deleteReturning(ctx context.Context, query string, args ...any) ([]models.BlobRefs, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.BlobRefs
	for rows.Next() {
		var refs models.BlobRefs
		if err := rows.Scan(&refs.ImageURL, &refs.BackImageURL); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, refs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}

// EmptyTrash removes all of the user's trashed rows in one statement.
func (r *PostgresRepository) EmptyTrash(ctx context.Context, userID int64) ([]models.BlobRefs, error) {
	query :=
		`DELETE FROM analisis
		 WHERE id_usuario = $1 AND fecha_eliminado IS NOT NULL
		 RETURNING url_imagen, url_imagen_reverso
		 `
	return r.deleteReturning(ctx, query, userID)
}

// RestoreAll takes every trashed record of the user out of the trash.
func (r *PostgresRepository) RestoreAll(ctx context.Context, userID int64) (int64, error) {
	query :=
		`UPDATE analisis SET fecha_eliminado = NULL
		 WHERE id_usuario = $1 AND fecha_eliminado IS NOT NULL
		 `

	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}

	return n, nil
}

func (r *PostgresRepository) ListAllActive(ctx context.Context) ([]models.Analysis, error) {
	query :=
		`SELECT ` + adminColumns + ` FROM analisis a
		 JOIN usuarios u ON a.id_usuario = u.id_usuario
		 WHERE a.fecha_eliminado IS NULL
		 ORDER BY a.fecha_analisis DESC
		 `
	return r.list(ctx, true, query)
}

func (r *PostgresRepository) ListAllTrash(ctx context.Context) ([]models.Analysis, error) {
	query :=
		`SELECT ` + adminColumns + ` FROM analisis a
		 JOIN usuarios u ON a.id_usuario = u.id_usuario
		 WHERE a.fecha_eliminado IS NOT NULL
		 ORDER BY a.fecha_eliminado DESC
		 `
	return r.list(ctx, true, query)
}

func (r *PostgresRepository) ListActiveByUser(ctx context.Context, userID int64) ([]models.Analysis, error) {
	query :=
		`SELECT ` + adminColumns + ` FROM analisis a
		 JOIN usuarios u ON a.id_usuario = u.id_usuario
		 WHERE a.id_usuario = $1 AND a.fecha_eliminado IS NULL
		 ORDER BY a.fecha_analisis DESC
		 `
	return r.list(ctx, true, query, userID)
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID int64) ([]models.BlobRefs, error) {
	query :=
		`DELETE FROM analisis
		 WHERE id_usuario = $1
		 RETURNING url_imagen, url_imagen_reverso
		 `
	return r.deleteReturning(ctx, query, userID)
}

func (r *PostgresRepository) PurgeTrashedBefore(ctx context.Context, cutoff time.Time) ([]models.BlobRefs, error) {
	query :=
		`DELETE FROM analisis
		 WHERE fecha_eliminado IS NOT NULL AND fecha_eliminado < $1
		 RETURNING url_imagen, url_imagen_reverso
		 `
	return r.deleteReturning(ctx, query, cutoff)
}
