package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/common"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/dbx"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO usuarios (nombre_completo, email, password_hash, ong, profile_image_url, es_admin)
		 VALUES ($1, LOWER($2), $3, $4, $5, $6)
		 RETURNING id_usuario, email
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.FullName, user.Email, user.PasswordHash, user.Organization, user.ProfileImageURL, user.IsAdmin).
		Scan(&user.ID, &user.Email)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const userColumns = `id_usuario, nombre_completo, email, password_hash, ong, profile_image_url, es_admin`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Organization, &u.ProfileImageURL, &u.IsAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM usuarios
		 WHERE LOWER(email) = LOWER($1)
		 `
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM usuarios
		 WHERE id_usuario = $1
		 `
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id int64) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM usuarios
		 WHERE id_usuario = $1
		 FOR UPDATE
		 `
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate) error {
	query :=
		`UPDATE usuarios
		 SET nombre_completo = COALESCE($1, nombre_completo),
		     profile_image_url = COALESCE($2, profile_image_url)
		 WHERE id_usuario = $3
		 `
	return r.exec(ctx, query, upd.FullName, upd.ProfileImageURL, id)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query :=
		`UPDATE usuarios SET password_hash = $1
		 WHERE id_usuario = $2
		 `
	return r.exec(ctx, query, passwordHash, id)
}

func (r *PostgresRepository) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	query :=
		`UPDATE usuarios SET es_admin = $1
		 WHERE id_usuario = $2
		 `
	return r.exec(ctx, query, isAdmin, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query :=
		`DELETE FROM usuarios
		 WHERE id_usuario = $1
		 `
	return r.exec(ctx, query, id)
}

func (r *PostgresRepository) ListWithAnalysisCounts(ctx context.Context) ([]models.UserSummary, error) {
	query :=
		`SELECT u.id_usuario, u.nombre_completo, u.email, u.profile_image_url,
		        (SELECT COUNT(*) FROM analisis a
		         WHERE a.id_usuario = u.id_usuario AND a.fecha_eliminado IS NULL) AS analysis_count
		 FROM usuarios u
		 ORDER BY u.nombre_completo ASC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.UserSummary
	for rows.Next() {
		var s models.UserSummary
		if err := rows.Scan(&s.ID, &s.FullName, &s.Email, &s.ProfileImageURL, &s.AnalysisCount); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}
