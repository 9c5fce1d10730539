package analyses

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/common"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var (
	cols      = []string{"id_analisis", "id_usuario", "url_imagen", "url_imagen_reverso", "resultado_prediccion", "confianza", "fecha_analisis", "fecha_eliminado"}
	adminCols = append(append([]string{}, cols...), "email")
	refCols   = []string{"url_imagen", "url_imagen_reverso"}
)

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	back := "http://blob/o/b.jpg"
	q := `(?s)^INSERT\s+INTO\s+analisis\s*\(id_usuario,.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*NOW\(\)\)\s*RETURNING\s+id_analisis,\s*fecha_analisis\s*$`
	mock.ExpectQuery(q).
		WithArgs(int64(7), "http://blob/o/a.jpg", back, "Roya", 0.91).
		WillReturnRows(sqlmock.NewRows([]string{"id_analisis", "fecha_analisis"}).AddRow(int64(100), now))

	got, err := repo.Create(context.Background(), &models.Analysis{
		UserID:       7,
		ImageURL:     "http://blob/o/a.jpg",
		BackImageURL: &back,
		Prediction:   "Roya",
		Confidence:   0.91,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.ID)
	assert.Equal(t, now, got.CreatedAt)
	assert.False(t, got.InTrash())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO analisis`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Analysis{UserID: 1})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestListActive(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	t1 := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	t0 := t1.Add(-time.Hour)
	q := `(?s)^SELECT\s+a\.id_analisis,.*FROM\s+analisis\s+a\s+WHERE\s+a\.id_usuario\s*=\s*\$1\s+AND\s+a\.fecha_eliminado\s+IS\s+NULL\s+ORDER\s+BY\s+a\.fecha_analisis\s+DESC\s*$`
	mock.ExpectQuery(q).WithArgs(int64(7)).WillReturnRows(
		sqlmock.NewRows(cols).
			AddRow(int64(2), int64(7), "u2", nil, "Roya", 0.8, t1, nil).
			AddRow(int64(1), int64(7), "u1", "r1", "Hoja sana", 0.95, t0, nil),
	)

	got, err := repo.ListActive(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Nil(t, got[0].BackImageURL)
	require.NotNil(t, got[1].BackImageURL)
	assert.Equal(t, "r1", *got[1].BackImageURL)
	assert.Empty(t, got[0].OwnerEmail)
}

func TestListTrash_OrderedByDeletion(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	del := time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)
	q := `(?s)^SELECT.*FROM\s+analisis\s+a\s+WHERE\s+a\.id_usuario\s*=\s*\$1\s+AND\s+a\.fecha_eliminado\s+IS\s+NOT\s+NULL\s+ORDER\s+BY\s+a\.fecha_eliminado\s+DESC\s*$`
	mock.ExpectQuery(q).WithArgs(int64(7)).WillReturnRows(
		sqlmock.NewRows(cols).AddRow(int64(3), int64(7), "u3", nil, "Roya", 0.7, del.Add(-time.Hour), del),
	)

	got, err := repo.ListTrash(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].InTrash())
	assert.Equal(t, del, *got[0].DeletedAt)
}

func TestList_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id_analisis"}).AddRow(int64(1)))

	_, err := repo.ListActive(context.Background(), 7)
	require.Error(t, err)
}

func TestSoftDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+analisis\s+SET\s+fecha_eliminado\s*=\s*COALESCE\(fecha_eliminado,\s*NOW\(\)\)\s+WHERE\s+id_analisis\s*=\s*\$1\s+AND\s+id_usuario\s*=\s*\$2\s*$`
	mock.ExpectExec(q).WithArgs(int64(1), int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs(int64(1), int64(8)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q).WithArgs(int64(1), int64(9)).WillReturnError(errors.New("boom"))

	require.NoError(t, repo.SoftDelete(context.Background(), 1, 7))
	assert.ErrorIs(t, repo.SoftDelete(context.Background(), 1, 8), common.ErrorNotFound)
	err := repo.SoftDelete(context.Background(), 1, 9)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestRestore(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+analisis\s+SET\s+fecha_eliminado\s*=\s*NULL\s+WHERE\s+id_analisis\s*=\s*\$1\s+AND\s+id_usuario\s*=\s*\$2\s*$`
	mock.ExpectExec(q).WithArgs(int64(1), int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs(int64(2), int64(7)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Restore(context.Background(), 1, 7))
	assert.ErrorIs(t, repo.Restore(context.Background(), 2, 7), common.ErrorNotFound)
}

func TestAdminSoftDeleteAndRestore(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+analisis\s+SET\s+fecha_eliminado\s*=\s*COALESCE.*WHERE\s+id_analisis\s*=\s*\$1\s*$`).
		WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)^UPDATE\s+analisis\s+SET\s+fecha_eliminado\s*=\s*NULL\s+WHERE\s+id_analisis\s*=\s*\$1\s*$`).
		WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.AdminSoftDelete(context.Background(), 4))
	assert.ErrorIs(t, repo.AdminRestore(context.Background(), 5), common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPurge(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+analisis\s+WHERE\s+id_analisis\s*=\s*\$1\s+AND\s+id_usuario\s*=\s*\$2\s+RETURNING\s+url_imagen,\s*url_imagen_reverso\s*$`
	mock.ExpectQuery(q).WithArgs(int64(1), int64(7)).
		WillReturnRows(sqlmock.NewRows(refCols).AddRow("front", "back"))
	mock.ExpectQuery(q).WithArgs(int64(2), int64(7)).WillReturnError(sql.ErrNoRows)

	refs, err := repo.Purge(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"front", "back"}, models.URLs([]models.BlobRefs{refs}))

	_, err = repo.Purge(context.Background(), 2, 7)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestEmptyTrash(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+analisis\s+WHERE\s+id_usuario\s*=\s*\$1\s+AND\s+fecha_eliminado\s+IS\s+NOT\s+NULL\s+RETURNING\s+url_imagen,\s*url_imagen_reverso\s*$`
	mock.ExpectQuery(q).WithArgs(int64(7)).WillReturnRows(
		sqlmock.NewRows(refCols).
			AddRow("a1", "a2").
			AddRow("b1", nil).
			AddRow("c1", "c2"),
	)

	refs, err := repo.EmptyTrash(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, []string{"a1", "a2", "b1", "c1", "c2"}, models.URLs(refs))
}

func TestEmptyTrash_Nothing(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`DELETE FROM analisis`).WithArgs(int64(7)).WillReturnRows(sqlmock.NewRows(refCols))

	refs, err := repo.EmptyTrash(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestRestoreAll(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+analisis\s+SET\s+fecha_eliminado\s*=\s*NULL\s+WHERE\s+id_usuario\s*=\s*\$1\s+AND\s+fecha_eliminado\s+IS\s+NOT\s+NULL\s*$`
	mock.ExpectExec(q).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(q).WithArgs(int64(8)).WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.RestoreAll(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	n, err = repo.RestoreAll(context.Background(), 8)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAdminLists_IncludeOwnerEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`(?s)^SELECT.*u\.email\s+FROM\s+analisis\s+a\s+JOIN\s+usuarios\s+u.*WHERE\s+a\.fecha_eliminado\s+IS\s+NULL\s+ORDER`).
		WillReturnRows(sqlmock.NewRows(adminCols).AddRow(int64(1), int64(7), "u1", nil, "Roya", 0.8, now, nil, "ana@x.io"))
	mock.ExpectQuery(`(?s)^SELECT.*JOIN\s+usuarios\s+u.*WHERE\s+a\.fecha_eliminado\s+IS\s+NOT\s+NULL\s+ORDER\s+BY\s+a\.fecha_eliminado\s+DESC`).
		WillReturnRows(sqlmock.NewRows(adminCols).AddRow(int64(2), int64(8), "u2", nil, "Roya", 0.8, now, now, "bo@x.io"))
	mock.ExpectQuery(`(?s)^SELECT.*JOIN\s+usuarios\s+u.*WHERE\s+a\.id_usuario\s*=\s*\$1\s+AND\s+a\.fecha_eliminado\s+IS\s+NULL`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(adminCols).AddRow(int64(1), int64(7), "u1", nil, "Roya", 0.8, now, nil, "ana@x.io"))

	active, err := repo.ListAllActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "ana@x.io", active[0].OwnerEmail)

	trash, err := repo.ListAllTrash(context.Background())
	require.NoError(t, err)
	require.Len(t, trash, 1)
	assert.True(t, trash[0].InTrash())
	assert.Equal(t, "bo@x.io", trash[0].OwnerEmail)

	byUser, err := repo.ListActiveByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+analisis\s+WHERE\s+id_usuario\s*=\s*\$1\s+RETURNING\s+url_imagen,\s*url_imagen_reverso\s*$`
	mock.ExpectQuery(q).WithArgs(int64(7)).WillReturnRows(sqlmock.NewRows(refCols).AddRow("a", nil).AddRow("b", ""))

	refs, err := repo.DeleteByUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, models.URLs(refs))
}

func TestPurgeTrashedBefore(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	cutoff := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	q := `(?s)^DELETE\s+FROM\s+analisis\s+WHERE\s+fecha_eliminado\s+IS\s+NOT\s+NULL\s+AND\s+fecha_eliminado\s*<\s*\$1\s+RETURNING`
	mock.ExpectQuery(q).WithArgs(cutoff).WillReturnRows(sqlmock.NewRows(refCols).AddRow("old", nil))
	mock.ExpectQuery(q).WithArgs(cutoff).WillReturnError(errors.New("timeout"))

	refs, err := repo.PurgeTrashedBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Len(t, refs, 1)

	_, err = repo.PurgeTrashedBefore(context.Background(), cutoff)
	if err == nil || !regexp.MustCompile(`db error: .*timeout`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
