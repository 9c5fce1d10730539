package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/common"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/dbx"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/logging"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/blob"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/models"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/repositories/analyses"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/repositories/catalog"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/repositories/users"
)

// --- helpers ---

var errBoom = errors.New("boom")

const testMarker = "/o/"

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func blobURL(key string) string {
	return blob.NewResolver(testMarker).URL("https://storage.example.com/v0/b/bucket", key)
}

func ptr[T any](v T) *T { return &v }

// --- in-memory repositories ---

type memUsers struct {
	users.Repository

	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.User
	counts func(userID int64) int64
}

func newMemUsers() *memUsers {
	return &memUsers{rows: map[int64]*models.User{}}
}

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, r := range m.rows {
		if r.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	m.nextID++
	cp := *u
	cp.ID = m.nextID
	m.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email == strings.ToLower(email) {
			out := *r
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *r
	return &out, nil
}

func (m *memUsers) GetForUpdate(ctx context.Context, id int64) (*models.User, error) {
	return m.GetByID(ctx, id)
}

func (m *memUsers) UpdateProfile(_ context.Context, id int64, upd models.ProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	if upd.FullName != nil {
		r.FullName = *upd.FullName
	}
	if upd.ProfileImageURL != nil {
		r.ProfileImageURL = upd.ProfileImageURL
	}
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	r.PasswordHash = hash
	return nil
}

func (m *memUsers) SetAdmin(_ context.Context, id int64, isAdmin bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	r.IsAdmin = isAdmin
	return nil
}

func (m *memUsers) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memUsers) ListWithAnalysisCounts(_ context.Context) ([]models.UserSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.UserSummary
	for _, r := range m.rows {
		s := models.UserSummary{ID: r.ID, FullName: r.FullName, Email: r.Email, ProfileImageURL: r.ProfileImageURL}
		if m.counts != nil {
			s.AnalysisCount = m.counts(r.ID)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

type memAnalyses struct {
	analyses.Repository

	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.Analysis
	now    func() time.Time
	err    error
}

func newMemAnalyses() *memAnalyses {
	return &memAnalyses{rows: map[int64]*models.Analysis{}, now: time.Now}
}

func (m *memAnalyses) Create(_ context.Context, a *models.Analysis) (*models.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.nextID++
	cp := *a
	cp.ID = m.nextID
	cp.CreatedAt = m.now()
	m.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memAnalyses) filter(keep func(*models.Analysis) bool) []models.Analysis {
	var out []models.Analysis
	for _, r := range m.rows {
		if keep(r) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memAnalyses) ListActive(_ context.Context, userID int64) ([]models.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.filter(func(a *models.Analysis) bool { return a.UserID == userID && !a.InTrash() }), nil
}

func (m *memAnalyses) ListTrash(_ context.Context, userID int64) ([]models.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(a *models.Analysis) bool { return a.UserID == userID && a.InTrash() }), nil
}

func (m *memAnalyses) find(id int64, owner *int64) (*models.Analysis, error) {
	r, ok := m.rows[id]
	if !ok || (owner != nil && r.UserID != *owner) {
		return nil, common.ErrorNotFound
	}
	return r, nil
}

func (m *memAnalyses) trash(id int64, owner *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, err := m.find(id, owner)
	if err != nil {
		return err
	}
	if r.DeletedAt == nil {
		r.DeletedAt = ptr(m.now())
	}
	return nil
}

func (m *memAnalyses) untrash(id int64, owner *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, err := m.find(id, owner)
	if err != nil {
		return err
	}
	r.DeletedAt = nil
	return nil
}

func (m *memAnalyses) SoftDelete(_ context.Context, id, userID int64) error {
	return m.trash(id, &userID)
}

func (m *memAnalyses) Restore(_ context.Context, id, userID int64) error {
	return m.untrash(id, &userID)
}

func (m *memAnalyses) AdminSoftDelete(_ context.Context, id int64) error {
	return m.trash(id, nil)
}

func (m *memAnalyses) AdminRestore(_ context.Context, id int64) error {
	return m.untrash(id, nil)
}

func refsOf(a *models.Analysis) models.BlobRefs {
	return models.BlobRefs{ImageURL: a.ImageURL, BackImageURL: a.BackImageURL}
}

func (m *memAnalyses) Purge(_ context.Context, id, userID int64) (models.BlobRefs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, err := m.find(id, &userID)
	if err != nil {
		return models.BlobRefs{}, err
	}
	delete(m.rows, id)
	return refsOf(r), nil
}

func (m *memAnalyses) deleteWhere(match func(*models.Analysis) bool) []models.BlobRefs {
	var out []models.BlobRefs
	for id, r := range m.rows {
		if match(r) {
			out = append(out, refsOf(r))
			delete(m.rows, id)
		}
	}
	return out
}

func (m *memAnalyses) EmptyTrash(_ context.Context, userID int64) ([]models.BlobRefs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.deleteWhere(func(a *models.Analysis) bool { return a.UserID == userID && a.InTrash() }), nil
}

func (m *memAnalyses) RestoreAll(_ context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.rows {
		if r.UserID == userID && r.InTrash() {
			r.DeletedAt = nil
			n++
		}
	}
	return n, nil
}

func (m *memAnalyses) ListAllActive(_ context.Context) ([]models.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(a *models.Analysis) bool { return !a.InTrash() }), nil
}

func (m *memAnalyses) ListAllTrash(_ context.Context) ([]models.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(a *models.Analysis) bool { return a.InTrash() }), nil
}

func (m *memAnalyses) ListActiveByUser(ctx context.Context, userID int64) ([]models.Analysis, error) {
	return m.ListActive(ctx, userID)
}

func (m *memAnalyses) DeleteByUser(_ context.Context, userID int64) ([]models.BlobRefs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.deleteWhere(func(a *models.Analysis) bool { return a.UserID == userID }), nil
}

func (m *memAnalyses) PurgeTrashedBefore(_ context.Context, cutoff time.Time) ([]models.BlobRefs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteWhere(func(a *models.Analysis) bool { return a.InTrash() && a.DeletedAt.Before(cutoff) }), nil
}

func (m *memAnalyses) activeCount(userID int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.filter(func(a *models.Analysis) bool { return a.UserID == userID && !a.InTrash() })))
}

type memCatalog struct {
	catalog.Repository

	diseases   []models.Disease
	treatments map[int64]*models.Treatment
	nextID     int64
	listCalls  int
	treatCalls int
}

func newMemCatalog() *memCatalog {
	return &memCatalog{treatments: map[int64]*models.Treatment{}}
}

func (m *memCatalog) ListDiseases(_ context.Context) ([]models.Disease, error) {
	m.listCalls++
	return append([]models.Disease(nil), m.diseases...), nil
}

func (m *memCatalog) GetDiseaseByClass(_ context.Context, tag string) (*models.Disease, error) {
	for _, d := range m.diseases {
		if d.ClassifierTag == tag {
			out := d
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memCatalog) UpdateDisease(_ context.Context, id int64, upd models.DiseaseUpdate) (*models.Disease, error) {
	for i := range m.diseases {
		d := &m.diseases[i]
		if d.ID != id {
			continue
		}
		if upd.ImageURL != nil {
			d.ImageURL = upd.ImageURL
		}
		if upd.Kind != nil {
			d.Kind = upd.Kind
		}
		if upd.Prevention != nil {
			d.Prevention = upd.Prevention
		}
		if upd.Risk != nil {
			d.Risk = upd.Risk
		}
		out := *d
		return &out, nil
	}
	return nil, common.ErrorNotFound
}

func (m *memCatalog) ListTreatments(_ context.Context, diseaseID int64) ([]models.Treatment, error) {
	m.treatCalls++
	var out []models.Treatment
	for _, t := range m.treatments {
		if t.DiseaseID == diseaseID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memCatalog) GetTreatment(_ context.Context, id int64) (*models.Treatment, error) {
	t, ok := m.treatments[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *t
	return &out, nil
}

func (m *memCatalog) CreateTreatment(_ context.Context, t *models.Treatment) (*models.Treatment, error) {
	m.nextID++
	cp := *t
	cp.ID = m.nextID
	m.treatments[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memCatalog) UpdateTreatment(_ context.Context, t *models.Treatment) error {
	cur, ok := m.treatments[t.ID]
	if !ok {
		return common.ErrorNotFound
	}
	cur.CommercialName = t.CommercialName
	cur.ActiveIngredient = t.ActiveIngredient
	cur.Kind = t.Kind
	cur.Dose = t.Dose
	cur.Frequency = t.Frequency
	cur.Notes = t.Notes
	return nil
}

func (m *memCatalog) DeleteTreatment(_ context.Context, id int64) error {
	if _, ok := m.treatments[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.treatments, id)
	return nil
}

type fakeRepoManager struct {
	u *memUsers
	a *memAnalyses
	c *memCatalog
}

func newFakeRepoManager() *fakeRepoManager {
	m := &fakeRepoManager{u: newMemUsers(), a: newMemAnalyses(), c: newMemCatalog()}
	m.u.counts = m.a.activeCount
	return m
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.u }
func (m *fakeRepoManager) Analyses(dbx.DBTX) analyses.Repository        { return m.a }
func (m *fakeRepoManager) Catalog(dbx.DBTX) catalog.Repository          { return m.c }

// --- object store ---

type fakeStore struct {
	mu       sync.Mutex
	objects  map[string]bool
	failDel  map[string]bool
	deleted  []string
	presign  string
	presignE error
}

func newFakeStore(keys ...string) *fakeStore {
	s := &fakeStore{objects: map[string]bool{}, failDel: map[string]bool{}}
	for _, k := range keys {
		s.objects[k] = true
	}
	return s
}

func (s *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[key], nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDel[key] {
		return errBoom
	}
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStore) PresignPut(_ context.Context, key string, _ time.Duration) (string, error) {
	if s.presignE != nil {
		return "", s.presignE
	}
	return s.presign + key, nil
}

func (s *fakeStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[key]
}

func newCleaner(store blob.Store) *blob.Cleaner {
	return blob.NewCleaner(store, blob.NewResolver(testMarker), time.Second, logging.Discard())
}
