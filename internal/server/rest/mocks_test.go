package rest

import (
	"context"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/models"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/services"
	"github.com/stretchr/testify/mock"
)

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUsers) Login(ctx context.Context, email, password string) (*services.LoginResult, error) {
	args := m.Called(ctx, email, password)
	r, _ := args.Get(0).(*services.LoginResult)
	return r, args.Error(1)
}

func (m *mockUsers) Profile(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUsers) UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) error {
	return m.Called(ctx, userID, upd).Error(0)
}

func (m *mockUsers) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	return m.Called(ctx, userID, current, next).Error(0)
}

func (m *mockUsers) DeleteSelf(ctx context.Context, userID int64, currentPassword string) error {
	return m.Called(ctx, userID, currentPassword).Error(0)
}

func (m *mockUsers) AdminResetPassword(ctx context.Context, userID int64, next string) error {
	return m.Called(ctx, userID, next).Error(0)
}

func (m *mockUsers) AdminDeleteUser(ctx context.Context, adminID, userID int64) error {
	return m.Called(ctx, adminID, userID).Error(0)
}

func (m *mockUsers) ListUsersWithAnalyses(ctx context.Context) ([]models.UserSummary, error) {
	args := m.Called(ctx)
	l, _ := args.Get(0).([]models.UserSummary)
	return l, args.Error(1)
}

type mockAnalyses struct{ mock.Mock }

func (m *mockAnalyses) Analyze(ctx context.Context, front string, back *string) (*services.AnalyzeResult, error) {
	args := m.Called(ctx, front, back)
	r, _ := args.Get(0).(*services.AnalyzeResult)
	return r, args.Error(1)
}

func (m *mockAnalyses) Save(ctx context.Context, userID int64, in services.SaveInput) (*models.Analysis, error) {
	args := m.Called(ctx, userID, in)
	a, _ := args.Get(0).(*models.Analysis)
	return a, args.Error(1)
}

func (m *mockAnalyses) list(args mock.Arguments) ([]models.Analysis, error) {
	l, _ := args.Get(0).([]models.Analysis)
	return l, args.Error(1)
}

func (m *mockAnalyses) History(ctx context.Context, userID int64) ([]models.Analysis, error) {
	return m.list(m.Called(ctx, userID))
}

func (m *mockAnalyses) Trash(ctx context.Context, userID int64) ([]models.Analysis, error) {
	return m.list(m.Called(ctx, userID))
}

func (m *mockAnalyses) SoftDelete(ctx context.Context, userID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockAnalyses) Restore(ctx context.Context, userID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockAnalyses) Purge(ctx context.Context, userID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockAnalyses) EmptyTrash(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockAnalyses) RestoreAll(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAnalyses) AdminSoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAnalyses) AdminRestore(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAnalyses) AdminActive(ctx context.Context) ([]models.Analysis, error) {
	return m.list(m.Called(ctx))
}

func (m *mockAnalyses) AdminTrash(ctx context.Context) ([]models.Analysis, error) {
	return m.list(m.Called(ctx))
}

func (m *mockAnalyses) AdminActiveByUser(ctx context.Context, userID int64) ([]models.Analysis, error) {
	return m.list(m.Called(ctx, userID))
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) Diseases(ctx context.Context) ([]models.Disease, error) {
	args := m.Called(ctx)
	l, _ := args.Get(0).([]models.Disease)
	return l, args.Error(1)
}

func (m *mockCatalog) DiseaseInfo(ctx context.Context, tag string) (*models.DiseaseInfo, error) {
	args := m.Called(ctx, tag)
	d, _ := args.Get(0).(*models.DiseaseInfo)
	return d, args.Error(1)
}

func (m *mockCatalog) TreatmentDoses(ctx context.Context, diseaseID int64) ([]models.TreatmentDose, error) {
	args := m.Called(ctx, diseaseID)
	l, _ := args.Get(0).([]models.TreatmentDose)
	return l, args.Error(1)
}

func (m *mockCatalog) UpdateDisease(ctx context.Context, id int64, upd models.DiseaseUpdate) (*models.Disease, error) {
	args := m.Called(ctx, id, upd)
	d, _ := args.Get(0).(*models.Disease)
	return d, args.Error(1)
}

func (m *mockCatalog) CreateTreatment(ctx context.Context, t *models.Treatment) (*models.Treatment, error) {
	args := m.Called(ctx, t)
	out, _ := args.Get(0).(*models.Treatment)
	return out, args.Error(1)
}

func (m *mockCatalog) UpdateTreatment(ctx context.Context, t *models.Treatment) (*models.Treatment, error) {
	args := m.Called(ctx, t)
	out, _ := args.Get(0).(*models.Treatment)
	return out, args.Error(1)
}

func (m *mockCatalog) DeleteTreatment(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalog) CalculateDose(ctx context.Context, treatmentID int64, plantCount int) (*models.Dose, error) {
	args := m.Called(ctx, treatmentID, plantCount)
	d, _ := args.Get(0).(*models.Dose)
	return d, args.Error(1)
}

type mockStorage struct{ mock.Mock }

func (m *mockStorage) PresignUpload(ctx context.Context, userID int64) (*services.Upload, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*services.Upload)
	return u, args.Error(1)
}

func (m *mockStorage) DeleteObject(ctx context.Context, rawURL string) (bool, error) {
	args := m.Called(ctx, rawURL)
	return args.Bool(0), args.Error(1)
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }
