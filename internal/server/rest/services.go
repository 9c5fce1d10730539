package rest

import (
	"context"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/models"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/services"
)

// UserService is implemented by *services.UserService.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Profile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) error
	ChangePassword(ctx context.Context, userID int64, current, next string) error
	DeleteSelf(ctx context.Context, userID int64, currentPassword string) error
	AdminResetPassword(ctx context.Context, userID int64, next string) error
	AdminDeleteUser(ctx context.Context, adminID, userID int64) error
	ListUsersWithAnalyses(ctx context.Context) ([]models.UserSummary, error)
}

// AnalysisService is implemented by *services.AnalysisService.
type AnalysisService interface {
	Analyze(ctx context.Context, front string, back *string) (*services.AnalyzeResult, error)
	Save(ctx context.Context, userID int64, in services.SaveInput) (*models.Analysis, error)
	History(ctx context.Context, userID int64) ([]models.Analysis, error)
	Trash(ctx context.Context, userID int64) ([]models.Analysis, error)
	SoftDelete(ctx context.Context, userID, id int64) error
	Restore(ctx context.Context, userID, id int64) error
	Purge(ctx context.Context, userID, id int64) error
	EmptyTrash(ctx context.Context, userID int64) (int, error)
	RestoreAll(ctx context.Context, userID int64) (int64, error)
	AdminSoftDelete(ctx context.Context, id int64) error
	AdminRestore(ctx context.Context, id int64) error
	AdminActive(ctx context.Context) ([]models.Analysis, error)
	AdminTrash(ctx context.Context) ([]models.Analysis, error)
	AdminActiveByUser(ctx context.Context, userID int64) ([]models.Analysis, error)
}

// CatalogService is implemented by *services.CatalogService.
type CatalogService interface {
	Diseases(ctx context.Context) ([]models.Disease, error)
	DiseaseInfo(ctx context.Context, tag string) (*models.DiseaseInfo, error)
	TreatmentDoses(ctx context.Context, diseaseID int64) ([]models.TreatmentDose, error)
	UpdateDisease(ctx context.Context, id int64, upd models.DiseaseUpdate) (*models.Disease, error)
	CreateTreatment(ctx context.Context, t *models.Treatment) (*models.Treatment, error)
	UpdateTreatment(ctx context.Context, t *models.Treatment) (*models.Treatment, error)
	DeleteTreatment(ctx context.Context, id int64) error
	CalculateDose(ctx context.Context, treatmentID int64, plantCount int) (*models.Dose, error)
}

// StorageService is implemented by *services.StorageService.
type StorageService interface {
	PresignUpload(ctx context.Context, userID int64) (*services.Upload, error)
	DeleteObject(ctx context.Context, rawURL string) (bool, error)
}

var (
	_ UserService     = (*services.UserService)(nil)
	_ AnalysisService = (*services.AnalysisService)(nil)
	_ CatalogService  = (*services.CatalogService)(nil)
	_ StorageService  = (*services.StorageService)(nil)
)
