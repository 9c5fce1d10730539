package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/common"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/dbx"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/logging"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/auth"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/config"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/models"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/repositories/repomanager"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	FullName        string
	Email           string
	Password        string
	Organization    *string
	ProfileImageURL *string
}

// LoginResult is returned to the client after a successful login.
type LoginResult struct {
	Token    string `json:"token"`
	IsAdmin  bool   `json:"es_admin"`
	FullName string `json:"nombre_completo"`
}

// UserService handles accounts: registration, login, profile changes and
// the cascading deletion of a user with all of their analyses and images.
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	blobs                       BlobPurger
	log                         logging.Logger
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, blobs BlobPurger, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		blobs:                       blobs,
		log:                         log.With("module", "users"),
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a regular user. Duplicate emails yield common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	if in.FullName == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: nombre_completo, email and password are required", common.ErrorValidation)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		FullName:        in.FullName,
		Email:           in.Email,
		PasswordHash:    hash,
		Organization:    in.Organization,
		ProfileImageURL: in.ProfileImageURL,
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login checks the credentials and mints an access token carrying the admin claim.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, user.IsAdmin, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &LoginResult{Token: token, IsAdmin: user.IsAdmin, FullName: user.FullName}, nil
}

func (s *UserService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading profile: %w", err)
	}
	return u, nil
}

// UpdateProfile changes the display name and/or the profile image.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) error {
	if upd.FullName != nil && strings.TrimSpace(*upd.FullName) == "" {
		upd.FullName = nil
	}
	if upd.ProfileImageURL != nil && *upd.ProfileImageURL == "" {
		upd.ProfileImageURL = nil
	}
	if upd.FullName == nil && upd.ProfileImageURL == nil {
		return fmt.Errorf("%w: nothing to update", common.ErrorValidation)
	}

	if err := s.repomanager.Users(s.db).UpdateProfile(ctx, userID, upd); err != nil {
		return fmt.Errorf("error updating profile: %w", err)
	}
	return nil
}

// ChangePassword replaces the password after re-checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if current == "" || next == "" {
		return fmt.Errorf("%w: current_password and new_password are required", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("error loading user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return common.ErrorUnauthorized
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := repo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	return nil
}

// AdminResetPassword sets a new password for any user.
func (s *UserService) AdminResetPassword(ctx context.Context, userID int64, next string) error {
	if next == "" {
		return fmt.Errorf("%w: new_password is required", common.ErrorValidation)
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.repomanager.Users(s.db).UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("error resetting password: %w", err)
	}
	return nil
}

func (s *UserService) ListUsersWithAnalyses(ctx context.Context) ([]models.UserSummary, error) {
	out, err := s.repomanager.Users(s.db).ListWithAnalysisCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return nonNil(out), nil
}

// DeleteSelf removes the caller's account after re-checking their password.
func (s *UserService) DeleteSelf(ctx context.Context, userID int64, currentPassword string) error {
	if currentPassword == "" {
		return fmt.Errorf("%w: current_password is required", common.ErrorValidation)
	}
	return s.deleteCascade(ctx, userID, func(u *models.User) error {
		if !auth.CheckPassword(u.PasswordHash, currentPassword) {
			return common.ErrorUnauthorized
		}
		return nil
	})
}

// AdminDeleteUser removes another, non-admin user.
func (s *UserService) AdminDeleteUser(ctx context.Context, adminID, userID int64) error {
	if adminID == userID {
		return fmt.Errorf("%w: an administrator cannot delete their own account", common.ErrorForbidden)
	}
	return s.deleteCascade(ctx, userID, func(u *models.User) error {
		if u.IsAdmin {
			return fmt.Errorf("%w: cannot delete another administrator", common.ErrorForbidden)
		}
		return nil
	})
}

// deleteCascade locks the user row, lets check veto the deletion, removes
// the user's analyses and the user, and after commit cleans up every image
// they referenced.
func (s *UserService) deleteCascade(ctx context.Context, userID int64, check func(*models.User) error) error {
	urls, err := dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) ([]string, error) {
		users := s.repomanager.Users(tx)

		u, err := users.GetForUpdate(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := check(u); err != nil {
			return nil, err
		}

		refs, err := s.repomanager.Analyses(tx).DeleteByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := users.Delete(ctx, userID); err != nil {
			return nil, err
		}

		var urls []string
		if u.ProfileImageURL != nil && *u.ProfileImageURL != "" {
			urls = append(urls, *u.ProfileImageURL)
		}
		return append(urls, models.URLs(refs)...), nil
	})
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}

	rep := s.blobs.Purge(ctx, urls...)
	s.log.Info(ctx, "user deleted", "user_id", userID,
		"blobs_deleted", rep.Deleted, "blobs_missing", rep.Missing, "blobs_failed", rep.Failed+rep.Unresolved)
	return nil
}

// EnsureAdmin promotes the user with the given email, or creates it as an
// administrator. created reports which one happened.
func (s *UserService) EnsureAdmin(ctx context.Context, in RegisterInput) (u *models.User, created bool, err error) {
	repo := s.repomanager.Users(s.db)

	existing, err := repo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		if err := repo.SetAdmin(ctx, existing.ID, true); err != nil {
			return nil, false, fmt.Errorf("error promoting user: %w", err)
		}
		existing.IsAdmin = true
		return existing, false, nil
	case !errors.Is(err, common.ErrorNotFound):
		return nil, false, fmt.Errorf("error loading user: %w", err)
	}

	if in.FullName == "" || in.Password == "" {
		return nil, false, fmt.Errorf("%w: name and password are required for a new administrator", common.ErrorValidation)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, false, fmt.Errorf("error hashing password: %w", err)
	}
	u, err = repo.Create(ctx, &models.User{FullName: in.FullName, Email: in.Email, PasswordHash: hash, IsAdmin: true})
	if err != nil {
		return nil, false, fmt.Errorf("error creating user: %w", err)
	}
	return u, true, nil
}
