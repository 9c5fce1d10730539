package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/common"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/logging"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/observability"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/blob"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/classifier"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/models"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/repositories/repomanager"
)

// AnalyzeResult is the outcome of classifying one leaf. Nothing is stored.
type AnalyzeResult struct {
	Prediction   string  `json:"prediction"`
	Confidence   float64 `json:"confidence"`
	IsValidLeaf  bool    `json:"is_valid_leaf"`
	ImageURL     string  `json:"url_imagen"`
	BackImageURL *string `json:"url_imagen_reverso"`
}

// SaveInput is a classification the user chose to keep.
type SaveInput struct {
	ImageURL     string
	BackImageURL *string
	Prediction   string
	Confidence   *float64
}

// AnalysisService owns the analysis lifecycle: active, trashed, and removed.
//
// Row changes are committed before image cleanup starts; cleanup failures
// are logged and never reported to the caller.
type AnalysisService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	classifier  classifier.Classifier
	blobs       BlobPurger
	log         logging.Logger
}

func NewAnalysisService(db *sql.DB, m repomanager.RepositoryManager, c classifier.Classifier, blobs BlobPurger, log logging.Logger) *AnalysisService {
	return &AnalysisService{
		db:          db,
		repomanager: m,
		classifier:  c,
		blobs:       blobs,
		log:         log.With("module", "analyses"),
	}
}

// Analyze classifies the front image and, when given, the back image, and
// picks the result to show.
func (s *AnalysisService) Analyze(ctx context.Context, front string, back *string) (*AnalyzeResult, error) {
	if strings.TrimSpace(front) == "" {
		return nil, fmt.Errorf("%w: image_url_front is required", common.ErrorValidation)
	}
	if back != nil && *back == "" {
		back = nil
	}

	frontPred, err := s.classifier.Classify(ctx, front)
	if err != nil {
		return nil, fmt.Errorf("error classifying front image: %w", err)
	}

	var backPred *classifier.Prediction
	if back != nil {
		p, err := s.classifier.Classify(ctx, *back)
		if err != nil {
			return nil, fmt.Errorf("error classifying back image: %w", err)
		}
		backPred = &p
	}

	chosen := classifier.Choose(frontPred, backPred)
	label, valid := classifier.Assess(chosen)

	return &AnalyzeResult{
		Prediction:   label,
		Confidence:   chosen.Confidence,
		IsValidLeaf:  valid,
		ImageURL:     front,
		BackImageURL: back,
	}, nil
}

// Save stores a new active analysis for the user.
func (s *AnalysisService) Save(ctx context.Context, userID int64, in SaveInput) (*models.Analysis, error) {
	if in.ImageURL == "" || in.Prediction == "" || in.Confidence == nil {
		return nil, fmt.Errorf("%w: url_imagen, prediction and confidence are required", common.ErrorValidation)
	}
	if in.BackImageURL != nil && *in.BackImageURL == "" {
		in.BackImageURL = nil
	}

	a, err := s.repomanager.Analyses(s.db).Create(ctx, &models.Analysis{
		UserID:       userID,
		ImageURL:     in.ImageURL,
		BackImageURL: in.BackImageURL,
		Prediction:   in.Prediction,
		Confidence:   *in.Confidence,
	})
	if err != nil {
		return nil, fmt.Errorf("error saving analysis: %w", err)
	}
	return a, nil
}

func (s *AnalysisService) History(ctx context.Context, userID int64) ([]models.Analysis, error) {
	out, err := s.repomanager.Analyses(s.db).ListActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing history: %w", err)
	}
	return nonNil(out), nil
}

func (s *AnalysisService) Trash(ctx context.Context, userID int64) ([]models.Analysis, error) {
	out, err := s.repomanager.Analyses(s.db).ListTrash(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing trash: %w", err)
	}
	return nonNil(out), nil
}

// SoftDelete moves the user's analysis to the trash.
func (s *AnalysisService) SoftDelete(ctx context.Context, userID, id int64) error {
	if err := s.repomanager.Analyses(s.db).SoftDelete(ctx, id, userID); err != nil {
		return fmt.Errorf("error moving analysis to trash: %w", err)
	}
	s.log.Info(ctx, "analysis moved to trash", "analysis_id", id)
	return nil
}

func (s *AnalysisService) Restore(ctx context.Context, userID, id int64) error {
	if err := s.repomanager.Analyses(s.db).Restore(ctx, id, userID); err != nil {
		return fmt.Errorf("error restoring analysis: %w", err)
	}
	return nil
}

// Purge removes the user's analysis for good, then its images.
func (s *AnalysisService) Purge(ctx context.Context, userID, id int64) error {
	refs, err := s.repomanager.Analyses(s.db).Purge(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("error deleting analysis: %w", err)
	}
	observability.AnalysesPurged.WithLabelValues("user").Inc()

	s.cleanup(ctx, "analysis deleted", []models.BlobRefs{refs}, "analysis_id", id)
	return nil
}

// EmptyTrash removes every trashed analysis of the user and returns how many
// rows went away.
func (s *AnalysisService) EmptyTrash(ctx context.Context, userID int64) (int, error) {
	refs, err := s.repomanager.Analyses(s.db).EmptyTrash(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("error emptying trash: %w", err)
	}
	observability.AnalysesPurged.WithLabelValues("empty_trash").Add(float64(len(refs)))

	s.cleanup(ctx, "trash emptied", refs, "records", len(refs))
	return len(refs), nil
}

func (s *AnalysisService) RestoreAll(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repomanager.Analyses(s.db).RestoreAll(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("error restoring trash: %w", err)
	}
	return n, nil
}

func (s *AnalysisService) AdminSoftDelete(ctx context.Context, id int64) error {
	if err := s.repomanager.Analyses(s.db).AdminSoftDelete(ctx, id); err != nil {
		return fmt.Errorf("error moving analysis to trash: %w", err)
	}
	s.log.Info(ctx, "analysis moved to trash by admin", "analysis_id", id)
	return nil
}

func (s *AnalysisService) AdminRestore(ctx context.Context, id int64) error {
	if err := s.repomanager.Analyses(s.db).AdminRestore(ctx, id); err != nil {
		return fmt.Errorf("error restoring analysis: %w", err)
	}
	return nil
}

func (s *AnalysisService) AdminActive(ctx context.Context) ([]models.Analysis, error) {
	out, err := s.repomanager.Analyses(s.db).ListAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing analyses: %w", err)
	}
	return nonNil(out), nil
}

func (s *AnalysisService) AdminTrash(ctx context.Context) ([]models.Analysis, error) {
	out, err := s.repomanager.Analyses(s.db).ListAllTrash(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing trash: %w", err)
	}
	return nonNil(out), nil
}

func (s *AnalysisService) AdminActiveByUser(ctx context.Context, userID int64) ([]models.Analysis, error) {
	out, err := s.repomanager.Analyses(s.db).ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing analyses: %w", err)
	}
	return nonNil(out), nil
}

// PurgeExpired removes analyses that have been in the trash longer than
// retention, then their images.
func (s *AnalysisService) PurgeExpired(ctx context.Context, now time.Time, retention time.Duration) (int, blob.Report, error) {
	if retention <= 0 {
		return 0, blob.Report{}, fmt.Errorf("%w: retention must be positive", common.ErrorValidation)
	}
	cutoff := now.Add(-retention)

	refs, err := s.repomanager.Analyses(s.db).PurgeTrashedBefore(ctx, cutoff)
	if err != nil {
		return 0, blob.Report{}, fmt.Errorf("error purging expired trash: %w", err)
	}
	observability.AnalysesPurged.WithLabelValues("expired").Add(float64(len(refs)))

	rep := s.cleanup(ctx, "expired trash purged", refs, "records", len(refs), "cutoff", cutoff)
	return len(refs), rep, nil
}

func (s *AnalysisService) cleanup(ctx context.Context, msg string, refs []models.BlobRefs, args ...any) blob.Report {
	rep := s.blobs.Purge(ctx, models.URLs(refs)...)
	args = append(args,
		"blobs_attempted", rep.Attempted,
		"blobs_deleted", rep.Deleted,
		"blobs_missing", rep.Missing,
		"blobs_failed", rep.Failed+rep.Unresolved,
	)
	s.log.Info(ctx, msg, args...)
	return rep
}
