package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/common"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/logging"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/blob"
)

const uploadURLValidity = 15 * time.Minute

// Upload tells the client where to PUT an image and which URL to store afterwards.
type Upload struct {
	Key         string `json:"storage_key"`
	UploadURL   string `json:"upload_url"`
	DownloadURL string `json:"download_url"`
}

// StorageService issues upload URLs and lets administrators remove single objects.
type StorageService struct {
	store    blob.Store
	resolver *blob.Resolver
	blobs    BlobPurger
	urlBase  string
	log      logging.Logger
}

func NewStorageService(store blob.Store, resolver *blob.Resolver, blobs BlobPurger, urlBase string, log logging.Logger) *StorageService {
	return &StorageService{
		store:    store,
		resolver: resolver,
		blobs:    blobs,
		urlBase:  urlBase,
		log:      log.With("module", "storage"),
	}
}

// PresignUpload reserves a fresh key for userID.
func (s *StorageService) PresignUpload(ctx context.Context, userID int64) (*Upload, error) {
	key := blob.NewStorageKey(userID)

	u, err := s.store.PresignPut(ctx, key, uploadURLValidity)
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	return &Upload{
		Key:         key,
		UploadURL:   u,
		DownloadURL: s.resolver.URL(s.urlBase, key),
	}, nil
}

// DeleteObject removes the object behind rawURL. found is false when it was
// already gone.
func (s *StorageService) DeleteObject(ctx context.Context, rawURL string) (found bool, err error) {
	if rawURL == "" {
		return false, fmt.Errorf("%w: image_url is required", common.ErrorValidation)
	}

	outcome, err := s.blobs.Remove(ctx, rawURL)
	if err != nil {
		return false, fmt.Errorf("error deleting object: %w", err)
	}

	s.log.Info(ctx, "object removed by admin", "url", rawURL, "outcome", outcome)
	return outcome == blob.OutcomeDeleted, nil
}
