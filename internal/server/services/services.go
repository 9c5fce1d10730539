// Package services contains server-side business logic: accounts, the
// analysis lifecycle, reference data and uploads.
package services

import (
	"context"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/blob"
)

// BlobPurger removes stored images once the rows that reference them are gone.
type BlobPurger interface {
	Purge(ctx context.Context, urls ...string) blob.Report
	Remove(ctx context.Context, rawURL string) (blob.Outcome, error)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
