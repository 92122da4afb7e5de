package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving, retrieving, and deleting
// binary objects. Delete exists so callers can clean up a just-stored file
// when a later pipeline step fails.
type ObjectStore interface {
	Save(ctx context.Context, userId string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}
