// Package filestore abstracts where uploaded spreadsheets live. Handlers and
// services only see the FileStore capability (save/copy/delete/exists), so
// the core logic is testable without a real filesystem or object store.
package filestore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FileStore is the capability-scoped collaborator for uploaded files.
// Paths returned by Save and Copy are opaque to callers: a filesystem path
// for the disk backend, an object key for S3.
type FileStore interface {
	// Save stores data under a freshly generated name that keeps
	// originalName's extension, and returns the new path.
	Save(ctx context.Context, originalName string, data []byte) (string, error)

	// Copy duplicates the stored file at path under a new generated name
	// and returns the new path. The source must exist.
	Copy(ctx context.Context, path string) (string, error)

	// Delete removes the stored file. A missing file is not an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether path refers to a stored file.
	Exists(ctx context.Context, path string) bool
}

// storageKey generates a date-bucketed unique key preserving ext
// (e.g. "2026/8/29/4f1c...-d2.xlsx").
func storageKey(ext string) string {
	d := time.Now()
	return fmt.Sprintf("%d/%d/%d/%v%s", d.Year(), int(d.Month()), d.Day(), uuid.New(), ext)
}
