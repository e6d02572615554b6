// Package storage holds safety data sheet PDFs and fetches them back for
// packet assembly.
//
// Two drivers are available:
//   - "local" local filesystem (default)
//   - "s3"    S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Uploaded sheets are written through a Disk and their public URL is stored
// on the catalog row. At checkout time the Fetcher downloads those URLs over
// HTTP, so a sheet can live on any disk (or anywhere else) as long as the URL
// resolves.
//
//	disk, _ := storage.New(ctx, storage.ConfigFromEnv())
//	_ = disk.Put(ctx, "Sigma_Aldrich_sial_320579.pdf", pdf, storage.ContentTypePDF)
//	url := disk.URL("Sigma_Aldrich_sial_320579.pdf")
package storage

import (
	"context"
	"errors"
)

// ContentTypePDF is the MIME type written for sheet uploads.
const ContentTypePDF = "application/pdf"

// ErrNotFound is returned by Get when no object exists at the path.
var ErrNotFound = errors.New("storage: object not found")

// Disk is the filesystem driver interface. Every driver must implement this.
type Disk interface {
	// Put writes content to path, replacing any existing object.
	Put(ctx context.Context, path string, content []byte, contentType string) error

	// Get returns the full content of the object at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether an object exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes an object. Returns nil if it did not exist.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string
}
