package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/sdscatalog/app/repositories"
	"github.com/shashiranjanraj/sdscatalog/pkg/extract"
	"github.com/shashiranjanraj/sdscatalog/pkg/hazard"
	"github.com/shashiranjanraj/sdscatalog/pkg/latex"
	"github.com/shashiranjanraj/sdscatalog/pkg/pdfmerge"
	"github.com/shashiranjanraj/sdscatalog/pkg/storage"
	"github.com/shashiranjanraj/sdscatalog/pkg/workerpool"
)

// Validation errors. All map to 422.
var (
	ErrEmptyRequest    = errors.New("at least one sds item is required")
	ErrInvalidQuantity = errors.New("item quantity must be greater than zero")
	ErrDuplicateItem   = errors.New("sds id listed more than once")
	ErrMissingQuery    = errors.New("search query is required")
	ErrInvalidUpload   = errors.New("uploaded file is not a readable pdf")
)

// ErrNotFound is returned for single-record lookups with no match.
var ErrNotFound = repositories.ErrNotFound

// Kind classifies err for metrics and logs. It returns "ok" for nil.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptyRequest),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrDuplicateItem),
		errors.Is(err, ErrMissingQuery),
		errors.Is(err, ErrInvalidUpload),
		errors.Is(err, hazard.ErrDivisionByZero),
		errors.Is(err, hazard.ErrUnknownStatement),
		errors.Is(err, extract.ErrIncomplete):
		return "validation"
	case errors.Is(err, hazard.ErrMissingReference), errors.Is(err, ErrNotFound):
		return "missing_reference"
	case errors.Is(err, workerpool.ErrPoolFull), errors.Is(err, workerpool.ErrPoolClosed):
		return "busy"
	case errors.Is(err, latex.ErrRenderFailure):
		return "render_failure"
	case errors.Is(err, storage.ErrFetchFailed):
		return "fetch_failure"
	case errors.Is(err, pdfmerge.ErrInvalidDocument):
		return "invalid_document"
	case errors.Is(err, extract.ErrExtractFailed), errors.Is(err, extract.ErrNotConfigured):
		return "extract_failure"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
