package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/shashiranjanraj/sdscatalog/app/models"
	"github.com/shashiranjanraj/sdscatalog/pkg/cache"
	"github.com/shashiranjanraj/sdscatalog/pkg/extract"
	"github.com/shashiranjanraj/sdscatalog/pkg/logger"
	"github.com/shashiranjanraj/sdscatalog/pkg/metrics"
	"github.com/shashiranjanraj/sdscatalog/pkg/pdfmerge"
	"github.com/shashiranjanraj/sdscatalog/pkg/search"
	"github.com/shashiranjanraj/sdscatalog/pkg/storage"
)

// SyncPageSize is how many sheets SyncIndex pushes per request.
const SyncPageSize = 500

// SheetStore is the persistence the catalog needs.
type SheetStore interface {
	FindByID(ctx context.Context, id uint) (*models.SafetyDataSheet, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.SafetyDataSheet, error)
	Upsert(ctx context.Context, sheet *models.SafetyDataSheet) error
	Search(ctx context.Context, query string, limit int) ([]models.SafetyDataSheet, error)
	Page(ctx context.Context, afterID uint, limit int) ([]models.SafetyDataSheet, error)
}

// SdsService manages the sheet catalog: ingest, lookup and search.
type SdsService struct {
	store     SheetStore
	disk      storage.Disk
	extractor extract.Extractor
	indexer   search.Indexer
	cache     cache.Store
	cacheTTL  time.Duration
}

// NewSdsService wires the catalog. A nil cache or indexer disables that
// concern.
func NewSdsService(store SheetStore, disk storage.Disk, extractor extract.Extractor, indexer search.Indexer, c cache.Store, cacheTTL time.Duration) *SdsService {
	if indexer == nil {
		indexer = search.Noop{}
	}
	if c == nil {
		c = (*cache.Redis)(nil)
	}
	return &SdsService{
		store:     store,
		disk:      disk,
		extractor: extractor,
		indexer:   indexer,
		cache:     c,
		cacheTTL:  cacheTTL,
	}
}

func cacheKey(id uint) string { return fmt.Sprintf("sds:%d", id) }

// Upload ingests one vendor sheet: the PDF is parsed for its identifiers
// and hazard data, stored in the blob store and upserted on its natural key.
func (s *SdsService) Upload(ctx context.Context, filename string, pdf []byte) (*models.SafetyDataSheet, error) {
	log := logger.WithCtx(ctx)

	if _, err := pdfmerge.PageCount(pdf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}

	doc, err := s.extractor.Extract(ctx, filename, pdf)
	if err != nil {
		return nil, fmt.Errorf("upload: extract: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	key := models.ObjectKey(doc.ProductBrand, doc.ProductNumber)
	if err := s.disk.Put(ctx, key, pdf, storage.ContentTypePDF); err != nil {
		return nil, fmt.Errorf("upload: store pdf: %w", err)
	}

	sheet := &models.SafetyDataSheet{
		ProductName:    doc.ProductName,
		ProductNumber:  doc.ProductNumber,
		ProductBrand:   doc.ProductBrand,
		CASNumber:      doc.CASNumber,
		SignalWord:     doc.SignalWord,
		Hazards:        datatypes.JSONSlice[string](doc.Pictograms),
		Statements:     datatypes.JSONSlice[string](doc.Statements),
		PDFDownloadURL: s.disk.URL(key),
		Data:           datatypes.JSON(doc.Data),
	}
	if err := s.store.Upsert(ctx, sheet); err != nil {
		return nil, fmt.Errorf("upload: save: %w", err)
	}

	if err := s.cache.Del(ctx, cacheKey(sheet.ID)); err != nil {
		log.Warn("upload: cache invalidation failed", "sds_id", sheet.ID, "error", err)
	}
	if err := s.indexer.Index(ctx, searchDocument(sheet)); err != nil {
		log.Warn("upload: search index push failed", "sds_id", sheet.ID, "error", err)
	}

	log.Info("upload: stored sheet",
		"sds_id", sheet.ID,
		"product", sheet.ProductName,
		"brand", sheet.ProductBrand,
		"number", sheet.ProductNumber,
		"key", key,
	)
	return sheet, nil
}

// Get returns one sheet, served from cache when possible.
func (s *SdsService) Get(ctx context.Context, id uint) (*models.SafetyDataSheet, error) {
	var cached models.SafetyDataSheet
	if s.cache.Get(ctx, cacheKey(id), &cached) {
		metrics.RecordCache(true)
		return &cached, nil
	}
	metrics.RecordCache(false)

	sheet, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cacheKey(id), sheet, s.cacheTTL); err != nil {
		logger.WithCtx(ctx).Debug("sds: cache set failed", "sds_id", id, "error", err)
	}
	return sheet, nil
}

// Batch returns the sheets for ids in ascending id order. Unknown ids are
// omitted.
func (s *SdsService) Batch(ctx context.Context, ids []uint) ([]models.SafetyDataSheet, error) {
	if len(ids) == 0 {
		return []models.SafetyDataSheet{}, nil
	}
	return s.store.FindByIDs(ctx, ids)
}

// Search finds sheets by product name, product number or CAS number prefix.
func (s *SdsService) Search(ctx context.Context, query string, limit int) ([]models.SafetyDataSheet, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrMissingQuery
	}
	return s.store.Search(ctx, query, limit)
}

// SyncIndex pushes every stored sheet to the search index and returns how
// many were sent.
func (s *SdsService) SyncIndex(ctx context.Context) (int, error) {
	var (
		after uint
		total int
	)
	for {
		page, err := s.store.Page(ctx, after, SyncPageSize)
		if err != nil {
			return total, fmt.Errorf("sync: page after %d: %w", after, err)
		}
		if len(page) == 0 {
			return total, nil
		}

		docs := make([]search.Document, len(page))
		for i := range page {
			docs[i] = searchDocument(&page[i])
		}
		if err := s.indexer.Index(ctx, docs...); err != nil {
			return total, fmt.Errorf("sync: %w", err)
		}

		total += len(page)
		after = page[len(page)-1].ID
		if err := ctx.Err(); err != nil {
			return total, err
		}
		if len(page) < SyncPageSize {
			return total, nil
		}
	}
}

func searchDocument(m *models.SafetyDataSheet) search.Document {
	return search.Document{
		ID:            m.ID,
		ProductName:   m.ProductName,
		ProductBrand:  m.ProductBrand,
		ProductNumber: m.ProductNumber,
		CASNumber:     m.CASNumber,
		Hazards:       m.Hazards,
	}
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
