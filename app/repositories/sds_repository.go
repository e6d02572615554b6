package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/sdscatalog/app/models"
	"github.com/shashiranjanraj/sdscatalog/pkg/metrics"
)

// ErrNotFound is returned by FindByID when no row matches.
var ErrNotFound = errors.New("repositories: record not found")

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// SdsRepository handles database operations for SafetyDataSheet.
type SdsRepository struct {
	db *gorm.DB
}

func NewSdsRepository(db *gorm.DB) *SdsRepository {
	return &SdsRepository{db: db}
}

// FindByIDs loads every sheet whose id is in ids in one query. Unknown ids
// are simply absent from the result; order follows the primary key.
func (r *SdsRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.SafetyDataSheet, error) {
	defer metrics.ObserveDBQuery("find_by_ids", time.Now())

	if len(ids) == 0 {
		return []models.SafetyDataSheet{}, nil
	}

	var sheets []models.SafetyDataSheet
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id").
		Find(&sheets).Error
	return sheets, err
}

// FindByID looks up a sheet by primary key.
func (r *SdsRepository) FindByID(ctx context.Context, id uint) (*models.SafetyDataSheet, error) {
	defer metrics.ObserveDBQuery("find_by_id", time.Now())

	var sheet models.SafetyDataSheet
	err := r.db.WithContext(ctx).First(&sheet, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sheet, nil
}

// Upsert inserts sheet or, when a row with the same natural key exists,
// overwrites its extracted fields. sheet is reloaded afterwards so ID and
// timestamps reflect the stored row.
func (r *SdsRepository) Upsert(ctx context.Context, sheet *models.SafetyDataSheet) error {
	defer metrics.ObserveDBQuery("upsert", time.Now())

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "product_name"},
				{Name: "product_number"},
				{Name: "product_brand"},
				{Name: "cas_number"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"data",
				"pdf_download_url",
				"signal_word",
				"hazards",
				"statements",
				"updated_at",
			}),
		}).Create(sheet).Error
		if err != nil {
			return err
		}

		// On conflict some drivers report the wrong id, so re-read by key.
		var stored models.SafetyDataSheet
		err = tx.Where(&models.SafetyDataSheet{
			ProductName:   sheet.ProductName,
			ProductNumber: sheet.ProductNumber,
			ProductBrand:  sheet.ProductBrand,
			CASNumber:     sheet.CASNumber,
		}).First(&stored).Error
		if err != nil {
			return err
		}
		*sheet = stored
		return nil
	})
}

// Search returns sheets whose product name, product number or CAS number
// starts with query, case-insensitively.
func (r *SdsRepository) Search(ctx context.Context, query string, limit int) ([]models.SafetyDataSheet, error) {
	defer metrics.ObserveDBQuery("search", time.Now())

	switch {
	case limit <= 0:
		limit = DefaultSearchLimit
	case limit > MaxSearchLimit:
		limit = MaxSearchLimit
	}

	prefix := escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"

	var sheets []models.SafetyDataSheet
	err := r.db.WithContext(ctx).
		Where(`LOWER(product_name) LIKE ? ESCAPE '!'`, prefix).
		Or(`LOWER(product_number) LIKE ? ESCAPE '!'`, prefix).
		Or(`LOWER(cas_number) LIKE ? ESCAPE '!'`, prefix).
		Order("product_name").
		Order("id").
		Limit(limit).
		Find(&sheets).Error
	return sheets, err
}

// Page returns up to limit sheets with id > afterID, for keyset iteration.
func (r *SdsRepository) Page(ctx context.Context, afterID uint, limit int) ([]models.SafetyDataSheet, error) {
	defer metrics.ObserveDBQuery("page", time.Now())

	var sheets []models.SafetyDataSheet
	err := r.db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id").
		Limit(limit).
		Find(&sheets).Error
	return sheets, err
}

// Count returns the number of stored sheets.
func (r *SdsRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.SafetyDataSheet{}).Count(&n).Error
	return n, err
}

// "!" is the LIKE escape character; it needs no quoting in any supported dialect.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string { return likeEscaper.Replace(s) }
