package migrations

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/sdscatalog/pkg/migration"
)

func init() {
	migration.Register("20230301000000_create_safety_data_sheets", &CreateSafetyDataSheets{})
}

// safetyDataSheetV1 is the table as first shipped, before statements and
// signal words were extracted.
type safetyDataSheetV1 struct {
	ID             uint                        `gorm:"primaryKey"`
	ProductName    string                      `gorm:"size:512;not null;uniqueIndex:idx_sds_natural_key,priority:1"`
	ProductNumber  string                      `gorm:"size:128;not null;uniqueIndex:idx_sds_natural_key,priority:2"`
	ProductBrand   string                      `gorm:"size:128;not null;uniqueIndex:idx_sds_natural_key,priority:3"`
	CASNumber      string                      `gorm:"column:cas_number;size:64;not null;uniqueIndex:idx_sds_natural_key,priority:4;index"`
	Hazards        datatypes.JSONSlice[string] `gorm:"not null"`
	PDFDownloadURL string                      `gorm:"column:pdf_download_url;size:1024;not null"`
	Data           datatypes.JSON              `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (safetyDataSheetV1) TableName() string { return "safety_data_sheets" }

type CreateSafetyDataSheets struct{}

func (m *CreateSafetyDataSheets) Up(db *gorm.DB) error {
	return db.AutoMigrate(&safetyDataSheetV1{})
}

func (m *CreateSafetyDataSheets) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("safety_data_sheets")
}
