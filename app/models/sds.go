package models

import (
	"time"

	"gorm.io/datatypes"
)

// SafetyDataSheet is one vendor sheet. The 4-tuple of product name, number,
// brand and CAS number is the natural key uploads upsert on.
type SafetyDataSheet struct {
	ID             uint                        `gorm:"primaryKey"`
	ProductName    string                      `gorm:"size:512;not null;uniqueIndex:idx_sds_natural_key,priority:1"`
	ProductNumber  string                      `gorm:"size:128;not null;uniqueIndex:idx_sds_natural_key,priority:2"`
	ProductBrand   string                      `gorm:"size:128;not null;uniqueIndex:idx_sds_natural_key,priority:3"`
	CASNumber      string                      `gorm:"column:cas_number;size:64;not null;uniqueIndex:idx_sds_natural_key,priority:4;index"`
	SignalWord     string                      `gorm:"size:16"`
	Hazards        datatypes.JSONSlice[string] `gorm:"not null"`
	Statements     datatypes.JSONSlice[string]
	PDFDownloadURL string         `gorm:"column:pdf_download_url;size:1024;not null"`
	Data           datatypes.JSON `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (SafetyDataSheet) TableName() string { return "safety_data_sheets" }

// ObjectKey is the blob-store key the sheet PDF is stored under.
func ObjectKey(brand, number string) string {
	return "Sigma_Aldrich_" + brand + "_" + number + ".pdf"
}
