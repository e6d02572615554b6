// Package resources defines the JSON shapes the API returns. Each resource
// is built field by field from its model; nothing is dumped reflectively.
package resources

import (
	"encoding/json"
	"time"

	"github.com/shashiranjanraj/sdscatalog/app/models"
)

// SdsResource is the public view of a safety data sheet.
type SdsResource struct {
	ID             uint            `json:"id"`
	ProductName    string          `json:"product_name"`
	ProductNumber  string          `json:"product_number"`
	ProductBrand   string          `json:"product_brand"`
	CASNumber      string          `json:"cas_number"`
	SignalWord     *string         `json:"signal_word"`
	Hazards        []string        `json:"hazards"`
	Statements     []string        `json:"statements"`
	PDFDownloadURL string          `json:"pdf_download_url"`
	Data           json.RawMessage `json:"data"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewSdsResource converts one model.
func NewSdsResource(m *models.SafetyDataSheet) SdsResource {
	r := SdsResource{
		ID:             m.ID,
		ProductName:    m.ProductName,
		ProductNumber:  m.ProductNumber,
		ProductBrand:   m.ProductBrand,
		CASNumber:      m.CASNumber,
		Hazards:        nonNil(m.Hazards),
		Statements:     nonNil(m.Statements),
		PDFDownloadURL: m.PDFDownloadURL,
		Data:           json.RawMessage("{}"),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.SignalWord != "" {
		sw := m.SignalWord
		r.SignalWord = &sw
	}
	if len(m.Data) > 0 && json.Valid(m.Data) {
		r.Data = json.RawMessage(m.Data)
	}
	return r
}

// NewSdsCollection converts a slice, always returning a non-nil slice.
func NewSdsCollection(ms []models.SafetyDataSheet) []SdsResource {
	out := make([]SdsResource, len(ms))
	for i := range ms {
		out[i] = NewSdsResource(&ms[i])
	}
	return out
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return append([]string(nil), ss...)
}
