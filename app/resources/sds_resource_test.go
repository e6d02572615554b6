package resources_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/shashiranjanraj/sdscatalog/app/models"
	"github.com/shashiranjanraj/sdscatalog/app/resources"
)

func TestNewSdsResource_JSONShape(t *testing.T) {
	ts := time.Date(2023, 4, 4, 7, 45, 17, 0, time.UTC)
	m := &models.SafetyDataSheet{
		ID:             3,
		ProductName:    "Acetone",
		ProductNumber:  "179124",
		ProductBrand:   "sial",
		CASNumber:      "67-64-1",
		SignalWord:     "Danger",
		Hazards:        datatypes.JSONSlice[string]{"GHS02"},
		PDFDownloadURL: "https://blobs/Sigma_Aldrich_sial_179124.pdf",
		Data:           datatypes.JSON(`{"sections":[]}`),
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}

	raw, err := json.Marshal(resources.NewSdsResource(m))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 3,
		"product_name": "Acetone",
		"product_number": "179124",
		"product_brand": "sial",
		"cas_number": "67-64-1",
		"signal_word": "Danger",
		"hazards": ["GHS02"],
		"statements": [],
		"pdf_download_url": "https://blobs/Sigma_Aldrich_sial_179124.pdf",
		"data": {"sections": []},
		"created_at": "2023-04-04T07:45:17Z",
		"updated_at": "2023-04-04T07:45:17Z"
	}`, string(raw))
}

func TestNewSdsResource_AbsentSignalWordIsNull(t *testing.T) {
	r := resources.NewSdsResource(&models.SafetyDataSheet{ID: 1})
	raw, err := json.Marshal(r)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Nil(t, out["signal_word"])
	assert.Equal(t, map[string]any{}, out["data"])
}

func TestNewSdsCollection_Empty(t *testing.T) {
	raw, err := json.Marshal(resources.NewSdsCollection(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}
