package extract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sdscatalog/pkg/extract"
)

func newServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/extract", r.URL.Path)

		f, hdr, err := r.FormFile("file")
		if assert.NoError(t, err) {
			defer f.Close()
			data, _ := io.ReadAll(f)
			assert.Equal(t, "%PDF-1.4 sheet", string(data))
			assert.Equal(t, "upload.pdf", hdr.Filename)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExtract_Success(t *testing.T) {
	srv := newServer(t, http.StatusOK, map[string]any{
		"product_name":   " Acetone ",
		"product_brand":  "sial",
		"product_number": "179124",
		"cas_number":     "67-64-1",
		"signal_word":    "Danger",
		"hazards":        []string{"GHS02", "GHS07"},
		"statements":     []string{"H225", "H319", "H336"},
		"data":           map[string]any{"section": 1},
	})

	ex := extract.NewWithClient(srv.URL, srv.Client())
	doc, err := ex.Extract(context.Background(), "upload.pdf", []byte("%PDF-1.4 sheet"))
	require.NoError(t, err)

	assert.Equal(t, "Acetone", doc.ProductName)
	assert.Equal(t, "sial", doc.ProductBrand)
	assert.Equal(t, "179124", doc.ProductNumber)
	assert.Equal(t, "67-64-1", doc.CASNumber)
	assert.Equal(t, "Danger", doc.SignalWord)
	assert.Equal(t, []string{"GHS02", "GHS07"}, doc.Pictograms)
	assert.Equal(t, []string{"H225", "H319", "H336"}, doc.Statements)
	assert.JSONEq(t, `{"section":1}`, string(doc.Data))
}

func TestExtract_DefaultsEmptyCollections(t *testing.T) {
	srv := newServer(t, http.StatusOK, map[string]any{
		"product_name":   "Water",
		"product_brand":  "sigald",
		"product_number": "W4502",
		"cas_number":     "7732-18-5",
	})

	doc, err := extract.NewWithClient(srv.URL, srv.Client()).
		Extract(context.Background(), "upload.pdf", []byte("%PDF-1.4 sheet"))
	require.NoError(t, err)
	assert.Empty(t, doc.Pictograms)
	assert.NotNil(t, doc.Pictograms)
	assert.NotNil(t, doc.Statements)
	assert.JSONEq(t, `{}`, string(doc.Data))
}

func TestExtract_Incomplete(t *testing.T) {
	srv := newServer(t, http.StatusOK, map[string]any{
		"product_name": "Acetone",
	})

	_, err := extract.NewWithClient(srv.URL, srv.Client()).
		Extract(context.Background(), "upload.pdf", []byte("%PDF-1.4 sheet"))
	require.ErrorIs(t, err, extract.ErrIncomplete)
	assert.Contains(t, err.Error(), "product_brand, product_number, cas_number")
}

func TestExtract_UpstreamError(t *testing.T) {
	srv := newServer(t, http.StatusInternalServerError, map[string]any{"detail": "parser crashed"})

	_, err := extract.NewWithClient(srv.URL, srv.Client()).
		Extract(context.Background(), "upload.pdf", []byte("%PDF-1.4 sheet"))
	assert.ErrorIs(t, err, extract.ErrExtractFailed)
}

func TestNew_Unconfigured(t *testing.T) {
	_, err := extract.New("", time.Second).Extract(context.Background(), "a.pdf", nil)
	assert.ErrorIs(t, err, extract.ErrNotConfigured)
}
