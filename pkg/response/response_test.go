package response_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sdscatalog/pkg/response"
)

func TestValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	response.ValidationError(rec, map[string]string{"items": "The items field is required."})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Validation failed", body["message"])
	assert.Contains(t, body["errors"], "items")
}

func TestUnavailableSetsRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Unavailable(rec, 2500*time.Millisecond, "busy")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("Retry-After"))

	rec = httptest.NewRecorder()
	response.Unavailable(rec, 0, "busy")
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestPDFRewindsBeforeWriting(t *testing.T) {
	doc := bytes.NewReader([]byte("%PDF-1.4 body"))
	_, _ = doc.Seek(5, 0)

	rec := httptest.NewRecorder()
	require.NoError(t, response.PDF(rec, "packet.pdf", doc, doc.Size()))

	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="packet.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "13", rec.Header().Get("Content-Length"))
	assert.Equal(t, "%PDF-1.4 body", rec.Body.String())
}
