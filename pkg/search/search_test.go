package search_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sdscatalog/pkg/search"
)

func TestMeili_Index(t *testing.T) {
	var got []search.Document
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/indexes/msds/documents", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"taskUid":1}`))
	}))
	defer srv.Close()

	idx := search.NewMeiliWithClient(srv.URL, "secret", "msds", srv.Client())
	err := idx.Index(context.Background(),
		search.Document{ID: 1, ProductName: "Acetone", ProductBrand: "sial", ProductNumber: "179124", CASNumber: "67-64-1", Hazards: []string{"GHS02"}},
		search.Document{ID: 2, ProductName: "Water"},
	)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint(1), got[0].ID)
	assert.Equal(t, []string{"GHS02"}, got[0].Hazards)
	assert.Equal(t, []string{}, got[1].Hazards)
}

func TestMeili_IndexError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"index not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	err := search.NewMeiliWithClient(srv.URL, "", "msds", srv.Client()).
		Index(context.Background(), search.Document{ID: 1})
	require.ErrorIs(t, err, search.ErrIndexFailed)
	assert.Contains(t, err.Error(), "index not found")
}

func TestMeili_EmptyBatchSkipsRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	require.NoError(t, search.NewMeiliWithClient(srv.URL, "", "msds", srv.Client()).Index(context.Background()))
	assert.False(t, called)
}

func TestNewMeili_EmptyURLIsNoop(t *testing.T) {
	idx := search.NewMeili("", "", "msds", time.Second)
	assert.IsType(t, search.Noop{}, idx)
	assert.NoError(t, idx.Index(context.Background(), search.Document{ID: 1}))
}
