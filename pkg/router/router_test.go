package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sdscatalog/pkg/router"
)

func header(key, value string) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add(key, value)
			next.ServeHTTP(w, r)
		})
	}
}

func TestGroup_RoutesAndMiddlewareOrder(t *testing.T) {
	r := router.New()
	api := r.Group("/api/v1/", header("X-Order", "group"))
	api.Get("/sds/{id}", "sds.show", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(chi.URLParam(req, "id")))
	}, header("X-Order", "route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sds/42", nil))

	assert.Equal(t, "42", rec.Body.String())
	assert.Equal(t, []string{"group", "route"}, rec.Header().Values("X-Order"))
}

func TestRouter_URLAndRoutes(t *testing.T) {
	r := router.New()
	noop := func(http.ResponseWriter, *http.Request) {}

	api := r.Group("api").Group("v1")
	api.Post("sds/checkout", "sds.checkout", noop)
	api.Get("sds/{id}", "sds.show", noop)
	r.Get("/metrics", "metrics", noop)

	u, err := r.URL("sds.show", map[string]string{"id": "7"})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/sds/7", u)

	_, err = r.URL("sds.show", nil)
	assert.Error(t, err)
	_, err = r.URL("nope", nil)
	assert.Error(t, err)

	assert.Equal(t, []router.Route{
		{Name: "sds.checkout", Method: http.MethodPost, Path: "/api/v1/sds/checkout"},
		{Name: "sds.show", Method: http.MethodGet, Path: "/api/v1/sds/{id}"},
		{Name: "metrics", Method: http.MethodGet, Path: "/metrics"},
	}, r.Routes())
}

func TestRouter_DuplicateNamePanics(t *testing.T) {
	r := router.New()
	noop := func(http.ResponseWriter, *http.Request) {}
	r.Get("/a", "same", noop)
	assert.Panics(t, func() { r.Get("/b", "same", noop) })
}
