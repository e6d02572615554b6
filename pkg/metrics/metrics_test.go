package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sdscatalog/pkg/metrics"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Get("/api/v1/sds/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues("GET", "/api/v1/sds/{id}", "418"))

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sds/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	after := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues("GET", "/api/v1/sds/{id}", "418"))
	assert.Equal(t, 3.0, after-before)
}

func TestHandler_ExposesCheckoutMetrics(t *testing.T) {
	metrics.CheckoutTotal.WithLabelValues("ok").Inc()
	metrics.ObserveStage("render", time.Now())
	metrics.RecordCache(true)

	rec := httptest.NewRecorder()
	metrics.Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{
		"sds_checkout_total",
		"sds_checkout_stage_duration_seconds",
		"sds_cache_hits_total",
		"sds_render_pool_rejections_total",
	} {
		assert.True(t, strings.Contains(body, name), "missing %s", name)
	}
}
