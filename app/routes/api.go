package routes

import (
	"github.com/shashiranjanraj/sdscatalog/app/controllers"
	"github.com/shashiranjanraj/sdscatalog/pkg/metrics"
	"github.com/shashiranjanraj/sdscatalog/pkg/router"
)

// API holds the handlers the routes dispatch to. Throttle wraps the routes
// that run the extractor or the LaTeX engine; nil leaves them unthrottled.
type API struct {
	Sds      *controllers.SdsController
	Checkout *controllers.CheckoutController
	Throttle router.Middleware
}

func RegisterAPI(r *router.Router, api API) {
	var throttled []router.Middleware
	if api.Throttle != nil {
		throttled = append(throttled, api.Throttle)
	}

	r.Get("/metrics", "metrics", metrics.Handler())

	v1 := r.Group("/api/v1")
	v1.Get("/healthcheck", "healthcheck", controllers.Healthcheck)

	sds := v1.Group("/sds")
	sds.Post("", "sds.upload", api.Sds.Upload, throttled...)
	sds.Get("/batch", "sds.batch", api.Sds.Batch)
	sds.Get("/search", "sds.search", api.Sds.Search)
	sds.Post("/checkout", "sds.checkout", api.Checkout.Checkout, throttled...)
	sds.Get("/{id}", "sds.show", api.Sds.Show)
}
