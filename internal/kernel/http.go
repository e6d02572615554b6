// Package kernel builds the HTTP handler: the global middleware stack, the
// JSON fallbacks and the API routes.
package kernel

import (
	"net/http"

	"github.com/shashiranjanraj/sdscatalog/app/routes"
	"github.com/shashiranjanraj/sdscatalog/config"
	"github.com/shashiranjanraj/sdscatalog/pkg/metrics"
	"github.com/shashiranjanraj/sdscatalog/pkg/middleware"
	"github.com/shashiranjanraj/sdscatalog/pkg/reqid"
	"github.com/shashiranjanraj/sdscatalog/pkg/response"
	"github.com/shashiranjanraj/sdscatalog/pkg/router"
)

// NewRouter wires api into a router behind the global middleware stack.
func NewRouter(api routes.API) *router.Router {
	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics: outermost for accurate total latency
	//  2. Request ID: inject unique ID before anything logs
	//  3. Logger: logs request_id from context
	//  4. Recovery: panics are logged with the request logger
	//  5. CORS: permissive only in debug mode
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(corsOptions()))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	routes.RegisterAPI(r, api)
	return r
}

// Handler is NewRouter(api).Handler().
func Handler(api routes.API) http.Handler { return NewRouter(api).Handler() }

func corsOptions() middleware.CORSOptions {
	opts := middleware.DefaultCORSOptions()
	if !config.Debug() {
		opts.AllowedOrigins = nil
	}
	return opts
}
