package app

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/clouddrive/config"
	"github.com/shashiranjanraj/clouddrive/pkg/metrics"
	"github.com/shashiranjanraj/clouddrive/pkg/middleware"
	"github.com/shashiranjanraj/clouddrive/pkg/reqid"
	"github.com/shashiranjanraj/clouddrive/pkg/response"
	"github.com/shashiranjanraj/clouddrive/pkg/router"
)

// buildHandler sets up global middleware and ambient endpoints, then runs
// the registered route callbacks.
func buildHandler(a *Application) *router.Router {
	r := router.New()

	// Outermost first: metrics sees total latency, Recovery catches panics
	// from everything below, the request id exists before anything logs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(config.CORSOrigins()...)))
	r.Use(middleware.RateLimit(config.RateLimit(), time.Minute))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) { response.MethodNotAllowed(w) })

	r.HandleFunc("/metrics", metrics.Handler())
	r.Get("/healthz", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	for _, fn := range a.routesFns {
		fn(r)
	}

	return r
}
