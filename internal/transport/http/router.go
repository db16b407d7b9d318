package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	agegrouphandler "enrolld/internal/agegroup/handler"
	enrollmenthandler "enrolld/internal/enrollment/handler"
	"enrolld/internal/platform/middleware"
	"enrolld/pkg/platform/httputil"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker func(ctx context.Context) error

// Deps carries everything the router needs. Health checks are optional; nil
// entries are skipped.
type Deps struct {
	AgeGroups   *agegrouphandler.Handler
	Enrollments *enrollmenthandler.Handler
	Logger      *slog.Logger

	BasicAuthUser string
	BasicAuthPass string

	HealthChecks map[string]HealthChecker
}

// NewRouter mounts the public API under /api/v1 behind basic auth, with
// /healthz and /metrics left open for probes and scrapers.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", handleHealth(deps.HealthChecks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.BasicAuth(deps.BasicAuthUser, deps.BasicAuthPass))
		deps.AgeGroups.Register(api)
		deps.Enrollments.Register(api)
	})

	return r
}

func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := make(map[string]string, len(checks))
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				deps[name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "up"
		}

		body := map[string]any{"status": "ok"}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		if len(deps) > 0 {
			body["dependencies"] = deps
		}
		httputil.WriteJSON(w, status, body)
	}
}
