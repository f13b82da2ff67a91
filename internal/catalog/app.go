package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"MovieCatalog/pkg/kit"
)

// HTTPDeps carries the cross-cutting pieces the handler stack is built from.
// A nil Registry disables HTTP metrics entirely.
type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	TrustedOrigins []string
}

// NewHandler wraps the catalog routes with request ids, recovery, access
// logging, CORS, compression and, when configured, Prometheus metrics.
func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	useCommon(r, deps)
	useMetrics(r, deps)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"path": r.URL.Path})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		kit.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed", map[string]any{"method": r.Method})
	})

	r.Mount("/", s.Routes())
	return r
}

func useCommon(r *chi.Mux, deps HTTPDeps) {
	r.Use(kit.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
	r.Use(chimw.CleanPath)
	r.Use(kit.CORS(deps.TrustedOrigins))
	r.Use(chimw.Compress(5, "text/html", "application/json"))
}

func useMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	m := kit.NewMetrics(deps.Registry)
	r.Use(m.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}
	r.With(kit.MetricsAuth(deps.MetricsToken)).Handle("/metrics", kit.Handler(deps.Registry))
}
