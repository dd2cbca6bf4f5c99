package http

import (
	"net/http"
	"time"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/logging"
	"github.com/autophileaozora/smk-kristen5-website-sub003/pkg/interfaces"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Registrar mounts a set of routes on a chi router.
type Registrar interface {
	Register(router chi.Router) error
}

// NewRouter builds the portal router with the shared middleware stack and
// every registrar mounted on it.
func NewRouter(logger interfaces.Logger, registrars ...Registrar) (chi.Router, error) {
	if logger == nil {
		logger = logging.NoOp()
	}
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	for _, registrar := range registrars {
		if registrar == nil {
			continue
		}
		if err := registrar.Register(router); err != nil {
			return nil, err
		}
	}
	return router, nil
}

func requestLogger(logger interfaces.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()
			next.ServeHTTP(ww, r)
			logging.WithFields(logger, map[string]any{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"duration":   time.Since(started).String(),
			}).Debug("http.request.completed")
		})
	}
}
