package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/auth"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/content"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/logging"
	"github.com/autophileaozora/smk-kristen5-website-sub003/pkg/interfaces"
	"github.com/go-chi/chi/v5"
)

// DefaultImportLimit bounds the size of an uploaded Markdown document.
const DefaultImportLimit = 1 << 20

// AdminAPI registers the authenticated content management endpoints.
type AdminAPI struct {
	basePath    string
	content     content.Service
	resolver    auth.Resolver
	logger      interfaces.Logger
	importLimit int64
}

// AdminOption mutates the AdminAPI configuration.
type AdminOption func(*AdminAPI)

// NewAdminAPI constructs an AdminAPI instance.
func NewAdminAPI(opts ...AdminOption) *AdminAPI {
	api := &AdminAPI{
		basePath:    "/admin/api",
		logger:      logging.NoOp(),
		importLimit: DefaultImportLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/admin/api").
func WithBasePath(path string) AdminOption {
	return func(api *AdminAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithContentService wires the content service.
func WithContentService(service content.Service) AdminOption {
	return func(api *AdminAPI) {
		api.content = service
	}
}

// WithResolver wires the actor resolver applied to every admin request.
func WithResolver(resolver auth.Resolver) AdminOption {
	return func(api *AdminAPI) {
		api.resolver = resolver
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(logger interfaces.Logger) AdminOption {
	return func(api *AdminAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// WithImportLimit caps the accepted Markdown upload size in bytes.
func WithImportLimit(limit int64) AdminOption {
	return func(api *AdminAPI) {
		if limit > 0 {
			api.importLimit = limit
		}
	}
}

// Register attaches the admin endpoints to the provided router.
func (api *AdminAPI) Register(router chi.Router) error {
	if router == nil {
		return fmt.Errorf("http: router is required")
	}
	if api == nil {
		return fmt.Errorf("http: admin api is nil")
	}

	router.Route(joinPath(api.basePath, ""), func(r chi.Router) {
		r.Use(auth.Middleware(api.resolver, api.writeAuthError))
		api.registerContentRoutes(r)
	})
	return nil
}

func (api *AdminAPI) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	api.logger.Debug("http.auth.rejected", "path", r.URL.Path, "error", err)
	writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: err.Error()})
}
