package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/content"
	"github.com/go-chi/chi/v5"
)

// PublicAPI serves published content to anonymous visitors.
type PublicAPI struct {
	basePath string
	content  content.Service
}

// NewPublicAPI constructs the public read API mounted at basePath ("/api" when empty).
func NewPublicAPI(service content.Service, basePath string) *PublicAPI {
	if strings.TrimSpace(basePath) == "" {
		basePath = "/api"
	}
	return &PublicAPI{basePath: basePath, content: service}
}

// Register attaches the public endpoints to the provided router.
func (api *PublicAPI) Register(router chi.Router) error {
	if router == nil {
		return fmt.Errorf("http: router is required")
	}
	if api == nil || api.content == nil {
		return fmt.Errorf("http: public api requires a content service")
	}
	router.Route(joinPath(api.basePath, "content"), func(r chi.Router) {
		r.Get("/", api.handleList)
		r.Get("/{id}", api.handleGet)
	})
	return nil
}

func (api *PublicAPI) handleList(w http.ResponseWriter, r *http.Request) {
	filter, page, size, err := listParams(r)
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	result, err := api.content.ListPublished(r.Context(), filter, page, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (api *PublicAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid id")
		return
	}
	item, err := api.content.GetPublished(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}
