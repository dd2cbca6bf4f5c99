package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/content"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/domain"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/markdown"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type rejectPayload struct {
	Reason string `json:"reason"`
}

type bulkDeletePayload struct {
	IDs []uuid.UUID `json:"ids"`
}

type countResponse struct {
	Count int `json:"count"`
}

type eventsResponse struct {
	ID     uuid.UUID      `json:"id"`
	Events []domain.Event `json:"events"`
}

type contentAction func(r *http.Request, actor domain.Actor, id uuid.UUID) (*content.Item, error)

func (api *AdminAPI) registerContentRoutes(r chi.Router) {
	r.Route("/content", func(r chi.Router) {
		r.Get("/", api.handleContentList)
		r.Post("/", api.handleContentCreate)
		r.Get("/pending/count", api.handlePendingCount)
		r.Post("/bulk-delete", api.handleBulkDelete)
		r.Post("/import", api.handleImport)

		r.Get("/{id}", api.handleContentGet)
		r.Patch("/{id}", api.handleContentUpdate)
		r.Delete("/{id}", api.handleContentDelete)
		r.Get("/{id}/events", api.handleAvailableEvents)

		r.Post("/{id}/submit", api.transition(func(r *http.Request, actor domain.Actor, id uuid.UUID) (*content.Item, error) {
			return api.content.Submit(r.Context(), actor, id)
		}))
		r.Post("/{id}/approve", api.transition(func(r *http.Request, actor domain.Actor, id uuid.UUID) (*content.Item, error) {
			return api.content.Approve(r.Context(), actor, id)
		}))
		r.Post("/{id}/unpublish", api.transition(func(r *http.Request, actor domain.Actor, id uuid.UUID) (*content.Item, error) {
			return api.content.Unpublish(r.Context(), actor, id)
		}))
		r.Post("/{id}/reject", api.transition(func(r *http.Request, actor domain.Actor, id uuid.UUID) (*content.Item, error) {
			var payload rejectPayload
			if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
				return nil, badPayloadError{err}
			}
			return api.content.Reject(r.Context(), actor, id, payload.Reason)
		}))
	})
}

type badPayloadError struct{ err error }

func (e badPayloadError) Error() string { return e.err.Error() }

// ready reports whether the API can serve content requests and resolves the
// acting identity.
func (api *AdminAPI) ready(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	if api.content == nil {
		writeJSON(w, r, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return domain.Actor{}, false
	}
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return domain.Actor{}, false
	}
	return actor, true
}

func (api *AdminAPI) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := parseUUID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func (api *AdminAPI) fail(w http.ResponseWriter, r *http.Request, operation string, err error) {
	var bad badPayloadError
	if errors.As(err, &bad) {
		badRequest(w, r, bad.Error())
		return
	}
	if content.KindOf(err) == content.KindStore {
		api.logger.Error("http.content.failed", "operation", operation, "path", r.URL.Path, "error", err)
	}
	writeError(w, r, err)
}

func (api *AdminAPI) handleContentList(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ready(w, r)
	if !ok {
		return
	}
	filter, page, size, err := listParams(r)
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if !actor.IsAdministrator() {
		filter.AuthorID = actor.ID
	}
	result, err := api.content.List(r.Context(), filter, page, size)
	if err != nil {
		api.fail(w, r, "list", err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (api *AdminAPI) handleContentCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ready(w, r)
	if !ok {
		return
	}
	var req content.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	created, err := api.content.CreateDraft(r.Context(), actor, req)
	if err != nil {
		api.fail(w, r, "create", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, created)
}

func (api *AdminAPI) handleContentGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ready(w, r)
	if !ok {
		return
	}
	id, ok := api.pathID(w, r)
	if !ok {
		return
	}
	item, err := api.content.Get(r.Context(), actor, id)
	if err != nil {
		api.fail(w, r, "get", err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (api *AdminAPI) handleContentUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ready(w, r)
	if !ok {
		return
	}
	id, ok := api.pathID(w, r)
	if !ok {
		return
	}
	var req content.UpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	updated, err := api.content.UpdateFields(r.Context(), actor, id, req)
	if err != nil {
		api.fail(w, r, "update", err)
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}

func (api *AdminAPI) handleContentDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ready(w, r)
	if !ok {
		return
	}
	id, ok := api.pathID(w, r)
	if !ok {
		return
	}
	if err := api.content.Delete(r.Context(), actor, id); err != nil {
		api.fail(w, r, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *AdminAPI) transition(action contentAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := api.ready(w, r)
		if !ok {
			return
		}
		id, ok := api.pathID(w, r)
		if !ok {
			return
		}
		item, err := action(r, actor, id)
		if err != nil {
			api.fail(w, r, "transition", err)
			return
		}
		writeJSON(w, r, http.StatusOK, item)
	}
}

func (api *AdminAPI) handleAvailableEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ready(w, r)
	if !ok {
		return
	}
	id, ok := api.pathID(w, r)
	if !ok {
		return
	}
	events, err := api.content.AvailableEvents(r.Context(), actor, id)
	if err != nil {
		api.fail(w, r, "events", err)
		return
	}
	if events == nil {
		events = []domain.Event{}
	}
	writeJSON(w, r, http.StatusOK, eventsResponse{ID: id, Events: events})
}

func (api *AdminAPI) handlePendingCount(w http.ResponseWriter, r *http.Request) {
	if _, ok := api.ready(w, r); !ok {
		return
	}
	count, err := api.content.PendingCount(r.Context())
	if err != nil {
		api.fail(w, r, "pending_count", err)
		return
	}
	writeJSON(w, r, http.StatusOK, countResponse{Count: count})
}

func (api *AdminAPI) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ready(w, r)
	if !ok {
		return
	}
	var payload bulkDeletePayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	report, err := api.content.BulkDelete(r.Context(), actor, payload.IDs)
	if err != nil {
		api.fail(w, r, "bulk_delete", err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

func (api *AdminAPI) handleImport(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ready(w, r)
	if !ok {
		return
	}
	source, err := io.ReadAll(http.MaxBytesReader(w, r.Body, api.importLimit))
	if err != nil {
		writeJSON(w, r, http.StatusRequestEntityTooLarge, errorResponse{Error: "payload_too_large", Message: err.Error()})
		return
	}
	draft, err := markdown.ParseDraft(source)
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	created, err := api.content.CreateDraft(r.Context(), actor, content.CreateRequest{
		Title:    draft.Title,
		Summary:  draft.Summary,
		Body:     draft.Body,
		Type:     draft.Type,
		Category: draft.Category,
		Metadata: draft.Metadata,
	})
	if err != nil {
		api.fail(w, r, "import", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, created)
}
