package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/auth"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/content"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/domain"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/validation"
	"github.com/go-chi/render"
	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type errorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message,omitempty"`
	Fields  ozzo.Errors                  `json:"fields,omitempty"`
	Issues  []validation.ValidationIssue `json:"issues,omitempty"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if w == nil {
		return
	}
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	render.Status(r, status)
	render.JSON(w, r, payload)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := mapError(err)
	writeJSON(w, r, status, payload)
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}
	if errors.Is(err, auth.ErrUnauthenticated) || errors.Is(err, auth.ErrInvalidClaims) {
		return http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: err.Error()}
	}

	switch content.KindOf(err) {
	case content.KindNotFound:
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()}
	case content.KindPermissionDenied:
		return http.StatusForbidden, errorResponse{Error: "forbidden", Message: err.Error()}
	case content.KindInvalidTransition:
		return http.StatusConflict, errorResponse{Error: "invalid_transition", Message: err.Error()}
	case content.KindValidation:
		resp := errorResponse{Error: "validation_failed", Message: err.Error(), Issues: validation.Issues(err)}
		var verr *content.ValidationError
		if errors.As(err, &verr) {
			resp.Fields = verr.Errors
		}
		return http.StatusUnprocessableEntity, resp
	default:
		// Store failures carry driver detail that stays in the logs.
		return http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "the operation could not be completed"}
	}
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	return uuid.Parse(trimmed)
}

func actorFrom(r *http.Request) (domain.Actor, error) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		return domain.Actor{}, auth.ErrUnauthenticated
	}
	return actor, nil
}

func parseIntQuery(values url.Values, key string) (int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return parsed, nil
}

func parseTimeQuery(values url.Values, key string) (*time.Time, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errors.New(key + " must be an RFC 3339 timestamp")
	}
	return &parsed, nil
}

func parseBoolQuery(value string, defaultValue bool) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// listParams reads the shared list query string: search, status (repeated or
// comma separated), author_id, type, category, created_after, created_before,
// sort, asc, page and page_size.
func listParams(r *http.Request) (content.ListFilter, int, int, error) {
	values := r.URL.Query()
	filter := content.ListFilter{
		Search:    values.Get("search"),
		Type:      strings.TrimSpace(values.Get("type")),
		Category:  strings.TrimSpace(values.Get("category")),
		Ascending: parseBoolQuery(values.Get("asc"), false),
	}

	for _, raw := range values["status"] {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			status, ok := domain.ParseStatus(part)
			if !ok {
				return filter, 0, 0, errors.New("unknown status " + strconv.Quote(part))
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	if raw := strings.TrimSpace(values.Get("author_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, 0, 0, errors.New("author_id must be a uuid")
		}
		filter.AuthorID = id
	}

	var err error
	if filter.SortBy, err = content.ParseSortField(values.Get("sort")); err != nil {
		return filter, 0, 0, err
	}
	if filter.CreatedAfter, err = parseTimeQuery(values, "created_after"); err != nil {
		return filter, 0, 0, err
	}
	if filter.CreatedBefore, err = parseTimeQuery(values, "created_before"); err != nil {
		return filter, 0, 0, err
	}

	page, err := parseIntQuery(values, "page")
	if err != nil {
		return filter, 0, 0, err
	}
	size, err := parseIntQuery(values, "page_size")
	if err != nil {
		return filter, 0, 0, err
	}
	return filter, page, size, nil
}
