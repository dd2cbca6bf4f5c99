package content

import (
	"maps"
	"time"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/domain"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/permissions"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultType is assigned to drafts created without an explicit content type.
const DefaultType = "article"

// Item is a single piece of site content: an article, an announcement or an
// event listing. Status is only ever changed through the lifecycle machine.
type Item struct {
	bun.BaseModel `bun:"table:content_items,alias:ci"`

	ID              uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Status          domain.Status  `bun:"status,notnull" json:"status"`
	AuthorID        uuid.UUID      `bun:"author_id,notnull,type:uuid" json:"author_id"`
	Type            string         `bun:"type,notnull" json:"type"`
	Category        string         `bun:"category" json:"category,omitempty"`
	Title           string         `bun:"title,notnull" json:"title"`
	Slug            string         `bun:"slug,notnull" json:"slug"`
	Summary         string         `bun:"summary" json:"summary,omitempty"`
	Body            string         `bun:"body" json:"body,omitempty"`
	Metadata        map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	RejectionReason string         `bun:"rejection_reason" json:"rejection_reason,omitempty"`
	PublishedAt     *time.Time     `bun:"published_at,nullzero" json:"published_at,omitempty"`
	UnpublishedAt   *time.Time     `bun:"unpublished_at,nullzero" json:"unpublished_at,omitempty"`
	CreatedAt       time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Target projects the item onto the fields the permission policy inspects.
func (i *Item) Target() permissions.Target {
	return permissions.Target{AuthorID: i.AuthorID, Status: i.Status}
}

func (i *Item) clone() *Item {
	if i == nil {
		return nil
	}
	out := *i
	out.Metadata = maps.Clone(i.Metadata)
	if i.PublishedAt != nil {
		published := *i.PublishedAt
		out.PublishedAt = &published
	}
	if i.UnpublishedAt != nil {
		unpublished := *i.UnpublishedAt
		out.UnpublishedAt = &unpublished
	}
	return &out
}

// CreateRequest carries the descriptive fields of a new draft. Author and
// status are never taken from the request.
type CreateRequest struct {
	Title    string         `json:"title"`
	Summary  string         `json:"summary,omitempty"`
	Body     string         `json:"body,omitempty"`
	Type     string         `json:"type,omitempty"`
	Category string         `json:"category,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// UpdateRequest is a partial edit. Nil fields are left untouched; status,
// author and timestamps cannot be changed this way.
type UpdateRequest struct {
	Title    *string         `json:"title,omitempty"`
	Summary  *string         `json:"summary,omitempty"`
	Body     *string         `json:"body,omitempty"`
	Type     *string         `json:"type,omitempty"`
	Category *string         `json:"category,omitempty"`
	Metadata *map[string]any `json:"metadata,omitempty"`
}

// Empty reports whether the request changes nothing.
func (r UpdateRequest) Empty() bool {
	return r.Title == nil && r.Summary == nil && r.Body == nil &&
		r.Type == nil && r.Category == nil && r.Metadata == nil
}

// ListResult is one page of a listing.
type ListResult struct {
	Items      []*Item `json:"items"`
	TotalCount int     `json:"total_count"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
}

// PublishedItem is the public projection of a published item with its body
// rendered to HTML.
type PublishedItem struct {
	ID          uuid.UUID      `json:"id"`
	Type        string         `json:"type"`
	Category    string         `json:"category,omitempty"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Summary     string         `json:"summary,omitempty"`
	BodyHTML    string         `json:"body_html"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
}
