package content

import (
	"context"
	"time"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/domain"
	"github.com/google/uuid"
)

// Repository persists content items. Every write that depends on the current
// status is conditional: it applies only if the stored status still equals
// the expected one, and reports ErrStatusConflict otherwise. A missing row is
// reported as *NotFoundError.
type Repository interface {
	Create(ctx context.Context, item *Item) (*Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	UpdateFields(ctx context.Context, update FieldsUpdate) (*Item, error)
	CompareAndSetStatus(ctx context.Context, change StatusChange) (*Item, error)
	Delete(ctx context.Context, id uuid.UUID, expected domain.Status) error
	List(ctx context.Context, query Query) ([]*Item, int, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// CachedReader is implemented by repositories that can serve reads from a
// cache. Only the public read path uses it; lifecycle decisions always read
// through GetByID.
type CachedReader interface {
	GetCachedByID(ctx context.Context, id uuid.UUID) (*Item, error)
}

// FieldsUpdate replaces the descriptive fields of an item whose status is
// still ExpectedStatus.
type FieldsUpdate struct {
	ID             uuid.UUID
	ExpectedStatus domain.Status
	Title          string
	Slug           string
	Summary        string
	Body           string
	Type           string
	Category       string
	Metadata       map[string]any
	UpdatedAt      time.Time
}

// StatusChange moves an item from From to To in one atomic step. Nil
// pointer fields are left as stored.
type StatusChange struct {
	ID              uuid.UUID
	From            domain.Status
	To              domain.Status
	RejectionReason *string
	PublishedAt     *time.Time
	UnpublishedAt   *time.Time
	UpdatedAt       time.Time
}

func (u FieldsUpdate) apply(item *Item) {
	item.Title = u.Title
	item.Slug = u.Slug
	item.Summary = u.Summary
	item.Body = u.Body
	item.Type = u.Type
	item.Category = u.Category
	item.Metadata = u.Metadata
	item.UpdatedAt = u.UpdatedAt
}

func (c StatusChange) apply(item *Item) {
	item.Status = c.To
	if c.RejectionReason != nil {
		item.RejectionReason = *c.RejectionReason
	}
	if c.PublishedAt != nil {
		published := *c.PublishedAt
		item.PublishedAt = &published
	}
	if c.UnpublishedAt != nil {
		unpublished := *c.UnpublishedAt
		item.UnpublishedAt = &unpublished
	}
	item.UpdatedAt = c.UpdatedAt
}
