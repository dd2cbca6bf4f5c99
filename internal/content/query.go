package content

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SortField names a column listings can be ordered by.
type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortUpdatedAt SortField = "updated_at"
	SortTitle     SortField = "title"
)

// ParseSortField accepts the column names above; empty means updated_at.
func ParseSortField(value string) (SortField, error) {
	switch SortField(strings.ToLower(strings.TrimSpace(value))) {
	case "", SortUpdatedAt:
		return SortUpdatedAt, nil
	case SortCreatedAt:
		return SortCreatedAt, nil
	case SortTitle:
		return SortTitle, nil
	default:
		return "", fmt.Errorf("unknown sort field %q", value)
	}
}

// ListFilter is a conjunction of optional predicates. Zero values match
// everything.
type ListFilter struct {
	Search        string          `json:"search,omitempty"`
	Statuses      []domain.Status `json:"statuses,omitempty"`
	AuthorID      uuid.UUID       `json:"author_id,omitempty"`
	Type          string          `json:"type,omitempty"`
	Category      string          `json:"category,omitempty"`
	CreatedAfter  *time.Time      `json:"created_after,omitempty"`
	CreatedBefore *time.Time      `json:"created_before,omitempty"`
	SortBy        SortField       `json:"sort_by,omitempty"`
	Ascending     bool            `json:"ascending,omitempty"`
}

// Query is a filter plus the slice of results to return. Limit <= 0 returns
// every match.
type Query struct {
	Filter ListFilter
	Limit  int
	Offset int
}

// NormalizePage clamps page and pageSize to the supported range and returns
// the matching limit and offset.
func NormalizePage(page, pageSize int) (int, int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize, pageSize, (page - 1) * pageSize
}

// Matches evaluates the filter against item in memory.
func (f ListFilter) Matches(item *Item) bool {
	if item == nil {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, item.Status) {
		return false
	}
	if f.AuthorID != uuid.Nil && item.AuthorID != f.AuthorID {
		return false
	}
	if f.Type != "" && !strings.EqualFold(item.Type, f.Type) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(item.Category, f.Category) {
		return false
	}
	if f.CreatedAfter != nil && item.CreatedAt.Before(*f.CreatedAfter) {
		return false
	}
	if f.CreatedBefore != nil && !item.CreatedAt.Before(*f.CreatedBefore) {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		haystack := strings.ToLower(item.Title + "\n" + item.Summary + "\n" + item.Body)
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}

// Sort orders items in place using the filter's sort settings. Ties break on
// id so pagination is stable.
func (f ListFilter) Sort(items []*Item) {
	field := f.SortBy
	if field == "" {
		field = SortUpdatedAt
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		var cmp int
		switch field {
		case SortTitle:
			cmp = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case SortCreatedAt:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		default:
			cmp = a.UpdatedAt.Compare(b.UpdatedAt)
		}
		if cmp == 0 {
			return strings.Compare(a.ID.String(), b.ID.String()) < 0
		}
		if f.Ascending {
			return cmp < 0
		}
		return cmp > 0
	})
}

// Apply translates the filter into WHERE clauses on a bun select.
func (f ListFilter) Apply(q *bun.SelectQuery) *bun.SelectQuery {
	if len(f.Statuses) > 0 {
		q = q.Where("?TableAlias.status IN (?)", bun.In(f.Statuses))
	}
	if f.AuthorID != uuid.Nil {
		q = q.Where("?TableAlias.author_id = ?", f.AuthorID)
	}
	if f.Type != "" {
		q = q.Where("LOWER(?TableAlias.type) = ?", strings.ToLower(f.Type))
	}
	if f.Category != "" {
		q = q.Where("LOWER(?TableAlias.category) = ?", strings.ToLower(f.Category))
	}
	if f.CreatedAfter != nil {
		q = q.Where("?TableAlias.created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		q = q.Where("?TableAlias.created_at < ?", *f.CreatedBefore)
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		pattern := "%" + term + "%"
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.
				Where("LOWER(?TableAlias.title) LIKE ?", pattern).
				WhereOr("LOWER(?TableAlias.summary) LIKE ?", pattern).
				WhereOr("LOWER(?TableAlias.body) LIKE ?", pattern)
		})
	}
	return q
}

func (f ListFilter) orderExpr() []string {
	column := "?TableAlias.updated_at"
	switch f.SortBy {
	case SortTitle:
		column = "LOWER(?TableAlias.title)"
	case SortCreatedAt:
		column = "?TableAlias.created_at"
	}
	direction := " DESC"
	if f.Ascending {
		direction = " ASC"
	}
	return []string{column + direction, "?TableAlias.id ASC"}
}

func containsStatus(statuses []domain.Status, status domain.Status) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}
