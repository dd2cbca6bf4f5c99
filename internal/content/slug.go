package content

import (
	"strings"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

const maxSlugLength = 96

// deriveSlug turns a title into a URL slug. Titles that normalise to nothing
// (only punctuation, say) fall back to an id based slug.
func deriveSlug(title string, id uuid.UUID) string {
	normalized, err := slug.Normalize(title)
	if err == nil && len(normalized) > maxSlugLength {
		normalized = strings.TrimRight(normalized[:maxSlugLength], "-")
	}
	if err != nil || normalized == "" || !slug.IsValid(normalized) {
		return "content-" + strings.SplitN(id.String(), "-", 2)[0]
	}
	return normalized
}
