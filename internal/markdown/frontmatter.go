package markdown

import (
	"bytes"
	"fmt"
	"maps"
	"strings"

	"github.com/adrg/frontmatter"
)

// Draft is a Markdown file split into the fields a new content draft needs.
// Keys in the front matter that are not fields of their own end up in
// Metadata.
type Draft struct {
	Title    string
	Summary  string
	Type     string
	Category string
	Metadata map[string]any
	Body     string
}

type frontMatterEnvelope struct {
	Title    string         `yaml:"title"`
	Summary  string         `yaml:"summary"`
	Type     string         `yaml:"type"`
	Category string         `yaml:"category"`
	Metadata map[string]any `yaml:"metadata"`
	Custom   map[string]any `yaml:",inline"`
}

// ignoredKeys are lifecycle fields the server owns. A file cannot set them.
var ignoredKeys = []string{"status", "author", "author_id", "published_at", "rejection_reason"}

// ParseDraft extracts front matter and body from source.
func ParseDraft(source []byte) (Draft, error) {
	var meta frontMatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return Draft{}, fmt.Errorf("parse frontmatter: %w", err)
	}

	metadata := make(map[string]any, len(meta.Custom)+len(meta.Metadata))
	maps.Copy(metadata, meta.Custom)
	maps.Copy(metadata, meta.Metadata)
	for _, key := range ignoredKeys {
		delete(metadata, key)
	}
	if len(metadata) == 0 {
		metadata = nil
	}

	return Draft{
		Title:    strings.TrimSpace(meta.Title),
		Summary:  strings.TrimSpace(meta.Summary),
		Type:     strings.TrimSpace(meta.Type),
		Category: strings.TrimSpace(meta.Category),
		Metadata: metadata,
		Body:     strings.TrimSpace(string(body)),
	}, nil
}
