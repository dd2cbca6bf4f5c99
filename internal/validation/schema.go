package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
	ErrUnknownType      = errors.New("unknown content type")
)

// ValidationIssue captures a single validation failure.
type ValidationIssue struct {
	Location string
	Message  string
}

// PayloadValidationError surfaces validation issues with schema-aware context.
type PayloadValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issueLocation(issue.Location)
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) && payloadErr != nil {
		return payloadErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectValidationIssues(validationErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

// Registry holds one compiled metadata schema per content type.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*jsonschema.Schema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*jsonschema.Schema)}
}

// DefaultRegistry knows the three content types the portal ships with.
// Articles accept any metadata, announcements may carry an expiry and events
// must say when and where they happen.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	for name, schema := range defaultSchemas() {
		if err := registry.Register(name, schema); err != nil {
			panic(fmt.Sprintf("validation: default schema %q: %v", name, err))
		}
	}
	return registry
}

// Register compiles schema and stores it under typeName, replacing any
// previous schema for that type.
func (r *Registry) Register(typeName string, schema map[string]any) error {
	name := normalizeType(typeName)
	if name == "" {
		return fmt.Errorf("%w: type name required", ErrSchemaInvalid)
	}
	if schema == nil {
		schema = map[string]any{"type": "object"}
	}
	compiled, err := compileSchema(schema)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	r.mu.Lock()
	r.schemas[name] = compiled
	r.mu.Unlock()
	return nil
}

// Has reports whether typeName is registered.
func (r *Registry) Has(typeName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.schemas[normalizeType(typeName)]
	return ok
}

// Types lists the registered type names in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks payload against the schema registered for typeName.
func (r *Registry) Validate(typeName string, payload map[string]any) error {
	r.mu.RLock()
	compiled, ok := r.schemas[normalizeType(typeName)]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}

	// Round-trip through JSON so Go-typed values (ints, time.Time) are seen
	// the same way a decoded request body would be.
	instance, err := toJSONValue(payload)
	if err != nil {
		return &PayloadValidationError{Cause: err, Issues: []ValidationIssue{{Message: err.Error()}}}
	}
	if err := compiled.Validate(instance); err != nil {
		return &PayloadValidationError{Issues: Issues(err), Cause: err}
	}
	return nil
}

func defaultSchemas() map[string]map[string]any {
	dateTime := map[string]any{"type": "string", "format": "date-time"}
	return map[string]map[string]any{
		"article": {
			"type": "object",
		},
		"announcement": {
			"type": "object",
			"properties": map[string]any{
				"valid_until": dateTime,
				"pinned":      map[string]any{"type": "boolean"},
			},
		},
		"event": {
			"type":     "object",
			"required": []any{"starts_at", "location"},
			"properties": map[string]any{
				"starts_at": dateTime,
				"ends_at":   dateTime,
				"location":  map[string]any{"type": "string", "minLength": 1},
			},
		},
	}
}

func toJSONValue(payload map[string]any) (any, error) {
	if payload == nil {
		return map[string]any{}, nil
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}

func issueLocation(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return "#"
	}
	if !strings.HasPrefix(location, "#") {
		return "#" + location
	}
	return location
}

func normalizeType(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
