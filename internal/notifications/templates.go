package notifications

import (
	"fmt"
	"strings"
	"sync"
	"text/template"
)

// Message is a rendered subject/body pair.
type Message struct {
	Subject string
	Body    string
}

type compiledTemplate struct {
	subject *template.Template
	body    *template.Template
}

// TemplateStore compiles and renders the subject and body templates per kind.
type TemplateStore struct {
	mu        sync.RWMutex
	templates map[Kind]compiledTemplate
}

// TemplateData is what templates can reference.
type TemplateData struct {
	Event     Event
	Content   ContentSnapshot
	Recipient Recipient
	SiteName  string
}

// NewTemplateStore seeds the store with default templates for every kind.
func NewTemplateStore() *TemplateStore {
	store := &TemplateStore{templates: make(map[Kind]compiledTemplate)}
	_ = store.Register(KindSubmittedForApproval,
		`[{{.SiteName}}] Review requested: {{.Content.Title}}`,
		"Hello {{with .Recipient.Name}}{{.}}{{else}}administrator{{end}},\n\n"+
			"The {{with .Content.Type}}{{.}}{{else}}content{{end}} \"{{.Content.Title}}\" was submitted for approval and is waiting in the review queue.\n")
	_ = store.Register(KindApproved,
		`[{{.SiteName}}] Published: {{.Content.Title}}`,
		"Hello {{with .Recipient.Name}}{{.}}{{else}}there{{end}},\n\n"+
			"Your {{with .Content.Type}}{{.}}{{else}}content{{end}} \"{{.Content.Title}}\" was approved and is now live on the site.\n")
	_ = store.Register(KindRejected,
		`[{{.SiteName}}] Changes requested: {{.Content.Title}}`,
		"Hello {{with .Recipient.Name}}{{.}}{{else}}there{{end}},\n\n"+
			"Your {{with .Content.Type}}{{.}}{{else}}content{{end}} \"{{.Content.Title}}\" was not approved.\n\n"+
			"Reason: {{.Content.RejectionReason}}\n\nYou can edit it and submit it again.\n")
	return store
}

// Register adds or replaces the templates for kind.
func (s *TemplateStore) Register(kind Kind, subject, body string) error {
	subj, err := template.New(string(kind) + ".subject").Parse(subject)
	if err != nil {
		return fmt.Errorf("parse subject template %s: %w", kind, err)
	}
	tmpl, err := template.New(string(kind) + ".body").Parse(body)
	if err != nil {
		return fmt.Errorf("parse body template %s: %w", kind, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[kind] = compiledTemplate{subject: subj, body: tmpl}
	return nil
}

// Render executes the templates registered for kind.
func (s *TemplateStore) Render(kind Kind, data TemplateData) (Message, error) {
	s.mu.RLock()
	tmpl, ok := s.templates[kind]
	s.mu.RUnlock()
	if !ok {
		return Message{}, fmt.Errorf("template %s not found", kind)
	}
	var subject, body strings.Builder
	if err := tmpl.subject.Execute(&subject, data); err != nil {
		return Message{}, fmt.Errorf("render subject %s: %w", kind, err)
	}
	if err := tmpl.body.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render body %s: %w", kind, err)
	}
	return Message{Subject: strings.TrimSpace(subject.String()), Body: body.String()}, nil
}
