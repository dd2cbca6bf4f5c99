package cms

import (
	"net/http"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/bulk"
	contentcmd "github.com/autophileaozora/smk-kristen5-website-sub003/internal/commands/content"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/content"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/di"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/domain"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/notifications"
)

// ContentService exports the content lifecycle service contract.
type ContentService = content.Service

// Actor is the authenticated caller of every content operation.
type Actor = domain.Actor

// Role, Status and Event mirror the domain enums.
type (
	Role   = domain.Role
	Status = domain.Status
	Event  = domain.Event
)

const (
	RoleAdministrator = domain.RoleAdministrator
	RoleContributor   = domain.RoleContributor

	StatusDraft     = domain.StatusDraft
	StatusPending   = domain.StatusPending
	StatusPublished = domain.StatusPublished
	StatusRejected  = domain.StatusRejected
)

// Content types exported for consumers of the cms package.
type (
	Item          = content.Item
	PublishedItem = content.PublishedItem
	CreateRequest = content.CreateRequest
	UpdateRequest = content.UpdateRequest
	ListFilter    = content.ListFilter
	ListResult    = content.ListResult
	ErrorKind     = content.ErrorKind
	BulkReport    = bulk.Report
)

// KindOf classifies an error returned by ContentService.
func KindOf(err error) ErrorKind {
	return content.KindOf(err)
}

// Module represents the top level portal runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a portal module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Content returns the content lifecycle service.
func (m *Module) Content() ContentService {
	return m.container.ContentService()
}

// Commands returns the go-command handlers for the lifecycle operations.
func (m *Module) Commands() *contentcmd.HandlerSet {
	return m.container.Commands()
}

// Notifications returns the notification dispatcher, nil when disabled.
func (m *Module) Notifications() *notifications.Dispatcher {
	return m.container.Notifications()
}

// Handler builds the HTTP handler serving the admin and public APIs.
func (m *Module) Handler() (http.Handler, error) {
	return m.container.Router()
}

// Close drains pending notifications and releases owned resources.
func (m *Module) Close() error {
	if m == nil {
		return nil
	}
	return m.container.Close()
}
