package contentcmd

import (
	"errors"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/commands"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/content"
	"github.com/autophileaozora/smk-kristen5-website-sub003/pkg/interfaces"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// Subscription is returned for every handler attached to the global dispatcher.
type Subscription interface {
	Unsubscribe()
}

// HandlerSet groups the content command handlers.
type HandlerSet struct {
	Submit     *commands.Handler[SubmitContentCommand]
	Approve    *commands.Handler[ApproveContentCommand]
	Reject     *commands.Handler[RejectContentCommand]
	Unpublish  *commands.Handler[UnpublishContentCommand]
	Delete     *commands.Handler[DeleteContentCommand]
	BulkDelete *commands.Handler[BulkDeleteContentCommand]
	Import     *commands.Handler[ImportMarkdownCommand]
}

// Handlers lists every handler in registration order.
func (s *HandlerSet) Handlers() []any {
	if s == nil {
		return nil
	}
	return []any{s.Submit, s.Approve, s.Reject, s.Unpublish, s.Delete, s.BulkDelete, s.Import}
}

// RegisterContentCommands builds the lifecycle command handlers and registers them with reg
// when one is supplied.
func RegisterContentCommands(reg CommandRegistry, service content.Service, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("content command registration: service is nil")
	}

	logger := commands.CommandLogger(provider, "content")
	set := &HandlerSet{
		Submit:     NewSubmitHandler(service, logger),
		Approve:    NewApproveHandler(service, logger),
		Reject:     NewRejectHandler(service, logger),
		Unpublish:  NewUnpublishHandler(service, logger),
		Delete:     NewDeleteHandler(service, logger),
		BulkDelete: NewBulkDeleteHandler(service, logger),
		Import:     NewImportMarkdownHandler(service, logger),
	}

	if reg != nil {
		for _, handler := range set.Handlers() {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// Subscribe attaches every handler to the go-command dispatcher. Lifecycle
// commands are not idempotent so the dispatcher never retries them.
func Subscribe(set *HandlerSet) []Subscription {
	if set == nil {
		return nil
	}
	return []Subscription{
		dispatcher.SubscribeCommand(set.Submit, runner.WithMaxRetries(0)),
		dispatcher.SubscribeCommand(set.Approve, runner.WithMaxRetries(0)),
		dispatcher.SubscribeCommand(set.Reject, runner.WithMaxRetries(0)),
		dispatcher.SubscribeCommand(set.Unpublish, runner.WithMaxRetries(0)),
		dispatcher.SubscribeCommand(set.Delete, runner.WithMaxRetries(0)),
		dispatcher.SubscribeCommand(set.BulkDelete, runner.WithMaxRetries(0)),
		dispatcher.SubscribeCommand(set.Import, runner.WithMaxRetries(0)),
	}
}
