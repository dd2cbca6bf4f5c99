package contentcmd

import (
	"context"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/commands"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/content"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/markdown"
	"github.com/autophileaozora/smk-kristen5-website-sub003/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	codeNotFound          = "CONTENT_NOT_FOUND"
	codePermissionDenied  = "CONTENT_PERMISSION_DENIED"
	codeInvalidTransition = "CONTENT_INVALID_TRANSITION"
	codeValidation        = "CONTENT_VALIDATION_FAILED"
	codeStore             = "CONTENT_STORE_FAILED"
)

// mapContentError tags service errors with a go-errors category and a text
// code derived from the content error kind.
func mapContentError(err error) error {
	switch content.KindOf(err) {
	case content.KindValidation:
		return commands.ValidationFailure(err, codeValidation)
	case content.KindNotFound:
		return commands.CommandFailure(err, codeNotFound)
	case content.KindPermissionDenied:
		return commands.CommandFailure(err, codePermissionDenied)
	case content.KindInvalidTransition:
		return commands.CommandFailure(err, codeInvalidTransition)
	default:
		return commands.CommandFailure(err, codeStore)
	}
}

func newHandler[T command.Message](exec command.CommandFunc[T], logger interfaces.Logger, operation string, opts []commands.HandlerOption[T]) *commands.Handler[T] {
	handlerOpts := []commands.HandlerOption[T]{
		commands.WithLogger[T](logger),
		commands.WithOperation[T](operation),
		commands.WithErrorMapper[T](mapContentError),
	}
	return commands.NewHandler(exec, append(handlerOpts, opts...)...)
}

// NewSubmitHandler builds the submit command handler.
func NewSubmitHandler(service content.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SubmitContentCommand]) *commands.Handler[SubmitContentCommand] {
	return newHandler(func(ctx context.Context, msg SubmitContentCommand) error {
		_, err := service.Submit(ctx, msg.Actor(), msg.ContentID)
		return err
	}, logger, "content.submit", opts)
}

// NewApproveHandler builds the approve command handler.
func NewApproveHandler(service content.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ApproveContentCommand]) *commands.Handler[ApproveContentCommand] {
	return newHandler(func(ctx context.Context, msg ApproveContentCommand) error {
		_, err := service.Approve(ctx, msg.Actor(), msg.ContentID)
		return err
	}, logger, "content.approve", opts)
}

// NewRejectHandler builds the reject command handler.
func NewRejectHandler(service content.Service, logger interfaces.Logger, opts ...commands.HandlerOption[RejectContentCommand]) *commands.Handler[RejectContentCommand] {
	return newHandler(func(ctx context.Context, msg RejectContentCommand) error {
		_, err := service.Reject(ctx, msg.Actor(), msg.ContentID, msg.Reason)
		return err
	}, logger, "content.reject", opts)
}

// NewUnpublishHandler builds the unpublish command handler.
func NewUnpublishHandler(service content.Service, logger interfaces.Logger, opts ...commands.HandlerOption[UnpublishContentCommand]) *commands.Handler[UnpublishContentCommand] {
	return newHandler(func(ctx context.Context, msg UnpublishContentCommand) error {
		_, err := service.Unpublish(ctx, msg.Actor(), msg.ContentID)
		return err
	}, logger, "content.unpublish", opts)
}

// NewDeleteHandler builds the delete command handler.
func NewDeleteHandler(service content.Service, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteContentCommand]) *commands.Handler[DeleteContentCommand] {
	return newHandler(func(ctx context.Context, msg DeleteContentCommand) error {
		return service.Delete(ctx, msg.Actor(), msg.ContentID)
	}, logger, "content.delete", opts)
}

// NewBulkDeleteHandler builds the bulk delete handler. Per-item failures do
// not fail the command; they are reported through the message's Report.
func NewBulkDeleteHandler(service content.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BulkDeleteContentCommand]) *commands.Handler[BulkDeleteContentCommand] {
	return newHandler(func(ctx context.Context, msg BulkDeleteContentCommand) error {
		report, err := service.BulkDelete(ctx, msg.Actor(), msg.ContentIDs)
		if err != nil {
			return err
		}
		if msg.Report != nil {
			*msg.Report = report
		}
		return nil
	}, logger, "content.bulk_delete", opts)
}

// NewImportMarkdownHandler builds the handler that turns a Markdown document
// into a new draft.
func NewImportMarkdownHandler(service content.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ImportMarkdownCommand]) *commands.Handler[ImportMarkdownCommand] {
	return newHandler(func(ctx context.Context, msg ImportMarkdownCommand) error {
		draft, err := markdown.ParseDraft(msg.Source)
		if err != nil {
			return commands.ValidationFailure(err, codeValidation)
		}
		created, err := service.CreateDraft(ctx, msg.Actor(), content.CreateRequest{
			Title:    draft.Title,
			Summary:  draft.Summary,
			Body:     draft.Body,
			Type:     draft.Type,
			Category: draft.Category,
			Metadata: draft.Metadata,
		})
		if err != nil {
			return err
		}
		if msg.Result != nil {
			*msg.Result = *created
		}
		return nil
	}, logger, "content.import_markdown", opts)
}
