package contentcmd

import (
	"strings"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/bulk"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/content"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/domain"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	submitMessageType     = "portal.content.submit"
	approveMessageType    = "portal.content.approve"
	rejectMessageType     = "portal.content.reject"
	unpublishMessageType  = "portal.content.unpublish"
	deleteMessageType     = "portal.content.delete"
	bulkDeleteMessageType = "portal.content.bulk_delete"
	importMessageType     = "portal.content.import_markdown"
)

// ActorRef identifies who issues a command.
type ActorRef struct {
	ActorID uuid.UUID   `json:"actor_id"`
	Role    domain.Role `json:"role"`
}

// Actor converts the reference into a domain actor.
func (a ActorRef) Actor() domain.Actor {
	return domain.Actor{ID: a.ActorID, Role: a.Role}
}

func (a ActorRef) validate(prefix string, errs validation.Errors) {
	if a.ActorID == uuid.Nil {
		errs["actor_id"] = validation.NewError(prefix+".actor_required", "actor_id is required")
	}
	if !a.Role.Valid() {
		errs["role"] = validation.NewError(prefix+".role_invalid", "role must be administrator or contributor")
	}
}

func targetErrors(prefix string, id uuid.UUID, actor ActorRef) validation.Errors {
	errs := validation.Errors{}
	if id == uuid.Nil {
		errs["content_id"] = validation.NewError(prefix+".content_id_required", "content_id is required")
	}
	actor.validate(prefix, errs)
	return errs
}

func errorsOrNil(errs validation.Errors) error {
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SubmitContentCommand sends a draft or rejected item for review.
type SubmitContentCommand struct {
	ContentID uuid.UUID `json:"content_id"`
	ActorRef
}

func (SubmitContentCommand) Type() string { return submitMessageType }

func (m SubmitContentCommand) Validate() error {
	return errorsOrNil(targetErrors(submitMessageType, m.ContentID, m.ActorRef))
}

// ApproveContentCommand publishes an item.
type ApproveContentCommand struct {
	ContentID uuid.UUID `json:"content_id"`
	ActorRef
}

func (ApproveContentCommand) Type() string { return approveMessageType }

func (m ApproveContentCommand) Validate() error {
	return errorsOrNil(targetErrors(approveMessageType, m.ContentID, m.ActorRef))
}

// RejectContentCommand returns a pending item to its author with a reason.
type RejectContentCommand struct {
	ContentID uuid.UUID `json:"content_id"`
	Reason    string    `json:"reason"`
	ActorRef
}

func (RejectContentCommand) Type() string { return rejectMessageType }

func (m RejectContentCommand) Validate() error {
	errs := targetErrors(rejectMessageType, m.ContentID, m.ActorRef)
	if strings.TrimSpace(m.Reason) == "" {
		errs["reason"] = validation.NewError(rejectMessageType+".reason_required", "reason is required")
	}
	return errorsOrNil(errs)
}

// UnpublishContentCommand takes a published item offline.
type UnpublishContentCommand struct {
	ContentID uuid.UUID `json:"content_id"`
	ActorRef
}

func (UnpublishContentCommand) Type() string { return unpublishMessageType }

func (m UnpublishContentCommand) Validate() error {
	return errorsOrNil(targetErrors(unpublishMessageType, m.ContentID, m.ActorRef))
}

// DeleteContentCommand removes one item.
type DeleteContentCommand struct {
	ContentID uuid.UUID `json:"content_id"`
	ActorRef
}

func (DeleteContentCommand) Type() string { return deleteMessageType }

func (m DeleteContentCommand) Validate() error {
	return errorsOrNil(targetErrors(deleteMessageType, m.ContentID, m.ActorRef))
}

// BulkDeleteContentCommand removes many items with per-item outcomes. When
// Report is set the handler stores the outcome there.
type BulkDeleteContentCommand struct {
	ContentIDs []uuid.UUID `json:"content_ids"`
	ActorRef
	Report *bulk.Report `json:"-"`
}

func (BulkDeleteContentCommand) Type() string { return bulkDeleteMessageType }

func (m BulkDeleteContentCommand) Validate() error {
	errs := validation.Errors{}
	switch {
	case len(m.ContentIDs) == 0:
		errs["content_ids"] = validation.NewError(bulkDeleteMessageType+".content_ids_required", "content_ids cannot be empty")
	case len(m.ContentIDs) > content.DefaultMaxBulkItems:
		errs["content_ids"] = validation.NewError(bulkDeleteMessageType+".content_ids_too_many", "too many content_ids")
	}
	m.ActorRef.validate(bulkDeleteMessageType, errs)
	return errorsOrNil(errs)
}

// ImportMarkdownCommand creates a draft from a Markdown document with YAML
// front matter. When Result is set the handler copies the new item into it.
type ImportMarkdownCommand struct {
	Source []byte `json:"source"`
	ActorRef
	Result *content.Item `json:"-"`
}

func (ImportMarkdownCommand) Type() string { return importMessageType }

func (m ImportMarkdownCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(string(m.Source)) == "" {
		errs["source"] = validation.NewError(importMessageType+".source_required", "source is required")
	}
	m.ActorRef.validate(importMessageType, errs)
	return errorsOrNil(errs)
}
