package content

import (
	"context"
	"errors"
	"maps"
	"strings"
	"time"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/bulk"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/domain"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/logging"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/markdown"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/notifications"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/permissions"
	cmsvalidation "github.com/autophileaozora/smk-kristen5-website-sub003/internal/validation"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/workflow"
	"github.com/autophileaozora/smk-kristen5-website-sub003/pkg/activity"
	"github.com/autophileaozora/smk-kristen5-website-sub003/pkg/interfaces"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	// maxWriteAttempts bounds reload-and-retry after a lost status race.
	maxWriteAttempts = 3
	// DefaultMaxBulkItems caps the ids accepted by one bulk request.
	DefaultMaxBulkItems = 500
	maxReasonLength     = 2000
)

// Service is the content use-case layer. Every mutation loads the item,
// checks the policy or lifecycle guard, then writes conditionally on the
// status the check saw.
type Service interface {
	CreateDraft(ctx context.Context, actor domain.Actor, req CreateRequest) (*Item, error)
	UpdateFields(ctx context.Context, actor domain.Actor, id uuid.UUID, req UpdateRequest) (*Item, error)
	Submit(ctx context.Context, actor domain.Actor, id uuid.UUID) (*Item, error)
	Approve(ctx context.Context, actor domain.Actor, id uuid.UUID) (*Item, error)
	Reject(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*Item, error)
	Unpublish(ctx context.Context, actor domain.Actor, id uuid.UUID) (*Item, error)
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error
	BulkDelete(ctx context.Context, actor domain.Actor, ids []uuid.UUID) (bulk.Report, error)
	List(ctx context.Context, filter ListFilter, page, pageSize int) (ListResult, error)
	Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*Item, error)
	GetPublished(ctx context.Context, id uuid.UUID) (*PublishedItem, error)
	ListPublished(ctx context.Context, filter ListFilter, page, pageSize int) (ListResult, error)
	PendingCount(ctx context.Context) (int, error)
	AvailableEvents(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]domain.Event, error)
}

type service struct {
	repo         Repository
	machine      *workflow.Machine
	schemas      *cmsvalidation.Registry
	notifier     Notifier
	activity     *activity.Emitter
	renderer     BodyRenderer
	bulk         *bulk.Coordinator
	bulkOptions  []bulk.Option
	maxBulkItems int
	now          func() time.Time
	newID        IDGenerator
	logger       interfaces.Logger
}

// NewService wires a service around repo.
func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:         repo,
		machine:      workflow.New(),
		schemas:      cmsvalidation.DefaultRegistry(),
		activity:     activity.NewEmitter(nil, activity.Config{}),
		renderer:     markdown.NewRenderer(markdown.Options{}),
		maxBulkItems: DefaultMaxBulkItems,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.New,
		logger:       logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.bulk = bulk.NewCoordinator(bulkOutcome, append([]bulk.Option{bulk.WithLogger(s.logger)}, s.bulkOptions...)...)
	return s
}

func (s *service) CreateDraft(ctx context.Context, actor domain.Actor, req CreateRequest) (*Item, error) {
	if !permissions.CanCreate(actor) {
		return nil, permissions.Denied(permissions.ActionCreate)
	}
	req = normalizeCreate(req)
	if err := req.Validate(); err != nil {
		return nil, asValidationError(err)
	}
	if err := s.validateMetadata(req.Type, req.Metadata); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &StoreError{Op: "create", Err: err}
	}

	now := s.now()
	id := s.newID()
	item := &Item{
		ID:        id,
		Status:    domain.StatusDraft,
		AuthorID:  actor.ID,
		Type:      req.Type,
		Category:  req.Category,
		Title:     req.Title,
		Slug:      deriveSlug(req.Title, id),
		Summary:   req.Summary,
		Body:      req.Body,
		Metadata:  maps.Clone(req.Metadata),
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.repo.Create(context.WithoutCancel(ctx), item)
	if err != nil {
		return nil, storeError("create", err)
	}

	s.contentLogger(ctx, created.ID, actor, "create").Info("content.draft.created", "type", created.Type)
	s.emit(ctx, actor, "content.created", created, map[string]any{"status": string(created.Status)})
	return created, nil
}

func (s *service) UpdateFields(ctx context.Context, actor domain.Actor, id uuid.UUID, req UpdateRequest) (*Item, error) {
	req = normalizeUpdate(req)
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		current, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := permissions.RequireEdit(actor, current.Target()); err != nil {
			return nil, err
		}
		if err := req.Validate(); err != nil {
			return nil, asValidationError(err)
		}

		update := mergeUpdate(current, req)
		if err := s.validateMetadata(update.Type, update.Metadata); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, &StoreError{Op: "update", Err: err}
		}
		update.UpdatedAt = s.now()

		updated, err := s.repo.UpdateFields(context.WithoutCancel(ctx), update)
		if errors.Is(err, ErrStatusConflict) {
			continue
		}
		if err != nil {
			return nil, storeError("update", err)
		}

		s.contentLogger(ctx, id, actor, "update").Info("content.fields.updated")
		s.emit(ctx, actor, "content.updated", updated, map[string]any{"status": string(updated.Status)})
		return updated, nil
	}
	return nil, &StoreError{Op: "update", Err: ErrStatusConflict}
}

func (s *service) Submit(ctx context.Context, actor domain.Actor, id uuid.UUID) (*Item, error) {
	return s.transition(ctx, actor, id, domain.EventSubmit, "")
}

func (s *service) Approve(ctx context.Context, actor domain.Actor, id uuid.UUID) (*Item, error) {
	return s.transition(ctx, actor, id, domain.EventApprove, "")
}

func (s *service) Reject(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*Item, error) {
	return s.transition(ctx, actor, id, domain.EventReject, reason)
}

func (s *service) Unpublish(ctx context.Context, actor domain.Actor, id uuid.UUID) (*Item, error) {
	return s.transition(ctx, actor, id, domain.EventUnpublish, "")
}

// transition fires event against the stored item. Losing a status race
// reloads the item so the guard always runs against the state the write
// would replace.
func (s *service) transition(ctx context.Context, actor domain.Actor, id uuid.UUID, event domain.Event, reason string) (*Item, error) {
	op := string(event)
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		current, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}

		outcome, err := s.machine.Fire(workflow.Request{
			Current:  current.Status,
			Event:    event,
			Actor:    actor,
			AuthorID: current.AuthorID,
			Reason:   reason,
		})
		if err != nil {
			return nil, lifecycleError(err)
		}
		if len(outcome.Reason) > maxReasonLength {
			return nil, newValidationError("reason", "content.reject.reason_too_long", "rejection reason is too long")
		}
		if err := ctx.Err(); err != nil {
			return nil, &StoreError{Op: op, Err: err}
		}

		change := s.buildChange(current, outcome)
		updated, err := s.repo.CompareAndSetStatus(context.WithoutCancel(ctx), change)
		if errors.Is(err, ErrStatusConflict) {
			s.contentLogger(ctx, id, actor, op).Debug("content.transition.conflict", "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, storeError(op, err)
		}

		s.afterTransition(ctx, actor, current.Status, updated, outcome)
		return updated, nil
	}
	return nil, &StoreError{Op: op, Err: ErrStatusConflict}
}

func (s *service) buildChange(current *Item, outcome workflow.Outcome) StatusChange {
	now := s.now()
	change := StatusChange{
		ID:        current.ID,
		From:      current.Status,
		To:        outcome.To,
		UpdatedAt: now,
	}
	switch {
	case outcome.RequireReason:
		reason := outcome.Reason
		change.RejectionReason = &reason
	case outcome.ClearReason:
		empty := ""
		change.RejectionReason = &empty
	}
	if outcome.To == domain.StatusPublished {
		change.PublishedAt = &now
	}
	if outcome.Event == domain.EventUnpublish {
		change.UnpublishedAt = &now
	}
	return change
}

func (s *service) afterTransition(ctx context.Context, actor domain.Actor, from domain.Status, item *Item, outcome workflow.Outcome) {
	s.contentLogger(ctx, item.ID, actor, string(outcome.Event)).Info("content.transition.applied",
		"from", string(from),
		"to", string(item.Status),
	)

	if kind, ok := notificationKind(outcome.Effect); ok && s.notifier != nil {
		s.notifier.Dispatch(ctx, notifications.Event{
			ID:   s.newID(),
			Kind: kind,
			Content: notifications.ContentSnapshot{
				ID:              item.ID,
				Title:           item.Title,
				Type:            item.Type,
				AuthorID:        item.AuthorID,
				RejectionReason: item.RejectionReason,
			},
			ActorID:    actor.ID,
			OccurredAt: item.UpdatedAt,
		})
	}

	meta := map[string]any{
		"from_status": string(from),
		"to_status":   string(item.Status),
	}
	if outcome.Reason != "" {
		meta["reason"] = outcome.Reason
	}
	s.emit(ctx, actor, activityVerb(outcome.Event), item, meta)
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		current, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := permissions.RequireDelete(actor, current.Target()); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return &StoreError{Op: "delete", Err: err}
		}

		err = s.repo.Delete(context.WithoutCancel(ctx), id, current.Status)
		if errors.Is(err, ErrStatusConflict) {
			continue
		}
		if err != nil {
			return storeError("delete", err)
		}

		s.contentLogger(ctx, id, actor, "delete").Info("content.deleted", "status", string(current.Status))
		s.emit(ctx, actor, "content.deleted", current, map[string]any{"status": string(current.Status)})
		return nil
	}
	return &StoreError{Op: "delete", Err: ErrStatusConflict}
}

func (s *service) BulkDelete(ctx context.Context, actor domain.Actor, ids []uuid.UUID) (bulk.Report, error) {
	if len(ids) > s.maxBulkItems {
		return bulk.Report{}, &ValidationError{Errors: validation.Errors{
			"ids": validation.NewError("content.bulk.too_many", ErrTooManyItems.Error()),
		}}
	}
	return s.bulk.Run(ctx, ids, func(ctx context.Context, id uuid.UUID) error {
		return s.Delete(ctx, actor, id)
	}), nil
}

func (s *service) List(ctx context.Context, filter ListFilter, page, pageSize int) (ListResult, error) {
	page, pageSize, limit, offset := NormalizePage(page, pageSize)
	items, total, err := s.repo.List(ctx, Query{Filter: filter, Limit: limit, Offset: offset})
	if err != nil {
		return ListResult{}, storeError("list", err)
	}
	return ListResult{Items: items, TotalCount: total, Page: page, PageSize: pageSize}, nil
}

func (s *service) ListPublished(ctx context.Context, filter ListFilter, page, pageSize int) (ListResult, error) {
	filter.Statuses = []domain.Status{domain.StatusPublished}
	filter.AuthorID = uuid.Nil
	return s.List(ctx, filter, page, pageSize)
}

func (s *service) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*Item, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !permissions.CanView(actor, item.Target()) {
		return nil, permissions.Denied(permissions.ActionView)
	}
	return item, nil
}

func (s *service) GetPublished(ctx context.Context, id uuid.UUID) (*PublishedItem, error) {
	var (
		item *Item
		err  error
	)
	if cached, ok := s.repo.(CachedReader); ok {
		item, err = cached.GetCachedByID(ctx, id)
	} else {
		item, err = s.repo.GetByID(ctx, id)
	}
	if err != nil {
		return nil, storeError("get", err)
	}
	if item.Status != domain.StatusPublished {
		return nil, &NotFoundError{Resource: "content", Key: id.String()}
	}

	html, err := s.renderer.RenderString(item.Body)
	if err != nil {
		return nil, &StoreError{Op: "render", Err: err}
	}
	return &PublishedItem{
		ID:          item.ID,
		Type:        item.Type,
		Category:    item.Category,
		Title:       item.Title,
		Slug:        item.Slug,
		Summary:     item.Summary,
		BodyHTML:    html,
		Metadata:    maps.Clone(item.Metadata),
		PublishedAt: item.PublishedAt,
	}, nil
}

func (s *service) PendingCount(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx, ListFilter{Statuses: []domain.Status{domain.StatusPending}})
	if err != nil {
		return 0, storeError("count", err)
	}
	return count, nil
}

func (s *service) AvailableEvents(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]domain.Event, error) {
	item, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.machine.Available(item.Status, actor, item.AuthorID), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*Item, error) {
	if id == uuid.Nil {
		return nil, &NotFoundError{Resource: "content", Key: id.String()}
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get", err)
	}
	return item, nil
}

func (s *service) validateMetadata(typeName string, metadata map[string]any) error {
	err := s.schemas.Validate(typeName, metadata)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, cmsvalidation.ErrUnknownType):
		return newValidationError("type", "content.type.unknown", err.Error())
	default:
		return newValidationError("metadata", "content.metadata.invalid", err.Error())
	}
}

func (s *service) emit(ctx context.Context, actor domain.Actor, verb string, item *Item, meta map[string]any) {
	if !s.activity.Enabled() || item == nil {
		return
	}
	event := activity.Event{
		Verb:           verb,
		ActorID:        actor.ID.String(),
		UserID:         item.AuthorID.String(),
		ObjectType:     "content",
		ObjectID:       item.ID.String(),
		DefinitionCode: "content:" + strings.TrimPrefix(verb, "content."),
		Metadata:       meta,
		OccurredAt:     s.now(),
	}
	if err := s.activity.Emit(ctx, event); err != nil {
		s.contentLogger(ctx, item.ID, actor, verb).Warn("content.activity.failed", "error", err)
	}
}

func (s *service) contentLogger(ctx context.Context, id uuid.UUID, actor domain.Actor, operation string) interfaces.Logger {
	logger := logging.WithContent(s.logger, id.String(), actor.ID.String(), operation)
	return logging.ForContext(logger, ctx)
}

// Validate checks the descriptive fields of a new draft.
func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required.Error("title is required"), validation.RuneLength(1, 200)),
		validation.Field(&r.Summary, validation.RuneLength(0, 500)),
		validation.Field(&r.Type, validation.Required, validation.RuneLength(1, 64)),
		validation.Field(&r.Category, validation.RuneLength(0, 64)),
	)
}

// Validate checks the fields an update touches.
func (r UpdateRequest) Validate() error {
	if r.Empty() {
		return validation.Errors{"_": validation.NewError("content.update.empty", "no fields to update")}
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty.Error("title cannot be blank"), validation.RuneLength(1, 200)),
		validation.Field(&r.Summary, validation.RuneLength(0, 500)),
		validation.Field(&r.Type, validation.NilOrNotEmpty, validation.RuneLength(1, 64)),
		validation.Field(&r.Category, validation.RuneLength(0, 64)),
	)
}

func normalizeCreate(req CreateRequest) CreateRequest {
	req.Title = strings.TrimSpace(req.Title)
	req.Summary = strings.TrimSpace(req.Summary)
	req.Type = normalizeTypeName(req.Type)
	req.Category = strings.TrimSpace(req.Category)
	return req
}

func normalizeUpdate(req UpdateRequest) UpdateRequest {
	trim := func(value *string) *string {
		if value == nil {
			return nil
		}
		trimmed := strings.TrimSpace(*value)
		return &trimmed
	}
	req.Title = trim(req.Title)
	req.Summary = trim(req.Summary)
	req.Category = trim(req.Category)
	if req.Type != nil {
		typeName := strings.ToLower(strings.TrimSpace(*req.Type))
		req.Type = &typeName
	}
	return req
}

func normalizeTypeName(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return DefaultType
	}
	return value
}

func mergeUpdate(current *Item, req UpdateRequest) FieldsUpdate {
	update := FieldsUpdate{
		ID:             current.ID,
		ExpectedStatus: current.Status,
		Title:          current.Title,
		Slug:           current.Slug,
		Summary:        current.Summary,
		Body:           current.Body,
		Type:           current.Type,
		Category:       current.Category,
		Metadata:       maps.Clone(current.Metadata),
	}
	if req.Title != nil && *req.Title != current.Title {
		update.Title = *req.Title
		update.Slug = deriveSlug(*req.Title, current.ID)
	}
	if req.Summary != nil {
		update.Summary = *req.Summary
	}
	if req.Body != nil {
		update.Body = *req.Body
	}
	if req.Type != nil {
		update.Type = *req.Type
	}
	if req.Category != nil {
		update.Category = *req.Category
	}
	if req.Metadata != nil {
		update.Metadata = maps.Clone(*req.Metadata)
	}
	return update
}

// lifecycleError maps machine failures. A missing rejection reason is a
// validation problem with the request, not an illegal transition.
func lifecycleError(err error) error {
	if errors.Is(err, workflow.ErrReasonRequired) {
		return newValidationError("reason", "content.reject.reason_required", "rejection reason is required")
	}
	return err
}

// storeError passes typed repository errors through and wraps anything else.
func storeError(op string, err error) error {
	var (
		notFound *NotFoundError
		storeErr *StoreError
	)
	if errors.As(err, &notFound) || errors.As(err, &storeErr) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func notificationKind(effect workflow.Effect) (notifications.Kind, bool) {
	switch effect {
	case workflow.EffectSubmittedForApproval:
		return notifications.KindSubmittedForApproval, true
	case workflow.EffectApproved:
		return notifications.KindApproved, true
	case workflow.EffectRejected:
		return notifications.KindRejected, true
	default:
		return "", false
	}
}

func activityVerb(event domain.Event) string {
	switch event {
	case domain.EventSubmit:
		return "content.submitted"
	case domain.EventApprove:
		return "content.approved"
	case domain.EventReject:
		return "content.rejected"
	case domain.EventUnpublish:
		return "content.unpublished"
	default:
		return "content." + string(event)
	}
}

func bulkOutcome(err error) bulk.Outcome {
	switch KindOf(err) {
	case KindPermissionDenied:
		return bulk.OutcomePermissionDenied
	case KindNotFound:
		return bulk.OutcomeNotFound
	default:
		return bulk.OutcomeStoreError
	}
}
