package contentcmd

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/bulk"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/content"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/domain"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/logging"
	"github.com/goliatone/go-command/dispatcher"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

var (
	adminRef  = ActorRef{ActorID: uuid.MustParse("7b0d4f1e-1a5e-4c1a-9d1e-2f7f3a9b0001"), Role: domain.RoleAdministrator}
	authorRef = ActorRef{ActorID: uuid.MustParse("7b0d4f1e-1a5e-4c1a-9d1e-2f7f3a9b0002"), Role: domain.RoleContributor}
)

func newService(t *testing.T) content.Service {
	t.Helper()
	return content.NewService(content.NewMemoryRepository())
}

func createDraft(t *testing.T, svc content.Service) *content.Item {
	t.Helper()
	item, err := svc.CreateDraft(context.Background(), authorRef.Actor(), content.CreateRequest{
		Title: "Sports day results",
		Body:  "Class XI won the relay.",
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	return item
}

func textCode(t *testing.T, err error) string {
	t.Helper()
	var wrapped *goerrors.Error
	if !errors.As(err, &wrapped) {
		t.Fatalf("expected go-errors value, got %T: %v", err, err)
	}
	return wrapped.TextCode
}

func TestMessagesValidate(t *testing.T) {
	id := uuid.New()
	cases := []struct {
		name  string
		msg   interface{ Validate() error }
		valid bool
	}{
		{"submit ok", SubmitContentCommand{ContentID: id, ActorRef: authorRef}, true},
		{"submit missing id", SubmitContentCommand{ActorRef: authorRef}, false},
		{"approve missing actor", ApproveContentCommand{ContentID: id}, false},
		{"reject blank reason", RejectContentCommand{ContentID: id, Reason: "  ", ActorRef: adminRef}, false},
		{"reject ok", RejectContentCommand{ContentID: id, Reason: "Needs a photo", ActorRef: adminRef}, true},
		{"unpublish bad role", UnpublishContentCommand{ContentID: id, ActorRef: ActorRef{ActorID: uuid.New(), Role: "editor"}}, false},
		{"delete ok", DeleteContentCommand{ContentID: id, ActorRef: adminRef}, true},
		{"bulk empty", BulkDeleteContentCommand{ActorRef: adminRef}, false},
		{"bulk ok", BulkDeleteContentCommand{ContentIDs: []uuid.UUID{id}, ActorRef: adminRef}, true},
		{"import empty", ImportMarkdownCommand{ActorRef: authorRef}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.valid && err != nil {
				t.Fatalf("expected valid message, got %v", err)
			}
			if !tc.valid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestBulkDeleteRejectsOversizedRequest(t *testing.T) {
	ids := make([]uuid.UUID, content.DefaultMaxBulkItems+1)
	for i := range ids {
		ids[i] = uuid.New()
	}
	if err := (BulkDeleteContentCommand{ContentIDs: ids, ActorRef: adminRef}).Validate(); err == nil {
		t.Fatal("expected oversized request to fail validation")
	}
}

func TestSubmitAndApproveHandlersDriveLifecycle(t *testing.T) {
	svc := newService(t)
	item := createDraft(t, svc)

	submit := NewSubmitHandler(svc, logging.NoOp())
	if err := submit.Execute(context.Background(), SubmitContentCommand{ContentID: item.ID, ActorRef: authorRef}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	approve := NewApproveHandler(svc, logging.NoOp())
	if err := approve.Execute(context.Background(), ApproveContentCommand{ContentID: item.ID, ActorRef: adminRef}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	got, err := svc.Get(context.Background(), adminRef.Actor(), item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusPublished {
		t.Fatalf("expected published, got %s", got.Status)
	}
}

func TestHandlersMapServiceErrorsToCodes(t *testing.T) {
	svc := newService(t)
	item := createDraft(t, svc)

	approve := NewApproveHandler(svc, logging.NoOp())
	err := approve.Execute(context.Background(), ApproveContentCommand{ContentID: item.ID, ActorRef: authorRef})
	if code := textCode(t, err); code != codePermissionDenied {
		t.Fatalf("expected %s, got %s", codePermissionDenied, code)
	}

	err = approve.Execute(context.Background(), ApproveContentCommand{ContentID: uuid.New(), ActorRef: adminRef})
	if code := textCode(t, err); code != codeNotFound {
		t.Fatalf("expected %s, got %s", codeNotFound, code)
	}

	unpublish := NewUnpublishHandler(svc, logging.NoOp())
	err = unpublish.Execute(context.Background(), UnpublishContentCommand{ContentID: item.ID, ActorRef: adminRef})
	if code := textCode(t, err); code != codeInvalidTransition {
		t.Fatalf("expected %s, got %s", codeInvalidTransition, code)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestRejectHandlerStoresReason(t *testing.T) {
	svc := newService(t)
	item := createDraft(t, svc)
	if _, err := svc.Submit(context.Background(), authorRef.Actor(), item.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	reject := NewRejectHandler(svc, logging.NoOp())
	if err := reject.Execute(context.Background(), RejectContentCommand{ContentID: item.ID, Reason: "Add the final scores", ActorRef: adminRef}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	got, err := svc.Get(context.Background(), authorRef.Actor(), item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusRejected || got.RejectionReason != "Add the final scores" {
		t.Fatalf("unexpected item %s %q", got.Status, got.RejectionReason)
	}
}

func TestBulkDeleteHandlerFillsReport(t *testing.T) {
	svc := newService(t)
	first := createDraft(t, svc)
	missing := uuid.New()

	var report bulk.Report
	handler := NewBulkDeleteHandler(svc, logging.NoOp())
	err := handler.Execute(context.Background(), BulkDeleteContentCommand{
		ContentIDs: []uuid.UUID{first.ID, missing},
		ActorRef:   adminRef,
		Report:     &report,
	})
	if err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected two results, got %d", len(report.Results))
	}
	if report.Results[0].Outcome != bulk.OutcomeSuccess || report.Results[1].Outcome != bulk.OutcomeNotFound {
		t.Fatalf("unexpected outcomes %+v", report.Results)
	}
}

func TestImportMarkdownHandlerCreatesDraft(t *testing.T) {
	source, err := os.ReadFile("../../markdown/testdata/event.md")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	svc := newService(t)

	var created content.Item
	handler := NewImportMarkdownHandler(svc, logging.NoOp())
	if err := handler.Execute(context.Background(), ImportMarkdownCommand{Source: source, ActorRef: authorRef, Result: &created}); err != nil {
		t.Fatalf("import: %v", err)
	}
	if created.Status != domain.StatusDraft {
		t.Fatalf("imported items start as drafts, got %s", created.Status)
	}
	if created.Title != "Open House 2026" || created.Type != "event" || created.AuthorID != authorRef.ActorID {
		t.Fatalf("unexpected item %+v", created)
	}
}

func TestRegisterAndSubscribeDispatchesCommands(t *testing.T) {
	svc := newService(t)
	item := createDraft(t, svc)

	registry := &recordingRegistry{}
	set, err := RegisterContentCommands(registry, svc, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(registry.handlers) != 7 {
		t.Fatalf("expected 7 registered handlers, got %d", len(registry.handlers))
	}

	subs := Subscribe(set)
	t.Cleanup(func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	})

	if err := dispatcher.Dispatch(context.Background(), SubmitContentCommand{ContentID: item.ID, ActorRef: authorRef}); err != nil {
		t.Fatalf("dispatch submit: %v", err)
	}
	if err := dispatcher.Dispatch(context.Background(), ApproveContentCommand{ContentID: item.ID, ActorRef: adminRef}); err != nil {
		t.Fatalf("dispatch approve: %v", err)
	}
	if err := dispatcher.Dispatch(context.Background(), ApproveContentCommand{ContentID: item.ID, ActorRef: adminRef}); err == nil {
		t.Fatal("expected second approve to fail")
	}
}

func TestRegisterRequiresService(t *testing.T) {
	if _, err := RegisterContentCommands(nil, nil, nil); err == nil {
		t.Fatal("expected error for nil service")
	}
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}
