package workflow

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/domain"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/permissions"
	"github.com/autophileaozora/smk-kristen5-website-sub003/pkg/testsupport"
	"github.com/google/uuid"
)

type cycleFixture struct {
	InitialStatus string      `json:"initial_status"`
	Steps         []cycleStep `json:"steps"`
}

type cycleStep struct {
	Event      string `json:"event"`
	Actor      string `json:"actor"`
	Reason     string `json:"reason"`
	WantStatus string `json:"want_status"`
	WantReason string `json:"want_reason"`
}

func TestMachineTransitionsMatchGolden(t *testing.T) {
	var want []Transition
	if err := testsupport.LoadGolden(filepath.Join("testdata", "transitions.golden.json"), &want); err != nil {
		t.Fatalf("load golden: %v", err)
	}
	if got := New().Transitions(); !reflect.DeepEqual(got, want) {
		t.Fatalf("transition table mismatch\nwant: %+v\ngot:  %+v", want, got)
	}
}

func TestMachineReviewCycle(t *testing.T) {
	var fixture cycleFixture
	if err := testsupport.LoadJSONFixture(filepath.Join("testdata", "review_cycle.json"), &fixture); err != nil {
		t.Fatalf("load fixture: %v", err)
	}

	authorID := uuid.New()
	actors := map[string]domain.Actor{
		"author": {ID: authorID, Role: domain.RoleContributor},
		"admin":  {ID: uuid.New(), Role: domain.RoleAdministrator},
	}

	machine := New()
	current := domain.Status(fixture.InitialStatus)
	for idx, step := range fixture.Steps {
		outcome, err := machine.Fire(Request{
			Current:  current,
			Event:    domain.Event(step.Event),
			Actor:    actors[step.Actor],
			AuthorID: authorID,
			Reason:   step.Reason,
		})
		if err != nil {
			t.Fatalf("step %d %s: %v", idx, step.Event, err)
		}
		if string(outcome.To) != step.WantStatus {
			t.Fatalf("step %d %s: want %s got %s", idx, step.Event, step.WantStatus, outcome.To)
		}
		if outcome.Reason != step.WantReason {
			t.Fatalf("step %d %s: want reason %q got %q", idx, step.Event, step.WantReason, outcome.Reason)
		}
		current = outcome.To
	}
}

func TestMachineRejectsEveryPairOutsideTheTable(t *testing.T) {
	machine := New()
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdministrator}

	for _, status := range domain.Statuses() {
		for _, event := range domain.Events() {
			if _, ok := machine.Lookup(status, event); ok {
				continue
			}
			// The administrator is also the author so no guard could fail first.
			_, err := machine.Fire(Request{
				Current:  status,
				Event:    event,
				Actor:    admin,
				AuthorID: admin.ID,
				Reason:   "reason",
			})
			var transitionErr *TransitionError
			if !errors.As(err, &transitionErr) {
				t.Fatalf("%s from %s: expected TransitionError, got %v", event, status, err)
			}
			if transitionErr.From != status || transitionErr.Event != event {
				t.Fatalf("%s from %s: error carries %s/%s", event, status, transitionErr.From, transitionErr.Event)
			}
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("expected ErrInvalidTransition in chain")
			}
		}
	}
}

func TestMachineTableCheckPrecedesGuard(t *testing.T) {
	contributor := domain.Actor{ID: uuid.New(), Role: domain.RoleContributor}
	_, err := New().Fire(Request{
		Current:  domain.StatusRejected,
		Event:    domain.EventReject,
		Actor:    contributor,
		AuthorID: uuid.New(),
		Reason:   "again",
	})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition before permission check, got %v", err)
	}
}

func TestMachineGuardFailures(t *testing.T) {
	machine := New()
	authorID := uuid.New()
	author := domain.Actor{ID: authorID, Role: domain.RoleContributor}
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdministrator}

	cases := []struct {
		name    string
		current domain.Status
		event   domain.Event
		actor   domain.Actor
	}{
		{"contributor approves", domain.StatusPending, domain.EventApprove, author},
		{"contributor rejects", domain.StatusPending, domain.EventReject, author},
		{"contributor unpublishes", domain.StatusPublished, domain.EventUnpublish, author},
		{"admin submits for someone else", domain.StatusDraft, domain.EventSubmit, admin},
	}
	for _, tc := range cases {
		_, err := machine.Fire(Request{Current: tc.current, Event: tc.event, Actor: tc.actor, AuthorID: authorID, Reason: "x"})
		if !errors.Is(err, permissions.ErrPermissionDenied) {
			t.Fatalf("%s: expected permission denied, got %v", tc.name, err)
		}
	}
}

func TestMachineRejectRequiresReason(t *testing.T) {
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdministrator}
	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err := New().Fire(Request{
			Current:  domain.StatusPending,
			Event:    domain.EventReject,
			Actor:    admin,
			AuthorID: uuid.New(),
			Reason:   reason,
		})
		if !errors.Is(err, ErrReasonRequired) {
			t.Fatalf("reason %q: expected ErrReasonRequired, got %v", reason, err)
		}
	}
}

func TestMachineAvailableEvents(t *testing.T) {
	machine := New()
	authorID := uuid.New()
	author := domain.Actor{ID: authorID, Role: domain.RoleContributor}
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdministrator}

	if got := machine.Available(domain.StatusDraft, author, authorID); !reflect.DeepEqual(got, []domain.Event{domain.EventSubmit}) {
		t.Fatalf("author on draft: %v", got)
	}
	if got := machine.Available(domain.StatusDraft, admin, authorID); !reflect.DeepEqual(got, []domain.Event{domain.EventApprove}) {
		t.Fatalf("admin on draft: %v", got)
	}
	want := []domain.Event{domain.EventApprove, domain.EventReject}
	if got := machine.Available(domain.StatusPending, admin, authorID); !reflect.DeepEqual(got, want) {
		t.Fatalf("admin on pending: %v", got)
	}
	if got := machine.Available(domain.StatusPending, author, authorID); len(got) != 0 {
		t.Fatalf("author on pending: %v", got)
	}
}
