package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestParseRoleRejectsUnknownValues(t *testing.T) {
	if role, ok := ParseRole("admin"); !ok || role != RoleAdministrator {
		t.Fatalf("expected admin alias to map to administrator, got %q", role)
	}
	if _, ok := ParseRole("editor"); ok {
		t.Fatalf("expected unknown role to be rejected")
	}
	if _, ok := ParseRole(""); ok {
		t.Fatalf("expected empty role to be rejected")
	}
}

func TestActorIsIgnoresNilIdentity(t *testing.T) {
	actor := Actor{Role: RoleContributor}
	if actor.Is(uuid.Nil) {
		t.Fatalf("nil actor must not match nil author")
	}
	id := uuid.New()
	actor.ID = id
	if !actor.Is(id) {
		t.Fatalf("expected actor to match its own id")
	}
}

func TestParseEventNormalizesInput(t *testing.T) {
	if event, ok := ParseEvent(" Approve "); !ok || event != EventApprove {
		t.Fatalf("expected approve, got %q", event)
	}
	if _, ok := ParseEvent("archive"); ok {
		t.Fatalf("expected unknown event to be rejected")
	}
}
