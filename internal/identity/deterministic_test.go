package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestDeliveryUUIDIsStable(t *testing.T) {
	eventID := uuid.New()
	first := DeliveryUUID(eventID, "Admin@School.example")
	second := DeliveryUUID(eventID, " admin@school.example ")
	if first == uuid.Nil || first != second {
		t.Fatalf("expected stable delivery id, got %s and %s", first, second)
	}
	if other := DeliveryUUID(uuid.New(), "admin@school.example"); other == first {
		t.Fatalf("expected different events to yield different ids")
	}
}

func TestActorUUIDPassesThroughUUIDs(t *testing.T) {
	id := uuid.New()
	if got := ActorUUID(id.String()); got != id {
		t.Fatalf("expected %s, got %s", id, got)
	}
	if got := ActorUUID("staff-42"); got == uuid.Nil || got != ActorUUID("staff-42") {
		t.Fatalf("expected deterministic id for opaque subject, got %s", got)
	}
	if got := ActorUUID("  "); got != uuid.Nil {
		t.Fatalf("expected nil id for blank subject, got %s", got)
	}
}
