package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Event names a lifecycle action requested against a content item.
type Event string

const (
	EventSubmit    Event = "submit"
	EventApprove   Event = "approve"
	EventReject    Event = "reject"
	EventUnpublish Event = "unpublish"
)

// Events lists every known lifecycle event.
func Events() []Event {
	return []Event{EventSubmit, EventApprove, EventReject, EventUnpublish}
}

// ParseEvent coerces user input into a known event.
func ParseEvent(input string) (Event, bool) {
	event := Event(strings.ToLower(strings.TrimSpace(input)))
	switch event {
	case EventSubmit, EventApprove, EventReject, EventUnpublish:
		return event, true
	default:
		return "", false
	}
}

func (e Event) String() string { return string(e) }

// Role is the authoritative role resolved from the authenticated session.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleContributor   Role = "contributor"
)

// ParseRole coerces session claims into a role. Unknown values are rejected so
// callers never fall back to an implicit privilege.
func ParseRole(input string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "administrator", "admin":
		return RoleAdministrator, true
	case "contributor", "staff":
		return RoleContributor, true
	default:
		return "", false
	}
}

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	return r == RoleAdministrator || r == RoleContributor
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// IsAdministrator reports whether the actor holds the administrator role.
func (a Actor) IsAdministrator() bool {
	return a.Role == RoleAdministrator
}

// Is reports whether the actor is the identity referenced by id.
func (a Actor) Is(id uuid.UUID) bool {
	return a.ID != uuid.Nil && a.ID == id
}
