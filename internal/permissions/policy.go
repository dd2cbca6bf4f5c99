package permissions

import (
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/domain"
	"github.com/google/uuid"
)

// Target is the slice of a content item the policy needs: who wrote it and
// where it sits in the lifecycle.
type Target struct {
	AuthorID uuid.UUID
	Status   domain.Status
}

// CanEdit reports whether actor may change the descriptive fields of target.
// Administrators always can. Authors can only while the item is Draft or
// Rejected, so content under review or already public stays frozen for them.
func CanEdit(actor domain.Actor, target Target) bool {
	if !actor.Role.Valid() || !target.Status.Valid() {
		return false
	}
	if actor.IsAdministrator() {
		return true
	}
	if !actor.Is(target.AuthorID) {
		return false
	}
	return target.Status == domain.StatusDraft || target.Status == domain.StatusRejected
}

// CanDelete reports whether actor may delete target. Authors cannot remove
// published material; it must be unpublished first.
func CanDelete(actor domain.Actor, target Target) bool {
	if !actor.Role.Valid() || !target.Status.Valid() {
		return false
	}
	if actor.IsAdministrator() {
		return true
	}
	return actor.Is(target.AuthorID) && target.Status != domain.StatusPublished
}

// CanFire reports whether actor satisfies the role guard of a lifecycle event.
// It does not check whether the event is legal from the current status.
func CanFire(actor domain.Actor, target Target, event domain.Event) bool {
	if !actor.Role.Valid() {
		return false
	}
	switch event {
	case domain.EventSubmit:
		return actor.Is(target.AuthorID)
	case domain.EventApprove, domain.EventReject, domain.EventUnpublish:
		return actor.IsAdministrator()
	default:
		return false
	}
}

// RequireEdit returns a typed denial when CanEdit is false.
func RequireEdit(actor domain.Actor, target Target) error {
	if CanEdit(actor, target) {
		return nil
	}
	return Denied(ActionEdit)
}

// RequireDelete returns a typed denial when CanDelete is false.
func RequireDelete(actor domain.Actor, target Target) error {
	if CanDelete(actor, target) {
		return nil
	}
	return Denied(ActionDelete)
}

// RequireEvent returns a typed denial when CanFire is false.
func RequireEvent(actor domain.Actor, target Target, event domain.Event) error {
	if CanFire(actor, target, event) {
		return nil
	}
	return Denied(Action(event))
}

// CanView reports whether actor may read target through the admin surface.
// Published content is public; anything else is visible to its author and to
// administrators only.
func CanView(actor domain.Actor, target Target) bool {
	if target.Status == domain.StatusPublished {
		return true
	}
	if !actor.Role.Valid() || !target.Status.Valid() {
		return false
	}
	return actor.IsAdministrator() || actor.Is(target.AuthorID)
}

// CanCreate reports whether actor may start a new draft. Any known role can.
func CanCreate(actor domain.Actor) bool {
	return actor.Role.Valid() && actor.ID != uuid.Nil
}
