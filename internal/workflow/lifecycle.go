package workflow

import (
	"strings"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/domain"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/permissions"
	"github.com/google/uuid"
)

// Effect names the notification a transition schedules once it is persisted.
type Effect string

const (
	EffectNone                 Effect = ""
	EffectSubmittedForApproval Effect = "submitted_for_approval"
	EffectApproved             Effect = "approved"
	EffectRejected             Effect = "rejected"
)

// Transition is one edge of the content lifecycle.
type Transition struct {
	From          domain.Status `json:"from"`
	Event         domain.Event  `json:"event"`
	To            domain.Status `json:"to"`
	Effect        Effect        `json:"effect,omitempty"`
	RequireReason bool          `json:"require_reason,omitempty"`
	ClearReason   bool          `json:"clear_reason,omitempty"`
}

// Request describes an attempt to fire event against an item.
type Request struct {
	Current  domain.Status
	Event    domain.Event
	Actor    domain.Actor
	AuthorID uuid.UUID
	Reason   string
}

// Outcome is the result of a legal, authorised transition. Reason holds the
// trimmed rejection reason for Reject and is empty otherwise.
type Outcome struct {
	Transition
	Reason string
}

// lifecycle is fixed. Unpublish lands on Draft; the store keeps published_at
// and stamps unpublished_at so a previously public item stays recognisable.
var lifecycle = []Transition{
	{From: domain.StatusDraft, Event: domain.EventSubmit, To: domain.StatusPending, Effect: EffectSubmittedForApproval},
	{From: domain.StatusRejected, Event: domain.EventSubmit, To: domain.StatusPending, Effect: EffectSubmittedForApproval, ClearReason: true},
	{From: domain.StatusDraft, Event: domain.EventApprove, To: domain.StatusPublished, Effect: EffectApproved},
	{From: domain.StatusPending, Event: domain.EventApprove, To: domain.StatusPublished, Effect: EffectApproved},
	{From: domain.StatusPending, Event: domain.EventReject, To: domain.StatusRejected, Effect: EffectRejected, RequireReason: true},
	{From: domain.StatusPublished, Event: domain.EventUnpublish, To: domain.StatusDraft},
}

// Machine evaluates lifecycle events. It is pure: no I/O, no clock, no state
// beyond the immutable transition table, so one instance can be shared freely.
type Machine struct {
	transitions map[string]Transition
	byState     map[domain.Status][]Transition
}

// New builds the content lifecycle machine.
func New() *Machine {
	m := &Machine{
		transitions: make(map[string]Transition, len(lifecycle)),
		byState:     make(map[domain.Status][]Transition),
	}
	for _, transition := range lifecycle {
		m.transitions[transitionKey(transition.Event, transition.From)] = transition
		m.byState[transition.From] = append(m.byState[transition.From], transition)
	}
	return m
}

// Fire validates req against the table, then the role guard, then the event's
// own input rules. Illegal edges fail with *TransitionError regardless of who
// asks; guard failures fail with a permissions error.
func (m *Machine) Fire(req Request) (Outcome, error) {
	transition, ok := m.Lookup(req.Current, req.Event)
	if !ok {
		return Outcome{}, &TransitionError{From: req.Current, Event: req.Event}
	}

	target := permissions.Target{AuthorID: req.AuthorID, Status: req.Current}
	if err := permissions.RequireEvent(req.Actor, target, req.Event); err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{Transition: transition}
	if transition.RequireReason {
		reason := strings.TrimSpace(req.Reason)
		if reason == "" {
			return Outcome{}, ErrReasonRequired
		}
		outcome.Reason = reason
	}
	return outcome, nil
}

// Lookup returns the edge leaving from for event, if one exists.
func (m *Machine) Lookup(from domain.Status, event domain.Event) (Transition, bool) {
	transition, ok := m.transitions[transitionKey(event, from)]
	return transition, ok
}

// Available lists the events actor may fire on an item in status current.
func (m *Machine) Available(current domain.Status, actor domain.Actor, authorID uuid.UUID) []domain.Event {
	target := permissions.Target{AuthorID: authorID, Status: current}
	events := make([]domain.Event, 0, len(m.byState[current]))
	for _, transition := range m.byState[current] {
		if permissions.CanFire(actor, target, transition.Event) {
			events = append(events, transition.Event)
		}
	}
	return events
}

// Transitions returns a copy of the lifecycle table in declaration order.
func (m *Machine) Transitions() []Transition {
	out := make([]Transition, len(lifecycle))
	copy(out, lifecycle)
	return out
}

func transitionKey(event domain.Event, from domain.Status) string {
	return strings.ToLower(string(event)) + "::" + string(from)
}
