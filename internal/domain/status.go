package domain

import "strings"

// Status represents lifecycle states for content items.
type Status string

const (
	// StatusDraft indicates content still under preparation by its author
	StatusDraft Status = "draft"
	// StatusPending marks content submitted for administrator review
	StatusPending Status = "pending"
	// StatusPublished identifies content visible on the public site
	StatusPublished Status = "published"
	// StatusRejected marks content returned to its author with a reason
	StatusRejected Status = "rejected"
)

// Statuses lists every known status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusDraft, StatusPending, StatusPublished, StatusRejected}
}

// ParseStatus coerces user input into a known status. The boolean is false when
// the value does not name a status.
func ParseStatus(input string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(input)))
	if status.Valid() {
		return status, true
	}
	return "", false
}

// Valid reports whether the status is one of the closed set.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusPublished, StatusRejected:
		return true
	default:
		return false
	}
}

// Public reports whether content in this status is visible on the public site.
func (s Status) Public() bool {
	return s == StatusPublished
}

func (s Status) String() string { return string(s) }
