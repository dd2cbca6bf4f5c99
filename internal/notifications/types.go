package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies the transition a notification describes.
type Kind string

const (
	KindSubmittedForApproval Kind = "submitted_for_approval"
	KindApproved             Kind = "approved"
	KindRejected             Kind = "rejected"
)

// Channel represents a delivery channel for notifications.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelLog   Channel = "log"
)

// ContentSnapshot freezes the parts of a content item a message talks about.
// It is captured when the transition commits, so later edits never leak into
// a notification that is still in flight.
type ContentSnapshot struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Type            string    `json:"type"`
	AuthorID        uuid.UUID `json:"author_id"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
}

// Event is an immutable record of a completed transition.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Kind       Kind            `json:"kind"`
	Content    ContentSnapshot `json:"content"`
	ActorID    uuid.UUID       `json:"actor_id"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Recipient is a resolved destination for a message.
type Recipient struct {
	ID      uuid.UUID `json:"id,omitempty"`
	Name    string    `json:"name,omitempty"`
	Address string    `json:"address"`
}

// Delivery is the concrete payload handed to a Sender.
type Delivery struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	Kind      Kind      `json:"kind"`
	Channel   Channel   `json:"channel"`
	Recipient Recipient `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sent_at"`
}
