package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var ErrRecipientUnknown = errors.New("notifications: recipient unknown")

// Directory resolves who should hear about a transition. Lookups happen at
// dispatch time, never when the event is created.
type Directory interface {
	Administrators(ctx context.Context) ([]Recipient, error)
	User(ctx context.Context, id uuid.UUID) (Recipient, error)
}

// StaticDirectory serves recipients from configuration.
type StaticDirectory struct {
	mu     sync.RWMutex
	admins []Recipient
	users  map[uuid.UUID]Recipient
}

// NewStaticDirectory builds a directory from a fixed administrator list and
// a user id to address map.
func NewStaticDirectory(admins []Recipient, users map[uuid.UUID]Recipient) *StaticDirectory {
	d := &StaticDirectory{users: make(map[uuid.UUID]Recipient, len(users))}
	for _, admin := range admins {
		if strings.TrimSpace(admin.Address) != "" {
			d.admins = append(d.admins, admin)
		}
	}
	for id, user := range users {
		user.ID = id
		d.users[id] = user
	}
	return d
}

// AddUser registers or replaces a user address.
func (d *StaticDirectory) AddUser(recipient Recipient) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[recipient.ID] = recipient
}

func (d *StaticDirectory) Administrators(context.Context) ([]Recipient, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Recipient, len(d.admins))
	copy(out, d.admins)
	return out, nil
}

func (d *StaticDirectory) User(_ context.Context, id uuid.UUID) (Recipient, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	user, ok := d.users[id]
	if !ok {
		return Recipient{}, fmt.Errorf("%w: %s", ErrRecipientUnknown, id)
	}
	return user, nil
}

func resolveRecipients(ctx context.Context, directory Directory, event Event) ([]Recipient, error) {
	switch event.Kind {
	case KindSubmittedForApproval:
		return directory.Administrators(ctx)
	case KindApproved, KindRejected:
		author, err := directory.User(ctx, event.Content.AuthorID)
		if err != nil {
			return nil, err
		}
		return []Recipient{author}, nil
	default:
		return nil, fmt.Errorf("notifications: unsupported kind %q", event.Kind)
	}
}
