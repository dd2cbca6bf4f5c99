package content

import (
	"context"
	"time"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/bulk"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/notifications"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/validation"
	"github.com/autophileaozora/smk-kristen5-website-sub003/pkg/activity"
	"github.com/autophileaozora/smk-kristen5-website-sub003/pkg/interfaces"
	"github.com/google/uuid"
)

// Notifier schedules a notification for a committed transition. It must not
// block on delivery.
type Notifier interface {
	Dispatch(ctx context.Context, event notifications.Event)
}

// BodyRenderer converts a Markdown body to HTML for the public read path.
type BodyRenderer interface {
	RenderString(source string) (string, error)
}

// IDGenerator produces identifiers for new items and events.
type IDGenerator func() uuid.UUID

// ServiceOption configures the service.
type ServiceOption func(*service)

// WithClock overrides the time source. Returned times are converted to UTC.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = func() time.Time { return clock().UTC() }
		}
	}
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.newID = generator
		}
	}
}

// WithNotifier wires transition notifications.
func WithNotifier(notifier Notifier) ServiceOption {
	return func(s *service) {
		s.notifier = notifier
	}
}

// WithActivityEmitter wires activity events.
func WithActivityEmitter(emitter *activity.Emitter) ServiceOption {
	return func(s *service) {
		if emitter != nil {
			s.activity = emitter
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSchemas replaces the metadata schema registry.
func WithSchemas(registry *validation.Registry) ServiceOption {
	return func(s *service) {
		if registry != nil {
			s.schemas = registry
		}
	}
}

// WithRenderer sets the Markdown renderer used by GetPublished.
func WithRenderer(renderer BodyRenderer) ServiceOption {
	return func(s *service) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithBulkOptions configures the coordinator behind BulkDelete.
func WithBulkOptions(opts ...bulk.Option) ServiceOption {
	return func(s *service) {
		s.bulkOptions = append(s.bulkOptions, opts...)
	}
}

// WithMaxBulkItems caps the number of ids one bulk request may carry.
func WithMaxBulkItems(limit int) ServiceOption {
	return func(s *service) {
		if limit > 0 {
			s.maxBulkItems = limit
		}
	}
}
