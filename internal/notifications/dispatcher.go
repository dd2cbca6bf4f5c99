package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/identity"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/logging"
	"github.com/autophileaozora/smk-kristen5-website-sub003/pkg/interfaces"
)

const defaultDeliveryTimeout = 15 * time.Second

// Dispatcher delivers notification events in the background. Delivery is
// best-effort and at-most-once: failures are logged and recorded in the
// history, never returned to the caller that scheduled them.
type Dispatcher struct {
	sender    Sender
	directory Directory
	templates *TemplateStore
	history   *History
	logger    interfaces.Logger
	channel   Channel
	siteName  string
	timeout   time.Duration
	now       func() time.Time

	wg sync.WaitGroup
}

// Option configures the dispatcher.
type Option func(*Dispatcher)

// WithTemplates overrides the default template store.
func WithTemplates(store *TemplateStore) Option {
	return func(d *Dispatcher) {
		if store != nil {
			d.templates = store
		}
	}
}

// WithHistory overrides the delivery history.
func WithHistory(history *History) Option {
	return func(d *Dispatcher) {
		if history != nil {
			d.history = history
		}
	}
}

// WithLogger sets the logger used for delivery outcomes.
func WithLogger(logger interfaces.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithChannel labels deliveries with the transport channel.
func WithChannel(channel Channel) Option {
	return func(d *Dispatcher) {
		if channel != "" {
			d.channel = channel
		}
	}
}

// WithSiteName sets the name used in message subjects.
func WithSiteName(name string) Option {
	return func(d *Dispatcher) {
		if name != "" {
			d.siteName = name
		}
	}
}

// WithTimeout bounds a single event's delivery, recipients included.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithClock overrides the clock used for SentAt timestamps.
func WithClock(clock func() time.Time) Option {
	return func(d *Dispatcher) {
		if clock != nil {
			d.now = clock
		}
	}
}

// NewDispatcher wires a dispatcher to a sender and a recipient directory.
func NewDispatcher(sender Sender, directory Directory, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sender:    sender,
		directory: directory,
		templates: NewTemplateStore(),
		history:   NewHistory(200),
		logger:    logging.NoOp(),
		channel:   ChannelEmail,
		siteName:  "Portal",
		timeout:   defaultDeliveryTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch schedules delivery of event and returns immediately. The caller's
// cancellation does not abort delivery of an already committed transition;
// only the dispatcher timeout does.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(detached, event)
	}()
}

// Wait blocks until every scheduled delivery has finished.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

// History returns the recent delivery attempts.
func (d *Dispatcher) History() []Record {
	if d == nil {
		return nil
	}
	return d.history.Recent()
}

func (d *Dispatcher) deliver(ctx context.Context, event Event) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	logger := logging.WithFields(d.logger, map[string]any{
		"event_id":   event.ID,
		"kind":       event.Kind,
		"content_id": event.Content.ID,
	}).WithContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("notification.delivery.panic", "panic", r)
		}
	}()

	if d.sender == nil || d.directory == nil {
		logger.Warn("notification.delivery.skipped", "reason", "dispatcher not configured")
		return
	}

	recipients, err := resolveRecipients(ctx, d.directory, event)
	if err != nil {
		logger.Error("notification.recipients.failed", "error", err)
		return
	}
	if len(recipients) == 0 {
		logger.Warn("notification.recipients.empty")
		return
	}

	seen := make(map[string]struct{}, len(recipients))
	for _, recipient := range recipients {
		if _, dup := seen[recipient.Address]; dup {
			continue
		}
		seen[recipient.Address] = struct{}{}
		d.deliverTo(ctx, logger, event, recipient)
	}
}

func (d *Dispatcher) deliverTo(ctx context.Context, logger interfaces.Logger, event Event, recipient Recipient) {
	delivery := Delivery{
		ID:        identity.DeliveryUUID(event.ID, recipient.Address),
		EventID:   event.ID,
		Kind:      event.Kind,
		Channel:   d.channel,
		Recipient: recipient,
	}

	message, err := d.templates.Render(event.Kind, TemplateData{
		Event:     event,
		Content:   event.Content,
		Recipient: recipient,
		SiteName:  d.siteName,
	})
	if err != nil {
		d.fail(logger, delivery, err)
		return
	}
	delivery.Subject = message.Subject
	delivery.Body = message.Body
	delivery.SentAt = d.now()

	if err := d.sender.Send(ctx, delivery); err != nil {
		d.fail(logger, delivery, err)
		return
	}
	d.history.Add(Record{Delivery: delivery, Status: StatusSent})
	logger.Info("notification.delivery.sent", "delivery_id", delivery.ID, "recipient", recipient.Address)
}

func (d *Dispatcher) fail(logger interfaces.Logger, delivery Delivery, err error) {
	d.history.Add(Record{Delivery: delivery, Status: StatusFailed, Error: err.Error()})
	logger.Error("notification.delivery.failed",
		"delivery_id", delivery.ID,
		"recipient", delivery.Recipient.Address,
		"error", err,
	)
}
