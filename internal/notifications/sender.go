package notifications

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"sync"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/logging"
	"github.com/autophileaozora/smk-kristen5-website-sub003/pkg/interfaces"
)

// Sender delivers a rendered notification to one recipient.
type Sender interface {
	Send(ctx context.Context, delivery Delivery) error
}

// SenderFunc adapts a function into a Sender.
type SenderFunc func(ctx context.Context, delivery Delivery) error

func (fn SenderFunc) Send(ctx context.Context, delivery Delivery) error {
	return fn(ctx, delivery)
}

// MemorySender stores deliveries in memory for inspection/testing.
type MemorySender struct {
	mu         sync.Mutex
	deliveries []Delivery
	err        error
}

// NewMemorySender constructs an empty memory sender.
func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

// Fail makes every subsequent Send return err without recording.
func (m *MemorySender) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Send records the delivery.
func (m *MemorySender) Send(_ context.Context, delivery Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.deliveries = append(m.deliveries, delivery)
	return nil
}

// Deliveries returns a copy of deliveries seen so far.
func (m *MemorySender) Deliveries() []Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Delivery, len(m.deliveries))
	copy(out, m.deliveries)
	return out
}

// LogSender writes deliveries to a logger instead of a mail transport. It is
// the default when no SMTP host is configured.
type LogSender struct {
	logger interfaces.Logger
}

// NewLogSender constructs a sender that logs at info level.
func NewLogSender(logger interfaces.Logger) *LogSender {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, delivery Delivery) error {
	s.logger.WithContext(ctx).Info("notification.delivery.logged",
		"delivery_id", delivery.ID,
		"kind", delivery.Kind,
		"recipient", delivery.Recipient.Address,
		"subject", delivery.Subject,
	)
	return nil
}

// SMTPConfig configures SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

var ErrSMTPHostRequired = errors.New("notifications: smtp host required")

// SMTPSender delivers plain-text email through an SMTP relay.
type SMTPSender struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender validates cfg and returns a sender bound to it.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, ErrSMTPHostRequired
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	return &SMTPSender{cfg: cfg, send: smtp.SendMail}, nil
}

func (s *SMTPSender) Send(ctx context.Context, delivery Delivery) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	address := strings.TrimSpace(delivery.Recipient.Address)
	if address == "" {
		return fmt.Errorf("notifications: delivery %s has no recipient address", delivery.ID)
	}
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	return s.send(addr, auth, s.cfg.From, []string{address}, composeMail(s.cfg.From, address, delivery))
}

func composeMail(from, to string, delivery Delivery) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + delivery.Subject + "\r\n")
	b.WriteString("Message-ID: <" + delivery.ID.String() + "@portal>\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(delivery.Body, "\n", "\r\n"))
	return []byte(b.String())
}
