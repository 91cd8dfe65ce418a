// Package notify delivers finished reports by email.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"fieldreport/internal/domain"
)

const (
	DefaultHost    = "smtp.gmail.com"
	DefaultPort    = 587
	DefaultTimeout = 30 * time.Second

	implicitTLSPort = 465
)

// Config holds the SMTP settings. It is read once at start and never changed.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// Configured reports whether credentials are present. Without them every
// send is skipped.
func (c Config) Configured() bool {
	return c.Username != "" && c.Password != ""
}

func (c Config) sender() string {
	if c.From != "" {
		return c.From
	}
	return c.Username
}

// Message is one outgoing email.
type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments domain.AttachmentSet
}

// SendFunc transmits a composed message. The default opens one SMTP session.
type SendFunc func(ctx context.Context, msg *mail.Msg) error

// Mailer sends report messages. It is safe for concurrent use: every Send
// opens and closes its own session.
type Mailer struct {
	cfg    Config
	logger zerolog.Logger
	send   SendFunc
}

// Option configures a Mailer.
type Option func(*Mailer)

// WithSendFunc replaces the SMTP transport.
func WithSendFunc(fn SendFunc) Option {
	return func(m *Mailer) {
		if fn != nil {
			m.send = fn
		}
	}
}

// NewMailer creates a Mailer with defaults applied to cfg.
func NewMailer(cfg Config, logger zerolog.Logger, opts ...Option) *Mailer {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port <= 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	m := &Mailer{cfg: cfg, logger: logger}
	m.send = m.dial
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Configured reports whether the mailer will attempt delivery.
func (m *Mailer) Configured() bool { return m.cfg.Configured() }

// Send makes exactly one delivery attempt. It never returns an error: every
// failure, including a panic in the transport, becomes a failed outcome.
func (m *Mailer) Send(ctx context.Context, msg Message) (out domain.DeliveryOutcome) {
	to := strings.TrimSpace(msg.To)
	log := m.logger.With().Str("to", to).Str("subject", msg.Subject).Logger()
	if !m.cfg.Configured() {
		log.Info().Int("attachments", len(msg.Attachments)).Msg("smtp not configured, delivery skipped")
		return domain.Skipped("smtp not configured")
	}
	if to == "" {
		log.Warn().Msg("no recipient, delivery skipped")
		return domain.Skipped("no recipient")
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("notify: panic during send: %v", r)
			log.Error().Err(err).Msg("delivery failed")
			out = domain.Failed(to, err)
		}
	}()

	msg.To = to
	composed, err := m.Compose(msg)
	if err != nil {
		log.Error().Err(err).Msg("delivery failed")
		return domain.Failed(to, err)
	}
	start := time.Now()
	if err := m.send(ctx, composed); err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("delivery failed")
		return domain.Failed(to, err)
	}
	log.Info().
		Int("attachments", len(msg.Attachments)).
		Dur("elapsed", time.Since(start)).
		Msg("report delivered")
	return domain.DeliveryOutcome{Status: domain.DeliverySent, Recipient: to}
}

// Compose builds the MIME message: a plain-text body followed by one
// attachment part per entry.
func (m *Mailer) Compose(msg Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(m.cfg.sender()); err != nil {
		return nil, fmt.Errorf("notify: sender: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("notify: recipient: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetDate()
	out.SetMessageID()
	out.SetBodyString(mail.TypeTextPlain, msg.Body)
	for _, a := range msg.Attachments {
		ct := mail.ContentType(a.ContentType)
		if ct == "" {
			ct = mail.TypeAppOctetStream
		}
		if err := out.AttachReader(a.Filename, bytes.NewReader(a.Data), mail.WithFileContentType(ct)); err != nil {
			return nil, fmt.Errorf("notify: attach %s: %w", a.Filename, err)
		}
	}
	return out, nil
}

// dial opens one session, upgrades it before authenticating and closes it on
// every path.
func (m *Mailer) dial(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTimeout(m.cfg.Timeout),
	}
	if m.cfg.Port == implicitTLSPort {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("notify: client: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	return nil
}

