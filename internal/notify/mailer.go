package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"
)

const subjectOverdue = "Empréstimo atrasado"

// Mailer delivers one message to a set of recipients.
type Mailer interface {
	Send(ctx context.Context, message string, recipients []string) error
}

// LogMailer logs the recipients instead of sending mail.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, message string, recipients []string) error {
	slog.InfoContext(ctx, "mail not sent, no smtp host configured",
		slog.Int("recipients", len(recipients)),
		slog.String("to", strings.Join(recipients, ",")),
		slog.String("message", message),
	)
	return nil
}

// SMTPConfig holds the settings of an SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends a single message with every recipient in Bcc.
type SMTPMailer struct {
	cfg     SMTPConfig
	deliver func(ctx context.Context, msg *mail.Msg) error
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	m := &SMTPMailer{cfg: cfg}
	m.deliver = m.dialAndSend
	return m
}

func (m *SMTPMailer) Send(ctx context.Context, message string, recipients []string) error {
	if len(recipients) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := newMessage(m.cfg.From, message, recipients)
	if err != nil {
		return err
	}
	if err := m.deliver(ctx, msg); err != nil {
		return fmt.Errorf("send mail via %s: %w", m.cfg.Host, err)
	}
	slog.InfoContext(ctx, "mail sent", slog.Int("recipients", len(recipients)))
	return nil
}

func (m *SMTPMailer) newClient() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return mail.NewClient(m.cfg.Host, opts...)
}

func (m *SMTPMailer) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	client, err := m.newClient()
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// newMessage builds the notice. Recipients only go in Bcc so they do not
// see each other.
func newMessage(from, body string, recipients []string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := msg.Bcc(recipients...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(subjectOverdue)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}
