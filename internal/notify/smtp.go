package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// Message is a rendered e-mail ready for a Transport.
type Message struct {
	FromName string
	From     string
	To       string
	Subject  string
	Text     string
	HTML     string
}

// Transport delivers a message and returns its Message-ID.
type Transport interface {
	Send(ctx context.Context, msg *Message) (string, error)
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPTransport sends each message over a fresh SMTP connection.
type SMTPTransport struct {
	cfg SMTPConfig
}

var _ Transport = (*SMTPTransport)(nil)

func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

func (t *SMTPTransport) Send(ctx context.Context, msg *Message) (string, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(msg.FromName, msg.From); err != nil {
		return "", fmt.Errorf("from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return "", fmt.Errorf("to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)

	id := messageID(msg.From)
	m.SetMessageIDWithValue(id)

	opts := []mail.Option{
		mail.WithPort(t.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if t.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.cfg.Username),
			mail.WithPassword(t.cfg.Password),
		)
	}

	c, err := mail.NewClient(t.cfg.Host, opts...)
	if err != nil {
		return "", fmt.Errorf("smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}

	return "<" + id + ">", nil
}

func messageID(from string) string {
	domain := "localhost"
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		domain = from[i+1:]
	}
	return uuid.NewString() + "@" + domain
}
