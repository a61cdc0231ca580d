// Package mailer sends plain-text email through SMTP or, in development, the log.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/hugh/muse/pkg/config"
)

const (
	DriverLog  = "log"
	DriverSMTP = "smtp"
)

type Message struct {
	To      []string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the mailer selected by cfg.Driver.
func New(cfg *config.MailConfig, logger *slog.Logger) (Mailer, error) {
	switch cfg.Driver {
	case DriverLog, "":
		return NewLogMailer(cfg.From, logger), nil
	case DriverSMTP:
		if cfg.Host == "" {
			return nil, fmt.Errorf("MAIL_HOST is required for smtp mail")
		}
		return NewSMTPMailer(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported mail driver %q", cfg.Driver)
	}
}

// LogMailer writes messages to the logger instead of sending them.
type LogMailer struct {
	from   string
	logger *slog.Logger
}

func NewLogMailer(from string, logger *slog.Logger) *LogMailer {
	return &LogMailer{from: from, logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Info("email",
		"from", m.from,
		"to", strings.Join(msg.To, ","),
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}

type SMTPMailer struct {
	addr string
	host string
	from string
	auth smtp.Auth
}

func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		addr: cfg.Addr(),
		host: cfg.Host,
		from: cfg.From,
		auth: auth,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := smtp.SendMail(m.addr, m.auth, m.from, msg.To, Render(m.from, msg)); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

// Render formats msg as an RFC 5322 message with a plain-text body.
func Render(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}
