// internal/app/system/mailer/mailer.go

// Package mailer sends transactional email over SMTP. It is an interface
// boundary only: callers build an Email (usually through the template
// helpers in this package) and hand it to Send. A Mailer with no host
// configured drops messages silently, so features can always call Send
// without checking whether email is set up.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Email is a single outbound message. HTMLBody is optional; when present
// the message is sent as multipart/alternative.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string // e.g. noreply@arenahub.example
	FromName string // e.g. ArenaHub
}

// Mailer sends email through a single SMTP endpoint.
type Mailer struct {
	cfg Config
	log *zap.Logger
}

// New constructs a Mailer. An empty Host disables sending.
func New(cfg Config, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: logger}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool {
	return m != nil && m.cfg.Host != ""
}

// Send delivers the email. When the mailer is disabled the message is
// logged and dropped without error, so notification paths never fail a
// user action over mail trouble.
func (m *Mailer) Send(ctx context.Context, email Email) error {
	if !m.Enabled() {
		if m != nil && m.log != nil {
			m.log.Info("mailer disabled; dropping email",
				zap.String("to", email.To),
				zap.String("subject", email.Subject))
		}
		return nil
	}

	msg := m.buildMessage(email)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.cfg.From, []string{email.To}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			m.log.Error("smtp send failed",
				zap.Error(err),
				zap.String("to", email.To),
				zap.String("subject", email.Subject))
			return err
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mailer) buildMessage(email Email) []byte {
	from := m.cfg.From
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", email.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", email.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")

	if email.HTMLBody == "" {
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		b.WriteString(email.TextBody)
		return []byte(b.String())
	}

	const boundary = "arenahub-alt"
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, email.TextBody)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, email.HTMLBody)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
