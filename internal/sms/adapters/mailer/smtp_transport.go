package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"

	mail "github.com/go-mail/mail"
)

// SMTPTransport delivers messages over SMTP using go-mail.
type SMTPTransport struct {
	host    string
	port    int
	user    string
	pass    string
	tlsMode string // "starttls" | "ssl" | "none"
	logger  *slog.Logger
}

func NewSMTPTransport(host string, port int, user, pass, tlsMode string, logger *slog.Logger) *SMTPTransport {
	if tlsMode == "" {
		tlsMode = "starttls"
	}
	return &SMTPTransport{
		host:    host,
		port:    port,
		user:    user,
		pass:    pass,
		tlsMode: tlsMode,
		logger:  logger.With("component", "smtp_transport", "host", host, "port", port),
	}
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	m := mail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	user, pass := t.user, t.pass
	if msg.AuthUser != "" {
		user, pass = msg.AuthUser, msg.AuthPassword
	}

	d := mail.NewDialer(t.host, t.port, user, pass)
	d.TLSConfig = &tls.Config{ServerName: t.host}
	switch t.tlsMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = nil
		d.StartTLSPolicy = mail.NoStartTLS
	}

	if err := d.DialAndSend(m); err != nil {
		t.logger.ErrorContext(ctx, "SMTP send failed", "error", err, "recipient_count", len(msg.To))
		return fmt.Errorf("smtp send: %w", err)
	}
	t.logger.InfoContext(ctx, "SMTP send succeeded", "recipient_count", len(msg.To))
	return nil
}
