// Package mail implementa el transporte de email.
package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/Billing-api/internal/application/notification"
	"github.com/jhoicas/Billing-api/pkg/config"
	"github.com/jhoicas/Billing-api/pkg/logger"
)

var (
	_ notification.Mailer = (*SMTPMailer)(nil)
	_ notification.Mailer = (*LogMailer)(nil)
)

// SMTPMailer envía por SMTP con gomail. Abre una conexión por mensaje.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer construye el transporte SMTP.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

// Send entrega el mensaje. gomail no acepta contexto; se respeta una cancelación previa al envío.
func (m *SMTPMailer) Send(ctx context.Context, msg notification.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gm := buildMessage(m.from, msg)
	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("smtp: enviar %s a %s: %w", msg.Kind, msg.To, err)
	}
	return nil
}

func buildMessage(from string, msg notification.Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetHeader("From", from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTML)
	return gm
}

// LogMailer solo registra el email (desarrollo, sin SMTP configurado).
type LogMailer struct {
	log *logger.Logger
}

// NewLogMailer construye el transporte de desarrollo.
func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{log: log.Named("mail")}
}

// Send registra destinatario y asunto.
func (m *LogMailer) Send(_ context.Context, msg notification.Message) error {
	m.log.Info().
		Str("kind", string(msg.Kind)).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("html_bytes", len(msg.HTML)).
		Msg("email (sin SMTP configurado)")
	return nil
}

// New elige el transporte según la configuración.
func New(cfg config.SMTPConfig, log *logger.Logger) notification.Mailer {
	if cfg.Host == "" {
		return NewLogMailer(log)
	}
	return NewSMTPMailer(cfg)
}
