// Package mail implementa notification.Sender sobre SMTP (gomail) y sobre el log.
package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/Expedientes-api/internal/application/notification"
	"github.com/jhoicas/Expedientes-api/pkg/config"
)

var _ notification.Sender = (*SMTPSender)(nil)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender entrega correos de texto plano. Cada envío abre su propia conexión.
type SMTPSender struct {
	from   string
	dialer dialer
}

// NewSMTPSender construye el sender a partir de SMTP_*.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

// Send respeta la cancelación del contexto aunque gomail no la soporte:
// si ctx vence, se devuelve el error y la conexión en curso termina por su cuenta.
func (s *SMTPSender) Send(ctx context.Context, msg notification.Message) error {
	m := buildMessage(s.from, msg)
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", msg.To, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send to %s: %w", msg.To, ctx.Err())
	}
}

func buildMessage(from string, msg notification.Message) *gomail.Message {
	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	return m
}
