package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Expedientes-api/internal/application/notification"
)

var _ notification.Sender = (*LogSender)(nil)

// LogSender se usa cuando no hay SMTP configurado: registra el correo y lo da por entregado.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg notification.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("body_len", len(msg.Body)).
		Msg("correo no enviado (SMTP deshabilitado)")
	return nil
}
