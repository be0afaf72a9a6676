package notification

import "context"

// Message es un correo listo para entregar.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender entrega un mensaje. Las implementaciones viven en infrastructure/mail.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
