package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/Expedientes-api/internal/application/notification"
)

type fakeDialer struct {
	err   error
	delay time.Duration
	sent  []*gomail.Message
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	time.Sleep(d.delay)
	d.sent = append(d.sent, m...)
	return d.err
}

var msg = notification.Message{To: "jefe@example.org", Subject: "Expediente SM-001", Body: "Revisar"}

func TestSMTPSender_Send(t *testing.T) {
	d := &fakeDialer{}
	s := &SMTPSender{from: "expedientes@example.org", dialer: d}

	require.NoError(t, s.Send(context.Background(), msg))
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"jefe@example.org"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Expediente SM-001"}, d.sent[0].GetHeader("Subject"))
}

func TestSMTPSender_Error(t *testing.T) {
	s := &SMTPSender{from: "x@example.org", dialer: &fakeDialer{err: errors.New("535 auth")}}
	err := s.Send(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "535 auth")
}

func TestSMTPSender_ContextoVencido(t *testing.T) {
	s := &SMTPSender{from: "x@example.org", dialer: &fakeDialer{delay: 200 * time.Millisecond}}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := s.Send(ctx, msg)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(zerolog.New(&buf))

	require.NoError(t, s.Send(context.Background(), msg))
	assert.Contains(t, buf.String(), "jefe@example.org")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Send(ctx, msg))
}
