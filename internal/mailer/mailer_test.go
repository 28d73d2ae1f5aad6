package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

func warningMessage(mailType, lang string) domain.MailMessage {
	return domain.MailMessage{
		Type:     mailType,
		To:       "driver@example.com",
		Language: lang,
		Data: domain.WarningMailData{
			FullName:    "Marie Tremblay",
			Raison:      "Late arrival",
			Description: "Arrived 40 minutes late",
			Severity:    domain.SeverityMedium,
			Date:        "2024-10-20T08:00:00Z",
			SusNombre:   2,
		},
	}
}

func TestRenderer(t *testing.T) {
	r, err := NewRenderer("dispatch@example.com")
	require.NoError(t, err)

	subject, body, err := r.Render(warningMessage(domain.MailTypeWarningIssued, "en"))
	require.NoError(t, err)
	assert.Equal(t, "Dispatch - New warning on your file", subject)
	assert.Contains(t, body, "Hello Marie Tremblay")
	assert.Contains(t, body, "Late arrival")
	assert.Contains(t, body, "2024-10-20")
	assert.NotContains(t, body, "08:00")

	subject, body, err = r.Render(warningMessage(domain.MailTypeSuspensionIssued, "fr-CA"))
	require.NoError(t, err)
	assert.Equal(t, "Dispatch - Suspension de quarts", subject)
	assert.Contains(t, body, "Bonjour Marie Tremblay")
	assert.Contains(t, body, "2 quart(s)")

	subject, body, err = r.Render(warningMessage(domain.MailTypeSuspensionRetracted, "en"))
	require.NoError(t, err)
	assert.Equal(t, "Dispatch - Suspension withdrawn", subject)
	assert.Contains(t, body, "2 shift(s) dated 2024-10-20 has been withdrawn")

	subject, body, err = r.Render(warningMessage(domain.MailTypeSuspensionRetracted, "fr"))
	require.NoError(t, err)
	assert.Equal(t, "Dispatch - Suspension annulée", subject)
	assert.Contains(t, body, "a été annulée")

	_, _, err = r.Render(warningMessage("create_user", "en"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	msg, err := r.Build(warningMessage(domain.MailTypeWarningIssued, "fr"))
	require.NoError(t, err)
	header := msg.GetGenHeader(mail.HeaderSubject)
	require.Len(t, header, 1)
	// 非 ASCII 主题按 RFC 2047 编码
	subject, err = new(mime.WordDecoder).DecodeHeader(header[0])
	require.NoError(t, err)
	assert.Equal(t, "Dispatch - Nouvel avertissement à votre dossier", subject)

	bad := warningMessage(domain.MailTypeWarningIssued, "en")
	bad.To = "not an address"
	_, err = r.Build(bad)
	assert.Error(t, err)
}

type fakeSender struct {
	err  error
	sent []*mail.Msg
}

func (f *fakeSender) DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

type ackRecorder struct {
	acked   int
	nacked  int
	requeue []bool
}

func (a *ackRecorder) Ack(tag uint64, multiple bool) error {
	a.acked++
	return nil
}

func (a *ackRecorder) Nack(tag uint64, multiple bool, requeue bool) error {
	a.nacked++
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func runWorker(t *testing.T, sender *fakeSender, bodies ...[]byte) *ackRecorder {
	t.Helper()

	r, err := NewRenderer("dispatch@example.com")
	require.NoError(t, err)
	w := NewWorker(r, sender, time.Second)

	acks := &ackRecorder{}
	deliveries := make(chan amqp.Delivery, len(bodies))
	for _, body := range bodies {
		deliveries <- amqp.Delivery{Acknowledger: acks, Body: body}
	}
	close(deliveries)

	w.Run(context.Background(), deliveries)
	return acks
}

func TestWorker(t *testing.T) {
	good, err := json.Marshal(warningMessage(domain.MailTypeSuspensionIssued, "fr"))
	require.NoError(t, err)
	unsupported, err := json.Marshal(warningMessage("reset_password", "en"))
	require.NoError(t, err)

	t.Run("sent messages are acked", func(t *testing.T) {
		sender := &fakeSender{}
		acks := runWorker(t, sender, good)
		assert.Equal(t, 1, acks.acked)
		assert.Len(t, sender.sent, 1)
	})

	t.Run("broken messages are dropped", func(t *testing.T) {
		acks := runWorker(t, &fakeSender{}, []byte("{"), unsupported)
		assert.Equal(t, 0, acks.acked)
		assert.Equal(t, []bool{false, false}, acks.requeue)
	})

	t.Run("send failures are requeued", func(t *testing.T) {
		acks := runWorker(t, &fakeSender{err: errors.New("smtp down")}, good)
		assert.Equal(t, []bool{true}, acks.requeue)
	})
}
