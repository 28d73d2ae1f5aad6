package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

type recordedPublish struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	published []recordedPublish
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.published = append(f.published, recordedPublish{exchange: exchange, key: key, msg: msg})
	return nil
}

func TestPublisher_RoutesMailAndEvents(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{ch: ch, timeout: time.Second}

	require.NoError(t, p.PublishMail(domain.MailMessage{Type: domain.MailTypeWarningIssued, To: "a@b.c", Language: "fr"}))

	seen := true
	require.NoError(t, p.PublishEvent(domain.DisponibilityEvent{Kind: domain.EventSeen, ID: "d1", Seen: &seen, Version: 4}))

	require.Len(t, ch.published, 2)
	assert.Equal(t, "", ch.published[0].exchange)
	assert.Equal(t, MailQueue, ch.published[0].key)
	assert.Equal(t, EventsExchange, ch.published[1].exchange)
	assert.Equal(t, "application/json", ch.published[1].msg.ContentType)

	var evt domain.DisponibilityEvent
	require.NoError(t, json.Unmarshal(ch.published[1].msg.Body, &evt))
	assert.Equal(t, "d1", evt.ID)
	assert.Equal(t, int32(4), evt.Version)
	require.NotNil(t, evt.Seen)
	assert.True(t, *evt.Seen)
}
