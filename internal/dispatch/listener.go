package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

// Listener 把服务器广播的出勤/已读事件合并到 RecordStore
type Listener struct {
	store   *RecordStore
	dspCode string
	// OnApply 在事件成功合并后调用，可以为 nil
	OnApply func(evt domain.DisponibilityEvent)
}

func NewListener(store *RecordStore, session *Session) *Listener {
	return &Listener{store: store, dspCode: session.DSPCode}
}

// Run 消费 deliveries 直到 ctx 结束或通道关闭
func (l *Listener) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}

			var evt domain.DisponibilityEvent
			if err := json.Unmarshal(d.Body, &evt); err != nil {
				slog.Warn("无法解析事件", "error", err)
				continue
			}

			applied, err := l.Apply(evt)
			switch {
			case errors.Is(err, ErrPresenceBeforeConfirmation):
				slog.Warn("忽略未确认记录的出勤事件", "id", evt.ID)
			case err != nil:
				slog.Warn("无法应用事件", "id", evt.ID, "kind", evt.Kind, "error", err)
			case applied && l.OnApply != nil:
				l.OnApply(evt)
			}
		}
	}
}

// Apply 合并一个事件，其他 DSP 的事件和当前没有加载的记录会被忽略
func (l *Listener) Apply(evt domain.DisponibilityEvent) (bool, error) {
	if evt.DSPCode != l.dspCode {
		return false, nil
	}

	switch evt.Kind {
	case domain.EventPresence:
		if evt.Presence == nil || !evt.Presence.Valid() {
			return false, errors.New("presence event without a valid presence")
		}
		return l.store.ApplyPresenceUpdate(evt.ID, *evt.Presence, evt.Version)
	case domain.EventSeen:
		if evt.Seen == nil {
			return false, errors.New("seen event without a value")
		}
		return l.store.ApplySeenUpdate(evt.ID, *evt.Seen, evt.Version), nil
	default:
		return false, nil
	}
}
