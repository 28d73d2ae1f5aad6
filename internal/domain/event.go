package domain

type EventKind string

const (
	EventPresence EventKind = "presence"
	EventSeen     EventKind = "seen"
)

// DisponibilityEvent 在出勤或已读状态变化时通过 RabbitMQ 广播
type DisponibilityEvent struct {
	Kind     EventKind `json:"kind"`
	ID       string    `json:"id"`
	DSPCode  string    `json:"dspCode"`
	Presence *Presence `json:"presence,omitempty"`
	Seen     *bool     `json:"seen,omitempty"`
	Version  int32     `json:"version"`
}
