package domain

import "time"

type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionAccepted Decision = "accepted"
	DecisionRejected Decision = "rejected"
)

type Confirmation string

const (
	ConfirmationUnset     Confirmation = ""
	ConfirmationConfirmed Confirmation = "confirmed"
	ConfirmationCanceled  Confirmation = "canceled"
)

type Presence string

const (
	PresenceConfirmed Presence = "confirmed"
	PresenceRejected  Presence = "rejected"
)

func (c Confirmation) Valid() bool {
	return c == ConfirmationConfirmed || c == ConfirmationCanceled
}

func (p Presence) Valid() bool {
	return p == PresenceConfirmed || p == PresenceRejected
}

// Disponibility 是员工对某一天某个班次的可用性记录
type Disponibility struct {
	ID           string       `json:"id"`
	EmployeeID   string       `json:"employeeId"`
	ShiftID      string       `json:"shiftId"`
	SelectedDay  string       `json:"selectedDay"` // DayLayout 格式
	Decisions    Decision     `json:"decisions"`
	Confirmation Confirmation `json:"confirmation"`
	Presence     *Presence    `json:"presence,omitempty"`
	Seen         *bool        `json:"seen,omitempty"`
	Suspension   *bool        `json:"suspension,omitempty"`
	DSPCode      string       `json:"-"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Version      int32        `json:"version"`
}

func (d *Disponibility) IsSuspended() bool {
	return d.Suspension != nil && *d.Suspension
}

// ConfirmationItem 是批量确认请求中的一项
type ConfirmationItem struct {
	EmployeeID  string       `json:"employeeId"`
	SelectedDay string       `json:"selectedDay"`
	ShiftID     string       `json:"shiftId"`
	Status      Confirmation `json:"status"`
}
