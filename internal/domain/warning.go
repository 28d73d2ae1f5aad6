package domain

import "time"

type WarningType string

const (
	WarningTypeWarning    WarningType = "warning"
	WarningTypeSuspension WarningType = "suspension"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Warning struct {
	ID          string      `json:"id"`
	EmployeeID  string      `json:"employeID"`
	Type        WarningType `json:"type"`
	Raison      string      `json:"raison"`
	Description string      `json:"description"`
	Severity    Severity    `json:"severity"`
	Date        string      `json:"date"`
	Link        string      `json:"link"`
	Photo       string      `json:"photo"`
	SusNombre   int         `json:"susNombre"`
	Signature   bool        `json:"signature"`
	Read        bool        `json:"read"`
	DSPCode     string      `json:"-"`
	CreatedAt   time.Time   `json:"createdAt"`
	Version     int32       `json:"-"`
}

type WarningTemplate struct {
	ID          string      `json:"id"`
	Raison      string      `json:"raison"`
	Description string      `json:"description"`
	Severity    Severity    `json:"severity"`
	Type        WarningType `json:"type"`
	Link        string      `json:"link"`
	DSPCode     string      `json:"-"`
	CreatedAt   time.Time   `json:"createdAt"`
}
