package domain

type MailMessage struct {
	Type     string `json:"type"`
	To       string `json:"to"`
	Language string `json:"language"`
	Data     any    `json:"data"`
}

const (
	MailTypeWarningIssued    = "warning_issued"
	MailTypeSuspensionIssued = "suspension_issued"
	// 停职被撤销，包括创建后补偿删除的情况
	MailTypeSuspensionRetracted = "suspension_retracted"
)

type WarningMailData struct {
	FullName    string   `json:"fullName"`
	Raison      string   `json:"raison"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Date        string   `json:"date"`
	Link        string   `json:"link"`
	SusNombre   int      `json:"susNombre"`
}
