package domain

type Shift struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	StartTime string `json:"starttime"`
	EndTime   string `json:"endtime"`
	DSPCode   string `json:"-"`
}
