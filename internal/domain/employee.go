package domain

type ScoreCard string

const (
	ScoreFantastic ScoreCard = "Fantastic"
	ScoreGreat     ScoreCard = "Great"
	ScoreFair      ScoreCard = "Fair"
	ScorePoor      ScoreCard = "Poor"
	ScoreNewDA     ScoreCard = "New DA"
)

type Employee struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Language  string    `json:"language"`
	ScoreCard ScoreCard `json:"scoreCard"`
	DSPCode   string    `json:"-"`
}

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}
