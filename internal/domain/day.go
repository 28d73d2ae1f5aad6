package domain

import "time"

// DayLayout 是与前端约定的日期格式，例如 "Sun Oct 20 2024"
const DayLayout = "Mon Jan 02 2006"

func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

func ParseDay(s string) (time.Time, error) {
	return time.Parse(DayLayout, s)
}
