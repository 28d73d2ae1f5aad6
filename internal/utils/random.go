package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

var commonFirstNames = []string{
	"Liam", "Emma", "Noah", "Olivia", "Lucas", "Chloé", "Gabriel", "Léa", "Nathan", "Alice",
	"William", "Jade", "Thomas", "Camille", "Félix", "Zoé", "Samuel", "Rose", "Jacob", "Maëlle",
}

var commonLastNames = []string{
	"Tremblay", "Gagnon", "Roy", "Côté", "Bouchard", "Gauthier", "Morin", "Lavoie", "Fortin", "Gagné",
	"Smith", "Brown", "Wilson", "Martin", "Taylor", "Lee", "Thompson", "White", "Harris", "Clark",
}

var scoreCards = []domain.ScoreCard{
	domain.ScoreFantastic,
	domain.ScoreGreat,
	domain.ScoreFair,
	domain.ScorePoor,
	domain.ScoreNewDA,
	"",
}

var decisions = []domain.Decision{
	domain.DecisionPending,
	domain.DecisionAccepted,
	domain.DecisionAccepted,
	domain.DecisionRejected,
}

var digits = "0123456789"

func randomFrom[T any](items []T) T {
	return items[rand.Intn(len(items))]
}

// asciiFold 去掉常见的法语重音，方便生成用户名和邮箱
var asciiFold = strings.NewReplacer("é", "e", "è", "e", "ê", "e", "ë", "e", "ô", "o", "ç", "c", "à", "a", "É", "E")

func GenerateUsernameFromName(firstName, lastName string) string {
	username := strings.ToLower(asciiFold.Replace(firstName[:1] + lastName))

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomEmployee(dspCode string, emailDomainName string) *domain.Employee {
	firstName := randomFrom(commonFirstNames)
	lastName := randomFrom(commonLastNames)
	language := "en"
	if rand.Intn(2) == 0 {
		language = "fr"
	}

	return &domain.Employee{
		ID:        uuid.NewString(),
		FirstName: firstName,
		LastName:  lastName,
		Email:     GenerateUsernameFromName(firstName, lastName) + "@" + emailDomainName,
		Language:  language,
		ScoreCard: randomFrom(scoreCards),
		DSPCode:   dspCode,
	}
}

func GenerateRandomDispatcher(dspCode string, password string, emailDomainName string) (*domain.User, error) {
	firstName := randomFrom(commonFirstNames)
	lastName := randomFrom(commonLastNames)
	username := GenerateUsernameFromName(firstName, lastName)

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     firstName + " " + lastName,
		Email:        username + "@" + emailDomainName,
		Role:         domain.RoleDispatcher,
		DSPCode:      dspCode,
		Language:     "en",
	}, nil
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[rand.Intn(len(letters))]
	}
	return string(randomPassword)
}

var defaultShifts = []struct {
	name  string
	color string
	start string
	end   string
}{
	{"Standard Route", "#2e7d32", "07:00:00", "17:30:00"},
	{"Early Sweeper", "#1565c0", "06:00:00", "14:00:00"},
	{"Late Rescue", "#ef6c00", "11:30:00", "21:30:00"},
	{"Training", "#6a1b9a", "08:00:00", "16:00:00"},
}

func GenerateDefaultShifts(dspCode string) []*domain.Shift {
	shifts := make([]*domain.Shift, 0, len(defaultShifts))
	for _, s := range defaultShifts {
		shifts = append(shifts, &domain.Shift{
			ID:        uuid.NewString(),
			Name:      s.name,
			Color:     s.color,
			StartTime: s.start,
			EndTime:   s.end,
			DSPCode:   dspCode,
		})
	}
	return shifts
}

// GenerateRandomDisponibilities 为员工在 days 天内的随机班次生成可用性记录，每天最多一个班次
func GenerateRandomDisponibilities(employee *domain.Employee, shifts []*domain.Shift, start time.Time, days int) []*domain.Disponibility {
	result := make([]*domain.Disponibility, 0, days)
	for i := 0; i < days; i++ {
		// 大约三分之一的日子不提交
		if rand.Intn(3) == 0 {
			continue
		}

		result = append(result, &domain.Disponibility{
			ID:          uuid.NewString(),
			EmployeeID:  employee.ID,
			ShiftID:     randomFrom(shifts).ID,
			SelectedDay: domain.FormatDay(start.AddDate(0, 0, i)),
			Decisions:   randomFrom(decisions),
			DSPCode:     employee.DSPCode,
		})
	}
	return result
}

var defaultTemplates = []domain.WarningTemplate{
	{Raison: "Late arrival", Description: "Arrived at the station after the scheduled start time.", Severity: domain.SeverityLow, Type: domain.WarningTypeWarning},
	{Raison: "No call no show", Description: "Did not show up for a confirmed shift without notice.", Severity: domain.SeverityHigh, Type: domain.WarningTypeWarning},
	{Raison: "Unsafe driving", Description: "Telematics reported repeated harsh braking and speeding.", Severity: domain.SeverityMedium, Type: domain.WarningTypeWarning},
	{Raison: "Repeated no show", Description: "Suspended from upcoming shifts after repeated absences.", Type: domain.WarningTypeSuspension},
}

func GenerateDefaultWarningTemplates(dspCode string) []*domain.WarningTemplate {
	templates := make([]*domain.WarningTemplate, 0, len(defaultTemplates))
	for _, t := range defaultTemplates {
		t.ID = uuid.NewString()
		t.DSPCode = dspCode
		templates = append(templates, &t)
	}
	return templates
}

func DescribeShift(s *domain.Shift) string {
	return fmt.Sprintf("%s (%s-%s)", s.Name, s.StartTime, s.EndTime)
}
