package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"

	"github.com/dspworks/dispatch/backend/internal/dispatch"
	"github.com/dspworks/dispatch/backend/internal/domain"
	"github.com/dspworks/dispatch/backend/internal/i18n"
)

var oct20 = time.Date(2024, time.October, 20, 0, 0, 0, 0, time.UTC)

type memoryBackend struct {
	records    []*domain.Disponibility
	warnings   []*domain.Warning
	templates  []*domain.WarningTemplate
	shifts     []*domain.Shift
	employees  []*domain.Employee
	submitted  [][]domain.ConfirmationItem
	suspended  []string
	photos     []string
	suspendErr error
	deleteErr  error
	nextID     int
}

func newMemoryBackend() *memoryBackend {
	accepted := func(id, employeeID, shiftID string) *domain.Disponibility {
		return &domain.Disponibility{
			ID:          id,
			EmployeeID:  employeeID,
			ShiftID:     shiftID,
			SelectedDay: domain.FormatDay(oct20),
			Decisions:   domain.DecisionAccepted,
			Version:     1,
		}
	}

	return &memoryBackend{
		records: []*domain.Disponibility{
			accepted("d1", "e1", "s-night"),
			accepted("d2", "e2", "s-day"),
			accepted("d3", "e3", "s-day"),
			{ID: "d4", EmployeeID: "e1", ShiftID: "s-day", SelectedDay: domain.FormatDay(oct20), Decisions: domain.DecisionRejected, Version: 1},
		},
		shifts: []*domain.Shift{
			{ID: "s-day", Name: "Day"},
			{ID: "s-night", Name: "Night"},
		},
		employees: []*domain.Employee{
			{ID: "e1", FirstName: "Marie", LastName: "Tremblay", ScoreCard: domain.ScoreFair},
			{ID: "e2", FirstName: "Jacob", LastName: "Smith", ScoreCard: domain.ScorePoor},
			{ID: "e3", FirstName: "Léa", LastName: "Côté", ScoreCard: domain.ScoreFantastic},
		},
		templates: []*domain.WarningTemplate{
			{ID: "t1", Raison: "Late arrival", Description: "Arrived late", Severity: domain.SeverityLow, Type: domain.WarningTypeWarning},
		},
	}
}

func (m *memoryBackend) Login(ctx context.Context, username, password string) (*domain.User, error) {
	if password != "secret" {
		return nil, &dispatch.ServerError{Status: 401, Message: "Unknown username or wrong password"}
	}
	return &domain.User{Username: username, FullName: "Dana Dispatcher", Role: domain.RoleDispatcher, DSPCode: "DSP1"}, nil
}

func (m *memoryBackend) DisponibilitiesByDay(ctx context.Context, day time.Time) ([]*domain.Disponibility, error) {
	out := []*domain.Disponibility{}
	for _, d := range m.records {
		if d.SelectedDay == domain.FormatDay(day) {
			c := *d
			out = append(out, &c)
		}
	}
	if len(out) == 0 {
		return nil, dispatch.ErrNotFound
	}
	return out, nil
}

func (m *memoryBackend) DisponibilitiesByEmployeeAfter(ctx context.Context, employeeID string, after time.Time) ([]*domain.Disponibility, error) {
	out := []*domain.Disponibility{}
	for _, d := range m.records {
		day, _ := domain.ParseDay(d.SelectedDay)
		if d.EmployeeID == employeeID && !day.Before(after) {
			c := *d
			out = append(out, &c)
		}
	}
	if len(out) == 0 {
		return nil, dispatch.ErrNotFound
	}
	return out, nil
}

func (m *memoryBackend) SubmitConfirmations(ctx context.Context, items []domain.ConfirmationItem) error {
	m.submitted = append(m.submitted, items)
	for _, item := range items {
		for _, d := range m.records {
			if d.EmployeeID == item.EmployeeID && d.ShiftID == item.ShiftID && d.SelectedDay == item.SelectedDay {
				d.Confirmation = item.Status
				d.Version++
			}
		}
	}
	return nil
}

func (m *memoryBackend) SetSuspension(ctx context.Context, ids []string, suspension bool) error {
	if m.suspendErr != nil {
		return m.suspendErr
	}
	m.suspended = append(m.suspended, ids...)
	return nil
}

func (m *memoryBackend) CreateWarning(ctx context.Context, w *domain.Warning, photo *dispatch.Photo) (*domain.Warning, error) {
	m.nextID++
	c := *w
	c.ID = fmt.Sprintf("w%d", m.nextID)
	if photo != nil {
		content, err := io.ReadAll(photo.Content)
		if err != nil {
			return nil, err
		}
		m.photos = append(m.photos, string(content))
		c.Photo = "/uploads/DSP1/" + photo.Filename
	}
	m.warnings = append([]*domain.Warning{&c}, m.warnings...)
	return &c, nil
}

func (m *memoryBackend) UpdateWarning(ctx context.Context, w *domain.Warning, photo *dispatch.Photo, removePhoto bool) (*domain.Warning, error) {
	idx := slices.IndexFunc(m.warnings, func(x *domain.Warning) bool { return x.ID == w.ID })
	if idx < 0 {
		return nil, dispatch.ErrNotFound
	}
	c := *w
	c.Photo = m.warnings[idx].Photo
	if removePhoto {
		c.Photo = ""
	}
	if photo != nil {
		c.Photo = "/uploads/DSP1/" + photo.Filename
	}
	m.warnings[idx] = &c
	return &c, nil
}

func (m *memoryBackend) DeleteWarning(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.warnings = slices.DeleteFunc(m.warnings, func(w *domain.Warning) bool { return w.ID == id })
	return nil
}

func (m *memoryBackend) WarningsByEmployee(ctx context.Context, employeeID string) ([]*domain.Warning, error) {
	out := []*domain.Warning{}
	for _, w := range m.warnings {
		if w.EmployeeID == employeeID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *memoryBackend) WarningTemplates(ctx context.Context) ([]*domain.WarningTemplate, error) {
	return m.templates, nil
}

func (m *memoryBackend) Shifts(ctx context.Context) ([]*domain.Shift, error) {
	return m.shifts, nil
}

func (m *memoryBackend) Employees(ctx context.Context) ([]*domain.Employee, error) {
	return m.employees, nil
}

type testEnv struct {
	app     *App
	backend *memoryBackend
	out     *bytes.Buffer
	errOut  *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	bundle, err := i18n.New()
	require.NoError(t, err)

	backend := newMemoryBackend()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	return &testEnv{
		app: &App{
			Session: &dispatch.Session{DSPCode: "DSP1", Token: "token", Language: i18n.English, Timeout: time.Second},
			Backend: backend,
			Bundle:  bundle,
			In:      strings.NewReader(""),
			Out:     out,
			Err:     errOut,
		},
		backend: backend,
		out:     out,
		errOut:  errOut,
	}
}

// run 执行命令并返回退出码，stdin 为用户的输入
func (e *testEnv) run(stdin string, args ...string) int {
	e.app.In = strings.NewReader(stdin)
	e.out.Reset()
	e.errOut.Reset()
	return Execute(e.app, args)
}

func (e *testEnv) events(deliveries chan amqp.Delivery) {
	e.app.Events = func(ctx context.Context) (<-chan amqp.Delivery, func(), error) {
		return deliveries, func() {}, nil
	}
}

var errSuspend = errors.New("suspension endpoint unavailable")
