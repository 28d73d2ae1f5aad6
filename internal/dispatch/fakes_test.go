package dispatch

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

type fakeBackend struct {
	mu sync.Mutex

	byDay         map[string][]*domain.Disponibility
	byEmployee    map[string][]*domain.Disponibility
	warnings      map[string]*domain.Warning
	templates     []*domain.WarningTemplate
	shifts        []*domain.Shift
	employees     []*domain.Employee
	suspended     map[string]bool
	submitted     [][]domain.ConfirmationItem
	photos        []string
	calls         []string
	nextID        int
	fetchErr      error
	submitErr     error
	suspendErr    error
	createErr     error
	deleteErr     error
	submitBlock   chan struct{}
	submitEntered chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		byDay:      map[string][]*domain.Disponibility{},
		byEmployee: map[string][]*domain.Disponibility{},
		warnings:   map[string]*domain.Warning{},
		suspended:  map[string]bool{},
	}
}

func (f *fakeBackend) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

func cloneAll(in []*domain.Disponibility) []*domain.Disponibility {
	out := make([]*domain.Disponibility, 0, len(in))
	for _, d := range in {
		out = append(out, clone(d))
	}
	return out
}

func (f *fakeBackend) DisponibilitiesByDay(ctx context.Context, day time.Time) ([]*domain.Disponibility, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("byDay")
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	records, ok := f.byDay[domain.FormatDay(day)]
	if !ok || len(records) == 0 {
		return nil, fmt.Errorf("GET byDate: %w", ErrNotFound)
	}
	return cloneAll(records), nil
}

func (f *fakeBackend) DisponibilitiesByEmployeeAfter(ctx context.Context, employeeID string, after time.Time) ([]*domain.Disponibility, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("byEmployee")
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	records, ok := f.byEmployee[employeeID]
	if !ok || len(records) == 0 {
		return nil, ErrNotFound
	}
	return cloneAll(records), nil
}

func (f *fakeBackend) SubmitConfirmations(ctx context.Context, items []domain.ConfirmationItem) error {
	f.mu.Lock()
	f.record("submit")
	block, entered := f.submitBlock, f.submitEntered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, items)
	for _, records := range f.byDay {
		for _, d := range records {
			for _, item := range items {
				if d.EmployeeID == item.EmployeeID && d.ShiftID == item.ShiftID && d.SelectedDay == item.SelectedDay {
					d.Confirmation = item.Status
					d.Version++
				}
			}
		}
	}
	return nil
}

func (f *fakeBackend) SetSuspension(ctx context.Context, ids []string, suspension bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("suspend")
	if f.suspendErr != nil {
		return f.suspendErr
	}
	for _, id := range ids {
		f.suspended[id] = suspension
	}
	return nil
}

func (f *fakeBackend) CreateWarning(ctx context.Context, w *domain.Warning, photo *Photo) (*domain.Warning, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("createWarning")
	if f.createErr != nil {
		return nil, f.createErr
	}

	f.nextID++
	created := *w
	created.ID = fmt.Sprintf("w%d", f.nextID)
	created.CreatedAt = time.Now()
	if photo != nil {
		content, _ := io.ReadAll(photo.Content)
		f.photos = append(f.photos, string(content))
		created.Photo = "/uploads/" + photo.Filename
	}
	f.warnings[created.ID] = &created

	cp := created
	return &cp, nil
}

func (f *fakeBackend) UpdateWarning(ctx context.Context, w *domain.Warning, photo *Photo, removePhoto bool) (*domain.Warning, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("updateWarning")
	stored, ok := f.warnings[w.ID]
	if !ok {
		return nil, ErrNotFound
	}

	updated := *w
	switch {
	case photo != nil:
		updated.Photo = "/uploads/" + photo.Filename
	case removePhoto:
		updated.Photo = ""
	default:
		updated.Photo = stored.Photo
	}
	f.warnings[w.ID] = &updated

	cp := updated
	return &cp, nil
}

func (f *fakeBackend) DeleteWarning(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("deleteWarning")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.warnings, id)
	return nil
}

func (f *fakeBackend) WarningsByEmployee(ctx context.Context, employeeID string) ([]*domain.Warning, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("warnings")
	var out []*domain.Warning
	for _, w := range f.warnings {
		if w.EmployeeID == employeeID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeBackend) WarningTemplates(ctx context.Context) ([]*domain.WarningTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("templates")
	return f.templates, nil
}

func (f *fakeBackend) Shifts(ctx context.Context) ([]*domain.Shift, error) {
	return f.shifts, nil
}

func (f *fakeBackend) Employees(ctx context.Context) ([]*domain.Employee, error) {
	return f.employees, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func presencePtr(p domain.Presence) *domain.Presence {
	return &p
}

var testSession = &Session{DSPCode: "DSP1", Language: "en", Timeout: time.Second}
