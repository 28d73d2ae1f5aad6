package dispatch

import (
	"context"
	"io"
	"time"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

// Photo 是随警告一起上传的证据照片
type Photo struct {
	Filename string
	Content  io.Reader
}

// Backend 是工作流用到的全部 REST 接口
type Backend interface {
	DisponibilitiesByDay(ctx context.Context, day time.Time) ([]*domain.Disponibility, error)
	DisponibilitiesByEmployeeAfter(ctx context.Context, employeeID string, after time.Time) ([]*domain.Disponibility, error)
	SubmitConfirmations(ctx context.Context, items []domain.ConfirmationItem) error
	SetSuspension(ctx context.Context, ids []string, suspension bool) error

	CreateWarning(ctx context.Context, w *domain.Warning, photo *Photo) (*domain.Warning, error)
	UpdateWarning(ctx context.Context, w *domain.Warning, photo *Photo, removePhoto bool) (*domain.Warning, error)
	DeleteWarning(ctx context.Context, id string) error
	WarningsByEmployee(ctx context.Context, employeeID string) ([]*domain.Warning, error)
	WarningTemplates(ctx context.Context) ([]*domain.WarningTemplate, error)

	Shifts(ctx context.Context) ([]*domain.Shift, error)
	Employees(ctx context.Context) ([]*domain.Employee, error)
}
