package utils

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

var (
	ErrInvalidDay   = errors.New("invalid day")
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidPhoto = errors.New("invalid photo")
)

// ValidateConfirmationItems 检查批量确认中的每一项，日期必须是约定的格式
func ValidateConfirmationItems(items []domain.ConfirmationItem) error {
	for i, item := range items {
		if _, err := domain.ParseDay(item.SelectedDay); err != nil {
			return fmt.Errorf("%w: item %d has selectedDay %q", ErrInvalidDay, i+1, item.SelectedDay)
		}
		if !item.Status.Valid() {
			return fmt.Errorf("item %d has an invalid status %q", i+1, item.Status)
		}
	}
	return nil
}

// ParseISODate 解析前端传来的 ISO 日期（例如 "2024-10-20T00:00:00.000Z" 或 "2024-10-20"），只保留日期部分
func ParseISODate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// NormalizeWarning 按类型清理无意义的字段：停职记录没有严重程度，普通警告没有停职数量
func NormalizeWarning(w *domain.Warning) {
	switch w.Type {
	case domain.WarningTypeSuspension:
		w.Severity = ""
	case domain.WarningTypeWarning:
		w.SusNombre = 0
	}
}

func ValidateWarning(w *domain.Warning) error {
	if strings.TrimSpace(w.Raison) == "" {
		return errors.New("raison is required")
	}
	if strings.TrimSpace(w.Description) == "" {
		return errors.New("description is required")
	}
	if w.Type != domain.WarningTypeWarning && w.Type != domain.WarningTypeSuspension {
		return fmt.Errorf("invalid type %q", w.Type)
	}
	if w.Severity != "" && !slices.Contains([]domain.Severity{domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh}, w.Severity) {
		return fmt.Errorf("invalid severity %q", w.Severity)
	}
	if w.SusNombre < 0 {
		return errors.New("susNombre cannot be negative")
	}
	if w.Link != "" {
		u, err := url.Parse(w.Link)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid link %q", w.Link)
		}
	}
	return nil
}

var photoExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".heic", ".gif"}

func ValidatePhotoFilename(filename string) error {
	if !slices.Contains(photoExtensions, strings.ToLower(filepath.Ext(filename))) {
		return fmt.Errorf("%w: %q", ErrInvalidPhoto, filename)
	}
	return nil
}
