package dispatch

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

// Draft 是警告表单中可编辑的字段
type Draft struct {
	Type        domain.WarningType
	Raison      string
	Description string
	Severity    domain.Severity
	Link        string
	Date        string
	Signature   bool
}

// Validate 检查必填字段，返回 *ValidationError
func Validate(d Draft) error {
	switch {
	case strings.TrimSpace(d.Raison) == "":
		return &ValidationError{Field: "raison"}
	case strings.TrimSpace(d.Description) == "":
		return &ValidationError{Field: "description"}
	case d.Type != domain.WarningTypeWarning && d.Type != domain.WarningTypeSuspension:
		return &ValidationError{Field: "type"}
	}
	return nil
}

func (d Draft) toWarning(employeeID string) *domain.Warning {
	date := d.Date
	if date == "" {
		date = time.Now().UTC().Format(time.RFC3339)
	}

	w := &domain.Warning{
		EmployeeID:  employeeID,
		Type:        d.Type,
		Raison:      strings.TrimSpace(d.Raison),
		Description: strings.TrimSpace(d.Description),
		Severity:    d.Severity,
		Link:        strings.TrimSpace(d.Link),
		Date:        date,
		Signature:   d.Signature,
	}
	if w.Type == domain.WarningTypeSuspension {
		w.Severity = ""
	}
	return w
}

func draftFromWarning(w *domain.Warning) Draft {
	return Draft{
		Type:        w.Type,
		Raison:      w.Raison,
		Description: w.Description,
		Severity:    w.Severity,
		Link:        w.Link,
		Date:        w.Date,
		Signature:   w.Signature,
	}
}

// WarningManager 管理一个员工的警告列表和当前表单。
// 列表只在服务器确认成功之后才会修改
type WarningManager struct {
	backend     Backend
	coordinator *SuspensionCoordinator
	platform    Platform
	translator  *Translator

	mu         sync.Mutex
	employeeID string
	templates  []*domain.WarningTemplate
	warnings   []*domain.Warning
	draft      Draft
	selected   []string
	inFlight   bool
}

func NewWarningManager(backend Backend, coordinator *SuspensionCoordinator, platform Platform, translator *Translator) *WarningManager {
	return &WarningManager{
		backend:     backend,
		coordinator: coordinator,
		platform:    platform,
		translator:  translator,
	}
}

// Load 加载员工的警告，之后的 Create 都针对这个员工
func (m *WarningManager) Load(ctx context.Context, employeeID string) error {
	warnings, err := m.backend.WarningsByEmployee(ctx, employeeID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.employeeID != employeeID {
		m.selected = nil
	}
	m.employeeID = employeeID
	m.warnings = warnings
	return nil
}

func (m *WarningManager) Warnings() []*domain.Warning {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.warnings)
}

func (m *WarningManager) LoadTemplates(ctx context.Context) error {
	templates, err := m.backend.WarningTemplates(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.templates = templates
	m.mu.Unlock()
	return nil
}

func (m *WarningManager) Templates() []*domain.WarningTemplate {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.templates)
}

// ApplyTemplate 把模板内容复制到表单；templateID 为空时把表单恢复为空白
func (m *WarningManager) ApplyTemplate(templateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if templateID == "" {
		m.draft = Draft{}
		return nil
	}

	idx := slices.IndexFunc(m.templates, func(t *domain.WarningTemplate) bool {
		return t.ID == templateID
	})
	if idx < 0 {
		return fmt.Errorf("template %s: %w", templateID, ErrNotFound)
	}

	t := m.templates[idx]
	m.draft.Raison = t.Raison
	m.draft.Description = t.Description
	m.draft.Severity = t.Severity
	m.draft.Type = t.Type
	m.draft.Link = t.Link
	return nil
}

func (m *WarningManager) Draft() Draft {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.draft
}

func (m *WarningManager) SetDraft(d Draft) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.draft = d
}

// Select 设置停职时要标记的可用性记录
func (m *WarningManager) Select(recordIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.selected = slices.Clone(recordIDs)
}

func (m *WarningManager) Selected() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.selected)
}

func (m *WarningManager) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inFlight {
		return ErrInFlight
	}
	m.inFlight = true
	return nil
}

func (m *WarningManager) end() {
	m.mu.Lock()
	m.inFlight = false
	m.mu.Unlock()
}

// Create 校验表单后创建警告。停职类型交给 SuspensionCoordinator 处理选中的记录。
// 成功后新警告插入列表最前面，表单和选择被清空
func (m *WarningManager) Create(ctx context.Context, photo *Photo) (*domain.Warning, error) {
	m.mu.Lock()
	draft := m.draft
	employeeID := m.employeeID
	selected := slices.Clone(m.selected)
	m.mu.Unlock()

	if err := Validate(draft); err != nil {
		return nil, err
	}
	if employeeID == "" {
		return nil, &ValidationError{Field: "employeID"}
	}

	if err := m.begin(); err != nil {
		return nil, err
	}
	defer m.end()

	var (
		created *domain.Warning
		err     error
	)
	if draft.Type == domain.WarningTypeSuspension {
		created, err = m.coordinator.Suspend(ctx, employeeID, selected, draft, photo)
	} else {
		created, err = m.backend.CreateWarning(ctx, draft.toWarning(employeeID), photo)
	}
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.warnings = append([]*domain.Warning{created}, m.warnings...)
	m.draft = Draft{}
	m.selected = nil
	m.mu.Unlock()

	return created, nil
}

// Edit 把已有警告载入表单
func (m *WarningManager) Edit(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := slices.IndexFunc(m.warnings, func(w *domain.Warning) bool { return w.ID == id })
	if idx < 0 {
		return fmt.Errorf("warning %s: %w", id, ErrNotFound)
	}
	m.draft = draftFromWarning(m.warnings[idx])
	return nil
}

// Update 用 patch 替换警告的可编辑字段。photo 与 removePhoto 不能同时使用，
// 两者都没有时服务器保留原照片
func (m *WarningManager) Update(ctx context.Context, id string, patch Draft, photo *Photo, removePhoto bool) (*domain.Warning, error) {
	if photo != nil && removePhoto {
		return nil, ErrPhotoConflict
	}
	if err := Validate(patch); err != nil {
		return nil, err
	}

	// 日期、停职天数与已读状态取自已加载的警告，不在列表中时不能补全
	m.mu.Lock()
	var current *domain.Warning
	if idx := slices.IndexFunc(m.warnings, func(w *domain.Warning) bool { return w.ID == id }); idx >= 0 {
		current = m.warnings[idx]
	}
	m.mu.Unlock()
	if current == nil {
		return nil, fmt.Errorf("warning %s: %w", id, ErrNotFound)
	}

	if err := m.begin(); err != nil {
		return nil, err
	}
	defer m.end()

	w := patch.toWarning(current.EmployeeID)
	w.ID = id
	if patch.Date == "" {
		w.Date = current.Date
	}
	w.SusNombre = current.SusNombre
	w.Read = current.Read

	updated, err := m.backend.UpdateWarning(ctx, w, photo, removePhoto)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if idx := slices.IndexFunc(m.warnings, func(w *domain.Warning) bool { return w.ID == id }); idx >= 0 {
		m.warnings[idx] = updated
	}
	m.mu.Unlock()

	return updated, nil
}

// Delete 需要用户确认后才会发出请求，用户取消时返回 ErrCanceled
func (m *WarningManager) Delete(ctx context.Context, id string) error {
	ok, err := m.platform.Confirm(ctx, m.translator.T("confirm_delete"))
	if err != nil {
		return err
	}
	if !ok {
		return ErrCanceled
	}

	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	if err := m.backend.DeleteWarning(ctx, id); err != nil {
		return err
	}

	m.mu.Lock()
	m.warnings = slices.DeleteFunc(m.warnings, func(w *domain.Warning) bool { return w.ID == id })
	m.mu.Unlock()

	return nil
}
