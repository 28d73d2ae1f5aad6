package dispatch

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dspworks/dispatch/backend/internal/domain"
	"github.com/dspworks/dispatch/backend/internal/i18n"
)

type managerFixture struct {
	manager  *WarningManager
	backend  *fakeBackend
	store    *RecordStore
	platform *HeadlessPlatform
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()

	backend := newFakeBackend()
	backend.templates = []*domain.WarningTemplate{
		{ID: "t1", Raison: "Late", Description: "Arrived after the start of the shift", Severity: domain.SeverityLow, Type: domain.WarningTypeWarning, Link: "https://example.com/policy"},
	}
	backend.byEmployee["e1"] = []*domain.Disponibility{
		{ID: "a", EmployeeID: "e1", ShiftID: "s1", SelectedDay: "Sun Oct 20 2024"},
		{ID: "b", EmployeeID: "e1", ShiftID: "s1", SelectedDay: "Mon Oct 21 2024"},
	}

	bundle, err := i18n.New()
	require.NoError(t, err)

	store := NewRecordStore(backend)
	require.NoError(t, store.LoadByEmployeeAfter(context.Background(), "e1", oct20))

	platform := &HeadlessPlatform{AutoConfirm: true}
	coordinator := NewSuspensionCoordinator(backend, store, testSession)
	manager := NewWarningManager(backend, coordinator, platform, NewTranslator(bundle, testSession))

	require.NoError(t, manager.Load(context.Background(), "e1"))
	require.NoError(t, manager.LoadTemplates(context.Background()))

	return &managerFixture{manager: manager, backend: backend, store: store, platform: platform}
}

func TestValidate(t *testing.T) {
	valid := Draft{Type: domain.WarningTypeWarning, Raison: "r", Description: "d"}
	require.NoError(t, Validate(valid))

	cases := map[string]Draft{
		"raison":      {Type: domain.WarningTypeWarning, Raison: "  ", Description: "d"},
		"description": {Type: domain.WarningTypeWarning, Raison: "r"},
		"type":        {Raison: "r", Description: "d"},
	}
	for field, draft := range cases {
		t.Run(field, func(t *testing.T) {
			err := Validate(draft)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, field, validationErr.Field)
		})
	}
}

func TestWarningManager_ApplyTemplate(t *testing.T) {
	f := newManagerFixture(t)

	require.NoError(t, f.manager.ApplyTemplate("t1"))
	draft := f.manager.Draft()
	assert.Equal(t, "Late", draft.Raison)
	assert.Equal(t, domain.SeverityLow, draft.Severity)
	assert.Equal(t, domain.WarningTypeWarning, draft.Type)
	assert.Equal(t, "https://example.com/policy", draft.Link)

	require.NoError(t, f.manager.ApplyTemplate(""))
	assert.Equal(t, Draft{}, f.manager.Draft())

	require.ErrorIs(t, f.manager.ApplyTemplate("nope"), ErrNotFound)
}

func TestWarningManager_CreateValidatesBeforeNetwork(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.SetDraft(Draft{Type: domain.WarningTypeWarning, Description: "d"})

	_, err := f.manager.Create(context.Background(), nil)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotContains(t, f.backend.Calls(), "createWarning")
}

func TestWarningManager_CreateWarning(t *testing.T) {
	f := newManagerFixture(t)
	f.backend.warnings["old"] = &domain.Warning{ID: "old", EmployeeID: "e1"}
	require.NoError(t, f.manager.Load(context.Background(), "e1"))

	require.NoError(t, f.manager.ApplyTemplate("t1"))
	photo := &Photo{Filename: "late.jpg", Content: strings.NewReader("jpeg")}

	created, err := f.manager.Create(context.Background(), photo)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/late.jpg", created.Photo)
	assert.Equal(t, []string{"jpeg"}, f.backend.photos)
	assert.NotEmpty(t, created.Date)

	warnings := f.manager.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, created.ID, warnings[0].ID, "new warnings are prepended")
	assert.Equal(t, Draft{}, f.manager.Draft(), "form is reset")
	assert.NotContains(t, f.backend.Calls(), "suspend")
}

func TestWarningManager_CreateSuspension(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.SetDraft(Draft{Type: domain.WarningTypeSuspension, Raison: "Accident", Description: "Preventable accident", Severity: domain.SeverityHigh})
	f.manager.Select("a", "b")

	created, err := f.manager.Create(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, created.SusNombre)
	assert.Empty(t, created.Severity)
	assert.Equal(t, map[string]bool{"a": true, "b": true}, f.backend.suspended)
	assert.Empty(t, f.manager.Selected())

	for _, d := range f.store.Records() {
		assert.True(t, d.IsSuspended())
	}
}

func TestWarningManager_FailedCreateKeepsState(t *testing.T) {
	f := newManagerFixture(t)
	f.backend.createErr = &ServerError{Status: 500, Message: "boom"}
	draft := Draft{Type: domain.WarningTypeWarning, Raison: "r", Description: "d"}
	f.manager.SetDraft(draft)

	_, err := f.manager.Create(context.Background(), nil)
	require.Error(t, err)
	assert.Empty(t, f.manager.Warnings())
	assert.Equal(t, draft, f.manager.Draft())
}

func TestWarningManager_CreateNeedsEmployee(t *testing.T) {
	backend := newFakeBackend()
	bundle, err := i18n.New()
	require.NoError(t, err)
	manager := NewWarningManager(backend, NewSuspensionCoordinator(backend, NewRecordStore(backend), testSession), &HeadlessPlatform{}, NewTranslator(bundle, testSession))
	manager.SetDraft(Draft{Type: domain.WarningTypeWarning, Raison: "r", Description: "d"})

	_, err = manager.Create(context.Background(), nil)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "employeID", validationErr.Field)
}

func TestWarningManager_Update(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.SetDraft(Draft{Type: domain.WarningTypeWarning, Raison: "Late", Description: "d", Severity: domain.SeverityLow})
	created, err := f.manager.Create(context.Background(), &Photo{Filename: "one.png", Content: strings.NewReader("1")})
	require.NoError(t, err)

	require.NoError(t, f.manager.Edit(created.ID))
	patch := f.manager.Draft()
	patch.Description = "Late again"
	patch.Severity = domain.SeverityMedium

	updated, err := f.manager.Update(context.Background(), created.ID, patch, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "Late again", updated.Description)
	assert.Equal(t, created.Photo, updated.Photo, "photo kept when neither replaced nor removed")
	assert.Equal(t, created.Date, updated.Date)
	assert.Equal(t, "Late again", f.manager.Warnings()[0].Description)

	_, err = f.manager.Update(context.Background(), created.ID, patch, &Photo{Filename: "two.png", Content: strings.NewReader("2")}, true)
	require.ErrorIs(t, err, ErrPhotoConflict)

	updated, err = f.manager.Update(context.Background(), created.ID, patch, nil, true)
	require.NoError(t, err)
	assert.Empty(t, updated.Photo)

	patch.Raison = ""
	_, err = f.manager.Update(context.Background(), created.ID, patch, nil, false)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestWarningManager_UpdateRequiresLoadedWarning(t *testing.T) {
	f := newManagerFixture(t)
	f.backend.warnings["w9"] = &domain.Warning{
		ID: "w9", EmployeeID: "e1", Type: domain.WarningTypeSuspension, Raison: "No show",
		Description: "d", Severity: domain.SeverityHigh, Date: "2024-10-01", SusNombre: 3,
	}

	patch := Draft{Type: domain.WarningTypeSuspension, Raison: "No show", Description: "changed", Severity: domain.SeverityHigh}
	_, err := f.manager.Update(context.Background(), "w9", patch, nil, false)
	require.ErrorIs(t, err, ErrNotFound)

	assert.NotContains(t, f.backend.Calls(), "updateWarning")
	stored := f.backend.warnings["w9"]
	assert.Equal(t, "2024-10-01", stored.Date)
	assert.Equal(t, 3, stored.SusNombre)
	assert.Equal(t, "d", stored.Description)
}

func TestWarningManager_Delete(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.SetDraft(Draft{Type: domain.WarningTypeWarning, Raison: "r", Description: "d"})
	created, err := f.manager.Create(context.Background(), nil)
	require.NoError(t, err)

	f.platform.AutoConfirm = false
	require.ErrorIs(t, f.manager.Delete(context.Background(), created.ID), ErrCanceled)
	assert.NotContains(t, f.backend.Calls(), "deleteWarning")
	assert.Len(t, f.manager.Warnings(), 1)
	require.Len(t, f.platform.Prompts(), 1)
	assert.Contains(t, f.platform.Prompts()[0], "delete")

	f.platform.AutoConfirm = true
	require.NoError(t, f.manager.Delete(context.Background(), created.ID))
	assert.Empty(t, f.manager.Warnings())
	assert.Empty(t, f.backend.warnings)
}

func TestWarningManager_FailedDeleteKeepsList(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.SetDraft(Draft{Type: domain.WarningTypeWarning, Raison: "r", Description: "d"})
	created, err := f.manager.Create(context.Background(), nil)
	require.NoError(t, err)

	f.backend.deleteErr = &ServerError{Status: 500, Message: "boom"}
	require.Error(t, f.manager.Delete(context.Background(), created.ID))
	assert.Len(t, f.manager.Warnings(), 1)
}
