package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dspworks/dispatch/backend/internal/config"
	"github.com/dspworks/dispatch/backend/internal/domain"
	"github.com/dspworks/dispatch/backend/internal/i18n"
	"github.com/dspworks/dispatch/backend/internal/storage"
)

const testDSP = "DSP1"

type fakeRepository struct {
	users           map[string]*domain.User
	disponibilities []*domain.Disponibility
	warnings        map[string]*domain.Warning
	templates       []*domain.WarningTemplate
	shifts          []*domain.Shift
	employees       []*domain.Employee

	confirmations  []domain.ConfirmationItem
	suspendedIDs   []string
	templateLoads  int
	shiftLoads     int
	failNextUpdate bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:    map[string]*domain.User{},
		warnings: map[string]*domain.Warning{},
	}
}

func (f *fakeRepository) GetUserByUsername(username string) (*domain.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRepository) GetDisponibilitiesByDay(dspCode string, day time.Time) ([]*domain.Disponibility, error) {
	var out []*domain.Disponibility
	for _, d := range f.disponibilities {
		if d.DSPCode == dspCode && d.SelectedDay == domain.FormatDay(day) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeRepository) GetDisponibilitiesByEmployeeAfter(dspCode string, employeeID string, after time.Time) ([]*domain.Disponibility, error) {
	var out []*domain.Disponibility
	for _, d := range f.disponibilities {
		day, _ := domain.ParseDay(d.SelectedDay)
		if d.DSPCode == dspCode && d.EmployeeID == employeeID && !day.Before(after) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeRepository) GetDisponibilityByID(dspCode string, id string) (*domain.Disponibility, error) {
	for _, d := range f.disponibilities {
		if d.DSPCode == dspCode && d.ID == id {
			cp := *d
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRepository) UpdateConfirmations(dspCode string, items []domain.ConfirmationItem) (int64, error) {
	f.confirmations = append(f.confirmations, items...)
	return int64(len(items)), nil
}

func (f *fakeRepository) SetSuspension(dspCode string, ids []string, suspension bool) (int64, error) {
	f.suspendedIDs = append(f.suspendedIDs, ids...)
	return int64(len(ids)), nil
}

func (f *fakeRepository) UpdatePresence(d *domain.Disponibility, presence domain.Presence) error {
	if f.failNextUpdate {
		f.failNextUpdate = false
		return sql.ErrNoRows
	}
	d.Presence = &presence
	d.Version++
	return nil
}

func (f *fakeRepository) UpdateSeen(d *domain.Disponibility, seen bool) error {
	d.Seen = &seen
	d.Version++
	return nil
}

func (f *fakeRepository) CreateWarning(w *domain.Warning) error {
	w.CreatedAt = time.Now()
	w.Version = 1
	cp := *w
	f.warnings[w.ID] = &cp
	return nil
}

func (f *fakeRepository) GetWarningByID(dspCode string, id string) (*domain.Warning, error) {
	if w, ok := f.warnings[id]; ok && w.DSPCode == dspCode {
		cp := *w
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRepository) GetWarningsByEmployee(dspCode string, employeeID string) ([]*domain.Warning, error) {
	out := []*domain.Warning{}
	for _, w := range f.warnings {
		if w.DSPCode == dspCode && w.EmployeeID == employeeID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeRepository) UpdateWarning(w *domain.Warning) error {
	stored, ok := f.warnings[w.ID]
	if !ok || stored.Version != w.Version {
		return sql.ErrNoRows
	}
	w.Version++
	cp := *w
	f.warnings[w.ID] = &cp
	return nil
}

func (f *fakeRepository) DeleteWarning(dspCode string, id string) error {
	delete(f.warnings, id)
	return nil
}

func (f *fakeRepository) GetAllWarningTemplates(dspCode string) ([]*domain.WarningTemplate, error) {
	f.templateLoads++
	return f.templates, nil
}

func (f *fakeRepository) CreateWarningTemplate(t *domain.WarningTemplate) error {
	for _, existing := range f.templates {
		if existing.DSPCode == t.DSPCode && existing.Raison == t.Raison {
			return &pgconn.PgError{Code: "23505", ConstraintName: "warning_templates_dsp_code_raison_key"}
		}
	}
	f.templates = append(f.templates, t)
	return nil
}

func (f *fakeRepository) DeleteWarningTemplate(dspCode string, id string) (int64, error) {
	before := len(f.templates)
	f.templates = slices.DeleteFunc(f.templates, func(t *domain.WarningTemplate) bool {
		return t.DSPCode == dspCode && t.ID == id
	})
	return int64(before - len(f.templates)), nil
}

func (f *fakeRepository) GetAllShifts(dspCode string) ([]*domain.Shift, error) {
	f.shiftLoads++
	return f.shifts, nil
}

func (f *fakeRepository) GetAllEmployees(dspCode string) ([]*domain.Employee, error) {
	return f.employees, nil
}

func (f *fakeRepository) GetEmployeeByID(dspCode string, id string) (*domain.Employee, error) {
	for _, e := range f.employees {
		if e.DSPCode == dspCode && e.ID == id {
			return e, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakePublisher struct {
	mails  []domain.MailMessage
	events []domain.DisponibilityEvent
}

func (f *fakePublisher) PublishMail(msg domain.MailMessage) error {
	f.mails = append(f.mails, msg)
	return nil
}

func (f *fakePublisher) PublishEvent(evt domain.DisponibilityEvent) error {
	f.events = append(f.events, evt)
	return nil
}

type fakeCache struct {
	items map[string][]byte
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := f.items[key]; ok {
		return v, nil
	}
	return nil, ErrCacheMiss
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.items[key] = value
	return nil
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.items, key)
	}
	return nil
}

type testEnv struct {
	handler   *Handler
	repo      *fakeRepository
	publisher *fakePublisher
	cache     *fakeCache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 1
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Server.MaxUploadSize = 1 << 20
	cfg.Storage.BaseURL = "/uploads"
	cfg.Redis.OperationExpiration = 1
	cfg.Redis.CacheExpiration = 60

	store, err := storage.NewLocalStorage(t.TempDir(), cfg.Storage.BaseURL)
	require.NoError(t, err)

	bundle, err := i18n.New()
	require.NoError(t, err)

	env := &testEnv{
		repo:      newFakeRepository(),
		publisher: &fakePublisher{},
		cache:     &fakeCache{items: map[string][]byte{}},
	}
	env.handler, err = NewHandler(cfg, env.repo, env.publisher, env.cache, store, bundle)
	require.NoError(t, err)
	env.handler.RegisterRoutes()

	return env
}

func (e *testEnv) addUser(t *testing.T, username, password string, role domain.Role) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &domain.User{
		ID:           int64(len(e.repo.users) + 1),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		DSPCode:      testDSP,
		Language:     "en",
		IsActive:     true,
	}
	e.repo.users[username] = user
	return user
}

func (e *testEnv) token(t *testing.T, role domain.Role) string {
	t.Helper()

	ss, err := e.handler.issueToken(&domain.User{ID: 1, Role: role, DSPCode: testDSP, Language: "en"}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return ss
}

func (e *testEnv) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.Mux.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
