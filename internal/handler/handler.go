package handler

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/dspworks/dispatch/backend/internal/config"
	"github.com/dspworks/dispatch/backend/internal/domain"
	"github.com/dspworks/dispatch/backend/internal/i18n"
)

// Repository 是 handler 所需的持久化操作，由 *repository.Repository 实现
type Repository interface {
	GetUserByUsername(username string) (*domain.User, error)

	GetDisponibilitiesByDay(dspCode string, day time.Time) ([]*domain.Disponibility, error)
	GetDisponibilitiesByEmployeeAfter(dspCode string, employeeID string, after time.Time) ([]*domain.Disponibility, error)
	GetDisponibilityByID(dspCode string, id string) (*domain.Disponibility, error)
	UpdateConfirmations(dspCode string, items []domain.ConfirmationItem) (int64, error)
	SetSuspension(dspCode string, ids []string, suspension bool) (int64, error)
	UpdatePresence(d *domain.Disponibility, presence domain.Presence) error
	UpdateSeen(d *domain.Disponibility, seen bool) error

	CreateWarning(w *domain.Warning) error
	GetWarningByID(dspCode string, id string) (*domain.Warning, error)
	GetWarningsByEmployee(dspCode string, employeeID string) ([]*domain.Warning, error)
	UpdateWarning(w *domain.Warning) error
	DeleteWarning(dspCode string, id string) error

	GetAllWarningTemplates(dspCode string) ([]*domain.WarningTemplate, error)
	CreateWarningTemplate(t *domain.WarningTemplate) error
	DeleteWarningTemplate(dspCode string, id string) (int64, error)

	GetAllShifts(dspCode string) ([]*domain.Shift, error)
	GetAllEmployees(dspCode string) ([]*domain.Employee, error)
	GetEmployeeByID(dspCode string, id string) (*domain.Employee, error)
}

type Publisher interface {
	PublishMail(msg domain.MailMessage) error
	PublishEvent(evt domain.DisponibilityEvent) error
}

type PhotoStorage interface {
	Save(dspCode string, filename string, file io.Reader) (string, error)
	Delete(url string) error
	BasePath() string
}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	repository Repository
	bundle     *i18n.Bundle
	publisher  Publisher
	cache      Cache
	storage    PhotoStorage

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo Repository, publisher Publisher, cache Cache, storage PhotoStorage, bundle *i18n.Bundle) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := bundle.RegisterValidator(validate); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		repository: repo,
		bundle:     bundle,
		publisher:  publisher,
		cache:      cache,
		storage:    storage,

		Mux: chi.NewRouter(),
	}, nil
}

var dispatchers = []domain.Role{domain.RoleAdmin, domain.RoleDispatcher}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 证据照片
	uploadsPrefix := strings.TrimSuffix(h.config.Storage.BaseURL, "/")
	h.Mux.Handle(uploadsPrefix+"/*", http.StripPrefix(uploadsPrefix, http.FileServer(http.Dir(h.storage.BasePath()))))

	h.Mux.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
		})

		// 以下 API 必须登录后才允许调用，并且只能访问自己所属的 DSP
		r.Group(func(r chi.Router) {
			r.Use(h.auth)
			r.Use(h.tenant)

			r.Route("/disponibilites", func(r chi.Router) {
				r.Get("/byDate", h.GetDisponibilitiesByDay)
				r.Get("/disponibilites/employee/{employeeId}/after/{date}", h.GetDisponibilitiesByEmployeeAfter)
				r.With(h.RequiredRole(dispatchers)).Post("/updateDisponibilites/confirmation", h.UpdateConfirmations)
				r.With(h.RequiredRole(dispatchers)).Post("/disponibilites/suspension", h.UpdateSuspension)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.disponibility)
					r.Put("/presence", h.UpdatePresence)
					r.Put("/seen", h.UpdateSeen)
				})
			})

			r.Route("/warnings/wornings", func(r chi.Router) {
				r.Get("/templates/get", h.GetWarningTemplates)
				r.With(h.RequiredRole(dispatchers)).Post("/templates", h.CreateWarningTemplate)
				r.With(h.RequiredRole(dispatchers)).Delete("/templates/{id}", h.DeleteWarningTemplate)
				r.Get("/employee/{employeeId}", h.GetEmployeeWarnings)
				r.With(h.RequiredRole(dispatchers)).Post("/", h.CreateWarning)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.RequiredRole(dispatchers))
					r.Use(h.warning)
					r.Put("/", h.UpdateWarning)
					r.Delete("/", h.DeleteWarning)
				})
			})

			r.Get("/shifts/shifts", h.GetShifts)
			r.Get("/employees", h.GetEmployees)
		})
	})
}
