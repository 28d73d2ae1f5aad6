package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

func (h *Handler) GetWarningTemplates(w http.ResponseWriter, r *http.Request) {
	dspCode := tenantFrom(r)

	templates, err := cached(h, templatesCacheKey(dspCode), func() ([]*domain.WarningTemplate, error) {
		return h.repository.GetAllWarningTemplates(dspCode)
	})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "templates_fetched", templates)
}

func (h *Handler) CreateWarningTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Raison      string `json:"raison" validate:"required"`
		Description string `json:"description" validate:"required"`
		Severity    string `json:"severity" validate:"omitempty,oneof=low medium high"`
		Type        string `json:"type" validate:"required,oneof=warning suspension"`
		Link        string `json:"link" validate:"omitempty,url"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	dspCode := tenantFrom(r)
	template := &domain.WarningTemplate{
		ID:          uuid.NewString(),
		Raison:      req.Raison,
		Description: req.Description,
		Severity:    domain.Severity(req.Severity),
		Type:        domain.WarningType(req.Type),
		Link:        req.Link,
		DSPCode:     dspCode,
	}

	if err := h.repository.CreateWarningTemplate(template); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "warning_templates_dsp_code_raison_key":
			h.statusResponse(w, r, http.StatusConflict, "template_exists", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.invalidate(templatesCacheKey(dspCode))

	h.successResponse(w, r, "template_created", template)
}

func (h *Handler) DeleteWarningTemplate(w http.ResponseWriter, r *http.Request) {
	dspCode := tenantFrom(r)

	deleted, err := h.repository.DeleteWarningTemplate(dspCode, chi.URLParam(r, "id"))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if deleted == 0 {
		h.statusResponse(w, r, http.StatusNotFound, "template_not_found", nil)
		return
	}

	h.invalidate(templatesCacheKey(dspCode))

	h.successResponse(w, r, "template_deleted", nil)
}
