package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dspworks/dispatch/backend/internal/domain"
	"github.com/dspworks/dispatch/backend/internal/utils"
)

func (h *Handler) GetDisponibilitiesByDay(w http.ResponseWriter, r *http.Request) {
	day, err := domain.ParseDay(r.URL.Query().Get("selectedDay"))
	if err != nil {
		h.statusResponse(w, r, http.StatusBadRequest, "invalid_day", nil)
		return
	}

	disponibilities, err := h.repository.GetDisponibilitiesByDay(tenantFrom(r), day)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 客户端把 404 视为当天没有记录
	if len(disponibilities) == 0 {
		h.statusResponse(w, r, http.StatusNotFound, "disponibilities_empty", []*domain.Disponibility{})
		return
	}

	h.successResponse(w, r, "disponibilities_fetched", disponibilities)
}

func (h *Handler) GetDisponibilitiesByEmployeeAfter(w http.ResponseWriter, r *http.Request) {
	after, err := utils.ParseISODate(chi.URLParam(r, "date"))
	if err != nil {
		h.statusResponse(w, r, http.StatusBadRequest, "invalid_date", nil)
		return
	}

	disponibilities, err := h.repository.GetDisponibilitiesByEmployeeAfter(tenantFrom(r), chi.URLParam(r, "employeeId"), after)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if len(disponibilities) == 0 {
		h.statusResponse(w, r, http.StatusNotFound, "disponibilities_empty", []*domain.Disponibility{})
		return
	}

	h.successResponse(w, r, "disponibilities_fetched", disponibilities)
}

func (h *Handler) UpdateConfirmations(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirmations []domain.ConfirmationItem `json:"confirmations" validate:"required,min=1,dive"`
		DSPCode       string                    `json:"dsp_code"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateConfirmationItems(req.Confirmations); err != nil {
		if errors.Is(err, utils.ErrInvalidDay) {
			h.statusResponse(w, r, http.StatusBadRequest, "invalid_day", nil)
			return
		}
		h.badRequest(w, r, err)
		return
	}

	// 请求体里的 dsp_code 只能与当前租户一致
	dspCode := tenantFrom(r)
	if req.DSPCode != "" && req.DSPCode != dspCode {
		h.statusResponse(w, r, http.StatusForbidden, "tenant_mismatch", nil)
		return
	}

	updated, err := h.repository.UpdateConfirmations(dspCode, req.Confirmations)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "confirmations_saved", map[string]any{
		"updated": updated,
	})
}

func (h *Handler) UpdateSuspension(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisponibiliteIDs []string `json:"disponibiliteIds" validate:"required,min=1,dive,required"`
		Suspension       *bool    `json:"suspension" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.repository.SetSuspension(tenantFrom(r), req.DisponibiliteIDs, *req.Suspension)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "suspension_saved", map[string]any{
		"updated": updated,
	})
}

func (h *Handler) UpdatePresence(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Presence domain.Presence `json:"presence" validate:"required,oneof=confirmed rejected"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	d := r.Context().Value(DisponibilityCtx).(*domain.Disponibility)

	// 只有已确认的班次才能记录出勤
	if d.Confirmation != domain.ConfirmationConfirmed {
		h.statusResponse(w, r, http.StatusConflict, "presence_requires_confirmation", nil)
		return
	}

	if err := h.repository.UpdatePresence(d, req.Presence); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	presence := req.Presence
	h.publishEvent(domain.DisponibilityEvent{
		Kind:     domain.EventPresence,
		ID:       d.ID,
		DSPCode:  d.DSPCode,
		Presence: &presence,
		Version:  d.Version,
	})

	h.successResponse(w, r, "presence_saved", d)
}

func (h *Handler) UpdateSeen(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seen *bool `json:"seen" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	d := r.Context().Value(DisponibilityCtx).(*domain.Disponibility)

	if err := h.repository.UpdateSeen(d, *req.Seen); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	seen := *req.Seen
	h.publishEvent(domain.DisponibilityEvent{
		Kind:    domain.EventSeen,
		ID:      d.ID,
		DSPCode: d.DSPCode,
		Seen:    &seen,
		Version: d.Version,
	})

	h.successResponse(w, r, "seen_saved", d)
}

// publishEvent 的失败不影响已经提交的更新，客户端下一次加载时仍会拿到最新数据
func (h *Handler) publishEvent(evt domain.DisponibilityEvent) {
	if err := h.publisher.PublishEvent(evt); err != nil {
		slog.Error("发布事件失败", "kind", evt.Kind, "id", evt.ID, "error", err)
	}
}
