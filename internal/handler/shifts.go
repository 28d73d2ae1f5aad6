package handler

import (
	"net/http"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

func (h *Handler) GetShifts(w http.ResponseWriter, r *http.Request) {
	dspCode := tenantFrom(r)

	shifts, err := cached(h, shiftsCacheKey(dspCode), func() ([]*domain.Shift, error) {
		return h.repository.GetAllShifts(dspCode)
	})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "shifts_fetched", shifts)
}

func (h *Handler) GetEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.repository.GetAllEmployees(tenantFrom(r))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "employees_fetched", employees)
}
