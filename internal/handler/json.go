package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dspworks/dispatch/backend/internal/i18n"
)

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("服务器内部错误", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
	}
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// lang 优先使用 Accept-Language 请求头，其次是令牌中的用户语言
func (h *Handler) lang(r *http.Request) string {
	if header := r.Header.Get("Accept-Language"); strings.TrimSpace(header) != "" {
		return i18n.Normalize(header)
	}
	if lang, ok := r.Context().Value(LanguageCtxKey).(string); ok {
		return i18n.Normalize(lang)
	}
	return i18n.English
}

func (h *Handler) t(r *http.Request, key string) string {
	return h.bundle.T(h.lang(r), key)
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, key string) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: false,
		Message: h.t(r, key),
		Data:    nil,
	})
}

func (h *Handler) statusResponse(w http.ResponseWriter, r *http.Request, status int, key string, data any) {
	h.writeJSON(w, r, status, Response{
		Success: false,
		Message: h.t(r, key),
		Data:    data,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.writeJSON(w, r, http.StatusBadRequest, Response{Success: false, Message: err.Error()})
		return
	}

	h.writeJSON(w, r, http.StatusBadRequest, Response{
		Success: false,
		Message: validationErrors[0].Translate(h.bundle.Translator(h.lang(r))),
	})
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: h.t(r, "internal_error"),
		Data:    nil,
	})
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, key string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: h.t(r, key),
		Data:    data,
	})
}
