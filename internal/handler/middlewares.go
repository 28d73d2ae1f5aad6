package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("已处理请求", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "dsp_code", r.URL.Query().Get("dsp_code"), "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // 这里如果用 slog 的话会很乱
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie(TokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 浏览器通过 cookie 携带令牌，CLI 通过 Authorization 请求头
		tokenString := bearerToken(r)
		if tokenString == "" {
			h.statusResponse(w, r, http.StatusUnauthorized, "unauthorized", nil)
			return
		}

		claims := &AuthClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(h.config.JWT.Secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			h.statusResponse(w, r, http.StatusUnauthorized, "invalid_token", nil)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, RoleCtxKey, claims.Role)
		ctx = context.WithValue(ctx, SubCtxKey, claims.Subject)
		ctx = context.WithValue(ctx, ClaimsDSPCtxKey, claims.DSPCode)
		ctx = context.WithValue(ctx, LanguageCtxKey, claims.Language)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tenant 解析 dsp_code 查询参数，缺省时使用令牌中的 DSP，并禁止跨 DSP 访问
func (h *Handler) tenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claimsDSP, _ := r.Context().Value(ClaimsDSPCtxKey).(string)

		dspCode := r.URL.Query().Get("dsp_code")
		if dspCode == "" {
			dspCode = claimsDSP
		}
		if dspCode == "" {
			h.errorResponse(w, r, "tenant_required")
			return
		}
		if dspCode != claimsDSP {
			h.statusResponse(w, r, http.StatusForbidden, "tenant_mismatch", nil)
			return
		}

		ctx := context.WithValue(r.Context(), TenantCtxKey, dspCode)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tenantFrom(r *http.Request) string {
	dspCode, _ := r.Context().Value(TenantCtxKey).(string)
	return dspCode
}

func (h *Handler) RequiredRole(roles []domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleCtx, _ := r.Context().Value(RoleCtxKey).(string)
			role := domain.Role(roleCtx)
			if !slices.Contains(roles, role) {
				h.statusResponse(w, r, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) disponibility(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := h.repository.GetDisponibilityByID(tenantFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.statusResponse(w, r, http.StatusNotFound, "disponibility_not_found", nil)
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), DisponibilityCtx, d)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) warning(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		warning, err := h.repository.GetWarningByID(tenantFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.statusResponse(w, r, http.StatusNotFound, "warning_not_found", nil)
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), WarningCtx, warning)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
