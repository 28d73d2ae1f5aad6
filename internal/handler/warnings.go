package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dspworks/dispatch/backend/internal/domain"
	"github.com/dspworks/dispatch/backend/internal/utils"
)

// applyWarningForm 把表单中出现的字段写入 w，没有出现的字段保持原值
func applyWarningForm(form url.Values, w *domain.Warning) error {
	strFields := map[string]*string{
		"employeID":   &w.EmployeeID,
		"raison":      &w.Raison,
		"description": &w.Description,
		"date":        &w.Date,
		"link":        &w.Link,
	}
	for key, dst := range strFields {
		if form.Has(key) {
			*dst = form.Get(key)
		}
	}

	if form.Has("type") {
		w.Type = domain.WarningType(form.Get("type"))
	}
	if form.Has("severity") {
		w.Severity = domain.Severity(form.Get("severity"))
	}
	if v := form.Get("susNombre"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid susNombre %q", v)
		}
		w.SusNombre = n
	}

	boolFields := map[string]*bool{
		"signature": &w.Signature,
		"read":      &w.Read,
	}
	for key, dst := range boolFields {
		if v := form.Get(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q", key, v)
			}
			*dst = b
		}
	}

	return nil
}

func (h *Handler) parseWarningForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.Server.MaxUploadSize)
	if err := r.ParseMultipartForm(h.config.Server.MaxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

// formPhoto 返回上传的照片，没有上传时返回 nil
func formPhoto(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil, nil
	}
	return file, header, err
}

func (h *Handler) savePhoto(dspCode string, file multipart.File, header *multipart.FileHeader) (string, error) {
	defer file.Close()
	return h.storage.Save(dspCode, header.Filename, file)
}

func (h *Handler) removePhoto(url string) {
	if err := h.storage.Delete(url); err != nil {
		slog.Warn("删除照片失败", "url", url, "error", err)
	}
}

func (h *Handler) CreateWarning(w http.ResponseWriter, r *http.Request) {
	if err := h.parseWarningForm(w, r); err != nil {
		h.badRequest(w, r, err)
		return
	}

	dspCode := tenantFrom(r)
	warning := &domain.Warning{
		ID:      uuid.NewString(),
		DSPCode: dspCode,
	}
	if err := applyWarningForm(r.Form, warning); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if warning.Date == "" {
		warning.Date = time.Now().UTC().Format(time.RFC3339)
	}

	utils.NormalizeWarning(warning)
	if err := utils.ValidateWarning(warning); err != nil {
		h.badRequest(w, r, err)
		return
	}

	employee, err := h.repository.GetEmployeeByID(dspCode, warning.EmployeeID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.statusResponse(w, r, http.StatusNotFound, "employee_not_found", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	file, header, err := formPhoto(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if file != nil {
		if err := utils.ValidatePhotoFilename(header.Filename); err != nil {
			file.Close()
			h.statusResponse(w, r, http.StatusBadRequest, "photo_invalid", nil)
			return
		}
		if warning.Photo, err = h.savePhoto(dspCode, file, header); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	if err := h.repository.CreateWarning(warning); err != nil {
		h.removePhoto(warning.Photo)
		h.internalServerError(w, r, err)
		return
	}

	h.notifyEmployee(employee, warning)

	h.successResponse(w, r, "warning_created", warning)
}

// notifyEmployee 把通知邮件放入队列，警告已经保存，所以这里的失败只记录日志
func (h *Handler) notifyEmployee(employee *domain.Employee, warning *domain.Warning) {
	mailType := domain.MailTypeWarningIssued
	if warning.Type == domain.WarningTypeSuspension {
		mailType = domain.MailTypeSuspensionIssued
	}
	h.publishWarningMail(mailType, employee, warning)
}

// notifyRetraction 在停职被删除后通知员工，员工已不存在时跳过
func (h *Handler) notifyRetraction(warning *domain.Warning) {
	if warning.Type != domain.WarningTypeSuspension {
		return
	}

	employee, err := h.repository.GetEmployeeByID(warning.DSPCode, warning.EmployeeID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("查询员工失败，未发送撤销通知", "warning", warning.ID, "error", err)
		}
		return
	}
	h.publishWarningMail(domain.MailTypeSuspensionRetracted, employee, warning)
}

func (h *Handler) publishWarningMail(mailType string, employee *domain.Employee, warning *domain.Warning) {
	if employee.Email == "" {
		return
	}

	msg := domain.MailMessage{
		Type:     mailType,
		To:       employee.Email,
		Language: employee.Language,
		Data: domain.WarningMailData{
			FullName:    employee.FullName(),
			Raison:      warning.Raison,
			Description: warning.Description,
			Severity:    warning.Severity,
			Date:        warning.Date,
			Link:        warning.Link,
			SusNombre:   warning.SusNombre,
		},
	}

	if err := h.publisher.PublishMail(msg); err != nil {
		slog.Error("邮件入队失败", "warning", warning.ID, "type", mailType, "to", employee.Email, "error", err)
	}
}

func (h *Handler) GetEmployeeWarnings(w http.ResponseWriter, r *http.Request) {
	warnings, err := h.repository.GetWarningsByEmployee(tenantFrom(r), chi.URLParam(r, "employeeId"))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "warnings_fetched", warnings)
}

func (h *Handler) UpdateWarning(w http.ResponseWriter, r *http.Request) {
	if err := h.parseWarningForm(w, r); err != nil {
		h.badRequest(w, r, err)
		return
	}

	original := r.Context().Value(WarningCtx).(*domain.Warning)
	warning := *original

	if err := applyWarningForm(r.Form, &warning); err != nil {
		h.badRequest(w, r, err)
		return
	}
	// 员工不可更改
	warning.EmployeeID = original.EmployeeID

	utils.NormalizeWarning(&warning)
	if err := utils.ValidateWarning(&warning); err != nil {
		h.badRequest(w, r, err)
		return
	}

	removePhoto, _ := strconv.ParseBool(r.FormValue("removePhoto"))
	file, header, err := formPhoto(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 删除照片和上传新照片不能同时出现，两者都没有时保留原照片
	switch {
	case file != nil && removePhoto:
		file.Close()
		h.statusResponse(w, r, http.StatusBadRequest, "photo_conflict", nil)
		return
	case file != nil:
		if err := utils.ValidatePhotoFilename(header.Filename); err != nil {
			file.Close()
			h.statusResponse(w, r, http.StatusBadRequest, "photo_invalid", nil)
			return
		}
		if warning.Photo, err = h.savePhoto(warning.DSPCode, file, header); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	case removePhoto:
		warning.Photo = ""
	}

	if err := h.repository.UpdateWarning(&warning); err != nil {
		if warning.Photo != original.Photo {
			h.removePhoto(warning.Photo)
		}
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if original.Photo != "" && warning.Photo != original.Photo {
		h.removePhoto(original.Photo)
	}

	h.successResponse(w, r, "warning_updated", &warning)
}

func (h *Handler) DeleteWarning(w http.ResponseWriter, r *http.Request) {
	warning := r.Context().Value(WarningCtx).(*domain.Warning)

	if err := h.repository.DeleteWarning(warning.DSPCode, warning.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.removePhoto(warning.Photo)
	h.notifyRetraction(warning)

	h.successResponse(w, r, "warning_deleted", nil)
}
