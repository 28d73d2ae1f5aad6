package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

// HTTPBackend 通过 REST 接口访问服务器，每个请求都带上 dsp_code、令牌和语言
type HTTPBackend struct {
	session *Session
	client  *http.Client
}

func NewHTTPBackend(session *Session) *HTTPBackend {
	timeout := session.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &HTTPBackend{
		session: session,
		client:  &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (b *HTTPBackend) endpoint(path string) string {
	query := url.Values{}
	if b.session.DSPCode != "" {
		query.Set("dsp_code", b.session.DSPCode)
	}
	return strings.TrimSuffix(b.session.BaseURL, "/") + path + "?" + query.Encode()
}

func (b *HTTPBackend) do(ctx context.Context, method, target string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", b.session.Language)
	if b.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+b.session.Token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return &NetworkError{Op: method + " " + req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	// 404 的响应体可能不是 JSON，先于解码处理
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, req.URL.Path, ErrNotFound)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		return &ServerError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	switch {
	case resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success:
		message := env.Message
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return &ServerError{Status: resp.StatusCode, Message: message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
		}
	}
	return nil
}

func (b *HTTPBackend) doJSON(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return b.do(ctx, method, b.endpoint(path), body, contentType, out)
}

// Login 用用户名和密码换取令牌，并写入当前会话
func (b *HTTPBackend) Login(ctx context.Context, username, password string) (*domain.User, error) {
	var data struct {
		User  *domain.User `json:"user"`
		Token string       `json:"token"`
	}

	req := map[string]string{"username": username, "password": password}
	if err := b.doJSON(ctx, http.MethodPost, "/api/auth/login", req, &data); err != nil {
		return nil, err
	}

	b.session.Token = data.Token
	if b.session.DSPCode == "" && data.User != nil {
		b.session.DSPCode = data.User.DSPCode
	}
	return data.User, nil
}

func (b *HTTPBackend) DisponibilitiesByDay(ctx context.Context, day time.Time) ([]*domain.Disponibility, error) {
	target := b.endpoint("/api/disponibilites/byDate") + "&selectedDay=" + url.QueryEscape(domain.FormatDay(day))

	var records []*domain.Disponibility
	if err := b.do(ctx, http.MethodGet, target, nil, "", &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (b *HTTPBackend) DisponibilitiesByEmployeeAfter(ctx context.Context, employeeID string, after time.Time) ([]*domain.Disponibility, error) {
	path := fmt.Sprintf("/api/disponibilites/disponibilites/employee/%s/after/%s", url.PathEscape(employeeID), after.UTC().Format(time.RFC3339))

	var records []*domain.Disponibility
	if err := b.doJSON(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (b *HTTPBackend) SubmitConfirmations(ctx context.Context, items []domain.ConfirmationItem) error {
	req := struct {
		Confirmations []domain.ConfirmationItem `json:"confirmations"`
		DSPCode       string                    `json:"dsp_code"`
	}{
		Confirmations: items,
		DSPCode:       b.session.DSPCode,
	}
	return b.doJSON(ctx, http.MethodPost, "/api/disponibilites/updateDisponibilites/confirmation", req, nil)
}

func (b *HTTPBackend) SetSuspension(ctx context.Context, ids []string, suspension bool) error {
	req := struct {
		DisponibiliteIDs []string `json:"disponibiliteIds"`
		Suspension       bool     `json:"suspension"`
	}{
		DisponibiliteIDs: ids,
		Suspension:       suspension,
	}
	return b.doJSON(ctx, http.MethodPost, "/api/disponibilites/disponibilites/suspension", req, nil)
}

// warningForm 按服务器约定的字段名构造 multipart 表单
func warningForm(w *domain.Warning, photo *Photo, removePhoto bool) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	fields := [][2]string{
		{"employeID", w.EmployeeID},
		{"type", string(w.Type)},
		{"raison", w.Raison},
		{"description", w.Description},
		{"severity", string(w.Severity)},
		{"link", w.Link},
		{"susNombre", strconv.Itoa(w.SusNombre)},
		{"date", w.Date},
		{"signature", strconv.FormatBool(w.Signature)},
	}
	if removePhoto {
		fields = append(fields, [2]string{"removePhoto", "true"})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if photo != nil {
		fw, err := mw.CreateFormFile("photo", photo.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(fw, photo.Content); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return body, mw.FormDataContentType(), nil
}

func (b *HTTPBackend) CreateWarning(ctx context.Context, w *domain.Warning, photo *Photo) (*domain.Warning, error) {
	body, contentType, err := warningForm(w, photo, false)
	if err != nil {
		return nil, err
	}

	created := &domain.Warning{}
	if err := b.do(ctx, http.MethodPost, b.endpoint("/api/warnings/wornings"), body, contentType, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (b *HTTPBackend) UpdateWarning(ctx context.Context, w *domain.Warning, photo *Photo, removePhoto bool) (*domain.Warning, error) {
	body, contentType, err := warningForm(w, photo, removePhoto)
	if err != nil {
		return nil, err
	}

	updated := &domain.Warning{}
	if err := b.do(ctx, http.MethodPut, b.endpoint("/api/warnings/wornings/"+url.PathEscape(w.ID)), body, contentType, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (b *HTTPBackend) DeleteWarning(ctx context.Context, id string) error {
	return b.doJSON(ctx, http.MethodDelete, "/api/warnings/wornings/"+url.PathEscape(id), nil, nil)
}

func (b *HTTPBackend) WarningsByEmployee(ctx context.Context, employeeID string) ([]*domain.Warning, error) {
	var warnings []*domain.Warning
	if err := b.doJSON(ctx, http.MethodGet, "/api/warnings/wornings/employee/"+url.PathEscape(employeeID), nil, &warnings); err != nil {
		return nil, err
	}
	return warnings, nil
}

func (b *HTTPBackend) WarningTemplates(ctx context.Context) ([]*domain.WarningTemplate, error) {
	var templates []*domain.WarningTemplate
	if err := b.doJSON(ctx, http.MethodGet, "/api/warnings/wornings/templates/get", nil, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (b *HTTPBackend) Shifts(ctx context.Context) ([]*domain.Shift, error) {
	var shifts []*domain.Shift
	if err := b.doJSON(ctx, http.MethodGet, "/api/shifts/shifts", nil, &shifts); err != nil {
		return nil, err
	}
	return shifts, nil
}

func (b *HTTPBackend) Employees(ctx context.Context) ([]*domain.Employee, error) {
	var employees []*domain.Employee
	if err := b.doJSON(ctx, http.MethodGet, "/api/employees", nil, &employees); err != nil {
		return nil, err
	}
	return employees, nil
}
