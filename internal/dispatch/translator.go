package dispatch

import (
	"context"
	"errors"

	"github.com/dspworks/dispatch/backend/internal/i18n"
)

// Translator 按会话语言（英文或法文）生成给用户看的文本
type Translator struct {
	bundle *i18n.Bundle
	lang   string
}

func NewTranslator(bundle *i18n.Bundle, session *Session) *Translator {
	return &Translator{bundle: bundle, lang: i18n.Normalize(session.Language)}
}

func (t *Translator) T(key string, params ...string) string {
	return t.bundle.T(t.lang, key, params...)
}

// Localize 把错误转换成用户能读懂的一句话，不包含错误码
func (t *Translator) Localize(err error) string {
	var (
		validationErr *ValidationError
		partialErr    *PartialFailureError
		serverErr     *ServerError
		networkErr    *NetworkError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return t.T("field_required", validationErr.Field)
	case errors.As(err, &partialErr):
		return t.T("partial_failure")
	case errors.Is(err, ErrInFlight):
		return t.T("in_flight")
	case errors.Is(err, ErrCanceled), errors.Is(err, context.Canceled):
		return t.T("canceled")
	case errors.Is(err, ErrPresenceBeforeConfirmation):
		return t.T("presence_before_confirmation")
	case errors.Is(err, ErrNothingStaged):
		return t.T("nothing_staged")
	case errors.Is(err, ErrPhotoConflict):
		return t.T("photo_conflict")
	case errors.Is(err, ErrNotFound):
		return t.T("not_found")
	case errors.As(err, &serverErr):
		return t.T("server_error", serverErr.Message)
	case errors.As(err, &networkErr), errors.Is(err, context.DeadlineExceeded):
		return t.T("network_error")
	default:
		return t.T("unknown_error")
	}
}

// Report 通过平台提示用户错误并原样返回它；用户主动取消不算失败，不会弹出提示
func (t *Translator) Report(ctx context.Context, p Platform, err error) error {
	if err == nil || errors.Is(err, ErrCanceled) {
		return err
	}
	if alertErr := p.Alert(ctx, t.Localize(err)); alertErr != nil {
		return errors.Join(err, alertErr)
	}
	return err
}
