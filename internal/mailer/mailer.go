package mailer

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"

	"github.com/dspworks/dispatch/backend/internal/domain"
	"github.com/dspworks/dispatch/backend/internal/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrUnsupportedType 表示消息无法处理，重新入队也没有意义
var ErrUnsupportedType = errors.New("unsupported mail type")

var subjects = map[string]map[string]string{
	domain.MailTypeWarningIssued: {
		i18n.English: "Dispatch - New warning on your file",
		i18n.French:  "Dispatch - Nouvel avertissement à votre dossier",
	},
	domain.MailTypeSuspensionIssued: {
		i18n.English: "Dispatch - Shift suspension",
		i18n.French:  "Dispatch - Suspension de quarts",
	},
	domain.MailTypeSuspensionRetracted: {
		i18n.English: "Dispatch - Suspension withdrawn",
		i18n.French:  "Dispatch - Suspension annulée",
	},
}

type Renderer struct {
	from      string
	templates *template.Template
}

func NewRenderer(from string) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{from: from, templates: tmpl}, nil
}

// Render 渲染邮件正文，返回主题和 HTML
func (r *Renderer) Render(message domain.MailMessage) (string, string, error) {
	byLang, ok := subjects[message.Type]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedType, message.Type)
	}
	lang := i18n.Normalize(message.Language)

	// 消息经过 JSON 传输后 Data 是 map，这里重新解码成具体类型
	raw, err := json.Marshal(message.Data)
	if err != nil {
		return "", "", err
	}
	var data domain.WarningMailData
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", "", err
	}
	if t, err := time.Parse(time.RFC3339, data.Date); err == nil {
		data.Date = t.Format(time.DateOnly)
	}

	tmpl := r.templates.Lookup(fmt.Sprintf("%s.%s.html", message.Type, lang))
	if tmpl == nil {
		return "", "", fmt.Errorf("%w: no %s template for %q", ErrUnsupportedType, lang, message.Type)
	}
	body := &bytes.Buffer{}
	if err := tmpl.Execute(body, data); err != nil {
		return "", "", err
	}

	return byLang[lang], body.String(), nil
}

// Build 根据消息类型和收件人语言生成邮件
func (r *Renderer) Build(message domain.MailMessage) (*mail.Msg, error) {
	subject, body, err := r.Render(message)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(r.from); err != nil {
		return nil, err
	}
	if err := msg.To(message.To); err != nil {
		return nil, err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	return msg, nil
}

type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Worker 消费邮件队列：无法构建的消息直接丢弃，发送失败的消息重新入队
type Worker struct {
	renderer    *Renderer
	sender      Sender
	sendTimeout time.Duration
}

func NewWorker(renderer *Renderer, sender Sender, sendTimeout time.Duration) *Worker {
	return &Worker{renderer: renderer, sender: sender, sendTimeout: sendTimeout}
}

func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var message domain.MailMessage
	if err := json.Unmarshal(d.Body, &message); err != nil {
		slog.Error("邮件信息反序列化失败", "error", err)
		_ = d.Nack(false, false)
		return
	}
	slog.Info("收到邮件任务", "type", message.Type, "to", message.To, "language", message.Language)

	msg, err := w.renderer.Build(message)
	if err != nil {
		slog.Error("无法构建邮件", "type", message.Type, "error", err)
		_ = d.Nack(false, false)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
	defer cancel()

	if err := w.sender.DialAndSendWithContext(sendCtx, msg); err != nil {
		slog.Error("邮件发送失败", "to", message.To, "error", err)
		_ = d.Nack(false, true) // 将消息重新入队
		return
	}

	_ = d.Ack(false)
}
