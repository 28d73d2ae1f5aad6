package dispatch

import (
	"time"

	"github.com/dspworks/dispatch/backend/internal/config"
	"github.com/dspworks/dispatch/backend/internal/i18n"
)

// Session 描述当前调度员：服务器地址、所属 DSP、令牌和界面语言。
// 所有组件都通过构造函数接收它，不依赖任何全局状态
type Session struct {
	BaseURL  string
	DSPCode  string
	Token    string
	Language string
	Timeout  time.Duration
}

func NewSession(cfg *config.Config) *Session {
	return &Session{
		BaseURL:  cfg.Client.BaseURL,
		DSPCode:  cfg.Client.DSPCode,
		Token:    cfg.Client.Token,
		Language: i18n.Normalize(cfg.Client.Language),
		Timeout:  time.Duration(cfg.Client.RequestTimeout) * time.Second,
	}
}
