package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"

	"github.com/dspworks/dispatch/backend/internal/dispatch"
	"github.com/dspworks/dispatch/backend/internal/domain"
	"github.com/dspworks/dispatch/backend/internal/i18n"
	"github.com/dspworks/dispatch/backend/internal/utils"
)

// EventSource 打开一个实时事件流，close 用于释放连接
type EventSource func(ctx context.Context) (deliveries <-chan amqp.Delivery, close func(), err error)

// App 保存所有命令共享的依赖
type App struct {
	Session *dispatch.Session
	Backend dispatch.Backend
	Bundle  *i18n.Bundle
	Events  EventSource

	In  io.Reader
	Out io.Writer
	Err io.Writer

	yes bool
}

// reportedError 表示错误已经通过 Platform 提示过用户，不需要再打印一次
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func (a *App) translator() *dispatch.Translator {
	return dispatch.NewTranslator(a.Bundle, a.Session)
}

func (a *App) platform() dispatch.Platform {
	if a.yes {
		return &dispatch.HeadlessPlatform{AutoConfirm: true}
	}
	return dispatch.NewTerminalPlatform(a.In, a.Out)
}

// fail 用当前语言提示错误，用户取消时静默返回 nil
func (a *App) fail(ctx context.Context, p dispatch.Platform, err error) error {
	if errors.Is(err, dispatch.ErrCanceled) {
		fmt.Fprintln(a.Out, a.translator().T("canceled"))
		return nil
	}
	return &reportedError{err: a.translator().Report(ctx, p, err)}
}

func (a *App) success(message string) {
	fmt.Fprintf(a.Out, "%s %s\n", color.New(color.FgGreen).Sprint("✓"), message)
}

func (a *App) requireLogin() error {
	switch {
	case a.Session.Token == "":
		return errors.New("not logged in\nHint: run `dispatchctl login` and export DISPATCH_TOKEN")
	case a.Session.DSPCode == "":
		return errors.New("no DSP selected\nHint: use --dsp or export DISPATCH_DSP_CODE")
	}
	return nil
}

// parseDate 接受 YYYY-MM-DD、today 和 tomorrow
func parseDate(s string) (time.Time, error) {
	// 用本地日历日，结果与 ParseISODate 一样落在 UTC 零点
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch strings.ToLower(s) {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}
	return utils.ParseISODate(s)
}

func openPhoto(path string) (*dispatch.Photo, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return &dispatch.Photo{Filename: filepath.Base(path), Content: f}, func() { f.Close() }, nil
}

// NewRootCmd 创建 dispatchctl 的命令树
func NewRootCmd(app *App) *cobra.Command {
	var (
		verbose bool
		lang    string
		dsp     string
	)

	rootCmd := &cobra.Command{
		Use:   "dispatchctl",
		Short: "Dispatch - confirm shifts, record warnings and suspend drivers",
		Long: `dispatchctl talks to the dispatch API on behalf of a dispatcher.
It confirms or cancels accepted availabilities in one batch, records warnings
with photo evidence and suspends drivers from upcoming shifts.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			out := io.Discard
			if verbose {
				out = app.Err
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(out, nil)))

			if lang != "" {
				app.Session.Language = i18n.Normalize(lang)
			}
			if dsp != "" {
				app.Session.DSPCode = dsp
			}
		},
	}
	rootCmd.SetIn(app.In)
	rootCmd.SetOut(app.Out)
	rootCmd.SetErr(app.Err)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")
	rootCmd.PersistentFlags().StringVar(&lang, "lang", "", "Message language (en, fr)")
	rootCmd.PersistentFlags().StringVar(&dsp, "dsp", "", "DSP code (defaults to DISPATCH_DSP_CODE)")
	rootCmd.PersistentFlags().BoolVarP(&app.yes, "yes", "y", false, "Answer yes to every confirmation")

	rootCmd.AddCommand(loginCmd(app))
	rootCmd.AddCommand(dayCmd(app))
	rootCmd.AddCommand(employeeCmd(app))
	rootCmd.AddCommand(confirmCmd(app))
	rootCmd.AddCommand(watchCmd(app))
	rootCmd.AddCommand(warningsCmd(app))
	rootCmd.AddCommand(suspendCmd(app))
	rootCmd.AddCommand(templatesCmd(app))

	return rootCmd
}

// Execute 运行命令并返回进程退出码
func Execute(app *App, args []string) int {
	rootCmd := NewRootCmd(app)
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(app.Err, color.New(color.FgRed).Sprint("✗ "+err.Error()))
		}
		return 1
	}
	return 0
}

func employeeNames(employees []*domain.Employee) map[string]string {
	names := make(map[string]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.FullName()
	}
	return names
}
