package dispatch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Platform 封装与界面相关的能力，工作流本身不关心运行在终端还是脚本中
type Platform interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
	Alert(ctx context.Context, message string) error
}

// TerminalPlatform 在终端中提问并打印提示
type TerminalPlatform struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminalPlatform(in io.Reader, out io.Writer) *TerminalPlatform {
	return &TerminalPlatform{in: bufio.NewReader(in), out: out}
}

func (p *TerminalPlatform) Confirm(ctx context.Context, prompt string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)

	answer := make(chan string, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		if err != nil && line == "" {
			answer <- ""
			return
		}
		answer <- line
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return false, ctx.Err()
	case line := <-answer:
		line = strings.ToLower(strings.TrimSpace(line))
		// 法语用户习惯输入 o（oui）
		return line == "y" || line == "yes" || line == "o" || line == "oui", nil
	}
}

func (p *TerminalPlatform) Alert(ctx context.Context, message string) error {
	_, err := fmt.Fprintln(p.out, color.New(color.FgRed).Sprint("✗ "+message))
	return err
}

// HeadlessPlatform 用于脚本和测试：确认结果预先给定，提示被记录下来
type HeadlessPlatform struct {
	AutoConfirm bool

	mu      sync.Mutex
	prompts []string
	alerts  []string
}

func (p *HeadlessPlatform) Confirm(ctx context.Context, prompt string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.prompts = append(p.prompts, prompt)
	return p.AutoConfirm, nil
}

func (p *HeadlessPlatform) Alert(ctx context.Context, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.alerts = append(p.alerts, message)
	return nil
}

func (p *HeadlessPlatform) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.prompts...)
}

func (p *HeadlessPlatform) Alerts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.alerts...)
}
