package seed

import (
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dspworks/dispatch/backend/internal/domain"
	"github.com/dspworks/dispatch/backend/internal/i18n"
	"github.com/dspworks/dispatch/backend/internal/utils"
)

//go:embed data/roster.csv
var data embed.FS

var rosterHeaders = []string{"first_name", "last_name", "email", "language", "score_card"}

var validScoreCards = []domain.ScoreCard{
	domain.ScoreFantastic,
	domain.ScoreGreat,
	domain.ScoreFair,
	domain.ScorePoor,
	domain.ScoreNewDA,
	"",
}

type Store interface {
	CreateShift(s *domain.Shift) error
	CreateEmployee(e *domain.Employee) error
	CreateDisponibility(d *domain.Disponibility) error
	CreateWarningTemplate(t *domain.WarningTemplate) error
	CreateUser(user *domain.User) error
}

type Options struct {
	DSPCode     string
	Employees   int // 随机员工数量，为 0 时只导入内置名单
	Dispatchers int
	Days        int
	Start       time.Time
	Password    string
	EmailDomain string
	SkipRoster  bool
}

type Summary struct {
	Shifts          int
	Employees       int
	Dispatchers     int
	Disponibilities int
	Templates       int
}

// ParseRoster 读取员工名单 CSV，表头必须包含 rosterHeaders 中的所有列，列的顺序不限
func ParseRoster(r io.Reader, dspCode string) ([]*domain.Employee, error) {
	reader := csv.NewReader(r)

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.TrimSpace(h)] = i
	}
	for _, h := range rosterHeaders {
		if _, ok := index[h]; !ok {
			return nil, fmt.Errorf("缺少列 %q", h)
		}
	}

	employees := []*domain.Employee{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}

		field := func(name string) string { return strings.TrimSpace(record[index[name]]) }

		e := &domain.Employee{
			ID:        uuid.NewString(),
			FirstName: field("first_name"),
			LastName:  field("last_name"),
			Email:     field("email"),
			Language:  i18n.Normalize(field("language")),
			ScoreCard: domain.ScoreCard(field("score_card")),
			DSPCode:   dspCode,
		}
		if e.FirstName == "" || e.LastName == "" {
			return nil, fmt.Errorf("第 %d 行: 姓名不能为空", line)
		}
		if !slices.Contains(validScoreCards, e.ScoreCard) {
			return nil, fmt.Errorf("第 %d 行: 未知的 score card %q", line, e.ScoreCard)
		}
		employees = append(employees, e)
	}

	return employees, nil
}

// Tenant 为一个 DSP 填充演示数据：班次、员工、调度员、可用性记录和警告模板
func Tenant(store Store, opts Options) (Summary, error) {
	summary := Summary{}

	shifts := utils.GenerateDefaultShifts(opts.DSPCode)
	for _, s := range shifts {
		if err := store.CreateShift(s); err != nil {
			return summary, fmt.Errorf("无法插入班次: %w", err)
		}
		summary.Shifts++
	}

	employees := []*domain.Employee{}
	if !opts.SkipRoster {
		f, err := data.Open("data/roster.csv")
		if err != nil {
			return summary, err
		}
		defer f.Close()

		roster, err := ParseRoster(f, opts.DSPCode)
		if err != nil {
			return summary, err
		}
		employees = append(employees, roster...)
	}
	for i := 0; i < opts.Employees; i++ {
		employees = append(employees, utils.GenerateRandomEmployee(opts.DSPCode, opts.EmailDomain))
	}

	for _, e := range employees {
		if err := store.CreateEmployee(e); err != nil {
			// 随机生成的邮箱可能重复，跳过即可
			slog.Error("无法插入员工", "email", e.Email, "error", err)
			continue
		}
		summary.Employees++

		for _, d := range utils.GenerateRandomDisponibilities(e, shifts, opts.Start, opts.Days) {
			if err := store.CreateDisponibility(d); err != nil {
				slog.Error("无法插入可用性记录", "employee_id", e.ID, "error", err)
				continue
			}
			summary.Disponibilities++
		}
	}

	for i := 0; i < opts.Dispatchers; i++ {
		user, err := utils.GenerateRandomDispatcher(opts.DSPCode, opts.Password, opts.EmailDomain)
		if err != nil {
			return summary, fmt.Errorf("无法生成调度员: %w", err)
		}
		if err := store.CreateUser(user); err != nil {
			slog.Error("无法插入调度员", "username", user.Username, "error", err)
			continue
		}
		slog.Info("已创建调度员", "username", user.Username)
		summary.Dispatchers++
	}

	for _, t := range utils.GenerateDefaultWarningTemplates(opts.DSPCode) {
		if err := store.CreateWarningTemplate(t); err != nil {
			slog.Error("无法插入警告模板", "raison", t.Raison, "error", err)
			continue
		}
		summary.Templates++
	}

	return summary, nil
}
