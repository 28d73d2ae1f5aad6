package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/dspworks/dispatch/backend/internal/config"
	"github.com/dspworks/dispatch/backend/internal/repository"
	"github.com/dspworks/dispatch/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var dspCode string
	var employees int
	var dispatchers int
	var days int
	var start string
	var skipRoster bool

	flag.StringVar(&dspCode, "dsp", "", "要填充的 DSP 代码（默认使用初始管理员的 DSP）")
	flag.IntVar(&employees, "employees", 10, "额外生成的随机员工数量")
	flag.IntVar(&dispatchers, "dispatchers", 2, "生成的调度员数量")
	flag.IntVar(&days, "days", 14, "为多少天生成可用性记录")
	flag.StringVar(&start, "start", "", "可用性记录的起始日期 (YYYY-MM-DD，默认今天)")
	flag.BoolVar(&skipRoster, "skip-roster", false, "不导入内置员工名单")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.RequireDatabase(); err != nil {
		logger.Error("配置不完整", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if dspCode == "" {
		dspCode = cfg.InitialAdmin.DSPCode
	}

	startDay := time.Now().UTC().Truncate(24 * time.Hour)
	if start != "" {
		startDay, err = time.Parse(time.DateOnly, start)
		if err != nil {
			logger.Error("起始日期格式错误", slog.String("start", start))
			os.Exit(1)
		}
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)
	if err := repo.Migrate(); err != nil {
		logger.Error("无法初始化数据库表", "error", err)
		return
	}

	summary, err := seed.Tenant(repo, seed.Options{
		DSPCode:     dspCode,
		Employees:   employees,
		Dispatchers: dispatchers,
		Days:        days,
		Start:       startDay,
		Password:    cfg.Seed.User.Password,
		EmailDomain: cfg.Email.UserDomain,
		SkipRoster:  skipRoster,
	})
	if err != nil {
		logger.Error("填充数据失败", "error", err)
		return
	}

	logger.Info("填充数据成功",
		slog.String("dsp_code", dspCode),
		slog.Int("shifts", summary.Shifts),
		slog.Int("employees", summary.Employees),
		slog.Int("dispatchers", summary.Dispatchers),
		slog.Int("disponibilities", summary.Disponibilities),
		slog.Int("templates", summary.Templates),
	)
}
