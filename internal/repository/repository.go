package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	"github.com/dspworks/dispatch/backend/internal/config"
)

//go:embed schema.sql
var schema string

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

// Migrate 创建缺失的表，所有语句都是幂等的
func (r *Repository) Migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, schema)
	return err
}
