package repository

import (
	"context"
	"time"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

func (r *Repository) GetAllWarningTemplates(dspCode string) ([]*domain.WarningTemplate, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, raison, description, severity, type, link, created_at
		FROM warning_templates
		WHERE dsp_code = $1
		ORDER BY raison
	`

	rows, err := r.dbpool.QueryContext(ctx, query, dspCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]*domain.WarningTemplate, 0)
	for rows.Next() {
		t := &domain.WarningTemplate{DSPCode: dspCode}
		dst := []any{&t.ID, &t.Raison, &t.Description, &t.Severity, &t.Type, &t.Link, &t.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return templates, nil
}

func (r *Repository) CreateWarningTemplate(t *domain.WarningTemplate) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO warning_templates (id, dsp_code, raison, description, severity, type, link)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	args := []any{t.ID, t.DSPCode, t.Raison, t.Description, t.Severity, t.Type, t.Link}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&t.CreatedAt)
}

func (r *Repository) DeleteWarningTemplate(dspCode string, id string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, `DELETE FROM warning_templates WHERE dsp_code = $1 AND id = $2`, dspCode, id)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
