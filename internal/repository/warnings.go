package repository

import (
	"context"
	"time"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

const warningColumns = `id, dsp_code, employee_id, type, raison, description, severity, date, link, photo, sus_nombre, signature, read, created_at, version`

func scanWarning(s rowScanner) (*domain.Warning, error) {
	w := &domain.Warning{}
	dst := []any{
		&w.ID,
		&w.DSPCode,
		&w.EmployeeID,
		&w.Type,
		&w.Raison,
		&w.Description,
		&w.Severity,
		&w.Date,
		&w.Link,
		&w.Photo,
		&w.SusNombre,
		&w.Signature,
		&w.Read,
		&w.CreatedAt,
		&w.Version,
	}
	if err := s.Scan(dst...); err != nil {
		return nil, err
	}
	return w, nil
}

func (r *Repository) CreateWarning(w *domain.Warning) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO warnings (id, dsp_code, employee_id, type, raison, description, severity, date, link, photo, sus_nombre, signature, read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, version
	`
	args := []any{w.ID, w.DSPCode, w.EmployeeID, w.Type, w.Raison, w.Description, w.Severity, w.Date, w.Link, w.Photo, w.SusNombre, w.Signature, w.Read}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&w.CreatedAt, &w.Version)
}

func (r *Repository) GetWarningByID(dspCode string, id string) (*domain.Warning, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `SELECT ` + warningColumns + ` FROM warnings WHERE dsp_code = $1 AND id = $2`
	return scanWarning(r.dbpool.QueryRowContext(ctx, query, dspCode, id))
}

func (r *Repository) GetWarningsByEmployee(dspCode string, employeeID string) ([]*domain.Warning, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT ` + warningColumns + `
		FROM warnings
		WHERE dsp_code = $1 AND employee_id = $2
		ORDER BY created_at DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query, dspCode, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	warnings := make([]*domain.Warning, 0)
	for rows.Next() {
		w, err := scanWarning(rows)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return warnings, nil
}

func (r *Repository) UpdateWarning(w *domain.Warning) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE warnings
		SET
			type = $1,
			raison = $2,
			description = $3,
			severity = $4,
			date = $5,
			link = $6,
			photo = $7,
			sus_nombre = $8,
			signature = $9,
			read = $10,
			version = version + 1
		WHERE dsp_code = $11 AND id = $12 AND version = $13
		RETURNING version
	`
	args := []any{w.Type, w.Raison, w.Description, w.Severity, w.Date, w.Link, w.Photo, w.SusNombre, w.Signature, w.Read, w.DSPCode, w.ID, w.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&w.Version)
}

func (r *Repository) DeleteWarning(dspCode string, id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `DELETE FROM warnings WHERE dsp_code = $1 AND id = $2`

	_, err := r.dbpool.ExecContext(ctx, query, dspCode, id)
	if err != nil {
		return err
	}

	return nil
}
