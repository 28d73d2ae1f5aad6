package repository

import (
	"context"
	"time"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

func (r *Repository) GetAllEmployees(dspCode string) ([]*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, first_name, last_name, email, language, score_card
		FROM employees
		WHERE dsp_code = $1
		ORDER BY last_name, first_name
	`

	rows, err := r.dbpool.QueryContext(ctx, query, dspCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		e := &domain.Employee{DSPCode: dspCode}
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Language, &e.ScoreCard); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

func (r *Repository) GetEmployeeByID(dspCode string, id string) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT first_name, last_name, email, language, score_card
		FROM employees
		WHERE dsp_code = $1 AND id = $2
	`

	e := &domain.Employee{ID: id, DSPCode: dspCode}
	if err := r.dbpool.QueryRowContext(ctx, query, dspCode, id).Scan(&e.FirstName, &e.LastName, &e.Email, &e.Language, &e.ScoreCard); err != nil {
		return nil, err
	}

	return e, nil
}

func (r *Repository) CreateEmployee(e *domain.Employee) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO employees (id, dsp_code, first_name, last_name, email, language, score_card)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.dbpool.ExecContext(ctx, query, e.ID, e.DSPCode, e.FirstName, e.LastName, e.Email, e.Language, e.ScoreCard)
	return err
}
