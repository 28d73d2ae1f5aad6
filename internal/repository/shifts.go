package repository

import (
	"context"
	"time"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

func (r *Repository) GetAllShifts(dspCode string) ([]*domain.Shift, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, name, color, to_char(start_time, 'HH24:MI:SS'), to_char(end_time, 'HH24:MI:SS')
		FROM shifts
		WHERE dsp_code = $1
		ORDER BY start_time, name
	`

	rows, err := r.dbpool.QueryContext(ctx, query, dspCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		s := &domain.Shift{DSPCode: dspCode}
		if err := rows.Scan(&s.ID, &s.Name, &s.Color, &s.StartTime, &s.EndTime); err != nil {
			return nil, err
		}
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (r *Repository) CreateShift(s *domain.Shift) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO shifts (id, dsp_code, name, color, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.dbpool.ExecContext(ctx, query, s.ID, s.DSPCode, s.Name, s.Color, s.StartTime, s.EndTime)
	return err
}
