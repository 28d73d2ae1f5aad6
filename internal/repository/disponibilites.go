package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

const disponibilityColumns = `id, dsp_code, employee_id, shift_id, selected_day, decisions, confirmation, presence, seen, suspension, updated_at, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDisponibility(s rowScanner) (*domain.Disponibility, error) {
	var row struct {
		day        time.Time
		presence   sql.NullString
		seen       sql.NullBool
		suspension sql.NullBool
	}

	d := &domain.Disponibility{}
	dst := []any{
		&d.ID,
		&d.DSPCode,
		&d.EmployeeID,
		&d.ShiftID,
		&row.day,
		&d.Decisions,
		&d.Confirmation,
		&row.presence,
		&row.seen,
		&row.suspension,
		&d.UpdatedAt,
		&d.Version,
	}
	if err := s.Scan(dst...); err != nil {
		return nil, err
	}

	d.SelectedDay = domain.FormatDay(row.day)
	if row.presence.Valid {
		p := domain.Presence(row.presence.String)
		d.Presence = &p
	}
	if row.seen.Valid {
		d.Seen = &row.seen.Bool
	}
	if row.suspension.Valid {
		d.Suspension = &row.suspension.Bool
	}

	return d, nil
}

func (r *Repository) queryDisponibilities(query string, args ...any) ([]*domain.Disponibility, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	disponibilities := make([]*domain.Disponibility, 0)
	for rows.Next() {
		d, err := scanDisponibility(rows)
		if err != nil {
			return nil, err
		}
		disponibilities = append(disponibilities, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return disponibilities, nil
}

func (r *Repository) GetDisponibilitiesByDay(dspCode string, day time.Time) ([]*domain.Disponibility, error) {
	query := `
		SELECT ` + disponibilityColumns + `
		FROM disponibilites
		WHERE dsp_code = $1 AND selected_day = $2
		ORDER BY shift_id, employee_id
	`
	return r.queryDisponibilities(query, dspCode, day)
}

func (r *Repository) GetDisponibilitiesByEmployeeAfter(dspCode string, employeeID string, after time.Time) ([]*domain.Disponibility, error) {
	query := `
		SELECT ` + disponibilityColumns + `
		FROM disponibilites
		WHERE dsp_code = $1 AND employee_id = $2 AND selected_day >= $3
		ORDER BY selected_day
	`
	return r.queryDisponibilities(query, dspCode, employeeID, after)
}

func (r *Repository) GetDisponibilityByID(dspCode string, id string) (*domain.Disponibility, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT ` + disponibilityColumns + `
		FROM disponibilites
		WHERE dsp_code = $1 AND id = $2
	`
	return scanDisponibility(r.dbpool.QueryRowContext(ctx, query, dspCode, id))
}

func (r *Repository) CreateDisponibility(d *domain.Disponibility) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	day, err := domain.ParseDay(d.SelectedDay)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO disponibilites (id, dsp_code, employee_id, shift_id, selected_day, decisions)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING confirmation, updated_at, version
	`
	args := []any{d.ID, d.DSPCode, d.EmployeeID, d.ShiftID, day, d.Decisions}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&d.Confirmation, &d.UpdatedAt, &d.Version)
}

// UpdateConfirmations 在一个事务中写入所有确认结果，返回受影响的记录数
func (r *Repository) UpdateConfirmations(dspCode string, items []domain.ConfirmationItem) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE disponibilites
		SET
			confirmation = $1,
			presence = CASE WHEN $1 = 'confirmed' THEN presence ELSE NULL END,
			updated_at = NOW(),
			version = version + 1
		WHERE dsp_code = $2 AND employee_id = $3 AND shift_id = $4 AND selected_day = $5
	`

	var affected int64
	for _, item := range items {
		day, err := domain.ParseDay(item.SelectedDay)
		if err != nil {
			return 0, err
		}

		res, err := tx.ExecContext(ctx, query, item.Status, dspCode, item.EmployeeID, item.ShiftID, day)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		affected += n
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return affected, nil
}

func (r *Repository) SetSuspension(dspCode string, ids []string, suspension bool) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE disponibilites
		SET suspension = $1, updated_at = NOW(), version = version + 1
		WHERE dsp_code = $2 AND id = $3
	`

	var affected int64
	for _, id := range ids {
		res, err := tx.ExecContext(ctx, query, suspension, dspCode, id)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		affected += n
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return affected, nil
}

// UpdatePresence 使用乐观锁更新出勤状态，只允许已确认的记录
func (r *Repository) UpdatePresence(d *domain.Disponibility, presence domain.Presence) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE disponibilites
		SET presence = $1, updated_at = NOW(), version = version + 1
		WHERE dsp_code = $2 AND id = $3 AND version = $4 AND confirmation = 'confirmed'
		RETURNING updated_at, version
	`
	args := []any{presence, d.DSPCode, d.ID, d.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&d.UpdatedAt, &d.Version); err != nil {
		return err
	}

	d.Presence = &presence
	return nil
}

func (r *Repository) UpdateSeen(d *domain.Disponibility, seen bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE disponibilites
		SET seen = $1, updated_at = NOW(), version = version + 1
		WHERE dsp_code = $2 AND id = $3 AND version = $4
		RETURNING updated_at, version
	`
	args := []any{seen, d.DSPCode, d.ID, d.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&d.UpdatedAt, &d.Version); err != nil {
		return err
	}

	d.Seen = &seen
	return nil
}
