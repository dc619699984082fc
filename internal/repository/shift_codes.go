package repository

import (
	"context"
	"time"

	"github.com/mobility-ops/console/backend/internal/shiftcode"
)

func (r *Repository) GetAllShiftCodes() ([]shiftcode.Entry, error) {
	query := `
		SELECT code, description, working, COALESCE(start_time, ''), COALESCE(end_time, '')
		FROM shift_codes ORDER BY code
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]shiftcode.Entry, 0)
	for rows.Next() {
		var e shiftcode.Entry
		if err := rows.Scan(&e.Code, &e.Description, &e.Working, &e.Start, &e.End); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *Repository) UpsertShiftCode(entry shiftcode.Entry) error {
	query := `
		INSERT INTO shift_codes (code, description, working, start_time, end_time)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
		ON CONFLICT (code) DO UPDATE
		SET description = EXCLUDED.description,
			working = EXCLUDED.working,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, entry.Code, entry.Description, entry.Working, entry.Start, entry.End)
	return err
}

// DeleteShiftCode devuelve false si el código no existía.
func (r *Repository) DeleteShiftCode(code string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, `DELETE FROM shift_codes WHERE code = $1`, code)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
