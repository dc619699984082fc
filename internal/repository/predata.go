package repository

import (
	"context"
	"time"

	"github.com/mobility-ops/console/backend/internal/domain"
)

func (r *Repository) GetAllPredata() ([]*domain.Predata, error) {
	query := `
		SELECT id, national_id, full_name, email, phone, address, commune, imported_at
		FROM predata ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*domain.Predata, 0)
	for rows.Next() {
		p := &domain.Predata{}
		dst := []any{&p.ID, &p.NationalID, &p.FullName, &p.Email, &p.Phone, &p.Address, &p.Commune, &p.ImportedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		records = append(records, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// InsertPredata guarda una importación completa. Con replace se borran antes los
// registros anteriores dentro de la misma transacción.
func (r *Repository) InsertPredata(records []*domain.Predata, replace bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM predata`); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO predata (national_id, full_name, email, phone, address, commune)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, imported_at
	`
	for _, p := range records {
		args := []any{p.NationalID, p.FullName, p.Email, p.Phone, p.Address, p.Commune}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.ImportedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
