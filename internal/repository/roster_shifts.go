package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mobility-ops/console/backend/internal/domain"
)

func (r *Repository) InsertRosterShifts(shifts []*domain.RosterShift) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO roster_shifts (
			batch_id, row_number, day, code, identifier, full_name, email, phone, address,
			profile_id, match_strategy, match_score, starts_at, ends_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at
	`
	for _, s := range shifts {
		profileID := uuid.NullUUID{}
		if s.ProfileID != nil {
			profileID = uuid.NullUUID{UUID: *s.ProfileID, Valid: true}
		}

		args := []any{
			s.BatchID, s.RowNumber, s.Day, s.Code, s.Identifier, s.FullName, s.Email, s.Phone, s.Address,
			profileID, s.MatchStrategy, s.MatchScore, nullTime(s.StartsAt), nullTime(s.EndsAt),
		}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.CreatedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// GetRosterShiftsBetween devuelve los turnos de los días en [from, to]. Si un día
// aparece en varias importaciones, solo cuenta la más reciente.
func (r *Repository) GetRosterShiftsBetween(from, to time.Time) ([]*domain.RosterShift, error) {
	query := `
		WITH latest AS (
			SELECT DISTINCT ON (day) day, batch_id
			FROM roster_shifts
			WHERE day BETWEEN $1 AND $2
			ORDER BY day, created_at DESC
		)
		SELECT
			rs.id,
			rs.batch_id,
			rs.row_number,
			rs.day,
			rs.code,
			rs.identifier,
			rs.full_name,
			rs.email,
			rs.phone,
			rs.address,
			rs.profile_id,
			rs.match_strategy,
			rs.match_score,
			rs.starts_at,
			rs.ends_at,
			rs.created_at
		FROM roster_shifts rs
		JOIN latest l ON rs.day = l.day AND rs.batch_id = l.batch_id
		ORDER BY rs.day, rs.row_number
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.RosterShift, 0)
	for rows.Next() {
		s := &domain.RosterShift{}
		var profileID uuid.NullUUID
		var startsAt, endsAt sql.NullTime

		dst := []any{
			&s.ID, &s.BatchID, &s.RowNumber, &s.Day, &s.Code, &s.Identifier, &s.FullName, &s.Email, &s.Phone, &s.Address,
			&profileID, &s.MatchStrategy, &s.MatchScore, &startsAt, &endsAt, &s.CreatedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if profileID.Valid {
			s.ProfileID = &profileID.UUID
		}
		if startsAt.Valid {
			s.StartsAt = &startsAt.Time
		}
		if endsAt.Valid {
			s.EndsAt = &endsAt.Time
		}
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
