package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mobility-ops/console/backend/internal/domain"
)

// national_id y email son únicos; los vacíos se guardan como NULL para no chocar entre sí.

func (r *Repository) GetProfileByID(id uuid.UUID) (*domain.Profile, error) {
	query := `
		SELECT username, full_name, COALESCE(national_id, ''), COALESCE(email, ''), phone, address, commune, role, is_active, created_at, version
		FROM profiles WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	profile := &domain.Profile{
		ID: id,
	}

	dst := []any{&profile.Username, &profile.FullName, &profile.NationalID, &profile.Email, &profile.Phone, &profile.Address, &profile.Commune, &profile.Role, &profile.IsActive, &profile.CreatedAt, &profile.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return profile, nil
}

func (r *Repository) GetAllProfiles() ([]*domain.Profile, error) {
	query := `
		SELECT id, username, full_name, COALESCE(national_id, ''), COALESCE(email, ''), phone, address, commune, role, is_active, created_at, version
		FROM profiles ORDER BY full_name
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]*domain.Profile, 0)
	for rows.Next() {
		profile := &domain.Profile{}
		dst := []any{&profile.ID, &profile.Username, &profile.FullName, &profile.NationalID, &profile.Email, &profile.Phone, &profile.Address, &profile.Commune, &profile.Role, &profile.IsActive, &profile.CreatedAt, &profile.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

func (r *Repository) CreateProfile(profile *domain.Profile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}

	query := `
		INSERT INTO profiles (id, username, full_name, national_id, email, phone, address, commune, role)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9)
		RETURNING is_active, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{profile.ID, profile.Username, profile.FullName, profile.NationalID, profile.Email, profile.Phone, profile.Address, profile.Commune, profile.Role}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&profile.IsActive, &profile.CreatedAt, &profile.Version); err != nil {
		return err
	}

	return nil
}

// UpdateProfile devuelve sql.ErrNoRows si la versión cambió entre la lectura y la escritura.
func (r *Repository) UpdateProfile(profile *domain.Profile) error {
	query := `
		UPDATE profiles
		SET
			full_name = $1,
			national_id = NULLIF($2, ''),
			email = NULLIF($3, ''),
			phone = $4,
			address = $5,
			commune = $6,
			role = $7,
			is_active = $8,
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING username, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{profile.FullName, profile.NationalID, profile.Email, profile.Phone, profile.Address, profile.Commune, profile.Role, profile.IsActive, profile.ID, profile.Version}
	dst := []any{&profile.Username, &profile.CreatedAt, &profile.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}
