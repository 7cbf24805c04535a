package repositoryImp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"farmtech/entities"
	"farmtech/pkg/profile/repository"
)

// Schema matches the Supabase `profiles` table.
const Schema = `
CREATE TABLE IF NOT EXISTS profiles (
    id uuid PRIMARY KEY,
    full_name text NOT NULL DEFAULT '',
    phone text NOT NULL DEFAULT '',
    language text NOT NULL DEFAULT '',
    village text NOT NULL DEFAULT '',
    district text NOT NULL DEFAULT '',
    land_size text NOT NULL DEFAULT '',
    soil_type text NOT NULL DEFAULT '',
    irrigation text NOT NULL DEFAULT '',
    profile_image_url text NOT NULL DEFAULT '',
    updated_at timestamptz NOT NULL DEFAULT now()
);`

const profileColumns = `id, full_name, phone, language, village, district, land_size, soil_type, irrigation, profile_image_url, updated_at`

const upsertSQL = `
INSERT INTO profiles (` + profileColumns + `)
VALUES (:id, :full_name, :phone, :language, :village, :district, :land_size, :soil_type, :irrigation, :profile_image_url, :updated_at)
ON CONFLICT (id) DO UPDATE SET
    full_name = EXCLUDED.full_name,
    phone = EXCLUDED.phone,
    language = EXCLUDED.language,
    village = EXCLUDED.village,
    district = EXCLUDED.district,
    land_size = EXCLUDED.land_size,
    soil_type = EXCLUDED.soil_type,
    irrigation = EXCLUDED.irrigation,
    profile_image_url = EXCLUDED.profile_image_url,
    updated_at = EXCLUDED.updated_at`

type pgRepo struct{ db *sqlx.DB }

func NewPostgres(db *sqlx.DB) repository.ProfileRepository { return &pgRepo{db} }

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", repository.ErrInvalidID, id)
	}
	return nil
}

func (r *pgRepo) Get(ctx context.Context, id string) (*entities.Profile, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var p entities.Profile
	err := r.db.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *pgRepo) Upsert(ctx context.Context, p *entities.Profile) error {
	if err := checkID(p.ID); err != nil {
		return err
	}
	if _, err := r.db.NamedExecContext(ctx, upsertSQL, p); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
