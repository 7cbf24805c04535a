package repository

import (
	"context"
	"errors"

	"farmtech/entities"
)

var (
	ErrNotFound  = errors.New("profile not found")
	ErrInvalidID = errors.New("invalid profile id")
)

type ProfileRepository interface {
	Get(ctx context.Context, id string) (*entities.Profile, error)
	// Upsert inserts p or overwrites every column of the existing row.
	Upsert(ctx context.Context, p *entities.Profile) error
}
