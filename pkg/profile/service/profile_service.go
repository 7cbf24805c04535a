package service

import (
	"context"

	"farmtech/entities"
)

type ProfileService interface {
	// Get returns nil, nil when the user has no profile yet.
	Get(ctx context.Context, userID string) (*entities.Profile, error)
	Upsert(ctx context.Context, userID string, fields map[string]string) (*entities.Profile, error)
}
