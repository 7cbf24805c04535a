package repository

import (
	"context"
	"errors"

	"farmtech/entities"
)

// ErrNotFound is returned when no listing matches.
var ErrNotFound = errors.New("resource not found")

// Query pre-filters available listings at the store. Nil fields are absent.
type Query struct {
	Type        *entities.ResourceType
	ServiceType *entities.ServiceType
}

type ResourceRepository interface {
	Create(ctx context.Context, r *entities.Resource) error
	FindByID(ctx context.Context, id string) (*entities.Resource, error)
	// FindOwned returns ErrNotFound when id is missing or owned by someone else.
	FindOwned(ctx context.Context, id, providerID string) (*entities.Resource, error)
	ListByProvider(ctx context.Context, providerID string) ([]entities.Resource, error)
	FindAvailable(ctx context.Context, q Query) ([]entities.Resource, error)
	Update(ctx context.Context, r *entities.Resource) error
	DeleteOwned(ctx context.Context, id, providerID string) error
}
