package service

import (
	"context"

	"farmtech/entities"
	"farmtech/pkg/ranking"
)

// LocationPatch merges into the stored location; nil keeps the current value.
type LocationPatch struct {
	Village   *string
	Latitude  *float64
	Longitude *float64
}

// ResourcePatch is a partial update. Nil fields are left untouched.
// Only the price matching the resulting pricing unit is read; switching
// units requires that price and clears the other one.
type ResourcePatch struct {
	Type         *entities.ResourceType
	ServiceType  *entities.ServiceType
	PricingUnit  *entities.PricingUnit
	PricePerHour *float64
	PricePerAcre *float64
	Phone        *string
	Description  *string
	Location     *LocationPatch
}

type ResourceService interface {
	List(ctx context.Context, f ranking.Filters) ([]ranking.Ranked, error)
	ListMine(ctx context.Context, providerID string) ([]entities.Resource, error)
	Get(ctx context.Context, id string) (*entities.Resource, error)
	Create(ctx context.Context, in entities.ResourceInput) (*entities.Resource, error)
	Update(ctx context.Context, providerID, id string, p ResourcePatch) (*entities.Resource, error)
	Delete(ctx context.Context, providerID, id string) error
	ToggleAvailability(ctx context.Context, providerID, id string) (*entities.Resource, error)
}
