package serviceImp

import (
	"context"
	"fmt"
	"strings"

	"farmtech/entities"
	"farmtech/pkg/ranking"
	repo "farmtech/pkg/resource/repository"
	"farmtech/pkg/resource/service"
)

type resourceSvc struct{ r repo.ResourceRepository }

func NewResourceService(r repo.ResourceRepository) service.ResourceService { return &resourceSvc{r} }

// List narrows at the store and lets the engine apply every filter again.
func (s *resourceSvc) List(ctx context.Context, f ranking.Filters) ([]ranking.Ranked, error) {
	rs, err := s.r.FindAvailable(ctx, repo.Query{Type: f.Type, ServiceType: f.ServiceType})
	if err != nil {
		return nil, err
	}
	return ranking.Rank(rs, f), nil
}

func (s *resourceSvc) ListMine(ctx context.Context, providerID string) ([]entities.Resource, error) {
	return s.r.ListByProvider(ctx, providerID)
}

func (s *resourceSvc) Get(ctx context.Context, id string) (*entities.Resource, error) {
	return s.r.FindByID(ctx, id)
}

func (s *resourceSvc) Create(ctx context.Context, in entities.ResourceInput) (*entities.Resource, error) {
	r, err := entities.NewResource(in)
	if err != nil {
		return nil, err
	}
	if err := s.r.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *resourceSvc) Update(ctx context.Context, providerID, id string, p service.ResourcePatch) (*entities.Resource, error) {
	cur, err := s.r.FindOwned(ctx, id, providerID)
	if err != nil {
		return nil, err
	}
	if err := applyPatch(cur, p); err != nil {
		return nil, err
	}
	if err := cur.Validate(); err != nil {
		return nil, err
	}
	if err := s.r.Update(ctx, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

func applyPatch(cur *entities.Resource, p service.ResourcePatch) error {
	if p.Type != nil {
		cur.Type = *p.Type
	}
	if p.ServiceType != nil {
		cur.ServiceType = *p.ServiceType
	}
	if p.Phone != nil && strings.TrimSpace(*p.Phone) != "" {
		cur.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Description != nil {
		cur.Description = strings.TrimSpace(*p.Description)
	}

	unit := cur.PricingUnit
	if p.PricingUnit != nil {
		unit = *p.PricingUnit
	}
	price := p.PricePerHour
	if unit == entities.PerAcre {
		price = p.PricePerAcre
	}
	switch {
	case price != nil:
		cur.SetPrice(unit, *price)
	case unit != cur.PricingUnit:
		return fmt.Errorf("%w: a %s price is required when switching pricing unit", entities.ErrInvalidResource, unit)
	}

	if l := p.Location; l != nil {
		if l.Village != nil && strings.TrimSpace(*l.Village) != "" {
			cur.Location.Village = strings.TrimSpace(*l.Village)
		}
		// zero coordinates count as absent
		if l.Latitude != nil && *l.Latitude != 0 {
			cur.Location.Latitude = *l.Latitude
		}
		if l.Longitude != nil && *l.Longitude != 0 {
			cur.Location.Longitude = *l.Longitude
		}
	}
	return nil
}

func (s *resourceSvc) Delete(ctx context.Context, providerID, id string) error {
	return s.r.DeleteOwned(ctx, id, providerID)
}

func (s *resourceSvc) ToggleAvailability(ctx context.Context, providerID, id string) (*entities.Resource, error) {
	cur, err := s.r.FindOwned(ctx, id, providerID)
	if err != nil {
		return nil, err
	}
	cur.IsAvailable = !cur.IsAvailable
	if err := s.r.Update(ctx, cur); err != nil {
		return nil, err
	}
	return cur, nil
}
