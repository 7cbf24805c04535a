package serviceImp

import (
	"context"
	"errors"
	"time"

	"farmtech/entities"
	repo "farmtech/pkg/profile/repository"
	"farmtech/pkg/profile/service"
)

type profileSvc struct{ r repo.ProfileRepository }

func NewProfileService(r repo.ProfileRepository) service.ProfileService { return &profileSvc{r} }

func (s *profileSvc) Get(ctx context.Context, userID string) (*entities.Profile, error) {
	p, err := s.r.Get(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// Upsert merges fields into the stored row, creating it when absent.
func (s *profileSvc) Upsert(ctx context.Context, userID string, fields map[string]string) (*entities.Profile, error) {
	cur, err := s.r.Get(ctx, userID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		cur = &entities.Profile{ID: userID}
	case err != nil:
		return nil, err
	}
	cur.Apply(fields)
	cur.UpdatedAt = time.Now().UTC()
	if err := s.r.Upsert(ctx, cur); err != nil {
		return nil, err
	}
	return cur, nil
}
