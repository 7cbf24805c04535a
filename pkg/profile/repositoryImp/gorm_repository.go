package repositoryImp

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"farmtech/entities"
	"farmtech/pkg/profile/repository"
)

type gormRepo struct{ db *gorm.DB }

func NewGorm(db *gorm.DB) repository.ProfileRepository { return &gormRepo{db} }

func (r *gormRepo) Get(ctx context.Context, id string) (*entities.Profile, error) {
	var p entities.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *gormRepo) Upsert(ctx context.Context, p *entities.Profile) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(p).Error
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
