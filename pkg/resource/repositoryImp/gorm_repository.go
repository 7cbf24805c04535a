package repositoryImp

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"farmtech/entities"
	"farmtech/pkg/resource/repository"
)

type gormRepo struct{ db *gorm.DB }

func NewGorm(db *gorm.DB) repository.ResourceRepository { return &gormRepo{db} }

func (r *gormRepo) Create(ctx context.Context, res *entities.Resource) error {
	if err := r.db.WithContext(ctx).Create(res).Error; err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

func (r *gormRepo) first(ctx context.Context, q *gorm.DB) (*entities.Resource, error) {
	var res entities.Resource
	if err := q.WithContext(ctx).First(&res).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find resource: %w", err)
	}
	return &res, nil
}

func (r *gormRepo) FindByID(ctx context.Context, id string) (*entities.Resource, error) {
	return r.first(ctx, r.db.Where("id = ?", id))
}

func (r *gormRepo) FindOwned(ctx context.Context, id, providerID string) (*entities.Resource, error) {
	return r.first(ctx, r.db.Where("id = ? AND provider_id = ?", id, providerID))
}

func (r *gormRepo) ListByProvider(ctx context.Context, providerID string) ([]entities.Resource, error) {
	var rs []entities.Resource
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Find(&rs).Error
	if err != nil {
		return nil, fmt.Errorf("list provider resources: %w", err)
	}
	return rs, nil
}

func (r *gormRepo) FindAvailable(ctx context.Context, q repository.Query) ([]entities.Resource, error) {
	tx := r.db.WithContext(ctx).Where("is_available = ?", true)
	if q.Type != nil {
		tx = tx.Where("type = ?", string(*q.Type))
	}
	if q.ServiceType != nil {
		tx = tx.Where("service_type = ?", string(*q.ServiceType))
	}
	var rs []entities.Resource
	if err := tx.Order("created_at ASC").Find(&rs).Error; err != nil {
		return nil, fmt.Errorf("find available resources: %w", err)
	}
	return rs, nil
}

// Update writes every column so cleared price fields become NULL.
func (r *gormRepo) Update(ctx context.Context, res *entities.Resource) error {
	if err := r.db.WithContext(ctx).Save(res).Error; err != nil {
		return fmt.Errorf("update resource: %w", err)
	}
	return nil
}

func (r *gormRepo) DeleteOwned(ctx context.Context, id, providerID string) error {
	tx := r.db.WithContext(ctx).Where("id = ? AND provider_id = ?", id, providerID).Delete(&entities.Resource{})
	if tx.Error != nil {
		return fmt.Errorf("delete resource: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
