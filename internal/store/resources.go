package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"resource-booking-backend/internal/model"
)

// ResourceFilter narrows ListResources.
type ResourceFilter struct {
	ActiveOnly  bool
	MinCapacity int
}

// ListResources returns resources ordered by name, then id.
func (s *GormStore) ListResources(ctx context.Context, filter ResourceFilter) ([]model.Resource, error) {
	q := s.db.WithContext(ctx).Model(&model.Resource{})
	if filter.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	if filter.MinCapacity > 0 {
		q = q.Where("capacity >= ?", filter.MinCapacity)
	}

	var resources []model.Resource
	if err := q.Order("name").Order("id").Find(&resources).Error; err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return resources, nil
}

// GetResource loads one resource by id.
func (s *GormStore) GetResource(ctx context.Context, id int64) (*model.Resource, error) {
	var resource model.Resource
	if err := s.db.WithContext(ctx).First(&resource, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &resource, nil
}

// CreateResource inserts a new resource.
func (s *GormStore) CreateResource(ctx context.Context, resource *model.Resource) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(resource).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// UpdateResource writes every editable column, including zero values.
func (s *GormStore) UpdateResource(ctx context.Context, resource *model.Resource) error {
	result := s.db.WithContext(ctx).
		Model(resource).
		Select("name", "capacity", "location", "description", "active", "updated_at").
		Updates(resource)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
