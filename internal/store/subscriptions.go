package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"resource-booking-backend/internal/model"
)

// SavePushSubscription creates or replaces the subscription keyed by its endpoint.
func (s *GormStore) SavePushSubscription(ctx context.Context, sub *model.PushSubscription) error {
	err := s.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "user_id"}),
		}).
		Create(sub).Error
	if err != nil {
		return translateError(err)
	}
	return nil
}

// DeletePushSubscription removes the subscription with the given endpoint.
func (s *GormStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{}, "endpoint = ?", endpoint).Error; err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

// ListStaffPushSubscriptions returns the subscriptions of staff users.
func (s *GormStore) ListStaffPushSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN users ON users.id = push_subscriptions.user_id").
		Where("users.is_staff = ?", true).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	return subs, nil
}
