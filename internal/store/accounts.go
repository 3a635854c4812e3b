package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resource-booking-backend/internal/model"
)

// CreateUser inserts a new user. A taken username yields ErrDuplicate; a taken
// email also matches ErrDuplicateEmail.
func (s *GormStore) CreateUser(ctx context.Context, user *model.User) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// GetUser loads a user by id.
func (s *GormStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// GetUserByUsername loads a user by exact username.
func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// EmailTaken reports whether any user already has email, ignoring case.
func (s *GormStore) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("LOWER(email) = LOWER(?)", email).
		Count(&count).Error
	if err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

// CreateInvite inserts a new invite code.
func (s *GormStore) CreateInvite(ctx context.Context, invite *model.InviteCode) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(invite).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// GetInvite loads an invite by code.
func (s *GormStore) GetInvite(ctx context.Context, code string) (*model.InviteCode, error) {
	var invite model.InviteCode
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&invite).Error; err != nil {
		return nil, translateError(err)
	}
	return &invite, nil
}

// RedeemInvite marks code as used by userID and grants the user staff rights.
// The used=false guard makes redemption succeed at most once; a code that is
// unknown or already used yields ErrInviteUnavailable.
func (s *GormStore) RedeemInvite(ctx context.Context, code string, userID int64, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.InviteCode{}).
			Where("code = ? AND used = ?", code, false).
			Updates(map[string]any{
				"used":       true,
				"used_by_id": userID,
				"used_at":    now.UTC(),
			})
		if result.Error != nil {
			return translateError(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrInviteUnavailable
		}

		result = tx.Model(&model.User{}).
			Where("id = ?", userID).
			Update("is_staff", true)
		if result.Error != nil {
			return translateError(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
