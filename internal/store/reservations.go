package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resource-booking-backend/internal/booking"
	"resource-booking-backend/internal/model"
)

// ErrConcurrentMove is returned when a reservation changed resource while an edit waited for its lock.
var ErrConcurrentMove = errors.New("store: reservation moved concurrently")

// ReservationFilter narrows ListReservations. Zero fields are ignored.
type ReservationFilter struct {
	UserID     int64
	ResourceID int64
	Status     booking.Status
}

// ReservationEdit carries the editable fields of a reservation.
type ReservationEdit struct {
	ResourceID int64
	Start      time.Time
	End        time.Time
	Reason     string
}

// CreateReservation validates r against the blocking reservations of its
// resource and inserts it, both under the resource lock. On success r is
// reloaded with its Resource and User.
func (s *GormStore) CreateReservation(ctx context.Context, r *model.Reservation, now time.Time) error {
	r.StartAt = r.StartAt.UTC()
	r.EndAt = r.EndAt.UTC()

	unlock := s.locks.Lock(r.ResourceID)
	defer unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockResources(tx, r.ResourceID); err != nil {
			return err
		}

		existing, err := blockingSlots(tx, r.ResourceID, r.StartAt, r.EndAt)
		if err != nil {
			return err
		}
		if err := booking.Validate(r.Slot(), existing, nil, now); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(r).Error; err != nil {
			return translateError(err)
		}
		return reloadReservation(tx, r)
	})
}

// UpdateReservation applies edit to reservation id. The reservation never
// conflicts with itself, and edits are exempt from the past-start rule.
// Moving to another resource locks both resources in ascending id order.
func (s *GormStore) UpdateReservation(ctx context.Context, id int64, edit ReservationEdit) (*model.Reservation, error) {
	current, err := s.reservationResource(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(current, edit.ResourceID)
	defer unlock()

	var r model.Reservation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockResources(tx, current, edit.ResourceID); err != nil {
			return err
		}
		if err := tx.Preload("User").First(&r, id).Error; err != nil {
			return translateError(err)
		}
		if r.ResourceID != current {
			return ErrConcurrentMove
		}

		r.ResourceID = edit.ResourceID
		r.StartAt = edit.Start.UTC()
		r.EndAt = edit.End.UTC()
		r.Reason = edit.Reason

		var existing []booking.Slot
		if r.Status.Blocking() {
			var err error
			if existing, err = blockingSlots(tx, r.ResourceID, r.StartAt, r.EndAt); err != nil {
				return err
			}
		}
		if err := booking.Validate(r.Slot(), existing, &r.ID, time.Time{}); err != nil {
			return err
		}

		if err := tx.Model(&r).
			Select("resource_id", "start_at", "end_at", "reason", "updated_at").
			Omit(clause.Associations).
			Updates(&r).Error; err != nil {
			return translateError(err)
		}
		return reloadReservation(tx, &r)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// TransitionReservation moves reservation id to status to. Moving into a
// blocking status re-runs conflict validation excluding the reservation itself.
func (s *GormStore) TransitionReservation(ctx context.Context, id int64, to booking.Status) (*model.Reservation, error) {
	resourceID, err := s.reservationResource(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(resourceID)
	defer unlock()

	var r model.Reservation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockResources(tx, resourceID); err != nil {
			return err
		}
		if err := tx.Preload("User").First(&r, id).Error; err != nil {
			return translateError(err)
		}
		if r.ResourceID != resourceID {
			return ErrConcurrentMove
		}
		if err := booking.Transition(r.Status, to); err != nil {
			return err
		}

		if to.Blocking() {
			existing, err := blockingSlots(tx, r.ResourceID, r.StartAt, r.EndAt)
			if err != nil {
				return err
			}
			candidate := r.Slot()
			candidate.Status = to
			if err := booking.Validate(candidate, existing, &r.ID, time.Time{}); err != nil {
				return err
			}
		}

		r.Status = to
		if err := tx.Model(&r).
			Select("status", "updated_at").
			Omit(clause.Associations).
			Updates(&r).Error; err != nil {
			return translateError(err)
		}
		return reloadReservation(tx, &r)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetReservation loads one reservation with its Resource and User.
func (s *GormStore) GetReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	var r model.Reservation
	if err := s.db.WithContext(ctx).Preload("Resource").Preload("User").First(&r, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &r, nil
}

// ListReservations returns reservations newest start first.
func (s *GormStore) ListReservations(ctx context.Context, filter ReservationFilter) ([]model.Reservation, error) {
	q := s.db.WithContext(ctx).Preload("Resource").Preload("User")
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.ResourceID != 0 {
		q = q.Where("resource_id = ?", filter.ResourceID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var reservations []model.Reservation
	if err := q.Order("start_at DESC").Order("id DESC").Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

// ListBlockingReservations returns the blocking reservations whose interval
// intersects [start, end). Overlap is decided by the caller with booking.Blocks.
func (s *GormStore) ListBlockingReservations(ctx context.Context, start, end time.Time) ([]booking.Slot, error) {
	return blockingSlots(s.db.WithContext(ctx), 0, start, end)
}

func (s *GormStore) reservationResource(ctx context.Context, id int64) (int64, error) {
	var r model.Reservation
	if err := s.db.WithContext(ctx).Select("id", "resource_id").First(&r, id).Error; err != nil {
		return 0, translateError(err)
	}
	return r.ResourceID, nil
}

// lockResources takes row locks on the given resources in ascending id order.
func lockResources(tx *gorm.DB, ids ...int64) error {
	for _, id := range distinctSorted(ids) {
		var resource model.Resource
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&resource, id).Error
		if err != nil {
			return fmt.Errorf("failed to lock resource %d: %w", id, translateError(err))
		}
	}
	return nil
}

// blockingSlots loads blocking reservations intersecting [start, end), of one
// resource when resourceID is non-zero. The time bounds only narrow the rows
// read; booking.Blocks still decides conflicts.
func blockingSlots(tx *gorm.DB, resourceID int64, start, end time.Time) ([]booking.Slot, error) {
	q := tx.Preload("User").Where("status IN ?", booking.BlockingStatusCodes())
	if resourceID != 0 {
		q = q.Where("resource_id = ?", resourceID)
	}
	q = q.Where("end_at > ?", start.UTC()).Where("start_at < ?", end.UTC())

	var rows []model.Reservation
	if err := q.Order("start_at").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load blocking reservations: %w", err)
	}

	slots := make([]booking.Slot, len(rows))
	for i, row := range rows {
		slots[i] = row.Slot()
	}
	return slots, nil
}

func reloadReservation(tx *gorm.DB, r *model.Reservation) error {
	id := r.ID
	*r = model.Reservation{}
	if err := tx.Preload("Resource").Preload("User").First(r, id).Error; err != nil {
		return translateError(err)
	}
	return nil
}
