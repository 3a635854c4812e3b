package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"resource-booking-backend/internal/booking"
	"resource-booking-backend/internal/model"
	"resource-booking-backend/internal/notification"
	"resource-booking-backend/internal/store"
)

const maxReasonLength = 255

// ReservationStore captures the persistence operations needed by the reservation service.
type ReservationStore interface {
	GetResource(ctx context.Context, id int64) (*model.Resource, error)
	ListResources(ctx context.Context, filter store.ResourceFilter) ([]model.Resource, error)
	CreateReservation(ctx context.Context, r *model.Reservation, now time.Time) error
	UpdateReservation(ctx context.Context, id int64, edit store.ReservationEdit) (*model.Reservation, error)
	TransitionReservation(ctx context.Context, id int64, to booking.Status) (*model.Reservation, error)
	GetReservation(ctx context.Context, id int64) (*model.Reservation, error)
	ListReservations(ctx context.Context, filter store.ReservationFilter) ([]model.Reservation, error)
	ListBlockingReservations(ctx context.Context, start, end time.Time) ([]booking.Slot, error)
}

// Notifier accepts committed reservation events for asynchronous delivery.
type Notifier interface {
	Dispatch(e notification.Event) bool
}

// ReservationInput captures caller provided reservation fields.
type ReservationInput struct {
	ResourceID  int64
	Start       time.Time
	End         time.Time
	Reason      string
	Maintenance bool
}

// AvailabilityQuery is the window and capacity of an availability search.
type AvailabilityQuery struct {
	Start       time.Time
	End         time.Time
	MinCapacity int
}

// ReservationService orchestrates status policy, conflict validation and notification for reservations.
type ReservationService struct {
	store    ReservationStore
	notifier Notifier
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// NewReservationService constructs a reservation service. loc renders conflict
// messages; notifier may be nil.
func NewReservationService(s ReservationStore, notifier Notifier, loc *time.Location, now func() time.Time, logger *slog.Logger) *ReservationService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationService{store: s, notifier: notifier, location: loc, now: now, logger: defaultLogger(logger)}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// Create validates and persists a new reservation for the principal. Staff
// bookings are confirmed (or blocked for maintenance); everyone else's wait
// as pending.
func (s *ReservationService) Create(ctx context.Context, p Principal, in ReservationInput) (r *model.Reservation, err error) {
	logger := s.loggerWith(ctx, "Create", "principal_id", p.UserID, "resource_id", in.ResourceID)
	defer func() {
		var attrs []any
		if r != nil {
			attrs = append(attrs, "reservation_id", r.ID, "status", string(r.Status))
		}
		logOutcome(ctx, logger, err, "reservation created", "failed to create reservation", attrs...)
	}()

	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if vErr := s.validateInput(ctx, in); vErr.HasErrors() {
		return nil, vErr
	}

	r = &model.Reservation{
		ResourceID: in.ResourceID,
		UserID:     p.UserID,
		StartAt:    in.Start,
		EndAt:      in.End,
		Reason:     strings.TrimSpace(in.Reason),
		Status:     booking.AssignStatus(p.IsStaff, in.Maintenance),
	}
	if err = s.store.CreateReservation(ctx, r, s.now()); err != nil {
		return nil, s.mapWriteError(err)
	}

	s.notify(ctx, logger, notification.KindCreated, r)
	return r, nil
}

// Update rewrites the resource, interval and reason of a reservation owned by
// the principal, or of any reservation for staff. Status is unchanged.
func (s *ReservationService) Update(ctx context.Context, p Principal, id int64, in ReservationInput) (r *model.Reservation, err error) {
	logger := s.loggerWith(ctx, "Update", "principal_id", p.UserID, "reservation_id", id)
	defer func() {
		logOutcome(ctx, logger, err, "reservation updated", "failed to update reservation")
	}()

	if _, err = s.visible(ctx, p, id); err != nil {
		return nil, err
	}
	if vErr := s.validateInput(ctx, in); vErr.HasErrors() {
		return nil, vErr
	}

	r, err = s.store.UpdateReservation(ctx, id, store.ReservationEdit{
		ResourceID: in.ResourceID,
		Start:      in.Start,
		End:        in.End,
		Reason:     strings.TrimSpace(in.Reason),
	})
	if err != nil {
		return nil, s.mapWriteError(err)
	}
	return r, nil
}

// Approve confirms a pending reservation. Staff only.
func (s *ReservationService) Approve(ctx context.Context, p Principal, id int64) (*model.Reservation, error) {
	return s.transition(ctx, p, id, booking.StatusConfirmed, notification.KindApproved, "Approve")
}

// Reject rejects a pending or confirmed reservation. Staff only.
func (s *ReservationService) Reject(ctx context.Context, p Principal, id int64) (*model.Reservation, error) {
	return s.transition(ctx, p, id, booking.StatusRejected, notification.KindRejected, "Reject")
}

// Cancel cancels a reservation. Owners may cancel their own; staff any.
func (s *ReservationService) Cancel(ctx context.Context, p Principal, id int64) (*model.Reservation, error) {
	return s.transition(ctx, p, id, booking.StatusCancelled, notification.KindCancelled, "Cancel")
}

func (s *ReservationService) transition(ctx context.Context, p Principal, id int64, to booking.Status, kind notification.Kind, operation string) (r *model.Reservation, err error) {
	logger := s.loggerWith(ctx, operation, "principal_id", p.UserID, "reservation_id", id)
	defer func() {
		logOutcome(ctx, logger, err, "reservation status changed", "failed to change reservation status", "status", string(to))
	}()

	if _, err = s.visible(ctx, p, id); err != nil {
		return nil, err
	}
	if to != booking.StatusCancelled && !p.IsStaff {
		return nil, ErrForbidden
	}

	r, err = s.store.TransitionReservation(ctx, id, to)
	if err != nil {
		return nil, s.mapWriteError(err)
	}

	s.notify(ctx, logger, kind, r)
	return r, nil
}

// Get returns a reservation visible to the principal.
func (s *ReservationService) Get(ctx context.Context, p Principal, id int64) (*model.Reservation, error) {
	return s.visible(ctx, p, id)
}

// ListMine returns the principal's reservations, newest first.
func (s *ReservationService) ListMine(ctx context.Context, p Principal) (reservations []model.Reservation, err error) {
	logger := s.loggerWith(ctx, "ListMine", "principal_id", p.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list reservations", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}
	return s.store.ListReservations(ctx, store.ReservationFilter{UserID: p.UserID})
}

// List returns every reservation for staff and the principal's own otherwise.
func (s *ReservationService) List(ctx context.Context, p Principal, filter store.ReservationFilter) ([]model.Reservation, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if !p.IsStaff {
		filter.UserID = p.UserID
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fieldError("status", fmt.Sprintf("%q is not a valid status", string(filter.Status)))
	}
	return s.store.ListReservations(ctx, filter)
}

// FindAvailable returns active resources meeting the capacity that hold no
// blocking reservation overlapping the window, ordered by name.
func (s *ReservationService) FindAvailable(ctx context.Context, q AvailabilityQuery) (available []model.Resource, err error) {
	logger := s.loggerWith(ctx, "FindAvailable", "min_capacity", q.MinCapacity)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to find available resources", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "available resources found", "result_count", len(available))
	}()

	if !q.Start.Before(q.End) {
		return nil, s.mapWriteError(&booking.InvalidIntervalError{Start: q.Start, End: q.End})
	}

	resources, err := s.store.ListResources(ctx, store.ResourceFilter{ActiveOnly: true, MinCapacity: q.MinCapacity})
	if err != nil {
		return nil, err
	}
	blocking, err := s.store.ListBlockingReservations(ctx, q.Start, q.End)
	if err != nil {
		return nil, err
	}

	busy := booking.BusyResources(blocking, q.Start, q.End)
	available = make([]model.Resource, 0, len(resources))
	for _, resource := range resources {
		if _, taken := busy[resource.ID]; !taken {
			available = append(available, resource)
		}
	}
	return available, nil
}

// visible loads a reservation the principal may see. Reservations of other
// users are reported as not found to non-staff callers.
func (s *ReservationService) visible(ctx context.Context, p Principal, id int64) (*model.Reservation, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !p.IsStaff && r.UserID != p.UserID {
		return nil, ErrNotFound
	}
	return r, nil
}

func (s *ReservationService) validateInput(ctx context.Context, in ReservationInput) *ValidationError {
	vErr := &ValidationError{}
	if in.ResourceID <= 0 {
		vErr.Add("resource_id", "This field is required.")
	} else {
		resource, err := s.store.GetResource(ctx, in.ResourceID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			vErr.Add("resource_id", fmt.Sprintf("Invalid pk %q - object does not exist.", fmt.Sprint(in.ResourceID)))
		case err != nil:
			vErr.Add("resource_id", "resource could not be loaded")
		case !resource.Active:
			vErr.Add("resource_id", "resource is not active")
		}
	}
	if in.Start.IsZero() {
		vErr.Add("start", "This field is required.")
	}
	if in.End.IsZero() {
		vErr.Add("end", "This field is required.")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		vErr.Add("reason", "This field may not be blank.")
	} else if len([]rune(reason)) > maxReasonLength {
		vErr.Add("reason", fmt.Sprintf("Ensure this field has no more than %d characters.", maxReasonLength))
	}
	return vErr
}

// mapWriteError converts scheduling and store errors to field errors.
func (s *ReservationService) mapWriteError(err error) error {
	var (
		invalid    *booking.InvalidIntervalError
		past       *booking.PastStartError
		conflict   *booking.ConflictError
		transition *booking.TransitionError
	)
	switch {
	case errors.As(err, &invalid):
		return fieldError("end", invalid.Error())
	case errors.As(err, &past):
		return fieldError("start", past.Error())
	case errors.As(err, &conflict):
		return &ValidationError{Fields: map[string][]string{NonFieldErrors: {conflict.Describe(s.location)}}}
	case errors.As(err, &transition):
		return fieldError("status", transition.Error())
	case errors.Is(err, store.ErrConcurrentMove):
		return fieldError(NonFieldErrors, "reservation was changed by another request; please retry")
	case errors.Is(err, store.ErrOverlap):
		return fieldError(NonFieldErrors, "resource is already reserved for an overlapping period")
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	}
	return err
}

func (s *ReservationService) notify(ctx context.Context, logger *slog.Logger, kind notification.Kind, r *model.Reservation) {
	if s.notifier == nil {
		return
	}
	if !s.notifier.Dispatch(notification.EventFor(kind, r)) {
		logger.WarnContext(ctx, "reservation notification dropped", "reservation_id", r.ID)
	}
}
