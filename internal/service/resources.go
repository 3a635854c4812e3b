package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"resource-booking-backend/internal/model"
	"resource-booking-backend/internal/store"
)

const (
	maxResourceNameLength     = 100
	maxResourceLocationLength = 200
)

// ResourceStore captures the persistence operations needed by the resource service.
type ResourceStore interface {
	ListResources(ctx context.Context, filter store.ResourceFilter) ([]model.Resource, error)
	GetResource(ctx context.Context, id int64) (*model.Resource, error)
	CreateResource(ctx context.Context, resource *model.Resource) error
	UpdateResource(ctx context.Context, resource *model.Resource) error
}

// ResourceInput captures caller provided resource fields. A nil Capacity
// defaults to 1 and a nil Active to true.
type ResourceInput struct {
	Name        string
	Capacity    *int
	Location    string
	Description string
	Active      *bool
}

// ResourceService manages the catalog of bookable resources.
type ResourceService struct {
	store  ResourceStore
	logger *slog.Logger
}

// NewResourceService constructs a resource service.
func NewResourceService(s ResourceStore, logger *slog.Logger) *ResourceService {
	return &ResourceService{store: s, logger: defaultLogger(logger)}
}

func (s *ResourceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ResourceService", operation, attrs...)
}

// List returns resources ordered by name. It is open to anonymous callers.
func (s *ResourceService) List(ctx context.Context, filter store.ResourceFilter) ([]model.Resource, error) {
	if filter.MinCapacity < 0 {
		return nil, fieldError("min_capacity", "Ensure this value is greater than or equal to 0.")
	}
	return s.store.ListResources(ctx, filter)
}

// Get returns one resource.
func (s *ResourceService) Get(ctx context.Context, id int64) (*model.Resource, error) {
	resource, err := s.store.GetResource(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return resource, err
}

// Create validates input and persists a new resource for staff.
func (s *ResourceService) Create(ctx context.Context, p Principal, in ResourceInput) (resource *model.Resource, err error) {
	logger := s.loggerWith(ctx, "Create", "principal_id", p.UserID)
	defer func() {
		var attrs []any
		if resource != nil {
			attrs = append(attrs, "resource_id", resource.ID)
		}
		logOutcome(ctx, logger, err, "resource created", "failed to create resource", attrs...)
	}()

	if err = requireStaff(p); err != nil {
		return nil, err
	}
	if vErr := validateResourceInput(in); vErr.HasErrors() {
		return nil, vErr
	}

	resource = &model.Resource{Capacity: 1, Active: true}
	applyResourceInput(resource, in)
	if err = s.store.CreateResource(ctx, resource); err != nil {
		return nil, mapResourceError(err)
	}
	return resource, nil
}

// Update validates input and replaces the editable fields of a resource for staff.
func (s *ResourceService) Update(ctx context.Context, p Principal, id int64, in ResourceInput) (resource *model.Resource, err error) {
	logger := s.loggerWith(ctx, "Update", "principal_id", p.UserID, "resource_id", id)
	defer func() {
		logOutcome(ctx, logger, err, "resource updated", "failed to update resource")
	}()

	if err = requireStaff(p); err != nil {
		return nil, err
	}
	if resource, err = s.Get(ctx, id); err != nil {
		return nil, err
	}
	if vErr := validateResourceInput(in); vErr.HasErrors() {
		return nil, vErr
	}

	applyResourceInput(resource, in)
	if err = s.store.UpdateResource(ctx, resource); err != nil {
		return nil, mapResourceError(err)
	}
	return resource, nil
}

// Deactivate hides a resource from availability without deleting its
// reservation history. Staff only.
func (s *ResourceService) Deactivate(ctx context.Context, p Principal, id int64) (err error) {
	logger := s.loggerWith(ctx, "Deactivate", "principal_id", p.UserID, "resource_id", id)
	defer func() {
		logOutcome(ctx, logger, err, "resource deactivated", "failed to deactivate resource")
	}()

	if err = requireStaff(p); err != nil {
		return err
	}
	resource, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	resource.Active = false
	return mapResourceError(s.store.UpdateResource(ctx, resource))
}

func requireStaff(p Principal) error {
	if !p.Authenticated() {
		return ErrUnauthenticated
	}
	if !p.IsStaff {
		return ErrForbidden
	}
	return nil
}

func validateResourceInput(in ResourceInput) *ValidationError {
	vErr := &ValidationError{}
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		vErr.Add("name", "This field may not be blank.")
	case len([]rune(name)) > maxResourceNameLength:
		vErr.Add("name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxResourceNameLength))
	}
	if in.Capacity != nil && *in.Capacity < 1 {
		vErr.Add("capacity", "Ensure this value is greater than or equal to 1.")
	}
	if len([]rune(in.Location)) > maxResourceLocationLength {
		vErr.Add("location", fmt.Sprintf("Ensure this field has no more than %d characters.", maxResourceLocationLength))
	}
	return vErr
}

func applyResourceInput(resource *model.Resource, in ResourceInput) {
	resource.Name = strings.TrimSpace(in.Name)
	resource.Location = strings.TrimSpace(in.Location)
	resource.Description = in.Description
	if in.Capacity != nil {
		resource.Capacity = *in.Capacity
	}
	if in.Active != nil {
		resource.Active = *in.Active
	}
}

func mapResourceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrDuplicate):
		return fieldError("name", "resource with this name already exists.")
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	}
	return err
}
