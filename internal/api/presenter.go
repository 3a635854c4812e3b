package api

import (
	"time"

	"resource-booking-backend/internal/model"
)

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
}

func presentUser(u *model.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email, IsStaff: u.IsStaff}
}

type resourceResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Capacity    int    `json:"capacity"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

func presentResource(r *model.Resource) resourceResponse {
	return resourceResponse{
		ID:          r.ID,
		Name:        r.Name,
		Capacity:    r.Capacity,
		Location:    r.Location,
		Description: r.Description,
		Active:      r.Active,
	}
}

func presentResources(resources []model.Resource) []resourceResponse {
	out := make([]resourceResponse, len(resources))
	for i := range resources {
		out[i] = presentResource(&resources[i])
	}
	return out
}

type reservationResponse struct {
	ID           int64  `json:"id"`
	ResourceID   int64  `json:"resource_id"`
	ResourceName string `json:"resource_name"`
	Requester    string `json:"requester"`
	Start        string `json:"start"`
	End          string `json:"end"`
	Reason       string `json:"reason"`
	Status       string `json:"status"`
	StatusLabel  string `json:"status_label"`
	CreatedAt    string `json:"created_at"`
}

func (h *Handler) presentReservation(r *model.Reservation) reservationResponse {
	return reservationResponse{
		ID:           r.ID,
		ResourceID:   r.ResourceID,
		ResourceName: r.Resource.Name,
		Requester:    r.User.Username,
		Start:        h.formatTime(r.StartAt),
		End:          h.formatTime(r.EndAt),
		Reason:       r.Reason,
		Status:       string(r.Status),
		StatusLabel:  r.Status.Label(),
		CreatedAt:    h.formatTime(r.CreatedAt),
	}
}

func (h *Handler) presentReservations(reservations []model.Reservation) []reservationResponse {
	out := make([]reservationResponse, len(reservations))
	for i := range reservations {
		out[i] = h.presentReservation(&reservations[i])
	}
	return out
}

func (h *Handler) formatTime(t time.Time) string {
	return t.In(h.location).Format(time.RFC3339)
}
