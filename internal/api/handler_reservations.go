package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resource-booking-backend/internal/booking"
	"resource-booking-backend/internal/model"
	"resource-booking-backend/internal/mw"
	"resource-booking-backend/internal/parse"
	"resource-booking-backend/internal/service"
	"resource-booking-backend/internal/store"
)

const datetimeFormatMessage = "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]."

type reservationRequest struct {
	ResourceID    int64  `json:"resource_id"`
	Start         string `json:"start"`
	End           string `json:"end"`
	Reason        string `json:"reason"`
	IsMaintenance bool   `json:"is_maintenance"`
}

// reservationInput converts the request, reporting unparseable timestamps. Empty
// timestamps are left zero for the service to report as required.
func (h *Handler) reservationInput(req reservationRequest) (service.ReservationInput, error) {
	vErr := &service.ValidationError{}
	in := service.ReservationInput{
		ResourceID:  req.ResourceID,
		Reason:      req.Reason,
		Maintenance: req.IsMaintenance,
	}
	in.Start = h.bodyTime("start", req.Start, vErr)
	in.End = h.bodyTime("end", req.End, vErr)
	if vErr.HasErrors() {
		return in, vErr
	}
	return in, nil
}

func (h *Handler) bodyTime(field, raw string, vErr *service.ValidationError) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := parse.Timestamp(raw, h.location)
	if err != nil {
		vErr.Add(field, datetimeFormatMessage)
		return time.Time{}
	}
	return t
}

// ListReservations handles GET /api/reservations. Staff see every
// reservation; everyone else sees their own.
func (h *Handler) ListReservations(c *gin.Context) {
	filter := store.ReservationFilter{Status: booking.Status(c.Query("status"))}
	if raw := c.Query("resource_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, &service.ValidationError{Fields: map[string][]string{"resource_id": {"A valid integer is required."}}})
			return
		}
		filter.ResourceID = id
	}

	reservations, err := h.reservations.List(c.Request.Context(), mw.Principal(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.presentReservations(reservations))
}

// MyReservations handles GET /api/reservations/mine.
func (h *Handler) MyReservations(c *gin.Context) {
	reservations, err := h.reservations.ListMine(c.Request.Context(), mw.Principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.presentReservations(reservations))
}

// CreateReservation handles POST /api/reservations.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}
	in, err := h.reservationInput(req)
	if err != nil {
		respondError(c, err)
		return
	}

	r, err := h.reservations.Create(c.Request.Context(), mw.Principal(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.presentReservation(r))
}

// GetReservation handles GET /api/reservations/:id.
func (h *Handler) GetReservation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	r, err := h.reservations.Get(c.Request.Context(), mw.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.presentReservation(r))
}

// UpdateReservation handles PUT /api/reservations/:id.
func (h *Handler) UpdateReservation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}
	in, err := h.reservationInput(req)
	if err != nil {
		respondError(c, err)
		return
	}

	r, err := h.reservations.Update(c.Request.Context(), mw.Principal(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.presentReservation(r))
}

// DeleteReservation handles DELETE /api/reservations/:id by cancelling it.
func (h *Handler) DeleteReservation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := h.reservations.Cancel(c.Request.Context(), mw.Principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type transitionFunc func(ctx context.Context, p service.Principal, id int64) (*model.Reservation, error)

// ApproveReservation handles POST /api/reservations/:id/approve.
func (h *Handler) ApproveReservation(c *gin.Context) {
	h.transition(c, h.reservations.Approve)
}

// RejectReservation handles POST /api/reservations/:id/reject.
func (h *Handler) RejectReservation(c *gin.Context) {
	h.transition(c, h.reservations.Reject)
}

// CancelReservation handles POST /api/reservations/:id/cancel.
func (h *Handler) CancelReservation(c *gin.Context) {
	h.transition(c, h.reservations.Cancel)
}

func (h *Handler) transition(c *gin.Context, apply transitionFunc) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	r, err := apply(c.Request.Context(), mw.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.presentReservation(r))
}
