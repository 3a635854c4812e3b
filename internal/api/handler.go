package api

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"resource-booking-backend/internal/realtime"
	"resource-booking-backend/internal/service"
)

// Deps are the collaborators of the API handlers.
type Deps struct {
	Accounts      *service.AccountService
	Resources     *service.ResourceService
	Reservations  *service.ReservationService
	Invites       *service.InviteService
	Subscriptions SubscriptionStore
	Hub           *realtime.Hub
	WebPush       *webpush.Options
	// Location interprets request timestamps without an offset and renders response times.
	Location *time.Location
	// Group is the broadcast group websocket sessions join.
	Group  string
	Logger *slog.Logger
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	accounts      *service.AccountService
	resources     *service.ResourceService
	reservations  *service.ReservationService
	invites       *service.InviteService
	subscriptions SubscriptionStore
	hub           *realtime.Hub
	webpush       *webpush.Options
	location      *time.Location
	group         string
	logger        *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		accounts:      d.Accounts,
		resources:     d.Resources,
		reservations:  d.Reservations,
		invites:       d.Invites,
		subscriptions: d.Subscriptions,
		hub:           d.Hub,
		webpush:       d.WebPush,
		location:      loc,
		group:         d.Group,
		logger:        logger,
	}
}

// pathID parses the :id route parameter. Anything but a positive integer is
// reported as not found.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, service.ErrNotFound)
		return 0, false
	}
	return id, true
}
