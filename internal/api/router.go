package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"resource-booking-backend/internal/mw"
)

// RouterOptions tunes the shared middleware.
type RouterOptions struct {
	RateLimit rate.Limit
	Burst     int
	CacheTTL  time.Duration
	Logger    *slog.Logger
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, authn mw.Authenticator, opts RouterOptions) *gin.Engine {
	if opts.RateLimit <= 0 {
		opts.RateLimit = rate.Limit(10)
	}
	if opts.Burst <= 0 {
		opts.Burst = 5
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger(logger))

	rateLimiter := mw.RateLimiter(opts.RateLimit, opts.Burst)

	// Resource listings are cached and flushed by any successful write below.
	cacheStore := cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	caching := mw.Cache(cacheStore, opts.CacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter, mw.Authenticate(authn), mw.Invalidate(cacheStore))
	{
		api.POST("/register", h.Register)
		api.POST("/token", h.Token)

		api.GET("/resources", caching, h.ListResources)
		api.GET("/resources/available", h.AvailableResources)
		api.GET("/resources/:id", h.GetResource)

		staff := api.Group("", mw.RequireStaff())
		staff.POST("/resources", h.CreateResource)
		staff.PUT("/resources/:id", h.UpdateResource)
		staff.DELETE("/resources/:id", h.DeleteResource)
		staff.POST("/reservations/:id/approve", h.ApproveReservation)
		staff.POST("/reservations/:id/reject", h.RejectReservation)
		staff.POST("/invites", h.CreateInvite)
		staff.PUT("/push/subscriptions", h.PutSubscription)
		staff.DELETE("/push/subscriptions", h.DeleteSubscription)

		authed := api.Group("", mw.RequireAuth())
		authed.GET("/reservations", h.ListReservations)
		authed.GET("/reservations/mine", h.MyReservations)
		authed.POST("/reservations", h.CreateReservation)
		authed.GET("/reservations/:id", h.GetReservation)
		authed.PUT("/reservations/:id", h.UpdateReservation)
		authed.DELETE("/reservations/:id", h.DeleteReservation)
		authed.POST("/reservations/:id/cancel", h.CancelReservation)

		api.GET("/push/vapid_public_key", h.GetVAPIDPublicKey)
	}

	r.GET("/ws/notifications", mw.Authenticate(authn), mw.RequireStaff(), h.Notifications)

	return r
}
