package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resource-booking-backend/internal/mw"
	"resource-booking-backend/internal/parse"
	"resource-booking-backend/internal/service"
	"resource-booking-backend/internal/store"
)

type resourceRequest struct {
	Name        string `json:"name"`
	Capacity    *int   `json:"capacity"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

func (r resourceRequest) input() service.ResourceInput {
	return service.ResourceInput{
		Name:        r.Name,
		Capacity:    r.Capacity,
		Location:    r.Location,
		Description: r.Description,
		Active:      r.Active,
	}
}

// ListResources handles GET /api/resources. Only active resources are listed
// unless active=false is given.
func (h *Handler) ListResources(c *gin.Context) {
	vErr := &service.ValidationError{}
	filter := store.ResourceFilter{ActiveOnly: true}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			vErr.Add("active", "Must be a valid boolean.")
		}
		filter.ActiveOnly = active
	}
	filter.MinCapacity = queryInt(c, "min_capacity", vErr)
	if vErr.HasErrors() {
		respondError(c, vErr)
		return
	}

	resources, err := h.resources.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentResources(resources))
}

// AvailableResources handles GET /api/resources/available.
func (h *Handler) AvailableResources(c *gin.Context) {
	vErr := &service.ValidationError{}
	start := h.queryTime(c, "start", vErr)
	end := h.queryTime(c, "end", vErr)
	capacity := queryInt(c, "capacity", vErr)
	if vErr.HasErrors() {
		respondError(c, vErr)
		return
	}

	resources, err := h.reservations.FindAvailable(c.Request.Context(), service.AvailabilityQuery{
		Start:       start,
		End:         end,
		MinCapacity: capacity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentResources(resources))
}

// GetResource handles GET /api/resources/:id.
func (h *Handler) GetResource(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resource, err := h.resources.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentResource(resource))
}

// CreateResource handles POST /api/resources.
func (h *Handler) CreateResource(c *gin.Context) {
	var req resourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}
	resource, err := h.resources.Create(c.Request.Context(), mw.Principal(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, presentResource(resource))
}

// UpdateResource handles PUT /api/resources/:id.
func (h *Handler) UpdateResource(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req resourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}
	resource, err := h.resources.Update(c.Request.Context(), mw.Principal(c), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentResource(resource))
}

// DeleteResource handles DELETE /api/resources/:id by deactivating the resource.
func (h *Handler) DeleteResource(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.resources.Deactivate(c.Request.Context(), mw.Principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// queryInt reads a non-negative integer query parameter; absent means zero.
func queryInt(c *gin.Context, key string, vErr *service.ValidationError) int {
	raw := c.Query(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		vErr.Add(key, "A valid integer is required.")
		return 0
	}
	if v < 0 {
		vErr.Add(key, "Ensure this value is greater than or equal to 0.")
		return 0
	}
	return v
}

// queryTime reads a required timestamp query parameter.
func (h *Handler) queryTime(c *gin.Context, key string, vErr *service.ValidationError) time.Time {
	raw := c.Query(key)
	if raw == "" {
		vErr.Add(key, "This field is required.")
		return time.Time{}
	}
	t, err := parse.Timestamp(raw, h.location)
	if err != nil {
		vErr.Add(key, datetimeFormatMessage)
		return time.Time{}
	}
	return t
}
