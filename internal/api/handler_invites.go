package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resource-booking-backend/internal/mw"
)

// CreateInvite handles POST /api/invites.
func (h *Handler) CreateInvite(c *gin.Context) {
	invite, err := h.invites.Mint(c.Request.Context(), mw.Principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"code":       invite.Code,
		"created_at": h.formatTime(invite.CreatedAt),
	})
}
