package api

import (
	"github.com/gin-gonic/gin"
)

// Notifications handles GET /ws/notifications. The connection joins the
// broadcast group until it closes.
func (h *Handler) Notifications(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request, h.group)
}
