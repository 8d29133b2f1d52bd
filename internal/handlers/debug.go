package handlers

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"bondhub/internal/telemetry"
)

// Presence lists the users with an open socket on this node.
type Presence interface {
	ActiveUsers() []string
}

// Debug is what the debug routes can report on. Any field may be zero.
type Debug struct {
	Audit     *telemetry.AuditEmitter
	Publisher string
	Presence  Presence
}

// RegisterDebugRoutes mounts /debug/audit-test, which pushes one audit event
// through the publisher, and /debug/node, which shows the publisher mode and
// who is connected here. Only mount them outside production.
func RegisterDebugRoutes(router gin.IRouter, d Debug) {
	debug := router.Group("/debug")

	debug.GET("/audit-test", func(c *gin.Context) {
		if d.Audit == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		d.Audit.Emit(c.Request.Context(), "INFO", "audit test", requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	debug.GET("/node", func(c *gin.Context) {
		users := []string{}
		if d.Presence != nil {
			users = append(users, d.Presence.ActiveUsers()...)
			slices.Sort(users)
		}
		c.JSON(http.StatusOK, gin.H{"publisher": d.Publisher, "active_users": users})
	})
}
