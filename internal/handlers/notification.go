package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"bondhub/internal/middleware"
)

// ReadMarker runs a notification's mark-as-read action.
type ReadMarker interface {
	MarkAsRead(ctx context.Context, userID, chatID string) error
}

type NotificationHandler struct {
	marker ReadMarker
}

func NewNotificationHandler(marker ReadMarker) *NotificationHandler {
	return &NotificationHandler{marker: marker}
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	if err := h.marker.MarkAsRead(c.Request.Context(), middleware.UserID(c), c.Param("chat_id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
