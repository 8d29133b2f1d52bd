package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bondhub/internal/middleware"
	"bondhub/internal/usecase"
)

// ConnectionHandler manages connection requests.
type ConnectionHandler struct {
	uc *usecase.Set
}

func NewConnectionHandler(uc *usecase.Set) *ConnectionHandler {
	return &ConnectionHandler{uc: uc}
}

// ListConnections returns the caller's connections. With ?pending=true only
// requests waiting on the caller are returned.
func (h *ConnectionHandler) ListConnections(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	observe := h.uc.ObserveConnections.Execute
	if c.Query("pending") == "true" {
		observe = h.uc.ObservePendingRequests.Execute
	}
	conns, err := snapshot(ctx, observe(ctx, userID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": conns})
}

func (h *ConnectionHandler) SendRequest(c *gin.Context) {
	var req struct {
		ToUserID string `json:"to_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := h.uc.SendConnectionRequest.Execute(c.Request.Context(), middleware.UserID(c), req.ToUserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conn)
}

func (h *ConnectionHandler) Accept(c *gin.Context) {
	conn, err := h.uc.AcceptConnectionRequest.Execute(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func (h *ConnectionHandler) Reject(c *gin.Context) {
	if err := h.uc.RejectConnectionRequest.Execute(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkRead marks every message the caller received over the connection as
// read.
func (h *ConnectionHandler) MarkRead(c *gin.Context) {
	if err := h.uc.MarkMessagesAsRead.Execute(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
