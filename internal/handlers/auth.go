package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bondhub/internal/middleware"
	"bondhub/internal/telemetry"
	"bondhub/internal/usecase"
)

// AuthHandler serves sign-up, sign-in and device token registration.
type AuthHandler struct {
	uc    *usecase.Set
	audit *telemetry.AuditEmitter
}

// NewAuthHandler builds an AuthHandler. audit may be nil.
func NewAuthHandler(uc *usecase.Set, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{uc: uc, audit: audit}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		Password    string `json:"password" binding:"required"`
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.uc.SignUp.Execute(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.emitAudit(c, "WARN", "sign up failed", nil)
		respondError(c, err)
		return
	}
	h.emitAudit(c, "INFO", "signed up", &session.UserID)
	c.JSON(http.StatusCreated, session)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.uc.SignIn.Execute(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.emitAudit(c, "WARN", "sign in failed", nil)
		respondError(c, err)
		return
	}
	h.emitAudit(c, "INFO", "signed in", &session.UserID)
	c.JSON(http.StatusOK, session)
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	userID := middleware.UserID(c)
	if err := h.uc.SignOut.Execute(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	h.emitAudit(c, "INFO", "signed out", &userID)
	c.Status(http.StatusNoContent)
}

// UpdateFCMToken registers the caller's device token for pushes.
func (h *AuthHandler) UpdateFCMToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.uc.UpdateFCMToken.Execute(c.Request.Context(), middleware.UserID(c), req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) emitAudit(c *gin.Context, level, text string, userID *string) {
	if h.audit == nil {
		return
	}
	if userID == nil {
		userID = userIDFromContext(c)
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userID)
}
