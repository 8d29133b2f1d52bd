package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bondhub/internal/models"
	"bondhub/internal/remote"
	"bondhub/internal/repositories"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrUserProfileNotFound),
		errors.Is(err, models.ErrConnectionNotFound),
		errors.Is(err, models.ErrChatNotFound),
		errors.Is(err, models.ErrMessageNotFound),
		errors.Is(err, remote.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConnectionExists),
		errors.Is(err, models.ErrConnectionNotActive),
		errors.Is(err, models.ErrInvalidStatusTransition),
		errors.Is(err, repositories.ErrEmailInUse):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotParticipant):
		return http.StatusForbidden
	case errors.Is(err, models.ErrSelfConnection),
		errors.Is(err, repositories.ErrWeakPassword),
		errors.Is(err, repositories.ErrInvalidEmail):
		return http.StatusBadRequest
	case errors.Is(err, repositories.ErrInvalidCredentials),
		errors.Is(err, repositories.ErrInvalidToken):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": message}. The message is the error's
// own text; auth errors use their user-facing wording.
func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": repositories.AuthErrorMessage(err)})
}
