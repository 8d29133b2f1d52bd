package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bondhub/internal/middleware"
	"bondhub/internal/usecase"
)

type ProfileHandler struct {
	uc *usecase.Set
}

func NewProfileHandler(uc *usecase.Set) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.uc.GetUserProfile.Execute(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile applies a partial update; absent fields are left alone.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		DisplayName       *string `json:"display_name"`
		Bio               *string `json:"bio"`
		ProfilePictureURL *string `json:"profile_picture_url"`
		ThumbnailURL      *string `json:"thumbnail_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.uc.UpdateUserProfile.Execute(c.Request.Context(), middleware.UserID(c), usecase.ProfileChanges{
		DisplayName:       req.DisplayName,
		Bio:               req.Bio,
		ProfilePictureURL: req.ProfilePictureURL,
		ThumbnailURL:      req.ThumbnailURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) SearchUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	users, err := h.uc.SearchUsers.Execute(c.Request.Context(), c.Query("q"), middleware.UserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
