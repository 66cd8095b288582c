package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eswarnandha-a/sece-space/internal/middleware"
	"github.com/eswarnandha-a/sece-space/internal/response"
	"github.com/eswarnandha-a/sece-space/internal/service"
	"github.com/eswarnandha-a/sece-space/internal/validator"
)

// UserHandler handles the principal mirror endpoints.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// SyncUser godoc
// POST /api/v1/users/sync
// Mirrors the authenticated principal into the local store. Clients
// call this once after login so classroom reads can resolve the name.
func (h *UserHandler) SyncUser(c *gin.Context) {
	claims := middleware.GetClaims(c)
	user, err := h.userService.Sync(c.Request.Context(), claims)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// GetProfile godoc
// GET /api/v1/users/me
// Returns the authenticated principal's stored projection.
func (h *UserHandler) GetProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	user, err := h.userService.Profile(c.Request.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// SetAvatarRequest is the payload for updating the profile image.
type SetAvatarRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// SetAvatar godoc
// PATCH /api/v1/users/me/avatar
// Stores the profile image URL returned by the profile-image upload.
func (h *UserHandler) SetAvatar(c *gin.Context) {
	var req SetAvatarRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	if err := h.userService.SetAvatar(c.Request.Context(), claims.Subject, req.URL); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "avatar updated"})
}
