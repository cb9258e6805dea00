package v1

import (
	"errors"
	"net/http"

	"github.com/RandilG/Construction-Management/internal/service"
	"github.com/RandilG/Construction-Management/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) initProfileRoutes(api *gin.RouterGroup) {
	profile := api.Group("/profile", h.userIdentityMiddleware)

	profile.GET("", h.getProfile)
	profile.PUT("", h.updateProfile)
}

func (h *Handler) getProfile(c *gin.Context) {
	email, err := h.getUserEmail(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.services.Users.GetProfile(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			newResponse(c, http.StatusNotFound, "User not found")
			return
		}
		logger.Error("get profile failed", zap.Error(err))
		newResponse(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, user)
}

type updateProfileRequest struct {
	Name          string `json:"name" binding:"required,min=2,max=100"`
	ContactNumber string `json:"contact_number" binding:"required,phonenumber"`
}

func (h *Handler) updateProfile(c *gin.Context) {
	email, err := h.getUserEmail(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	if err := h.services.Users.UpdateProfile(c.Request.Context(), email, req.Name, req.ContactNumber); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			newResponse(c, http.StatusNotFound, "User not found")
			return
		}
		logger.Error("update profile failed", zap.Error(err))
		newResponse(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, response{"Profile updated"})
}
