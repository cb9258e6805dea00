package v1

import (
	"errors"
	"net/http"

	"github.com/RandilG/Construction-Management/internal/domain"
	"github.com/RandilG/Construction-Management/internal/service"
	"github.com/RandilG/Construction-Management/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type addMembersRequest struct {
	UserIDs []uuid.UUID `json:"user_ids" binding:"required,min=1"`
}

func (h *Handler) addMembers(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req addMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	result, err := h.services.Members.Add(c.Request.Context(), projectID, actorID, req.UserIDs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectNotFound):
			newResponse(c, http.StatusNotFound, "Project not found")
		case errors.Is(err, service.ErrPermissionDenied):
			newResponse(c, http.StatusForbidden, "Insufficient permissions")
		default:
			logger.Error("add members failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Members processed",
		"added":      result.Added,
		"duplicates": result.Duplicates,
		"errors":     result.Errors,
		"total":      result.Total,
	})
}

func (h *Handler) listMembers(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	members, err := h.services.Members.List(c.Request.Context(), projectID, actorID)
	if err != nil {
		if errors.Is(err, service.ErrNotProjectMember) {
			newResponse(c, http.StatusForbidden, "Not a project member")
			return
		}
		logger.Error("list members failed", zap.Error(err))
		newResponse(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, members)
}

type updateMemberRoleRequest struct {
	Role domain.MemberRole `json:"role" binding:"required"`
}

func (h *Handler) updateMemberRole(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	var req updateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	if err := h.services.Members.UpdateRole(c.Request.Context(), projectID, actorID, userID, req.Role); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			newResponse(c, http.StatusBadRequest, "Role must be one of: admin, manager, member")
		case errors.Is(err, service.ErrPermissionDenied):
			newResponse(c, http.StatusForbidden, "Only the project owner can change member roles")
		case errors.Is(err, service.ErrNotProjectMember):
			newResponse(c, http.StatusNotFound, "Member not found")
		default:
			logger.Error("update member role failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, response{"Member role updated"})
}

func (h *Handler) removeMember(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	if err := h.services.Members.Remove(c.Request.Context(), projectID, actorID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionDenied):
			newResponse(c, http.StatusForbidden, "Insufficient permissions")
		case errors.Is(err, service.ErrNotProjectMember):
			newResponse(c, http.StatusNotFound, "Member not found")
		default:
			logger.Error("remove member failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, response{"Member removed"})
}
