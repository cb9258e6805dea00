package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/RandilG/Construction-Management/internal/domain"
	"github.com/RandilG/Construction-Management/internal/service"
	"github.com/RandilG/Construction-Management/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (h *Handler) initProjectRoutes(api *gin.RouterGroup) {
	projects := api.Group("/projects", h.userIdentityMiddleware)

	projects.POST("", h.createProject)
	projects.GET("", h.listProjects)
	projects.GET("/:id", h.getProject)
	projects.DELETE("/:id", h.deleteProject)

	projects.POST("/:id/members", h.addMembers)
	projects.GET("/:id/members", h.listMembers)
	projects.PUT("/:id/members/:userId/role", h.updateMemberRole)
	projects.DELETE("/:id/members/:userId", h.removeMember)
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		newResponse(c, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

type createProjectRequest struct {
	Name             string     `json:"name" binding:"required,min=2,max=200"`
	Description      *string    `json:"description"`
	StartDate        *time.Time `json:"start_date"`
	EstimatedEndDate *time.Time `json:"estimated_end_date"`
	ImageURL         *string    `json:"image_url"`
}

func (h *Handler) createProject(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	id, err := h.services.Projects.Create(c.Request.Context(), service.CreateProjectInput{
		Name:             req.Name,
		Description:      req.Description,
		StartDate:        req.StartDate,
		EstimatedEndDate: req.EstimatedEndDate,
		ImageURL:         req.ImageURL,
	}, userID)
	if err != nil {
		logger.Error("create project failed", zap.Error(err))
		newResponse(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) listProjects(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	projects, err := h.services.Projects.GetAllForUser(c.Request.Context(), userID)
	if err != nil {
		logger.Error("list projects failed", zap.Error(err))
		newResponse(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, projects)
}

type projectResponse struct {
	*domain.Project

	Members []domain.ProjectMember `json:"members"`
}

func (h *Handler) getProject(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	project, members, err := h.services.Projects.GetOneByID(c.Request.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectNotFound):
			newResponse(c, http.StatusNotFound, "Project not found")
		case errors.Is(err, service.ErrNotProjectMember):
			newResponse(c, http.StatusForbidden, "Not a project member")
		default:
			logger.Error("get project failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, projectResponse{Project: project, Members: members})
}

func (h *Handler) deleteProject(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.services.Projects.Delete(c.Request.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrProjectNotFound):
			newResponse(c, http.StatusNotFound, "Project not found")
		case errors.Is(err, service.ErrPermissionDenied):
			newResponse(c, http.StatusForbidden, "Only the owner can delete a project")
		default:
			logger.Error("delete project failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, response{"Project deleted"})
}
