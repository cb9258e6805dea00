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

func (h *Handler) initTimelineRoutes(api *gin.RouterGroup) {
	projects := api.Group("/projects", h.userIdentityMiddleware)

	projects.POST("/:id/timeline", h.createTimeline)
	projects.GET("/:id/timeline", h.getTimeline)
	projects.GET("/:id/timeline/summary", h.timelineSummary)

	timelines := api.Group("/timelines", h.userIdentityMiddleware)

	timelines.PATCH("/:id/status", h.updateTimelineStatus)
	timelines.POST("/:id/stages", h.addStage)
	timelines.GET("/:id/updates", h.listTimelineUpdates)
	timelines.GET("/:id/analytics", h.timelineAnalytics)

	stages := api.Group("/stages", h.userIdentityMiddleware)

	stages.PUT("/:id", h.updateStage)
	stages.DELETE("/:id", h.deleteStage)
}

type createStageRequest struct {
	Name          string               `json:"stage_name" binding:"required,min=2,max=200"`
	Description   *string              `json:"description"`
	Order         int                  `json:"stage_order"`
	PlannedStart  time.Time            `json:"planned_start_date" binding:"required"`
	PlannedEnd    time.Time            `json:"planned_end_date" binding:"required"`
	AssignedTo    *uuid.UUID           `json:"assigned_to"`
	EstimatedCost *float64             `json:"estimated_cost"`
	Priority      domain.StagePriority `json:"priority"`
	IsMilestone   bool                 `json:"is_milestone"`
	Notes         *string              `json:"notes"`
}

func (r createStageRequest) toInput() service.CreateStageInput {
	return service.CreateStageInput{
		Name:          r.Name,
		Description:   r.Description,
		Order:         r.Order,
		PlannedStart:  r.PlannedStart,
		PlannedEnd:    r.PlannedEnd,
		AssignedTo:    r.AssignedTo,
		EstimatedCost: r.EstimatedCost,
		Priority:      r.Priority,
		IsMilestone:   r.IsMilestone,
		Notes:         r.Notes,
	}
}

type createTimelineRequest struct {
	Title        string               `json:"title" binding:"required,min=2,max=200"`
	Description  *string              `json:"description"`
	PlannedStart time.Time            `json:"planned_start_date" binding:"required"`
	PlannedEnd   time.Time            `json:"planned_end_date" binding:"required"`
	Notes        *string              `json:"notes"`
	Stages       []createStageRequest `json:"stages" binding:"omitempty,dive"`
}

func (h *Handler) createTimeline(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req createTimelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	stages := make([]service.CreateStageInput, 0, len(req.Stages))
	for _, stage := range req.Stages {
		stages = append(stages, stage.toInput())
	}

	id, err := h.services.Timelines.Create(c.Request.Context(), projectID, actorID, service.CreateTimelineInput{
		Title:        req.Title,
		Description:  req.Description,
		PlannedStart: req.PlannedStart,
		PlannedEnd:   req.PlannedEnd,
		Notes:        req.Notes,
		Stages:       stages,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTimelineExists):
			newResponse(c, http.StatusConflict, "Project already has a timeline")
		case errors.Is(err, service.ErrMissingStageDates):
			newResponse(c, http.StatusBadRequest, "Each stage needs a name, start date and end date")
		case errors.Is(err, service.ErrNotProjectMember), errors.Is(err, service.ErrPermissionDenied):
			newResponse(c, http.StatusForbidden, "Insufficient permissions")
		default:
			logger.Error("create timeline failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) getTimeline(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	timeline, err := h.services.Timelines.GetForProject(c.Request.Context(), projectID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTimelineNotFound):
			newResponse(c, http.StatusNotFound, "Timeline not found")
		case errors.Is(err, service.ErrNotProjectMember):
			newResponse(c, http.StatusForbidden, "Not a project member")
		default:
			logger.Error("get timeline failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, timeline)
}

func (h *Handler) timelineSummary(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.services.Timelines.Summary(c.Request.Context(), projectID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTimelineNotFound):
			newResponse(c, http.StatusNotFound, "Timeline not found")
		case errors.Is(err, service.ErrNotProjectMember):
			newResponse(c, http.StatusForbidden, "Not a project member")
		default:
			logger.Error("timeline summary failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, summary)
}

type updateTimelineStatusRequest struct {
	Status domain.TimelineStatus `json:"status" binding:"required"`
	Notes  *string               `json:"notes"`
}

func (h *Handler) updateTimelineStatus(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateTimelineStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	if err := h.services.Timelines.UpdateStatus(c.Request.Context(), id, actorID, req.Status, req.Notes); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			newResponse(c, http.StatusBadRequest, "Unknown timeline status")
		case errors.Is(err, service.ErrTimelineNotFound):
			newResponse(c, http.StatusNotFound, "Timeline not found")
		case errors.Is(err, service.ErrNotProjectMember), errors.Is(err, service.ErrPermissionDenied):
			newResponse(c, http.StatusForbidden, "Insufficient permissions")
		default:
			logger.Error("update timeline status failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, response{"Timeline status updated"})
}

func (h *Handler) addStage(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	timelineID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req createStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	id, err := h.services.Timelines.AddStage(c.Request.Context(), timelineID, actorID, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTimelineNotFound):
			newResponse(c, http.StatusNotFound, "Timeline not found")
		case errors.Is(err, service.ErrMissingStageDates):
			newResponse(c, http.StatusBadRequest, "Stage needs a name, start date and end date")
		case errors.Is(err, service.ErrNotProjectMember), errors.Is(err, service.ErrPermissionDenied):
			newResponse(c, http.StatusForbidden, "Insufficient permissions")
		default:
			logger.Error("add stage failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

type updateStageRequest struct {
	Name          *string               `json:"stage_name" binding:"omitempty,min=2,max=200"`
	Description   *string               `json:"description"`
	PlannedStart  *time.Time            `json:"planned_start_date"`
	PlannedEnd    *time.Time            `json:"planned_end_date"`
	ActualStart   *time.Time            `json:"actual_start_date"`
	ActualEnd     *time.Time            `json:"actual_end_date"`
	Progress      *float64              `json:"progress_percentage" binding:"omitempty,gte=0,lte=100"`
	Status        *domain.StageStatus   `json:"status"`
	AssignedTo    *uuid.UUID            `json:"assigned_to"`
	EstimatedCost *float64              `json:"estimated_cost"`
	ActualCost    *float64              `json:"actual_cost"`
	Priority      *domain.StagePriority `json:"priority"`
	Notes         *string               `json:"notes"`
}

func (h *Handler) updateStage(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	stageID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	input := service.UpdateStageInput{
		Name:          req.Name,
		Description:   req.Description,
		PlannedStart:  req.PlannedStart,
		PlannedEnd:    req.PlannedEnd,
		ActualStart:   req.ActualStart,
		ActualEnd:     req.ActualEnd,
		Progress:      req.Progress,
		Status:        req.Status,
		AssignedTo:    req.AssignedTo,
		EstimatedCost: req.EstimatedCost,
		ActualCost:    req.ActualCost,
		Priority:      req.Priority,
		Notes:         req.Notes,
	}

	if err := h.services.Timelines.UpdateStage(c.Request.Context(), stageID, actorID, input); err != nil {
		switch {
		case errors.Is(err, service.ErrStageNotFound):
			newResponse(c, http.StatusNotFound, "Stage not found")
		case errors.Is(err, service.ErrNotProjectMember), errors.Is(err, service.ErrPermissionDenied):
			newResponse(c, http.StatusForbidden, "Insufficient permissions")
		default:
			logger.Error("update stage failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, response{"Stage updated"})
}

func (h *Handler) deleteStage(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	stageID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.services.Timelines.DeleteStage(c.Request.Context(), stageID, actorID); err != nil {
		switch {
		case errors.Is(err, service.ErrStageNotFound):
			newResponse(c, http.StatusNotFound, "Stage not found")
		case errors.Is(err, service.ErrStageCompleted):
			newResponse(c, http.StatusBadRequest, "Completed stages cannot be deleted")
		case errors.Is(err, service.ErrNotProjectMember), errors.Is(err, service.ErrPermissionDenied):
			newResponse(c, http.StatusForbidden, "Insufficient permissions")
		default:
			logger.Error("delete stage failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, response{"Stage deleted"})
}

func (h *Handler) listTimelineUpdates(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	timelineID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page, limit := pageParams(c)

	updates, total, err := h.services.Timelines.ListUpdates(c.Request.Context(), timelineID, actorID, page, limit)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTimelineNotFound):
			newResponse(c, http.StatusNotFound, "Timeline not found")
		case errors.Is(err, service.ErrNotProjectMember):
			newResponse(c, http.StatusForbidden, "Not a project member")
		default:
			logger.Error("list timeline updates failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"updates": updates,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

func (h *Handler) timelineAnalytics(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	timelineID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	analytics, err := h.services.Timelines.Analytics(c.Request.Context(), timelineID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTimelineNotFound):
			newResponse(c, http.StatusNotFound, "Timeline not found")
		case errors.Is(err, service.ErrNotProjectMember):
			newResponse(c, http.StatusForbidden, "Not a project member")
		default:
			logger.Error("timeline analytics failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, analytics)
}
