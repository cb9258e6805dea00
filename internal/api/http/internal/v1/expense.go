package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/RandilG/Construction-Management/internal/domain"
	"github.com/RandilG/Construction-Management/internal/repository"
	"github.com/RandilG/Construction-Management/internal/service"
	"github.com/RandilG/Construction-Management/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (h *Handler) initExpenseRoutes(api *gin.RouterGroup) {
	projects := api.Group("/projects", h.userIdentityMiddleware)

	projects.POST("/:id/expenses", h.createExpense)
	projects.GET("/:id/expenses", h.listExpenses)
	projects.GET("/:id/expenses/stats", h.expenseStats)
	projects.GET("/:id/expenses/report", h.expenseReport)

	expenses := api.Group("/expenses", h.userIdentityMiddleware)

	expenses.GET("/:id", h.getExpense)
	expenses.PUT("/:id", h.updateExpense)
	expenses.PATCH("/:id/status", h.setExpenseStatus)
	expenses.DELETE("/:id", h.deleteExpense)

	categories := api.Group("/expense-categories", h.userIdentityMiddleware)

	categories.POST("", h.createCategory)
	categories.GET("", h.listCategories)
}

type createExpenseRequest struct {
	CategoryID  uuid.UUID `json:"category_id" binding:"required"`
	Title       string    `json:"title" binding:"required,min=2,max=200"`
	Description *string   `json:"description"`
	Amount      float64   `json:"amount" binding:"required,gt=0"`
	Currency    string    `json:"currency" binding:"omitempty,len=3"`
	ExpenseDate time.Time `json:"expense_date" binding:"required"`
	Vendor      *string   `json:"vendor"`
	ReceiptPath *string   `json:"receipt_path"`
	Notes       *string   `json:"notes"`
}

func (h *Handler) createExpense(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	id, err := h.services.Expenses.Create(c.Request.Context(), service.CreateExpenseInput{
		ProjectID:   projectID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    req.Currency,
		ExpenseDate: req.ExpenseDate,
		Vendor:      req.Vendor,
		ReceiptPath: req.ReceiptPath,
		Notes:       req.Notes,
	}, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotProjectMember):
			newResponse(c, http.StatusForbidden, "Not a project member")
		case errors.Is(err, service.ErrCategoryNotFound):
			newResponse(c, http.StatusBadRequest, "Unknown expense category")
		default:
			logger.Error("create expense failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func expenseFiltersFromQuery(c *gin.Context) (*repository.ExpenseFilters, error) {
	filters := &repository.ExpenseFilters{}

	if status := c.Query("status"); status != "" {
		s := domain.ExpenseStatus(status)
		if s != domain.ExpensePending && s != domain.ExpenseApproved && s != domain.ExpenseRejected {
			return nil, fmt.Errorf("unknown status %q", status)
		}
		filters.Status = &s
	}

	if category := c.Query("category_id"); category != "" {
		id, err := uuid.Parse(category)
		if err != nil {
			return nil, fmt.Errorf("invalid category_id")
		}
		filters.CategoryID = &id
	}

	if from := c.Query("date_from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return nil, fmt.Errorf("invalid date_from, expected YYYY-MM-DD")
		}
		filters.DateFrom = &t
	}

	if to := c.Query("date_to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return nil, fmt.Errorf("invalid date_to, expected YYYY-MM-DD")
		}
		filters.DateTo = &t
	}

	return filters, nil
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}

func (h *Handler) expenseStats(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.services.Expenses.Stats(c.Request.Context(), projectID, actorID)
	if err != nil {
		if errors.Is(err, service.ErrNotProjectMember) {
			newResponse(c, http.StatusForbidden, "Not a project member")
			return
		}
		logger.Error("expense stats failed", zap.Error(err))
		newResponse(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) listExpenses(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	filters, err := expenseFiltersFromQuery(c)
	if err != nil {
		newResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	page, limit := pageParams(c)

	expenses, total, err := h.services.Expenses.GetAllForProject(c.Request.Context(), projectID, actorID, page, limit, filters)
	if err != nil {
		if errors.Is(err, service.ErrNotProjectMember) {
			newResponse(c, http.StatusForbidden, "Not a project member")
			return
		}
		logger.Error("list expenses failed", zap.Error(err))
		newResponse(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"expenses": expenses,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

func (h *Handler) expenseReport(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	filters, err := expenseFiltersFromQuery(c)
	if err != nil {
		newResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	project, _, err := h.services.Projects.GetOneByID(c.Request.Context(), projectID, actorID)
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

	expenses, _, err := h.services.Expenses.GetAllForProject(c.Request.Context(), projectID, actorID, 1, 100, filters)
	if err != nil {
		logger.Error("list expenses for report failed", zap.Error(err))
		newResponse(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	data, err := h.pdfGenerator.GenerateExpenseReport(project.Name, expenses)
	if err != nil {
		logger.Error("generate expense report failed", zap.Error(err))
		newResponse(c, http.StatusInternalServerError, "Failed to generate report")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="expense-report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *Handler) getExpense(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	expense, err := h.services.Expenses.GetOneByID(c.Request.Context(), id, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExpenseNotFound):
			newResponse(c, http.StatusNotFound, "Expense not found")
		case errors.Is(err, service.ErrNotProjectMember):
			newResponse(c, http.StatusForbidden, "Not a project member")
		default:
			logger.Error("get expense failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, expense)
}

type updateExpenseRequest struct {
	CategoryID  uuid.UUID `json:"category_id" binding:"required"`
	Title       string    `json:"title" binding:"required,min=2,max=200"`
	Description *string   `json:"description"`
	Amount      float64   `json:"amount" binding:"required,gt=0"`
	Currency    string    `json:"currency" binding:"omitempty,len=3"`
	ExpenseDate time.Time `json:"expense_date" binding:"required"`
	Vendor      *string   `json:"vendor"`
	ReceiptPath *string   `json:"receipt_path"`
	Notes       *string   `json:"notes"`
}

func (h *Handler) updateExpense(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "LKR"
	}

	expense := &domain.Expense{
		ID:          id,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    currency,
		ExpenseDate: req.ExpenseDate,
		Vendor:      req.Vendor,
		ReceiptPath: req.ReceiptPath,
		Notes:       req.Notes,
	}

	if err := h.services.Expenses.Update(c.Request.Context(), expense, actorID); err != nil {
		switch {
		case errors.Is(err, service.ErrExpenseNotFound):
			newResponse(c, http.StatusNotFound, "Expense not found")
		case errors.Is(err, service.ErrNotProjectMember), errors.Is(err, service.ErrPermissionDenied):
			newResponse(c, http.StatusForbidden, "Insufficient permissions")
		default:
			logger.Error("update expense failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, response{"Expense updated"})
}

type setExpenseStatusRequest struct {
	Status domain.ExpenseStatus `json:"status" binding:"required"`
}

func (h *Handler) setExpenseStatus(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req setExpenseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	if err := h.services.Expenses.SetStatus(c.Request.Context(), id, req.Status, actorID); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			newResponse(c, http.StatusBadRequest, "Status must be approved or rejected")
		case errors.Is(err, service.ErrExpenseNotFound):
			newResponse(c, http.StatusNotFound, "Expense not found")
		case errors.Is(err, service.ErrNotProjectMember), errors.Is(err, service.ErrPermissionDenied):
			newResponse(c, http.StatusForbidden, "Insufficient permissions")
		default:
			logger.Error("set expense status failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, response{"Expense status updated"})
}

func (h *Handler) deleteExpense(c *gin.Context) {
	actorID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.services.Expenses.Delete(c.Request.Context(), id, actorID); err != nil {
		switch {
		case errors.Is(err, service.ErrExpenseNotFound):
			newResponse(c, http.StatusNotFound, "Expense not found")
		case errors.Is(err, service.ErrNotProjectMember), errors.Is(err, service.ErrPermissionDenied):
			newResponse(c, http.StatusForbidden, "Insufficient permissions")
		default:
			logger.Error("delete expense failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, response{"Expense deleted"})
}

type createCategoryRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=100"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
}

func (h *Handler) createCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	id, err := h.services.Expenses.CreateCategory(c.Request.Context(), req.Name, req.Color)
	if err != nil {
		if errors.Is(err, service.ErrCategoryExists) {
			newResponse(c, http.StatusConflict, "Category already exists")
			return
		}
		logger.Error("create category failed", zap.Error(err))
		newResponse(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.services.Expenses.GetCategories(c.Request.Context())
	if err != nil {
		logger.Error("list categories failed", zap.Error(err))
		newResponse(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, categories)
}
