package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slateboard/slateboard-api/middleware"
	"github.com/slateboard/slateboard-api/models"
	"github.com/slateboard/slateboard-api/services"
	"github.com/slateboard/slateboard-api/utils"
)

type BudgetHandler struct {
	DB       *sql.DB
	Projects *services.ProjectService
	Budgets  *services.BudgetService
	WS       *WSHandler
}

// GetBudget returns the project's budget, lazily creating the default
// one, together with the derived summary and the near-limit flag.
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionRead) == nil {
		return
	}

	budget, err := h.Budgets.GetOrCreateDefault(c.Request.Context(), projectID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"budget":       budget,
		"summary":      budget.Summary(),
		"over_warning": h.Budgets.IsOverWarningThreshold(budget),
	})
}

// UpdateCategories replaces the category list (structural edit:
// snapshot + version bump).
func (h *BudgetHandler) UpdateCategories(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	var req models.UpdateCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	budget, err := h.Budgets.GetOrCreateDefault(c.Request.Context(), projectID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	budget, err = h.Budgets.UpdateCategories(c.Request.Context(), budget.ID, req.Categories, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.LogBudgetAction("categories updated", budget.ID, userID)
	auditLog(h.DB, projectID, userID, "budget_categories_update", req.Categories)
	h.WS.BroadcastUpdate(projectID, "budget_updated", userID)

	c.JSON(http.StatusOK, gin.H{"budget": budget, "summary": budget.Summary()})
}

// UpdateTotalBudget sets the total figure (structural edit).
func (h *BudgetHandler) UpdateTotalBudget(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	var req models.UpdateTotalBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	budget, err := h.Budgets.GetOrCreateDefault(c.Request.Context(), projectID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	budget, err = h.Budgets.UpdateTotalBudget(c.Request.Context(), budget.ID, req.TotalBudget, req.Currency, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.LogBudgetAction("total updated", budget.ID, userID)
	auditLog(h.DB, projectID, userID, "budget_total_update", req)
	h.WS.BroadcastUpdate(projectID, "budget_updated", userID)

	c.JSON(http.StatusOK, gin.H{"budget": budget, "summary": budget.Summary()})
}

// UpdateSettings changes the approval policy. Admin only.
func (h *BudgetHandler) UpdateSettings(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionAdmin) == nil {
		return
	}

	var req models.UpdateBudgetSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	budget, err := h.Budgets.GetOrCreateDefault(c.Request.Context(), projectID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	budget, err = h.Budgets.UpdateSettings(c.Request.Context(), budget.ID, models.BudgetSettings{
		RequireApproval: req.RequireApproval,
		ApprovalLimit:   req.ApprovalLimit,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	auditLog(h.DB, projectID, userID, "budget_settings_update", req)

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// CreateExpense appends a line item. First write lazily creates the
// budget; the approval-limit override may downgrade the caller's status.
func (h *BudgetHandler) CreateExpense(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	var req models.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	budget, err := h.Budgets.GetOrCreateDefault(c.Request.Context(), projectID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	expense, summary, err := h.Budgets.CreateExpense(c.Request.Context(), budget.ID, req, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.LogBudgetAction("expense created", budget.ID, userID)
	auditLog(h.DB, projectID, userID, "expense_create", expense)
	h.WS.BroadcastUpdate(projectID, "budget_updated", userID)

	c.JSON(http.StatusCreated, gin.H{"expense": expense, "summary": summary})
}

// ApproveExpense requires admin permission on the project.
func (h *BudgetHandler) ApproveExpense(c *gin.Context) {
	h.transitionExpense(c, services.ExpenseActionApprove, models.PermissionAdmin)
}

// PayExpense requires write permission on the project.
func (h *BudgetHandler) PayExpense(c *gin.Context) {
	h.transitionExpense(c, services.ExpenseActionMarkPaid, models.PermissionWrite)
}

func (h *BudgetHandler) transitionExpense(c *gin.Context, action, level string) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, level) == nil {
		return
	}

	budget, err := h.Budgets.GetOrCreateDefault(c.Request.Context(), projectID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	expense, err := h.Budgets.TransitionExpense(c.Request.Context(), budget.ID, c.Param("expense_id"), action, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.LogBudgetAction("expense "+action, budget.ID, userID)
	auditLog(h.DB, projectID, userID, "expense_"+action, expense)
	h.WS.BroadcastUpdate(projectID, "budget_updated", userID)

	c.JSON(http.StatusOK, expense)
}

// DeleteExpense removes a line item outright.
func (h *BudgetHandler) DeleteExpense(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionDelete) == nil {
		return
	}

	budget, err := h.Budgets.GetOrCreateDefault(c.Request.Context(), projectID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	expenseID := c.Param("expense_id")
	summary, err := h.Budgets.DeleteExpense(c.Request.Context(), budget.ID, expenseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.LogBudgetAction("expense deleted", budget.ID, userID)
	auditLog(h.DB, projectID, userID, "expense_delete", gin.H{"expense_id": expenseID})
	h.WS.BroadcastUpdate(projectID, "budget_updated", userID)

	c.JSON(http.StatusOK, gin.H{"summary": summary, "message": "Expense deleted successfully"})
}
