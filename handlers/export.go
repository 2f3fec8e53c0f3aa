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

type ExportHandler struct {
	DB        *sql.DB
	Projects  *services.ProjectService
	Schedules *services.ScheduleService
	Budgets   *services.BudgetService
	Exports   *services.ExportService
}

// ExportScheduleCSV streams the project's schedule as a CSV download.
func (h *ExportHandler) ExportScheduleCSV(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionRead) == nil {
		return
	}

	entries, err := h.Schedules.List(c.Request.Context(), projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	data, err := h.Exports.ScheduleCSV(entries)
	if err != nil {
		utils.SafeError("schedule CSV export: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate CSV"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="schedule.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// ExportBudgetPDF renders the budget report through Gotenberg.
func (h *ExportHandler) ExportBudgetPDF(c *gin.Context) {
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

	data, err := h.Exports.BudgetPDF(c.Request.Context(), budget)
	if err != nil {
		utils.SafeError("budget PDF export: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate PDF"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="budget.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
