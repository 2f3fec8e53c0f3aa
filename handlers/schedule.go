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

type ScheduleHandler struct {
	DB        *sql.DB
	Projects  *services.ProjectService
	Schedules *services.ScheduleService
	WS        *WSHandler
}

// ListSchedules returns the project's schedule entries, optionally
// narrowed to one date with ?date=YYYY-MM-DD.
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionRead) == nil {
		return
	}

	var entries []models.ScheduleEntry
	var err error
	if date := c.Query("date"); date != "" {
		entries, err = h.Schedules.ListByDate(c.Request.Context(), projectID, date)
	} else {
		entries, err = h.Schedules.List(c.Request.Context(), projectID)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionRead) == nil {
		return
	}

	entry, err := h.Schedules.Get(c.Request.Context(), c.Param("schedule_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// CheckConflicts runs the conflict check without writing anything.
// Query params: date, start, end, exclude (optional schedule id).
func (h *ScheduleHandler) CheckConflicts(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionRead) == nil {
		return
	}

	date := c.Query("date")
	start := c.Query("start")
	end := c.Query("end")
	if date == "" || start == "" || end == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date, start and end query parameters are required"})
		return
	}

	conflicts, err := h.Schedules.FindConflicts(c.Request.Context(), projectID, date, start, end, c.Query("exclude"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conflicts":    conflicts,
		"has_conflict": len(conflicts) > 0,
	})
}

func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	var req models.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.Schedules.Create(c.Request.Context(), projectID, req, userID)
	if err != nil {
		if conflictErr, ok := err.(*services.ScheduleConflictError); ok {
			utils.LogScheduleAction("create rejected", projectID, userID, len(conflictErr.Conflicts))
		}
		respondServiceError(c, err)
		return
	}

	utils.LogScheduleAction("created", projectID, userID, 0)
	auditLog(h.DB, projectID, userID, "schedule_create", entry)
	h.WS.BroadcastUpdate(projectID, "schedule_created", userID)

	c.JSON(http.StatusCreated, entry)
}

func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	var req models.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.Schedules.Update(c.Request.Context(), c.Param("schedule_id"), req, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	auditLog(h.DB, projectID, userID, "schedule_update", entry)
	h.WS.BroadcastUpdate(projectID, "schedule_updated", userID)

	c.JSON(http.StatusOK, entry)
}

func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionDelete) == nil {
		return
	}

	scheduleID := c.Param("schedule_id")
	if err := h.Schedules.Delete(c.Request.Context(), scheduleID); err != nil {
		respondServiceError(c, err)
		return
	}

	auditLog(h.DB, projectID, userID, "schedule_delete", gin.H{"schedule_id": scheduleID})
	h.WS.BroadcastUpdate(projectID, "schedule_deleted", userID)

	c.JSON(http.StatusOK, gin.H{"message": "Schedule entry deleted successfully"})
}
