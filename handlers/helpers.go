package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slateboard/slateboard-api/models"
	"github.com/slateboard/slateboard-api/services"
)

// requireProject loads the project for the caller and enforces the
// permission level. Writes the error response and returns nil on any
// failure, so callers can just bail.
func requireProject(c *gin.Context, projects *services.ProjectService, projectID, userID, level string) *models.Project {
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil
	}

	project, err := projects.GetByID(c.Request.Context(), projectID, userID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return nil
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project"})
		return nil
	}

	if !project.HasPermission(userID, level) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return nil
	}

	return project
}

// respondServiceError maps service errors onto HTTP buckets. Conflict
// rejections carry the full list of colliding entries.
func respondServiceError(c *gin.Context, err error) {
	var conflictErr *services.ScheduleConflictError
	switch {
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Schedule conflict detected",
			"conflicts": conflictErr.Conflicts,
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// auditLog appends a best-effort audit row; failures never block the
// request.
func auditLog(db *sql.DB, projectID, userID, action string, changes interface{}) {
	payload, err := json.Marshal(changes)
	if err != nil {
		payload = nil
	}
	_, _ = db.Exec(`
		INSERT INTO audit_logs (project_id, user_id, action, changes)
		VALUES ($1, $2, $3, $4)
	`, projectID, userID, action, payload)
}
