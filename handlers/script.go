package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slateboard/slateboard-api/middleware"
	"github.com/slateboard/slateboard-api/models"
	"github.com/slateboard/slateboard-api/services"
)

type ScriptHandler struct {
	DB       *sql.DB
	Projects *services.ProjectService
	Scripts  *services.ScriptService
	WS       *WSHandler
}

func (h *ScriptHandler) ListScripts(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionRead) == nil {
		return
	}

	scripts, err := h.Scripts.List(c.Request.Context(), projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, scripts)
}

func (h *ScriptHandler) GetScript(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionRead) == nil {
		return
	}

	script, err := h.Scripts.Get(c.Request.Context(), c.Param("script_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, script)
}

func (h *ScriptHandler) CreateScript(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	var req models.CreateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	script, err := h.Scripts.Create(c.Request.Context(), projectID, req, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	auditLog(h.DB, projectID, userID, "script_create", gin.H{"script_id": script.ID})
	h.WS.BroadcastUpdate(projectID, "script_created", userID)

	c.JSON(http.StatusCreated, script)
}

// UpdateScript bumps the revision counter when the content changes.
func (h *ScriptHandler) UpdateScript(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	var req models.UpdateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	script, err := h.Scripts.Update(c.Request.Context(), c.Param("script_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.WS.BroadcastUpdate(projectID, "script_updated", userID)

	c.JSON(http.StatusOK, script)
}

func (h *ScriptHandler) DeleteScript(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionDelete) == nil {
		return
	}

	scriptID := c.Param("script_id")
	if err := h.Scripts.Delete(c.Request.Context(), scriptID); err != nil {
		respondServiceError(c, err)
		return
	}

	auditLog(h.DB, projectID, userID, "script_delete", gin.H{"script_id": scriptID})
	h.WS.BroadcastUpdate(projectID, "script_deleted", userID)

	c.JSON(http.StatusOK, gin.H{"message": "Script deleted successfully"})
}
