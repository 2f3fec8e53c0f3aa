package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slateboard/slateboard-api/middleware"
	"github.com/slateboard/slateboard-api/models"
	"github.com/slateboard/slateboard-api/services"
)

type SceneHandler struct {
	DB       *sql.DB
	Projects *services.ProjectService
	Scenes   *services.SceneService
	WS       *WSHandler
}

func (h *SceneHandler) ListScenes(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionRead) == nil {
		return
	}

	scenes, err := h.Scenes.List(c.Request.Context(), projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, scenes)
}

func (h *SceneHandler) GetScene(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionRead) == nil {
		return
	}

	scene, err := h.Scenes.Get(c.Request.Context(), c.Param("scene_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, scene)
}

func (h *SceneHandler) CreateScene(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	var req models.CreateSceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scene, err := h.Scenes.Create(c.Request.Context(), projectID, req, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	auditLog(h.DB, projectID, userID, "scene_create", gin.H{"scene_id": scene.ID})
	h.WS.BroadcastUpdate(projectID, "scene_created", userID)

	c.JSON(http.StatusCreated, scene)
}

func (h *SceneHandler) UpdateScene(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	var req models.UpdateSceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scene, err := h.Scenes.Update(c.Request.Context(), c.Param("scene_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.WS.BroadcastUpdate(projectID, "scene_updated", userID)

	c.JSON(http.StatusOK, scene)
}

// ReorderScenes rewrites the order index of every listed scene.
func (h *SceneHandler) ReorderScenes(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	var req models.ReorderScenesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Scenes.Reorder(c.Request.Context(), projectID, req.SceneIDs); err != nil {
		respondServiceError(c, err)
		return
	}

	h.WS.BroadcastUpdate(projectID, "scenes_reordered", userID)

	c.JSON(http.StatusOK, gin.H{"message": "Scenes reordered successfully"})
}

func (h *SceneHandler) DeleteScene(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionDelete) == nil {
		return
	}

	sceneID := c.Param("scene_id")
	if err := h.Scenes.Delete(c.Request.Context(), sceneID); err != nil {
		respondServiceError(c, err)
		return
	}

	auditLog(h.DB, projectID, userID, "scene_delete", gin.H{"scene_id": sceneID})
	h.WS.BroadcastUpdate(projectID, "scene_deleted", userID)

	c.JSON(http.StatusOK, gin.H{"message": "Scene deleted successfully"})
}
