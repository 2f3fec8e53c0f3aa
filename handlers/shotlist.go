package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slateboard/slateboard-api/middleware"
	"github.com/slateboard/slateboard-api/models"
	"github.com/slateboard/slateboard-api/services"
)

type ShotListHandler struct {
	DB       *sql.DB
	Projects *services.ProjectService
	Lists    *services.ShotListService
	WS       *WSHandler
}

func (h *ShotListHandler) ListShotLists(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionRead) == nil {
		return
	}

	lists, err := h.Lists.List(c.Request.Context(), projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lists)
}

func (h *ShotListHandler) GetShotList(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionRead) == nil {
		return
	}

	list, err := h.Lists.Get(c.Request.Context(), c.Param("list_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *ShotListHandler) CreateShotList(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	var req models.CreateShotListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.Lists.Create(c.Request.Context(), projectID, req, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.WS.BroadcastUpdate(projectID, "shotlist_created", userID)

	c.JSON(http.StatusCreated, list)
}

func (h *ShotListHandler) UpdateShotList(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	var req models.UpdateShotListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.Lists.Update(c.Request.Context(), c.Param("list_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.WS.BroadcastUpdate(projectID, "shotlist_updated", userID)

	c.JSON(http.StatusOK, list)
}

// ToggleShot flips the completed flag of a single shot.
func (h *ShotListHandler) ToggleShot(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	list, err := h.Lists.ToggleShot(c.Request.Context(), c.Param("list_id"), c.Param("shot_number"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.WS.BroadcastUpdate(projectID, "shotlist_updated", userID)

	c.JSON(http.StatusOK, list)
}

func (h *ShotListHandler) DeleteShotList(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionDelete) == nil {
		return
	}

	if err := h.Lists.Delete(c.Request.Context(), c.Param("list_id")); err != nil {
		respondServiceError(c, err)
		return
	}

	h.WS.BroadcastUpdate(projectID, "shotlist_deleted", userID)

	c.JSON(http.StatusOK, gin.H{"message": "Shot list deleted successfully"})
}
