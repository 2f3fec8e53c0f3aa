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

type StoryboardHandler struct {
	DB          *sql.DB
	Projects    *services.ProjectService
	Storyboards *services.StoryboardService
	WS          *WSHandler
}

// ListFrames supports an optional ?scene= filter.
func (h *StoryboardHandler) ListFrames(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionRead) == nil {
		return
	}

	frames, err := h.Storyboards.List(c.Request.Context(), projectID, c.Query("scene"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, frames)
}

func (h *StoryboardHandler) CreateFrame(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	var req models.CreateStoryboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	frame, err := h.Storyboards.Create(c.Request.Context(), projectID, req, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.WS.BroadcastUpdate(projectID, "storyboard_created", userID)

	c.JSON(http.StatusCreated, frame)
}

func (h *StoryboardHandler) UpdateFrame(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	var req models.UpdateStoryboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	frame, err := h.Storyboards.Update(c.Request.Context(), c.Param("frame_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.WS.BroadcastUpdate(projectID, "storyboard_updated", userID)

	c.JSON(http.StatusOK, frame)
}

// GenerateFrame renders the frame's description through the image
// service and attaches the resulting URL. Slow; the request waits.
func (h *StoryboardHandler) GenerateFrame(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	frameID := c.Param("frame_id")
	frame, err := h.Storyboards.Generate(c.Request.Context(), frameID)
	if err != nil {
		utils.SafeWarn("image generation for frame %s failed: %v", utils.MaskID(frameID), err)
		respondServiceError(c, err)
		return
	}

	auditLog(h.DB, projectID, userID, "storyboard_generate", gin.H{"frame_id": frameID})
	h.WS.BroadcastUpdate(projectID, "storyboard_updated", userID)

	c.JSON(http.StatusOK, frame)
}

func (h *StoryboardHandler) DeleteFrame(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionDelete) == nil {
		return
	}

	if err := h.Storyboards.Delete(c.Request.Context(), c.Param("frame_id")); err != nil {
		respondServiceError(c, err)
		return
	}

	h.WS.BroadcastUpdate(projectID, "storyboard_deleted", userID)

	c.JSON(http.StatusOK, gin.H{"message": "Frame deleted successfully"})
}
