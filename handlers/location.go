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

type LocationHandler struct {
	DB        *sql.DB
	Projects  *services.ProjectService
	Locations *services.LocationService
	WS        *WSHandler
}

func (h *LocationHandler) ListLocations(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionRead) == nil {
		return
	}

	locations, err := h.Locations.List(c.Request.Context(), projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, locations)
}

func (h *LocationHandler) GetLocation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionRead) == nil {
		return
	}

	location, err := h.Locations.Get(c.Request.Context(), c.Param("location_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, location)
}

func (h *LocationHandler) CreateLocation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	var req models.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	location, err := h.Locations.Create(c.Request.Context(), projectID, req, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.WS.BroadcastUpdate(projectID, "location_created", userID)

	c.JSON(http.StatusCreated, location)
}

func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	var req models.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	location, err := h.Locations.Update(c.Request.Context(), c.Param("location_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.WS.BroadcastUpdate(projectID, "location_updated", userID)

	c.JSON(http.StatusOK, location)
}

// GeocodeLocation resolves the stored address to coordinates.
func (h *LocationHandler) GeocodeLocation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	locationID := c.Param("location_id")
	location, err := h.Locations.Resolve(c.Request.Context(), locationID)
	if err != nil {
		utils.SafeWarn("geocode for location %s failed: %v", utils.MaskID(locationID), err)
		respondServiceError(c, err)
		return
	}

	h.WS.BroadcastUpdate(projectID, "location_updated", userID)

	c.JSON(http.StatusOK, location)
}

func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionDelete) == nil {
		return
	}

	if err := h.Locations.Delete(c.Request.Context(), c.Param("location_id")); err != nil {
		respondServiceError(c, err)
		return
	}

	h.WS.BroadcastUpdate(projectID, "location_deleted", userID)

	c.JSON(http.StatusOK, gin.H{"message": "Location deleted successfully"})
}
