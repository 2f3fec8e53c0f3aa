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

type ProjectHandler struct {
	DB       *sql.DB
	Projects *services.ProjectService
}

// CreateProject makes a new production with the caller as owner.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.Projects.Create(c.Request.Context(), req, userID)
	if err != nil {
		utils.SafeError("create project: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	utils.LogProjectAction("created", project.ID, userID)
	auditLog(h.DB, project.ID, userID, "project_create", gin.H{"title": project.Title})

	c.JSON(http.StatusCreated, project)
}

// ListProjects returns the productions visible to the caller.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	projects, err := h.Projects.GetUserProjects(c.Request.Context(), userID)
	if err != nil {
		utils.SafeError("list projects: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}

	c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	project := requireProject(c, h.Projects, projectID, userID, models.PermissionRead)
	if project == nil {
		return
	}

	members, err := h.Projects.GetMembers(c.Request.Context(), projectID)
	if err == nil {
		project.Members = members
	}

	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionWrite) == nil {
		return
	}

	var req models.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Projects.Update(c.Request.Context(), projectID, req); err != nil {
		utils.SafeError("update project: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	auditLog(h.DB, projectID, userID, "project_update", req)

	c.JSON(http.StatusOK, gin.H{"message": "Project updated successfully"})
}

// DeleteProject removes the production and every document under it.
// Only the owner may delete.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	project := requireProject(c, h.Projects, projectID, userID, models.PermissionRead)
	if project == nil {
		return
	}
	if project.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can delete a project"})
		return
	}

	if err := h.Projects.Delete(c.Request.Context(), projectID); err != nil {
		utils.SafeError("delete project: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	utils.LogProjectAction("deleted", projectID, userID)

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}
