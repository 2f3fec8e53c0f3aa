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

type InvitationHandler struct {
	DB       *sql.DB
	Projects *services.ProjectService
	Email    *services.EmailService
}

// InviteMember creates a pending invitation and emails the join link.
func (h *InvitationHandler) InviteMember(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	project := requireProject(c, h.Projects, projectID, userID, models.PermissionAdmin)
	if project == nil {
		return
	}

	var req models.InvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alreadyMember, err := h.Projects.IsMemberByEmail(c.Request.Context(), projectID, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if alreadyMember {
		c.JSON(http.StatusConflict, gin.H{"error": "User is already a member"})
		return
	}

	pending, err := h.Projects.GetPendingInvitation(c.Request.Context(), projectID, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if pending != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Invitation already sent"})
		return
	}

	invitation, err := h.Projects.CreateInvitation(c.Request.Context(), projectID, req.Email, req.Role, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invitation"})
		return
	}

	auditLog(h.DB, projectID, userID, "member_invite", gin.H{"email": req.Email, "role": invitation.Role})

	var inviterName string
	if err := h.DB.QueryRow(`SELECT name FROM users WHERE id = $1`, userID).Scan(&inviterName); err != nil {
		inviterName = "A collaborator"
	}

	if err := h.Email.SendInvitation(req.Email, inviterName, project.Title, invitation.Token); err != nil {
		utils.SafeWarn("invitation email to %s failed: %v", utils.MaskEmail(req.Email), err)
		c.JSON(http.StatusCreated, gin.H{
			"id":      invitation.ID,
			"token":   invitation.Token,
			"message": "Invitation created but email failed to send",
			"warning": "Please share the invitation link manually",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      invitation.ID,
		"message": "Invitation sent successfully",
	})
}

// GetInvitations lists a project's invitations, newest first.
func (h *InvitationHandler) GetInvitations(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionRead) == nil {
		return
	}

	rows, err := h.DB.Query(`
		SELECT i.id, i.email, i.role, i.status, i.expires_at, i.created_at,
		       u.name AS inviter_name
		FROM invitations i
		LEFT JOIN users u ON i.invited_by = u.id
		WHERE i.project_id = $1
		ORDER BY i.created_at DESC
	`, projectID)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invitations"})
		return
	}
	defer rows.Close()

	invitations := []gin.H{}
	for rows.Next() {
		var inv models.Invitation
		var inviterName sql.NullString
		if err := rows.Scan(&inv.ID, &inv.Email, &inv.Role, &inv.Status, &inv.ExpiresAt, &inv.CreatedAt, &inviterName); err != nil {
			continue
		}

		entry := gin.H{
			"id":         inv.ID,
			"email":      inv.Email,
			"role":       inv.Role,
			"status":     inv.Status,
			"expires_at": inv.ExpiresAt,
			"created_at": inv.CreatedAt,
		}
		if inviterName.Valid {
			entry["inviter_name"] = inviterName.String
		}

		invitations = append(invitations, entry)
	}

	c.JSON(http.StatusOK, invitations)
}

// AcceptInvitation redeems a token and joins the project.
func (h *InvitationHandler) AcceptInvitation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	projectID, err := h.Projects.AcceptInvitation(c.Request.Context(), req.Token, userID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found or expired"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept invitation"})
		return
	}

	auditLog(h.DB, projectID, userID, "member_join", nil)

	c.JSON(http.StatusOK, gin.H{
		"message":    "Invitation accepted successfully",
		"project_id": projectID,
	})
}

// CancelInvitation drops a pending invitation.
func (h *InvitationHandler) CancelInvitation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")
	invitationID := c.Param("invitation_id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionAdmin) == nil {
		return
	}

	result, err := h.DB.Exec(`
		DELETE FROM invitations
		WHERE id = $1 AND project_id = $2 AND status = 'pending'
	`, invitationID, projectID)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel invitation"})
		return
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found or already processed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation cancelled successfully"})
}

// GetMembers lists the project's members with their permission flags.
func (h *InvitationHandler) GetMembers(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionRead) == nil {
		return
	}

	members, err := h.Projects.GetMembers(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	c.JSON(http.StatusOK, members)
}

// RemoveMember drops a member from the project. The owner cannot be
// removed.
func (h *InvitationHandler) RemoveMember(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projectID := c.Param("id")
	memberID := c.Param("member_id")

	if requireProject(c, h.Projects, projectID, userID, models.PermissionAdmin) == nil {
		return
	}

	err := h.Projects.RemoveMember(c.Request.Context(), projectID, memberID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	auditLog(h.DB, projectID, userID, "member_remove", gin.H{"member_id": memberID})

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}
