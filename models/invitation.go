package models

import (
	"time"
)

type Invitation struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Email     string    `json:"email" binding:"required,email"`
	Role      string    `json:"role"`
	InvitedBy string    `json:"invited_by"`
	Token     string    `json:"token"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type InvitationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=producer coordinator crew"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token" binding:"required"`
}

type InvitationResponse struct {
	Invitation  Invitation `json:"invitation"`
	Project     Project    `json:"project"`
	InviterName string     `json:"inviter_name"`
}
