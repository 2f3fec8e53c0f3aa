package models

import "time"

// Permission levels checked against a project's membership before any
// operation on the project's child resources.
const (
	PermissionRead   = "read"
	PermissionWrite  = "write"
	PermissionDelete = "delete"
	PermissionAdmin  = "admin"
)

type Permissions struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	Delete bool `json:"delete"`
	Admin  bool `json:"admin"`
}

type Project struct {
	ID          string          `json:"id"`
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Status      string          `json:"status"` // development | pre_production | production | wrapped
	OwnerID     string          `json:"owner_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	IsOwner     bool            `json:"is_owner"`
	OwnerName   string          `json:"owner_name"`
	Members     []ProjectMember `json:"members"`
}

type ProjectMember struct {
	ID          string      `json:"id"`
	ProjectID   string      `json:"project_id"`
	UserID      string      `json:"user_id"`
	User        *User       `json:"user,omitempty"`
	Role        string      `json:"role"` // owner | producer | coordinator | crew
	Permissions Permissions `json:"permissions"`
	JoinedAt    time.Time   `json:"joined_at"`
	UserName    string      `json:"user_name"`
	UserEmail   string      `json:"user_email"`
}

// HasPermission reports whether userID may act on the project at the given
// level. The owner always passes. Any member passes a read check; higher
// levels come from the member's permission flags, with admin implying all.
func (p *Project) HasPermission(userID, level string) bool {
	if p.OwnerID == userID {
		return true
	}
	for _, m := range p.Members {
		if m.UserID != userID {
			continue
		}
		if m.Permissions.Admin {
			return true
		}
		switch level {
		case PermissionRead:
			return true
		case PermissionWrite:
			return m.Permissions.Write
		case PermissionDelete:
			return m.Permissions.Delete
		case PermissionAdmin:
			return false
		}
	}
	return false
}

type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"omitempty,oneof=development pre_production production wrapped"`
}
