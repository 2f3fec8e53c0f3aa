package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/slateboard/slateboard-api/models"
	"github.com/slateboard/slateboard-api/utils"
)

type ProjectService struct {
	db *sql.DB
}

func NewProjectService(db *sql.DB) *ProjectService {
	return &ProjectService{db: db}
}

var ownerPermissions = models.Permissions{Read: true, Write: true, Delete: true, Admin: true}

func rolePermissions(role string) models.Permissions {
	switch role {
	case "owner", "producer":
		return ownerPermissions
	case "coordinator":
		return models.Permissions{Read: true, Write: true, Delete: true}
	default: // crew
		return models.Permissions{Read: true, Write: true}
	}
}

// Create inserts the project and its owner membership in one transaction.
func (s *ProjectService) Create(ctx context.Context, req models.CreateProjectRequest, ownerID string) (*models.Project, error) {
	project := &models.Project{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Status:      "development",
		OwnerID:     ownerID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	perms, err := json.Marshal(ownerPermissions)
	if err != nil {
		return nil, err
	}

	err = utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO projects (id, title, description, status, owner_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		if _, err := tx.ExecContext(ctx, query, project.ID, project.Title, project.Description, project.Status, project.OwnerID, project.CreatedAt, project.UpdatedAt); err != nil {
			return err
		}

		memberQuery := `
			INSERT INTO project_members (id, project_id, user_id, role, permissions, joined_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.ExecContext(ctx, memberQuery, uuid.New().String(), project.ID, ownerID, "owner", perms, time.Now()); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return project, nil
}

// GetByID loads a project with its member list; returns sql.ErrNoRows
// when the caller is not a member.
func (s *ProjectService) GetByID(ctx context.Context, id, userID string) (*models.Project, error) {
	query := `
		SELECT p.id, p.title, p.description, p.status, p.owner_id, p.created_at, p.updated_at,
		       CASE WHEN p.owner_id = $2 THEN true ELSE false END as is_owner,
		       COALESCE(u.name, '') as owner_name
		FROM projects p
		LEFT JOIN users u ON p.owner_id = u.id
		INNER JOIN project_members pm ON p.id = pm.project_id
		WHERE p.id = $1 AND pm.user_id = $2
	`

	var project models.Project
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&project.ID,
		&project.Title,
		&project.Description,
		&project.Status,
		&project.OwnerID,
		&project.CreatedAt,
		&project.UpdatedAt,
		&project.IsOwner,
		&project.OwnerName,
	)

	if err != nil {
		return nil, err
	}

	members, err := s.GetMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Members = members

	return &project, nil
}

// GetUserProjects gets all projects the user belongs to.
func (s *ProjectService) GetUserProjects(ctx context.Context, userID string) ([]models.Project, error) {
	query := `
		SELECT p.id, p.title, p.description, p.status, p.owner_id, p.created_at, p.updated_at,
		       CASE WHEN p.owner_id = $1 THEN true ELSE false END as is_owner
		FROM projects p
		INNER JOIN project_members pm ON p.id = pm.project_id
		WHERE pm.user_id = $1
		ORDER BY p.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		err := rows.Scan(
			&project.ID,
			&project.Title,
			&project.Description,
			&project.Status,
			&project.OwnerID,
			&project.CreatedAt,
			&project.UpdatedAt,
			&project.IsOwner,
		)
		if err != nil {
			return nil, err
		}

		members, _ := s.GetMembers(ctx, project.ID)
		project.Members = members

		projects = append(projects, project)
	}

	return projects, rows.Err()
}

// Update updates project metadata.
func (s *ProjectService) Update(ctx context.Context, id string, req models.UpdateProjectRequest) error {
	query := `
		UPDATE projects
		SET title = $1, description = $2,
		    status = COALESCE(NULLIF($3, ''), status),
		    updated_at = $4
		WHERE id = $5
	`
	_, err := s.db.ExecContext(ctx, query, req.Title, req.Description, req.Status, time.Now(), id)
	return err
}

// Delete removes the project, its memberships, invitations and every
// child document.
func (s *ProjectService) Delete(ctx context.Context, projectID string) error {
	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM project_members WHERE project_id = $1", projectID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM invitations WHERE project_id = $1", projectID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE data->>'projectId' = $1", projectID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM projects WHERE id = $1", projectID); err != nil {
			return err
		}
		return nil
	})
}

// GetMembers gets all members of a project with their permission flags.
func (s *ProjectService) GetMembers(ctx context.Context, projectID string) ([]models.ProjectMember, error) {
	query := `
		SELECT pm.id, pm.user_id, pm.role, pm.permissions, pm.joined_at, u.name, u.email, COALESCE(u.avatar, '')
		FROM project_members pm
		JOIN users u ON pm.user_id = u.id
		WHERE pm.project_id = $1
		ORDER BY pm.joined_at
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.ProjectMember
	for rows.Next() {
		var member models.ProjectMember
		var permsRaw []byte
		var avatar string

		err := rows.Scan(
			&member.ID,
			&member.UserID,
			&member.Role,
			&permsRaw,
			&member.JoinedAt,
			&member.UserName,
			&member.UserEmail,
			&avatar,
		)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(permsRaw, &member.Permissions); err != nil {
			member.Permissions = rolePermissions(member.Role)
		}
		member.ProjectID = projectID
		member.User = &models.User{
			ID:     member.UserID,
			Name:   member.UserName,
			Email:  member.UserEmail,
			Avatar: avatar,
		}

		members = append(members, member)
	}

	return members, rows.Err()
}

// RemoveMember drops a membership row. The owner cannot be removed.
func (s *ProjectService) RemoveMember(ctx context.Context, projectID, memberID string) error {
	query := `
		DELETE FROM project_members
		WHERE id = $1 AND project_id = $2
		  AND user_id != (SELECT owner_id FROM projects WHERE id = $2)
	`
	result, err := s.db.ExecContext(ctx, query, memberID, projectID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateInvitation creates a pending invitation valid for seven days.
func (s *ProjectService) CreateInvitation(ctx context.Context, projectID, email, role, invitedBy string) (*models.Invitation, error) {
	if role == "" {
		role = "crew"
	}
	invitation := &models.Invitation{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Email:     email,
		Role:      role,
		Token:     uuid.New().String(),
		Status:    "pending",
		InvitedBy: invitedBy,
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO invitations (id, project_id, email, role, token, status, invited_by, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		invitation.ID, invitation.ProjectID, invitation.Email, invitation.Role,
		invitation.Token, invitation.Status, invitation.InvitedBy,
		invitation.ExpiresAt, invitation.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return invitation, nil
}

// GetPendingInvitation gets a live pending invitation, or nil.
func (s *ProjectService) GetPendingInvitation(ctx context.Context, projectID, email string) (*models.Invitation, error) {
	query := `
		SELECT id, project_id, email, role, token, expires_at, created_at
		FROM invitations
		WHERE project_id = $1 AND email = $2 AND status = 'pending' AND expires_at > NOW()
		LIMIT 1
	`

	var invitation models.Invitation
	err := s.db.QueryRowContext(ctx, query, projectID, email).Scan(
		&invitation.ID,
		&invitation.ProjectID,
		&invitation.Email,
		&invitation.Role,
		&invitation.Token,
		&invitation.ExpiresAt,
		&invitation.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &invitation, nil
}

// DeleteInvitation deletes an invitation.
func (s *ProjectService) DeleteInvitation(ctx context.Context, invitationID string) error {
	query := `DELETE FROM invitations WHERE id = $1`
	_, err := s.db.ExecContext(ctx, query, invitationID)
	return err
}

// IsMemberByEmail checks if an email already belongs to a project member.
func (s *ProjectService) IsMemberByEmail(ctx context.Context, projectID, email string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM project_members pm
			JOIN users u ON pm.user_id = u.id
			WHERE pm.project_id = $1 AND u.email = $2
		)
	`
	var exists bool
	err := s.db.QueryRowContext(ctx, query, projectID, email).Scan(&exists)
	return exists, err
}

// AcceptInvitation adds the user as a member with the invited role's
// permission flags and retires every pending invite for that email.
func (s *ProjectService) AcceptInvitation(ctx context.Context, token, userID string) (string, error) {
	var invitation models.Invitation
	query := `
		SELECT id, project_id, email, role, expires_at
		FROM invitations
		WHERE token = $1 AND status = 'pending'
	`

	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&invitation.ID,
		&invitation.ProjectID,
		&invitation.Email,
		&invitation.Role,
		&invitation.ExpiresAt,
	)

	if err != nil {
		return "", err
	}

	if time.Now().After(invitation.ExpiresAt) {
		return "", sql.ErrNoRows
	}

	perms, err := json.Marshal(rolePermissions(invitation.Role))
	if err != nil {
		return "", err
	}

	err = utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		memberQuery := `
			INSERT INTO project_members (id, project_id, user_id, role, permissions, joined_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.ExecContext(ctx, memberQuery, uuid.New().String(), invitation.ProjectID, userID, invitation.Role, perms, time.Now()); err != nil {
			return err
		}

		updateQuery := `
			UPDATE invitations
			SET status = 'accepted', updated_at = $1
			WHERE id = $2
		`
		if _, err := tx.ExecContext(ctx, updateQuery, time.Now(), invitation.ID); err != nil {
			return err
		}

		cleanupQuery := `DELETE FROM invitations WHERE project_id = $1 AND email = $2 AND status = 'pending'`
		if _, err := tx.ExecContext(ctx, cleanupQuery, invitation.ProjectID, invitation.Email); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return "", err
	}

	return invitation.ProjectID, nil
}
