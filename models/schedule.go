package models

import "time"

// Schedule entry statuses. Cancelled entries are ignored by conflict checks.
const (
	ScheduleDraft     = "draft"
	ScheduleConfirmed = "confirmed"
	ScheduleCompleted = "completed"
	ScheduleCancelled = "cancelled"
)

// ScheduleEntry is a single day's shoot block for a project, stored as a
// document. Date is "YYYY-MM-DD"; StartTime/EndTime are "HH:MM" clock
// strings treated as a half-open interval [start, end).
type ScheduleEntry struct {
	ID        string           `json:"id"`
	ProjectID string           `json:"projectId"`
	Name      string           `json:"name"`
	Date      string           `json:"date"`
	StartTime string           `json:"startTime"`
	EndTime   string           `json:"endTime"`
	Status    string           `json:"status"`
	SceneIDs  []string         `json:"sceneIds"`
	Crew      []CrewAssignment `json:"crew"`
	Notes     string           `json:"notes,omitempty"`
	CreatedBy string           `json:"createdBy"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type CrewAssignment struct {
	MemberID string `json:"memberId"`
	Role     string `json:"role"`
	CallTime string `json:"callTime,omitempty"`
	WrapTime string `json:"wrapTime,omitempty"`
	Status   string `json:"status"` // pending | confirmed | declined
}

type CreateScheduleRequest struct {
	Name      string           `json:"name"`
	Date      string           `json:"date" binding:"required"`
	StartTime string           `json:"startTime" binding:"required"`
	EndTime   string           `json:"endTime" binding:"required"`
	Status    string           `json:"status" binding:"omitempty,oneof=draft confirmed completed cancelled"`
	SceneIDs  []string         `json:"sceneIds"`
	Crew      []CrewAssignment `json:"crew"`
	Notes     string           `json:"notes"`
}

type UpdateScheduleRequest struct {
	Name      *string          `json:"name"`
	Date      *string          `json:"date"`
	StartTime *string          `json:"startTime"`
	EndTime   *string          `json:"endTime"`
	Status    *string          `json:"status" binding:"omitempty,oneof=draft confirmed completed cancelled"`
	SceneIDs  []string         `json:"sceneIds"`
	Crew      []CrewAssignment `json:"crew"`
	Notes     *string          `json:"notes"`
}
