package models

import "time"

const (
	ScenePlanned    = "planned"
	SceneInProgress = "in_progress"
	SceneCompleted  = "completed"
)

// Scene is a script scene document. Completing a schedule entry cascades
// a completed status onto the scenes it references.
type Scene struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	Number      string    `json:"number"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	TimeOfDay   string    `json:"timeOfDay,omitempty"` // day | night | dawn | dusk
	Interior    bool      `json:"interior"`
	Status      string    `json:"status"`
	PageCount   float64   `json:"pageCount"`
	CastIDs     []string  `json:"castIds"`
	Order       int       `json:"order"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateSceneRequest struct {
	Number      string   `json:"number" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	TimeOfDay   string   `json:"timeOfDay" binding:"omitempty,oneof=day night dawn dusk"`
	Interior    bool     `json:"interior"`
	PageCount   float64  `json:"pageCount"`
	CastIDs     []string `json:"castIds"`
}

type UpdateSceneRequest struct {
	Number      *string  `json:"number"`
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Location    *string  `json:"location"`
	TimeOfDay   *string  `json:"timeOfDay" binding:"omitempty,oneof=day night dawn dusk"`
	Interior    *bool    `json:"interior"`
	Status      *string  `json:"status" binding:"omitempty,oneof=planned in_progress completed"`
	PageCount   *float64 `json:"pageCount"`
	CastIDs     []string `json:"castIds"`
}

type ReorderScenesRequest struct {
	SceneIDs []string `json:"sceneIds" binding:"required,min=1"`
}
