package models

import "time"

// StoryboardFrame is one drawn or generated frame attached to a scene.
type StoryboardFrame struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"projectId"`
	SceneID        string    `json:"sceneId"`
	FrameNumber    int       `json:"frameNumber"`
	Description    string    `json:"description"`
	ShotType       string    `json:"shotType,omitempty"`       // wide | medium | close_up | extreme_close_up
	CameraMovement string    `json:"cameraMovement,omitempty"` // static | pan | tilt | dolly | handheld
	ImageURL       string    `json:"imageUrl,omitempty"`
	Status         string    `json:"status"` // sketch | generated | final
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type CreateStoryboardRequest struct {
	SceneID        string `json:"sceneId" binding:"required"`
	FrameNumber    int    `json:"frameNumber" binding:"required,gt=0"`
	Description    string `json:"description" binding:"required"`
	ShotType       string `json:"shotType" binding:"omitempty,oneof=wide medium close_up extreme_close_up"`
	CameraMovement string `json:"cameraMovement" binding:"omitempty,oneof=static pan tilt dolly handheld"`
	ImageURL       string `json:"imageUrl"`
}

type UpdateStoryboardRequest struct {
	FrameNumber    *int    `json:"frameNumber" binding:"omitempty,gt=0"`
	Description    *string `json:"description"`
	ShotType       *string `json:"shotType" binding:"omitempty,oneof=wide medium close_up extreme_close_up"`
	CameraMovement *string `json:"cameraMovement" binding:"omitempty,oneof=static pan tilt dolly handheld"`
	ImageURL       *string `json:"imageUrl"`
	Status         *string `json:"status" binding:"omitempty,oneof=sketch generated final"`
}
