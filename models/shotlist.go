package models

import "time"

// ShotList groups the planned shots for one scene.
type ShotList struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	SceneID   string    `json:"sceneId"`
	Shots     []Shot    `json:"shots"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Shot struct {
	Number      string `json:"number"`
	ShotSize    string `json:"shotSize,omitempty"` // WS | MS | CU | ECU | OTS
	Angle       string `json:"angle,omitempty"`
	Movement    string `json:"movement,omitempty"`
	Lens        string `json:"lens,omitempty"`
	FrameRate   string `json:"frameRate,omitempty"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type CreateShotListRequest struct {
	SceneID string `json:"sceneId" binding:"required"`
	Shots   []Shot `json:"shots"`
}

type UpdateShotListRequest struct {
	Shots []Shot `json:"shots" binding:"required"`
}

type ToggleShotRequest struct {
	Number string `json:"number" binding:"required"`
}
