package models

import "time"

// Script holds a draft's full text. Revision is a plain counter bumped on
// every content save; unlike budgets there is no snapshot history.
type Script struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Revision  int       `json:"revision"`
	Notes     string    `json:"notes,omitempty"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateScriptRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
	Notes   string `json:"notes"`
}

type UpdateScriptRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Notes   *string `json:"notes"`
}
