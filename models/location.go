package models

import "time"

// Location is a scouting/shooting location document. Lat/Lng are filled by
// the geocoding endpoint, not by the client.
type Location struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"projectId"`
	Name            string    `json:"name"`
	Address         string    `json:"address"`
	Lat             float64   `json:"lat,omitempty"`
	Lng             float64   `json:"lng,omitempty"`
	ContactName     string    `json:"contactName,omitempty"`
	ContactPhone    string    `json:"contactPhone,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	PermitsRequired bool      `json:"permitsRequired"`
	CreatedBy       string    `json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type CreateLocationRequest struct {
	Name            string `json:"name" binding:"required"`
	Address         string `json:"address" binding:"required"`
	ContactName     string `json:"contactName"`
	ContactPhone    string `json:"contactPhone"`
	Notes           string `json:"notes"`
	PermitsRequired bool   `json:"permitsRequired"`
}

type UpdateLocationRequest struct {
	Name            *string `json:"name"`
	Address         *string `json:"address"`
	ContactName     *string `json:"contactName"`
	ContactPhone    *string `json:"contactPhone"`
	Notes           *string `json:"notes"`
	PermitsRequired *bool   `json:"permitsRequired"`
}
