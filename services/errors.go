package services

import (
	"errors"
	"fmt"

	"github.com/slateboard/slateboard-api/models"
)

// Sentinel errors mapped to HTTP buckets by the handlers.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// ScheduleConflictError carries the colliding entries so the caller can
// report exactly which bookings overlap instead of a bare failure.
type ScheduleConflictError struct {
	Conflicts []models.ScheduleEntry
}

func (e *ScheduleConflictError) Error() string {
	return fmt.Sprintf("schedule conflicts with %d existing entries", len(e.Conflicts))
}
