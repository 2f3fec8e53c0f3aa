package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/slateboard/slateboard-api/models"
	"github.com/slateboard/slateboard-api/store"
)

// ScheduleService owns shoot-day entries and the conflict check that
// guards their time windows. The check and the following save are two
// separate storage operations; nothing serializes concurrent writers on
// the same (project, date) and both can pass the check. Best effort.
type ScheduleService struct {
	store store.DocumentStore
}

func NewScheduleService(st store.DocumentStore) *ScheduleService {
	return &ScheduleService{store: st}
}

// ParseClock converts an "HH:MM" string to a minute offset from midnight.
func ParseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid time %q, expected HH:MM", ErrValidation, value)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func validateWindow(startTime, endTime string) (int, int, error) {
	start, err := ParseClock(startTime)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseClock(endTime)
	if err != nil {
		return 0, 0, err
	}
	if start >= end {
		return 0, 0, fmt.Errorf("%w: start time must be before end time", ErrValidation)
	}
	return start, end, nil
}

// FindConflicts returns every non-cancelled entry for the project on the
// given date whose window overlaps [startTime, endTime) under the
// half-open rule: existing.start < end AND existing.end > start. Touching
// endpoints do not conflict. excludeID skips an entry being updated
// against its own stored window; pass "" on create.
func (s *ScheduleService) FindConflicts(ctx context.Context, projectID, date, startTime, endTime, excludeID string) ([]models.ScheduleEntry, error) {
	start, end, err := validateWindow(startTime, endTime)
	if err != nil {
		return nil, err
	}

	docs, err := s.store.Find(ctx, store.CollectionSchedules, store.Filter{
		"projectId": projectID,
		"date":      date,
	})
	if err != nil {
		return nil, err
	}

	conflicts := []models.ScheduleEntry{}
	for _, doc := range docs {
		var entry models.ScheduleEntry
		if err := json.Unmarshal(doc.Data, &entry); err != nil {
			return nil, err
		}
		if entry.ID == excludeID || entry.Status == models.ScheduleCancelled {
			continue
		}
		entryStart, entryEnd, err := validateWindow(entry.StartTime, entry.EndTime)
		if err != nil {
			continue // malformed stored entry cannot be compared
		}
		if entryStart < end && entryEnd > start {
			conflicts = append(conflicts, entry)
		}
	}
	return conflicts, nil
}

func (s *ScheduleService) List(ctx context.Context, projectID string) ([]models.ScheduleEntry, error) {
	return s.findEntries(ctx, store.Filter{"projectId": projectID})
}

func (s *ScheduleService) ListByDate(ctx context.Context, projectID, date string) ([]models.ScheduleEntry, error) {
	return s.findEntries(ctx, store.Filter{"projectId": projectID, "date": date})
}

func (s *ScheduleService) findEntries(ctx context.Context, filter store.Filter) ([]models.ScheduleEntry, error) {
	docs, err := s.store.Find(ctx, store.CollectionSchedules, filter)
	if err != nil {
		return nil, err
	}
	entries := []models.ScheduleEntry{}
	for _, doc := range docs {
		var entry models.ScheduleEntry
		if err := json.Unmarshal(doc.Data, &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *ScheduleService) Get(ctx context.Context, entryID string) (*models.ScheduleEntry, error) {
	doc, err := s.store.FindByID(ctx, store.CollectionSchedules, entryID)
	if err == store.ErrNotFound {
		return nil, fmt.Errorf("%w: schedule entry %s", ErrNotFound, entryID)
	}
	if err != nil {
		return nil, err
	}
	var entry models.ScheduleEntry
	if err := json.Unmarshal(doc.Data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Create runs the conflict check first and rejects the write with the
// colliding entries on overlap. There is no force-through path.
func (s *ScheduleService) Create(ctx context.Context, projectID string, req models.CreateScheduleRequest, creatorID string) (*models.ScheduleEntry, error) {
	conflicts, err := s.FindConflicts(ctx, projectID, req.Date, req.StartTime, req.EndTime, "")
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &ScheduleConflictError{Conflicts: conflicts}
	}

	status := req.Status
	if status == "" {
		status = models.ScheduleDraft
	}

	entry := models.ScheduleEntry{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      req.Name,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    status,
		SceneIDs:  req.SceneIDs,
		Crew:      req.Crew,
		Notes:     req.Notes,
		CreatedBy: creatorID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if entry.SceneIDs == nil {
		entry.SceneIDs = []string{}
	}
	if entry.Crew == nil {
		entry.Crew = []models.CrewAssignment{}
	}

	if err := s.saveEntry(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Update re-runs the conflict check against the merged window, excluding
// the entry itself. Moving an entry to completed cascades a completed
// status onto its referenced scenes.
func (s *ScheduleService) Update(ctx context.Context, entryID string, req models.UpdateScheduleRequest, actorID string) (*models.ScheduleEntry, error) {
	entry, err := s.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		entry.Name = *req.Name
	}
	if req.Date != nil {
		entry.Date = *req.Date
	}
	if req.StartTime != nil {
		entry.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		entry.EndTime = *req.EndTime
	}
	if req.SceneIDs != nil {
		entry.SceneIDs = req.SceneIDs
	}
	if req.Crew != nil {
		entry.Crew = req.Crew
	}
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}

	wasCompleted := entry.Status == models.ScheduleCompleted
	if req.Status != nil {
		entry.Status = *req.Status
	}

	if entry.Status != models.ScheduleCancelled {
		conflicts, err := s.FindConflicts(ctx, entry.ProjectID, entry.Date, entry.StartTime, entry.EndTime, entry.ID)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			return nil, &ScheduleConflictError{Conflicts: conflicts}
		}
	}

	entry.UpdatedAt = time.Now()
	if err := s.saveEntry(ctx, *entry); err != nil {
		return nil, err
	}

	if !wasCompleted && entry.Status == models.ScheduleCompleted {
		if err := s.completeScenes(ctx, entry.SceneIDs); err != nil {
			return nil, err
		}
	}
	return entry, nil
}

func (s *ScheduleService) Delete(ctx context.Context, entryID string) error {
	err := s.store.DeleteByID(ctx, store.CollectionSchedules, entryID)
	if err == store.ErrNotFound {
		return fmt.Errorf("%w: schedule entry %s", ErrNotFound, entryID)
	}
	return err
}

func (s *ScheduleService) saveEntry(ctx context.Context, entry models.ScheduleEntry) error {
	doc, err := store.Marshal(entry.ID, entry)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, store.CollectionSchedules, doc)
}

func (s *ScheduleService) completeScenes(ctx context.Context, sceneIDs []string) error {
	for _, sceneID := range sceneIDs {
		_, err := s.store.UpdateMany(ctx, store.CollectionScenes,
			store.Filter{"id": sceneID},
			map[string]interface{}{"status": models.SceneCompleted, "updatedAt": time.Now()},
		)
		if err != nil {
			return err
		}
	}
	return nil
}
