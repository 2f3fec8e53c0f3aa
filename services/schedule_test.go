package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slateboard/slateboard-api/models"
	"github.com/slateboard/slateboard-api/store"
)

func newScheduleFixture(t *testing.T) (*ScheduleService, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return NewScheduleService(st), st
}

func mustCreateEntry(t *testing.T, s *ScheduleService, projectID, date, start, end string) *models.ScheduleEntry {
	t.Helper()
	entry, err := s.Create(context.Background(), projectID, models.CreateScheduleRequest{
		Name:      "Shoot block",
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}, "user-1")
	require.NoError(t, err)
	return entry
}

func TestParseClock(t *testing.T) {
	minutes, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9*60+30, minutes)

	_, err = ParseClock("25:00")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseClock("0900")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateRejectsInvertedWindow(t *testing.T) {
	s, _ := newScheduleFixture(t)

	_, err := s.Create(context.Background(), "proj-1", models.CreateScheduleRequest{
		Date:      "2025-01-10",
		StartTime: "14:00",
		EndTime:   "12:00",
	}, "user-1")
	assert.ErrorIs(t, err, ErrValidation)

	// Zero-length windows are rejected too.
	_, err = s.Create(context.Background(), "proj-1", models.CreateScheduleRequest{
		Date:      "2025-01-10",
		StartTime: "12:00",
		EndTime:   "12:00",
	}, "user-1")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFindConflictsOverlapRules(t *testing.T) {
	s, _ := newScheduleFixture(t)
	mustCreateEntry(t, s, "proj-1", "2025-01-10", "08:00", "12:00")

	cases := []struct {
		name     string
		start    string
		end      string
		conflict bool
	}{
		{"full overlap", "08:00", "12:00", true},
		{"partial tail", "11:00", "13:00", true},
		{"contained", "09:00", "10:00", true},
		{"containing", "07:00", "13:00", true},
		{"touching end", "12:00", "14:00", false},
		{"touching start", "06:00", "08:00", false},
		{"disjoint", "13:00", "15:00", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conflicts, err := s.FindConflicts(context.Background(), "proj-1", "2025-01-10", tc.start, tc.end, "")
			require.NoError(t, err)
			if tc.conflict {
				assert.Len(t, conflicts, 1)
			} else {
				assert.Empty(t, conflicts)
			}
		})
	}
}

func TestFindConflictsScopedToProjectAndDate(t *testing.T) {
	s, _ := newScheduleFixture(t)
	mustCreateEntry(t, s, "proj-1", "2025-01-10", "08:00", "12:00")

	conflicts, err := s.FindConflicts(context.Background(), "proj-1", "2025-01-11", "08:00", "12:00", "")
	require.NoError(t, err)
	assert.Empty(t, conflicts, "different date must not conflict")

	conflicts, err = s.FindConflicts(context.Background(), "proj-2", "2025-01-10", "08:00", "12:00", "")
	require.NoError(t, err)
	assert.Empty(t, conflicts, "different project must not conflict")
}

func TestCancelledEntriesAreInvisible(t *testing.T) {
	s, _ := newScheduleFixture(t)
	entry := mustCreateEntry(t, s, "proj-1", "2025-01-10", "08:00", "12:00")

	cancelled := models.ScheduleCancelled
	_, err := s.Update(context.Background(), entry.ID, models.UpdateScheduleRequest{Status: &cancelled}, "user-1")
	require.NoError(t, err)

	conflicts, err := s.FindConflicts(context.Background(), "proj-1", "2025-01-10", "08:00", "12:00", "")
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	// The slot is reusable after cancellation.
	mustCreateEntry(t, s, "proj-1", "2025-01-10", "08:00", "12:00")
}

func TestCreateRejectsOverlapWithConflictError(t *testing.T) {
	s, _ := newScheduleFixture(t)
	existing := mustCreateEntry(t, s, "proj-1", "2025-01-10", "08:00", "12:00")

	_, err := s.Create(context.Background(), "proj-1", models.CreateScheduleRequest{
		Date:      "2025-01-10",
		StartTime: "11:00",
		EndTime:   "13:00",
	}, "user-2")

	var conflictErr *ScheduleConflictError
	require.True(t, errors.As(err, &conflictErr))
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, existing.ID, conflictErr.Conflicts[0].ID)
}

func TestUpdateExcludesOwnWindow(t *testing.T) {
	s, _ := newScheduleFixture(t)
	entry := mustCreateEntry(t, s, "proj-1", "2025-01-10", "08:00", "12:00")

	// Shifting inside its own old window must not self-conflict.
	start, end := "09:00", "12:00"
	updated, err := s.Update(context.Background(), entry.ID, models.UpdateScheduleRequest{
		StartTime: &start,
		EndTime:   &end,
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "09:00", updated.StartTime)
}

func TestUpdateStillConflictsWithOthers(t *testing.T) {
	s, _ := newScheduleFixture(t)
	mustCreateEntry(t, s, "proj-1", "2025-01-10", "08:00", "10:00")
	entry := mustCreateEntry(t, s, "proj-1", "2025-01-10", "10:00", "12:00")

	start := "09:30"
	_, err := s.Update(context.Background(), entry.ID, models.UpdateScheduleRequest{StartTime: &start}, "user-1")

	var conflictErr *ScheduleConflictError
	assert.True(t, errors.As(err, &conflictErr))
}

func TestUpdateToCancelledSkipsConflictCheck(t *testing.T) {
	s, _ := newScheduleFixture(t)
	mustCreateEntry(t, s, "proj-1", "2025-01-10", "08:00", "10:00")
	entry := mustCreateEntry(t, s, "proj-1", "2025-01-10", "10:00", "12:00")

	// Move on top of the first entry while cancelling; cancellation
	// always goes through.
	start, cancelled := "08:00", models.ScheduleCancelled
	updated, err := s.Update(context.Background(), entry.ID, models.UpdateScheduleRequest{
		StartTime: &start,
		Status:    &cancelled,
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleCancelled, updated.Status)
}

func TestCompletingEntryCascadesToScenes(t *testing.T) {
	s, st := newScheduleFixture(t)
	scenes := NewSceneService(st)

	scene, err := scenes.Create(context.Background(), "proj-1", models.CreateSceneRequest{
		Title: "Opening",
	}, "user-1")
	require.NoError(t, err)

	entry, err := s.Create(context.Background(), "proj-1", models.CreateScheduleRequest{
		Date:      "2025-01-10",
		StartTime: "08:00",
		EndTime:   "12:00",
		SceneIDs:  []string{scene.ID},
	}, "user-1")
	require.NoError(t, err)

	completed := models.ScheduleCompleted
	_, err = s.Update(context.Background(), entry.ID, models.UpdateScheduleRequest{Status: &completed}, "user-1")
	require.NoError(t, err)

	got, err := scenes.Get(context.Background(), scene.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SceneCompleted, got.Status)
}

func TestGetAndDeleteNotFound(t *testing.T) {
	s, _ := newScheduleFixture(t)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByDate(t *testing.T) {
	s, _ := newScheduleFixture(t)
	mustCreateEntry(t, s, "proj-1", "2025-01-10", "08:00", "10:00")
	mustCreateEntry(t, s, "proj-1", "2025-01-10", "10:00", "12:00")
	mustCreateEntry(t, s, "proj-1", "2025-01-11", "08:00", "10:00")

	all, err := s.List(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	day, err := s.ListByDate(context.Background(), "proj-1", "2025-01-10")
	require.NoError(t, err)
	assert.Len(t, day, 2)
}
