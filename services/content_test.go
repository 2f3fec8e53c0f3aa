package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slateboard/slateboard-api/models"
	"github.com/slateboard/slateboard-api/store"
)

func TestSceneOrderAndReorder(t *testing.T) {
	st := store.NewMemoryStore()
	s := NewSceneService(st)

	var ids []string
	for _, title := range []string{"Opening", "Chase", "Finale"} {
		scene, err := s.Create(context.Background(), "proj-1", models.CreateSceneRequest{
			Number: title, Title: title,
		}, "user-1")
		require.NoError(t, err)
		ids = append(ids, scene.ID)
	}

	scenes, err := s.List(context.Background(), "proj-1")
	require.NoError(t, err)
	require.Len(t, scenes, 3)
	for i, scene := range scenes {
		assert.Equal(t, i, scene.Order, "creation order is the default order")
		assert.Equal(t, models.ScenePlanned, scene.Status)
	}

	// Reverse the order.
	require.NoError(t, s.Reorder(context.Background(), "proj-1", []string{ids[2], ids[1], ids[0]}))

	last, err := s.Get(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, 2, last.Order)

	err = s.Reorder(context.Background(), "proj-1", []string{"missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScriptRevisionBumpsOnContentChange(t *testing.T) {
	s := NewScriptService(store.NewMemoryStore())

	script, err := s.Create(context.Background(), "proj-1", models.CreateScriptRequest{
		Title:   "Draft One",
		Content: "FADE IN.",
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, script.Revision)

	// Title-only edits do not bump the revision.
	title := "Draft One (notes pass)"
	updated, err := s.Update(context.Background(), script.ID, models.UpdateScriptRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Revision)

	// Neither does saving identical content.
	same := "FADE IN."
	updated, err = s.Update(context.Background(), script.ID, models.UpdateScriptRequest{Content: &same})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Revision)

	changed := "FADE IN.\n\nEXT. DESERT - DAY"
	updated, err = s.Update(context.Background(), script.ID, models.UpdateScriptRequest{Content: &changed})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Revision)
}

func TestToggleShot(t *testing.T) {
	s := NewShotListService(store.NewMemoryStore())

	list, err := s.Create(context.Background(), "proj-1", models.CreateShotListRequest{
		SceneID: "scene-1",
		Shots: []models.Shot{
			{Number: "1A", Description: "Establishing"},
			{Number: "1B", Description: "Close up"},
		},
	}, "user-1")
	require.NoError(t, err)

	toggled, err := s.ToggleShot(context.Background(), list.ID, "1A")
	require.NoError(t, err)
	assert.True(t, toggled.Shots[0].Completed)
	assert.False(t, toggled.Shots[1].Completed)

	toggled, err = s.ToggleShot(context.Background(), list.ID, "1A")
	require.NoError(t, err)
	assert.False(t, toggled.Shots[0].Completed)

	_, err = s.ToggleShot(context.Background(), list.ID, "9Z")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScheduleCSV(t *testing.T) {
	s := NewExportService("")

	data, err := s.ScheduleCSV([]models.ScheduleEntry{
		{
			Date:      "2025-01-10",
			Name:      "Day 1",
			StartTime: "08:00",
			EndTime:   "12:00",
			Status:    models.ScheduleConfirmed,
			SceneIDs:  []string{"a", "b"},
			Crew:      []models.CrewAssignment{{MemberID: "m1"}},
		},
	})
	require.NoError(t, err)

	want := "date,name,start,end,status,scenes,crew\n" +
		"2025-01-10,Day 1,08:00,12:00,confirmed,2,1\n"
	assert.Equal(t, want, string(data))
}

func TestBudgetPDFRequiresGotenberg(t *testing.T) {
	s := NewExportService("")

	_, err := s.BudgetPDF(context.Background(), &models.Budget{})
	assert.Error(t, err)
}
