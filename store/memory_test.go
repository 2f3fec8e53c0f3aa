package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Status    string `json:"status"`
	Order     int    `json:"order"`
}

func saveDoc(t *testing.T, s *MemoryStore, collection string, d testDoc) {
	t.Helper()
	doc, err := Marshal(d.ID, d)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), collection, doc))
}

func TestSaveAndFindByID(t *testing.T) {
	s := NewMemoryStore()
	saveDoc(t, s, CollectionScenes, testDoc{ID: "a", ProjectID: "p1", Status: "planned"})

	doc, err := s.FindByID(context.Background(), CollectionScenes, "a")
	require.NoError(t, err)

	var got testDoc
	require.NoError(t, json.Unmarshal(doc.Data, &got))
	assert.Equal(t, "p1", got.ProjectID)

	_, err = s.FindByID(context.Background(), CollectionScenes, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	// Same id in another collection is a different document.
	_, err = s.FindByID(context.Background(), CollectionBudgets, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveReplacesByID(t *testing.T) {
	s := NewMemoryStore()
	saveDoc(t, s, CollectionScenes, testDoc{ID: "a", ProjectID: "p1", Status: "planned"})
	saveDoc(t, s, CollectionScenes, testDoc{ID: "a", ProjectID: "p1", Status: "completed"})

	count, err := s.Count(context.Background(), CollectionScenes, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	doc, err := s.FindByID(context.Background(), CollectionScenes, "a")
	require.NoError(t, err)
	var got testDoc
	require.NoError(t, json.Unmarshal(doc.Data, &got))
	assert.Equal(t, "completed", got.Status)
}

func TestFindFilters(t *testing.T) {
	s := NewMemoryStore()
	saveDoc(t, s, CollectionScenes, testDoc{ID: "a", ProjectID: "p1", Status: "planned"})
	saveDoc(t, s, CollectionScenes, testDoc{ID: "b", ProjectID: "p1", Status: "completed"})
	saveDoc(t, s, CollectionScenes, testDoc{ID: "c", ProjectID: "p2", Status: "planned"})

	docs, err := s.Find(context.Background(), CollectionScenes, Filter{"projectId": "p1"})
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = s.Find(context.Background(), CollectionScenes, Filter{"projectId": "p1", "status": "planned"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a", docs[0].ID)

	// Nil filter matches everything.
	docs, err = s.Find(context.Background(), CollectionScenes, nil)
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	docs, err = s.Find(context.Background(), CollectionScenes, Filter{"status": "cancelled"})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestFilterNormalizesNumbers(t *testing.T) {
	s := NewMemoryStore()
	saveDoc(t, s, CollectionScenes, testDoc{ID: "a", ProjectID: "p1", Order: 3})

	// An int filter value must match the float64 that JSON decoding
	// produces for the stored field.
	docs, err := s.Find(context.Background(), CollectionScenes, Filter{"order": 3})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestUpdateMany(t *testing.T) {
	s := NewMemoryStore()
	saveDoc(t, s, CollectionScenes, testDoc{ID: "a", ProjectID: "p1", Status: "planned"})
	saveDoc(t, s, CollectionScenes, testDoc{ID: "b", ProjectID: "p1", Status: "planned"})
	saveDoc(t, s, CollectionScenes, testDoc{ID: "c", ProjectID: "p2", Status: "planned"})

	updated, err := s.UpdateMany(context.Background(), CollectionScenes,
		Filter{"projectId": "p1"},
		map[string]interface{}{"status": "completed"},
	)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)

	doc, err := s.FindByID(context.Background(), CollectionScenes, "a")
	require.NoError(t, err)
	var got testDoc
	require.NoError(t, json.Unmarshal(doc.Data, &got))
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, "p1", got.ProjectID, "unpatched fields survive the merge")

	other, err := s.FindByID(context.Background(), CollectionScenes, "c")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(other.Data, &got))
	assert.Equal(t, "planned", got.Status)
}

func TestDeleteByID(t *testing.T) {
	s := NewMemoryStore()
	saveDoc(t, s, CollectionScenes, testDoc{ID: "a", ProjectID: "p1"})

	require.NoError(t, s.DeleteByID(context.Background(), CollectionScenes, "a"))
	assert.ErrorIs(t, s.DeleteByID(context.Background(), CollectionScenes, "a"), ErrNotFound)
}
