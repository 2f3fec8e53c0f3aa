package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a map-backed DocumentStore with the same filter and
// patch semantics as the Postgres one. Used by the test suites and as a
// throwaway dev backend.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]Document)}
}

func (s *MemoryStore) Find(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []Document
	for _, doc := range s.collections[collection] {
		ok, err := matches(doc.Data, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.Before(docs[j].CreatedAt) })
	return docs, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (s *MemoryStore) Save(ctx context.Context, collection string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Document)
	}
	now := time.Now()
	if existing, ok := s.collections[collection][doc.ID]; ok {
		doc.CreatedAt = existing.CreatedAt
	} else {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	s.collections[collection][doc.ID] = doc
	return nil
}

func (s *MemoryStore) DeleteByID(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	docs, err := s.Find(ctx, collection, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (s *MemoryStore) UpdateMany(ctx context.Context, collection string, filter Filter, patch map[string]interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int64
	for id, doc := range s.collections[collection] {
		ok, err := matches(doc.Data, filter)
		if err != nil {
			return updated, err
		}
		if !ok {
			continue
		}

		var body map[string]interface{}
		if err := json.Unmarshal(doc.Data, &body); err != nil {
			return updated, err
		}
		for k, v := range patch {
			body[k] = v
		}
		merged, err := json.Marshal(body)
		if err != nil {
			return updated, err
		}
		doc.Data = merged
		doc.UpdatedAt = time.Now()
		s.collections[collection][id] = doc
		updated++
	}
	return updated, nil
}

// matches applies the flat equality filter after JSON-normalizing both
// sides, mirroring what JSONB containment does for scalar fields.
func matches(data json.RawMessage, filter Filter) (bool, error) {
	if len(filter) == 0 {
		return true, nil
	}

	var body map[string]interface{}
	if err := json.Unmarshal(data, &body); err != nil {
		return false, err
	}

	for field, want := range filter {
		normalized, err := normalizeValue(want)
		if err != nil {
			return false, err
		}
		got, ok := body[field]
		if !ok || !valueEqual(got, normalized) {
			return false, nil
		}
	}
	return true, nil
}

func normalizeValue(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func valueEqual(a, b interface{}) bool {
	ra, err := json.Marshal(a)
	if err != nil {
		return false
	}
	rb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(ra) == string(rb)
}

var _ DocumentStore = (*MemoryStore)(nil)
