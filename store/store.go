// Package store provides the generic document store backing every
// project child resource (schedules, budgets, scenes, storyboards,
// scripts, shot lists, locations). Documents are schemaless JSON blobs
// keyed by id and grouped into named collections; filtering is flat
// field-equality against the document body.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Collection names used across the services.
const (
	CollectionSchedules   = "schedules"
	CollectionBudgets     = "budgets"
	CollectionScenes      = "scenes"
	CollectionStoryboards = "storyboards"
	CollectionScripts     = "scripts"
	CollectionShotLists   = "shotlists"
	CollectionLocations   = "locations"
)

var ErrNotFound = errors.New("document not found")

// Filter is a flat field -> value match against the document body.
// Values are compared after JSON normalization, so string ids, numbers
// and booleans all work.
type Filter map[string]interface{}

// Document is a stored JSON blob. Data always contains an "id" field
// equal to ID; services marshal their typed models into it.
type Document struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DocumentStore is the storage contract required by the schedule and
// budget services: per-document atomic save plus equality filtering.
// Nothing here serializes across documents; check-then-act sequences in
// callers are best-effort only.
type DocumentStore interface {
	Find(ctx context.Context, collection string, filter Filter) ([]Document, error)
	FindByID(ctx context.Context, collection, id string) (*Document, error)
	// Save inserts the document or replaces it wholesale by id.
	Save(ctx context.Context, collection string, doc Document) error
	DeleteByID(ctx context.Context, collection, id string) error
	Count(ctx context.Context, collection string, filter Filter) (int64, error)
	// UpdateMany merges patch into every matching document and returns
	// the number of documents touched.
	UpdateMany(ctx context.Context, collection string, filter Filter, patch map[string]interface{}) (int64, error)
}

// Marshal wraps a typed model into a Document.
func Marshal(id string, v interface{}) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Data: data}, nil
}
