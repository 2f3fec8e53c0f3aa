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

type ScriptService struct {
	store store.DocumentStore
}

func NewScriptService(st store.DocumentStore) *ScriptService {
	return &ScriptService{store: st}
}

func (s *ScriptService) List(ctx context.Context, projectID string) ([]models.Script, error) {
	docs, err := s.store.Find(ctx, store.CollectionScripts, store.Filter{"projectId": projectID})
	if err != nil {
		return nil, err
	}
	scripts := []models.Script{}
	for _, doc := range docs {
		var script models.Script
		if err := json.Unmarshal(doc.Data, &script); err != nil {
			return nil, err
		}
		scripts = append(scripts, script)
	}
	return scripts, nil
}

func (s *ScriptService) Get(ctx context.Context, scriptID string) (*models.Script, error) {
	doc, err := s.store.FindByID(ctx, store.CollectionScripts, scriptID)
	if err == store.ErrNotFound {
		return nil, fmt.Errorf("%w: script %s", ErrNotFound, scriptID)
	}
	if err != nil {
		return nil, err
	}
	var script models.Script
	if err := json.Unmarshal(doc.Data, &script); err != nil {
		return nil, err
	}
	return &script, nil
}

func (s *ScriptService) Create(ctx context.Context, projectID string, req models.CreateScriptRequest, creatorID string) (*models.Script, error) {
	script := models.Script{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Title:     req.Title,
		Content:   req.Content,
		Revision:  1,
		Notes:     req.Notes,
		CreatedBy: creatorID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.save(ctx, script); err != nil {
		return nil, err
	}
	return &script, nil
}

// Update bumps the revision counter only when the content itself changed.
func (s *ScriptService) Update(ctx context.Context, scriptID string, req models.UpdateScriptRequest) (*models.Script, error) {
	script, err := s.Get(ctx, scriptID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		script.Title = *req.Title
	}
	if req.Notes != nil {
		script.Notes = *req.Notes
	}
	if req.Content != nil && *req.Content != script.Content {
		script.Content = *req.Content
		script.Revision++
	}

	script.UpdatedAt = time.Now()
	if err := s.save(ctx, *script); err != nil {
		return nil, err
	}
	return script, nil
}

func (s *ScriptService) Delete(ctx context.Context, scriptID string) error {
	err := s.store.DeleteByID(ctx, store.CollectionScripts, scriptID)
	if err == store.ErrNotFound {
		return fmt.Errorf("%w: script %s", ErrNotFound, scriptID)
	}
	return err
}

func (s *ScriptService) save(ctx context.Context, script models.Script) error {
	doc, err := store.Marshal(script.ID, script)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, store.CollectionScripts, doc)
}
