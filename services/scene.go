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

type SceneService struct {
	store store.DocumentStore
}

func NewSceneService(st store.DocumentStore) *SceneService {
	return &SceneService{store: st}
}

func (s *SceneService) List(ctx context.Context, projectID string) ([]models.Scene, error) {
	docs, err := s.store.Find(ctx, store.CollectionScenes, store.Filter{"projectId": projectID})
	if err != nil {
		return nil, err
	}
	scenes := []models.Scene{}
	for _, doc := range docs {
		var scene models.Scene
		if err := json.Unmarshal(doc.Data, &scene); err != nil {
			return nil, err
		}
		scenes = append(scenes, scene)
	}
	return scenes, nil
}

func (s *SceneService) Get(ctx context.Context, sceneID string) (*models.Scene, error) {
	doc, err := s.store.FindByID(ctx, store.CollectionScenes, sceneID)
	if err == store.ErrNotFound {
		return nil, fmt.Errorf("%w: scene %s", ErrNotFound, sceneID)
	}
	if err != nil {
		return nil, err
	}
	var scene models.Scene
	if err := json.Unmarshal(doc.Data, &scene); err != nil {
		return nil, err
	}
	return &scene, nil
}

func (s *SceneService) Create(ctx context.Context, projectID string, req models.CreateSceneRequest, creatorID string) (*models.Scene, error) {
	count, err := s.store.Count(ctx, store.CollectionScenes, store.Filter{"projectId": projectID})
	if err != nil {
		return nil, err
	}

	scene := models.Scene{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Number:      req.Number,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		TimeOfDay:   req.TimeOfDay,
		Interior:    req.Interior,
		Status:      models.ScenePlanned,
		PageCount:   req.PageCount,
		CastIDs:     req.CastIDs,
		Order:       int(count),
		CreatedBy:   creatorID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if scene.CastIDs == nil {
		scene.CastIDs = []string{}
	}

	if err := s.save(ctx, scene); err != nil {
		return nil, err
	}
	return &scene, nil
}

func (s *SceneService) Update(ctx context.Context, sceneID string, req models.UpdateSceneRequest) (*models.Scene, error) {
	scene, err := s.Get(ctx, sceneID)
	if err != nil {
		return nil, err
	}

	if req.Number != nil {
		scene.Number = *req.Number
	}
	if req.Title != nil {
		scene.Title = *req.Title
	}
	if req.Description != nil {
		scene.Description = *req.Description
	}
	if req.Location != nil {
		scene.Location = *req.Location
	}
	if req.TimeOfDay != nil {
		scene.TimeOfDay = *req.TimeOfDay
	}
	if req.Interior != nil {
		scene.Interior = *req.Interior
	}
	if req.Status != nil {
		scene.Status = *req.Status
	}
	if req.PageCount != nil {
		scene.PageCount = *req.PageCount
	}
	if req.CastIDs != nil {
		scene.CastIDs = req.CastIDs
	}

	scene.UpdatedAt = time.Now()
	if err := s.save(ctx, *scene); err != nil {
		return nil, err
	}
	return scene, nil
}

// Reorder rewrites each scene's order to its index in the given list.
func (s *SceneService) Reorder(ctx context.Context, projectID string, sceneIDs []string) error {
	for i, sceneID := range sceneIDs {
		updated, err := s.store.UpdateMany(ctx, store.CollectionScenes,
			store.Filter{"id": sceneID, "projectId": projectID},
			map[string]interface{}{"order": i, "updatedAt": time.Now()},
		)
		if err != nil {
			return err
		}
		if updated == 0 {
			return fmt.Errorf("%w: scene %s", ErrNotFound, sceneID)
		}
	}
	return nil
}

func (s *SceneService) Delete(ctx context.Context, sceneID string) error {
	err := s.store.DeleteByID(ctx, store.CollectionScenes, sceneID)
	if err == store.ErrNotFound {
		return fmt.Errorf("%w: scene %s", ErrNotFound, sceneID)
	}
	return err
}

func (s *SceneService) save(ctx context.Context, scene models.Scene) error {
	doc, err := store.Marshal(scene.ID, scene)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, store.CollectionScenes, doc)
}
