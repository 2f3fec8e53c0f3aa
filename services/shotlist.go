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

type ShotListService struct {
	store store.DocumentStore
}

func NewShotListService(st store.DocumentStore) *ShotListService {
	return &ShotListService{store: st}
}

func (s *ShotListService) List(ctx context.Context, projectID string) ([]models.ShotList, error) {
	docs, err := s.store.Find(ctx, store.CollectionShotLists, store.Filter{"projectId": projectID})
	if err != nil {
		return nil, err
	}
	lists := []models.ShotList{}
	for _, doc := range docs {
		var list models.ShotList
		if err := json.Unmarshal(doc.Data, &list); err != nil {
			return nil, err
		}
		lists = append(lists, list)
	}
	return lists, nil
}

func (s *ShotListService) Get(ctx context.Context, listID string) (*models.ShotList, error) {
	doc, err := s.store.FindByID(ctx, store.CollectionShotLists, listID)
	if err == store.ErrNotFound {
		return nil, fmt.Errorf("%w: shot list %s", ErrNotFound, listID)
	}
	if err != nil {
		return nil, err
	}
	var list models.ShotList
	if err := json.Unmarshal(doc.Data, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *ShotListService) Create(ctx context.Context, projectID string, req models.CreateShotListRequest, creatorID string) (*models.ShotList, error) {
	list := models.ShotList{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		SceneID:   req.SceneID,
		Shots:     req.Shots,
		CreatedBy: creatorID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if list.Shots == nil {
		list.Shots = []models.Shot{}
	}

	if err := s.save(ctx, list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *ShotListService) Update(ctx context.Context, listID string, req models.UpdateShotListRequest) (*models.ShotList, error) {
	list, err := s.Get(ctx, listID)
	if err != nil {
		return nil, err
	}

	list.Shots = req.Shots
	list.UpdatedAt = time.Now()
	if err := s.save(ctx, *list); err != nil {
		return nil, err
	}
	return list, nil
}

// ToggleShot flips a single shot's completed flag by shot number.
func (s *ShotListService) ToggleShot(ctx context.Context, listID, shotNumber string) (*models.ShotList, error) {
	list, err := s.Get(ctx, listID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range list.Shots {
		if list.Shots[i].Number == shotNumber {
			list.Shots[i].Completed = !list.Shots[i].Completed
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: shot %s", ErrNotFound, shotNumber)
	}

	list.UpdatedAt = time.Now()
	if err := s.save(ctx, *list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ShotListService) Delete(ctx context.Context, listID string) error {
	err := s.store.DeleteByID(ctx, store.CollectionShotLists, listID)
	if err == store.ErrNotFound {
		return fmt.Errorf("%w: shot list %s", ErrNotFound, listID)
	}
	return err
}

func (s *ShotListService) save(ctx context.Context, list models.ShotList) error {
	doc, err := store.Marshal(list.ID, list)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, store.CollectionShotLists, doc)
}
