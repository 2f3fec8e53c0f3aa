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

type StoryboardService struct {
	store    store.DocumentStore
	imageGen *ImageGenService
}

func NewStoryboardService(st store.DocumentStore, imageGen *ImageGenService) *StoryboardService {
	return &StoryboardService{store: st, imageGen: imageGen}
}

func (s *StoryboardService) List(ctx context.Context, projectID, sceneID string) ([]models.StoryboardFrame, error) {
	filter := store.Filter{"projectId": projectID}
	if sceneID != "" {
		filter["sceneId"] = sceneID
	}
	docs, err := s.store.Find(ctx, store.CollectionStoryboards, filter)
	if err != nil {
		return nil, err
	}
	frames := []models.StoryboardFrame{}
	for _, doc := range docs {
		var frame models.StoryboardFrame
		if err := json.Unmarshal(doc.Data, &frame); err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

func (s *StoryboardService) Get(ctx context.Context, frameID string) (*models.StoryboardFrame, error) {
	doc, err := s.store.FindByID(ctx, store.CollectionStoryboards, frameID)
	if err == store.ErrNotFound {
		return nil, fmt.Errorf("%w: storyboard frame %s", ErrNotFound, frameID)
	}
	if err != nil {
		return nil, err
	}
	var frame models.StoryboardFrame
	if err := json.Unmarshal(doc.Data, &frame); err != nil {
		return nil, err
	}
	return &frame, nil
}

func (s *StoryboardService) Create(ctx context.Context, projectID string, req models.CreateStoryboardRequest, creatorID string) (*models.StoryboardFrame, error) {
	status := "sketch"
	if req.ImageURL != "" {
		status = "final"
	}

	frame := models.StoryboardFrame{
		ID:             uuid.New().String(),
		ProjectID:      projectID,
		SceneID:        req.SceneID,
		FrameNumber:    req.FrameNumber,
		Description:    req.Description,
		ShotType:       req.ShotType,
		CameraMovement: req.CameraMovement,
		ImageURL:       req.ImageURL,
		Status:         status,
		CreatedBy:      creatorID,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := s.save(ctx, frame); err != nil {
		return nil, err
	}
	return &frame, nil
}

func (s *StoryboardService) Update(ctx context.Context, frameID string, req models.UpdateStoryboardRequest) (*models.StoryboardFrame, error) {
	frame, err := s.Get(ctx, frameID)
	if err != nil {
		return nil, err
	}

	if req.FrameNumber != nil {
		frame.FrameNumber = *req.FrameNumber
	}
	if req.Description != nil {
		frame.Description = *req.Description
	}
	if req.ShotType != nil {
		frame.ShotType = *req.ShotType
	}
	if req.CameraMovement != nil {
		frame.CameraMovement = *req.CameraMovement
	}
	if req.ImageURL != nil {
		frame.ImageURL = *req.ImageURL
	}
	if req.Status != nil {
		frame.Status = *req.Status
	}

	frame.UpdatedAt = time.Now()
	if err := s.save(ctx, *frame); err != nil {
		return nil, err
	}
	return frame, nil
}

// Generate renders the frame through the image service and stores the
// returned URL with a generated status.
func (s *StoryboardService) Generate(ctx context.Context, frameID string) (*models.StoryboardFrame, error) {
	frame, err := s.Get(ctx, frameID)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.imageGen.GenerateFrame(ctx, frame.Description, frame.ShotType, frame.CameraMovement)
	if err != nil {
		return nil, err
	}

	frame.ImageURL = imageURL
	frame.Status = "generated"
	frame.UpdatedAt = time.Now()
	if err := s.save(ctx, *frame); err != nil {
		return nil, err
	}
	return frame, nil
}

func (s *StoryboardService) Delete(ctx context.Context, frameID string) error {
	err := s.store.DeleteByID(ctx, store.CollectionStoryboards, frameID)
	if err == store.ErrNotFound {
		return fmt.Errorf("%w: storyboard frame %s", ErrNotFound, frameID)
	}
	return err
}

func (s *StoryboardService) save(ctx context.Context, frame models.StoryboardFrame) error {
	doc, err := store.Marshal(frame.ID, frame)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, store.CollectionStoryboards, doc)
}
