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

type LocationService struct {
	store   store.DocumentStore
	geocode *GeocodeService
}

func NewLocationService(st store.DocumentStore, geocode *GeocodeService) *LocationService {
	return &LocationService{store: st, geocode: geocode}
}

func (s *LocationService) List(ctx context.Context, projectID string) ([]models.Location, error) {
	docs, err := s.store.Find(ctx, store.CollectionLocations, store.Filter{"projectId": projectID})
	if err != nil {
		return nil, err
	}
	locations := []models.Location{}
	for _, doc := range docs {
		var location models.Location
		if err := json.Unmarshal(doc.Data, &location); err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	return locations, nil
}

func (s *LocationService) Get(ctx context.Context, locationID string) (*models.Location, error) {
	doc, err := s.store.FindByID(ctx, store.CollectionLocations, locationID)
	if err == store.ErrNotFound {
		return nil, fmt.Errorf("%w: location %s", ErrNotFound, locationID)
	}
	if err != nil {
		return nil, err
	}
	var location models.Location
	if err := json.Unmarshal(doc.Data, &location); err != nil {
		return nil, err
	}
	return &location, nil
}

func (s *LocationService) Create(ctx context.Context, projectID string, req models.CreateLocationRequest, creatorID string) (*models.Location, error) {
	location := models.Location{
		ID:              uuid.New().String(),
		ProjectID:       projectID,
		Name:            req.Name,
		Address:         req.Address,
		ContactName:     req.ContactName,
		ContactPhone:    req.ContactPhone,
		Notes:           req.Notes,
		PermitsRequired: req.PermitsRequired,
		CreatedBy:       creatorID,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := s.save(ctx, location); err != nil {
		return nil, err
	}
	return &location, nil
}

func (s *LocationService) Update(ctx context.Context, locationID string, req models.UpdateLocationRequest) (*models.Location, error) {
	location, err := s.Get(ctx, locationID)
	if err != nil {
		return nil, err
	}

	addressChanged := false
	if req.Name != nil {
		location.Name = *req.Name
	}
	if req.Address != nil && *req.Address != location.Address {
		location.Address = *req.Address
		addressChanged = true
	}
	if req.ContactName != nil {
		location.ContactName = *req.ContactName
	}
	if req.ContactPhone != nil {
		location.ContactPhone = *req.ContactPhone
	}
	if req.Notes != nil {
		location.Notes = *req.Notes
	}
	if req.PermitsRequired != nil {
		location.PermitsRequired = *req.PermitsRequired
	}

	// Stale coordinates are worse than none.
	if addressChanged {
		location.Lat = 0
		location.Lng = 0
	}

	location.UpdatedAt = time.Now()
	if err := s.save(ctx, *location); err != nil {
		return nil, err
	}
	return location, nil
}

// Resolve geocodes the stored address and persists the coordinates.
func (s *LocationService) Resolve(ctx context.Context, locationID string) (*models.Location, error) {
	location, err := s.Get(ctx, locationID)
	if err != nil {
		return nil, err
	}

	lat, lng, formatted, err := s.geocode.Geocode(ctx, location.Address)
	if err != nil {
		return nil, err
	}

	location.Lat = lat
	location.Lng = lng
	if formatted != "" {
		location.Address = formatted
	}
	location.UpdatedAt = time.Now()
	if err := s.save(ctx, *location); err != nil {
		return nil, err
	}
	return location, nil
}

func (s *LocationService) Delete(ctx context.Context, locationID string) error {
	err := s.store.DeleteByID(ctx, store.CollectionLocations, locationID)
	if err == store.ErrNotFound {
		return fmt.Errorf("%w: location %s", ErrNotFound, locationID)
	}
	return err
}

func (s *LocationService) save(ctx context.Context, location models.Location) error {
	doc, err := store.Marshal(location.ID, location)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, store.CollectionLocations, doc)
}
