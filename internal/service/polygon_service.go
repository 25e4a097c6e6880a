package service

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"polygon-service/internal/model"
	"polygon-service/internal/repository"
)

const (
	msgCreated   = "Polygon created successfully"
	msgListed    = "Polygons retrieved successfully"
	msgRetrieved = "Polygon retrieved successfully"
	msgUpdated   = "Polygon updated successfully"
	msgDeleted   = "Polygon deleted successfully"
	msgNotFound  = "Polygon not found"
)

// PolygonStore is the persistence contract the service runs against.
// FindByID and Update return (nil, nil) when nothing matches.
type PolygonStore interface {
	Create(ctx context.Context, polygon *model.Polygon) error
	FindAll(ctx context.Context) ([]model.Polygon, error)
	FindByID(ctx context.Context, id int64) (*model.Polygon, error)
	Update(ctx context.Context, id int64, patch model.PolygonPatch) (*model.Polygon, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type PolygonService struct {
	store PolygonStore
	log   zerolog.Logger
}

func NewPolygonService(store PolygonStore, log zerolog.Logger) *PolygonService {
	return &PolygonService{store: store, log: log}
}

// logStorageFailure records a repository error with its classification.
// The envelope only carries the driver text.
func (s *PolygonService) logStorageFailure(operation string, err error) {
	event := s.log.Error().Err(err).Str("operation", operation)
	if se, ok := repository.AsStorageError(err); ok {
		event = event.Str("storage_op", se.Op).Str("storage_kind", string(se.Kind))
	}
	event.Msg("storage failure")
}

// Create validates the payload and inserts it. Storage failures are reported
// with a 400 status, unlike the read and delete paths.
func (s *PolygonService) Create(ctx context.Context, input CreatePolygonInput) Response[model.Polygon] {
	polygon, err := ValidateCreate(input)
	if err != nil {
		return Failure("Failed to create polygon: "+err.Error(), model.Polygon{}, http.StatusBadRequest)
	}

	if err := s.store.Create(ctx, &polygon); err != nil {
		s.logStorageFailure("create", err)
		return Failure(err.Error(), model.Polygon{}, http.StatusBadRequest)
	}

	return Success(msgCreated, polygon, http.StatusCreated)
}

func (s *PolygonService) GetAll(ctx context.Context) Response[[]model.Polygon] {
	polygons, err := s.store.FindAll(ctx)
	if err != nil {
		s.logStorageFailure("get_all", err)
		return Failure(err.Error(), []model.Polygon{}, http.StatusInternalServerError)
	}
	if polygons == nil {
		polygons = []model.Polygon{}
	}
	return Success(msgListed, polygons, http.StatusOK)
}

func (s *PolygonService) GetByID(ctx context.Context, id int64) Response[model.Polygon] {
	polygon, err := s.store.FindByID(ctx, id)
	if err != nil {
		s.logStorageFailure("get_by_id", err)
		return Failure(err.Error(), model.Polygon{}, http.StatusInternalServerError)
	}
	if polygon == nil {
		return Failure(msgNotFound, model.Polygon{}, http.StatusNotFound)
	}
	return Success(msgRetrieved, *polygon, http.StatusOK)
}

// Update applies the provided fields. An update with no fields is reported
// as not found.
func (s *PolygonService) Update(ctx context.Context, id int64, input UpdatePolygonInput) Response[model.Polygon] {
	patch, err := ValidateUpdate(input)
	if err != nil {
		return Failure("Failed to update polygon: "+err.Error(), model.Polygon{}, http.StatusBadRequest)
	}

	polygon, err := s.store.Update(ctx, id, patch)
	if err != nil {
		s.logStorageFailure("update", err)
		return Failure(err.Error(), model.Polygon{}, http.StatusBadRequest)
	}
	if polygon == nil {
		return Failure(msgNotFound, model.Polygon{}, http.StatusNotFound)
	}
	return Success(msgUpdated, *polygon, http.StatusOK)
}

// Delete removes the polygon. The envelope carries an empty placeholder, not
// the deleted row.
func (s *PolygonService) Delete(ctx context.Context, id int64) Response[model.Polygon] {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		s.logStorageFailure("delete", err)
		return Failure(err.Error(), model.Polygon{}, http.StatusInternalServerError)
	}
	if !deleted {
		return Failure(msgNotFound, model.Polygon{}, http.StatusNotFound)
	}
	return Success(msgDeleted, model.Polygon{}, http.StatusOK)
}

// InvalidID builds the envelope for a path id that is not a positive integer.
func InvalidID[T any](object T) Response[T] {
	err := &ValidationError{Issues: []string{"id must be a positive integer"}}
	return Failure("Invalid input: "+err.Error(), object, http.StatusBadRequest)
}

// InvalidBody builds the envelope for a request body that could not be decoded.
func InvalidBody[T any](object T, cause error) Response[T] {
	return Failure("Invalid input: "+cause.Error(), object, http.StatusBadRequest)
}
