package service

import (
	"context"
	"errors"

	"github.com/Smartsec916/Observe-and-Report-sub001/internal/shared/models"
)

// ErrMissingDateTime rejects records without the minimally required shape.
var ErrMissingDateTime = errors.New("date and time are required")

// ObservationsService implements the observation record lifecycle: create,
// read, list and partial update with top-level field merge.
type ObservationsService struct {
	repo Repository
}

// Create stores a new record under a freshly assigned id. Any id supplied
// by the caller is discarded.
func (s *ObservationsService) Create(ctx context.Context, rec models.ObservationRecord) (models.ObservationRecord, error) {
	if rec.Date == "" || rec.Time == "" {
		return models.ObservationRecord{}, ErrMissingDateTime
	}
	rec.ID = 0
	normalizeRecord(&rec)
	return s.repo.CreateObservation(ctx, rec)
}

func (s *ObservationsService) Get(ctx context.Context, id int64) (models.ObservationRecord, error) {
	return s.repo.GetObservation(ctx, id)
}

func (s *ObservationsService) List(ctx context.Context) ([]models.ObservationRecord, error) {
	return s.repo.ListObservations(ctx)
}

// Update applies a partial patch: every top-level field present in the
// patch fully replaces the stored value, absent fields are untouched.
// Returns the full post-merge record.
func (s *ObservationsService) Update(ctx context.Context, id int64, patch models.ObservationPatch) (models.ObservationRecord, error) {
	rec, err := s.repo.GetObservation(ctx, id)
	if err != nil {
		return models.ObservationRecord{}, err
	}
	if patch.Date != nil {
		rec.Date = *patch.Date
	}
	if patch.Time != nil {
		rec.Time = *patch.Time
	}
	if patch.Person != nil {
		rec.Person = *patch.Person
	}
	if patch.Vehicle != nil {
		rec.Vehicle = *patch.Vehicle
	}
	if patch.Location != nil {
		rec.Location = patch.Location
	}
	if patch.Images != nil {
		rec.Images = *patch.Images
	}
	if rec.Date == "" || rec.Time == "" {
		return models.ObservationRecord{}, ErrMissingDateTime
	}
	normalizeRecord(&rec)
	return s.repo.ReplaceObservation(ctx, rec)
}

// normalizeRecord keeps the stored shape canonical: images are never nil
// and the formatted address is recomputed from the structured components.
func normalizeRecord(rec *models.ObservationRecord) {
	if rec.Images == nil {
		rec.Images = []models.ImageRef{}
	}
	rec.Location.RefreshFormattedAddress()
}
