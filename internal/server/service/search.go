package service

import (
	"context"
	"strings"

	"github.com/Smartsec916/Observe-and-Report-sub001/internal/shared/geo"
	"github.com/Smartsec916/Observe-and-Report-sub001/internal/shared/models"
)

// SearchService evaluates sparse multi-criteria filters against the
// repository. Groups are ANDed: a record matches only when every provided
// constraint holds. An empty filter matches everything; no match is a
// normal empty result, not an error.
type SearchService struct {
	repo Repository
}

func (s *SearchService) Search(ctx context.Context, f models.SearchFilter) ([]models.ObservationRecord, error) {
	all, err := s.repo.ListObservations(ctx)
	if err != nil {
		return nil, err
	}
	// Base ordering (ascending id) comes from the repository and is
	// preserved through the filter.
	out := []models.ObservationRecord{}
	for _, rec := range all {
		if matches(rec, f) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func matches(rec models.ObservationRecord, f models.SearchFilter) bool {
	// ISO dates compare lexicographically in chronological order; both
	// bounds are inclusive and each is optional.
	if f.DateFrom != "" && rec.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && rec.Date > f.DateTo {
		return false
	}
	if f.PersonFields != nil && !personMatches(rec.Person, *f.PersonFields) {
		return false
	}
	if f.VehicleFields != nil && !vehicleMatches(rec.Vehicle, *f.VehicleFields) {
		return false
	}
	if f.LocationRadius != nil && !radiusMatches(rec.Location, *f.LocationRadius) {
		return false
	}
	return true
}

func personMatches(have, want models.PersonInfo) bool {
	return containsAll([][2]string{
		{have.Name, want.Name},
		{have.Sex, want.Sex},
		{have.Age, want.Age},
		{have.Height, want.Height},
		{have.Build, want.Build},
		{have.HairColor, want.HairColor},
		{have.EyeColor, want.EyeColor},
		{have.Clothing, want.Clothing},
		{have.Notes, want.Notes},
	})
}

func vehicleMatches(have, want models.VehicleInfo) bool {
	return containsAll([][2]string{
		{have.Make, want.Make},
		{have.Model, want.Model},
		{have.Color, want.Color},
		{have.Year, want.Year},
		{have.LicensePlate, want.LicensePlate},
		{have.State, want.State},
		{have.Notes, want.Notes},
	})
}

// containsAll requires every non-empty wanted value to be a
// case-insensitive substring of the corresponding record value.
func containsAll(pairs [][2]string) bool {
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(p[0]), strings.ToLower(p[1])) {
			return false
		}
	}
	return true
}

// radiusMatches requires resolvable coordinates; records without them
// never match a radius filter.
func radiusMatches(loc *models.IncidentLocation, want models.LocationRadius) bool {
	lat, lon, ok := loc.Coordinates()
	if !ok {
		return false
	}
	return geo.Distance(lat, lon, want.Lat, want.Lon) <= want.RadiusMeters
}
