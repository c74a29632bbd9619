package memory

import (
	"context"
	"slices"

	"github.com/geocoder89/hbnb/internal/domain/place"
)

type PlacesRepo struct {
	s *store[place.Place]
}

func NewPlacesRepo() *PlacesRepo {
	return &PlacesRepo{s: newStore(func(p place.Place) string { return p.ID })}
}

func (r *PlacesRepo) Create(_ context.Context, p place.Place) (place.Place, error) {
	p.Ensure()
	p.AmenityIDs = slices.Clone(p.AmenityIDs)
	p.ReviewIDs = nil

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.insertLocked(p) {
		return place.Place{}, place.ErrDuplicateID
	}
	return clonePlace(p), nil
}

func (r *PlacesRepo) GetByID(_ context.Context, id string) (place.Place, error) {
	p, ok := r.s.get(id)
	if !ok {
		return place.Place{}, place.ErrNotFound
	}
	return clonePlace(p), nil
}

func (r *PlacesRepo) List(_ context.Context) ([]place.Place, error) {
	places := r.s.list(nil)
	for i := range places {
		places[i] = clonePlace(places[i])
	}
	return places, nil
}

func (r *PlacesRepo) Update(_ context.Context, id string, patch place.Patch) (place.Place, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.items[id]
	if !ok {
		return place.Place{}, place.ErrNotFound
	}

	p.Apply(patch)
	r.s.items[id] = p

	return clonePlace(p), nil
}

// AddAmenity links an amenity to a place. Linking twice is a no-op and does not touch UpdatedAt.
func (r *PlacesRepo) AddAmenity(_ context.Context, placeID, amenityID string) (place.Place, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.items[placeID]
	if !ok {
		return place.Place{}, place.ErrNotFound
	}

	p.AmenityIDs = slices.Clone(p.AmenityIDs)
	if p.AddAmenity(amenityID) {
		p.Touch()
		r.s.items[placeID] = p
	}

	return clonePlace(p), nil
}

// slices in stored values are shared; hand callers their own copy.
func clonePlace(p place.Place) place.Place {
	p.AmenityIDs = slices.Clone(p.AmenityIDs)
	return p
}
