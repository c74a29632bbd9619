package memory

import (
	"context"

	"github.com/geocoder89/hbnb/internal/domain/amenity"
)

type AmenitiesRepo struct {
	s *store[amenity.Amenity]
}

func NewAmenitiesRepo() *AmenitiesRepo {
	return &AmenitiesRepo{s: newStore(func(a amenity.Amenity) string { return a.ID })}
}

func (r *AmenitiesRepo) Create(_ context.Context, a amenity.Amenity) (amenity.Amenity, error) {
	a.Ensure()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.insertLocked(a) {
		return amenity.Amenity{}, amenity.ErrDuplicateID
	}
	return a, nil
}

func (r *AmenitiesRepo) GetByID(_ context.Context, id string) (amenity.Amenity, error) {
	a, ok := r.s.get(id)
	if !ok {
		return amenity.Amenity{}, amenity.ErrNotFound
	}
	return a, nil
}

func (r *AmenitiesRepo) List(_ context.Context) ([]amenity.Amenity, error) {
	return r.s.list(nil), nil
}

func (r *AmenitiesRepo) Update(_ context.Context, id string, patch amenity.Patch) (amenity.Amenity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.items[id]
	if !ok {
		return amenity.Amenity{}, amenity.ErrNotFound
	}

	a.Apply(patch)
	r.s.items[id] = a

	return a, nil
}
