package service

import (
	"context"

	"github.com/geocoder89/hbnb/internal/cache"
	"github.com/geocoder89/hbnb/internal/domain/amenity"
)

type AmenityService struct {
	amenities AmenityStore
	cache     *cache.Loader
}

func NewAmenityService(amenities AmenityStore, loader *cache.Loader) *AmenityService {
	return &AmenityService{amenities: amenities, cache: loader}
}

func (s *AmenityService) Create(ctx context.Context, req amenity.CreateAmenityRequest) (amenity.Amenity, error) {
	if err := validateStruct(req); err != nil {
		return amenity.Amenity{}, err
	}

	a, err := s.amenities.Create(ctx, amenity.NewFromCreateRequest(req))
	if err != nil {
		return amenity.Amenity{}, err
	}

	s.cache.Invalidate(ctx, amenitiesListKey)
	return a, nil
}

func (s *AmenityService) Get(ctx context.Context, id string) (amenity.Amenity, error) {
	return s.amenities.GetByID(ctx, id)
}

func (s *AmenityService) List(ctx context.Context) ([]amenity.Amenity, error) {
	return cache.GetOrLoad(ctx, s.cache, amenitiesListKey, s.amenities.List)
}

func (s *AmenityService) Update(ctx context.Context, id string, req amenity.UpdateAmenityRequest) (amenity.Amenity, error) {
	if err := validateStruct(req); err != nil {
		return amenity.Amenity{}, err
	}

	a, err := s.amenities.Update(ctx, id, req.Patch())
	if err != nil {
		return amenity.Amenity{}, err
	}

	s.cache.Invalidate(ctx, amenitiesListKey)
	return a, nil
}
