package service

import (
	"context"
	"errors"

	"github.com/geocoder89/hbnb/internal/apperr"
	"github.com/geocoder89/hbnb/internal/cache"
	"github.com/geocoder89/hbnb/internal/domain/place"
	"github.com/geocoder89/hbnb/internal/domain/review"
	"github.com/geocoder89/hbnb/internal/domain/user"
)

type PlaceService struct {
	places    PlaceStore
	users     UserStore
	reviews   ReviewStore
	amenities AmenityStore
	cache     *cache.Loader
}

func NewPlaceService(places PlaceStore, users UserStore, reviews ReviewStore, amenities AmenityStore, loader *cache.Loader) *PlaceService {
	return &PlaceService{
		places:    places,
		users:     users,
		reviews:   reviews,
		amenities: amenities,
		cache:     loader,
	}
}

func (s *PlaceService) Create(ctx context.Context, ownerID string, req place.CreatePlaceRequest) (place.Place, error) {
	if err := validateStruct(req); err != nil {
		return place.Place{}, err
	}

	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return place.Place{}, apperr.Invalid("owner_id", "exists", "does not reference an existing user")
		}
		return place.Place{}, err
	}

	p, err := s.places.Create(ctx, place.NewFromCreateRequest(ownerID, req))
	if err != nil {
		return place.Place{}, err
	}

	s.cache.Invalidate(ctx, placesListKey)

	p.ReviewIDs = []string{}
	return p, nil
}

func (s *PlaceService) Get(ctx context.Context, id string) (place.Place, error) {
	p, err := s.places.GetByID(ctx, id)
	if err != nil {
		return place.Place{}, err
	}

	return s.withReviews(ctx, p)
}

func (s *PlaceService) List(ctx context.Context) ([]place.Place, error) {
	return cache.GetOrLoad(ctx, s.cache, placesListKey, s.loadList)
}

func (s *PlaceService) loadList(ctx context.Context) ([]place.Place, error) {
	places, err := s.places.List(ctx)
	if err != nil {
		return nil, err
	}

	all, err := s.reviews.List(ctx)
	if err != nil {
		return nil, err
	}

	byPlace := make(map[string][]string)
	for _, r := range all {
		byPlace[r.PlaceID] = append(byPlace[r.PlaceID], r.ID)
	}

	for i := range places {
		places[i].ReviewIDs = byPlace[places[i].ID]
	}

	return places, nil
}

// Update is allowed for the owner and for admins.
func (s *PlaceService) Update(ctx context.Context, actor Actor, id string, req place.UpdatePlaceRequest) (place.Place, error) {
	if err := validateStruct(req); err != nil {
		return place.Place{}, err
	}

	current, err := s.places.GetByID(ctx, id)
	if err != nil {
		return place.Place{}, err
	}

	if !actor.canModify(current.OwnerID) {
		return place.Place{}, place.ErrNotOwner
	}

	updated, err := s.places.Update(ctx, id, req.Patch())
	if err != nil {
		return place.Place{}, err
	}

	s.cache.Invalidate(ctx, placesListKey)
	return s.withReviews(ctx, updated)
}

// AddAmenity links an existing amenity to a place. Adding the same amenity twice is a no-op.
func (s *PlaceService) AddAmenity(ctx context.Context, actor Actor, placeID, amenityID string) (place.Place, error) {
	current, err := s.places.GetByID(ctx, placeID)
	if err != nil {
		return place.Place{}, err
	}

	if !actor.canModify(current.OwnerID) {
		return place.Place{}, place.ErrNotOwner
	}

	if _, err := s.amenities.GetByID(ctx, amenityID); err != nil {
		return place.Place{}, err
	}

	updated, err := s.places.AddAmenity(ctx, placeID, amenityID)
	if err != nil {
		return place.Place{}, err
	}

	s.cache.Invalidate(ctx, placesListKey)
	return s.withReviews(ctx, updated)
}

func (s *PlaceService) ListReviews(ctx context.Context, placeID string) ([]review.Review, error) {
	if _, err := s.places.GetByID(ctx, placeID); err != nil {
		return nil, err
	}

	return s.reviews.ListByPlace(ctx, placeID)
}

func (s *PlaceService) withReviews(ctx context.Context, p place.Place) (place.Place, error) {
	reviews, err := s.reviews.ListByPlace(ctx, p.ID)
	if err != nil {
		return place.Place{}, err
	}

	p.ReviewIDs = review.IDs(reviews)
	return p, nil
}
