package service

import (
	"context"
	"errors"

	"github.com/geocoder89/hbnb/internal/apperr"
	"github.com/geocoder89/hbnb/internal/cache"
	"github.com/geocoder89/hbnb/internal/domain/place"
	"github.com/geocoder89/hbnb/internal/domain/review"
)

type ReviewService struct {
	reviews ReviewStore
	places  PlaceStore
	users   UserStore
	cache   *cache.Loader
}

func NewReviewService(reviews ReviewStore, places PlaceStore, users UserStore, loader *cache.Loader) *ReviewService {
	return &ReviewService{reviews: reviews, places: places, users: users, cache: loader}
}

// Create stores a review written by userID. The place must exist, the rating
// must be within 1..5 and owners cannot review their own place.
func (s *ReviewService) Create(ctx context.Context, userID string, req review.CreateReviewRequest) (review.Review, error) {
	if err := validateStruct(req); err != nil {
		return review.Review{}, err
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return review.Review{}, err
	}

	p, err := s.places.GetByID(ctx, req.PlaceID)
	if err != nil {
		if errors.Is(err, place.ErrNotFound) {
			return review.Review{}, apperr.Invalid("place_id", "exists", "does not reference an existing place")
		}
		return review.Review{}, err
	}

	if p.OwnerID == userID {
		return review.Review{}, apperr.Invalid("place_id", "not_owner", "owners cannot review their own place")
	}

	r, err := s.reviews.Create(ctx, review.NewFromCreateRequest(userID, req))
	if err != nil {
		return review.Review{}, err
	}

	// cached place listings embed review ids
	s.cache.Invalidate(ctx, placesListKey)
	return r, nil
}

func (s *ReviewService) Get(ctx context.Context, id string) (review.Review, error) {
	return s.reviews.GetByID(ctx, id)
}

func (s *ReviewService) List(ctx context.Context) ([]review.Review, error) {
	return s.reviews.List(ctx)
}

func (s *ReviewService) Update(ctx context.Context, actor Actor, id string, req review.UpdateReviewRequest) (review.Review, error) {
	if err := validateStruct(req); err != nil {
		return review.Review{}, err
	}

	current, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return review.Review{}, err
	}

	if !actor.canModify(current.UserID) {
		return review.Review{}, review.ErrNotAuthor
	}

	return s.reviews.Update(ctx, id, req.Patch())
}
