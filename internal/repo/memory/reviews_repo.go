package memory

import (
	"context"

	"github.com/geocoder89/hbnb/internal/domain/review"
)

type ReviewsRepo struct {
	s *store[review.Review]
}

func NewReviewsRepo() *ReviewsRepo {
	return &ReviewsRepo{s: newStore(func(r review.Review) string { return r.ID })}
}

func (r *ReviewsRepo) Create(_ context.Context, rv review.Review) (review.Review, error) {
	rv.Ensure()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.insertLocked(rv) {
		return review.Review{}, review.ErrDuplicateID
	}
	return rv, nil
}

func (r *ReviewsRepo) GetByID(_ context.Context, id string) (review.Review, error) {
	rv, ok := r.s.get(id)
	if !ok {
		return review.Review{}, review.ErrNotFound
	}
	return rv, nil
}

func (r *ReviewsRepo) List(_ context.Context) ([]review.Review, error) {
	return r.s.list(nil), nil
}

func (r *ReviewsRepo) ListByPlace(_ context.Context, placeID string) ([]review.Review, error) {
	return r.s.list(func(rv review.Review) bool { return rv.PlaceID == placeID }), nil
}

func (r *ReviewsRepo) ListByUser(_ context.Context, userID string) ([]review.Review, error) {
	return r.s.list(func(rv review.Review) bool { return rv.UserID == userID }), nil
}

func (r *ReviewsRepo) Update(_ context.Context, id string, patch review.Patch) (review.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rv, ok := r.s.items[id]
	if !ok {
		return review.Review{}, review.ErrNotFound
	}

	rv.Apply(patch)
	r.s.items[id] = rv

	return rv, nil
}
