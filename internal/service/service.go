package service

import (
	"context"
	"strings"

	"github.com/geocoder89/hbnb/internal/apperr"
	"github.com/geocoder89/hbnb/internal/domain/amenity"
	"github.com/geocoder89/hbnb/internal/domain/place"
	"github.com/geocoder89/hbnb/internal/domain/review"
	"github.com/geocoder89/hbnb/internal/domain/user"
	"github.com/go-playground/validator/v10"
)

// Stores are satisfied by both repo/memory and repo/postgres.

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, id string, patch user.Patch) (user.User, error)
}

type PlaceStore interface {
	Create(ctx context.Context, p place.Place) (place.Place, error)
	GetByID(ctx context.Context, id string) (place.Place, error)
	List(ctx context.Context) ([]place.Place, error)
	Update(ctx context.Context, id string, patch place.Patch) (place.Place, error)
	AddAmenity(ctx context.Context, placeID, amenityID string) (place.Place, error)
}

type ReviewStore interface {
	Create(ctx context.Context, r review.Review) (review.Review, error)
	GetByID(ctx context.Context, id string) (review.Review, error)
	List(ctx context.Context) ([]review.Review, error)
	ListByPlace(ctx context.Context, placeID string) ([]review.Review, error)
	ListByUser(ctx context.Context, userID string) ([]review.Review, error)
	Update(ctx context.Context, id string, patch review.Patch) (review.Review, error)
}

type AmenityStore interface {
	Create(ctx context.Context, a amenity.Amenity) (amenity.Amenity, error)
	GetByID(ctx context.Context, id string) (amenity.Amenity, error)
	List(ctx context.Context) ([]amenity.Amenity, error)
	Update(ctx context.Context, id string, patch amenity.Patch) (amenity.Amenity, error)
}

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	UserID  string
	IsAdmin bool
}

func (a Actor) canModify(ownerID string) bool {
	return a.IsAdmin || (a.UserID != "" && a.UserID == ownerID)
}

const (
	placesListKey    = "places:list:v1"
	amenitiesListKey = "amenities:list:v1"
)

// the same rules gin enforces at the boundary, so non-HTTP callers get them too
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	v.RegisterTagNameFunc(apperr.JSONFieldName)
	return v
}

func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	if verr, ok := apperr.FromValidator(err); ok {
		return verr
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
