package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/hbnb/internal/domain/place"
	"github.com/geocoder89/hbnb/internal/domain/review"
	"github.com/geocoder89/hbnb/internal/service"
	"github.com/gin-gonic/gin"
)

type PlaceService interface {
	Create(ctx context.Context, ownerID string, req place.CreatePlaceRequest) (place.Place, error)
	Get(ctx context.Context, id string) (place.Place, error)
	List(ctx context.Context) ([]place.Place, error)
	Update(ctx context.Context, actor service.Actor, id string, req place.UpdatePlaceRequest) (place.Place, error)
	AddAmenity(ctx context.Context, actor service.Actor, placeID, amenityID string) (place.Place, error)
	ListReviews(ctx context.Context, placeID string) ([]review.Review, error)
}

type PlacesHandler struct {
	svc PlaceService
}

func NewPlacesHandler(svc PlaceService) *PlacesHandler {
	return &PlacesHandler{svc: svc}
}

// CreatePlace makes the caller the owner of the new place.
func (h *PlacesHandler) CreatePlace(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req place.CreatePlaceRequest

	if !BindJSON(ctx, &req) {
		return
	}

	p, err := h.svc.Create(ctx.Request.Context(), actor.UserID, req)
	if err != nil {
		RespondServiceError(ctx, err, "Could not create place")
		return
	}

	ctx.Header("Location", "/places/"+p.ID)
	ctx.JSON(http.StatusCreated, p.Response())
}

func (h *PlacesHandler) ListPlaces(ctx *gin.Context) {
	places, err := h.svc.List(ctx.Request.Context())
	if err != nil {
		RespondServiceError(ctx, err, "Could not list places")
		return
	}

	RespondCollection(ctx, place.Responses(places))
}

func (h *PlacesHandler) GetPlaceByID(ctx *gin.Context) {
	p, err := h.svc.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, err, "Could not fetch place")
		return
	}

	RespondResource(ctx, p.Response())
}

func (h *PlacesHandler) UpdatePlace(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req place.UpdatePlaceRequest

	if !BindJSON(ctx, &req) {
		return
	}

	p, err := h.svc.Update(ctx.Request.Context(), actor, ctx.Param("id"), req)
	if err != nil {
		RespondServiceError(ctx, err, "Could not update place")
		return
	}

	ctx.JSON(http.StatusOK, p.Response())
}

func (h *PlacesHandler) AddAmenity(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	p, err := h.svc.AddAmenity(ctx.Request.Context(), actor, ctx.Param("id"), ctx.Param("amenity_id"))
	if err != nil {
		RespondServiceError(ctx, err, "Could not add amenity")
		return
	}

	ctx.JSON(http.StatusOK, p.Response())
}

func (h *PlacesHandler) ListPlaceReviews(ctx *gin.Context) {
	reviews, err := h.svc.ListReviews(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, err, "Could not list reviews")
		return
	}

	RespondCollection(ctx, review.Responses(reviews))
}
