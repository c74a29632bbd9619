package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/hbnb/internal/domain/amenity"
	"github.com/gin-gonic/gin"
)

type AmenityService interface {
	Create(ctx context.Context, req amenity.CreateAmenityRequest) (amenity.Amenity, error)
	Get(ctx context.Context, id string) (amenity.Amenity, error)
	List(ctx context.Context) ([]amenity.Amenity, error)
	Update(ctx context.Context, id string, req amenity.UpdateAmenityRequest) (amenity.Amenity, error)
}

type AmenitiesHandler struct {
	svc AmenityService
}

func NewAmenitiesHandler(svc AmenityService) *AmenitiesHandler {
	return &AmenitiesHandler{svc: svc}
}

func (h *AmenitiesHandler) CreateAmenity(ctx *gin.Context) {
	var req amenity.CreateAmenityRequest

	if !BindJSON(ctx, &req) {
		return
	}

	a, err := h.svc.Create(ctx.Request.Context(), req)
	if err != nil {
		RespondServiceError(ctx, err, "Could not create amenity")
		return
	}

	ctx.Header("Location", "/amenities/"+a.ID)
	ctx.JSON(http.StatusCreated, a.Response())
}

func (h *AmenitiesHandler) ListAmenities(ctx *gin.Context) {
	amenities, err := h.svc.List(ctx.Request.Context())
	if err != nil {
		RespondServiceError(ctx, err, "Could not list amenities")
		return
	}

	RespondCollection(ctx, amenity.Responses(amenities))
}

func (h *AmenitiesHandler) GetAmenityByID(ctx *gin.Context) {
	a, err := h.svc.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, err, "Could not fetch amenity")
		return
	}

	RespondResource(ctx, a.Response())
}

func (h *AmenitiesHandler) UpdateAmenity(ctx *gin.Context) {
	var req amenity.UpdateAmenityRequest

	if !BindJSON(ctx, &req) {
		return
	}

	a, err := h.svc.Update(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		RespondServiceError(ctx, err, "Could not update amenity")
		return
	}

	ctx.JSON(http.StatusOK, a.Response())
}
