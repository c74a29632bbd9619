package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/hbnb/internal/domain/review"
	"github.com/geocoder89/hbnb/internal/service"
	"github.com/gin-gonic/gin"
)

type ReviewService interface {
	Create(ctx context.Context, userID string, req review.CreateReviewRequest) (review.Review, error)
	Get(ctx context.Context, id string) (review.Review, error)
	List(ctx context.Context) ([]review.Review, error)
	Update(ctx context.Context, actor service.Actor, id string, req review.UpdateReviewRequest) (review.Review, error)
}

type ReviewsHandler struct {
	svc ReviewService
}

func NewReviewsHandler(svc ReviewService) *ReviewsHandler {
	return &ReviewsHandler{svc: svc}
}

// CreateReview records the caller as the author.
func (h *ReviewsHandler) CreateReview(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req review.CreateReviewRequest

	if !BindJSON(ctx, &req) {
		return
	}

	r, err := h.svc.Create(ctx.Request.Context(), actor.UserID, req)
	if err != nil {
		RespondServiceError(ctx, err, "Could not create review")
		return
	}

	ctx.Header("Location", "/reviews/"+r.ID)
	ctx.JSON(http.StatusCreated, r.Response())
}

func (h *ReviewsHandler) ListReviews(ctx *gin.Context) {
	reviews, err := h.svc.List(ctx.Request.Context())
	if err != nil {
		RespondServiceError(ctx, err, "Could not list reviews")
		return
	}

	RespondCollection(ctx, review.Responses(reviews))
}

func (h *ReviewsHandler) GetReviewByID(ctx *gin.Context) {
	r, err := h.svc.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, err, "Could not fetch review")
		return
	}

	RespondResource(ctx, r.Response())
}

func (h *ReviewsHandler) UpdateReview(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req review.UpdateReviewRequest

	if !BindJSON(ctx, &req) {
		return
	}

	r, err := h.svc.Update(ctx.Request.Context(), actor, ctx.Param("id"), req)
	if err != nil {
		RespondServiceError(ctx, err, "Could not update review")
		return
	}

	ctx.JSON(http.StatusOK, r.Response())
}
