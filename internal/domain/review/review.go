package review

import (
	"fmt"

	"github.com/geocoder89/hbnb/internal/apperr"
	"github.com/geocoder89/hbnb/internal/domain/base"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	base.Entity
	UserID  string
	PlaceID string
	Text    string
	Rating  int
}

var (
	ErrNotFound    = fmt.Errorf("review %w", apperr.ErrNotFound)
	ErrDuplicateID = fmt.Errorf("review %w", apperr.ErrDuplicateID)
	ErrNotAuthor   = fmt.Errorf("only the author may change this review: %w", apperr.ErrForbidden)
)

type CreateReviewRequest struct {
	PlaceID string `json:"place_id" binding:"required"`
	Text    string `json:"text" binding:"required,max=2048"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
}

type UpdateReviewRequest struct {
	Text   *string `json:"text" binding:"omitempty,min=1,max=2048"`
	Rating *int    `json:"rating" binding:"omitempty,min=1,max=5"`
}

type Patch struct {
	Text   *string
	Rating *int
}

func NewFromCreateRequest(userID string, req CreateReviewRequest) Review {
	return Review{
		Entity:  base.New(),
		UserID:  userID,
		PlaceID: req.PlaceID,
		Text:    req.Text,
		Rating:  req.Rating,
	}
}

func (r UpdateReviewRequest) Patch() Patch {
	return Patch{Text: r.Text, Rating: r.Rating}
}

func (r *Review) Apply(p Patch) {
	if p.Text != nil {
		r.Text = *p.Text
	}
	if p.Rating != nil {
		r.Rating = *p.Rating
	}

	r.Touch()
}

type Response struct {
	base.Response
	UserID  string `json:"user_id"`
	PlaceID string `json:"place_id"`
	Text    string `json:"text"`
	Rating  int    `json:"rating"`
}

func (r Review) Response() Response {
	return Response{
		Response: r.Entity.Response(),
		UserID:   r.UserID,
		PlaceID:  r.PlaceID,
		Text:     r.Text,
		Rating:   r.Rating,
	}
}

func Responses(reviews []Review) []Response {
	out := make([]Response, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, r.Response())
	}
	return out
}

func IDs(reviews []Review) []string {
	ids := make([]string, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.ID)
	}
	return ids
}
