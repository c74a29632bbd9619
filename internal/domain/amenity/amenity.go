package amenity

import (
	"fmt"

	"github.com/geocoder89/hbnb/internal/apperr"
	"github.com/geocoder89/hbnb/internal/domain/base"
)

type Amenity struct {
	base.Entity
	Name string
}

var (
	ErrNotFound    = fmt.Errorf("amenity %w", apperr.ErrNotFound)
	ErrDuplicateID = fmt.Errorf("amenity %w", apperr.ErrDuplicateID)
)

type CreateAmenityRequest struct {
	Name string `json:"name" binding:"required,max=128"`
}

type UpdateAmenityRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=128"`
}

type Patch struct {
	Name *string
}

func NewFromCreateRequest(req CreateAmenityRequest) Amenity {
	return Amenity{Entity: base.New(), Name: req.Name}
}

func (r UpdateAmenityRequest) Patch() Patch {
	return Patch{Name: r.Name}
}

func (a *Amenity) Apply(p Patch) {
	if p.Name != nil {
		a.Name = *p.Name
	}

	a.Touch()
}

type Response struct {
	base.Response
	Name string `json:"name"`
}

func (a Amenity) Response() Response {
	return Response{Response: a.Entity.Response(), Name: a.Name}
}

func Responses(amenities []Amenity) []Response {
	out := make([]Response, 0, len(amenities))
	for _, a := range amenities {
		out = append(out, a.Response())
	}
	return out
}
