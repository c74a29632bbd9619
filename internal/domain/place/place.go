package place

import (
	"fmt"
	"strconv"

	"github.com/geocoder89/hbnb/internal/apperr"
	"github.com/geocoder89/hbnb/internal/domain/base"
)

type Place struct {
	base.Entity
	OwnerID     string
	Name        string
	Description string
	Price       float64

	// AmenityIDs is a set kept in insertion order.
	AmenityIDs []string
	// ReviewIDs is derived from the reviews store when the place is read.
	ReviewIDs []string
}

var (
	ErrNotFound    = fmt.Errorf("place %w", apperr.ErrNotFound)
	ErrDuplicateID = fmt.Errorf("place %w", apperr.ErrDuplicateID)
	ErrNotOwner    = fmt.Errorf("only the owner may change this place: %w", apperr.ErrForbidden)
)

type CreatePlaceRequest struct {
	Name        string  `json:"name" binding:"required,max=128"`
	Description string  `json:"description" binding:"omitempty,max=1024"`
	Price       float64 `json:"price" binding:"gte=0"`
}

type UpdatePlaceRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=128"`
	Description *string  `json:"description" binding:"omitempty,max=1024"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
}

type Patch struct {
	Name        *string
	Description *string
	Price       *float64
}

func NewFromCreateRequest(ownerID string, req CreatePlaceRequest) Place {
	return Place{
		Entity:      base.New(),
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}
}

func (r UpdatePlaceRequest) Patch() Patch {
	return Patch{Name: r.Name, Description: r.Description, Price: r.Price}
}

func (p *Place) Apply(patch Patch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}

	p.Touch()
}

// AddAmenity reports whether the amenity was new to the place.
func (p *Place) AddAmenity(amenityID string) bool {
	for _, id := range p.AmenityIDs {
		if id == amenityID {
			return false
		}
	}

	p.AmenityIDs = append(p.AmenityIDs, amenityID)
	return true
}

type Response struct {
	base.Response
	OwnerID     string   `json:"owner_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Reviews     []string `json:"reviews"`
	Amenities   []string `json:"amenities"`
}

func (r Response) Version() string {
	return r.Response.Version() + ".r" + strconv.Itoa(len(r.Reviews)) + ".a" + strconv.Itoa(len(r.Amenities))
}

func (p Place) Response() Response {
	return Response{
		Response:    p.Entity.Response(),
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Reviews:     nonNil(p.ReviewIDs),
		Amenities:   nonNil(p.AmenityIDs),
	}
}

func Responses(places []Place) []Response {
	out := make([]Response, 0, len(places))
	for _, p := range places {
		out = append(out, p.Response())
	}
	return out
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
