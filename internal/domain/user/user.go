package user

import (
	"fmt"
	"strconv"

	"github.com/geocoder89/hbnb/internal/apperr"
	"github.com/geocoder89/hbnb/internal/domain/base"
)

type User struct {
	base.Entity
	Email        string
	PasswordHash string `json:"-"` // never expose hash in JSON
	FirstName    string
	LastName     string
	IsAdmin      bool

	// ReviewIDs is filled by the service from the reviews store; it is not persisted here.
	ReviewIDs []string `json:"-"`
}

var (
	ErrNotFound    = fmt.Errorf("user %w", apperr.ErrNotFound)
	ErrEmailTaken  = fmt.Errorf("email already in use: %w", apperr.ErrConflict)
	ErrDuplicateID = fmt.Errorf("user %w", apperr.ErrDuplicateID)
	ErrNotSelf     = fmt.Errorf("only the account holder may change this user: %w", apperr.ErrForbidden)
)

type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email,max=128"`
	Password  string `json:"password" binding:"required,max=72"`
	FirstName string `json:"first_name" binding:"omitempty,max=128"`
	LastName  string `json:"last_name" binding:"omitempty,max=128"`
}

// UpdateUserRequest is a partial update: nil fields are left untouched.
type UpdateUserRequest struct {
	Email     *string `json:"email" binding:"omitempty,email,max=128"`
	Password  *string `json:"password" binding:"omitempty,min=1,max=72"`
	FirstName *string `json:"first_name" binding:"omitempty,max=128"`
	LastName  *string `json:"last_name" binding:"omitempty,max=128"`
}

// Patch is what the store applies. The password arrives here already hashed.
type Patch struct {
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	IsAdmin      *bool
}

func New(email, passwordHash, firstName, lastName string) User {
	return User{
		Entity:       base.New(),
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
	}
}

// Apply copies the fields present in p and refreshes UpdatedAt.
func (u *User) Apply(p Patch) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}

	u.Touch()
}

// Response has no credential field at all, so no code path can leak the hash.
type Response struct {
	base.Response
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	IsAdmin   bool     `json:"is_admin"`
	Reviews   []string `json:"reviews"`
}

func (u User) Response() Response {
	reviews := u.ReviewIDs
	if reviews == nil {
		reviews = []string{}
	}

	return Response{
		Response:  u.Entity.Response(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsAdmin:   u.IsAdmin,
		Reviews:   reviews,
	}
}

// Version also covers the derived review ids, which change without touching
// the user. Reviews are never removed, so the count is enough.
func (r Response) Version() string {
	return r.Response.Version() + ".r" + strconv.Itoa(len(r.Reviews))
}

func Responses(users []User) []Response {
	out := make([]Response, 0, len(users))
	for _, u := range users {
		out = append(out, u.Response())
	}
	return out
}
