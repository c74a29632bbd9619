package service

import (
	"context"
	"errors"

	"github.com/geocoder89/hbnb/internal/apperr"
	"github.com/geocoder89/hbnb/internal/domain/review"
	"github.com/geocoder89/hbnb/internal/domain/user"
	"github.com/geocoder89/hbnb/internal/security"
)

type UserService struct {
	users   UserStore
	reviews ReviewStore
	hasher  security.Hasher
}

func NewUserService(users UserStore, reviews ReviewStore, hasher security.Hasher) *UserService {
	return &UserService{users: users, reviews: reviews, hasher: hasher}
}

// Create validates the request, rejects an email that is already registered
// and stores the user with a hashed password.
func (s *UserService) Create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	req.Email = normalizeEmail(req.Email)

	if err := validateStruct(req); err != nil {
		return user.User{}, err
	}

	_, err := s.users.GetByEmail(ctx, req.Email)
	if err == nil {
		return user.User{}, user.ErrEmailTaken
	}
	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, err
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return user.User{}, err
	}

	// the store checks the email again under its own lock / unique index
	created, err := s.users.Create(ctx, user.New(req.Email, hash, req.FirstName, req.LastName))
	if err != nil {
		return user.User{}, err
	}

	created.ReviewIDs = []string{}
	return created, nil
}

func (s *UserService) Get(ctx context.Context, id string) (user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	return s.withReviews(ctx, u)
}

func (s *UserService) List(ctx context.Context) ([]user.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	all, err := s.reviews.List(ctx)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string][]string)
	for _, r := range all {
		byUser[r.UserID] = append(byUser[r.UserID], r.ID)
	}

	for i := range users {
		users[i].ReviewIDs = byUser[users[i].ID]
	}

	return users, nil
}

// Update applies a partial update for the account holder or an admin. Only
// fields present in req change.
func (s *UserService) Update(ctx context.Context, actor Actor, id string, req user.UpdateUserRequest) (user.User, error) {
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
	}

	if err := validateStruct(req); err != nil {
		return user.User{}, err
	}

	if !actor.canModify(id) {
		return user.User{}, user.ErrNotSelf
	}

	current, err := s.users.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	patch := user.Patch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	if req.Email != nil && *req.Email != current.Email {
		owner, err := s.users.GetByEmail(ctx, *req.Email)
		if err == nil && owner.ID != id {
			return user.User{}, user.ErrEmailTaken
		}
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			return user.User{}, err
		}
		patch.Email = req.Email
	}

	if req.Password != nil {
		hash, err := s.hashPassword(*req.Password)
		if err != nil {
			return user.User{}, err
		}
		patch.PasswordHash = &hash
	}

	updated, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return user.User{}, err
	}

	return s.withReviews(ctx, updated)
}

// hashPassword reports bcrypt's byte limit as a field problem; the validator
// counts characters, not bytes.
func (s *UserService) hashPassword(plain string) (string, error) {
	hash, err := s.hasher.Hash(plain)
	if errors.Is(err, security.ErrPasswordTooLong) {
		return "", apperr.Invalid("password", "max", "must be at most 72 bytes")
	}
	return hash, err
}

func (s *UserService) withReviews(ctx context.Context, u user.User) (user.User, error) {
	reviews, err := s.reviews.ListByUser(ctx, u.ID)
	if err != nil {
		return user.User{}, err
	}

	u.ReviewIDs = review.IDs(reviews)
	return u, nil
}
