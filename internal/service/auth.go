package service

import (
	"context"
	"errors"

	"github.com/geocoder89/hbnb/internal/apperr"
	"github.com/geocoder89/hbnb/internal/auth"
	"github.com/geocoder89/hbnb/internal/domain/user"
	"github.com/geocoder89/hbnb/internal/security"
)

type TokenIssuer interface {
	GenerateAccessToken(userID, email string, isAdmin bool) (auth.Token, error)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthService struct {
	users  UserStore
	hasher security.Hasher
	tokens TokenIssuer
}

func NewAuthService(users UserStore, hasher security.Hasher, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Login returns apperr.ErrInvalidCredentials for both an unknown email and a
// wrong password. The unknown email path still pays for one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (auth.Token, error) {
	req.Email = normalizeEmail(req.Email)

	if err := validateStruct(req); err != nil {
		return auth.Token{}, err
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			security.BurnCompare(s.hasher, req.Password)
			return auth.Token{}, apperr.ErrInvalidCredentials
		}
		return auth.Token{}, err
	}

	if !s.hasher.Verify(req.Password, u.PasswordHash) {
		return auth.Token{}, apperr.ErrInvalidCredentials
	}

	return s.tokens.GenerateAccessToken(u.ID, u.Email, u.IsAdmin)
}
