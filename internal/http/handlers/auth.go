package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/hbnb/internal/auth"
	"github.com/geocoder89/hbnb/internal/service"
	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	Login(ctx context.Context, req service.LoginRequest) (auth.Token, error)
}

type AuthHandler struct {
	auth  Authenticator
	users UserService
}

func NewAuthHandler(authenticator Authenticator, users UserService) *AuthHandler {
	return &AuthHandler{auth: authenticator, users: users}
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req service.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	token, err := h.auth.Login(ctx.Request.Context(), req)
	if err != nil {
		RespondServiceError(ctx, err, "Could not log in")
		return
	}

	ctx.Header("Cache-Control", "no-store")
	ctx.JSON(http.StatusOK, token)
}

// Me returns the user behind the bearer token.
func (h *AuthHandler) Me(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	u, err := h.users.Get(ctx.Request.Context(), actor.UserID)
	if err != nil {
		RespondServiceError(ctx, err, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, u.Response())
}
