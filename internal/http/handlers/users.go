package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/hbnb/internal/domain/user"
	"github.com/geocoder89/hbnb/internal/service"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	Create(ctx context.Context, req user.CreateUserRequest) (user.User, error)
	Get(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, actor service.Actor, id string, req user.UpdateUserRequest) (user.User, error)
}

type UsersHandler struct {
	svc UserService
}

func NewUsersHandler(svc UserService) *UsersHandler {
	return &UsersHandler{svc: svc}
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.svc.Create(ctx.Request.Context(), req)
	if err != nil {
		RespondServiceError(ctx, err, "Could not create user")
		return
	}

	ctx.Header("Location", "/users/"+u.ID)
	ctx.JSON(http.StatusCreated, u.Response())
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	users, err := h.svc.List(ctx.Request.Context())
	if err != nil {
		RespondServiceError(ctx, err, "Could not list users")
		return
	}

	RespondCollection(ctx, user.Responses(users))
}

func (h *UsersHandler) GetUserByID(ctx *gin.Context) {
	u, err := h.svc.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, err, "Could not fetch user")
		return
	}

	RespondResource(ctx, u.Response())
}

// UpdateUser lets users change their own account; admins may change any.
func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req user.UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.svc.Update(ctx.Request.Context(), actor, ctx.Param("id"), req)
	if err != nil {
		RespondServiceError(ctx, err, "Could not update user")
		return
	}

	ctx.JSON(http.StatusOK, u.Response())
}
