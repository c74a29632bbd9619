package handlers

import (
	"github.com/geocoder89/hbnb/internal/http/middlewares"
	"github.com/geocoder89/hbnb/internal/service"
	"github.com/gin-gonic/gin"
)

// actorFrom reads the identity RequireAuth stored on the context. It writes a
// 401 and returns false when there is none.
func actorFrom(ctx *gin.Context) (service.Actor, bool) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return service.Actor{}, false
	}

	return service.Actor{UserID: id, IsAdmin: middlewares.IsAdminFromContext(ctx)}, true
}
