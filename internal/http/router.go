package http

import (
	"context"
	"log/slog"

	"github.com/geocoder89/hbnb/internal/config"
	"github.com/geocoder89/hbnb/internal/http/handlers"
	"github.com/geocoder89/hbnb/internal/http/middlewares"
	"github.com/geocoder89/hbnb/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router needs from the bootstrap.
type Deps struct {
	Users     handlers.UserService
	Places    handlers.PlaceService
	Reviews   handlers.ReviewService
	Amenities handlers.AmenityService
	Auth      handlers.Authenticator
	Tokens    middlewares.TokenVerifier

	// Ping backs /readyz; nil means always ready.
	Ping func(ctx context.Context) error

	// Prom and Gatherer are optional; without them /metrics is not served.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("hbnb-api"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondNotFound(ctx, "Route not found")
	})
	r.NoMethod(func(ctx *gin.Context) {
		handlers.RespondError(ctx, 405, "method_not_allowed", "Method not allowed", nil)
	})

	// health
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	authMW := middlewares.NewAuthMiddleware(deps.Tokens)
	requireAuth := authMW.RequireAuth()
	requireAdmin := authMW.RequireAdmin()

	loginLimiter := middlewares.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow())

	// Wire up handlers
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Users)
	usersHandler := handlers.NewUsersHandler(deps.Users)
	placesHandler := handlers.NewPlacesHandler(deps.Places)
	reviewsHandler := handlers.NewReviewsHandler(deps.Reviews)
	amenitiesHandler := handlers.NewAmenitiesHandler(deps.Amenities)

	authGroup := r.Group("/auth")
	authGroup.POST("/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
	authGroup.GET("/me", requireAuth, authHandler.Me)

	users := r.Group("/users")
	collection(users, "GET", usersHandler.ListUsers)
	collection(users, "POST", usersHandler.CreateUser)
	users.GET("/:id", usersHandler.GetUserByID)
	users.PUT("/:id", requireAuth, usersHandler.UpdateUser)

	places := r.Group("/places")
	collection(places, "GET", placesHandler.ListPlaces)
	collection(places, "POST", requireAuth, placesHandler.CreatePlace)
	places.GET("/:id", placesHandler.GetPlaceByID)
	places.PUT("/:id", requireAuth, placesHandler.UpdatePlace)
	places.GET("/:id/reviews", placesHandler.ListPlaceReviews)
	places.POST("/:id/amenities/:amenity_id", requireAuth, placesHandler.AddAmenity)

	reviews := r.Group("/reviews")
	collection(reviews, "GET", reviewsHandler.ListReviews)
	collection(reviews, "POST", requireAuth, reviewsHandler.CreateReview)
	reviews.GET("/:id", reviewsHandler.GetReviewByID)
	reviews.PUT("/:id", requireAuth, reviewsHandler.UpdateReview)

	amenities := r.Group("/amenities")
	collection(amenities, "GET", amenitiesHandler.ListAmenities)
	collection(amenities, "POST", requireAuth, requireAdmin, amenitiesHandler.CreateAmenity)
	amenities.GET("/:id", amenitiesHandler.GetAmenityByID)
	amenities.PUT("/:id", requireAuth, requireAdmin, amenitiesHandler.UpdateAmenity)

	return r
}

// collection serves a collection route both as /things and /things/ without a redirect.
func collection(g *gin.RouterGroup, method string, h ...gin.HandlerFunc) {
	g.Handle(method, "", h...)
	g.Handle(method, "/", h...)
}
