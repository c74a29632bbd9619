package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/hbnb/internal/auth"
	"github.com/geocoder89/hbnb/internal/cache"
	"github.com/geocoder89/hbnb/internal/config"
	"github.com/geocoder89/hbnb/internal/db"
	httpx "github.com/geocoder89/hbnb/internal/http"
	"github.com/geocoder89/hbnb/internal/observability"
	"github.com/geocoder89/hbnb/internal/repo/memory"
	"github.com/geocoder89/hbnb/internal/repo/postgres"
	"github.com/geocoder89/hbnb/internal/security"
	"github.com/geocoder89/hbnb/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type userStore interface {
	service.UserStore
	Ping(ctx context.Context) error
}

type stores struct {
	users     userStore
	places    service.PlaceStore
	reviews   service.ReviewStore
	amenities service.AmenityStore
	close     func()
}

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("api exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, "hbnb-api", cfg.Env, cfg.OTELEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		_ = shutdownTracer(sctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	st, err := openStores(cfg, log, prom)
	if err != nil {
		return err
	}
	defer st.close()

	hasher := security.NewBcryptHasher(cfg.BcryptCost)

	seedCtx, cancel := config.WithTimeout(10 * time.Second)
	err = db.EnsureAdminUser(seedCtx, st.users, hasher, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	cacheStore, closeCache, err := openCache(cfg, log, prom)
	if err != nil {
		return err
	}
	defer closeCache()

	loader := cache.NewLoader(cacheStore, cfg.CacheTTL)
	jwtManager := auth.NewManager(cfg.Secret(), cfg.AccessTTL())

	users := service.NewUserService(st.users, st.reviews, hasher)

	router := httpx.NewRouter(log, cfg, httpx.Deps{
		Users:     users,
		Places:    service.NewPlaceService(st.places, st.users, st.reviews, st.amenities, loader),
		Reviews:   service.NewReviewService(st.reviews, st.places, st.users, loader),
		Amenities: service.NewAmenityService(st.amenities, loader),
		Auth:      service.NewAuthService(st.users, hasher, jwtManager),
		Tokens:    jwtManager,
		Ping:      st.users.Ping,
		Prom:      prom,
		Gatherer:  reg,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver, "cache", cfg.CacheDriver)

		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("server shutting down")

	shutdownCtx, cancelShutdown := config.WithTimeout(10 * time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}

func openStores(cfg config.Config, log *slog.Logger, prom *observability.Prom) (stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn("using in-memory storage; data is lost on restart")

		return stores{
			users:     memory.NewUsersRepo(),
			places:    memory.NewPlacesRepo(),
			reviews:   memory.NewReviewsRepo(),
			amenities: memory.NewAmenitiesRepo(),
			close:     func() {},
		}, nil
	}

	if err := db.Migrate(cfg.DBURL, log); err != nil {
		return stores{}, err
	}

	pool, err := db.NewPool(cfg.DBURL, cfg.DBMaxConns)
	if err != nil {
		return stores{}, fmt.Errorf("connect postgres: %w", err)
	}

	return stores{
		users:     postgres.NewUsersRepo(pool, prom),
		places:    postgres.NewPlacesRepo(pool, prom),
		reviews:   postgres.NewReviewsRepo(pool, prom),
		amenities: postgres.NewAmenitiesRepo(pool, prom),
		close:     pool.Close,
	}, nil
}

func openCache(cfg config.Config, log *slog.Logger, prom *observability.Prom) (cache.Store, func(), error) {
	if cfg.CacheDriver != config.CacheRedis {
		return cache.New(cfg.CacheTTL, prom), func() {}, nil
	}

	rdb := cache.NewRedis(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, cfg.CacheTTL, prom)

	ctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := rdb.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}

	log.Info("redis cache connected", "addr", cfg.RedisAddr)
	return rdb, func() { _ = rdb.Close() }, nil
}
