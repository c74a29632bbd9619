package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/hbnb/internal/auth"
	"github.com/geocoder89/hbnb/internal/cache"
	"github.com/geocoder89/hbnb/internal/config"
	"github.com/geocoder89/hbnb/internal/db"
	apphttp "github.com/geocoder89/hbnb/internal/http"
	"github.com/geocoder89/hbnb/internal/repo/memory"
	"github.com/geocoder89/hbnb/internal/security"
	"github.com/geocoder89/hbnb/internal/service"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() config.Config {
	return config.Config{
		Env:                 "test",
		StoreDriver:         config.StoreMemory,
		CacheDriver:         config.CacheMemory,
		CacheTTL:            time.Minute,
		JWTSecret:           "test-secret-key",
		JWTAccessTTLMinutes: 60,
		AdminEmail:          "admin@example.com",
		AdminPassword:       "admin-pass",
		AdminFirstName:      "Admin",
		LoginRateLimit:      100,
		MaxBodyBytes:        1 << 20,
	}
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := memory.NewUsersRepo()
	places := memory.NewPlacesRepo()
	reviews := memory.NewReviewsRepo()
	amenities := memory.NewAmenitiesRepo()

	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	if err := db.EnsureAdminUser(t.Context(), users, hasher, cfg); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	loader := cache.NewLoader(cache.New(cfg.CacheTTL, nil), cfg.CacheTTL)
	tokens := auth.NewManager(cfg.Secret(), cfg.AccessTTL())

	return apphttp.NewRouter(logger, cfg, apphttp.Deps{
		Users:     service.NewUserService(users, reviews, hasher),
		Places:    service.NewPlaceService(places, users, reviews, amenities, loader),
		Reviews:   service.NewReviewService(reviews, places, users, loader),
		Amenities: service.NewAmenityService(amenities, loader),
		Auth:      service.NewAuthService(users, hasher, tokens),
		Tokens:    tokens,
		Ping:      users.Ping,
	})
}

type client struct {
	t      *testing.T
	router http.Handler
}

func (c client) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			c.t.Fatalf("decode %s %s: %v body=%s", method, path, err, w.Body.String())
		}
	}
	return w, out
}

func (c client) expect(w *httptest.ResponseRecorder, status int) {
	c.t.Helper()
	if w.Code != status {
		c.t.Fatalf("expected %d, got %d body=%s", status, w.Code, w.Body.String())
	}
}

func (c client) login(email, password string) string {
	c.t.Helper()

	w, body := c.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	c.expect(w, http.StatusOK)

	token, _ := body["access_token"].(string)
	if token == "" {
		c.t.Fatalf("no access token in %v", body)
	}
	return token
}

func assertNoPassword(t *testing.T, body map[string]any) {
	t.Helper()
	for _, key := range []string{"password", "password_hash"} {
		if _, ok := body[key]; ok {
			t.Fatalf("user body contains %q: %v", key, body)
		}
	}
}

func TestUserLifecycle(t *testing.T) {
	c := client{t: t, router: setupRouter(t)}

	w, created := c.do(http.MethodPost, "/users/", "", map[string]string{
		"email":      "a@b.com",
		"password":   "secret",
		"first_name": "A",
	})
	c.expect(w, http.StatusCreated)
	assertNoPassword(t, created)

	id, _ := created["id"].(string)
	if id == "" || created["email"] != "a@b.com" {
		t.Fatalf("unexpected create body: %v", created)
	}

	w, tok := c.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@b.com", "password": "secret"})
	c.expect(w, http.StatusOK)
	if tok["access_token"] == "" || tok["token_type"] != "Bearer" {
		t.Fatalf("unexpected token body: %v", tok)
	}

	w, wrongPw := c.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@b.com", "password": "nope"})
	c.expect(w, http.StatusUnauthorized)

	w, unknown := c.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "x@b.com", "password": "secret"})
	c.expect(w, http.StatusUnauthorized)

	if wrongPw["error"].(map[string]any)["code"] != unknown["error"].(map[string]any)["code"] {
		t.Fatalf("login failures differ: %v vs %v", wrongPw, unknown)
	}

	w, got := c.do(http.MethodGet, "/users/"+id, "", nil)
	c.expect(w, http.StatusOK)
	assertNoPassword(t, got)
	if got["email"] != "a@b.com" || got["first_name"] != "A" {
		t.Fatalf("unexpected get body: %v", got)
	}

	self := c.login("a@b.com", "secret")

	w, _ = c.do(http.MethodPut, "/users/"+id, "", map[string]string{"first_name": "B"})
	c.expect(w, http.StatusUnauthorized)

	w, updated := c.do(http.MethodPut, "/users/"+id, self, map[string]string{"first_name": "B"})
	c.expect(w, http.StatusOK)
	assertNoPassword(t, updated)
	if updated["first_name"] != "B" || updated["email"] != "a@b.com" {
		t.Fatalf("unexpected update body: %v", updated)
	}
	if updated["updated_at"] == created["updated_at"] {
		t.Fatalf("updated_at did not change: %v", updated["updated_at"])
	}
	if updated["created_at"] != created["created_at"] {
		t.Fatalf("created_at changed: %v -> %v", created["created_at"], updated["created_at"])
	}

	w, _ = c.do(http.MethodPost, "/users", "", map[string]string{"email": "A@B.com", "password": "other"})
	c.expect(w, http.StatusConflict)

	w, _ = c.do(http.MethodPost, "/users/", "", map[string]string{"first_name": "no creds"})
	c.expect(w, http.StatusBadRequest)

	w, missing := c.do(http.MethodGet, "/users/missing", "", nil)
	c.expect(w, http.StatusNotFound)
	if rid := w.Header().Get("X-Request-Id"); rid == "" || missing["error"].(map[string]any)["requestId"] != rid {
		t.Fatalf("error body requestId does not match header %q: %v", rid, missing)
	}

	w, _ = c.do(http.MethodPut, "/users/missing", c.login("admin@example.com", "admin-pass"), map[string]string{"first_name": "B"})
	c.expect(w, http.StatusNotFound)

	w, me := c.do(http.MethodGet, "/auth/me", self, nil)
	c.expect(w, http.StatusOK)
	if me["id"] != id {
		t.Fatalf("unexpected me: %v", me)
	}
}

func TestUserUpdateCannotTakeOverAnotherAccount(t *testing.T) {
	c := client{t: t, router: setupRouter(t)}

	w, _ := c.do(http.MethodPost, "/users/", "", map[string]string{"email": "mallory@b.com", "password": "secret"})
	c.expect(w, http.StatusCreated)

	admin := c.login("admin@example.com", "admin-pass")
	w, me := c.do(http.MethodGet, "/auth/me", admin, nil)
	c.expect(w, http.StatusOK)
	adminID := me["id"].(string)

	w, _ = c.do(http.MethodPut, "/users/"+adminID, "", map[string]string{"password": "pwned"})
	c.expect(w, http.StatusUnauthorized)

	w, _ = c.do(http.MethodPut, "/users/"+adminID, c.login("mallory@b.com", "secret"), map[string]string{"password": "pwned", "email": "mallory2@b.com"})
	c.expect(w, http.StatusForbidden)

	w, _ = c.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "admin@example.com", "password": "pwned"})
	c.expect(w, http.StatusUnauthorized)

	c.login("admin@example.com", "admin-pass")
}

func TestPlacesReviewsAmenities(t *testing.T) {
	c := client{t: t, router: setupRouter(t)}

	for _, email := range []string{"owner@b.com", "guest@b.com"} {
		w, _ := c.do(http.MethodPost, "/users/", "", map[string]string{"email": email, "password": "secret"})
		c.expect(w, http.StatusCreated)
	}

	owner := c.login("owner@b.com", "secret")
	guest := c.login("guest@b.com", "secret")
	admin := c.login("admin@example.com", "admin-pass")

	w, _ := c.do(http.MethodPost, "/places/", "", map[string]any{"name": "Cabin", "price": 100})
	c.expect(w, http.StatusUnauthorized)

	w, p := c.do(http.MethodPost, "/places/", owner, map[string]any{"name": "Cabin", "price": 100})
	c.expect(w, http.StatusCreated)
	placeID := p["id"].(string)

	w, _ = c.do(http.MethodPut, "/places/"+placeID, guest, map[string]any{"name": "Mine now"})
	c.expect(w, http.StatusForbidden)

	w, p = c.do(http.MethodPut, "/places/"+placeID, admin, map[string]any{"price": 80})
	c.expect(w, http.StatusOK)
	if p["price"].(float64) != 80 || p["name"] != "Cabin" {
		t.Fatalf("unexpected place: %v", p)
	}

	w, _ = c.do(http.MethodPost, "/amenities/", owner, map[string]any{"name": "Wifi"})
	c.expect(w, http.StatusForbidden)

	w, a := c.do(http.MethodPost, "/amenities/", admin, map[string]any{"name": "Wifi"})
	c.expect(w, http.StatusCreated)
	amenityID := a["id"].(string)

	for i := 0; i < 2; i++ {
		w, p = c.do(http.MethodPost, "/places/"+placeID+"/amenities/"+amenityID, owner, nil)
		c.expect(w, http.StatusOK)
	}
	if ids := p["amenities"].([]any); len(ids) != 1 || ids[0] != amenityID {
		t.Fatalf("expected one amenity, got %v", ids)
	}

	w, _ = c.do(http.MethodPost, "/reviews/", owner, map[string]any{"place_id": placeID, "text": "mine", "rating": 5})
	c.expect(w, http.StatusBadRequest)

	w, _ = c.do(http.MethodPost, "/reviews/", guest, map[string]any{"place_id": placeID, "text": "too good", "rating": 6})
	c.expect(w, http.StatusBadRequest)

	w, r := c.do(http.MethodPost, "/reviews", guest, map[string]any{"place_id": placeID, "text": "great", "rating": 5})
	c.expect(w, http.StatusCreated)
	reviewID := r["id"].(string)

	w, _ = c.do(http.MethodPut, "/reviews/"+reviewID, owner, map[string]any{"rating": 1})
	c.expect(w, http.StatusForbidden)

	w, r = c.do(http.MethodPut, "/reviews/"+reviewID, guest, map[string]any{"rating": 4})
	c.expect(w, http.StatusOK)
	if r["rating"].(float64) != 4 || r["text"] != "great" {
		t.Fatalf("unexpected review: %v", r)
	}

	w, p = c.do(http.MethodGet, "/places/"+placeID, "", nil)
	c.expect(w, http.StatusOK)
	if ids := p["reviews"].([]any); len(ids) != 1 || ids[0] != reviewID {
		t.Fatalf("expected place reviews [%s], got %v", reviewID, ids)
	}

	w, _ = c.do(http.MethodGet, "/places/"+placeID+"/reviews", "", nil)
	c.expect(w, http.StatusOK)

	var list []map[string]any
	w, _ = c.do(http.MethodGet, "/places", "", nil)
	c.expect(w, http.StatusOK)
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || len(list[0]["reviews"].([]any)) != 1 {
		t.Fatalf("unexpected place list: %v", list)
	}

	etag := w.Header().Get("ETag")
	req := httptest.NewRequest(http.MethodGet, "/places/", nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Fatalf("expected 304 for unchanged list, got %d", rec.Code)
	}
}

func TestHealthAndDocs(t *testing.T) {
	c := client{t: t, router: setupRouter(t)}

	for _, path := range []string{"/healthz", "/readyz", "/docs", "/docs/openapi.yaml"} {
		w, _ := c.do(http.MethodGet, path, "", nil)
		c.expect(w, http.StatusOK)
	}

	w, body := c.do(http.MethodGet, "/nope", "", nil)
	c.expect(w, http.StatusNotFound)
	if body["error"] == nil {
		t.Fatalf("expected error envelope, got %v", body)
	}
}
