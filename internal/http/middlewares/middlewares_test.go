package middlewares_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/hbnb/internal/auth"
	"github.com/geocoder89/hbnb/internal/http/middlewares"
	"github.com/geocoder89/hbnb/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	claims *auth.Claims
	err    error
}

func (f fakeVerifier) VerifyAccessToken(string) (*auth.Claims, error) {
	return f.claims, f.err
}

type errorBody struct {
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func claimsFor(userID string, admin bool) *auth.Claims {
	return &auth.Claims{
		Email:            "a@b.com",
		IsAdmin:          admin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
	}
}

func newAuthRouter(v middlewares.TokenVerifier) *gin.Engine {
	m := middlewares.NewAuthMiddleware(v)

	r := gin.New()
	r.GET("/me", m.RequireAuth(), func(c *gin.Context) {
		id, _ := middlewares.UserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "admin": middlewares.IsAdminFromContext(c)})
	})
	r.GET("/admin", m.RequireAuth(), m.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, method, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name     string
		verifier fakeVerifier
		header   string
		want     int
	}{
		{"missing header", fakeVerifier{claims: claimsFor("u1", false)}, "", http.StatusUnauthorized},
		{"wrong scheme", fakeVerifier{claims: claimsFor("u1", false)}, "Basic abc", http.StatusUnauthorized},
		{"empty token", fakeVerifier{claims: claimsFor("u1", false)}, "Bearer  ", http.StatusUnauthorized},
		{"rejected token", fakeVerifier{err: errors.New("expired")}, "Bearer abc", http.StatusUnauthorized},
		{"valid token", fakeVerifier{claims: claimsFor("u1", false)}, "Bearer abc", http.StatusOK},
		{"lowercase scheme", fakeVerifier{claims: claimsFor("u1", false)}, "bearer abc", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(newAuthRouter(tt.verifier), http.MethodGet, "/me", tt.header)
			if w.Code != tt.want {
				t.Fatalf("got %d want %d body=%s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestRequireAuth_StashesIdentity(t *testing.T) {
	w := do(newAuthRouter(fakeVerifier{claims: claimsFor("u1", true)}), http.MethodGet, "/me", "Bearer abc")

	var body struct {
		ID    string `json:"id"`
		Admin bool   `json:"admin"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != "u1" || !body.Admin {
		t.Fatalf("unexpected identity: %+v", body)
	}
}

func TestRequireAdmin(t *testing.T) {
	w := do(newAuthRouter(fakeVerifier{claims: claimsFor("u1", false)}), http.MethodGet, "/admin", "Bearer abc")
	if w.Code != http.StatusForbidden {
		t.Fatalf("non admin: got %d", w.Code)
	}

	var body errorBody
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Error.Code != "forbidden" {
		t.Fatalf("unexpected code %q", body.Error.Code)
	}

	w = do(newAuthRouter(fakeVerifier{claims: claimsFor("u1", true)}), http.MethodGet, "/admin", "Bearer abc")
	if w.Code != http.StatusNoContent {
		t.Fatalf("admin: got %d", w.Code)
	}
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	rl := middlewares.NewRateLimiter(2, time.Minute)

	r := gin.New()
	r.POST("/login", rl.RateLimiterMiddleware(middlewares.KeyByIP), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		if w := do(r, http.MethodPost, "/login", ""); w.Code != http.StatusOK {
			t.Fatalf("request %d: got %d", i, w.Code)
		}
	}

	w := do(r, http.MethodPost, "/login", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}
}

func TestRequireJSON(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequireJSON())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name string
		ct   string
		body string
		want int
	}{
		{"json", "application/json", `{}`, http.StatusOK},
		{"json with charset", "application/json; charset=utf-8", `{}`, http.StatusOK},
		{"form", "application/x-www-form-urlencoded", `a=b`, http.StatusUnsupportedMediaType},
		{"no body", "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/x", bytes.NewBufferString(tt.body))
			if tt.ct != "" {
				req.Header.Set("Content-Type", tt.ct)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("got %d want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRequestID_EchoesOrGenerates(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(middlewares.CtxRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("X-Request-Id") != "abc-123" || w.Body.String() != "abc-123" {
		t.Fatalf("request id not propagated: header=%q body=%q", w.Header().Get("X-Request-Id"), w.Body.String())
	}

	w = do(r, http.MethodGet, "/x", "")
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected a generated request id")
	}
}

func TestCORS_PreflightAndOrigins(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.CORSMiddleware([]string{"https://app.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight: got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Fatalf("allowed origin not echoed")
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unknown origin must not be allowed")
	}
}

func TestRequestLogger_RecordsCarryRequestAndCaller(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(observability.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	m := middlewares.NewAuthMiddleware(fakeVerifier{claims: claimsFor("u-1", false)})

	r := gin.New()
	r.Use(middlewares.RequestID(), middlewares.RequestLogger(log))
	r.GET("/x", m.RequireAuth(), func(c *gin.Context) {
		log.InfoContext(c.Request.Context(), "handler ran")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-7")
	req.Header.Set("Authorization", "Bearer tok")
	r.ServeHTTP(httptest.NewRecorder(), req)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected handler and access log lines, got %q", buf.String())
	}

	for _, line := range lines {
		var rec map[string]any
		if err := json.Unmarshal(line, &rec); err != nil {
			t.Fatalf("log line is not json: %v", err)
		}
		if rec["request_id"] != "req-7" || rec["user_id"] != "u-1" {
			t.Fatalf("record missing request fields: %v", rec)
		}
	}
}
