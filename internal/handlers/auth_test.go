package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"arcade-rooms-backend/internal/config"
	"arcade-rooms-backend/internal/handlers"
	"arcade-rooms-backend/internal/middleware"
	"arcade-rooms-backend/internal/models"
	"arcade-rooms-backend/internal/services"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *services.UserStore) {
	gin.SetMode(gin.TestMode)

	store, err := services.NewUserStore("")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	jwtService := services.NewJWTService(&config.Config{JWTSecret: "test-secret"})
	authHandler := handlers.NewAuthHandler(store, jwtService)

	router := gin.New()
	router.POST("/api/register", authHandler.Register)
	router.POST("/api/login", authHandler.Login)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	protected.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": c.GetString("username")})
	})

	return router, store
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterGrantsBonus(t *testing.T) {
	router, store := newAuthRouter(t)

	rec := postJSON(t, router, "/api/register", gin.H{
		"username": "alice",
		"password": "secret1",
		"name":     "Alice",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	user, err := store.GetByUsername("alice")
	if err != nil {
		t.Fatalf("User not stored: %v", err)
	}
	if user.Points != 1000 {
		t.Errorf("Expected the 1000 point bonus, got %d", user.Points)
	}
	if user.Password == "secret1" {
		t.Error("Password stored in plain text")
	}

	rec = postJSON(t, router, "/api/register", gin.H{
		"username": "alice",
		"password": "other",
		"name":     "Other",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Duplicate username should be rejected, got %d", rec.Code)
	}
}

func TestLoginFlow(t *testing.T) {
	router, store := newAuthRouter(t)

	postJSON(t, router, "/api/register", gin.H{
		"username": "bob",
		"password": "secret1",
		"name":     "Bob",
	})

	rec := postJSON(t, router, "/api/login", gin.H{
		"username": "bob",
		"password": "wrong",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Wrong password should fail, got %d", rec.Code)
	}

	rec = postJSON(t, router, "/api/login", gin.H{
		"username": "bob",
		"password": "secret1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("Login should return a token")
	}

	// The token is accepted by the auth middleware.
	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	whoami := httptest.NewRecorder()
	router.ServeHTTP(whoami, req)
	if whoami.Code != http.StatusOK {
		t.Fatalf("Token rejected: %d", whoami.Code)
	}

	// Banned accounts cannot log in.
	if _, err := store.Update("bob", func(u *models.User) error {
		u.Banned = true
		return nil
	}); err != nil {
		t.Fatalf("Failed to ban: %v", err)
	}
	rec = postJSON(t, router, "/api/login", gin.H{
		"username": "bob",
		"password": "secret1",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("Banned login should be 403, got %d", rec.Code)
	}
}
