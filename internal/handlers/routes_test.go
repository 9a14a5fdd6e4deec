package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"arcade-rooms-backend/internal/config"
	"arcade-rooms-backend/internal/handlers"
	"arcade-rooms-backend/internal/middleware"
	"arcade-rooms-backend/internal/services"
)

// newAPIRouter registers the public and protected routes the way the server
// does at startup.
func newAPIRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	store, err := services.NewUserStore("")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	jwtService := services.NewJWTService(&config.Config{JWTSecret: "test-secret"})
	ledger := services.NewLedger(store)
	gameEngine := services.NewGameEngine(store, ledger)
	registry := services.NewRoomRegistry(store, ledger)

	wsHandler := handlers.NewWebSocketHandler(store, ledger, registry)
	userHandler := handlers.NewUserHandler(store, ledger, wsHandler)
	gameHandler := handlers.NewGameHandler(gameEngine)

	router := gin.New()
	router.GET("/api/games/dice/leaderboard", gameHandler.GetDiceLeaderboard)
	router.GET("/api/online-users", userHandler.GetOnlineUsers)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.GET("/user", userHandler.GetCurrentUser)
		games := protected.Group("/games")
		{
			games.POST("/dice/new", gameHandler.PlayDice)
		}
	}

	return router
}

func TestLeaderboardIsPublic(t *testing.T) {
	router := newAPIRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/games/dice/leaderboard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Anonymous leaderboard request should get 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/online-users", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Anonymous online-users request should get 200, got %d", rec.Code)
	}
}

func TestGameRoutesRequireAuth(t *testing.T) {
	router := newAPIRouter(t)

	for _, path := range []string{"/api/user"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Anonymous %s should get 401, got %d", path, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/games/dice/new", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Anonymous dice play should get 401, got %d", rec.Code)
	}
}
