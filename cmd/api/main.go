package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"arcade-rooms-backend/internal/config"
	"arcade-rooms-backend/internal/handlers"
	"arcade-rooms-backend/internal/middleware"
	"arcade-rooms-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := services.NewUserStore(cfg.DataFile)
	if err != nil {
		log.Fatalf("Failed to open user store: %v", err)
	}
	if err := store.EnsureAdmin(); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	// Rate limiting is optional; without Redis every request goes through.
	var redisService *services.RedisService
	if cfg.RedisURL != "" {
		redisService, err = services.NewRedisService(cfg)
		if err != nil {
			log.Printf("Redis unavailable, rate limiting disabled: %v", err)
		} else {
			defer redisService.Close()
		}
	}

	jwtService := services.NewJWTService(cfg)
	ledger := services.NewLedger(store)
	gameEngine := services.NewGameEngine(store, ledger)
	registry := services.NewRoomRegistry(store, ledger)

	wsHandler := handlers.NewWebSocketHandler(store, ledger, registry)
	gameEngine.SetBroadcaster(wsHandler)
	registry.SetBroadcaster(wsHandler)

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			registry.CleanupStale(10 * time.Minute)
		}
	}()

	authHandler := handlers.NewAuthHandler(store, jwtService)
	userHandler := handlers.NewUserHandler(store, ledger, wsHandler)
	gameHandler := handlers.NewGameHandler(gameEngine)
	adminHandler := handlers.NewAdminHandler(store, ledger, wsHandler)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.POST("/api/register", authHandler.Register)
	router.POST("/api/login", authHandler.Login)
	router.GET("/api/games/dice/leaderboard", gameHandler.GetDiceLeaderboard)
	router.GET("/api/online-users", userHandler.GetOnlineUsers)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	protected.Use(middleware.RateLimitMiddleware(redisService))
	{
		protected.GET("/user", userHandler.GetCurrentUser)
		protected.PUT("/user", userHandler.UpdateUser)
		protected.GET("/points/history", userHandler.GetPointsHistory)

		protected.GET("/ws", wsHandler.HandleWebSocket)

		games := protected.Group("/games")
		{
			games.POST("/dice/new", gameHandler.PlayDice)
			games.POST("/dice", gameHandler.PlayLegacyDice)
			games.POST("/grandma/play", gameHandler.PlayGrandma)
		}

		shop := protected.Group("/shop")
		{
			shop.POST("/exchange", gameHandler.Exchange)
		}

		dolls := protected.Group("/dolls")
		{
			dolls.GET("", gameHandler.GetDolls)
			dolls.POST("/buy", gameHandler.BuyDoll)
		}

		admin := protected.Group("/admin")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.POST("/users/:username/points", adminHandler.AdjustPoints)
			admin.POST("/users/:username/ban", adminHandler.BanUser)
			admin.DELETE("/users/:username", adminHandler.DeleteUser)
		}
	}

	port := cfg.Port
	if port == "" {
		port = "3000"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
