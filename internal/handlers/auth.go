package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"arcade-rooms-backend/internal/models"
	"arcade-rooms-backend/internal/services"
)

const registrationBonus = 1000

type AuthHandler struct {
	store      *services.UserStore
	jwtService *services.JWTService
}

func NewAuthHandler(store *services.UserStore, jwtService *services.JWTService) *AuthHandler {
	return &AuthHandler{store: store, jwtService: jwtService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	user := &models.User{
		ID:         models.GenerateUserID(),
		Username:   req.Username,
		Password:   string(hash),
		Name:       req.Name,
		Role:       models.RoleUser,
		Points:     registrationBonus,
		IsActive:   true,
		CreateTime: models.Timestamp(time.Now()),
	}

	if err := h.store.Create(user); err != nil {
		if errors.Is(err, services.ErrUserExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	log.Printf("New user registered: %s", user.Username)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"user":    user.Public(),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	user, err := h.store.GetByUsername(req.Username)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password"})
		return
	}

	if user.Banned {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is banned"})
		return
	}

	token, err := h.jwtService.GenerateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	log.Printf("User logged in: %s", user.Username)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user.Public(),
	})
}
