package services_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"arcade-rooms-backend/internal/config"
	"arcade-rooms-backend/internal/models"
	"arcade-rooms-backend/internal/services"
)

func newTestJWT(secret string) *services.JWTService {
	return services.NewJWTService(&config.Config{JWTSecret: secret})
}

func TestJWTRoundTrip(t *testing.T) {
	jwtService := newTestJWT("test-secret")

	user := &models.User{
		ID:       "user_123",
		Username: "alice",
		Role:     models.RoleAdmin,
	}

	token, err := jwtService.GenerateToken(user)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := jwtService.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if claims.UserID != "user_123" || claims.Username != "alice" {
		t.Errorf("Claims do not match the user: %+v", claims)
	}
	if claims.Role != models.RoleAdmin {
		t.Errorf("Expected admin role, got %s", claims.Role)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := newTestJWT("secret-a").GenerateToken(&models.User{ID: "u", Username: "bob"})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := newTestJWT("secret-b").ValidateToken(token); err != services.ErrTokenInvalid {
		t.Errorf("Expected ErrTokenInvalid, got %v", err)
	}
}

func TestJWTGarbage(t *testing.T) {
	if _, err := newTestJWT("secret").ValidateToken("not.a.token"); err != services.ErrTokenInvalid {
		t.Errorf("Expected ErrTokenInvalid, got %v", err)
	}
}

func TestJWTExpired(t *testing.T) {
	secret := "test-secret"

	claims := &services.Claims{
		UserID:   "user_123",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	if _, err := newTestJWT(secret).ValidateToken(token); err != services.ErrTokenExpired {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}
