package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"arcade-rooms-backend/internal/models"
	"arcade-rooms-backend/internal/services"
)

type AdminHandler struct {
	store  *services.UserStore
	ledger *services.Ledger
	hub    *WebSocketHandler
}

func NewAdminHandler(store *services.UserStore, ledger *services.Ledger, hub *WebSocketHandler) *AdminHandler {
	return &AdminHandler{store: store, ledger: ledger, hub: hub}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users := h.store.List()

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"id":         u.ID,
			"username":   u.Username,
			"name":       u.Name,
			"role":       u.Role,
			"points":     u.Points,
			"canes":      u.Canes,
			"banned":     u.Banned,
			"isActive":   u.IsActive,
			"stats":      u.Stats,
			"createTime": u.CreateTime,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"users": out,
		"count": len(out),
	})
}

func (h *AdminHandler) AdjustPoints(c *gin.Context) {
	username := c.Param("username")

	var req models.AdminPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	user, err := h.store.GetByUsername(username)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "admin adjustment"
	}

	upd, err := h.ledger.UpdatePoints(user.ID, req.Amount, reason, map[string]any{
		"adminOperation": true,
		"adminId":        c.GetString("user_id"),
	})
	if err != nil {
		if errors.Is(err, services.ErrInsufficientPoints) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient points"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to adjust points"})
		return
	}

	log.Printf("Admin %s adjusted %s points by %d", c.GetString("username"), username, req.Amount)

	h.hub.BroadcastLeaderboard()

	c.JSON(http.StatusOK, gin.H{
		"username":  username,
		"oldPoints": upd.OldPoints,
		"newPoints": upd.NewPoints,
	})
}

func (h *AdminHandler) BanUser(c *gin.Context) {
	username := c.Param("username")

	user, err := h.store.Update(username, func(u *models.User) error {
		u.Banned = true
		u.IsActive = false
		return nil
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	log.Printf("Admin %s banned user %s", c.GetString("username"), username)

	c.JSON(http.StatusOK, gin.H{
		"message": "User banned",
		"user":    user.Public(),
	})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	username := c.Param("username")

	if err := h.store.Delete(username); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	log.Printf("Admin %s deleted user %s", c.GetString("username"), username)

	h.hub.BroadcastLeaderboard()

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
