package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"arcade-rooms-backend/internal/models"
	"arcade-rooms-backend/internal/services"
)

type UserHandler struct {
	store  *services.UserStore
	ledger *services.Ledger
	hub    *WebSocketHandler
}

func NewUserHandler(store *services.UserStore, ledger *services.Ledger, hub *WebSocketHandler) *UserHandler {
	return &UserHandler{store: store, ledger: ledger, hub: hub}
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.store.GetByID(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user.Public())
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	user, err := h.store.UpdateByID(c.GetString("user_id"), func(u *models.User) error {
		u.Name = req.Name
		return nil
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user.Public())
}

func (h *UserHandler) GetPointsHistory(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	records := h.ledger.UserHistory(c.GetString("user_id"), limit)

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}

func (h *UserHandler) GetOnlineUsers(c *gin.Context) {
	c.JSON(http.StatusOK, h.hub.OnlineUsers())
}
