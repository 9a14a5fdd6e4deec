package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"arcade-rooms-backend/internal/models"
	"arcade-rooms-backend/internal/services"
)

type GameHandler struct {
	gameEngine *services.GameEngine
}

func NewGameHandler(gameEngine *services.GameEngine) *GameHandler {
	return &GameHandler{gameEngine: gameEngine}
}

func (h *GameHandler) PlayDice(c *gin.Context) {
	var req models.DiceNewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, leaderboard, err := h.gameEngine.PlayDice(c.GetString("user_id"), &req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result":      result.Result,
		"winAmount":   result.WinAmount,
		"userPoints":  result.UserPoints,
		"leaderboard": leaderboard,
	})
}

// PlayLegacyDice serves the older exact-prediction dice clients.
func (h *GameHandler) PlayLegacyDice(c *gin.Context) {
	var req models.DiceLegacyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := h.gameEngine.PlayLegacyDice(c.GetString("user_id"), &req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result":     result.Result,
		"win":        result.Win,
		"winAmount":  result.WinAmount,
		"userPoints": result.UserPoints,
	})
}

func (h *GameHandler) GetDiceLeaderboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.gameEngine.DiceLeaderboard())
}

func (h *GameHandler) PlayGrandma(c *gin.Context) {
	var req models.GrandmaPlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := h.gameEngine.PlayGrandma(c.GetString("user_id"), &req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dangerRooms": result.DangerRooms,
		"result":      result.Result,
		"winAmount":   result.WinAmount,
		"userPoints":  result.UserPoints,
		"userCanes":   result.UserCanes,
	})
}

func (h *GameHandler) Exchange(c *gin.Context) {
	var req models.ExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	newCanes, err := h.gameEngine.Exchange(c.GetString("user_id"), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Exchange successful",
		"userCanes": newCanes,
	})
}

func (h *GameHandler) BuyDoll(c *gin.Context) {
	var req models.DollBuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	doll, newPoints, err := h.gameEngine.BuyDoll(c.GetString("user_id"), req.Level)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Purchase successful",
		"doll":       doll,
		"userPoints": newPoints,
	})
}

func (h *GameHandler) GetDolls(c *gin.Context) {
	c.JSON(http.StatusOK, h.gameEngine.Dolls(c.GetString("user_id")))
}
