package models

import "time"

type GameType string

const (
	GameTypeDice    GameType = "dice"
	GameTypeGrandma GameType = "grandma"
)

// GameRecord is an immutable log entry for a single play.
type GameRecord struct {
	ID          string   `json:"id"`
	UserID      string   `json:"userId"`
	GameType    GameType `json:"gameType"`
	Bet         int64    `json:"bet"`
	Prediction  int      `json:"prediction,omitempty"`
	RoomID      int      `json:"roomId,omitempty"`
	Result      string   `json:"result"`
	DangerRooms []int    `json:"dangerRooms,omitempty"`
	WinAmount   int64    `json:"winAmount"`
	Timestamp   string   `json:"timestamp"`
}

// DiceLeaderboardEntry tracks per-user dice stats, keyed by username.
type DiceLeaderboardEntry struct {
	Username string `json:"username"`
	Games    int    `json:"games"`
	Wins     int    `json:"wins"`
	TotalBet int64  `json:"totalBet"`
	TotalWin int64  `json:"totalWin"`
}

type Doll struct {
	ID            string  `json:"id"`
	UserID        string  `json:"userId"`
	Level         int     `json:"level"`
	PurchaseDate  string  `json:"purchaseDate"`
	DailyEarnings float64 `json:"dailyEarnings"`
	TotalEarnings float64 `json:"totalEarnings"`
	Status        string  `json:"status"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
