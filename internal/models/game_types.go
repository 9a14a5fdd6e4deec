package models

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=4"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserRequest struct {
	Name string `json:"name" binding:"required"`
}

type DiceNewRequest struct {
	BetAmount int64 `json:"betAmount" binding:"required"`
}

type DiceLegacyRequest struct {
	Bet        int64 `json:"bet" binding:"required,min=1"`
	Prediction int   `json:"prediction" binding:"required,min=1,max=6"`
}

type GrandmaPlayRequest struct {
	RoomID    int   `json:"roomId" binding:"required,min=1,max=8"`
	BetAmount int64 `json:"betAmount" binding:"required,min=1"`
}

type ExchangeRequest struct {
	ItemType string `json:"itemType" binding:"required"`
	Price    int64  `json:"price" binding:"required,min=1"`
}

type DollBuyRequest struct {
	Level int `json:"level" binding:"required,min=1,max=3"`
}

type AdminPointsRequest struct {
	Amount int64  `json:"amount" binding:"required"`
	Reason string `json:"reason"`
}

type DiceResult struct {
	Result     int   `json:"result"`
	WinAmount  int64 `json:"winAmount"`
	UserPoints int64 `json:"userPoints"`
}

type LegacyDiceResult struct {
	Result     int   `json:"result"`
	Win        bool  `json:"win"`
	WinAmount  int64 `json:"winAmount"`
	UserPoints int64 `json:"userPoints"`
}

type GrandmaResult struct {
	DangerRooms []int  `json:"dangerRooms"`
	Result      string `json:"result"`
	WinAmount   int64  `json:"winAmount"`
	UserPoints  int64  `json:"userPoints"`
	UserCanes   int64  `json:"userCanes"`
}
