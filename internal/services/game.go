package services

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"arcade-rooms-backend/internal/models"
)

const (
	diceMultiplier   = 1.6
	legacyDicePayout = 5

	grandmaWinMultiplier  = 1.5
	grandmaCaneMultiplier = 0.5
	grandmaAngryChance    = 0.25

	diceLeaderboardSize = 10
)

// diceProbability is the weight table for faces 1..6, in percent.
var diceProbability = [6]int{30, 20, 15, 15, 12, 8}

var dollPrices = map[int]int64{1: 50, 2: 200, 3: 500}

var dollDailyEarnings = map[int]float64{1: 0.88, 2: 3.35, 3: 6.05}

// GameEngine runs the single-player games and owns the game records, the
// dice leaderboard and the doll inventory.
type GameEngine struct {
	store       *UserStore
	ledger      *Ledger
	broadcaster Broadcaster

	mu        sync.Mutex
	records   []models.GameRecord // unbounded append, matches the source system
	diceBoard []models.DiceLeaderboardEntry
	dolls     map[string][]models.Doll
}

func NewGameEngine(store *UserStore, ledger *Ledger) *GameEngine {
	return &GameEngine{
		store:       store,
		ledger:      ledger,
		broadcaster: NopBroadcaster{},
		dolls:       make(map[string][]models.Doll),
	}
}

func (ge *GameEngine) SetBroadcaster(b Broadcaster) {
	ge.broadcaster = b
}

// DiceWinAmount is the payout for a dice face: floor(result * 1.6).
func DiceWinAmount(result int) int64 {
	return int64(math.Floor(float64(result) * diceMultiplier))
}

// rollDice draws a face 1..6 from the weight table.
func rollDice() int {
	roll := rand.Float64() * 100
	cumulative := 0.0
	for i, weight := range diceProbability {
		cumulative += float64(weight)
		if roll <= cumulative {
			return i + 1
		}
	}
	return 6
}

// drawDangerRooms picks the round's danger set: distinct room numbers in
// 1..8. A 25% "angry" draw takes 1-7 rooms, otherwise exactly one.
func drawDangerRooms() []int {
	count := 1
	if rand.Float64() < grandmaAngryChance {
		count = rand.Intn(models.GrandmaRoomCount-1) + 1
	}

	perm := rand.Perm(models.GrandmaRoomCount)
	rooms := make([]int, count)
	for i := 0; i < count; i++ {
		rooms[i] = perm[i] + 1
	}
	sort.Ints(rooms)
	return rooms
}

func containsRoom(rooms []int, room int) bool {
	for _, r := range rooms {
		if r == room {
			return true
		}
	}
	return false
}

// PlayDice runs one round of the weighted dice game and returns the result
// together with the refreshed dice leaderboard.
func (ge *GameEngine) PlayDice(userID string, req *models.DiceNewRequest) (*models.DiceResult, []models.DiceLeaderboardEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	if _, err := ge.ledger.UpdatePoints(userID, -req.BetAmount, "dice bet", nil); err != nil {
		return nil, nil, err
	}

	result := rollDice()
	winAmount := DiceWinAmount(result)

	var newPoints int64
	if winAmount > 0 {
		upd, err := ge.ledger.UpdatePoints(userID, winAmount, "dice win", map[string]any{"result": result})
		if err != nil {
			return nil, nil, err
		}
		newPoints = upd.NewPoints
	} else {
		u, err := ge.store.GetByID(userID)
		if err != nil {
			return nil, nil, err
		}
		newPoints = u.Points
	}

	won := winAmount > req.BetAmount
	user, err := ge.store.UpdateByID(userID, func(u *models.User) error {
		u.Stats.Games++
		u.Stats.TotalBet += req.BetAmount
		u.Stats.TotalWinnings += winAmount
		if won {
			u.Stats.Wins++
		} else {
			u.Stats.Losses++
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	board := ge.updateDiceBoard(user.Username, req.BetAmount, winAmount, won)

	ge.appendRecord(models.GameRecord{
		ID:        models.GenerateRecordID("dice"),
		UserID:    userID,
		GameType:  models.GameTypeDice,
		Bet:       req.BetAmount,
		Result:    fmt.Sprintf("%d", result),
		WinAmount: winAmount,
		Timestamp: models.Timestamp(time.Now()),
	})

	ge.broadcaster.BroadcastLeaderboard()

	return &models.DiceResult{
		Result:     result,
		WinAmount:  winAmount,
		UserPoints: newPoints,
	}, board, nil
}

// PlayLegacyDice is the exact-prediction dice game: a uniform roll, an
// exact match pays bet*5. The outcome is broadcast to every socket.
func (ge *GameEngine) PlayLegacyDice(userID string, req *models.DiceLegacyRequest) (*models.LegacyDiceResult, error) {
	if _, err := ge.ledger.UpdatePoints(userID, -req.Bet, "dice bet", nil); err != nil {
		return nil, err
	}

	result := rand.Intn(6) + 1
	win := result == req.Prediction

	var winAmount int64
	if win {
		winAmount = req.Bet * legacyDicePayout
		if _, err := ge.ledger.UpdatePoints(userID, winAmount, "dice win", map[string]any{"result": result}); err != nil {
			return nil, err
		}
	}

	user, err := ge.store.UpdateByID(userID, func(u *models.User) error {
		u.Stats.Games++
		u.Stats.TotalBet += req.Bet
		u.Stats.TotalWinnings += winAmount
		if win {
			u.Stats.Wins++
		} else {
			u.Stats.Losses++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ge.appendRecord(models.GameRecord{
		ID:         models.GenerateRecordID("game"),
		UserID:     userID,
		GameType:   models.GameTypeDice,
		Bet:        req.Bet,
		Prediction: req.Prediction,
		Result:     fmt.Sprintf("%d", result),
		WinAmount:  winAmount,
		Timestamp:  models.Timestamp(time.Now()),
	})

	ge.broadcaster.ToAll("gameResult", map[string]any{
		"user":      user.Name,
		"gameType":  models.GameTypeDice,
		"result":    result,
		"win":       win,
		"winAmount": winAmount,
	})
	ge.broadcaster.BroadcastLeaderboard()

	return &models.LegacyDiceResult{
		Result:     result,
		Win:        win,
		WinAmount:  winAmount,
		UserPoints: user.Points,
	}, nil
}

// PlayGrandma runs one solo round: the bet is deducted, the danger set is
// drawn, and the chosen room decides the outcome. Both outcomes earn the
// canes consolation.
func (ge *GameEngine) PlayGrandma(userID string, req *models.GrandmaPlayRequest) (*models.GrandmaResult, error) {
	if _, err := ge.ledger.UpdatePoints(userID, -req.BetAmount, "grandma bet", nil); err != nil {
		return nil, err
	}

	dangerRooms := drawDangerRooms()
	safe := !containsRoom(dangerRooms, req.RoomID)

	result := "lose"
	var winAmount int64
	if safe {
		result = "win"
		winAmount = int64(math.Floor(float64(req.BetAmount) * grandmaWinMultiplier))
		if _, err := ge.ledger.UpdatePoints(userID, winAmount, "grandma win", map[string]any{"roomId": req.RoomID}); err != nil {
			return nil, err
		}
	}

	canesGained := int64(math.Floor(float64(req.BetAmount) * grandmaCaneMultiplier))
	newCanes, err := ge.ledger.AddCanes(userID, canesGained)
	if err != nil {
		return nil, err
	}

	user, err := ge.store.UpdateByID(userID, func(u *models.User) error {
		u.Stats.Games++
		u.Stats.TotalBet += req.BetAmount
		u.Stats.TotalWinnings += winAmount
		if safe {
			u.Stats.Wins++
		} else {
			u.Stats.Losses++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ge.appendRecord(models.GameRecord{
		ID:          models.GenerateRecordID("grandma"),
		UserID:      userID,
		GameType:    models.GameTypeGrandma,
		Bet:         req.BetAmount,
		RoomID:      req.RoomID,
		Result:      result,
		DangerRooms: dangerRooms,
		WinAmount:   winAmount,
		Timestamp:   models.Timestamp(time.Now()),
	})

	ge.broadcaster.BroadcastLeaderboard()

	return &models.GrandmaResult{
		DangerRooms: dangerRooms,
		Result:      result,
		WinAmount:   winAmount,
		UserPoints:  user.Points,
		UserCanes:   newCanes,
	}, nil
}

// updateDiceBoard folds a play into the dice leaderboard and returns a copy
// of the refreshed board.
func (ge *GameEngine) updateDiceBoard(username string, bet, winAmount int64, won bool) []models.DiceLeaderboardEntry {
	ge.mu.Lock()
	defer ge.mu.Unlock()

	found := false
	for i := range ge.diceBoard {
		if ge.diceBoard[i].Username == username {
			ge.diceBoard[i].Games++
			if won {
				ge.diceBoard[i].Wins++
			}
			ge.diceBoard[i].TotalBet += bet
			ge.diceBoard[i].TotalWin += winAmount
			found = true
			break
		}
	}
	if !found {
		entry := models.DiceLeaderboardEntry{
			Username: username,
			Games:    1,
			TotalBet: bet,
			TotalWin: winAmount,
		}
		if won {
			entry.Wins = 1
		}
		ge.diceBoard = append(ge.diceBoard, entry)
	}

	sort.SliceStable(ge.diceBoard, func(i, j int) bool {
		return ge.diceBoard[i].Wins > ge.diceBoard[j].Wins
	})
	if len(ge.diceBoard) > diceLeaderboardSize {
		ge.diceBoard = ge.diceBoard[:diceLeaderboardSize]
	}

	out := make([]models.DiceLeaderboardEntry, len(ge.diceBoard))
	copy(out, ge.diceBoard)
	return out
}

func (ge *GameEngine) DiceLeaderboard() []models.DiceLeaderboardEntry {
	ge.mu.Lock()
	defer ge.mu.Unlock()

	out := make([]models.DiceLeaderboardEntry, len(ge.diceBoard))
	copy(out, ge.diceBoard)
	return out
}

func (ge *GameEngine) appendRecord(rec models.GameRecord) {
	ge.mu.Lock()
	defer ge.mu.Unlock()
	ge.records = append(ge.records, rec)
}

// Records returns the most recent game records, newest first.
func (ge *GameEngine) Records(limit int) []models.GameRecord {
	ge.mu.Lock()
	defer ge.mu.Unlock()

	if limit <= 0 || limit > len(ge.records) {
		limit = len(ge.records)
	}
	out := make([]models.GameRecord, 0, limit)
	for i := len(ge.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, ge.records[i])
	}
	return out
}

// BuyDoll spends points on a doll and announces the purchase.
func (ge *GameEngine) BuyDoll(userID string, level int) (*models.Doll, int64, error) {
	price, ok := dollPrices[level]
	if !ok {
		return nil, 0, fmt.Errorf("unknown doll level: %d", level)
	}

	upd, err := ge.ledger.UpdatePoints(userID, -price, "doll purchase", map[string]any{"level": level})
	if err != nil {
		return nil, 0, err
	}

	doll := models.Doll{
		ID:            models.GenerateRecordID("doll"),
		UserID:        userID,
		Level:         level,
		PurchaseDate:  models.Timestamp(time.Now()),
		DailyEarnings: dollDailyEarnings[level],
		Status:        "active",
	}

	ge.mu.Lock()
	ge.dolls[userID] = append(ge.dolls[userID], doll)
	ge.mu.Unlock()

	user, err := ge.store.GetByID(userID)
	if err != nil {
		return nil, 0, err
	}

	ge.broadcaster.ToAll("dollPurchased", map[string]any{
		"user":   user.Name,
		"level":  level,
		"dollId": doll.ID,
	})
	ge.broadcaster.BroadcastLeaderboard()

	return &doll, upd.NewPoints, nil
}

func (ge *GameEngine) Dolls(userID string) []models.Doll {
	ge.mu.Lock()
	defer ge.mu.Unlock()

	out := make([]models.Doll, len(ge.dolls[userID]))
	copy(out, ge.dolls[userID])
	return out
}

// Exchange spends canes on a shop item.
func (ge *GameEngine) Exchange(userID string, req *models.ExchangeRequest) (int64, error) {
	return ge.ledger.SpendCanes(userID, req.Price)
}
