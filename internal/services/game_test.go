package services_test

import (
	"math"
	"testing"

	"arcade-rooms-backend/internal/models"
	"arcade-rooms-backend/internal/services"
)

func newTestEngine(t *testing.T) (*services.UserStore, *services.GameEngine) {
	store := newTestStore(t)
	ledger := services.NewLedger(store)
	return store, services.NewGameEngine(store, ledger)
}

func TestDiceWinAmount(t *testing.T) {
	expected := map[int]int64{1: 1, 2: 3, 3: 4, 4: 6, 5: 8, 6: 9}
	for result, want := range expected {
		if got := services.DiceWinAmount(result); got != want {
			t.Errorf("DiceWinAmount(%d) = %d, want %d", result, got, want)
		}
	}
}

func TestPlayDiceAccounting(t *testing.T) {
	store, engine := newTestEngine(t)
	user := seedUser(t, store, "alice", 1000)

	res, board, err := engine.PlayDice(user.ID, &models.DiceNewRequest{BetAmount: 50})
	if err != nil {
		t.Fatalf("Failed to play dice: %v", err)
	}

	if res.Result < 1 || res.Result > 6 {
		t.Errorf("Result should be a die face, got %d", res.Result)
	}
	if res.WinAmount != services.DiceWinAmount(res.Result) {
		t.Errorf("Payout does not match the face: result %d, win %d", res.Result, res.WinAmount)
	}
	if want := 1000 - 50 + res.WinAmount; res.UserPoints != want {
		t.Errorf("Expected %d points, got %d", want, res.UserPoints)
	}

	after, _ := store.GetByID(user.ID)
	if after.Points != res.UserPoints {
		t.Errorf("Result and store disagree: %d vs %d", res.UserPoints, after.Points)
	}
	if after.Stats.Games != 1 || after.Stats.TotalBet != 50 {
		t.Errorf("Stats not updated: games %d, total bet %d", after.Stats.Games, after.Stats.TotalBet)
	}

	if len(board) != 1 || board[0].Username != "alice" || board[0].Games != 1 {
		t.Errorf("Leaderboard should carry the play: %+v", board)
	}
}

func TestPlayDiceValidation(t *testing.T) {
	store, engine := newTestEngine(t)
	user := seedUser(t, store, "bob", 1000)

	for _, bet := range []int64{0, 3, 7, -5} {
		if _, _, err := engine.PlayDice(user.ID, &models.DiceNewRequest{BetAmount: bet}); err == nil {
			t.Errorf("Bet %d should be rejected", bet)
		}
	}

	after, _ := store.GetByID(user.ID)
	if after.Points != 1000 {
		t.Errorf("Rejected bet changed the balance: %d", after.Points)
	}
}

func TestPlayDiceInsufficientPoints(t *testing.T) {
	store, engine := newTestEngine(t)
	user := seedUser(t, store, "poor", 40)

	_, _, err := engine.PlayDice(user.ID, &models.DiceNewRequest{BetAmount: 50})
	if err != services.ErrInsufficientPoints {
		t.Fatalf("Expected ErrInsufficientPoints, got %v", err)
	}

	after, _ := store.GetByID(user.ID)
	if after.Points != 40 {
		t.Errorf("Rejected bet changed the balance: %d", after.Points)
	}
}

func TestPlayLegacyDice(t *testing.T) {
	store, engine := newTestEngine(t)
	user := seedUser(t, store, "carol", 1000)

	res, err := engine.PlayLegacyDice(user.ID, &models.DiceLegacyRequest{Bet: 100, Prediction: 3})
	if err != nil {
		t.Fatalf("Failed to play: %v", err)
	}

	if res.Result < 1 || res.Result > 6 {
		t.Errorf("Result should be a die face, got %d", res.Result)
	}
	if res.Win != (res.Result == 3) {
		t.Errorf("Win flag disagrees with the roll: result %d, win %v", res.Result, res.Win)
	}

	want := int64(1000 - 100)
	if res.Win {
		want += 100 * 5
	}
	if res.UserPoints != want {
		t.Errorf("Expected %d points, got %d", want, res.UserPoints)
	}
}

func TestPlayGrandma(t *testing.T) {
	store, engine := newTestEngine(t)
	user := seedUser(t, store, "dave", 1000)

	res, err := engine.PlayGrandma(user.ID, &models.GrandmaPlayRequest{RoomID: 4, BetAmount: 100})
	if err != nil {
		t.Fatalf("Failed to play: %v", err)
	}

	if len(res.DangerRooms) < 1 || len(res.DangerRooms) > models.GrandmaRoomCount-1 {
		t.Errorf("Danger set size out of range: %v", res.DangerRooms)
	}
	seen := make(map[int]bool)
	for _, room := range res.DangerRooms {
		if room < 1 || room > models.GrandmaRoomCount {
			t.Errorf("Danger room out of range: %d", room)
		}
		if seen[room] {
			t.Errorf("Duplicate danger room: %d", room)
		}
		seen[room] = true
	}

	if res.UserCanes != int64(math.Floor(100*0.5)) {
		t.Errorf("Expected 50 canes either way, got %d", res.UserCanes)
	}

	want := int64(1000 - 100)
	if res.Result == "win" {
		if seen[4] {
			t.Error("Won despite picking a danger room")
		}
		if res.WinAmount != 150 {
			t.Errorf("Expected 150 win amount, got %d", res.WinAmount)
		}
		want += 150
	} else {
		if !seen[4] {
			t.Error("Lost despite picking a safe room")
		}
		if res.WinAmount != 0 {
			t.Errorf("Losing round paid %d", res.WinAmount)
		}
	}
	if res.UserPoints != want {
		t.Errorf("Expected %d points, got %d", want, res.UserPoints)
	}
}

func TestDiceLeaderboardRanking(t *testing.T) {
	store, engine := newTestEngine(t)

	// Enough plays to accumulate wins for several users.
	for _, name := range []string{"p1", "p2", "p3"} {
		user := seedUser(t, store, name, 100000)
		for i := 0; i < 20; i++ {
			if _, _, err := engine.PlayDice(user.ID, &models.DiceNewRequest{BetAmount: 5}); err != nil {
				t.Fatalf("Play failed for %s: %v", name, err)
			}
		}
	}

	board := engine.DiceLeaderboard()
	if len(board) == 0 || len(board) > 10 {
		t.Fatalf("Board size out of range: %d", len(board))
	}
	for i := 1; i < len(board); i++ {
		if board[i].Wins > board[i-1].Wins {
			t.Errorf("Board not sorted by wins: %d before %d", board[i-1].Wins, board[i].Wins)
		}
	}
}

func TestBuyDoll(t *testing.T) {
	store, engine := newTestEngine(t)
	user := seedUser(t, store, "erin", 1000)

	doll, newPoints, err := engine.BuyDoll(user.ID, 2)
	if err != nil {
		t.Fatalf("Failed to buy doll: %v", err)
	}
	if newPoints != 800 {
		t.Errorf("Expected 800 points after a level 2 doll, got %d", newPoints)
	}
	if doll.Level != 2 || doll.DailyEarnings != 3.35 {
		t.Errorf("Wrong doll: %+v", doll)
	}

	if _, _, err := engine.BuyDoll(user.ID, 9); err == nil {
		t.Error("Unknown doll level should be rejected")
	}

	dolls := engine.Dolls(user.ID)
	if len(dolls) != 1 {
		t.Errorf("Expected 1 doll, got %d", len(dolls))
	}
}

func TestExchange(t *testing.T) {
	store, engine := newTestEngine(t)
	user := seedUser(t, store, "frank", 1000)

	ledger := services.NewLedger(store)
	ledger.AddCanes(user.ID, 100)

	canes, err := engine.Exchange(user.ID, &models.ExchangeRequest{ItemType: "sticker", Price: 60})
	if err != nil {
		t.Fatalf("Failed to exchange: %v", err)
	}
	if canes != 40 {
		t.Errorf("Expected 40 canes left, got %d", canes)
	}

	if _, err := engine.Exchange(user.ID, &models.ExchangeRequest{ItemType: "plush", Price: 500}); err != services.ErrInsufficientCanes {
		t.Errorf("Expected ErrInsufficientCanes, got %v", err)
	}
}
