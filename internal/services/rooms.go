package services

import (
	"log"
	"math"
	"sync"
	"time"

	"arcade-rooms-backend/internal/models"
)

const (
	defaultRoundDuration = 30 * time.Second
	defaultRemoveDelay   = 5 * time.Second
)

// RoomRegistry owns the multiplayer game rooms and drives their lifecycle:
// waiting -> playing -> finished -> removed. Timers are tracked per room and
// cancelled when a room dies early.
type RoomRegistry struct {
	store       *UserStore
	ledger      *Ledger
	broadcaster Broadcaster

	roundDuration time.Duration
	removeDelay   time.Duration

	mu      sync.Mutex
	rooms   map[string]*models.GameRoom
	sockets map[string]string // socket id -> room id
	timers  map[string]*time.Timer
}

func NewRoomRegistry(store *UserStore, ledger *Ledger) *RoomRegistry {
	return &RoomRegistry{
		store:         store,
		ledger:        ledger,
		broadcaster:   NopBroadcaster{},
		roundDuration: defaultRoundDuration,
		removeDelay:   defaultRemoveDelay,
		rooms:         make(map[string]*models.GameRoom),
		sockets:       make(map[string]string),
		timers:        make(map[string]*time.Timer),
	}
}

func (reg *RoomRegistry) SetBroadcaster(b Broadcaster) {
	reg.broadcaster = b
}

// CreateRoom opens a new waiting room with the creator as host. The bet is
// deducted up front; leaving before the round starts refunds it.
func (reg *RoomRegistry) CreateRoom(userID, socketID string, roomID int, betAmount int64) (*models.GameRoom, int64, error) {
	user, err := reg.store.GetByID(userID)
	if err != nil {
		return nil, 0, err
	}

	upd, err := reg.ledger.UpdatePoints(userID, -betAmount, "room bet", nil)
	if err != nil {
		return nil, 0, err
	}

	room := &models.GameRoom{
		ID:         models.GenerateRoomID(),
		RoomID:     roomID,
		HostID:     userID,
		MaxPlayers: models.RoomMaxPlayers,
		BetAmount:  betAmount,
		Status:     models.RoomStatusWaiting,
		CreatedAt:  time.Now(),
		Players: []*models.RoomPlayer{{
			UserID:    userID,
			Username:  user.Username,
			BetAmount: betAmount,
			SocketID:  socketID,
			IsHost:    true,
		}},
	}

	reg.mu.Lock()
	reg.rooms[room.ID] = room
	reg.sockets[socketID] = room.ID
	snapshot := copyRoom(room)
	reg.mu.Unlock()

	reg.broadcastRooms()

	return snapshot, upd.NewPoints, nil
}

// JoinRoom adds a player to a waiting room, deducting the bet.
func (reg *RoomRegistry) JoinRoom(gameRoomID, userID, socketID string, betAmount int64) (*models.GameRoom, *models.RoomPlayer, int64, error) {
	user, err := reg.store.GetByID(userID)
	if err != nil {
		return nil, nil, 0, err
	}

	reg.mu.Lock()
	room, ok := reg.rooms[gameRoomID]
	if !ok {
		reg.mu.Unlock()
		return nil, nil, 0, ErrRoomNotFound
	}
	if room.Status != models.RoomStatusWaiting {
		reg.mu.Unlock()
		return nil, nil, 0, ErrRoomNotWaiting
	}
	if len(room.Players) >= room.MaxPlayers {
		reg.mu.Unlock()
		return nil, nil, 0, ErrRoomFull
	}
	if room.PlayerByUser(userID) != nil {
		reg.mu.Unlock()
		return nil, nil, 0, ErrAlreadyInRoom
	}
	reg.mu.Unlock()

	// The balance check and deduction are atomic inside the ledger; the
	// registry lock is released first so lock ordering stays registry->store.
	upd, err := reg.ledger.UpdatePoints(userID, -betAmount, "room bet", nil)
	if err != nil {
		return nil, nil, 0, err
	}

	player := &models.RoomPlayer{
		UserID:    userID,
		Username:  user.Username,
		BetAmount: betAmount,
		SocketID:  socketID,
	}

	reg.mu.Lock()
	room, ok = reg.rooms[gameRoomID]
	if !ok || room.Status != models.RoomStatusWaiting || len(room.Players) >= room.MaxPlayers {
		reg.mu.Unlock()
		// The room changed while the bet was being taken; hand it back.
		if _, rerr := reg.ledger.UpdatePoints(userID, betAmount, "room bet refund", nil); rerr != nil {
			log.Printf("Failed to refund bet for %s: %v", userID, rerr)
		}
		if !ok {
			return nil, nil, 0, ErrRoomNotFound
		}
		return nil, nil, 0, ErrRoomNotWaiting
	}
	room.Players = append(room.Players, player)
	reg.sockets[socketID] = room.ID
	snapshot := copyRoom(room)
	reg.mu.Unlock()

	reg.broadcastRooms()

	return snapshot, player, upd.NewPoints, nil
}

// StartGame moves a waiting room to playing. Only the host's socket may
// start; the danger set is drawn once and is read-only afterwards.
func (reg *RoomRegistry) StartGame(gameRoomID, socketID string) error {
	reg.mu.Lock()
	room, ok := reg.rooms[gameRoomID]
	if !ok {
		reg.mu.Unlock()
		return ErrRoomNotFound
	}
	player, _ := room.PlayerBySocket(socketID)
	if player == nil || !player.IsHost {
		reg.mu.Unlock()
		return ErrNotHost
	}
	if room.Status != models.RoomStatusWaiting {
		reg.mu.Unlock()
		return ErrRoomNotWaiting
	}
	if len(room.Players) < 1 {
		reg.mu.Unlock()
		return ErrRoomNotWaiting
	}

	room.DangerRooms = drawDangerRooms()
	room.Status = models.RoomStatusPlaying
	room.StartTime = time.Now()

	reg.timers[room.ID] = time.AfterFunc(reg.roundDuration, func() {
		reg.endRound(gameRoomID)
	})

	dangerRooms := append([]int(nil), room.DangerRooms...)
	snapshot := copyRoom(room)
	socketIDs := roomSocketIDs(room)
	reg.mu.Unlock()

	reg.broadcaster.ToSockets(socketIDs, "gameStart", map[string]any{
		"dangerRooms": dangerRooms,
		"gameRoom":    snapshot,
		"duration":    reg.roundDuration.Milliseconds(),
	})
	reg.broadcastRooms()

	return nil
}

// SelectRoom records the player's hiding spot for the running round.
// Repicking is allowed until the timer fires.
func (reg *RoomRegistry) SelectRoom(socketID string, chosen int) error {
	if chosen < 1 || chosen > models.GrandmaRoomCount {
		return ErrRoomNotPlaying
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	roomID, ok := reg.sockets[socketID]
	if !ok {
		return ErrNotInRoom
	}
	room, ok := reg.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if room.Status != models.RoomStatusPlaying {
		return ErrRoomNotPlaying
	}
	player, _ := room.PlayerBySocket(socketID)
	if player == nil {
		return ErrNotInRoom
	}

	player.ChosenRoom = chosen
	return nil
}

// LeaveBySocket removes the socket's player from its room, refunding the bet
// when the round has not settled. Covers both explicit leave and disconnect.
func (reg *RoomRegistry) LeaveBySocket(socketID string) (*models.RoomPlayer, *models.GameRoom, error) {
	reg.mu.Lock()

	roomID, ok := reg.sockets[socketID]
	if !ok {
		reg.mu.Unlock()
		return nil, nil, ErrNotInRoom
	}
	room, ok := reg.rooms[roomID]
	if !ok {
		delete(reg.sockets, socketID)
		reg.mu.Unlock()
		return nil, nil, ErrRoomNotFound
	}

	player, idx := room.PlayerBySocket(socketID)
	if player == nil {
		delete(reg.sockets, socketID)
		reg.mu.Unlock()
		return nil, nil, ErrNotInRoom
	}

	room.Players = append(room.Players[:idx], room.Players[idx+1:]...)
	delete(reg.sockets, socketID)

	refund := room.Status != models.RoomStatusFinished

	var snapshot *models.GameRoom
	if len(room.Players) == 0 {
		reg.removeRoomLocked(room.ID)
	} else {
		if player.IsHost {
			room.Players[0].IsHost = true
			room.HostID = room.Players[0].UserID
		}
		snapshot = copyRoom(room)
	}
	reg.mu.Unlock()

	if refund {
		if _, err := reg.ledger.UpdatePoints(player.UserID, player.BetAmount, "room bet refund", nil); err != nil {
			log.Printf("Failed to refund bet for %s: %v", player.UserID, err)
		}
	}

	reg.broadcastRooms()

	return player, snapshot, nil
}

// RoomBySocket returns a copy of the room the socket is in.
func (reg *RoomRegistry) RoomBySocket(socketID string) (*models.GameRoom, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	roomID, ok := reg.sockets[socketID]
	if !ok {
		return nil, false
	}
	room, ok := reg.rooms[roomID]
	if !ok {
		return nil, false
	}
	return copyRoom(room), true
}

// Rooms returns copies of rooms, optionally only those open for joining.
func (reg *RoomRegistry) Rooms(waitingOnly bool) []*models.GameRoom {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	out := make([]*models.GameRoom, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		if waitingOnly && room.Status != models.RoomStatusWaiting {
			continue
		}
		out = append(out, copyRoom(room))
	}
	return out
}

// ForceEnd settles a playing room immediately, cancelling its round timer.
func (reg *RoomRegistry) ForceEnd(gameRoomID string) {
	reg.mu.Lock()
	if t, ok := reg.timers[gameRoomID]; ok {
		t.Stop()
		delete(reg.timers, gameRoomID)
	}
	reg.mu.Unlock()

	reg.endRound(gameRoomID)
}

// CleanupStale drops waiting rooms older than maxAge (refunding every
// player) and force-settles playing rooms whose timer should long have
// fired. Runs from the background ticker in main.
func (reg *RoomRegistry) CleanupStale(maxAge time.Duration) {
	now := time.Now()

	reg.mu.Lock()
	var staleWaiting []*models.GameRoom
	var stuckPlaying []string
	for id, room := range reg.rooms {
		switch room.Status {
		case models.RoomStatusWaiting:
			if now.Sub(room.CreatedAt) > maxAge {
				staleWaiting = append(staleWaiting, room)
				reg.removeRoomLocked(id)
			}
		case models.RoomStatusPlaying:
			if now.Sub(room.StartTime) > reg.roundDuration+maxAge {
				stuckPlaying = append(stuckPlaying, id)
			}
		}
	}
	reg.mu.Unlock()

	for _, room := range staleWaiting {
		for _, p := range room.Players {
			if _, err := reg.ledger.UpdatePoints(p.UserID, p.BetAmount, "room bet refund", nil); err != nil {
				log.Printf("Failed to refund bet for %s: %v", p.UserID, err)
			}
		}
	}
	for _, id := range stuckPlaying {
		reg.ForceEnd(id)
	}
	if len(staleWaiting) > 0 {
		reg.broadcastRooms()
	}
}

// endRound settles a playing room: every player's chosen room is compared
// against the danger set drawn at start. Winners get floor(bet*1.5) points
// plus the canes consolation; losers only the canes. Settling twice is a
// no-op.
func (reg *RoomRegistry) endRound(gameRoomID string) {
	reg.mu.Lock()
	room, ok := reg.rooms[gameRoomID]
	if !ok || room.Status != models.RoomStatusPlaying {
		reg.mu.Unlock()
		return
	}
	room.Status = models.RoomStatusFinished
	room.EndTime = time.Now()
	delete(reg.timers, gameRoomID)

	players := make([]*models.RoomPlayer, len(room.Players))
	copy(players, room.Players)
	dangerRooms := append([]int(nil), room.DangerRooms...)
	reg.mu.Unlock()

	results := make([]models.PlayerResult, 0, len(players))
	for _, p := range players {
		won := p.ChosenRoom != 0 && !containsRoom(dangerRooms, p.ChosenRoom)

		var winAmount int64
		if won {
			winAmount = int64(math.Floor(float64(p.BetAmount) * grandmaWinMultiplier))
			reg.ledger.UpdatePoints(p.UserID, winAmount, "grandma room win", map[string]any{"gameRoom": gameRoomID})
		}
		canesGained := int64(math.Floor(float64(p.BetAmount) * grandmaCaneMultiplier))
		reg.ledger.AddCanes(p.UserID, canesGained)

		result := "lose"
		if won {
			result = "win"
		}
		user, err := reg.store.UpdateByID(p.UserID, func(u *models.User) error {
			u.Stats.Games++
			u.Stats.TotalBet += p.BetAmount
			u.Stats.TotalWinnings += winAmount
			if won {
				u.Stats.Wins++
			} else {
				u.Stats.Losses++
			}
			return nil
		})
		if err != nil {
			continue
		}

		results = append(results, models.PlayerResult{
			UserID:      p.UserID,
			Username:    p.Username,
			RoomID:      p.ChosenRoom,
			Result:      result,
			WinAmount:   winAmount,
			CanesGained: canesGained,
			NewPoints:   user.Points,
		})

		reg.broadcaster.ToSockets([]string{p.SocketID}, "gameResult", map[string]any{
			"result":      result,
			"winAmount":   winAmount,
			"canesGained": canesGained,
			"newPoints":   user.Points,
			"dangerRooms": dangerRooms,
		})
	}

	reg.mu.Lock()
	snapshot := copyRoom(room)
	socketIDs := roomSocketIDs(room)
	reg.timers[gameRoomID] = time.AfterFunc(reg.removeDelay, func() {
		reg.removeRoom(gameRoomID)
	})
	reg.mu.Unlock()

	reg.broadcaster.ToSockets(socketIDs, "gameEnd", map[string]any{
		"gameRoom":    snapshot,
		"dangerRooms": dangerRooms,
		"results":     results,
	})
	reg.broadcaster.BroadcastLeaderboard()
	reg.broadcastRooms()
}

func (reg *RoomRegistry) removeRoom(gameRoomID string) {
	reg.mu.Lock()
	_, existed := reg.rooms[gameRoomID]
	if existed {
		reg.removeRoomLocked(gameRoomID)
	}
	reg.mu.Unlock()

	if existed {
		reg.broadcastRooms()
	}
}

// removeRoomLocked drops the room and cancels any pending timer. Idempotent.
func (reg *RoomRegistry) removeRoomLocked(gameRoomID string) {
	room, ok := reg.rooms[gameRoomID]
	if !ok {
		return
	}
	for _, p := range room.Players {
		if reg.sockets[p.SocketID] == gameRoomID {
			delete(reg.sockets, p.SocketID)
		}
	}
	if t, ok := reg.timers[gameRoomID]; ok {
		t.Stop()
		delete(reg.timers, gameRoomID)
	}
	delete(reg.rooms, gameRoomID)
}

// RoomSockets lists the socket ids of the room's current players.
func (reg *RoomRegistry) RoomSockets(gameRoomID string) []string {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[gameRoomID]
	if !ok {
		return nil
	}
	return roomSocketIDs(room)
}

func (reg *RoomRegistry) broadcastRooms() {
	reg.broadcaster.ToAll("gameRoomsList", reg.Rooms(true))
}

func roomSocketIDs(room *models.GameRoom) []string {
	ids := make([]string, 0, len(room.Players))
	for _, p := range room.Players {
		ids = append(ids, p.SocketID)
	}
	return ids
}

func copyRoom(room *models.GameRoom) *models.GameRoom {
	cp := *room
	cp.Players = make([]*models.RoomPlayer, len(room.Players))
	for i, p := range room.Players {
		pc := *p
		cp.Players[i] = &pc
	}
	cp.DangerRooms = append([]int(nil), room.DangerRooms...)
	return &cp
}
