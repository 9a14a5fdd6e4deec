package models

import "time"

type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"
	RoomStatusPlaying  RoomStatus = "playing"
	RoomStatusFinished RoomStatus = "finished"
)

const (
	RoomMaxPlayers = 4

	// GrandmaRoomCount is the number of rooms a player can hide in.
	GrandmaRoomCount = 8
)

type RoomPlayer struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	BetAmount int64  `json:"betAmount"`
	SocketID  string `json:"socketId"`
	IsHost    bool   `json:"isHost"`

	// ChosenRoom is the room number picked while the round is running.
	// Zero means the player never picked and settles as a loser.
	ChosenRoom int `json:"chosenRoom"`
}

type GameRoom struct {
	ID          string        `json:"id"`
	RoomID      int           `json:"roomId"`
	HostID      string        `json:"hostId"`
	Players     []*RoomPlayer `json:"players"`
	MaxPlayers  int           `json:"maxPlayers"`
	BetAmount   int64         `json:"betAmount"`
	Status      RoomStatus    `json:"status"`
	DangerRooms []int         `json:"dangerRooms,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	StartTime   time.Time     `json:"startTime,omitzero"`
	EndTime     time.Time     `json:"endTime,omitzero"`
}

func (r *GameRoom) PlayerBySocket(socketID string) (*RoomPlayer, int) {
	for i, p := range r.Players {
		if p.SocketID == socketID {
			return p, i
		}
	}
	return nil, -1
}

func (r *GameRoom) PlayerByUser(userID string) *RoomPlayer {
	for _, p := range r.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// PlayerResult is the per-player settlement of a finished round.
type PlayerResult struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	RoomID      int    `json:"roomId"`
	Result      string `json:"result"`
	WinAmount   int64  `json:"winAmount"`
	CanesGained int64  `json:"canesGained"`
	NewPoints   int64  `json:"newPoints"`
}
