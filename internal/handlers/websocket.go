package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"arcade-rooms-backend/internal/models"
	"arcade-rooms-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the wire format in both directions.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type Client struct {
	SocketID string
	UserID   string
	Role     models.Role

	user     models.PublicUser
	loggedIn bool

	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *Client) send(event string, data any) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.WriteJSON(outMessage{Event: event, Data: data})
}

type WebSocketHub struct {
	mu         sync.RWMutex
	clients    map[string]*Client // keyed by socket id
	register   chan *Client
	unregister chan *Client
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.mu.Lock()
			hub.clients[client.SocketID] = client
			hub.mu.Unlock()
			log.Printf("Socket connected: %s", client.SocketID)

		case client := <-hub.unregister:
			hub.mu.Lock()
			delete(hub.clients, client.SocketID)
			hub.mu.Unlock()
			log.Printf("Socket disconnected: %s", client.SocketID)
		}
	}
}

type WebSocketHandler struct {
	store    *services.UserStore
	ledger   *services.Ledger
	registry *services.RoomRegistry
	hub      *WebSocketHub
}

func NewWebSocketHandler(store *services.UserStore, ledger *services.Ledger, registry *services.RoomRegistry) *WebSocketHandler {
	hub := &WebSocketHub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}

	go hub.run()

	return &WebSocketHandler{
		store:    store,
		ledger:   ledger,
		registry: registry,
		hub:      hub,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	client := &Client{
		SocketID: uuid.New().String(),
		UserID:   c.GetString("user_id"),
		Role:     models.Role(c.GetString("role")),
		conn:     conn,
	}

	h.hub.register <- client

	defer func() {
		h.handleDisconnect(client)
		h.hub.unregister <- client
		conn.Close()
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		h.handleMessage(client, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(client *Client, msg *Message) {
	switch msg.Event {
	case "userLogin":
		h.handleUserLogin(client)
	case "createGameRoom":
		h.handleCreateRoom(client, msg.Data)
	case "joinGameRoom":
		h.handleJoinRoom(client, msg.Data)
	case "startGame":
		h.handleStartGame(client, msg.Data)
	case "selectRoom":
		h.handleSelectRoom(client, msg.Data)
	case "leaveGameRoom":
		h.handleLeaveRoom(client)
	case "getGameRooms":
		client.send("gameRoomsList", h.registry.Rooms(true))
	case "updatePoints":
		h.handleUpdatePoints(client, msg.Data)
	case "getLeaderboard":
		h.BroadcastLeaderboard()
	case "sendMessage":
		h.handleChatMessage(client, msg.Data)
	default:
		client.send("gameError", gin.H{"message": "Unknown event: " + msg.Event})
	}
}

func (h *WebSocketHandler) handleUserLogin(client *Client) {
	user, err := h.store.GetByID(client.UserID)
	if err != nil {
		client.send("gameError", gin.H{"message": "User not found"})
		return
	}

	client.user = user.Public()
	client.loggedIn = true

	h.broadcastExcept(client.SocketID, "userOnline", client.user)
	h.broadcastOnlineUsers()
	h.BroadcastLeaderboard()

	log.Printf("User online: %s", user.Username)
}

func (h *WebSocketHandler) handleCreateRoom(client *Client, data json.RawMessage) {
	var req struct {
		RoomID    int   `json:"roomId"`
		BetAmount int64 `json:"betAmount"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.BetAmount <= 0 {
		client.send("gameError", gin.H{"message": "Invalid bet amount"})
		return
	}

	room, newPoints, err := h.registry.CreateRoom(client.UserID, client.SocketID, req.RoomID, req.BetAmount)
	if err != nil {
		client.send("gameError", gin.H{"message": errorMessage(err)})
		return
	}

	client.send("gameRoomCreated", gin.H{
		"gameRoom":   room,
		"userPoints": newPoints,
	})

	log.Printf("Game room created: %s host: %s", room.ID, room.Players[0].Username)
}

func (h *WebSocketHandler) handleJoinRoom(client *Client, data json.RawMessage) {
	var req struct {
		RoomID    string `json:"roomId"`
		BetAmount int64  `json:"betAmount"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.BetAmount <= 0 {
		client.send("gameError", gin.H{"message": "Invalid bet amount"})
		return
	}

	room, player, newPoints, err := h.registry.JoinRoom(req.RoomID, client.UserID, client.SocketID, req.BetAmount)
	if err != nil {
		client.send("gameError", gin.H{"message": errorMessage(err)})
		return
	}

	h.ToSockets(roomSockets(room), "playerJoined", gin.H{
		"player":     player,
		"gameRoom":   room,
		"userPoints": newPoints,
	})

	log.Printf("Player joined room: %s player: %s", room.ID, player.Username)
}

func (h *WebSocketHandler) handleStartGame(client *Client, data json.RawMessage) {
	// The client sends the room id either bare or wrapped.
	var roomID string
	if err := json.Unmarshal(data, &roomID); err != nil {
		var req struct {
			RoomID string `json:"roomId"`
		}
		if err := json.Unmarshal(data, &req); err != nil {
			client.send("gameError", gin.H{"message": "Invalid room id"})
			return
		}
		roomID = req.RoomID
	}

	if err := h.registry.StartGame(roomID, client.SocketID); err != nil {
		client.send("gameError", gin.H{"message": errorMessage(err)})
		return
	}

	log.Printf("Game started: %s", roomID)
}

func (h *WebSocketHandler) handleSelectRoom(client *Client, data json.RawMessage) {
	var req struct {
		RoomID int `json:"roomId"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		client.send("gameError", gin.H{"message": "Invalid room number"})
		return
	}

	if err := h.registry.SelectRoom(client.SocketID, req.RoomID); err != nil {
		client.send("gameError", gin.H{"message": errorMessage(err)})
		return
	}

	client.send("roomSelected", gin.H{"roomId": req.RoomID})
}

func (h *WebSocketHandler) handleLeaveRoom(client *Client) {
	player, room, err := h.registry.LeaveBySocket(client.SocketID)
	if err != nil {
		if !errors.Is(err, services.ErrNotInRoom) {
			client.send("gameError", gin.H{"message": errorMessage(err)})
		}
		return
	}

	if room != nil {
		h.ToSockets(roomSockets(room), "playerLeft", gin.H{
			"player":   player,
			"gameRoom": room,
		})
	}

	log.Printf("Player left room: %s", player.Username)
}

func (h *WebSocketHandler) handleUpdatePoints(client *Client, data json.RawMessage) {
	var req struct {
		UserID string         `json:"userId"`
		Amount int64          `json:"amount"`
		Reason string         `json:"reason"`
		Meta   map[string]any `json:"metadata"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		client.send("gameError", gin.H{"message": "Invalid request"})
		return
	}

	// Sockets adjust their own balance; only admins may target others.
	userID := client.UserID
	if req.UserID != "" && req.UserID != client.UserID {
		if client.Role != models.RoleAdmin {
			client.send("gameError", gin.H{"message": "Not allowed"})
			return
		}
		userID = req.UserID
	}

	upd, err := h.ledger.UpdatePoints(userID, req.Amount, req.Reason, req.Meta)
	if err != nil {
		client.send("gameError", gin.H{"message": errorMessage(err)})
		return
	}

	client.send("pointsUpdated", gin.H{
		"newPoints": upd.NewPoints,
		"amount":    req.Amount,
		"reason":    req.Reason,
	})

	h.BroadcastLeaderboard()
}

func (h *WebSocketHandler) handleChatMessage(client *Client, data json.RawMessage) {
	var req struct {
		Message string `json:"message"`
		RoomID  string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.Message == "" {
		return
	}
	if !client.loggedIn {
		return
	}

	chatMessage := models.ChatMessage{
		ID:        models.GenerateRecordID("msg"),
		UserID:    client.UserID,
		Username:  client.user.Username,
		Message:   req.Message,
		Timestamp: time.Now(),
	}

	if req.RoomID != "" {
		h.ToSockets(h.registry.RoomSockets(req.RoomID), "newMessage", chatMessage)
	} else {
		h.ToAll("newMessage", chatMessage)
	}
}

func (h *WebSocketHandler) handleDisconnect(client *Client) {
	player, room, err := h.registry.LeaveBySocket(client.SocketID)
	if err == nil && room != nil {
		h.ToSockets(roomSockets(room), "playerLeft", gin.H{
			"player":   player,
			"gameRoom": room,
		})
	}

	if client.loggedIn {
		h.broadcastExcept(client.SocketID, "userOffline", client.user)
		// The hub still holds this client; exclude it from the roster.
		h.ToAll("onlineUsers", h.onlineUsersExcept(client.SocketID))
	}
}

// OnlineUsers lists the users behind logged-in sockets.
func (h *WebSocketHandler) OnlineUsers() []models.PublicUser {
	return h.onlineUsersExcept("")
}

func (h *WebSocketHandler) onlineUsersExcept(socketID string) []models.PublicUser {
	h.hub.mu.RLock()
	defer h.hub.mu.RUnlock()

	out := make([]models.PublicUser, 0, len(h.hub.clients))
	for id, c := range h.hub.clients {
		if id == socketID || !c.loggedIn {
			continue
		}
		out = append(out, c.user)
	}
	return out
}

func (h *WebSocketHandler) broadcastOnlineUsers() {
	h.ToAll("onlineUsers", h.OnlineUsers())
}

func (h *WebSocketHandler) broadcastExcept(socketID, event string, data any) {
	h.hub.mu.RLock()
	clients := make([]*Client, 0, len(h.hub.clients))
	for id, c := range h.hub.clients {
		if id != socketID {
			clients = append(clients, c)
		}
	}
	h.hub.mu.RUnlock()

	for _, c := range clients {
		c.send(event, data)
	}
}

// ToAll implements services.Broadcaster.
func (h *WebSocketHandler) ToAll(event string, data any) {
	h.broadcastExcept("", event, data)
}

// ToSockets implements services.Broadcaster.
func (h *WebSocketHandler) ToSockets(socketIDs []string, event string, data any) {
	h.hub.mu.RLock()
	clients := make([]*Client, 0, len(socketIDs))
	for _, id := range socketIDs {
		if c, ok := h.hub.clients[id]; ok {
			clients = append(clients, c)
		}
	}
	h.hub.mu.RUnlock()

	for _, c := range clients {
		c.send(event, data)
	}
}

// BroadcastLeaderboard implements services.Broadcaster: top 10 by points,
// recomputed from the full user table.
func (h *WebSocketHandler) BroadcastLeaderboard() {
	h.ToAll("leaderboardUpdate", h.store.TopByPoints(10))
}

func roomSockets(room *models.GameRoom) []string {
	ids := make([]string, 0, len(room.Players))
	for _, p := range room.Players {
		ids = append(ids, p.SocketID)
	}
	return ids
}

// errorMessage keeps service errors client-presentable.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrInsufficientPoints):
		return "Insufficient points"
	case errors.Is(err, services.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, services.ErrRoomFull):
		return "Room is full"
	case errors.Is(err, services.ErrAlreadyInRoom):
		return "Already in the room"
	case errors.Is(err, services.ErrNotHost):
		return "Only the host can start the game"
	case errors.Is(err, services.ErrRoomNotWaiting):
		return "Room is not accepting players"
	case errors.Is(err, services.ErrRoomNotPlaying):
		return "Round is not running"
	case errors.Is(err, services.ErrUserNotFound):
		return "User not found"
	default:
		return err.Error()
	}
}
