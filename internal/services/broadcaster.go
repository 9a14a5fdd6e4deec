package services

// Broadcaster pushes events to connected sockets. The WebSocket hub
// implements it; services never import the handlers package.
type Broadcaster interface {
	ToAll(event string, data any)
	ToSockets(socketIDs []string, event string, data any)
	BroadcastLeaderboard()
}

// NopBroadcaster drops every event. Used before the hub is wired and in
// tests.
type NopBroadcaster struct{}

func (NopBroadcaster) ToAll(string, any)                 {}
func (NopBroadcaster) ToSockets([]string, string, any)   {}
func (NopBroadcaster) BroadcastLeaderboard()             {}
