package realtime

// Event names exchanged over the websocket channel.
const (
	// EventRegister is sent by the client after connecting to announce
	// itself for the online roster.
	EventRegister = "register"
	// EventOnlineUsers carries the full roster to every connected client.
	EventOnlineUsers = "online-users"
	// EventNewNotification carries a populated notification record to one
	// user's connections.
	EventNewNotification = "new-notification"
)

// ClientEvent is a message received from a client connection. Identity is
// never taken from the payload; it comes from the verified session bound at
// upgrade time.
type ClientEvent struct {
	Event string `json:"event"`
}

// ServerEvent is a message pushed to client connections
type ServerEvent struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// RosterEntry is one user in the online roster
type RosterEntry struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}
