package realtime

import (
	"log"
	"sort"
	"sync"
)

// Hub owns the presence roster and the per-user addressable connection
// groups. It is constructed once in main and injected wherever realtime
// delivery is needed; the roster is process-local and lost on restart.
//
// Delivery is fire-and-forget: a full send buffer or an offline user drops
// the message. Durable state lives in the notification store, not here.
type Hub struct {
	log *log.Logger

	mu      sync.RWMutex
	clients map[*Client]struct{}
	users   map[uint]map[*Client]struct{} // per-user addressable group
	roster  map[uint]RosterEntry          // at most one entry per user id
}

// NewHub creates a Hub with an empty roster
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		log:     logger,
		clients: make(map[*Client]struct{}),
		users:   make(map[uint]map[*Client]struct{}),
		roster:  make(map[uint]RosterEntry),
	}
}

// Attach binds a connection to its authenticated user so targeted messages
// reach it. The user does not appear in the roster until Register.
func (h *Hub) Attach(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	conns, ok := h.users[c.user.UserID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.users[c.user.UserID] = conns
	}
	conns[c] = struct{}{}
	h.log.Printf("realtime: attached connection for user %d (%d total)", c.user.UserID, len(h.clients))
}

// Register places the connection's user in the online roster and broadcasts
// the full roster to every connected client. A second connection for the
// same user updates the single roster entry, it never duplicates it.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.roster[c.user.UserID] = c.user
	h.mu.Unlock()

	h.BroadcastAll(EventOnlineUsers, h.Roster())
}

// Detach removes a closed connection. When the user's last connection goes
// away their roster entry is removed and the roster is re-broadcast.
func (h *Hub) Detach(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)

	wasOnline := false
	if conns, ok := h.users[c.user.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.users, c.user.UserID)
			if _, ok := h.roster[c.user.UserID]; ok {
				delete(h.roster, c.user.UserID)
				wasOnline = true
			}
		}
	}
	h.mu.Unlock()

	if wasOnline {
		h.BroadcastAll(EventOnlineUsers, h.Roster())
	}
}

// SendToUser delivers payload to every active connection bound to userID.
// Messages to offline users are silently dropped.
func (h *Hub) SendToUser(userID uint, event string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.users[userID]
	if !ok {
		return
	}
	msg := &ServerEvent{Event: event, Payload: payload}
	for c := range conns {
		if !c.queueEvent(msg) {
			h.log.Printf("realtime: dropping %q for user %d, send buffer full", event, userID)
		}
	}
}

// BroadcastAll delivers payload to every connected client
func (h *Hub) BroadcastAll(event string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msg := &ServerEvent{Event: event, Payload: payload}
	for c := range h.clients {
		if !c.queueEvent(msg) {
			h.log.Printf("realtime: dropping broadcast %q, send buffer full", event)
		}
	}
}

// Roster returns the current online roster sorted by user id
func (h *Hub) Roster() []RosterEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	entries := make([]RosterEntry, 0, len(h.roster))
	for _, e := range h.roster {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	return entries
}

// IsOnline reports whether the user has a roster entry
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.roster[userID]
	return ok
}

// Shutdown stops every connected client
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.log.Println("realtime: shutting down, closing connections")
	for c := range h.clients {
		c.stopClient()
	}
	h.clients = make(map[*Client]struct{})
	h.users = make(map[uint]map[*Client]struct{})
	h.roster = make(map[uint]RosterEntry)
}
