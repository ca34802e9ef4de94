package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// Client is one websocket connection bound to an authenticated user
type Client struct {
	conn     *websocket.Conn
	hub      *Hub
	log      *log.Logger
	user     RosterEntry
	send     chan *ServerEvent
	stop     chan struct{}
	stopOnce sync.Once
}

// NewClient binds a websocket connection to the user verified at upgrade
// time. Client-supplied identity fields are never trusted.
func NewClient(user RosterEntry, conn *websocket.Conn, hub *Hub, l *log.Logger) *Client {
	return &Client{
		conn: conn,
		hub:  hub,
		log:  l,
		user: user,
		send: make(chan *ServerEvent, 256),
		stop: make(chan struct{}),
	}
}

// Write pumps queued events to the connection and keeps it alive with pings
func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(msg)
			if err != nil {
				c.log.Println("realtime: failed to serialize event:", err)
				continue
			}

			if !c.writeMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.writeMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

// Read pumps inbound events from the connection until it closes
func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.hub.Detach(c)
		c.stopClient()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("realtime: read: %v", err)
			}
			break
		}

		var msg ClientEvent
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Println("realtime: error parsing client event:", err)
			continue
		}

		switch msg.Event {
		case EventRegister:
			c.hub.Register(c)
		default:
			c.log.Printf("realtime: ignoring unknown client event %q", msg.Event)
		}
	}
}

func (c *Client) queueEvent(msg *ServerEvent) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) writeMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("realtime: write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() { close(c.stop) })
}
