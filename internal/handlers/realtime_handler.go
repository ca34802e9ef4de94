package handlers

import (
	"log"
	"net/http"

	"github.com/campushub/backend/internal/realtime"
	"github.com/campushub/backend/internal/repositories"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// RealtimeHandler upgrades authenticated requests to websocket connections
// bound to the presence hub
type RealtimeHandler struct {
	hub            *realtime.Hub
	userRepository repositories.UserRepository
	log            *log.Logger
	upgrader       websocket.Upgrader
}

// NewRealtimeHandler creates a new RealtimeHandler
func NewRealtimeHandler(hub *realtime.Hub, userRepo repositories.UserRepository, logger *log.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:            hub,
		userRepository: userRepo,
		log:            logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRealtimeRoutes registers the websocket endpoint
func (h *RealtimeHandler) RegisterRealtimeRoutes(g *echo.Group) {
	g.GET("/ws", h.ServeWS)
}

// ServeWS upgrades the connection and binds it to the session's user. The
// roster identity comes from the verified token and the user record, never
// from client-supplied handshake fields.
func (h *RealtimeHandler) ServeWS(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authenticated user not found in database")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Printf("realtime: upgrade failed: %v", err)
		return err
	}

	entry := realtime.RosterEntry{
		UserID:   user.ID,
		Username: user.Username,
		Avatar:   user.AvatarURL,
	}
	client := realtime.NewClient(entry, conn, h.hub, h.log)
	h.hub.Attach(client)

	go client.Write()
	go client.Read()

	return nil
}
