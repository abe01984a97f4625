package handlers

import (
	"net/http"

	"github.com/Dastan2209/Hideout_Messenger/internal/ws"
	jwtutil "github.com/Dastan2209/Hideout_Messenger/pkg/jwt"
	"github.com/Dastan2209/Hideout_Messenger/pkg/logger"
	"github.com/gorilla/websocket"
)

// WSHandler attaches authenticated users to the push hub. The socket is
// downstream only: messages, presence and call signals flow server to
// client, all mutations go over the REST endpoints.
type WSHandler struct {
	Hub       *ws.Hub
	JWTSecret string
}

func NewWSHandler(hub *ws.Hub, jwtSecret string) *WSHandler {
	return &WSHandler{Hub: hub, JWTSecret: jwtSecret}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *WSHandler) AttachHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil || claims.Scope != jwtutil.ScopeUser {
		logger.Log.Warnf("Websocket auth failed: %v", err)
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warnf("Websocket upgrade failed: %v", err)
		return
	}

	userID := claims.UserID
	h.Hub.Add(userID, conn)
	logger.Log.Infof("Websocket connected: %s", userID)

	defer func() {
		h.Hub.Remove(userID, conn)
		conn.Close()
		logger.Log.Infof("Websocket disconnected: %s", userID)
	}()

	// Drain the connection; we only care about noticing the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
