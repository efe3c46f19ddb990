// internal/handlers/ws/ws_handler.go
package ws

import (
	"net/http"

	gorilla "github.com/gorilla/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beedab-service/internal/middleware"
	"beedab-service/internal/websocket"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Auth happens via bearer token, not cookies; cross-origin
		// upgrades carry no ambient credentials.
		return true
	},
}

type WSHandler struct {
	hub    *websocket.Hub
	logger *zap.Logger
}

func NewWSHandler(hub *websocket.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub:    hub,
		logger: logger,
	}
}

// Connect upgrades the request and registers the connection for
// billing event pushes. Runs behind the auth middleware; browsers
// pass the token as a ?token= query parameter.
func (h *WSHandler) Connect(c *gin.Context) {
	identityID := middleware.MustGetIdentityID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Int64("identity_id", identityID), zap.Error(err))
		return
	}

	client := websocket.NewClient(h.hub, conn, identityID)
	client.Register()
}
