package controller

import (
	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/internal/middleware"
	ws "github.com/ikkim/storerating-backend/internal/websocket"
)

// LiveController upgrades store owners to the live rating feed.
type LiveController struct {
	hub      *ws.Hub
	upgrader *gorillaws.Upgrader
}

func NewLiveController(hub *ws.Hub, allowedOrigins []string) *LiveController {
	return &LiveController{
		hub:      hub,
		upgrader: ws.NewUpgrader(allowedOrigins),
	}
}

// Connect handles the websocket upgrade
// GET /api/stores/my-store/live
func (ctrl *LiveController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "", "")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader already wrote the error response
		log.Warn("Failed to upgrade to WebSocket", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, ownerID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("Live feed connection established", map[string]interface{}{
		"owner_id": ownerID,
	})
}
