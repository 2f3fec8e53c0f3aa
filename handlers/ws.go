package handlers

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"

	"github.com/slateboard/slateboard-api/utils"
)

// WSHandler fans out project-level change notifications. Clients
// subscribe to a project room and receive lightweight signals telling
// them to refetch; no document payloads travel over the socket.
type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024 * 1024

	// Keep-alive settings so cloud load balancers don't drop idle rooms.
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		utils.LogWebSocket("connected", sessionProjectID(s), "")
	})

	m.HandleDisconnect(func(s *melody.Session) {
		utils.LogWebSocket("disconnected", sessionProjectID(s), "")
	})

	m.HandleError(func(s *melody.Session, err error) {
		utils.SafeWarn("websocket error: %v", err)
	})

	return &WSHandler{M: m}
}

func sessionProjectID(s *melody.Session) string {
	if v, ok := s.Get("project_id"); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// HandleWS upgrades the request and pins the session to its project room.
func (h *WSHandler) HandleWS(c *gin.Context) {
	projectID := c.Param("id")

	err := h.M.HandleRequestWithKeys(c.Writer, c.Request, map[string]interface{}{
		"project_id": projectID,
	})
	if err != nil {
		utils.SafeWarn("websocket upgrade failed: %v", err)
	}
}

// BroadcastUpdate signals every client in the project room.
func (h *WSHandler) BroadcastUpdate(projectID, updateType, actorID string) {
	msg, err := json.Marshal(gin.H{
		"type": updateType,
		"user": actorID,
		"at":   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	err = h.M.BroadcastFilter(msg, func(s *melody.Session) bool {
		id, ok := s.Get("project_id")
		return ok && id == projectID
	})
	if err != nil {
		utils.SafeWarn("broadcast to project %s failed: %v", utils.MaskID(projectID), err)
	}
}
