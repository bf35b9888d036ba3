package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	"github.com/swiftride/dispatch-backend/internal/observability"
	"github.com/swiftride/dispatch-backend/pkg/logger"
	ws "github.com/swiftride/dispatch-backend/pkg/websocket"
)

// HandleDriverWS handles GET /v1/ws/driver: upgrades the connection and
// registers the driver's live session. Last connect wins; a reconnecting
// driver displaces their previous session.
func (h *Handlers) HandleDriverWS(c *gin.Context) {
	driverID, err := uuid.Parse(c.Query("driver_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "driver_id query parameter required"})
		return
	}

	// Unknown drivers don't get a session
	if _, err := h.Store.Drivers().GetByID(c.Request.Context(), driverID); err != nil {
		h.respondError(c, err)
		return
	}

	upgrader := gorilla.Upgrader{
		ReadBufferSize:  h.WSConfig.ReadBufferSize,
		WriteBufferSize: h.WSConfig.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return true // origin is enforced by the CORS layer in front
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Error("Failed to upgrade to WebSocket", logger.Err(err))
		return
	}

	session := ws.NewSession(h.Sessions, conn, driverID.String(), h.Logger)
	h.Sessions.Register(driverID.String(), session)
	observability.ConnectedDrivers.Set(float64(h.Sessions.Count()))

	if err := session.SendJSON(ws.Frame{
		Event:    ws.EventConnected,
		DriverID: driverID.String(),
		Message:  "WebSocket connected successfully.",
	}); err != nil {
		h.Logger.Warn("Failed to queue welcome frame",
			logger.Err(err),
			logger.String("driver_id", driverID.String()),
		)
	}

	go session.WritePump()
	session.ReadPump()

	// ReadPump returned: the connection is gone and the session has been
	// unregistered (unless already displaced by a newer one).
	observability.ConnectedDrivers.Set(float64(h.Sessions.Count()))
}
