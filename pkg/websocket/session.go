package websocket

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/swiftride/dispatch-backend/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Frame events exchanged on the driver channel. The receiving client
// dispatches on the Event discriminator, so it is never omitted.
const (
	EventConnected = "CONNECTED"
	EventPing      = "PING"
	EventPong      = "PONG"
)

var (
	ErrSessionClosed  = errors.New("session closed")
	ErrSendBufferFull = errors.New("session send buffer full")
)

// Frame is the envelope for control events on the driver channel
type Frame struct {
	Event    string `json:"event"`
	DriverID string `json:"driver_id,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Session represents one driver's live connection
type Session struct {
	ID       string
	DriverID string

	registry *Registry
	conn     *websocket.Conn
	send     chan []byte
	logger   *logger.Logger

	mu     sync.Mutex
	closed bool
}

// NewSession creates a session for an upgraded driver connection
func NewSession(registry *Registry, conn *websocket.Conn, driverID string, logger *logger.Logger) *Session {
	return &Session{
		ID:       newSessionID(),
		DriverID: driverID,
		registry: registry,
		conn:     conn,
		send:     make(chan []byte, 256),
		logger:   logger,
	}
}

// Send queues a payload for delivery. It never blocks: a full buffer or a
// closed session reports an error so the caller can treat the session as
// dead.
func (s *Session) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	select {
	case s.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// SendJSON marshals v and queues it for delivery
func (s *Session) SendJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Send(data)
}

// Close marks the session dead and wakes the write pump
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}

// ReadPump pumps inbound frames until the connection dies, then removes the
// session from the registry. Runs in the connection's goroutine.
func (s *Session) ReadPump() {
	defer func() {
		s.registry.Unregister(s.DriverID, s)
		s.Close()
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Error("WebSocket read error",
					logger.Err(err),
					logger.String("driver_id", s.DriverID),
					logger.String("session_id", s.ID),
				)
			}
			break
		}
		s.handleFrame(message)
	}
}

// WritePump pumps queued payloads to the connection and keeps it alive with
// protocol pings.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := s.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Drain queued payloads into the same websocket message
			n := len(s.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-s.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleFrame processes an inbound frame from the driver client
func (s *Session) handleFrame(message []byte) {
	var frame Frame
	if err := json.Unmarshal(message, &frame); err != nil {
		s.logger.Warn("Failed to unmarshal driver frame",
			logger.Err(err),
			logger.String("driver_id", s.DriverID),
		)
		return
	}

	switch frame.Event {
	case EventPing:
		if err := s.SendJSON(Frame{Event: EventPong}); err != nil {
			s.logger.Warn("Failed to queue pong",
				logger.Err(err),
				logger.String("driver_id", s.DriverID),
			)
		}
	default:
		s.logger.Debug("Ignoring driver frame",
			logger.String("event", frame.Event),
			logger.String("driver_id", s.DriverID),
		)
	}
}

func newSessionID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(b)
}
