package dispatch

import (
	"errors"

	"github.com/swiftride/dispatch-backend/pkg/logger"
	ws "github.com/swiftride/dispatch-backend/pkg/websocket"
)

// EventRideAssigned is the discriminator driver clients dispatch on
const EventRideAssigned = "RIDE_ASSIGNED"

// ErrNoActiveSession reports a best-effort notification miss: the driver has
// no live connection, or the one on record was dead. Never surfaced as a
// request failure.
var ErrNoActiveSession = errors.New("no active driver session")

// RideAssignedEvent is the payload pushed to a driver when a ride is
// attached to them.
type RideAssignedEvent struct {
	Event   string `json:"event"`
	Message string `json:"message,omitempty"`
	RideID  string `json:"ride_id"`
	Pickup  string `json:"pickup"`
	Drop    string `json:"drop"`
}

// Notifier delivers assignment events to a driver's live connection via the
// session registry. Delivery is fire-and-forget: no retry, no queueing for
// offline drivers.
type Notifier struct {
	sessions *ws.Registry
	logger   *logger.Logger
}

// NewNotifier creates a notifier over the session registry
func NewNotifier(sessions *ws.Registry, logger *logger.Logger) *Notifier {
	return &Notifier{sessions: sessions, logger: logger}
}

// RideAssigned pushes the event to the driver's session, if one exists. A
// send failure means the session is dead or hopelessly backed up, so it is
// unregistered and not retried.
func (n *Notifier) RideAssigned(driverID string, event RideAssignedEvent) error {
	event.Event = EventRideAssigned

	session, ok := n.sessions.Lookup(driverID)
	if !ok {
		return ErrNoActiveSession
	}

	if err := session.SendJSON(event); err != nil {
		n.logger.Warn("Dropping dead driver session after failed send",
			logger.Err(err),
			logger.String("driver_id", driverID),
			logger.String("session_id", session.ID),
		)
		n.sessions.Unregister(driverID, session)
		return ErrNoActiveSession
	}

	n.logger.Info("Assignment event delivered",
		logger.String("driver_id", driverID),
		logger.String("ride_id", event.RideID),
	)
	return nil
}
