package dispatch

import (
	"context"

	"github.com/google/uuid"
	"github.com/swiftride/dispatch-backend/internal/domain/ride"
	"github.com/swiftride/dispatch-backend/internal/observability"
	"github.com/swiftride/dispatch-backend/internal/service/lifecycle"
	"github.com/swiftride/dispatch-backend/pkg/logger"
	"github.com/swiftride/dispatch-backend/pkg/monitoring"
)

// AssignmentNotifier pushes assignment events to driver sessions
type AssignmentNotifier interface {
	RideAssigned(driverID string, event RideAssignedEvent) error
}

// AvailabilityMirror reflects driver availability into the presence cache.
// Best-effort: mirror failures are logged, never surfaced.
type AvailabilityMirror interface {
	SetAvailable(ctx context.Context, driverID string, available bool) error
}

// Coordinator orchestrates driver assignment: guarded state transition
// first, notification second. The assignment stands even when the driver
// could not be reached; a missed push is logged and counted only.
type Coordinator struct {
	lifecycle *lifecycle.Service
	notifier  AssignmentNotifier
	presence  AvailabilityMirror
	monitor   *monitoring.NewRelicApp
	logger    *logger.Logger
}

// NewCoordinator creates a dispatch coordinator. presence may be nil when no
// cache is configured.
func NewCoordinator(
	lc *lifecycle.Service,
	notifier AssignmentNotifier,
	presence AvailabilityMirror,
	monitor *monitoring.NewRelicApp,
	logger *logger.Logger,
) *Coordinator {
	return &Coordinator{
		lifecycle: lc,
		notifier:  notifier,
		presence:  presence,
		monitor:   monitor,
		logger:    logger,
	}
}

// AssignDriver attaches the driver to the ride and pushes the assignment
// event to the driver's live connection. State-machine errors propagate
// unchanged; a second call for an already-assigned ride deterministically
// fails with ride.ErrAlreadyAssigned and has no further side effects.
func (c *Coordinator) AssignDriver(ctx context.Context, rideID, driverID uuid.UUID) (*ride.Ride, error) {
	rd, d, err := c.lifecycle.Assign(ctx, rideID, driverID)
	if err != nil {
		return nil, err
	}

	observability.RidesAssignedTotal.Inc()
	c.mirrorAvailability(ctx, d.ID.String(), false)

	event := RideAssignedEvent{
		Message: "New ride assigned!",
		RideID:  rd.ID.String(),
		Pickup:  rd.PickupAddress,
		Drop:    rd.DropAddress,
	}

	notified := true
	if err := c.notifier.RideAssigned(d.ID.String(), event); err != nil {
		// The assignment already committed; a missed push is never rolled
		// back and never retried.
		notified = false
		observability.DriverNotificationsTotal.WithLabelValues(observability.ResultMissed).Inc()
		c.logger.Warn("Driver not notified of assignment",
			logger.Err(err),
			logger.String("ride_id", rd.ID.String()),
			logger.String("driver_id", d.ID.String()),
		)
		c.monitor.RecordDispatchMiss(d.ID.String())
	} else {
		observability.DriverNotificationsTotal.WithLabelValues(observability.ResultDelivered).Inc()
	}

	c.monitor.RecordRideAssigned(rd.ID.String(), d.ID.String(), notified)
	return rd, nil
}

// StartRide moves an assigned ride to ongoing
func (c *Coordinator) StartRide(ctx context.Context, rideID uuid.UUID) (*ride.Ride, error) {
	return c.lifecycle.Start(ctx, rideID)
}

// CompleteRide completes an ongoing ride and restores the driver's
// availability, mirroring it into the presence cache.
func (c *Coordinator) CompleteRide(ctx context.Context, rideID uuid.UUID) (*ride.Ride, error) {
	rd, err := c.lifecycle.Complete(ctx, rideID)
	if err != nil {
		return nil, err
	}

	observability.RidesCompletedTotal.Inc()
	if rd.DriverID != nil {
		c.mirrorAvailability(ctx, rd.DriverID.String(), true)
	}
	if rd.StartedAt != nil && rd.CompletedAt != nil {
		c.monitor.RecordRideCompleted(rd.ID.String(), rd.CompletedAt.Sub(*rd.StartedAt).Seconds())
	}
	return rd, nil
}

// CancelRide is the reserved cancellation path; see lifecycle.Cancel
func (c *Coordinator) CancelRide(ctx context.Context, rideID uuid.UUID) error {
	return c.lifecycle.Cancel(ctx, rideID)
}

func (c *Coordinator) mirrorAvailability(ctx context.Context, driverID string, available bool) {
	if c.presence == nil {
		return
	}
	if err := c.presence.SetAvailable(ctx, driverID, available); err != nil {
		c.logger.Warn("Failed to mirror driver availability",
			logger.Err(err),
			logger.String("driver_id", driverID),
			logger.Bool("available", available),
		)
	}
}
