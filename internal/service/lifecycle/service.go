package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/swiftride/dispatch-backend/internal/domain/driver"
	"github.com/swiftride/dispatch-backend/internal/domain/ride"
	"github.com/swiftride/dispatch-backend/internal/storage"
	"github.com/swiftride/dispatch-backend/pkg/logger"
)

// ErrCancellationUnsupported is returned by Cancel until the cancellation
// trigger is defined by product.
var ErrCancellationUnsupported = errors.New("ride cancellation is not supported")

// Service enforces the ride lifecycle: requested -> assigned -> ongoing ->
// completed, with driver availability coupled to assignment. All mutation of
// ride and driver records routes through here; each transition runs inside
// one transaction so no partial update is ever observable.
type Service struct {
	store  storage.Store
	locks  *keyedMutex
	logger *logger.Logger
}

// NewService creates a lifecycle service
func NewService(store storage.Store, logger *logger.Logger) *Service {
	return &Service{
		store:  store,
		locks:  newKeyedMutex(),
		logger: logger,
	}
}

// Assign attaches an available driver to a requested ride and marks the
// driver busy. Fails with ride.ErrAlreadyAssigned if the ride already has a
// driver and driver.ErrDriverNotAvailable if the driver is not approved or
// not available.
func (s *Service) Assign(ctx context.Context, rideID, driverID uuid.UUID) (*ride.Ride, *driver.Driver, error) {
	unlock := s.locks.lock(rideID)
	defer unlock()

	var (
		updatedRide   *ride.Ride
		updatedDriver *driver.Driver
	)

	err := s.store.RunInTx(ctx, func(tx storage.Store) error {
		rd, err := tx.Rides().GetByID(ctx, rideID)
		if err != nil {
			return err
		}
		d, err := tx.Drivers().GetByID(ctx, driverID)
		if err != nil {
			return err
		}

		if !rd.CanAssign() {
			return ride.ErrAlreadyAssigned
		}
		if !d.CanTakeRides() {
			return driver.ErrDriverNotAvailable
		}

		now := time.Now().UTC()
		id := d.ID
		rd.DriverID = &id
		rd.Status = ride.StatusAssigned
		rd.AssignedAt = &now

		if err := tx.Rides().Update(ctx, rd); err != nil {
			return err
		}
		// The guarded write is the real availability check. The read above
		// can be stale when another ride is taking the same driver; losing
		// that race rolls this ride back.
		if err := tx.Drivers().Reserve(ctx, d.ID); err != nil {
			return err
		}
		d.SetAvailability(false)

		updatedRide, updatedDriver = rd, d
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Ride assigned",
		logger.String("ride_id", updatedRide.ID.String()),
		logger.String("driver_id", updatedDriver.ID.String()),
	)
	return updatedRide, updatedDriver, nil
}

// Start moves an assigned ride to ongoing. Only the assigned status may
// start; anything else is an invalid transition.
func (s *Service) Start(ctx context.Context, rideID uuid.UUID) (*ride.Ride, error) {
	unlock := s.locks.lock(rideID)
	defer unlock()

	var updatedRide *ride.Ride

	err := s.store.RunInTx(ctx, func(tx storage.Store) error {
		rd, err := tx.Rides().GetByID(ctx, rideID)
		if err != nil {
			return err
		}

		if !rd.CanStart() {
			return ride.ErrInvalidTransition
		}

		now := time.Now().UTC()
		rd.Status = ride.StatusOngoing
		rd.StartedAt = &now

		if err := tx.Rides().Update(ctx, rd); err != nil {
			return err
		}
		updatedRide = rd
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Ride started", logger.String("ride_id", updatedRide.ID.String()))
	return updatedRide, nil
}

// Complete moves an ongoing ride to completed and frees its driver in the
// same transaction.
func (s *Service) Complete(ctx context.Context, rideID uuid.UUID) (*ride.Ride, error) {
	unlock := s.locks.lock(rideID)
	defer unlock()

	var updatedRide *ride.Ride

	err := s.store.RunInTx(ctx, func(tx storage.Store) error {
		rd, err := tx.Rides().GetByID(ctx, rideID)
		if err != nil {
			return err
		}

		if !rd.CanComplete() {
			return ride.ErrInvalidTransition
		}

		now := time.Now().UTC()
		rd.Status = ride.StatusCompleted
		rd.CompletedAt = &now

		if err := tx.Rides().Update(ctx, rd); err != nil {
			return err
		}

		if rd.DriverID != nil {
			d, err := tx.Drivers().GetByID(ctx, *rd.DriverID)
			if err != nil {
				return err
			}
			d.SetAvailability(true)
			if err := tx.Drivers().Update(ctx, d); err != nil {
				return err
			}
		}

		updatedRide = rd
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Ride completed", logger.String("ride_id", updatedRide.ID.String()))
	return updatedRide, nil
}

// Cancel is the reserved cancellation path. The schema carries the
// cancelled status and a cancelled_at column, but the trigger (customer
// action, assignment timeout) is still undecided, so the operation is
// rejected until then.
func (s *Service) Cancel(ctx context.Context, rideID uuid.UUID) error {
	return ErrCancellationUnsupported
}
