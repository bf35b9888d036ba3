package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftride/dispatch-backend/internal/domain/driver"
	"github.com/swiftride/dispatch-backend/internal/domain/ride"
	"github.com/swiftride/dispatch-backend/internal/storage"
	"github.com/swiftride/dispatch-backend/internal/storage/storagetest"
	"github.com/swiftride/dispatch-backend/pkg/logger"
)

// readDelayStore parks transactional driver reads long enough for another
// assignment to interleave between read and write.
type readDelayStore struct {
	storage.Store
	delay time.Duration
}

func (s *readDelayStore) Drivers() driver.Repository {
	return &readDelayDrivers{Repository: s.Store.Drivers(), delay: s.delay}
}

func (s *readDelayStore) RunInTx(ctx context.Context, fn func(storage.Store) error) error {
	return s.Store.RunInTx(ctx, func(tx storage.Store) error {
		return fn(&readDelayStore{Store: tx, delay: s.delay})
	})
}

type readDelayDrivers struct {
	driver.Repository
	delay time.Duration
}

func (r *readDelayDrivers) GetByID(ctx context.Context, id uuid.UUID) (*driver.Driver, error) {
	d, err := r.Repository.GetByID(ctx, id)
	time.Sleep(r.delay)
	return d, err
}

func newTestService(store *storagetest.Store) *Service {
	return NewService(store, logger.NewNop())
}

func seedRequestedRide(store *storagetest.Store) *ride.Ride {
	r := &ride.Ride{
		ID:            uuid.New(),
		CustomerID:    uuid.New(),
		Status:        ride.StatusRequested,
		PickupAddress: "MG Road, Bangalore",
		DropAddress:   "Airport Terminal 2",
		CreatedAt:     time.Now().UTC(),
	}
	store.SeedRide(r)
	return r
}

func seedApprovedDriver(store *storagetest.Store) *driver.Driver {
	d := &driver.Driver{
		ID:             uuid.New(),
		FullName:       "Ravi Kumar",
		Email:          "ravi@example.com",
		Phone:          "+919876543210",
		ApprovalStatus: driver.ApprovalApproved,
		IsAvailable:    true,
		CreatedAt:      time.Now().UTC(),
	}
	store.SeedDriver(d)
	return d
}

// TestAssign_Success verifies a clean assignment: ride moves to assigned with
// the driver attached and a timestamp, and the driver becomes busy.
func TestAssign_Success(t *testing.T) {
	store := storagetest.NewStore()
	svc := newTestService(store)
	r := seedRequestedRide(store)
	d := seedApprovedDriver(store)

	gotRide, gotDriver, err := svc.Assign(context.Background(), r.ID, d.ID)
	require.NoError(t, err)

	assert.Equal(t, ride.StatusAssigned, gotRide.Status)
	require.NotNil(t, gotRide.DriverID)
	assert.Equal(t, d.ID, *gotRide.DriverID)
	require.NotNil(t, gotRide.AssignedAt)
	assert.False(t, gotDriver.IsAvailable, "driver should be busy after assignment")

	stored, err := store.Rides().GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusAssigned, stored.Status)

	storedDriver, err := store.Drivers().GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.False(t, storedDriver.IsAvailable)
}

// TestAssign_AlreadyAssigned verifies the second assignment attempt fails and
// leaves the first assignment untouched.
func TestAssign_AlreadyAssigned(t *testing.T) {
	store := storagetest.NewStore()
	svc := newTestService(store)
	r := seedRequestedRide(store)
	first := seedApprovedDriver(store)
	second := seedApprovedDriver(store)

	_, _, err := svc.Assign(context.Background(), r.ID, first.ID)
	require.NoError(t, err)

	_, _, err = svc.Assign(context.Background(), r.ID, second.ID)
	assert.ErrorIs(t, err, ride.ErrAlreadyAssigned)

	stored, err := store.Rides().GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.DriverID)
	assert.Equal(t, first.ID, *stored.DriverID, "first assignment should stand")

	storedSecond, err := store.Drivers().GetByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.True(t, storedSecond.IsAvailable, "losing driver should stay available")
}

// TestAssign_DriverGate verifies that only approved and available drivers can
// be attached to a ride.
func TestAssign_DriverGate(t *testing.T) {
	tests := []struct {
		name      string
		approval  driver.ApprovalStatus
		available bool
	}{
		{name: "Pending driver", approval: driver.ApprovalPending, available: true},
		{name: "Rejected driver", approval: driver.ApprovalRejected, available: true},
		{name: "Busy driver", approval: driver.ApprovalApproved, available: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storagetest.NewStore()
			svc := newTestService(store)
			r := seedRequestedRide(store)
			d := seedApprovedDriver(store)
			d.ApprovalStatus = tt.approval
			d.IsAvailable = tt.available
			store.SeedDriver(d)

			_, _, err := svc.Assign(context.Background(), r.ID, d.ID)
			assert.ErrorIs(t, err, driver.ErrDriverNotAvailable)

			stored, err := store.Rides().GetByID(context.Background(), r.ID)
			require.NoError(t, err)
			assert.Equal(t, ride.StatusRequested, stored.Status, "ride should be unchanged")
			assert.Nil(t, stored.DriverID)
		})
	}
}

// TestAssign_NotFound verifies missing ride and driver lookups surface the
// domain not-found errors.
func TestAssign_NotFound(t *testing.T) {
	store := storagetest.NewStore()
	svc := newTestService(store)
	r := seedRequestedRide(store)
	d := seedApprovedDriver(store)

	_, _, err := svc.Assign(context.Background(), uuid.New(), d.ID)
	assert.ErrorIs(t, err, ride.ErrRideNotFound)

	_, _, err = svc.Assign(context.Background(), r.ID, uuid.New())
	assert.ErrorIs(t, err, driver.ErrDriverNotFound)
}

// TestAssign_RollsBackOnDriverUpdateFailure verifies the ride update is not
// observable when the driver write fails inside the same transaction.
func TestAssign_RollsBackOnDriverUpdateFailure(t *testing.T) {
	store := storagetest.NewStore()
	svc := newTestService(store)
	r := seedRequestedRide(store)
	d := seedApprovedDriver(store)

	store.FailDriverUpdate = errors.New("connection reset")

	_, _, err := svc.Assign(context.Background(), r.ID, d.ID)
	require.Error(t, err)

	store.FailDriverUpdate = nil
	stored, err := store.Rides().GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusRequested, stored.Status, "ride update should have rolled back")
	assert.Nil(t, stored.DriverID)
}

// TestAssign_ConcurrentSingleWinner verifies that concurrent assignment
// attempts for the same ride produce exactly one assigned driver.
func TestAssign_ConcurrentSingleWinner(t *testing.T) {
	store := storagetest.NewStore()
	svc := newTestService(store)
	r := seedRequestedRide(store)

	const attempts = 8
	drivers := make([]*driver.Driver, attempts)
	for i := range drivers {
		drivers[i] = seedApprovedDriver(store)
	}

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.Assign(context.Background(), r.ID, drivers[i].ID)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ride.ErrAlreadyAssigned)
		}
	}
	assert.Equal(t, 1, wins, "exactly one assignment should win")

	busy := 0
	for _, d := range drivers {
		stored, err := store.Drivers().GetByID(context.Background(), d.ID)
		require.NoError(t, err)
		if !stored.IsAvailable {
			busy++
		}
	}
	assert.Equal(t, 1, busy, "only the winning driver should be busy")
}

// TestAssign_ConcurrentDriverSingleBooking verifies two rides racing for the
// same driver book it exactly once, even when both transactions read the
// driver as available before either write lands.
func TestAssign_ConcurrentDriverSingleBooking(t *testing.T) {
	store := storagetest.NewStore()
	svc := NewService(&readDelayStore{Store: store, delay: 5 * time.Millisecond}, logger.NewNop())
	rideIDs := []uuid.UUID{seedRequestedRide(store).ID, seedRequestedRide(store).ID}
	d := seedApprovedDriver(store)

	var wg sync.WaitGroup
	errs := make([]error, len(rideIDs))
	for i := range rideIDs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.Assign(context.Background(), rideIDs[i], d.ID)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, driver.ErrDriverNotAvailable)
		}
	}
	require.Equal(t, 1, wins, "the driver must be booked onto exactly one ride")

	for i, id := range rideIDs {
		stored, err := store.Rides().GetByID(context.Background(), id)
		require.NoError(t, err)
		if errs[i] == nil {
			require.NotNil(t, stored.DriverID)
			assert.Equal(t, d.ID, *stored.DriverID)
			assert.Equal(t, ride.StatusAssigned, stored.Status)
		} else {
			assert.Equal(t, ride.StatusRequested, stored.Status, "losing ride must roll back")
			assert.Nil(t, stored.DriverID)
		}
	}

	storedDriver, err := store.Drivers().GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.False(t, storedDriver.IsAvailable)
}

// TestStart_Transitions verifies the guard on starting a ride
func TestStart_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		status  ride.Status
		wantErr error
	}{
		{name: "Assigned ride starts", status: ride.StatusAssigned, wantErr: nil},
		{name: "Requested ride rejected", status: ride.StatusRequested, wantErr: ride.ErrInvalidTransition},
		{name: "Ongoing ride rejected", status: ride.StatusOngoing, wantErr: ride.ErrInvalidTransition},
		{name: "Completed ride rejected", status: ride.StatusCompleted, wantErr: ride.ErrInvalidTransition},
		{name: "Cancelled ride rejected", status: ride.StatusCancelled, wantErr: ride.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storagetest.NewStore()
			svc := newTestService(store)
			r := seedRequestedRide(store)
			r.Status = tt.status
			store.SeedRide(r)

			got, err := svc.Start(context.Background(), r.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				stored, gerr := store.Rides().GetByID(context.Background(), r.ID)
				require.NoError(t, gerr)
				assert.Equal(t, tt.status, stored.Status, "failed transition must not mutate the ride")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ride.StatusOngoing, got.Status)
			require.NotNil(t, got.StartedAt)
		})
	}
}

// TestComplete_RestoresDriverAvailability verifies completion frees the
// driver in the same operation.
func TestComplete_RestoresDriverAvailability(t *testing.T) {
	store := storagetest.NewStore()
	svc := newTestService(store)
	r := seedRequestedRide(store)
	d := seedApprovedDriver(store)

	_, _, err := svc.Assign(context.Background(), r.ID, d.ID)
	require.NoError(t, err)
	_, err = svc.Start(context.Background(), r.ID)
	require.NoError(t, err)

	got, err := svc.Complete(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)

	stored, err := store.Drivers().GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAvailable, "driver should be available again after completion")
}

// TestComplete_Guard verifies only ongoing rides can complete
func TestComplete_Guard(t *testing.T) {
	statuses := []ride.Status{
		ride.StatusRequested,
		ride.StatusAssigned,
		ride.StatusCompleted,
		ride.StatusCancelled,
	}

	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			store := storagetest.NewStore()
			svc := newTestService(store)
			r := seedRequestedRide(store)
			r.Status = status
			store.SeedRide(r)

			_, err := svc.Complete(context.Background(), r.ID)
			assert.ErrorIs(t, err, ride.ErrInvalidTransition)
		})
	}
}

// TestCancel_Unsupported verifies the cancellation path is reserved
func TestCancel_Unsupported(t *testing.T) {
	store := storagetest.NewStore()
	svc := newTestService(store)
	r := seedRequestedRide(store)

	err := svc.Cancel(context.Background(), r.ID)
	assert.ErrorIs(t, err, ErrCancellationUnsupported)

	stored, err := store.Rides().GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusRequested, stored.Status)
}
