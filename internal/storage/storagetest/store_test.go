package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftride/dispatch-backend/internal/domain/ride"
	"github.com/swiftride/dispatch-backend/internal/storage"
)

func seedRide(s *Store, status ride.Status) *ride.Ride {
	r := &ride.Ride{
		ID:            uuid.New(),
		CustomerID:    uuid.New(),
		Status:        status,
		PickupAddress: "BTM Layout",
		DropAddress:   "Hebbal",
		CreatedAt:     time.Now().UTC(),
	}
	s.SeedRide(r)
	return r
}

// TestRunInTx_RollbackRestoresOnlyOwnWrites verifies a failing transaction
// undoes its own writes without touching rows committed concurrently.
func TestRunInTx_RollbackRestoresOnlyOwnWrites(t *testing.T) {
	store := NewStore()
	mine := seedRide(store, ride.StatusRequested)
	theirs := seedRide(store, ride.StatusRequested)

	wrote := make(chan struct{})
	proceed := make(chan struct{})
	txErr := errors.New("abort")

	done := make(chan error, 1)
	go func() {
		done <- store.RunInTx(context.Background(), func(tx storage.Store) error {
			mine.Status = ride.StatusAssigned
			if err := tx.Rides().Update(context.Background(), mine); err != nil {
				return err
			}
			close(wrote)
			<-proceed
			return txErr
		})
	}()

	// A concurrent commit lands between the transaction's write and its
	// rollback.
	<-wrote
	theirs.Status = ride.StatusCancelled
	require.NoError(t, store.Rides().Update(context.Background(), theirs))
	close(proceed)

	require.ErrorIs(t, <-done, txErr)

	gotMine, err := store.Rides().GetByID(context.Background(), mine.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusRequested, gotMine.Status, "aborted write must be undone")

	gotTheirs, err := store.Rides().GetByID(context.Background(), theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusCancelled, gotTheirs.Status, "concurrent commit must survive the rollback")
}

// TestRunInTx_CreateRolledBack verifies an aborted insert leaves no row
func TestRunInTx_CreateRolledBack(t *testing.T) {
	store := NewStore()
	id := uuid.New()
	txErr := errors.New("abort")

	err := store.RunInTx(context.Background(), func(tx storage.Store) error {
		if err := tx.Rides().Create(context.Background(), &ride.Ride{
			ID:            id,
			CustomerID:    uuid.New(),
			Status:        ride.StatusRequested,
			PickupAddress: "Jayanagar",
			DropAddress:   "Yeshwanthpur",
			CreatedAt:     time.Now().UTC(),
		}); err != nil {
			return err
		}
		return txErr
	})
	require.ErrorIs(t, err, txErr)

	_, err = store.Rides().GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ride.ErrRideNotFound)
}
