package ride

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// TestStatus_IsValid verifies status validation
func TestStatus_IsValid(t *testing.T) {
	valid := []Status{StatusRequested, StatusAssigned, StatusOngoing, StatusCompleted, StatusCancelled}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "status %q should be valid", s)
	}
	assert.False(t, Status("pending").IsValid())
	assert.False(t, Status("").IsValid())
}

// TestStatus_Terminal verifies only completed and cancelled are terminal
func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusRequested.Terminal())
	assert.False(t, StatusAssigned.Terminal())
	assert.False(t, StatusOngoing.Terminal())
}

// TestRide_TransitionGuards verifies the per-status transition guards
func TestRide_TransitionGuards(t *testing.T) {
	driverID := uuid.New()

	tests := []struct {
		name        string
		status      Status
		driverID    *uuid.UUID
		canAssign   bool
		canStart    bool
		canComplete bool
	}{
		{name: "Requested without driver", status: StatusRequested, canAssign: true},
		{name: "Requested with driver", status: StatusRequested, driverID: &driverID},
		{name: "Assigned", status: StatusAssigned, driverID: &driverID, canStart: true},
		{name: "Ongoing", status: StatusOngoing, driverID: &driverID, canComplete: true},
		{name: "Completed", status: StatusCompleted, driverID: &driverID},
		{name: "Cancelled", status: StatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Ride{ID: uuid.New(), Status: tt.status, DriverID: tt.driverID}
			assert.Equal(t, tt.canAssign, r.CanAssign())
			assert.Equal(t, tt.canStart, r.CanStart())
			assert.Equal(t, tt.canComplete, r.CanComplete())
		})
	}
}
