package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftride/dispatch-backend/internal/storage/storagetest"
)

// TestUpdateDriverStatus_BlockedDuringActiveRide verifies a driver cannot
// self-report available while a ride still holds them.
func TestUpdateDriverStatus_BlockedDuringActiveRide(t *testing.T) {
	store := storagetest.NewStore()
	router := newTestRouter(store)
	r, d, _ := seedHandlerFixtures(store)

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/rides/%s/assign", r.ID), gin.H{"driver_id": d.ID.String()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/rides/%s/start", r.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	statusPath := fmt.Sprintf("/v1/drivers/%s/status", d.ID)
	rec = doJSON(t, router, http.MethodPost, statusPath, gin.H{"is_available": true})
	assert.Equal(t, http.StatusConflict, rec.Code, "ongoing ride must block going available")

	stored, err := store.Drivers().GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsAvailable)

	// Location updates and going unavailable stay allowed mid-ride
	rec = doJSON(t, router, http.MethodPost, statusPath, gin.H{"latitude": 12.9716, "longitude": 77.5946})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/rides/%s/complete", r.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, statusPath, gin.H{"is_available": true})
	assert.Equal(t, http.StatusOK, rec.Code, "completed ride frees the driver for self-report")
}
