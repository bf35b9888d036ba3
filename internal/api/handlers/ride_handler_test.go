package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftride/dispatch-backend/internal/config"
	"github.com/swiftride/dispatch-backend/internal/domain/customer"
	"github.com/swiftride/dispatch-backend/internal/domain/driver"
	"github.com/swiftride/dispatch-backend/internal/domain/ride"
	"github.com/swiftride/dispatch-backend/internal/service/dispatch"
	"github.com/swiftride/dispatch-backend/internal/service/lifecycle"
	"github.com/swiftride/dispatch-backend/internal/storage/storagetest"
	"github.com/swiftride/dispatch-backend/pkg/logger"
	ws "github.com/swiftride/dispatch-backend/pkg/websocket"
)

func newTestRouter(store *storagetest.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)

	log := logger.NewNop()
	registry := ws.NewRegistry(log)
	notifier := dispatch.NewNotifier(registry, log)
	lc := lifecycle.NewService(store, log)
	coord := dispatch.NewCoordinator(lc, notifier, nil, nil, log)
	h := NewHandlers(store, coord, nil, registry, log, config.WebSocketConfig{})

	r := gin.New()
	r.POST("/v1/rides", h.CreateRide)
	r.GET("/v1/rides/:id", h.GetRide)
	r.POST("/v1/rides/:id/assign", h.AssignDriver)
	r.POST("/v1/rides/:id/start", h.StartRide)
	r.POST("/v1/rides/:id/complete", h.CompleteRide)
	r.POST("/v1/rides/:id/cancel", h.CancelRide)
	r.POST("/v1/drivers/:id/status", h.UpdateDriverStatus)
	return r
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func seedHandlerFixtures(store *storagetest.Store) (*ride.Ride, *driver.Driver, *customer.Customer) {
	c := &customer.Customer{
		ID:       uuid.New(),
		FullName: "Priya Nair",
		Email:    "priya@example.com",
		Phone:    "+919800000001",
	}
	r := &ride.Ride{
		ID:            uuid.New(),
		CustomerID:    c.ID,
		Status:        ride.StatusRequested,
		PickupAddress: "Koramangala 5th Block",
		DropAddress:   "Majestic Bus Stand",
		CreatedAt:     time.Now().UTC(),
	}
	d := &driver.Driver{
		ID:             uuid.New(),
		FullName:       "Suresh Babu",
		Email:          "suresh@example.com",
		Phone:          "+919800000002",
		ApprovalStatus: driver.ApprovalApproved,
		IsAvailable:    true,
	}
	store.SeedCustomer(c)
	store.SeedRide(r)
	store.SeedDriver(d)
	return r, d, c
}

// TestCreateRide verifies ride creation and customer validation
func TestCreateRide(t *testing.T) {
	store := storagetest.NewStore()
	router := newTestRouter(store)
	_, _, c := seedHandlerFixtures(store)

	rec := doJSON(t, router, http.MethodPost, "/v1/rides", gin.H{
		"customer_id":    c.ID.String(),
		"pickup_address": "HSR Layout",
		"drop_address":   "Electronic City",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created ride.Ride
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, ride.StatusRequested, created.Status)
	assert.Equal(t, c.ID, created.CustomerID)
	assert.Nil(t, created.DriverID)

	rec = doJSON(t, router, http.MethodPost, "/v1/rides", gin.H{
		"customer_id":    uuid.New().String(),
		"pickup_address": "HSR Layout",
		"drop_address":   "Electronic City",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code, "unknown customer should be rejected")
}

// TestAssignDriver_Endpoint verifies success and the conflict mapping for a
// repeated assignment.
func TestAssignDriver_Endpoint(t *testing.T) {
	store := storagetest.NewStore()
	router := newTestRouter(store)
	r, d, _ := seedHandlerFixtures(store)

	path := fmt.Sprintf("/v1/rides/%s/assign", r.ID)
	rec := doJSON(t, router, http.MethodPost, path, gin.H{"driver_id": d.ID.String()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	second := &driver.Driver{
		ID:             uuid.New(),
		FullName:       "Kiran Rao",
		Email:          "kiran@example.com",
		Phone:          "+919800000003",
		ApprovalStatus: driver.ApprovalApproved,
		IsAvailable:    true,
	}
	store.SeedDriver(second)

	rec = doJSON(t, router, http.MethodPost, path, gin.H{"driver_id": second.ID.String()})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "CONFLICT", body["code"])
}

// TestAssignDriver_ErrorMapping verifies the HTTP status for each guard
// failure.
func TestAssignDriver_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		prepare    func(store *storagetest.Store, r *ride.Ride, d *driver.Driver) (rideID, driverID string)
		wantStatus int
	}{
		{
			name: "Unknown ride",
			prepare: func(store *storagetest.Store, r *ride.Ride, d *driver.Driver) (string, string) {
				return uuid.New().String(), d.ID.String()
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "Unknown driver",
			prepare: func(store *storagetest.Store, r *ride.Ride, d *driver.Driver) (string, string) {
				return r.ID.String(), uuid.New().String()
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "Unavailable driver",
			prepare: func(store *storagetest.Store, r *ride.Ride, d *driver.Driver) (string, string) {
				d.IsAvailable = false
				store.SeedDriver(d)
				return r.ID.String(), d.ID.String()
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "Malformed ride id",
			prepare: func(store *storagetest.Store, r *ride.Ride, d *driver.Driver) (string, string) {
				return "not-a-uuid", d.ID.String()
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storagetest.NewStore()
			router := newTestRouter(store)
			r, d, _ := seedHandlerFixtures(store)

			rideID, driverID := tt.prepare(store, r, d)
			path := fmt.Sprintf("/v1/rides/%s/assign", rideID)
			rec := doJSON(t, router, http.MethodPost, path, gin.H{"driver_id": driverID})
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

// TestRideLifecycle_Endpoints walks a ride through assign, start and
// complete, checking bad orderings along the way.
func TestRideLifecycle_Endpoints(t *testing.T) {
	store := storagetest.NewStore()
	router := newTestRouter(store)
	r, d, _ := seedHandlerFixtures(store)

	startPath := fmt.Sprintf("/v1/rides/%s/start", r.ID)
	completePath := fmt.Sprintf("/v1/rides/%s/complete", r.ID)

	rec := doJSON(t, router, http.MethodPost, startPath, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "requested ride cannot start")

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/rides/%s/assign", r.ID), gin.H{"driver_id": d.ID.String()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, completePath, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "assigned ride cannot complete before starting")

	rec = doJSON(t, router, http.MethodPost, startPath, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, completePath, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := store.Drivers().GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAvailable, "completion should free the driver")
}

// TestCancelRide_Endpoint verifies the reserved cancellation path maps to a
// client error.
func TestCancelRide_Endpoint(t *testing.T) {
	store := storagetest.NewStore()
	router := newTestRouter(store)
	r, _, _ := seedHandlerFixtures(store)

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/rides/%s/cancel", r.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
