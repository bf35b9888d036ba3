package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/swiftride/dispatch-backend/internal/api/dto"
	"github.com/swiftride/dispatch-backend/internal/domain/ride"
	"github.com/swiftride/dispatch-backend/internal/observability"
	apperrors "github.com/swiftride/dispatch-backend/pkg/errors"
	"github.com/swiftride/dispatch-backend/pkg/logger"
)

// CreateRide handles POST /v1/rides
func (h *Handlers) CreateRide(c *gin.Context) {
	var req dto.CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid request payload", err))
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid customer id", err))
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Store.Customers().GetByID(ctx, customerID); err != nil {
		h.respondError(c, err)
		return
	}

	rd := &ride.Ride{
		ID:            uuid.New(),
		CustomerID:    customerID,
		Status:        ride.StatusRequested,
		PickupAddress: req.PickupAddress,
		PickupLat:     req.PickupLat,
		PickupLng:     req.PickupLng,
		DropAddress:   req.DropAddress,
		DropLat:       req.DropLat,
		DropLng:       req.DropLng,
		EstimatedFare: req.EstimatedFare,
		CreatedAt:     time.Now().UTC(),
	}

	if err := h.Store.Rides().Create(ctx, rd); err != nil {
		h.respondError(c, err)
		return
	}

	observability.RidesRequestedTotal.Inc()
	h.Logger.Info("Ride requested",
		logger.String("ride_id", rd.ID.String()),
		logger.String("customer_id", customerID.String()),
	)

	c.JSON(http.StatusCreated, rd)
}

// GetRide handles GET /v1/rides/:id
func (h *Handlers) GetRide(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid ride id", err))
		return
	}

	rd, err := h.Store.Rides().GetByID(c.Request.Context(), rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rd)
}

// ListRides handles GET /v1/rides (admin)
func (h *Handlers) ListRides(c *gin.Context) {
	rides, err := h.Store.Rides().List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": rides})
}

// AssignDriver handles POST /v1/rides/:id/assign (admin/dispatcher)
func (h *Handlers) AssignDriver(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid ride id", err))
		return
	}

	var req dto.AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid request payload", err))
		return
	}

	driverID, err := uuid.Parse(req.DriverID)
	if err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid driver id", err))
		return
	}

	rd, err := h.Dispatcher.AssignDriver(c.Request.Context(), rideID, driverID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Driver assigned", Data: rd})
}

// StartRide handles POST /v1/rides/:id/start (driver)
func (h *Handlers) StartRide(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid ride id", err))
		return
	}

	rd, err := h.Dispatcher.StartRide(c.Request.Context(), rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Ride started", Data: rd})
}

// CompleteRide handles POST /v1/rides/:id/complete (driver)
func (h *Handlers) CompleteRide(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid ride id", err))
		return
	}

	rd, err := h.Dispatcher.CompleteRide(c.Request.Context(), rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Ride completed", Data: rd})
}

// CancelRide handles POST /v1/rides/:id/cancel. The cancellation trigger is
// still undecided, so this consistently rejects for now.
func (h *Handlers) CancelRide(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid ride id", err))
		return
	}

	if err := h.Dispatcher.CancelRide(c.Request.Context(), rideID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Ride cancelled"})
}

// ListCustomerRides handles GET /v1/customers/:id/rides
func (h *Handlers) ListCustomerRides(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid customer id", err))
		return
	}

	rides, err := h.Store.Rides().ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": rides})
}

// ListDriverRides handles GET /v1/drivers/:id/rides
func (h *Handlers) ListDriverRides(c *gin.Context) {
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid driver id", err))
		return
	}

	rides, err := h.Store.Rides().ListByDriver(c.Request.Context(), driverID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": rides})
}
