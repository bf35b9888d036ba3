package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/swiftride/dispatch-backend/internal/api/dto"
	"github.com/swiftride/dispatch-backend/internal/domain/driver"
	apperrors "github.com/swiftride/dispatch-backend/pkg/errors"
	"github.com/swiftride/dispatch-backend/pkg/logger"
)

// CreateDriver handles POST /v1/drivers (admin onboarding)
func (h *Handlers) CreateDriver(c *gin.Context) {
	var req dto.CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid request payload", err))
		return
	}

	now := time.Now().UTC()
	d := &driver.Driver{
		ID:              uuid.New(),
		FullName:        req.FullName,
		Email:           req.Email,
		Phone:           req.Phone,
		Address:         req.Address,
		ExperienceYears: req.ExperienceYears,
		ApprovalStatus:  driver.ApprovalPending,
		IsAvailable:     false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := h.Store.Drivers().Create(c.Request.Context(), d); err != nil {
		h.respondError(c, err)
		return
	}

	h.Logger.Info("Driver onboarded",
		logger.String("driver_id", d.ID.String()),
		logger.String("phone", d.Phone),
	)
	c.JSON(http.StatusCreated, d)
}

// ListDrivers handles GET /v1/drivers (admin)
func (h *Handlers) ListDrivers(c *gin.Context) {
	drivers, err := h.Store.Drivers().List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drivers": drivers})
}

// ListAvailableDrivers handles GET /v1/drivers/available
func (h *Handlers) ListAvailableDrivers(c *gin.Context) {
	drivers, err := h.Store.Drivers().ListAvailable(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drivers": drivers})
}

// ApproveDriver handles POST /v1/drivers/:id/approval (admin). A rejection
// also clears availability and the presence entry.
func (h *Handlers) ApproveDriver(c *gin.Context) {
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid driver id", err))
		return
	}

	var req dto.DriverApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid request payload", err))
		return
	}

	status := driver.ApprovalApproved
	if req.Action == "reject" {
		status = driver.ApprovalRejected
	}

	ctx := c.Request.Context()
	d, err := h.Store.Drivers().GetByID(ctx, driverID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := d.SetApproval(status); err != nil {
		h.respondError(c, err)
		return
	}
	if status == driver.ApprovalRejected {
		d.SetAvailability(false)
	}

	if err := h.Store.Drivers().Update(ctx, d); err != nil {
		h.respondError(c, err)
		return
	}

	if status == driver.ApprovalRejected && h.Presence != nil {
		h.Presence.Remove(ctx, d.ID.String())
	}

	h.Logger.Info("Driver approval updated",
		logger.String("driver_id", d.ID.String()),
		logger.String("approval_status", string(d.ApprovalStatus)),
	)
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Driver approval updated", Data: d})
}

// UpdateDriverStatus handles POST /v1/drivers/:id/status: availability
// and/or position self-reporting.
func (h *Handlers) UpdateDriverStatus(c *gin.Context) {
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid driver id", err))
		return
	}

	var req dto.UpdateDriverStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid request payload", err))
		return
	}

	ctx := c.Request.Context()
	d, err := h.Store.Drivers().GetByID(ctx, driverID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if req.IsAvailable != nil {
		// Going available is blocked while a ride still holds the driver;
		// completion is what frees them.
		if *req.IsAvailable {
			active, err := h.driverHasActiveRide(ctx, d.ID)
			if err != nil {
				h.respondError(c, err)
				return
			}
			if active {
				h.respondError(c, apperrors.Conflict("Driver has an active ride", nil))
				return
			}
		}
		d.SetAvailability(*req.IsAvailable)
	}
	if req.Latitude != nil && req.Longitude != nil {
		d.SetLocation(*req.Latitude, *req.Longitude)
	}

	if err := h.Store.Drivers().Update(ctx, d); err != nil {
		h.respondError(c, err)
		return
	}

	// Mirror into the presence cache, best effort
	if h.Presence != nil {
		if req.IsAvailable != nil {
			if err := h.Presence.SetAvailable(ctx, d.ID.String(), d.CanTakeRides()); err != nil {
				h.Logger.Warn("Failed to mirror driver availability", logger.Err(err),
					logger.String("driver_id", d.ID.String()))
			}
		}
		if req.Latitude != nil && req.Longitude != nil {
			if err := h.Presence.UpdateLocation(ctx, d.ID.String(), *req.Latitude, *req.Longitude); err != nil {
				h.Logger.Warn("Failed to mirror driver location", logger.Err(err),
					logger.String("driver_id", d.ID.String()))
			}
		}
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Driver status updated", Data: d})
}

// driverHasActiveRide reports whether any non-terminal ride holds the driver
func (h *Handlers) driverHasActiveRide(ctx context.Context, driverID uuid.UUID) (bool, error) {
	rides, err := h.Store.Rides().ListByDriver(ctx, driverID)
	if err != nil {
		return false, err
	}
	for _, rd := range rides {
		if !rd.Status.Terminal() {
			return true, nil
		}
	}
	return false, nil
}
