package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/swiftride/dispatch-backend/internal/config"
	"github.com/swiftride/dispatch-backend/internal/domain/customer"
	"github.com/swiftride/dispatch-backend/internal/domain/driver"
	"github.com/swiftride/dispatch-backend/internal/domain/ride"
	"github.com/swiftride/dispatch-backend/internal/service/dispatch"
	"github.com/swiftride/dispatch-backend/internal/service/lifecycle"
	"github.com/swiftride/dispatch-backend/internal/service/presence"
	"github.com/swiftride/dispatch-backend/internal/storage"
	apperrors "github.com/swiftride/dispatch-backend/pkg/errors"
	"github.com/swiftride/dispatch-backend/pkg/logger"
	ws "github.com/swiftride/dispatch-backend/pkg/websocket"
)

// Handlers holds all handler dependencies
type Handlers struct {
	Store      storage.Store
	Dispatcher *dispatch.Coordinator
	Presence   *presence.Tracker
	Sessions   *ws.Registry
	Logger     *logger.Logger
	WSConfig   config.WebSocketConfig
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	store storage.Store,
	dispatcher *dispatch.Coordinator,
	presenceTracker *presence.Tracker,
	sessions *ws.Registry,
	logger *logger.Logger,
	wsConfig config.WebSocketConfig,
) *Handlers {
	return &Handlers{
		Store:      store,
		Dispatcher: dispatcher,
		Presence:   presenceTracker,
		Sessions:   sessions,
		Logger:     logger,
		WSConfig:   wsConfig,
	}
}

// respondError translates domain errors into the shared error body
func (h *Handlers) respondError(c *gin.Context, err error) {
	appErr := toAppError(err)
	if appErr.Status >= 500 {
		h.Logger.Error("Request failed",
			logger.Err(err),
			logger.String("path", c.FullPath()),
		)
	}
	c.JSON(appErr.Status, appErr)
}

func toAppError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, ride.ErrRideNotFound):
		return apperrors.ErrRideNotFound
	case errors.Is(err, driver.ErrDriverNotFound):
		return apperrors.ErrDriverNotFound
	case errors.Is(err, customer.ErrCustomerNotFound):
		return apperrors.ErrCustomerNotFound
	case errors.Is(err, ride.ErrAlreadyAssigned):
		return apperrors.ErrRideAlreadyAssigned
	case errors.Is(err, driver.ErrDriverNotAvailable):
		return apperrors.ErrDriverNotAvailable
	case errors.Is(err, ride.ErrInvalidTransition):
		return apperrors.ErrInvalidTransition
	case errors.Is(err, driver.ErrInvalidApprovalStatus):
		return apperrors.ErrInvalidApproval
	case errors.Is(err, lifecycle.ErrCancellationUnsupported):
		return apperrors.BadRequest("Ride cancellation is not supported yet", err)
	default:
		return apperrors.GetAppError(err)
	}
}
