package driver

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for driver data access
type Repository interface {
	// Create creates a new driver
	Create(ctx context.Context, driver *Driver) error

	// GetByID retrieves a driver by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Driver, error)

	// GetByPhone retrieves a driver by phone number
	GetByPhone(ctx context.Context, phone string) (*Driver, error)

	// Update updates a driver
	Update(ctx context.Context, driver *Driver) error

	// Reserve flips the driver to busy, but only while they are approved
	// and still available. Returns ErrDriverNotAvailable when the guard
	// does not hold, so two concurrent assignments can never both take
	// the same driver.
	Reserve(ctx context.Context, id uuid.UUID) error

	// UpdateLocation updates the driver's last known position
	UpdateLocation(ctx context.Context, id uuid.UUID, lat, lng float64) error

	// ListAvailable retrieves approved drivers currently accepting rides
	ListAvailable(ctx context.Context) ([]*Driver, error)

	// List retrieves all drivers
	List(ctx context.Context) ([]*Driver, error)
}
