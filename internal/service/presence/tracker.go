package presence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/swiftride/dispatch-backend/pkg/logger"
)

const (
	availableSetKey = "drivers:available"
	locationsGeoKey = "drivers:locations"
)

// Tracker mirrors driver availability and last known position into Redis so
// dispatcher views don't hit PostgreSQL on every poll. The database remains
// the source of truth; the mirror is best-effort.
type Tracker struct {
	redis  *redis.Client
	logger *logger.Logger
}

// NewTracker creates a presence tracker
func NewTracker(client *redis.Client, logger *logger.Logger) *Tracker {
	return &Tracker{redis: client, logger: logger}
}

// SetAvailable adds or removes the driver from the available set
func (t *Tracker) SetAvailable(ctx context.Context, driverID string, available bool) error {
	var err error
	if available {
		err = t.redis.SAdd(ctx, availableSetKey, driverID).Err()
	} else {
		err = t.redis.SRem(ctx, availableSetKey, driverID).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to update availability set: %w", err)
	}
	return nil
}

// IsAvailable reports whether the driver is in the available set
func (t *Tracker) IsAvailable(ctx context.Context, driverID string) (bool, error) {
	ok, err := t.redis.SIsMember(ctx, availableSetKey, driverID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check availability set: %w", err)
	}
	return ok, nil
}

// AvailableDrivers returns the ids currently marked available
func (t *Tracker) AvailableDrivers(ctx context.Context) ([]string, error) {
	ids, err := t.redis.SMembers(ctx, availableSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read availability set: %w", err)
	}
	return ids, nil
}

// UpdateLocation records the driver's last known position in the GEO index
func (t *Tracker) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	err := t.redis.GeoAdd(ctx, locationsGeoKey, &redis.GeoLocation{
		Name:      driverID,
		Latitude:  lat,
		Longitude: lng,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to update driver location: %w", err)
	}
	return nil
}

// Remove drops the driver from both the availability set and the GEO index,
// used when a driver is rejected or deactivated.
func (t *Tracker) Remove(ctx context.Context, driverID string) {
	if err := t.redis.SRem(ctx, availableSetKey, driverID).Err(); err != nil {
		t.logger.Warn("Failed to remove driver from availability set",
			logger.Err(err), logger.String("driver_id", driverID))
	}
	if err := t.redis.ZRem(ctx, locationsGeoKey, driverID).Err(); err != nil {
		t.logger.Warn("Failed to remove driver from location index",
			logger.Err(err), logger.String("driver_id", driverID))
	}
}
