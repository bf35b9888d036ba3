package monitoring

import (
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// Config holds New Relic configuration
type Config struct {
	LicenseKey string
	AppName    string
	Enabled    bool
}

// NewRelicApp wraps the New Relic application
type NewRelicApp struct {
	*newrelic.Application
	enabled bool
}

// New creates a new New Relic application
func New(cfg Config) (*NewRelicApp, error) {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		// Return disabled app
		return &NewRelicApp{nil, false}, nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(true),
		newrelic.ConfigDistributedTracerEnabled(true),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create New Relic application: %w", err)
	}

	return &NewRelicApp{app, true}, nil
}

// IsEnabled returns whether New Relic is enabled
func (nr *NewRelicApp) IsEnabled() bool {
	return nr != nil && nr.enabled
}

// RecordCustomEvent records a custom event
func (nr *NewRelicApp) RecordCustomEvent(eventType string, params map[string]interface{}) {
	if nr == nil || !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.RecordCustomEvent(eventType, params)
}

// RecordCustomMetric records a custom metric
func (nr *NewRelicApp) RecordCustomMetric(name string, value float64) {
	if nr == nil || !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.RecordCustomMetric(name, value)
}

// Shutdown gracefully shuts down the New Relic application
func (nr *NewRelicApp) Shutdown(timeout time.Duration) {
	if nr == nil || !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.Shutdown(timeout)
}

// Custom event helpers

// RecordRideAssigned records a successful driver assignment
func (nr *NewRelicApp) RecordRideAssigned(rideID, driverID string, notified bool) {
	nr.RecordCustomEvent("RideAssigned", map[string]interface{}{
		"ride_id":   rideID,
		"driver_id": driverID,
		"notified":  notified,
		"timestamp": time.Now().Unix(),
	})
}

// RecordRideCompleted records ride completion
func (nr *NewRelicApp) RecordRideCompleted(rideID string, durationSeconds float64) {
	nr.RecordCustomEvent("RideCompleted", map[string]interface{}{
		"ride_id":          rideID,
		"duration_seconds": durationSeconds,
	})
}

// RecordDispatchMiss records a notification that found no live session
func (nr *NewRelicApp) RecordDispatchMiss(driverID string) {
	nr.RecordCustomEvent("DispatchMiss", map[string]interface{}{
		"driver_id": driverID,
		"timestamp": time.Now().Unix(),
	})
}

// RecordConnectedDrivers records the live connection gauge
func (nr *NewRelicApp) RecordConnectedDrivers(count int) {
	nr.RecordCustomMetric("custom/ws/connected_drivers", float64(count))
}
