package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesRequestedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "dispatch", Name: "rides_requested_total", Help: "Total ride requests created"})
	RidesAssignedTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "dispatch", Name: "rides_assigned_total", Help: "Total successful driver assignments"})
	RidesCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "dispatch", Name: "rides_completed_total", Help: "Total completed rides"})

	DriverNotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dispatch", Name: "driver_notifications_total", Help: "Assignment notifications by delivery result"},
		[]string{"result"},
	)

	ConnectedDrivers = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "dispatch", Name: "connected_drivers", Help: "Drivers with a live websocket session"})
)

// Label values for DriverNotificationsTotal
const (
	ResultDelivered = "delivered"
	ResultMissed    = "missed"
)
