package ride

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the ride lifecycle status
type Status string

const (
	StatusRequested Status = "requested"
	StatusAssigned  Status = "assigned"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Ride represents a single transport request from a customer, tracked
// through its lifecycle from request to completion.
type Ride struct {
	ID            uuid.UUID  `json:"id"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	DriverID      *uuid.UUID `json:"driver_id,omitempty"`
	Status        Status     `json:"status"`
	PickupAddress string     `json:"pickup_address"`
	PickupLat     *float64   `json:"pickup_lat,omitempty"`
	PickupLng     *float64   `json:"pickup_lng,omitempty"`
	DropAddress   string     `json:"drop_address"`
	DropLat       *float64   `json:"drop_lat,omitempty"`
	DropLng       *float64   `json:"drop_lng,omitempty"`
	EstimatedFare *float64   `json:"estimated_fare,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	AssignedAt    *time.Time `json:"assigned_at,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
}

// Repository interface
type Repository interface {
	Create(ctx context.Context, ride *Ride) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ride, error)
	Update(ctx context.Context, ride *Ride) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Ride, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*Ride, error)
	List(ctx context.Context) ([]*Ride, error)
}

// Errors
var (
	ErrRideNotFound      = errors.New("ride not found")
	ErrAlreadyAssigned   = errors.New("ride already assigned")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusRequested, StatusAssigned, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanAssign checks if a driver can be attached to this ride
func (r *Ride) CanAssign() bool {
	return r.Status == StatusRequested && r.DriverID == nil
}

// CanStart checks if the ride can be started by its driver
func (r *Ride) CanStart() bool {
	return r.Status == StatusAssigned
}

// CanComplete checks if the ride can be completed
func (r *Ride) CanComplete() bool {
	return r.Status == StatusOngoing
}
