package driver

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus represents the admin vetting state of a driver
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Driver represents a driver entity
type Driver struct {
	ID              uuid.UUID      `json:"id"`
	FullName        string         `json:"full_name"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone"`
	Address         string         `json:"address,omitempty"`
	ExperienceYears int            `json:"experience_years"`
	ApprovalStatus  ApprovalStatus `json:"approval_status"`
	IsAvailable     bool           `json:"is_available"`
	Latitude        *float64       `json:"latitude,omitempty"`
	Longitude       *float64       `json:"longitude,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Location represents a geographic position
type Location struct {
	Latitude  float64
	Longitude float64
}

// IsValid validates the driver entity
func (d *Driver) IsValid() error {
	if d.FullName == "" {
		return ErrInvalidDriverName
	}
	if d.Email == "" {
		return ErrInvalidDriverEmail
	}
	if d.Phone == "" {
		return ErrInvalidDriverPhone
	}
	if !d.ApprovalStatus.IsValid() {
		return ErrInvalidApprovalStatus
	}
	return nil
}

// IsValid validates the approval status
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// CanTakeRides returns true if the driver may be attached to a new ride
func (d *Driver) CanTakeRides() bool {
	return d.ApprovalStatus == ApprovalApproved && d.IsAvailable
}

// SetApproval applies an admin approval decision
func (d *Driver) SetApproval(status ApprovalStatus) error {
	if status != ApprovalApproved && status != ApprovalRejected {
		return ErrInvalidApprovalStatus
	}
	d.ApprovalStatus = status
	d.UpdatedAt = time.Now()
	return nil
}

// SetAvailability flips the driver's availability flag
func (d *Driver) SetAvailability(available bool) {
	d.IsAvailable = available
	d.UpdatedAt = time.Now()
}

// SetLocation updates the driver's last known position
func (d *Driver) SetLocation(lat, lng float64) {
	d.Latitude = &lat
	d.Longitude = &lng
	d.UpdatedAt = time.Now()
}

// GetLocation returns the driver's last known position, if reported
func (d *Driver) GetLocation() *Location {
	if d.Latitude == nil || d.Longitude == nil {
		return nil
	}
	return &Location{
		Latitude:  *d.Latitude,
		Longitude: *d.Longitude,
	}
}
