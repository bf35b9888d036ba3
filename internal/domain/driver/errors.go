package driver

import "errors"

var (
	ErrDriverNotFound        = errors.New("driver not found")
	ErrInvalidDriverName     = errors.New("invalid driver name")
	ErrInvalidDriverEmail    = errors.New("invalid driver email")
	ErrInvalidDriverPhone    = errors.New("invalid driver phone")
	ErrInvalidApprovalStatus = errors.New("invalid approval status")
	ErrDriverNotAvailable    = errors.New("driver is not available")
)
