package dto

// CreateRideRequest represents a customer asking for a ride
type CreateRideRequest struct {
	CustomerID    string   `json:"customer_id" binding:"required,uuid"`
	PickupAddress string   `json:"pickup_address" binding:"required"`
	PickupLat     *float64 `json:"pickup_lat,omitempty"`
	PickupLng     *float64 `json:"pickup_lng,omitempty"`
	DropAddress   string   `json:"drop_address" binding:"required"`
	DropLat       *float64 `json:"drop_lat,omitempty"`
	DropLng       *float64 `json:"drop_lng,omitempty"`
	EstimatedFare *float64 `json:"estimated_fare,omitempty"`
}

// AssignDriverRequest represents a dispatcher attaching a driver to a ride
type AssignDriverRequest struct {
	DriverID string `json:"driver_id" binding:"required,uuid"`
}

// DriverApprovalRequest represents an admin approval decision
type DriverApprovalRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
}

// UpdateDriverStatusRequest represents a driver reporting availability
// and/or position
type UpdateDriverStatusRequest struct {
	IsAvailable *bool    `json:"is_available,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// CreateDriverRequest represents an admin onboarding a vetted driver.
// Self-service registration with document upload lives in the hiring
// collaborator, not here.
type CreateDriverRequest struct {
	FullName        string `json:"full_name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone" binding:"required"`
	Address         string `json:"address,omitempty"`
	ExperienceYears int    `json:"experience_years" binding:"gte=0"`
}

// CreateCustomerRequest represents an admin onboarding a customer record
type CreateCustomerRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Address  string `json:"address,omitempty"`
}

// ErrorResponse is the error body returned by all endpoints
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse wraps simple acknowledgements
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
