package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/swiftride/dispatch-backend/internal/api/dto"
	"github.com/swiftride/dispatch-backend/internal/domain/customer"
	apperrors "github.com/swiftride/dispatch-backend/pkg/errors"
)

// CreateCustomer handles POST /v1/customers (admin onboarding)
func (h *Handlers) CreateCustomer(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid request payload", err))
		return
	}

	cust := &customer.Customer{
		ID:        uuid.New(),
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.Store.Customers().Create(c.Request.Context(), cust); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, cust)
}

// GetCustomer handles GET /v1/customers/:id
func (h *Handlers) GetCustomer(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid customer id", err))
		return
	}

	cust, err := h.Store.Customers().GetByID(c.Request.Context(), customerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}
