package customer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Customer represents a riding customer. Registration, credentials and
// phone verification live in the auth collaborator; the dispatch core only
// resolves customers by id when a ride is requested.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository interface
type Repository interface {
	Create(ctx context.Context, customer *Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	GetByPhone(ctx context.Context, phone string) (*Customer, error)
	List(ctx context.Context) ([]*Customer, error)
}

var ErrCustomerNotFound = errors.New("customer not found")
