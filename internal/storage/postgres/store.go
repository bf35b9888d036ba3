package postgres

import (
	"context"
	"database/sql"

	"github.com/swiftride/dispatch-backend/internal/domain/customer"
	"github.com/swiftride/dispatch-backend/internal/domain/driver"
	"github.com/swiftride/dispatch-backend/internal/domain/ride"
	"github.com/swiftride/dispatch-backend/internal/storage"
	"github.com/swiftride/dispatch-backend/pkg/database"
)

// Store implements storage.Store on PostgreSQL
type Store struct {
	db *sql.DB
	q  database.Queryer
}

// NewStore creates a store bound to the connection pool
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

// Rides returns the ride repository
func (s *Store) Rides() ride.Repository {
	return &rideRepo{q: s.q}
}

// Drivers returns the driver repository
func (s *Store) Drivers() driver.Repository {
	return &driverRepo{q: s.q}
}

// Customers returns the customer repository
func (s *Store) Customers() customer.Repository {
	return &customerRepo{q: s.q}
}

// RunInTx runs fn against a store whose repositories share one transaction.
// Nested calls reuse the enclosing transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(storage.Store) error) error {
	if s.db == nil {
		return fn(s)
	}
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(&Store{q: tx})
	})
}
