package storage

import (
	"context"

	"github.com/swiftride/dispatch-backend/internal/domain/customer"
	"github.com/swiftride/dispatch-backend/internal/domain/driver"
	"github.com/swiftride/dispatch-backend/internal/domain/ride"
)

// Store bundles the persistence collaborators the dispatch core consumes.
// RunInTx executes fn against a store whose repositories share one
// transaction, which is how a ride and its driver are updated
// both-or-neither during assignment and completion.
type Store interface {
	Rides() ride.Repository
	Drivers() driver.Repository
	Customers() customer.Repository
	RunInTx(ctx context.Context, fn func(Store) error) error
}
