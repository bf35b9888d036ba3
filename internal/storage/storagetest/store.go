// Package storagetest provides an in-memory storage.Store for tests. It
// honors the same transactional contract as the PostgreSQL store: a failing
// RunInTx callback undoes that transaction's writes and nothing else, so
// concurrent transactions on disjoint rows stay intact.
package storagetest

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/swiftride/dispatch-backend/internal/domain/customer"
	"github.com/swiftride/dispatch-backend/internal/domain/driver"
	"github.com/swiftride/dispatch-backend/internal/domain/ride"
	"github.com/swiftride/dispatch-backend/internal/storage"
)

// Store is an in-memory storage.Store
type Store struct {
	mu        sync.Mutex
	rides     map[uuid.UUID]*ride.Ride
	drivers   map[uuid.UUID]*driver.Driver
	customers map[uuid.UUID]*customer.Customer

	// FailDriverUpdate makes driver writes fail with the given error,
	// used to exercise rollback behavior.
	FailDriverUpdate error
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		rides:     make(map[uuid.UUID]*ride.Ride),
		drivers:   make(map[uuid.UUID]*driver.Driver),
		customers: make(map[uuid.UUID]*customer.Customer),
	}
}

// SeedRide inserts a ride directly
func (s *Store) SeedRide(r *ride.Ride) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rides[r.ID] = copyRide(r)
}

// SeedDriver inserts a driver directly
func (s *Store) SeedDriver(d *driver.Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drivers[d.ID] = copyDriver(d)
}

// SeedCustomer inserts a customer directly
func (s *Store) SeedCustomer(c *customer.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cc := *c
	s.customers[c.ID] = &cc
}

// Rides returns the ride repository
func (s *Store) Rides() ride.Repository { return &rideRepo{s: s} }

// Drivers returns the driver repository
func (s *Store) Drivers() driver.Repository { return &driverRepo{s: s} }

// Customers returns the customer repository
func (s *Store) Customers() customer.Repository { return &customerRepo{s: s} }

// RunInTx runs fn against a store view that journals every write. On a
// failing fn the journal is replayed in reverse, restoring exactly the rows
// this transaction touched.
func (s *Store) RunInTx(ctx context.Context, fn func(storage.Store) error) error {
	j := &journal{}
	if err := fn(&txStore{s: s, j: j}); err != nil {
		s.mu.Lock()
		j.rollback()
		s.mu.Unlock()
		return err
	}
	return nil
}

// journal holds undo closures for one transaction's writes. A transaction
// runs in a single goroutine, like *sql.Tx.
type journal struct {
	undo []func()
}

// record must be called with the store mutex held
func (j *journal) record(fn func()) {
	j.undo = append(j.undo, fn)
}

// rollback must be called with the store mutex held
func (j *journal) rollback() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
}

// txStore is the transactional view handed to RunInTx callbacks
type txStore struct {
	s *Store
	j *journal
}

func (t *txStore) Rides() ride.Repository         { return &rideRepo{s: t.s, j: t.j} }
func (t *txStore) Drivers() driver.Repository     { return &driverRepo{s: t.s, j: t.j} }
func (t *txStore) Customers() customer.Repository { return &customerRepo{s: t.s, j: t.j} }

// Nested calls reuse the enclosing transaction
func (t *txStore) RunInTx(ctx context.Context, fn func(storage.Store) error) error {
	return fn(t)
}

type rideRepo struct {
	s *Store
	j *journal
}

// journalRide must be called with the store mutex held, before the write
func (r *rideRepo) journalRide(id uuid.UUID) {
	if r.j == nil {
		return
	}
	if prev, ok := r.s.rides[id]; ok {
		cp := copyRide(prev)
		r.j.record(func() { r.s.rides[id] = cp })
	} else {
		r.j.record(func() { delete(r.s.rides, id) })
	}
}

func (r *rideRepo) Create(ctx context.Context, rd *ride.Ride) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.journalRide(rd.ID)
	r.s.rides[rd.ID] = copyRide(rd)
	return nil
}

func (r *rideRepo) GetByID(ctx context.Context, id uuid.UUID) (*ride.Ride, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rd, ok := r.s.rides[id]
	if !ok {
		return nil, ride.ErrRideNotFound
	}
	return copyRide(rd), nil
}

func (r *rideRepo) Update(ctx context.Context, rd *ride.Ride) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.rides[rd.ID]; !ok {
		return ride.ErrRideNotFound
	}
	r.journalRide(rd.ID)
	r.s.rides[rd.ID] = copyRide(rd)
	return nil
}

func (r *rideRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*ride.Ride, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*ride.Ride
	for _, rd := range r.s.rides {
		if rd.CustomerID == customerID {
			out = append(out, copyRide(rd))
		}
	}
	return out, nil
}

func (r *rideRepo) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*ride.Ride, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*ride.Ride
	for _, rd := range r.s.rides {
		if rd.DriverID != nil && *rd.DriverID == driverID {
			out = append(out, copyRide(rd))
		}
	}
	return out, nil
}

func (r *rideRepo) List(ctx context.Context) ([]*ride.Ride, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*ride.Ride, 0, len(r.s.rides))
	for _, rd := range r.s.rides {
		out = append(out, copyRide(rd))
	}
	return out, nil
}

type driverRepo struct {
	s *Store
	j *journal
}

// journalDriver must be called with the store mutex held, before the write
func (r *driverRepo) journalDriver(id uuid.UUID) {
	if r.j == nil {
		return
	}
	if prev, ok := r.s.drivers[id]; ok {
		cp := copyDriver(prev)
		r.j.record(func() { r.s.drivers[id] = cp })
	} else {
		r.j.record(func() { delete(r.s.drivers, id) })
	}
}

func (r *driverRepo) Create(ctx context.Context, d *driver.Driver) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.journalDriver(d.ID)
	r.s.drivers[d.ID] = copyDriver(d)
	return nil
}

func (r *driverRepo) GetByID(ctx context.Context, id uuid.UUID) (*driver.Driver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.drivers[id]
	if !ok {
		return nil, driver.ErrDriverNotFound
	}
	return copyDriver(d), nil
}

func (r *driverRepo) GetByPhone(ctx context.Context, phone string) (*driver.Driver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.drivers {
		if d.Phone == phone {
			return copyDriver(d), nil
		}
	}
	return nil, driver.ErrDriverNotFound
}

func (r *driverRepo) Update(ctx context.Context, d *driver.Driver) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailDriverUpdate != nil {
		return r.s.FailDriverUpdate
	}
	if _, ok := r.s.drivers[d.ID]; !ok {
		return driver.ErrDriverNotFound
	}
	r.journalDriver(d.ID)
	r.s.drivers[d.ID] = copyDriver(d)
	return nil
}

// Reserve checks and flips availability under the same lock, matching the
// guarded UPDATE of the PostgreSQL store.
func (r *driverRepo) Reserve(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailDriverUpdate != nil {
		return r.s.FailDriverUpdate
	}
	d, ok := r.s.drivers[id]
	if !ok || !d.CanTakeRides() {
		return driver.ErrDriverNotAvailable
	}
	r.journalDriver(id)
	d.SetAvailability(false)
	return nil
}

func (r *driverRepo) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lng float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.drivers[id]
	if !ok {
		return driver.ErrDriverNotFound
	}
	r.journalDriver(id)
	d.SetLocation(lat, lng)
	return nil
}

func (r *driverRepo) ListAvailable(ctx context.Context) ([]*driver.Driver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*driver.Driver
	for _, d := range r.s.drivers {
		if d.CanTakeRides() {
			out = append(out, copyDriver(d))
		}
	}
	return out, nil
}

func (r *driverRepo) List(ctx context.Context) ([]*driver.Driver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*driver.Driver, 0, len(r.s.drivers))
	for _, d := range r.s.drivers {
		out = append(out, copyDriver(d))
	}
	return out, nil
}

type customerRepo struct {
	s *Store
	j *journal
}

func (r *customerRepo) Create(ctx context.Context, c *customer.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.j != nil {
		id := c.ID
		if prev, ok := r.s.customers[id]; ok {
			cp := *prev
			r.j.record(func() { r.s.customers[id] = &cp })
		} else {
			r.j.record(func() { delete(r.s.customers, id) })
		}
	}
	cc := *c
	r.s.customers[c.ID] = &cc
	return nil
}

func (r *customerRepo) GetByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, customer.ErrCustomerNotFound
	}
	cc := *c
	return &cc, nil
}

func (r *customerRepo) GetByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.customers {
		if c.Phone == phone {
			cc := *c
			return &cc, nil
		}
	}
	return nil, customer.ErrCustomerNotFound
}

func (r *customerRepo) List(ctx context.Context) ([]*customer.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*customer.Customer, 0, len(r.s.customers))
	for _, c := range r.s.customers {
		cc := *c
		out = append(out, &cc)
	}
	return out, nil
}

func copyRide(r *ride.Ride) *ride.Ride {
	cp := *r
	if r.DriverID != nil {
		id := *r.DriverID
		cp.DriverID = &id
	}
	return &cp
}

func copyDriver(d *driver.Driver) *driver.Driver {
	cp := *d
	if d.Latitude != nil {
		v := *d.Latitude
		cp.Latitude = &v
	}
	if d.Longitude != nil {
		v := *d.Longitude
		cp.Longitude = &v
	}
	return &cp
}
