package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/swiftride/dispatch-backend/internal/domain/ride"
	"github.com/swiftride/dispatch-backend/pkg/database"
)

type rideRepo struct {
	q database.Queryer
}

const rideColumns = `id, customer_id, driver_id, status,
	pickup_address, pickup_lat, pickup_lng,
	drop_address, drop_lat, drop_lng,
	estimated_fare, created_at, assigned_at, started_at, completed_at, cancelled_at`

func (r *rideRepo) Create(ctx context.Context, rd *ride.Ride) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO rides (
			id, customer_id, driver_id, status,
			pickup_address, pickup_lat, pickup_lng,
			drop_address, drop_lat, drop_lng,
			estimated_fare, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, rd.ID, rd.CustomerID, nullUUID(rd.DriverID), rd.Status,
		rd.PickupAddress, nullFloat(rd.PickupLat), nullFloat(rd.PickupLng),
		rd.DropAddress, nullFloat(rd.DropLat), nullFloat(rd.DropLng),
		nullFloat(rd.EstimatedFare), rd.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert ride: %w", err)
	}
	return nil
}

func (r *rideRepo) GetByID(ctx context.Context, id uuid.UUID) (*ride.Ride, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE id = $1`, id)
	return scanRide(row)
}

func (r *rideRepo) Update(ctx context.Context, rd *ride.Ride) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE rides SET
			driver_id = $2, status = $3,
			assigned_at = $4, started_at = $5, completed_at = $6, cancelled_at = $7
		WHERE id = $1
	`, rd.ID, nullUUID(rd.DriverID), rd.Status,
		nullTimePtr(rd.AssignedAt), nullTimePtr(rd.StartedAt),
		nullTimePtr(rd.CompletedAt), nullTimePtr(rd.CancelledAt))
	if err != nil {
		return fmt.Errorf("failed to update ride: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ride.ErrRideNotFound
	}
	return nil
}

func (r *rideRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*ride.Ride, error) {
	return r.list(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE customer_id = $1 ORDER BY created_at DESC`,
		customerID)
}

func (r *rideRepo) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*ride.Ride, error) {
	return r.list(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE driver_id = $1 ORDER BY created_at DESC`,
		driverID)
}

func (r *rideRepo) List(ctx context.Context) ([]*ride.Ride, error) {
	return r.list(ctx,
		`SELECT `+rideColumns+` FROM rides ORDER BY created_at DESC`)
}

func (r *rideRepo) list(ctx context.Context, query string, args ...interface{}) ([]*ride.Ride, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rides: %w", err)
	}
	defer rows.Close()

	var rides []*ride.Ride
	for rows.Next() {
		rd, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, rd)
	}
	return rides, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRide(row rowScanner) (*ride.Ride, error) {
	var (
		rd          ride.Ride
		driverID    sql.NullString
		pickupLat   sql.NullFloat64
		pickupLng   sql.NullFloat64
		dropLat     sql.NullFloat64
		dropLng     sql.NullFloat64
		fare        sql.NullFloat64
		assignedAt  sql.NullTime
		startedAt   sql.NullTime
		completedAt sql.NullTime
		cancelledAt sql.NullTime
	)

	err := row.Scan(
		&rd.ID, &rd.CustomerID, &driverID, &rd.Status,
		&rd.PickupAddress, &pickupLat, &pickupLng,
		&rd.DropAddress, &dropLat, &dropLng,
		&fare, &rd.CreatedAt, &assignedAt, &startedAt, &completedAt, &cancelledAt,
	)
	if err == sql.ErrNoRows {
		return nil, ride.ErrRideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan ride: %w", err)
	}

	if driverID.Valid {
		id, err := uuid.Parse(driverID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid driver id on ride %s: %w", rd.ID, err)
		}
		rd.DriverID = &id
	}
	rd.PickupLat = floatPtr(pickupLat)
	rd.PickupLng = floatPtr(pickupLng)
	rd.DropLat = floatPtr(dropLat)
	rd.DropLng = floatPtr(dropLng)
	rd.EstimatedFare = floatPtr(fare)
	rd.AssignedAt = timePtr(assignedAt)
	rd.StartedAt = timePtr(startedAt)
	rd.CompletedAt = timePtr(completedAt)
	rd.CancelledAt = timePtr(cancelledAt)

	return &rd, nil
}
