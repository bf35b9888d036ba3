package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/swiftride/dispatch-backend/internal/domain/driver"
	"github.com/swiftride/dispatch-backend/pkg/database"
)

type driverRepo struct {
	q database.Queryer
}

const driverColumns = `id, full_name, email, phone, address, experience_years,
	approval_status, is_available, latitude, longitude, created_at, updated_at`

func (r *driverRepo) Create(ctx context.Context, d *driver.Driver) error {
	if err := d.IsValid(); err != nil {
		return err
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO drivers (
			id, full_name, email, phone, address, experience_years,
			approval_status, is_available, latitude, longitude, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, d.ID, d.FullName, d.Email, d.Phone, d.Address, d.ExperienceYears,
		d.ApprovalStatus, d.IsAvailable, nullFloat(d.Latitude), nullFloat(d.Longitude),
		d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert driver: %w", err)
	}
	return nil
}

func (r *driverRepo) GetByID(ctx context.Context, id uuid.UUID) (*driver.Driver, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+driverColumns+` FROM drivers WHERE id = $1`, id)
	return scanDriver(row)
}

func (r *driverRepo) GetByPhone(ctx context.Context, phone string) (*driver.Driver, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+driverColumns+` FROM drivers WHERE phone = $1`, phone)
	return scanDriver(row)
}

func (r *driverRepo) Update(ctx context.Context, d *driver.Driver) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE drivers SET
			full_name = $2, email = $3, phone = $4, address = $5,
			experience_years = $6, approval_status = $7, is_available = $8,
			latitude = $9, longitude = $10, updated_at = $11
		WHERE id = $1
	`, d.ID, d.FullName, d.Email, d.Phone, d.Address,
		d.ExperienceYears, d.ApprovalStatus, d.IsAvailable,
		nullFloat(d.Latitude), nullFloat(d.Longitude), d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update driver: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return driver.ErrDriverNotFound
	}
	return nil
}

func (r *driverRepo) Reserve(ctx context.Context, id uuid.UUID) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE drivers SET is_available = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_available = TRUE AND approval_status = $2
	`, id, driver.ApprovalApproved)
	if err != nil {
		return fmt.Errorf("failed to reserve driver: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return driver.ErrDriverNotAvailable
	}
	return nil
}

func (r *driverRepo) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lng float64) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE drivers SET latitude = $2, longitude = $3, updated_at = NOW()
		WHERE id = $1
	`, id, lat, lng)
	if err != nil {
		return fmt.Errorf("failed to update driver location: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return driver.ErrDriverNotFound
	}
	return nil
}

func (r *driverRepo) ListAvailable(ctx context.Context) ([]*driver.Driver, error) {
	return r.list(ctx, `
		SELECT `+driverColumns+` FROM drivers
		WHERE approval_status = $1 AND is_available = TRUE
		ORDER BY updated_at DESC
	`, driver.ApprovalApproved)
}

func (r *driverRepo) List(ctx context.Context) ([]*driver.Driver, error) {
	return r.list(ctx,
		`SELECT `+driverColumns+` FROM drivers ORDER BY created_at DESC`)
}

func (r *driverRepo) list(ctx context.Context, query string, args ...interface{}) ([]*driver.Driver, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query drivers: %w", err)
	}
	defer rows.Close()

	var drivers []*driver.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func scanDriver(row rowScanner) (*driver.Driver, error) {
	var (
		d   driver.Driver
		lat sql.NullFloat64
		lng sql.NullFloat64
	)

	err := row.Scan(
		&d.ID, &d.FullName, &d.Email, &d.Phone, &d.Address, &d.ExperienceYears,
		&d.ApprovalStatus, &d.IsAvailable, &lat, &lng, &d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, driver.ErrDriverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan driver: %w", err)
	}

	d.Latitude = floatPtr(lat)
	d.Longitude = floatPtr(lng)
	return &d, nil
}
