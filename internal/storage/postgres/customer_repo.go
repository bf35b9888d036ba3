package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/swiftride/dispatch-backend/internal/domain/customer"
	"github.com/swiftride/dispatch-backend/pkg/database"
)

type customerRepo struct {
	q database.Queryer
}

const customerColumns = `id, full_name, email, phone, address, created_at`

func (r *customerRepo) Create(ctx context.Context, c *customer.Customer) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO customers (id, full_name, email, phone, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.FullName, c.Email, c.Phone, c.Address, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	return nil
}

func (r *customerRepo) GetByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	return scanCustomer(row)
}

func (r *customerRepo) GetByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE phone = $1`, phone)
	return scanCustomer(row)
}

func (r *customerRepo) List(ctx context.Context) ([]*customer.Customer, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []*customer.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func scanCustomer(row rowScanner) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.Address, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, customer.ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}
	return &c, nil
}
