package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
	"github.com/ledgerdesk/ledgerdesk/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CustomerStore = (*CustomerRepo)(nil)

// CustomerRepo is the SQLite implementation of the CustomerStore port interface.
type CustomerRepo struct {
	db *DB
}

// NewCustomerRepo creates a new CustomerRepo backed by the given DB.
func NewCustomerRepo(db *DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

// Create inserts a new customer and fills in its ID.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	const query = `INSERT INTO customers (name, phone, email) VALUES (?, ?, ?)`

	res, err := r.db.Writer.ExecContext(ctx, query, c.Name, nullable(c.Phone), nullable(c.Email))
	if err != nil {
		return fmt.Errorf("create customer %q: %w", c.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create customer %q: last insert id: %w", c.Name, err)
	}
	c.ID = id

	return nil
}

// Get returns the customer with the given id, or (nil, nil) when none exists.
func (r *CustomerRepo) Get(ctx context.Context, id int64) (*model.Customer, error) {
	const query = `SELECT id, name, COALESCE(phone, ''), COALESCE(email, '') FROM customers WHERE id = ?`

	var c model.Customer
	err := r.db.Reader.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Phone, &c.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}

	return &c, nil
}

// Delete removes the customer. Returns ErrNotFound for a missing id.
func (r *CustomerRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM customers WHERE id = ?`

	res, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete customer %d: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete customer %d: rows affected: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("delete customer %d: %w", id, driven.ErrNotFound)
	}

	return nil
}

// List returns all customers ordered by name.
func (r *CustomerRepo) List(ctx context.Context) ([]model.Customer, error) {
	const query = `SELECT id, name, COALESCE(phone, ''), COALESCE(email, '') FROM customers ORDER BY name ASC`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}

	return customers, nil
}

// nullable maps an empty string to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
