package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
	"github.com/ledgerdesk/ledgerdesk/internal/domain/port/driven"
)

// ErrCompanyExists is returned by Create when the name or email is already taken.
var ErrCompanyExists = errors.New("company name or email already exists")

// Compile-time interface satisfaction check.
var _ driven.CompanyStore = (*CompanyRepo)(nil)

// CompanyRepo is the SQLite implementation of the CompanyStore port interface.
type CompanyRepo struct {
	db *DB
}

// NewCompanyRepo creates a new CompanyRepo backed by the given DB.
func NewCompanyRepo(db *DB) *CompanyRepo {
	return &CompanyRepo{db: db}
}

// Create inserts a new company and fills in its ID and creation timestamp.
func (r *CompanyRepo) Create(ctx context.Context, c *model.Company) error {
	const query = `INSERT INTO companies (name, email, password_hash, created_at) VALUES (?, ?, ?, ?)`

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := r.db.Writer.ExecContext(ctx, query, c.Name, c.Email, c.PasswordHash, createdAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("create company %q: %w", c.Name, ErrCompanyExists)
		}
		return fmt.Errorf("create company %q: %w", c.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create company %q: last insert id: %w", c.Name, err)
	}
	c.ID = id
	c.CreatedAt = createdAt

	return nil
}

// GetByEmail returns the company with the given email, or (nil, nil) when none exists.
func (r *CompanyRepo) GetByEmail(ctx context.Context, email string) (*model.Company, error) {
	return r.getWhere(ctx, "email = ?", email)
}

// GetByName returns the company with the given name, or (nil, nil) when none exists.
func (r *CompanyRepo) GetByName(ctx context.Context, name string) (*model.Company, error) {
	return r.getWhere(ctx, "name = ?", name)
}

// GetByID returns the company with the given id, or (nil, nil) when none exists.
func (r *CompanyRepo) GetByID(ctx context.Context, id int64) (*model.Company, error) {
	return r.getWhere(ctx, "id = ?", id)
}

func (r *CompanyRepo) getWhere(ctx context.Context, where string, arg any) (*model.Company, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM companies WHERE ` + where

	var c model.Company
	var createdAt string
	err := r.db.Reader.QueryRowContext(ctx, query, arg).
		Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &c, nil
}

// Delete removes a company. Transactions, challenges, and sessions are
// removed by foreign-key cascade.
func (r *CompanyRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM companies WHERE id = ?`

	res, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete company %d: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete company %d: rows affected: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("delete company %d: %w", id, driven.ErrNotFound)
	}

	return nil
}
