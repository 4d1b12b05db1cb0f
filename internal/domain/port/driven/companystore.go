package driven

import (
	"context"
	"errors"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
)

// ErrNotFound is returned by ownership-scoped lookups and mutations when no
// matching row exists for the caller. A row that belongs to another company
// is indistinguishable from one that never existed.
var ErrNotFound = errors.New("record not found")

// CompanyStore defines the driven port for company account persistence.
type CompanyStore interface {
	// Create inserts a new company. Name and email must be unique; a
	// constraint violation surfaces as a wrapped error.
	Create(ctx context.Context, c *model.Company) error

	// GetByEmail returns the company with the given email, or (nil, nil)
	// when none exists.
	GetByEmail(ctx context.Context, email string) (*model.Company, error)

	// GetByName returns the company with the given name, or (nil, nil)
	// when none exists.
	GetByName(ctx context.Context, name string) (*model.Company, error)

	// GetByID returns the company with the given id, or (nil, nil) when
	// none exists.
	GetByID(ctx context.Context, id int64) (*model.Company, error)

	// Delete removes a company. Owned transactions and challenges are
	// removed by foreign-key cascade. Returns ErrNotFound for a missing id.
	Delete(ctx context.Context, id int64) error
}
