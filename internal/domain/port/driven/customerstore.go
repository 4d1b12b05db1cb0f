package driven

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
)

// CustomerStore defines the driven port for the customer book.
type CustomerStore interface {
	// Create inserts a new customer and sets its ID.
	Create(ctx context.Context, c *model.Customer) error

	// Get returns the customer with the given id, or (nil, nil) when none
	// exists.
	Get(ctx context.Context, id int64) (*model.Customer, error)

	// Delete removes the customer. Returns ErrNotFound for a missing id.
	Delete(ctx context.Context, id int64) error

	// List returns all customers ordered by name.
	List(ctx context.Context) ([]model.Customer, error)
}
