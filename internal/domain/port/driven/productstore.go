package driven

import (
	"context"
	"errors"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
)

// ErrProductInUse is returned by ProductStore.Delete when recorded sales
// still reference the product. Sales history is immutable, so the product
// cannot be removed out from under it.
var ErrProductInUse = errors.New("product has recorded sales")

// ProductStore defines the driven port for the retail product catalog.
type ProductStore interface {
	// Create inserts a new product and sets its ID.
	Create(ctx context.Context, p *model.Product) error

	// Get returns the product with the given id, or (nil, nil) when none
	// exists.
	Get(ctx context.Context, id int64) (*model.Product, error)

	// Update overwrites all fields of the product. Returns ErrNotFound for
	// a missing id.
	Update(ctx context.Context, p *model.Product) error

	// Delete removes the product. Returns ErrNotFound for a missing id and
	// ErrProductInUse when sales still reference it.
	Delete(ctx context.Context, id int64) error

	// List returns all products ordered by name.
	List(ctx context.Context) ([]model.Product, error)

	// ListLowStock returns products whose stock is at or below their
	// low-stock threshold, ordered by name.
	ListLowStock(ctx context.Context) ([]model.Product, error)
}
