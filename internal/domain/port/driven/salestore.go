package driven

import (
	"context"
	"errors"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
)

// ErrInsufficientStock is returned by SaleStore.Record when the product's
// remaining stock cannot cover the requested quantity.
var ErrInsufficientStock = errors.New("insufficient stock")

// SaleStore defines the driven port for recorded sales.
type SaleStore interface {
	// Record persists a sale in a single database transaction: it loads the
	// product, checks stock, computes TotalPrice from the current price and
	// quantity, decrements stock, and inserts the row. Returns ErrNotFound
	// when the product (or a referenced customer) does not exist, and
	// ErrInsufficientStock when stock cannot cover the quantity. On success
	// s.ID and s.TotalPrice are filled in.
	Record(ctx context.Context, s *model.Sale) error

	// List returns all sales newest first, with product and customer names
	// join-populated.
	List(ctx context.Context) ([]model.Sale, error)
}
