package driven

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
)

// TransactionStore defines the driven port for encrypted ledger persistence.
// The store deals exclusively in ciphertext blobs; encryption and decryption
// happen above it. Every operation is scoped to the owning company.
type TransactionStore interface {
	// Insert persists a new transaction for t.CompanyID.
	Insert(ctx context.Context, t *model.Transaction) error

	// Get returns the transaction with the given id belonging to companyID,
	// or (nil, nil) when no such row exists for that company.
	Get(ctx context.Context, companyID, id int64) (*model.Transaction, error)

	// Update overwrites every encrypted field of the row matching both
	// t.ID and t.CompanyID. Returns ErrNotFound when no row matches, which
	// includes rows owned by other companies.
	Update(ctx context.Context, t *model.Transaction) error

	// Delete removes the row matching id and companyID. Returns ErrNotFound
	// when no row matches.
	Delete(ctx context.Context, companyID, id int64) error

	// ListByCompany returns all transactions for the company, newest first.
	ListByCompany(ctx context.Context, companyID int64) ([]model.Transaction, error)
}
