package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
	"github.com/ledgerdesk/ledgerdesk/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TransactionStore = (*TransactionRepo)(nil)

// TransactionRepo is the SQLite implementation of the TransactionStore port
// interface. Every sensitive column is an opaque ciphertext blob; the only
// plaintext this adapter handles is ids and timestamps. All reads and writes
// are scoped by company_id so a cross-tenant row behaves as if it did not
// exist.
type TransactionRepo struct {
	db *DB
}

// NewTransactionRepo creates a new TransactionRepo backed by the given DB.
func NewTransactionRepo(db *DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

// Insert persists a new transaction and fills in its ID and creation timestamp.
func (r *TransactionRepo) Insert(ctx context.Context, t *model.Transaction) error {
	const query = `
		INSERT INTO transactions (company_id, date_enc, type_enc, category_enc, amount_enc, notes_enc, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := r.db.Writer.ExecContext(ctx, query,
		t.CompanyID, []byte(t.Date), []byte(t.Type), []byte(t.Category), []byte(t.Amount), []byte(t.Notes), createdAt)
	if err != nil {
		return fmt.Errorf("insert transaction for company %d: %w", t.CompanyID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert transaction: last insert id: %w", err)
	}
	t.ID = id
	t.CreatedAt = createdAt

	return nil
}

// Get returns the transaction matching both id and companyID, or (nil, nil)
// when no such row exists for that company.
func (r *TransactionRepo) Get(ctx context.Context, companyID, id int64) (*model.Transaction, error) {
	const query = `
		SELECT id, company_id, date_enc, type_enc, category_enc, amount_enc, notes_enc, created_at
		FROM transactions
		WHERE id = ? AND company_id = ?`

	t, err := scanTransaction(r.db.Reader.QueryRowContext(ctx, query, id, companyID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction %d: %w", id, err)
	}

	return t, nil
}

// Update fully overwrites the encrypted fields of the row matching both
// t.ID and t.CompanyID. Returns ErrNotFound when no row matches.
func (r *TransactionRepo) Update(ctx context.Context, t *model.Transaction) error {
	const query = `
		UPDATE transactions
		SET date_enc = ?, type_enc = ?, category_enc = ?, amount_enc = ?, notes_enc = ?
		WHERE id = ? AND company_id = ?`

	res, err := r.db.Writer.ExecContext(ctx, query,
		[]byte(t.Date), []byte(t.Type), []byte(t.Category), []byte(t.Amount), []byte(t.Notes), t.ID, t.CompanyID)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction %d: rows affected: %w", t.ID, err)
	}
	if rows == 0 {
		return fmt.Errorf("update transaction %d: %w", t.ID, driven.ErrNotFound)
	}

	return nil
}

// Delete removes the row matching id and companyID. Returns ErrNotFound when
// no row matches.
func (r *TransactionRepo) Delete(ctx context.Context, companyID, id int64) error {
	const query = `DELETE FROM transactions WHERE id = ? AND company_id = ?`

	res, err := r.db.Writer.ExecContext(ctx, query, id, companyID)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction %d: rows affected: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("delete transaction %d: %w", id, driven.ErrNotFound)
	}

	return nil
}

// ListByCompany returns all of the company's transactions, newest first.
func (r *TransactionRepo) ListByCompany(ctx context.Context, companyID int64) ([]model.Transaction, error) {
	const query = `
		SELECT id, company_id, date_enc, type_enc, category_enc, amount_enc, notes_enc, created_at
		FROM transactions
		WHERE company_id = ?
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Reader.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list transactions for company %d: %w", companyID, err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return txns, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var t model.Transaction
	var date, typ, category, amount, notes []byte
	var createdAt string

	if err := row.Scan(&t.ID, &t.CompanyID, &date, &typ, &category, &amount, &notes, &createdAt); err != nil {
		return nil, err
	}

	t.Date = model.Encrypted(date)
	t.Type = model.Encrypted(typ)
	t.Category = model.Encrypted(category)
	t.Amount = model.Encrypted(amount)
	t.Notes = model.Encrypted(notes)

	var err error
	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &t, nil
}
