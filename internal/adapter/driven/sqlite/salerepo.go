package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
	"github.com/ledgerdesk/ledgerdesk/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SaleStore = (*SaleRepo)(nil)

// SaleRepo is the SQLite implementation of the SaleStore port interface.
type SaleRepo struct {
	db *DB
}

// NewSaleRepo creates a new SaleRepo backed by the given DB.
func NewSaleRepo(db *DB) *SaleRepo {
	return &SaleRepo{db: db}
}

// Record persists a sale atomically: stock check, stock decrement, and sale
// insert all commit or roll back together. TotalPrice is computed here from
// the product's current price so a concurrent price edit cannot split the
// sale across two prices.
func (r *SaleRepo) Record(ctx context.Context, s *model.Sale) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sale: %w", err)
	}
	defer tx.Rollback()

	var price string
	var stock int
	err = tx.QueryRowContext(ctx, `SELECT price, stock_qty FROM products WHERE id = ?`, s.ProductID).
		Scan(&price, &stock)
	if err == sql.ErrNoRows {
		return fmt.Errorf("record sale: product %d: %w", s.ProductID, driven.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("record sale: load product %d: %w", s.ProductID, err)
	}

	if s.CustomerID != 0 {
		var exists int
		err = tx.QueryRowContext(ctx, `SELECT 1 FROM customers WHERE id = ?`, s.CustomerID).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("record sale: customer %d: %w", s.CustomerID, driven.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("record sale: load customer %d: %w", s.CustomerID, err)
		}
	}

	if stock < s.Quantity {
		return fmt.Errorf("record sale: product %d has %d in stock: %w", s.ProductID, stock, driven.ErrInsufficientStock)
	}

	unitPrice, err := decimal.NewFromString(price)
	if err != nil {
		return fmt.Errorf("record sale: parse price %q: %w", price, err)
	}
	s.TotalPrice = unitPrice.Mul(decimal.NewFromInt(int64(s.Quantity)))

	if s.SaleDate == "" {
		s.SaleDate = time.Now().UTC().Format("2006-01-02")
	}

	if _, err := tx.ExecContext(ctx, `UPDATE products SET stock_qty = stock_qty - ? WHERE id = ?`, s.Quantity, s.ProductID); err != nil {
		return fmt.Errorf("record sale: decrement stock: %w", err)
	}

	createdAt := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO sales (product_id, customer_id, quantity, total_price, sale_date, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		s.ProductID, nullableID(s.CustomerID), s.Quantity, s.TotalPrice.String(), s.SaleDate, createdAt)
	if err != nil {
		return fmt.Errorf("record sale: insert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("record sale: last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sale: %w", err)
	}

	s.ID = id
	s.CreatedAt = createdAt
	return nil
}

// List returns all sales newest first with product and customer names joined in.
func (r *SaleRepo) List(ctx context.Context) ([]model.Sale, error) {
	const query = `
		SELECT s.id, s.product_id, COALESCE(s.customer_id, 0), s.quantity, s.total_price, s.sale_date, s.created_at,
		       p.name, COALESCE(c.name, '')
		FROM sales s
		JOIN products p ON p.id = s.product_id
		LEFT JOIN customers c ON c.id = s.customer_id
		ORDER BY s.sale_date DESC, s.id DESC`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var sales []model.Sale
	for rows.Next() {
		var s model.Sale
		var total, createdAt string
		if err := rows.Scan(&s.ID, &s.ProductID, &s.CustomerID, &s.Quantity, &total, &s.SaleDate, &createdAt, &s.ProductName, &s.CustomerName); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}

		if s.TotalPrice, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse total_price %q: %w", total, err)
		}
		if s.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}

		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}

	return sales, nil
}

// nullableID maps a zero id to NULL.
func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
