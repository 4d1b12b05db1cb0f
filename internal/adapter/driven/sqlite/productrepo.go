package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
	"github.com/ledgerdesk/ledgerdesk/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ProductStore = (*ProductRepo)(nil)

// ProductRepo is the SQLite implementation of the ProductStore port
// interface. Prices are stored as canonical decimal text, never floats.
type ProductRepo struct {
	db *DB
}

// NewProductRepo creates a new ProductRepo backed by the given DB.
func NewProductRepo(db *DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// Create inserts a new product and fills in its ID.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	const query = `INSERT INTO products (name, category, price, stock_qty, low_stock_threshold) VALUES (?, ?, ?, ?, ?)`

	res, err := r.db.Writer.ExecContext(ctx, query, p.Name, p.Category, p.Price.String(), p.StockQty, p.LowStockThreshold)
	if err != nil {
		return fmt.Errorf("create product %q: %w", p.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create product %q: last insert id: %w", p.Name, err)
	}
	p.ID = id

	return nil
}

// Get returns the product with the given id, or (nil, nil) when none exists.
func (r *ProductRepo) Get(ctx context.Context, id int64) (*model.Product, error) {
	const query = `SELECT id, name, category, price, stock_qty, low_stock_threshold FROM products WHERE id = ?`

	p, err := scanProduct(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}

	return p, nil
}

// Update overwrites all fields of the product.
func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	const query = `UPDATE products SET name = ?, category = ?, price = ?, stock_qty = ?, low_stock_threshold = ? WHERE id = ?`

	res, err := r.db.Writer.ExecContext(ctx, query, p.Name, p.Category, p.Price.String(), p.StockQty, p.LowStockThreshold, p.ID)
	if err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product %d: rows affected: %w", p.ID, err)
	}
	if rows == 0 {
		return fmt.Errorf("update product %d: %w", p.ID, driven.ErrNotFound)
	}

	return nil
}

// Delete removes the product. Returns ErrNotFound for a missing id.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM products WHERE id = ?`

	res, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint") {
			return fmt.Errorf("delete product %d: %w", id, driven.ErrProductInUse)
		}
		return fmt.Errorf("delete product %d: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product %d: rows affected: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("delete product %d: %w", id, driven.ErrNotFound)
	}

	return nil
}

// List returns all products ordered by name.
func (r *ProductRepo) List(ctx context.Context) ([]model.Product, error) {
	const query = `SELECT id, name, category, price, stock_qty, low_stock_threshold FROM products ORDER BY name ASC`
	return r.list(ctx, query)
}

// ListLowStock returns products at or below their low-stock threshold,
// ordered by name.
func (r *ProductRepo) ListLowStock(ctx context.Context) ([]model.Product, error) {
	const query = `
		SELECT id, name, category, price, stock_qty, low_stock_threshold
		FROM products
		WHERE stock_qty <= low_stock_threshold
		ORDER BY name ASC`
	return r.list(ctx, query)
}

func (r *ProductRepo) list(ctx context.Context, query string) ([]model.Product, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var p model.Product
	var price string

	if err := row.Scan(&p.ID, &p.Name, &p.Category, &price, &p.StockQty, &p.LowStockThreshold); err != nil {
		return nil, err
	}

	var err error
	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}

	return &p, nil
}
