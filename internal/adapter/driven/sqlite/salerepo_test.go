package sqlite

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
	"github.com/ledgerdesk/ledgerdesk/internal/domain/port/driven"
)

func TestSaleRepo_RecordComputesTotalAndDecrementsStock(t *testing.T) {
	db := setupTestDB(t)
	products := NewProductRepo(db)
	sales := NewSaleRepo(db)
	ctx := context.Background()

	p := createTestProduct(t, products, "Sourdough Loaf", "4.50", 10, 2)

	s := &model.Sale{ProductID: p.ID, Quantity: 3}
	require.NoError(t, sales.Record(ctx, s))
	assert.NotZero(t, s.ID)
	assert.True(t, s.TotalPrice.Equal(decimal.RequireFromString("13.50")), "total %s", s.TotalPrice)
	assert.Equal(t, nowISO(), s.SaleDate)

	got, err := products.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 7, got.StockQty)
}

func TestSaleRepo_RecordMissingProduct(t *testing.T) {
	db := setupTestDB(t)
	sales := NewSaleRepo(db)

	err := sales.Record(context.Background(), &model.Sale{ProductID: 99, Quantity: 1})
	assert.ErrorIs(t, err, driven.ErrNotFound)
}

func TestSaleRepo_RecordMissingCustomer(t *testing.T) {
	db := setupTestDB(t)
	products := NewProductRepo(db)
	sales := NewSaleRepo(db)
	ctx := context.Background()

	p := createTestProduct(t, products, "Sourdough Loaf", "4.50", 10, 2)

	err := sales.Record(ctx, &model.Sale{ProductID: p.ID, CustomerID: 404, Quantity: 1})
	assert.ErrorIs(t, err, driven.ErrNotFound)

	// The failed sale must not have touched stock.
	got, err := products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.StockQty)
}

func TestSaleRepo_RecordInsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	products := NewProductRepo(db)
	sales := NewSaleRepo(db)
	ctx := context.Background()

	p := createTestProduct(t, products, "Sourdough Loaf", "4.50", 2, 1)

	err := sales.Record(ctx, &model.Sale{ProductID: p.ID, Quantity: 3})
	assert.ErrorIs(t, err, driven.ErrInsufficientStock)

	got, err := products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.StockQty)

	list, err := sales.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSaleRepo_RecordExactStockReachesZero(t *testing.T) {
	db := setupTestDB(t)
	products := NewProductRepo(db)
	sales := NewSaleRepo(db)
	ctx := context.Background()

	p := createTestProduct(t, products, "Sourdough Loaf", "4.50", 3, 1)

	require.NoError(t, sales.Record(ctx, &model.Sale{ProductID: p.ID, Quantity: 3}))

	got, err := products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockQty)
}

func TestSaleRepo_ProductWithSalesCannotBeDeleted(t *testing.T) {
	db := setupTestDB(t)
	products := NewProductRepo(db)
	sales := NewSaleRepo(db)
	ctx := context.Background()

	p := createTestProduct(t, products, "Sourdough Loaf", "4.50", 10, 2)
	require.NoError(t, sales.Record(ctx, &model.Sale{ProductID: p.ID, Quantity: 1}))

	assert.ErrorIs(t, products.Delete(ctx, p.ID), driven.ErrProductInUse)
}

func TestSaleRepo_CustomerDeletionDetachesSales(t *testing.T) {
	db := setupTestDB(t)
	products := NewProductRepo(db)
	customers := NewCustomerRepo(db)
	sales := NewSaleRepo(db)
	ctx := context.Background()

	p := createTestProduct(t, products, "Sourdough Loaf", "4.50", 10, 2)
	cust := &model.Customer{Name: "Dana Reyes"}
	require.NoError(t, customers.Create(ctx, cust))
	require.NoError(t, sales.Record(ctx, &model.Sale{ProductID: p.ID, CustomerID: cust.ID, Quantity: 1}))

	require.NoError(t, customers.Delete(ctx, cust.ID))

	list, err := sales.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Zero(t, list[0].CustomerID)
	assert.Empty(t, list[0].CustomerName)
}

func TestSaleRepo_ListJoinsNames(t *testing.T) {
	db := setupTestDB(t)
	products := NewProductRepo(db)
	customers := NewCustomerRepo(db)
	sales := NewSaleRepo(db)
	ctx := context.Background()

	p := createTestProduct(t, products, "Sourdough Loaf", "4.50", 10, 2)
	cust := &model.Customer{Name: "Dana Reyes"}
	require.NoError(t, customers.Create(ctx, cust))

	require.NoError(t, sales.Record(ctx, &model.Sale{ProductID: p.ID, CustomerID: cust.ID, Quantity: 2}))
	require.NoError(t, sales.Record(ctx, &model.Sale{ProductID: p.ID, Quantity: 1}))

	list, err := sales.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Newest first: the walk-in sale.
	assert.Equal(t, "Sourdough Loaf", list[0].ProductName)
	assert.Empty(t, list[0].CustomerName)
	assert.Zero(t, list[0].CustomerID)

	assert.Equal(t, "Sourdough Loaf", list[1].ProductName)
	assert.Equal(t, "Dana Reyes", list[1].CustomerName)
	assert.Equal(t, cust.ID, list[1].CustomerID)
	assert.Equal(t, 2, list[1].Quantity)
	assert.True(t, list[1].TotalPrice.Equal(decimal.RequireFromString("9.00")))
}
