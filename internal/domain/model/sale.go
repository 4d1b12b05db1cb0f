package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale records one point-of-sale transaction. TotalPrice is computed as
// product price x quantity at the moment of sale, so later price changes do
// not rewrite history. CustomerID is zero for walk-in sales.
type Sale struct {
	ID         int64
	ProductID  int64
	CustomerID int64
	Quantity   int
	TotalPrice decimal.Decimal
	SaleDate   string // ISO-8601 calendar date

	// ProductName and CustomerName are join-populated on reads and ignored
	// on writes.
	ProductName  string
	CustomerName string

	CreatedAt time.Time
}
