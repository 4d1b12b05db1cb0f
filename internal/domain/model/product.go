package model

import "github.com/shopspring/decimal"

// Product is a retail catalog item. Price is exact decimal; stock is tracked
// per unit and decremented when a sale is recorded.
type Product struct {
	ID                int64
	Name              string
	Category          string
	Price             decimal.Decimal
	StockQty          int
	LowStockThreshold int
}

// LowStock reports whether the product's stock has fallen to or below its
// configured threshold.
func (p *Product) LowStock() bool {
	return p.StockQty <= p.LowStockThreshold
}
