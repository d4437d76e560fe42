package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a sellable stock entry keyed by its unique name.
type Item struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SaleLine is a snapshot of one item sold within a sale.
//
// The name and price are copied at the time the line is created, so later
// edits to the item never change historical totals.
type SaleLine struct {
	ItemID          int64           `json:"item_id"`
	ItemName        string          `json:"item_name"`
	QuantitySold    int64           `json:"quantity_sold"`
	UnitPriceAtSale decimal.Decimal `json:"unit_price_at_sale"`
}

// Subtotal returns QuantitySold * UnitPriceAtSale.
func (l SaleLine) Subtotal() decimal.Decimal {
	return l.UnitPriceAtSale.Mul(decimal.NewFromInt(l.QuantitySold))
}

// Sale is an immutable, committed sale record owned by the ledger.
type Sale struct {
	ID         int64           `json:"id"`
	Lines      []SaleLine      `json:"lines"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Timestamp  time.Time       `json:"timestamp"`
}

// SumLines returns the exact sum of the line subtotals.
func SumLines(lines []SaleLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
