package store

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/grocer/internal/domain"
)

// timeLayout is used for sales.created_at. Fixed width keeps lexical and
// chronological order identical.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(r rowScanner) (domain.Item, error) {
	var (
		item  domain.Item
		price string
	)
	if err := r.Scan(&item.ID, &item.Name, &item.Quantity, &price); err != nil {
		return domain.Item{}, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return domain.Item{}, fmt.Errorf("item %d: parse unit_price %q: %w", item.ID, price, err)
	}
	item.UnitPrice = p
	return item, nil
}

func scanSale(r rowScanner) (domain.Sale, error) {
	var (
		sale      domain.Sale
		linesJSON string
		total     string
		createdAt string
	)
	if err := r.Scan(&sale.ID, &linesJSON, &total, &createdAt); err != nil {
		return domain.Sale{}, err
	}

	lines, err := domain.DecodeLines([]byte(linesJSON))
	if err != nil {
		return domain.Sale{}, fmt.Errorf("sale %d: %w", sale.ID, err)
	}
	sale.Lines = lines

	sale.TotalPrice, err = decimal.NewFromString(total)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("sale %d: parse total_price %q: %w", sale.ID, total, err)
	}

	sale.Timestamp, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("sale %d: parse created_at %q: %w", sale.ID, createdAt, err)
	}
	return sale, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
