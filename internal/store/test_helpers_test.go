package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/grocer/internal/domain"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSale creates a consistent single-line sale.
func createTestSale(id int64, name string, qty int64, price string) domain.Sale {
	lines := []domain.SaleLine{{
		ItemID:          1,
		ItemName:        name,
		QuantitySold:    qty,
		UnitPriceAtSale: decimal.RequireFromString(price),
	}}
	return domain.Sale{
		ID:         id,
		Lines:      lines,
		TotalPrice: domain.SumLines(lines),
		Timestamp:  time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}
