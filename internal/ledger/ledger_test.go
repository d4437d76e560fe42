package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/grocer/internal/domain"
	"github.com/roach88/grocer/internal/store"
)

func setupLedger(t *testing.T) *Ledger {
	t.Helper()
	s, err := store.Open(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s)
}

var saleTime = time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)

func line(name string, qty int64, price string) domain.SaleLine {
	return domain.SaleLine{ItemID: 1, ItemName: name, QuantitySold: qty, UnitPriceAtSale: decimal.RequireFromString(price)}
}

func sale(lines ...domain.SaleLine) domain.Sale {
	return domain.Sale{Lines: lines, TotalPrice: domain.SumLines(lines), Timestamp: saleTime}
}

func TestNextID_EmptyIsOne(t *testing.T) {
	l := setupLedger(t)
	id, err := l.NextID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestAppend_AssignsSequentialIDs(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		id, err := l.Append(ctx, sale(line("Milk", 1, "2.5")))
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	next, err := l.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), next)
}

func TestAppend_ExplicitIDThenNextIsMaxPlusOne(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	s := sale(line("Milk", 1, "1"))
	s.ID = 10
	id, err := l.Append(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, int64(10), id)

	next, err := l.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), next)
}

func TestAppend_ExactTotal(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	id, err := l.Append(ctx, sale(line("A", 2, "3"), line("B", 1, "5")))
	require.NoError(t, err)

	got, err := l.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.TotalPrice.Equal(decimal.NewFromInt(11)), "total = %s", got.TotalPrice)
	assert.Len(t, got.Lines, 2)
	assert.True(t, got.Timestamp.Equal(saleTime))
}

func TestAppend_InvalidSale(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	mismatched := sale(line("A", 2, "3"))
	mismatched.TotalPrice = decimal.RequireFromString("5.99")

	tests := []struct {
		name string
		sale domain.Sale
	}{
		{"no lines", domain.Sale{Timestamp: saleTime}},
		{"zero quantity", sale(line("A", 0, "1"))},
		{"negative price", sale(line("A", 1, "-1"))},
		{"empty item name", sale(line("", 1, "1"))},
		{"total mismatch", mismatched},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Append(ctx, tt.sale)
			assert.True(t, domain.IsInvalidSale(err), "got %v", err)
		})
	}

	sales, err := l.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales, "rejected sales must not be persisted")
}

func TestAppend_DuplicateID(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	s := sale(line("A", 1, "1"))
	s.ID = 1
	_, err := l.Append(ctx, s)
	require.NoError(t, err)

	_, err = l.Append(ctx, s)
	assert.True(t, domain.IsInvalidSale(err), "got %v", err)
}

func TestGet_NotFound(t *testing.T) {
	l := setupLedger(t)
	_, err := l.Get(context.Background(), 5)
	assert.True(t, domain.IsNotFound(err))
}

func TestClearAll(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := l.Append(ctx, sale(line("A", 1, "1")))
		require.NoError(t, err)
	}

	n, err := l.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	sales, err := l.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)

	next, err := l.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)
}
