package catalog

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/grocer/internal/domain"
	"github.com/roach88/grocer/internal/store"
)

func setupCatalog(t *testing.T) *Catalog {
	t.Helper()
	s, err := store.Open(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s)
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAddNew_RoundTrip(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	id, err := c.AddNew(ctx, "Milk", 10, price("2.5"))
	require.NoError(t, err)
	assert.Positive(t, id)

	item, err := c.GetByName(ctx, "Milk")
	require.NoError(t, err)
	assert.Equal(t, id, item.ID)
	assert.Equal(t, int64(10), item.Quantity)
	assert.True(t, item.UnitPrice.Equal(price("2.5")))

	require.NoError(t, c.Edit(ctx, id, "Milk", 7, price("2.5")))
	item, err = c.GetByName(ctx, "Milk")
	require.NoError(t, err)
	assert.Equal(t, int64(7), item.Quantity)
}

func TestAddNew_MergesExistingName(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	first, err := c.AddNew(ctx, "Eggs", 12, price("0.3"))
	require.NoError(t, err)

	second, err := c.AddNew(ctx, " Eggs ", 6, price("9.99"))
	require.NoError(t, err)
	assert.Equal(t, first, second, "same name must not create a second row")

	items, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(18), items[0].Quantity)
	assert.True(t, items[0].UnitPrice.Equal(price("0.3")), "merge keeps the stored price")
}

func TestAddNew_InvalidInput(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		item  string
		qty   int64
		price string
	}{
		{"empty name", "", 1, "1"},
		{"blank name", "   ", 1, "1"},
		{"negative quantity", "Milk", -1, "1"},
		{"negative price", "Milk", 1, "-0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.AddNew(ctx, tt.item, tt.qty, price(tt.price))
			assert.True(t, domain.IsInvalidInput(err), "got %v", err)
		})
	}

	items, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAddExisting(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	_, err := c.AddNew(ctx, "Rice", 5, price("1.2"))
	require.NoError(t, err)

	before, err := c.GetByName(ctx, "Rice")
	require.NoError(t, err)

	newQty, err := c.AddExisting(ctx, "Rice", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(9), newQty)

	after, err := c.GetByName(ctx, "Rice")
	require.NoError(t, err)
	assert.Equal(t, before.Quantity+4, after.Quantity)
}

func TestAddExisting_Errors(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	_, err := c.AddExisting(ctx, "Ghost", 1)
	assert.True(t, domain.IsNotFound(err), "got %v", err)

	_, err = c.AddNew(ctx, "Rice", 5, price("1"))
	require.NoError(t, err)
	_, err = c.AddExisting(ctx, "Rice", -1)
	assert.True(t, domain.IsInvalidInput(err), "got %v", err)
}

func TestQuantityOverflowRejected(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	_, err := c.AddNew(ctx, "Rice", math.MaxInt64-1, price("1"))
	require.NoError(t, err)

	_, err = c.AddExisting(ctx, "Rice", 2)
	assert.True(t, domain.IsInvalidInput(err), "got %v", err)

	_, err = c.AddNew(ctx, "Rice", 2, price("1"))
	assert.True(t, domain.IsInvalidInput(err), "got %v", err)

	newQty, err := c.AddExisting(ctx, "Rice", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), newQty)

	items, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(math.MaxInt64), items[0].Quantity)
}

func TestRelease_OverflowLeavesItemReadable(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	id, err := c.AddNew(ctx, "Rice", 5, price("1"))
	require.NoError(t, err)
	_, err = c.Reserve(ctx, "Rice", 5)
	require.NoError(t, err)
	_, err = c.AddExisting(ctx, "Rice", math.MaxInt64-4)
	require.NoError(t, err)

	_, err = c.Release(ctx, id, 5)
	assert.True(t, domain.IsInvalidInput(err), "got %v", err)

	item, err := c.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64-4), item.Quantity)

	found, err := c.Search(ctx, "ric")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestEdit_Errors(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	a, err := c.AddNew(ctx, "A", 1, price("1"))
	require.NoError(t, err)
	_, err = c.AddNew(ctx, "B", 1, price("1"))
	require.NoError(t, err)

	assert.True(t, domain.IsNotFound(c.Edit(ctx, 999, "Z", 1, price("1"))))
	assert.True(t, domain.IsInvalidInput(c.Edit(ctx, a, "A", -1, price("1"))))
	assert.True(t, domain.IsInvalidInput(c.Edit(ctx, a, "A", 1, price("-1"))))
	assert.True(t, domain.IsInvalidInput(c.Edit(ctx, a, "", 1, price("1"))))
	assert.True(t, domain.IsInvalidInput(c.Edit(ctx, a, "B", 1, price("1"))), "name collision")

	item, err := c.GetByID(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "A", item.Name)
}

func TestDelete(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	_, err := c.AddNew(ctx, "Milk", 1, price("1"))
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, "Milk"))
	_, err = c.GetByName(ctx, "Milk")
	assert.True(t, domain.IsNotFound(err))

	assert.True(t, domain.IsNotFound(c.Delete(ctx, "Milk")))
}

func TestClearAll(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	for _, n := range []string{"A", "B", "C"} {
		_, err := c.AddNew(ctx, n, 1, price("1"))
		require.NoError(t, err)
	}

	removed, err := c.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	items, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetByName_IsCaseSensitive(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	_, err := c.AddNew(ctx, "Milk", 1, price("1"))
	require.NoError(t, err)

	_, err = c.GetByName(ctx, "milk")
	assert.True(t, domain.IsNotFound(err))
}

func TestSearch_CaseInsensitive(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	for _, n := range []string{"Milk", "Buttermilk", "Bread"} {
		_, err := c.AddNew(ctx, n, 1, price("1"))
		require.NoError(t, err)
	}

	found, err := c.Search(ctx, "MILK")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = c.Search(ctx, "read")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Bread", found[0].Name)
}

func TestSearch_EmptyMatchesList(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	for _, n := range []string{"Milk", "Bread", "Tea"} {
		_, err := c.AddNew(ctx, n, 1, price("1"))
		require.NoError(t, err)
	}

	all, err := c.List(ctx)
	require.NoError(t, err)
	found, err := c.Search(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, all, found)

	found, err = c.Search(ctx, " \t")
	require.NoError(t, err)
	assert.Equal(t, all, found)
}

func TestSearch_TrimsSubstring(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	for _, n := range []string{"Milk", "Soy Milk", "Bread"} {
		_, err := c.AddNew(ctx, n, 1, price("1"))
		require.NoError(t, err)
	}

	padded, err := c.Search(ctx, " Milk ")
	require.NoError(t, err)
	plain, err := c.Search(ctx, "Milk")
	require.NoError(t, err)
	assert.Equal(t, plain, padded)
	assert.Len(t, plain, 2)
}

func TestAddNew_RejectsInvalidUTF8(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	_, err := c.AddNew(ctx, "Caf\xe9", 1, price("1"))
	require.Error(t, err)
	assert.True(t, domain.IsInvalidInput(err))

	teaID, err := c.AddNew(ctx, "Tea", 1, price("1"))
	require.NoError(t, err)
	err = c.Edit(ctx, teaID, "T\xffa", 1, price("1"))
	require.Error(t, err)
	assert.True(t, domain.IsInvalidInput(err))

	items, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Tea", items[0].Name)
}

func TestReserve(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	_, err := c.AddNew(ctx, "Rice", 5, price("1.2"))
	require.NoError(t, err)

	before, err := c.Reserve(ctx, "Rice", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), before.Quantity)

	item, err := c.GetByName(ctx, "Rice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), item.Quantity)

	_, err = c.Reserve(ctx, "Rice", 1)
	require.True(t, domain.IsInsufficientStock(err), "got %v", err)
	available, ok := domain.AvailableOf(err)
	require.True(t, ok)
	assert.Equal(t, int64(0), available)
}

func TestReserve_Errors(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	_, err := c.Reserve(ctx, "Ghost", 1)
	assert.True(t, domain.IsOutOfStock(err), "got %v", err)

	_, err = c.AddNew(ctx, "Rice", 3, price("1"))
	require.NoError(t, err)

	_, err = c.Reserve(ctx, "Rice", 0)
	assert.True(t, domain.IsInvalidInput(err))

	_, err = c.Reserve(ctx, "Rice", 4)
	assert.True(t, domain.IsInsufficientStock(err))

	item, err := c.GetByName(ctx, "Rice")
	require.NoError(t, err)
	assert.Equal(t, int64(3), item.Quantity, "failed reservation leaves stock unchanged")
}

func TestRelease(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	id, err := c.AddNew(ctx, "Rice", 5, price("1"))
	require.NoError(t, err)
	_, err = c.Reserve(ctx, "Rice", 2)
	require.NoError(t, err)

	qty, err := c.Release(ctx, id, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), qty)

	_, err = c.Release(ctx, 999, 1)
	assert.True(t, domain.IsNotFound(err))

	_, err = c.Release(ctx, id, 0)
	assert.True(t, domain.IsInvalidInput(err))
}

func TestReserve_ConcurrentNeverOversells(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	_, err := c.AddNew(ctx, "Bread", 10, price("1"))
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Reserve(ctx, "Bread", 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	item, err := c.GetByName(ctx, "Bread")
	require.NoError(t, err)
	assert.Equal(t, int64(0), item.Quantity)
}
