package query

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/grocer/internal/catalog"
	"github.com/roach88/grocer/internal/domain"
	"github.com/roach88/grocer/internal/store"
)

func setupFacade(t *testing.T, names ...string) *Facade {
	t.Helper()
	s, err := store.Open(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cat := catalog.New(s)
	for _, name := range names {
		_, err := cat.AddNew(context.Background(), name, 1, decimal.NewFromInt(1))
		require.NoError(t, err)
	}
	return New(cat)
}

func names(items []domain.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

func TestViewAll_SortedByName(t *testing.T) {
	f := setupFacade(t, "Milk", "apples", "Bread", "Buttermilk")

	items, err := f.ViewAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"apples", "Bread", "Buttermilk", "Milk"}, names(items))
}

func TestViewAll_Empty(t *testing.T) {
	f := setupFacade(t)

	items, err := f.ViewAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearchByName_CaseInsensitive(t *testing.T) {
	f := setupFacade(t, "Milk", "Bread", "Buttermilk", "Oat Milk")

	items, err := f.SearchByName(context.Background(), "MILK")
	require.NoError(t, err)
	assert.Equal(t, []string{"Buttermilk", "Milk", "Oat Milk"}, names(items))
}

func TestSearchByName_EmptyMatchesViewAll(t *testing.T) {
	f := setupFacade(t, "Tea", "Coffee", "Cocoa")
	ctx := context.Background()

	all, err := f.ViewAll(ctx)
	require.NoError(t, err)
	found, err := f.SearchByName(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, all, found)
}

func TestSearchByName_NoMatch(t *testing.T) {
	f := setupFacade(t, "Tea")

	items, err := f.SearchByName(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Empty(t, items)
}

type failingReader struct{ err error }

func (r failingReader) List(context.Context) ([]domain.Item, error)           { return nil, r.err }
func (r failingReader) Search(context.Context, string) ([]domain.Item, error) { return nil, r.err }

func TestFacade_PropagatesReaderErrors(t *testing.T) {
	boom := errors.New("disk gone")
	f := New(failingReader{err: boom})

	_, err := f.ViewAll(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = f.SearchByName(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
}
