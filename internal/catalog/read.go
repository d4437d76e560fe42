package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/grocer/internal/domain"
	"github.com/roach88/grocer/internal/store"
)

// GetByName returns the item whose normalised name matches exactly.
func (c *Catalog) GetByName(ctx context.Context, name string) (domain.Item, error) {
	name = domain.NormalizeName(name)
	item, err := c.store.ItemByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Item{}, domain.NewNotFound(name)
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("get item %q: %w", name, err)
	}
	return item, nil
}

// GetByID returns the item with the given id.
func (c *Catalog) GetByID(ctx context.Context, id int64) (domain.Item, error) {
	item, err := c.store.ItemByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Item{}, domain.NewNotFoundf("no item with id %d", id)
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("get item %d: %w", id, err)
	}
	return item, nil
}

// List returns every item in id order. Callers sort for display.
func (c *Catalog) List(ctx context.Context) ([]domain.Item, error) {
	items, err := c.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// Search returns items whose name contains substring, case-insensitively.
// Both sides are NFC normalised and Unicode case folded, so "MILK" finds
// "Buttermilk". The substring is trimmed like a name, so surrounding
// whitespace is ignored and an empty or whitespace-only substring matches
// every item.
func (c *Catalog) Search(ctx context.Context, substring string) ([]domain.Item, error) {
	items, err := c.store.SearchItems(ctx, domain.FoldName(substring))
	if err != nil {
		return nil, fmt.Errorf("search items %q: %w", substring, err)
	}
	return items, nil
}
