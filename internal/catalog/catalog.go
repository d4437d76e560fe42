// Package catalog owns the set of inventory items keyed by unique name.
//
// Every mutation, and every read-check-write used by the transaction
// engine, runs under one mutex per Catalog so concurrent callers are
// strictly ordered. Multi-statement writes additionally run inside a
// store transaction, so a failure never leaves a partial update.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"io"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/roach88/grocer/internal/domain"
	"github.com/roach88/grocer/internal/store"
)

// Catalog is the current-state table of sellable items.
type Catalog struct {
	mu    sync.Mutex
	store *store.Store
	log   *logrus.Entry
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger used for debug entries on state changes.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Catalog) {
		c.log = log
	}
}

// New creates a Catalog over an open store. The caller owns the store and
// closes it.
func New(s *store.Store, opts ...Option) *Catalog {
	c := &Catalog{
		store: s,
		log:   discardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// AddNew creates an item, or merges quantity into the existing item with
// the same name. On merge the stored unit price is kept.
func (c *Catalog) AddNew(ctx context.Context, name string, quantity int64, unitPrice decimal.Decimal) (int64, error) {
	name = domain.NormalizeName(name)
	if err := domain.ValidateItemFields(name, quantity, unitPrice); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var id int64
	err := c.store.WithTx(ctx, func(tx *store.Tx) error {
		existing, err := tx.ItemByName(ctx, name)
		switch {
		case err == nil:
			id = existing.ID
			if err := checkIncrease(existing, quantity); err != nil {
				return err
			}
			_, err = tx.AdjustQuantity(ctx, existing.ID, quantity)
			return err
		case errors.Is(err, store.ErrNotFound):
			id, err = tx.InsertItem(ctx, name, quantity, unitPrice.String())
			return err
		default:
			return err
		}
	})
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return 0, de
		}
		return 0, fmt.Errorf("add item %q: %w", name, err)
	}

	c.log.WithFields(logrus.Fields{"item": name, "id": id, "quantity": quantity}).Debug("item added")
	return id, nil
}

// AddExisting increments the quantity of a named item and returns the new
// quantity.
func (c *Catalog) AddExisting(ctx context.Context, name string, delta int64) (int64, error) {
	name = domain.NormalizeName(name)
	if delta < 0 {
		return 0, domain.NewInvalidInput("restock quantity must not be negative")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var newQty int64
	err := c.store.WithTx(ctx, func(tx *store.Tx) error {
		item, err := tx.ItemByName(ctx, name)
		if err != nil {
			return err
		}
		if err := checkIncrease(item, delta); err != nil {
			return err
		}
		newQty, err = tx.AdjustQuantity(ctx, item.ID, delta)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return 0, domain.NewNotFound(name)
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return 0, de
	}
	if err != nil {
		return 0, fmt.Errorf("restock item %q: %w", name, err)
	}

	c.log.WithFields(logrus.Fields{"item": name, "delta": delta, "quantity": newQty}).Debug("item restocked")
	return newQty, nil
}

// Edit replaces the name, quantity and unit price of the item with id.
func (c *Catalog) Edit(ctx context.Context, id int64, newName string, newQuantity int64, newUnitPrice decimal.Decimal) error {
	newName = domain.NormalizeName(newName)
	if err := domain.ValidateItemFields(newName, newQuantity, newUnitPrice); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.store.UpdateItem(ctx, domain.Item{
		ID:        id,
		Name:      newName,
		Quantity:  newQuantity,
		UnitPrice: newUnitPrice,
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.NewNotFoundf("no item with id %d", id)
	case errors.Is(err, store.ErrDuplicate):
		return &domain.Error{Code: domain.ErrCodeInvalidInput, Message: "name already used by another item", Name: newName}
	case err != nil:
		return fmt.Errorf("edit item %d: %w", id, err)
	}

	c.log.WithFields(logrus.Fields{"item": newName, "id": id, "quantity": newQuantity}).Debug("item edited")
	return nil
}

// Delete removes the named item. Sales that sold it keep their snapshots.
func (c *Catalog) Delete(ctx context.Context, name string) error {
	name = domain.NormalizeName(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.store.DeleteItemByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return domain.NewNotFound(name)
	}
	if err != nil {
		return fmt.Errorf("delete item %q: %w", name, err)
	}

	c.log.WithField("item", name).Debug("item deleted")
	return nil
}

// ClearAll removes every item and returns how many were removed.
// Irreversible; callers must obtain explicit confirmation first.
func (c *Catalog) ClearAll(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.store.DeleteAllItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear catalog: %w", err)
	}

	c.log.WithField("removed", n).Debug("catalog cleared")
	return n, nil
}

// checkIncrease rejects a delta that would overflow the item's int64
// quantity. SQLite would otherwise store the sum as a REAL.
func checkIncrease(item domain.Item, delta int64) error {
	if delta > 0 && delta > math.MaxInt64-item.Quantity {
		return &domain.Error{
			Code:    domain.ErrCodeInvalidInput,
			Message: fmt.Sprintf("adding %d to %d would overflow the quantity", delta, item.Quantity),
			Name:    item.Name,
		}
	}
	return nil
}
