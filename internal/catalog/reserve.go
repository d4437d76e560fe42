package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/roach88/grocer/internal/domain"
	"github.com/roach88/grocer/internal/store"
)

// Reserve decrements the named item's quantity by qty and returns the item
// as it was before the decrement. The lookup, availability check and write
// happen under the catalog lock, so two concurrent reservations of the same
// item can never both pass the check against the same quantity.
//
// Errors: OUT_OF_STOCK when the item is unknown, INSUFFICIENT_STOCK (with
// the current quantity) when qty exceeds it, INVALID_INPUT when qty <= 0.
func (c *Catalog) Reserve(ctx context.Context, name string, qty int64) (domain.Item, error) {
	name = domain.NormalizeName(name)
	if qty <= 0 {
		return domain.Item{}, domain.NewInvalidInput("quantity to sell must be positive")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var before domain.Item
	err := c.store.WithTx(ctx, func(tx *store.Tx) error {
		item, err := tx.ItemByName(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			return domain.NewOutOfStock(name)
		}
		if err != nil {
			return err
		}
		if qty > item.Quantity {
			return domain.NewInsufficientStock(name, item.Quantity, qty)
		}
		if _, err := tx.AdjustQuantity(ctx, item.ID, -qty); err != nil {
			return err
		}
		before = item
		return nil
	})
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return domain.Item{}, de
		}
		return domain.Item{}, fmt.Errorf("reserve %d of %q: %w", qty, name, err)
	}

	c.log.WithFields(logrus.Fields{
		"item":      name,
		"reserved":  qty,
		"remaining": before.Quantity - qty,
	}).Debug("stock reserved")
	return before, nil
}

// Release returns qty units to the item with id, undoing a reservation.
// Returns NOT_FOUND when the item has been deleted in the meantime and
// INVALID_INPUT when the restored quantity would overflow.
func (c *Catalog) Release(ctx context.Context, id, qty int64) (int64, error) {
	if qty <= 0 {
		return 0, domain.NewInvalidInput("quantity to release must be positive")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var newQty int64
	err := c.store.WithTx(ctx, func(tx *store.Tx) error {
		item, err := tx.ItemByID(ctx, id)
		if err != nil {
			return err
		}
		if err := checkIncrease(item, qty); err != nil {
			return err
		}
		newQty, err = tx.AdjustQuantity(ctx, id, qty)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return 0, domain.NewNotFoundf("no item with id %d", id)
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return 0, de
	}
	if err != nil {
		return 0, fmt.Errorf("release %d of item %d: %w", qty, id, err)
	}

	c.log.WithFields(logrus.Fields{"id": id, "released": qty, "quantity": newQty}).Debug("stock released")
	return newQty, nil
}
