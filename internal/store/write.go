package store

import (
	"context"
	"fmt"

	"github.com/roach88/grocer/internal/domain"
)

// InsertItem inserts a new item row and returns its generated id.
// The name must already be normalised. Returns ErrDuplicate when the name
// is taken.
func (c conn) InsertItem(ctx context.Context, name string, quantity int64, unitPrice string) (int64, error) {
	result, err := c.q.ExecContext(ctx, `
		INSERT INTO items (name, name_folded, quantity, unit_price)
		VALUES (?, ?, ?, ?)
	`, name, domain.FoldName(name), quantity, unitPrice)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert item %q: %w", name, ErrDuplicate)
		}
		return 0, fmt.Errorf("insert item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert item: last insert id: %w", err)
	}
	return id, nil
}

// UpdateItem overwrites name, quantity and price of the item with item.ID.
// Returns ErrNotFound when no such id exists and ErrDuplicate when the new
// name belongs to another item.
func (c conn) UpdateItem(ctx context.Context, item domain.Item) error {
	result, err := c.q.ExecContext(ctx, `
		UPDATE items
		SET name = ?, name_folded = ?, quantity = ?, unit_price = ?
		WHERE id = ?
	`, item.Name, domain.FoldName(item.Name), item.Quantity, item.UnitPrice.String(), item.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update item %d: %w", item.ID, ErrDuplicate)
		}
		if isCheckViolation(err) {
			return fmt.Errorf("update item %d: %w", item.ID, ErrNegativeQuantity)
		}
		return fmt.Errorf("update item %d: %w", item.ID, err)
	}
	return requireAffected(result, fmt.Sprintf("update item %d", item.ID))
}

// AdjustQuantity adds delta (which may be negative) to the quantity of the
// item with the given id and returns the new quantity. The update is a
// single conditional statement, so it either applies fully or not at all.
// Returns ErrNotFound for an unknown id and ErrNegativeQuantity when the
// result would drop below zero.
func (c conn) AdjustQuantity(ctx context.Context, id, delta int64) (int64, error) {
	result, err := c.q.ExecContext(ctx, `
		UPDATE items SET quantity = quantity + ?
		WHERE id = ? AND quantity + ? >= 0
	`, delta, id, delta)
	if err != nil {
		return 0, fmt.Errorf("adjust item %d: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("adjust item %d: rows affected: %w", id, err)
	}

	item, getErr := c.ItemByID(ctx, id)
	if getErr != nil {
		return 0, fmt.Errorf("adjust item %d: %w", id, getErr)
	}
	if n == 0 {
		return item.Quantity, fmt.Errorf("adjust item %d by %d: %w", id, delta, ErrNegativeQuantity)
	}
	return item.Quantity, nil
}

// DeleteItemByName removes the item with the exact name.
func (c conn) DeleteItemByName(ctx context.Context, name string) error {
	result, err := c.q.ExecContext(ctx, `DELETE FROM items WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete item %q: %w", name, err)
	}
	return requireAffected(result, fmt.Sprintf("delete item %q", name))
}

// DeleteAllItems removes every item and returns how many rows were removed.
func (c conn) DeleteAllItems(ctx context.Context) (int64, error) {
	result, err := c.q.ExecContext(ctx, `DELETE FROM items`)
	if err != nil {
		return 0, fmt.Errorf("delete all items: %w", err)
	}
	return result.RowsAffected()
}

// InsertSale appends a sale record. sale.ID must be set by the caller.
// Returns ErrDuplicate when the id is already used.
func (c conn) InsertSale(ctx context.Context, sale domain.Sale) error {
	linesJSON, err := domain.EncodeLines(sale.Lines)
	if err != nil {
		return fmt.Errorf("insert sale %d: %w", sale.ID, err)
	}

	_, err = c.q.ExecContext(ctx, `
		INSERT INTO sales (id, lines, total_price, created_at)
		VALUES (?, ?, ?, ?)
	`, sale.ID, string(linesJSON), sale.TotalPrice.String(), formatTime(sale.Timestamp))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert sale %d: %w", sale.ID, ErrDuplicate)
		}
		return fmt.Errorf("insert sale %d: %w", sale.ID, err)
	}
	return nil
}

// DeleteAllSales removes every sale and returns how many rows were removed.
func (c conn) DeleteAllSales(ctx context.Context) (int64, error) {
	result, err := c.q.ExecContext(ctx, `DELETE FROM sales`)
	if err != nil {
		return 0, fmt.Errorf("delete all sales: %w", err)
	}
	return result.RowsAffected()
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func requireAffected(result rowsAffecter, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
