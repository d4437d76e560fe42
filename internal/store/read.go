package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/grocer/internal/domain"
)

const itemColumns = `id, name, quantity, unit_price`

// ItemByName returns the item whose name matches exactly.
// Returns ErrNotFound when there is none.
func (c conn) ItemByName(ctx context.Context, name string) (domain.Item, error) {
	row := c.q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE name = ?`, name)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, fmt.Errorf("item %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("query item %q: %w", name, err)
	}
	return item, nil
}

// ItemByID returns the item with the given id.
// Returns ErrNotFound when there is none.
func (c conn) ItemByID(ctx context.Context, id int64) (domain.Item, error) {
	row := c.q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("query item %d: %w", id, err)
	}
	return item, nil
}

// ListItems returns every item ordered by id.
func (c conn) ListItems(ctx context.Context) ([]domain.Item, error) {
	return c.queryItems(ctx, `SELECT `+itemColumns+` FROM items ORDER BY id ASC`)
}

// SearchItems returns items whose folded name contains folded, ordered by id.
// folded must already be passed through domain.FoldName; an empty string
// matches every item.
func (c conn) SearchItems(ctx context.Context, folded string) ([]domain.Item, error) {
	return c.queryItems(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE instr(name_folded, ?) > 0 OR ? = ''
		ORDER BY id ASC
	`, folded, folded)
}

func (c conn) queryItems(ctx context.Context, query string, args ...any) ([]domain.Item, error) {
	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

const saleColumns = `id, lines, total_price, created_at`

// SaleByID returns the sale with the given id.
// Returns ErrNotFound when there is none.
func (c conn) SaleByID(ctx context.Context, id int64) (domain.Sale, error) {
	row := c.q.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = ?`, id)
	sale, err := scanSale(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Sale{}, fmt.Errorf("sale %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Sale{}, fmt.Errorf("query sale %d: %w", id, err)
	}
	return sale, nil
}

// ListSales returns every sale ordered by id.
func (c conn) ListSales(ctx context.Context) ([]domain.Sale, error) {
	rows, err := c.q.QueryContext(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	sales := []domain.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	return sales, nil
}

// MaxSaleID returns the largest sale id, or 0 when there are no sales.
func (c conn) MaxSaleID(ctx context.Context) (int64, error) {
	var id int64
	if err := c.q.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM sales`).Scan(&id); err != nil {
		return 0, fmt.Errorf("query max sale id: %w", err)
	}
	return id, nil
}

// Query runs a read-only SQL query against the database.
// Used by the scenario harness for final_state assertions; callers must
// close the returned rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}
