// Package ledger is the append-only record of completed sales.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/roach88/grocer/internal/domain"
	"github.com/roach88/grocer/internal/store"
)

// Ledger stores immutable Sale records. Append and NextID run under one
// mutex so an id handed out by NextID inside Append cannot be taken twice.
type Ledger struct {
	mu    sync.Mutex
	store *store.Store
	log   *logrus.Entry
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger used for debug entries on appends and clears.
func WithLogger(log *logrus.Entry) Option {
	return func(l *Ledger) {
		l.log = log
	}
}

// New creates a Ledger over an open store.
func New(s *store.Store, opts ...Option) *Ledger {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	l := &Ledger{
		store: s,
		log:   logrus.NewEntry(discard),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Validate checks the invariants a sale must satisfy before it is appended:
// at least one line, positive quantities, non-negative prices, and a total
// that equals the exact sum of the line subtotals.
func Validate(sale domain.Sale) error {
	if len(sale.Lines) == 0 {
		return domain.NewInvalidSale("sale has no lines")
	}
	for i, line := range sale.Lines {
		if line.QuantitySold <= 0 {
			return domain.NewInvalidSale(fmt.Sprintf("line %d: quantity sold must be positive", i))
		}
		if line.UnitPriceAtSale.IsNegative() {
			return domain.NewInvalidSale(fmt.Sprintf("line %d: unit price must not be negative", i))
		}
		if line.ItemName == "" {
			return domain.NewInvalidSale(fmt.Sprintf("line %d: item name is empty", i))
		}
	}
	if sum := domain.SumLines(sale.Lines); !sum.Equal(sale.TotalPrice) {
		return domain.NewInvalidSale(fmt.Sprintf("total %s does not match sum of lines %s", sale.TotalPrice, sum))
	}
	if sale.ID < 0 {
		return domain.NewInvalidSale("sale id must not be negative")
	}
	return nil
}

// Append validates and persists sale as a single insert. A zero sale.ID is
// replaced with NextID. Returns the stored id.
func (l *Ledger) Append(ctx context.Context, sale domain.Sale) (int64, error) {
	if err := Validate(sale); err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if sale.ID == 0 {
		next, err := l.nextID(ctx)
		if err != nil {
			return 0, err
		}
		sale.ID = next
	}

	err := l.store.InsertSale(ctx, sale)
	if errors.Is(err, store.ErrDuplicate) {
		return 0, domain.NewInvalidSale(fmt.Sprintf("sale id %d already recorded", sale.ID))
	}
	if err != nil {
		return 0, fmt.Errorf("append sale %d: %w", sale.ID, err)
	}

	l.log.WithFields(logrus.Fields{
		"sale":  sale.ID,
		"lines": len(sale.Lines),
		"total": sale.TotalPrice.String(),
	}).Debug("sale appended")
	return sale.ID, nil
}

// NextID returns max(existing ids) + 1, or 1 when the ledger is empty.
func (l *Ledger) NextID(ctx context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextID(ctx)
}

func (l *Ledger) nextID(ctx context.Context) (int64, error) {
	max, err := l.store.MaxSaleID(ctx)
	if err != nil {
		return 0, fmt.Errorf("next sale id: %w", err)
	}
	return max + 1, nil
}

// Get returns the sale with the given id.
func (l *Ledger) Get(ctx context.Context, id int64) (domain.Sale, error) {
	sale, err := l.store.SaleByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Sale{}, domain.NewNotFoundf("no sale with id %d", id)
	}
	if err != nil {
		return domain.Sale{}, fmt.Errorf("get sale %d: %w", id, err)
	}
	return sale, nil
}

// ListAll returns every sale in id order.
func (l *Ledger) ListAll(ctx context.Context) ([]domain.Sale, error) {
	sales, err := l.store.ListSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

// ClearAll removes every sale and returns how many were removed.
// Irreversible; callers must obtain explicit confirmation first.
func (l *Ledger) ClearAll(ctx context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.store.DeleteAllSales(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear ledger: %w", err)
	}

	l.log.WithField("removed", n).Debug("ledger cleared")
	return n, nil
}
