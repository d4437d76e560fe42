package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/roach88/grocer/internal/catalog"
	"github.com/roach88/grocer/internal/domain"
	"github.com/roach88/grocer/internal/ledger"
)

// CartTokenGenerator generates unique cart tokens for checkout sessions.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type CartTokenGenerator interface {
	Generate() string
}

// Engine orchestrates cart-based selling over an item catalog and a sale
// ledger.
//
// Stock is reserved when a line is added to a cart, not at commit: the
// decrement is visible to every other reader immediately. Commit only
// appends the sale record. Abandon returns every reserved line to stock.
//
// Thread-safety model:
//   - Engine methods are safe from any goroutine
//   - availability checks and decrements are serialized by the catalog lock
//   - each Cart carries its own lock, so one cart is never mutated twice at once
type Engine struct {
	catalog *catalog.Catalog
	ledger  *ledger.Ledger
	clock   Clock
	tokens  CartTokenGenerator
	log     *logrus.Entry
}

// EngineOption allows configuration of engine collaborators.
type EngineOption func(*Engine)

// WithClock sets the clock used for sale timestamps.
//
// Default: SystemClock
func WithClock(clock Clock) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithTokenGenerator sets the cart token generator.
//
// Default: UUIDv7Generator
func WithTokenGenerator(gen CartTokenGenerator) EngineOption {
	return func(e *Engine) {
		e.tokens = gen
	}
}

// WithLogger sets the logger used for debug entries on cart transitions.
func WithLogger(log *logrus.Entry) EngineOption {
	return func(e *Engine) {
		e.log = log
	}
}

// New creates an Engine. The catalog and ledger are owned by the caller,
// who is responsible for closing the store underneath them.
func New(cat *catalog.Catalog, led *ledger.Ledger, opts ...EngineOption) *Engine {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Engine{
		catalog: cat,
		ledger:  led,
		clock:   SystemClock{},
		tokens:  UUIDv7Generator{},
		log:     logrus.NewEntry(discard),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// NewCart starts an empty checkout session.
func (e *Engine) NewCart() *Cart {
	cart := newCart(e.tokens.Generate())
	e.log.WithField("cart", cart.token).Debug("cart opened")
	return cart
}

// AddToCart reserves quantity units of the named item and appends a
// snapshot line to the cart.
//
// Errors:
//   - OUT_OF_STOCK: no item with that name
//   - INSUFFICIENT_STOCK: quantity exceeds stock; carries the available count
//   - INVALID_INPUT: quantity <= 0
//   - CART_CLOSED: cart already committed or abandoned
//
// On any error neither the cart nor the stock changes.
func (e *Engine) AddToCart(ctx context.Context, cart *Cart, itemName string, quantity int64) (domain.SaleLine, error) {
	cart.mu.Lock()
	defer cart.mu.Unlock()

	if err := cart.requireOpen(); err != nil {
		return domain.SaleLine{}, err
	}

	item, err := e.catalog.Reserve(ctx, itemName, quantity)
	if err != nil {
		return domain.SaleLine{}, err
	}

	line := domain.SaleLine{
		ItemID:          item.ID,
		ItemName:        item.Name,
		QuantitySold:    quantity,
		UnitPriceAtSale: item.UnitPrice,
	}
	cart.lines = append(cart.lines, line)
	cart.total = cart.total.Add(line.Subtotal())

	e.log.WithFields(logrus.Fields{
		"cart":     cart.token,
		"item":     line.ItemName,
		"quantity": quantity,
		"left":     item.Quantity - quantity,
	}).Debug("line added")
	return line, nil
}

// Commit persists the cart's lines as one sale and closes the cart.
// No stock changes here; it was reserved line by line in AddToCart.
//
// Errors: EMPTY_CART when no lines were added, CART_CLOSED when the cart is
// not open. If the ledger append fails the cart stays open so the caller
// can retry or abandon it.
func (e *Engine) Commit(ctx context.Context, cart *Cart) (domain.Sale, error) {
	cart.mu.Lock()
	defer cart.mu.Unlock()

	if err := cart.requireOpen(); err != nil {
		return domain.Sale{}, err
	}
	if len(cart.lines) == 0 {
		return domain.Sale{}, domain.NewEmptyCart()
	}

	lines := make([]domain.SaleLine, len(cart.lines))
	copy(lines, cart.lines)

	sale := domain.Sale{
		Lines:      lines,
		TotalPrice: cart.total,
		Timestamp:  e.clock.Now().UTC(),
	}

	id, err := e.ledger.Append(ctx, sale)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("commit cart %s: %w", cart.token, err)
	}
	sale.ID = id

	cart.state = CartCommitted
	cart.saleID = id

	e.log.WithFields(logrus.Fields{
		"cart":  cart.token,
		"sale":  id,
		"total": sale.TotalPrice.String(),
	}).Debug("cart committed")
	return sale, nil
}

// AbandonResult reports what Abandon returned to stock.
type AbandonResult struct {
	// Restored lists lines whose quantity went back to their item.
	Restored []domain.SaleLine

	// Skipped lists lines whose item was deleted after it was added to
	// the cart; there is nothing to restore them to.
	Skipped []domain.SaleLine
}

// Abandon discards the cart and returns every reserved quantity to its
// item, matched by item id.
//
// If a restore fails for any other reason (a storage error, or a quantity
// that would overflow), the lines already restored are
// removed from the cart and the cart stays open, so calling Abandon again
// never restores a line twice.
func (e *Engine) Abandon(ctx context.Context, cart *Cart) (AbandonResult, error) {
	cart.mu.Lock()
	defer cart.mu.Unlock()

	var result AbandonResult
	if err := cart.requireOpen(); err != nil {
		return result, err
	}

	for i, line := range cart.lines {
		_, err := e.catalog.Release(ctx, line.ItemID, line.QuantitySold)
		switch {
		case err == nil:
			result.Restored = append(result.Restored, line)
		case domain.IsNotFound(err):
			result.Skipped = append(result.Skipped, line)
		default:
			remaining := append([]domain.SaleLine(nil), cart.lines[i:]...)
			cart.lines = remaining
			cart.total = domain.SumLines(remaining)
			return result, fmt.Errorf("abandon cart %s: %w", cart.token, err)
		}
	}

	cart.lines = nil
	cart.total = decimal.Zero
	cart.state = CartAbandoned

	e.log.WithFields(logrus.Fields{
		"cart":     cart.token,
		"restored": len(result.Restored),
		"skipped":  len(result.Skipped),
	}).Debug("cart abandoned")
	return result, nil
}

// LineRequest is one requested line of a Checkout.
type LineRequest struct {
	Name     string
	Quantity int64
}

// Checkout runs a whole checkout session: it adds every requested line to
// a new cart and commits it. If any line or the commit fails, the cart is
// abandoned so no stock stays reserved, and the first error is returned.
func (e *Engine) Checkout(ctx context.Context, requests []LineRequest) (domain.Sale, error) {
	cart := e.NewCart()

	for _, req := range requests {
		if _, err := e.AddToCart(ctx, cart, req.Name, req.Quantity); err != nil {
			return domain.Sale{}, e.rollback(ctx, cart, err)
		}
	}

	sale, err := e.Commit(ctx, cart)
	if err != nil {
		return domain.Sale{}, e.rollback(ctx, cart, err)
	}
	return sale, nil
}

func (e *Engine) rollback(ctx context.Context, cart *Cart, cause error) error {
	if _, err := e.Abandon(ctx, cart); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// ComputeChange returns amountTendered - total. The result may be negative,
// meaning the payment is short; it is never clamped to zero.
// Returns INVALID_INPUT when amountTendered is not a non-negative decimal.
func ComputeChange(amountTendered string, total decimal.Decimal) (decimal.Decimal, error) {
	tendered, err := domain.ParseAmount(amountTendered)
	if err != nil {
		return decimal.Zero, err
	}
	return tendered.Sub(total), nil
}
