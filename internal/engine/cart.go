package engine

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/roach88/grocer/internal/domain"
)

// CartState is the lifecycle state of a checkout session.
type CartState int

const (
	// CartOpen accepts new lines.
	CartOpen CartState = iota
	// CartCommitted has been persisted as a sale.
	CartCommitted
	// CartAbandoned was discarded and its stock returned.
	CartAbandoned
)

func (s CartState) String() string {
	switch s {
	case CartOpen:
		return "open"
	case CartCommitted:
		return "committed"
	case CartAbandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("CartState(%d)", int(s))
	}
}

// Cart is an in-progress sequence of sale lines for one checkout session.
//
// Stock for each line is already reserved in the catalog when the line is
// added. A cart must end in Commit or Abandon; an open cart that is simply
// dropped keeps its stock reserved.
type Cart struct {
	mu     sync.Mutex
	token  string
	state  CartState
	lines  []domain.SaleLine
	total  decimal.Decimal
	saleID int64
}

func newCart(token string) *Cart {
	return &Cart{token: token, state: CartOpen, total: decimal.Zero}
}

// Token identifies the checkout session.
func (c *Cart) Token() string {
	return c.token
}

// State returns the current lifecycle state.
func (c *Cart) State() CartState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Lines returns a copy of the pending lines in the order they were added.
func (c *Cart) Lines() []domain.SaleLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.SaleLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total returns the running total of the pending lines.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// SaleID returns the ledger id once the cart is committed, 0 before.
func (c *Cart) SaleID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saleID
}

// requireOpen must be called with c.mu held.
func (c *Cart) requireOpen() error {
	if c.state != CartOpen {
		return domain.NewCartClosed(c.state.String())
	}
	return nil
}
