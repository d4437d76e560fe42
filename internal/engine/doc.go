// Package engine implements cart-based selling over the catalog and the
// ledger.
//
// A checkout session is a Cart. Lines are added one at a time; each
// addition reserves stock in the catalog at once, so the decrement is
// visible to every other session before the cart is committed. A cart ends
// in exactly one of two ways:
//
//	Commit  - the lines become one immutable Sale in the ledger
//	Abandon - every reserved quantity is returned to its item
//
// CONCURRENCY:
//
// Availability check and decrement for one line happen under the catalog
// lock, so concurrent carts can never oversell an item. Each Cart has its
// own lock; a single cart may be shared between goroutines but its
// operations are applied one at a time.
//
// Sale timestamps come from a Clock and cart tokens from a
// CartTokenGenerator. Tests replace both to make traces reproducible.
package engine
