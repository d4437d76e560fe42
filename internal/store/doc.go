// Package store provides SQLite-backed durable storage for the grocer
// item catalog and sale ledger.
//
// Tables:
//   - items: current stock, one row per unique item name
//   - sales: append-only sale records with canonical JSON line snapshots
//
// # Guarantees
//
// Every write is a single statement or runs inside a transaction started
// with WithTx, so a failed operation leaves no partial rows behind.
// items.quantity carries a CHECK (quantity >= 0) constraint and
// AdjustQuantity refuses any delta that would take it below zero.
//
// Prices are stored as decimal strings, never REAL, so totals read back
// exactly as written.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
