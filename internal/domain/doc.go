// Package domain provides the shared model for the grocer inventory engine.
//
// Every other internal package imports domain; domain imports nothing
// internal. It holds the item and sale types, the error taxonomy, the
// name normalisation rules and the canonical encoding used to persist
// sale lines.
//
// Key constraints:
//   - NO float types for money - prices and totals are decimal.Decimal
//   - Quantities are int64 and never negative once stored
//   - Item names are NFC normalised and trimmed before any comparison
//   - Sale lines are snapshots, never references to live items
package domain
