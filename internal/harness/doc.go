// Package harness runs YAML test scenarios against the catalog and the
// transaction engine and checks their traces.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: rice_shortage
//	description: "Second add of 3 Rice fails when only 2 are left"
//	setup:
//	  - action: add_item
//	    args: { name: Rice, quantity: 5, price: "1.20" }
//	flow:
//	  - invoke: new_cart
//	    args: { cart: c1 }
//	  - invoke: add_to_cart
//	    args: { cart: c1, name: Rice, quantity: 3 }
//	  - invoke: add_to_cart
//	    args: { cart: c1, name: Rice, quantity: 3 }
//	    expect:
//	      case: INSUFFICIENT_STOCK
//	      result: { available: 2 }
//	assertions:
//	  - type: final_state
//	    table: items
//	    where: { name: Rice }
//	    expect: { quantity: 2 }
//
// A step's output case is "Success" or the code of the domain error it
// returned. Prices and other decimals are written as strings.
//
// # Assertion Types
//
//   - trace_contains: Verifies an action appears in the trace with matching args
//   - trace_order: Verifies actions appear in specified order
//   - trace_count: Verifies an action appears exactly N times
//   - final_state: Queries the items or sales table and verifies expected values
//
// # Deterministic Testing
//
// Every scenario runs in its own in-memory SQLite database with a
// deterministic clock (testutil.DeterministicClock) and sequential cart
// tokens, so the same scenario always produces byte-identical traces for
// golden file comparison.
package harness
