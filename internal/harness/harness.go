package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"reflect"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/roach88/grocer/internal/catalog"
	"github.com/roach88/grocer/internal/domain"
	"github.com/roach88/grocer/internal/engine"
	"github.com/roach88/grocer/internal/ledger"
	"github.com/roach88/grocer/internal/query"
	"github.com/roach88/grocer/internal/store"
	"github.com/roach88/grocer/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios with a deterministic clock and cart tokens.
type Harness struct {
	store   *store.Store
	catalog *catalog.Catalog
	ledger  *ledger.Ledger
	engine  *engine.Engine
	query   *query.Facade
	carts   map[string]*engine.Cart
	seq     int64
	logger  *logrus.Entry
}

// Option configures a harness run.
type Option func(*Harness)

// WithLogger sets the logger for step entries. By default logs are discarded.
func WithLogger(log *logrus.Entry) Option {
	return func(h *Harness) {
		h.logger = log
	}
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Execute setup steps (any failure aborts the run)
// 3. Execute flow steps against the real catalog and engine,
// comparing each outcome with its expect clause
// 4. Evaluate assertions and return the result with pass/fail and trace
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	h := &Harness{
		store:  st,
		carts:  make(map[string]*engine.Cart),
		logger: logrus.NewEntry(discard),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.catalog = catalog.New(st, catalog.WithLogger(h.logger))
	h.ledger = ledger.New(st, ledger.WithLogger(h.logger))
	h.engine = engine.New(h.catalog, h.ledger,
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithTokenGenerator(testutil.NewSequentialCartTokens(scenario.CartPrefix)),
		engine.WithLogger(h.logger),
	)
	h.query = query.New(h.catalog)

	ctx := context.Background()
	result := NewResult()

	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

func (h *Harness) nextSeq() int64 {
	h.seq++
	return h.seq
}

// executeSetup runs all setup steps. Setup steps must succeed.
func (h *Harness) executeSetup(ctx context.Context, setup []ActionStep, result *Result) error {
	for i, step := range setup {
		result.AddInvocationTrace(step.Action, step.Args, h.nextSeq())

		out, err := h.invoke(ctx, step.Action, step.Args)
		if err != nil {
			return fmt.Errorf("setup step %d (%s): %w", i, step.Action, err)
		}
		result.AddCompletionTrace(CaseSuccess, out, h.nextSeq())

		h.logger.WithFields(logrus.Fields{"step": i, "action": step.Action}).Debug("setup step completed")
	}
	return nil
}

// executeFlow runs all flow steps and validates expect clauses.
//
// Each step:
// 1. Records the invocation in the trace
// 2. Runs the action against the catalog or engine
// 3. Maps a domain error to its code as the output case
// 4. Records the completion and compares it with the expect clause
//
// Errors that are not domain errors (storage failures, malformed args)
// abort the run.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		result.AddInvocationTrace(step.Invoke, step.Args, h.nextSeq())

		outputCase := CaseSuccess
		out, err := h.invoke(ctx, step.Invoke, step.Args)
		if err != nil {
			code := domain.CodeOf(err)
			if code == "" {
				return fmt.Errorf("flow step %d (%s): %w", i, step.Invoke, err)
			}
			outputCase = string(code)
			out = errorResult(err)
		}
		result.AddCompletionTrace(outputCase, out, h.nextSeq())

		expectedCase := CaseSuccess
		if step.Expect != nil {
			expectedCase = step.Expect.Case
		}
		if outputCase != expectedCase {
			result.AddError(fmt.Sprintf("flow[%d] %s: expected case %s, got %s (%v)",
				i, step.Invoke, expectedCase, outputCase, out))
		} else if step.Expect != nil {
			for _, msg := range compareResult(out, step.Expect.Result) {
				result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Invoke, msg))
			}
		}

		h.logger.WithFields(logrus.Fields{
			"step":        i,
			"action":      step.Invoke,
			"output_case": outputCase,
		}).Debug("flow step completed")
	}

	return nil
}

// invoke runs one action and returns its result fields.
func (h *Harness) invoke(ctx context.Context, action string, args map[string]any) (map[string]any, error) {
	switch action {
	case ActionAddItem:
		name, qty, price, err := itemArgs(args, "name")
		if err != nil {
			return nil, err
		}
		id, err := h.catalog.AddNew(ctx, name, qty, price)
		if err != nil {
			return nil, err
		}
		return map[string]any{"id": id}, nil

	case ActionRestock:
		name, err := argString(args, "name")
		if err != nil {
			return nil, err
		}
		delta, err := argInt(args, "quantity")
		if err != nil {
			return nil, err
		}
		qty, err := h.catalog.AddExisting(ctx, name, delta)
		if err != nil {
			return nil, err
		}
		return map[string]any{"quantity": qty}, nil

	case ActionEditItem:
		name, err := argString(args, "name")
		if err != nil {
			return nil, err
		}
		newName, qty, price, err := itemArgs(args, "new_name")
		if err != nil {
			return nil, err
		}
		item, err := h.catalog.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if err := h.catalog.Edit(ctx, item.ID, newName, qty, price); err != nil {
			return nil, err
		}
		return map[string]any{"id": item.ID}, nil

	case ActionDeleteItem:
		name, err := argString(args, "name")
		if err != nil {
			return nil, err
		}
		if err := h.catalog.Delete(ctx, name); err != nil {
			return nil, err
		}
		return map[string]any{}, nil

	case ActionClearItems:
		n, err := h.catalog.ClearAll(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"removed": n}, nil

	case ActionNewCart:
		label, err := argString(args, "cart")
		if err != nil {
			return nil, err
		}
		if _, exists := h.carts[label]; exists {
			return nil, fmt.Errorf("cart %q already opened", label)
		}
		cart := h.engine.NewCart()
		h.carts[label] = cart
		return map[string]any{"token": cart.Token()}, nil

	case ActionAddToCart:
		cart, err := h.cart(args)
		if err != nil {
			return nil, err
		}
		name, err := argString(args, "name")
		if err != nil {
			return nil, err
		}
		qty, err := argInt(args, "quantity")
		if err != nil {
			return nil, err
		}
		line, err := h.engine.AddToCart(ctx, cart, name, qty)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"item_id":    line.ItemID,
			"line_total": line.Subtotal(),
			"cart_total": cart.Total(),
		}, nil

	case ActionCommit:
		cart, err := h.cart(args)
		if err != nil {
			return nil, err
		}
		sale, err := h.engine.Commit(ctx, cart)
		if err != nil {
			return nil, err
		}
		return map[string]any{"sale_id": sale.ID, "total": sale.TotalPrice}, nil

	case ActionAbandon:
		cart, err := h.cart(args)
		if err != nil {
			return nil, err
		}
		res, err := h.engine.Abandon(ctx, cart)
		if err != nil {
			return nil, err
		}
		return map[string]any{"restored": len(res.Restored), "skipped": len(res.Skipped)}, nil

	case ActionComputeChange:
		tendered, err := argString(args, "tendered")
		if err != nil {
			return nil, err
		}
		total, err := argDecimal(args, "total")
		if err != nil {
			return nil, err
		}
		change, err := engine.ComputeChange(tendered, total)
		if err != nil {
			return nil, err
		}
		return map[string]any{"change": change}, nil

	case ActionSearch:
		q, err := argOptionalString(args, "query")
		if err != nil {
			return nil, err
		}
		items, err := h.query.SearchByName(ctx, q)
		if err != nil {
			return nil, err
		}
		names := make([]any, len(items))
		for i, item := range items {
			names[i] = item.Name
		}
		return map[string]any{"names": names}, nil

	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}
}

func (h *Harness) cart(args map[string]any) (*engine.Cart, error) {
	label, err := argString(args, "cart")
	if err != nil {
		return nil, err
	}
	cart, ok := h.carts[label]
	if !ok {
		return nil, fmt.Errorf("cart %q was never opened", label)
	}
	return cart, nil
}

// errorResult turns a domain error into completion result fields.
func errorResult(err error) map[string]any {
	out := map[string]any{"message": err.Error()}
	if available, ok := domain.AvailableOf(err); ok {
		out["available"] = available
	}
	return out
}

// compareResult checks expected fields against actual ones (subset match).
// Values are compared by their canonical JSON form, so a YAML int matches
// an int64 and a decimal matches its string form ("3.6").
func compareResult(actual, expected map[string]any) []string {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var msgs []string
	for _, k := range keys {
		got, ok := actual[k]
		if !ok {
			msgs = append(msgs, fmt.Sprintf("result field %q missing", k))
			continue
		}
		if !canonicalEqual(expected[k], got) {
			msgs = append(msgs, fmt.Sprintf("result field %q: expected %v, got %v", k, expected[k], got))
		}
	}
	return msgs
}

func canonicalEqual(a, b any) bool {
	ab, errA := domain.MarshalCanonical(a)
	bb, errB := domain.MarshalCanonical(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return bytes.Equal(ab, bb)
}

// itemArgs reads the name (under nameKey), quantity and price of an item.
func itemArgs(args map[string]any, nameKey string) (string, int64, decimal.Decimal, error) {
	name, err := argString(args, nameKey)
	if err != nil {
		return "", 0, decimal.Zero, err
	}
	qty, err := argInt(args, "quantity")
	if err != nil {
		return "", 0, decimal.Zero, err
	}
	price, err := argDecimal(args, "price")
	if err != nil {
		return "", 0, decimal.Zero, err
	}
	return name, qty, price, nil
}

func argString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing arg %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("arg %q: expected string, got %T", key, v)
	}
	return s, nil
}

// argOptionalString is argString with a missing key read as "".
func argOptionalString(args map[string]any, key string) (string, error) {
	if _, ok := args[key]; !ok {
		return "", nil
	}
	return argString(args, key)
}

func argInt(args map[string]any, key string) (int64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing arg %q", key)
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, fmt.Errorf("arg %q: expected integer, got %T", key, v)
	}
}

// argDecimal accepts a decimal string or a YAML integer. Floats are
// rejected so a price is never rounded by the YAML decoder.
func argDecimal(args map[string]any, key string) (decimal.Decimal, error) {
	v, ok := args[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("missing arg %q", key)
	}
	switch n := v.(type) {
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero, fmt.Errorf("arg %q: %w", key, err)
		}
		return d, nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	default:
		return decimal.Zero, fmt.Errorf("arg %q: expected decimal string, got %T", key, v)
	}
}
