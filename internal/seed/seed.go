// Package seed loads catalog seed data from CUE files and imports it.
//
// A seed directory holds one or more .cue files of a single package.
// Every entry under the top-level "item" struct is unified with the #Item
// schema before it is read:
//
//	package seed
//
//	item: {
//		Rice:  {quantity: 40, price: "1.20"}
//		"Oat Milk": {quantity: 12, price: "2.75"}
//	}
//
// Prices are strings so they are read as exact decimals.
package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/roach88/grocer/internal/domain"
)

const schema = `
#Item: {
	quantity: int & >=0
	price:    string & =~"^[0-9]+(\\.[0-9]+)?$"
}
`

// Error codes for seed loading failures.
const (
	ErrCodeNotFound    = "S001" // Seed directory missing
	ErrCodeNoFiles     = "S002" // No CUE files found
	ErrCodeLoadFailed  = "S003" // CUE load failed
	ErrCodeBuildFailed = "S004" // CUE build failed
	ErrCodeInvalidItem = "S005" // Entry does not match #Item
)

// LoadError reports a seed loading failure with its CUE position when known.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Entry is one validated seed item.
type Entry struct {
	Name      string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// LoadDir reads every entry under "item" in the CUE package in dir, in
// declaration order. It fails on the first invalid entry.
func LoadDir(dir string) ([]Entry, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("seed directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing seed directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil || len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	if err := instances[0].Err; err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", err)}
	}

	value := ctx.BuildInstance(instances[0])
	if err := value.Err(); err != nil {
		return nil, convertCUEError(ErrCodeBuildFailed, err)
	}

	itemSchema := ctx.CompileString(schema).LookupPath(cue.ParsePath("#Item"))
	if err := itemSchema.Err(); err != nil {
		return nil, fmt.Errorf("compile seed schema: %w", err)
	}

	items := value.LookupPath(cue.ParsePath("item"))
	if !items.Exists() {
		return nil, nil
	}

	iter, err := items.Fields()
	if err != nil {
		return nil, convertCUEError(ErrCodeInvalidItem, err)
	}

	var entries []Entry
	for iter.Next() {
		entry, err := decodeEntry(iter.Label(), iter.Value().Unify(itemSchema))
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func decodeEntry(label string, v cue.Value) (Entry, error) {
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Entry{}, convertCUEError(ErrCodeInvalidItem, err)
	}

	name := domain.NormalizeName(label)
	if name == "" {
		return Entry{}, &LoadError{Code: ErrCodeInvalidItem, Message: "item name must not be empty", Pos: v.Pos()}
	}

	qty, err := v.LookupPath(cue.ParsePath("quantity")).Int64()
	if err != nil {
		return Entry{}, convertCUEError(ErrCodeInvalidItem, err)
	}

	raw, err := v.LookupPath(cue.ParsePath("price")).String()
	if err != nil {
		return Entry{}, convertCUEError(ErrCodeInvalidItem, err)
	}
	price, err := domain.ParseAmount(raw)
	if err != nil {
		return Entry{}, &LoadError{Code: ErrCodeInvalidItem, Message: err.Error(), Pos: v.Pos()}
	}

	return Entry{Name: name, Quantity: qty, UnitPrice: price}, nil
}

// convertCUEError keeps the first CUE error and its position.
func convertCUEError(code string, err error) *LoadError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}
	first := errs[0]
	loadErr := &LoadError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		loadErr.Pos = positions[0]
	}
	return loadErr
}

// Adder is the catalog operation Import uses.
type Adder interface {
	AddNew(ctx context.Context, name string, quantity int64, unitPrice decimal.Decimal) (int64, error)
}

// Import adds every entry to the catalog, merging quantities into items
// that already exist. It stops at the first failure and returns how many
// entries were applied before it.
func Import(ctx context.Context, cat Adder, entries []Entry, log *logrus.Entry) (int, error) {
	for i, e := range entries {
		id, err := cat.AddNew(ctx, e.Name, e.Quantity, e.UnitPrice)
		if err != nil {
			return i, fmt.Errorf("import %q: %w", e.Name, err)
		}
		if log != nil {
			log.WithFields(logrus.Fields{"item": e.Name, "id": id, "quantity": e.Quantity}).Debug("seed item imported")
		}
	}
	return len(entries), nil
}
