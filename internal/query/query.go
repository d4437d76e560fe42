// Package query is the read-only view of the catalog used for display:
// full listings and case-insensitive name search, sorted by name.
package query

import (
	"context"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/grocer/internal/catalog"
	"github.com/roach88/grocer/internal/domain"
)

// Reader is the subset of catalog.Catalog the facade reads from.
type Reader interface {
	List(ctx context.Context) ([]domain.Item, error)
	Search(ctx context.Context, substring string) ([]domain.Item, error)
}

var _ Reader = (*catalog.Catalog)(nil)

// Facade answers display queries. It never mutates state, so every caller
// sees the same result regardless of role.
type Facade struct {
	reader Reader
	lang   language.Tag
}

// New creates a Facade that sorts names with the root collation.
func New(r Reader) *Facade {
	return NewWithLanguage(r, language.Und)
}

// NewWithLanguage creates a Facade that sorts names with the collation
// rules of lang.
func NewWithLanguage(r Reader, lang language.Tag) *Facade {
	return &Facade{reader: r, lang: lang}
}

// ViewAll returns every item sorted by name.
func (f *Facade) ViewAll(ctx context.Context) ([]domain.Item, error) {
	items, err := f.reader.List(ctx)
	if err != nil {
		return nil, err
	}
	f.sortByName(items)
	return items, nil
}

// SearchByName returns items whose name contains substring, ignoring case,
// sorted by name. The empty substring returns the same as ViewAll.
func (f *Facade) SearchByName(ctx context.Context, substring string) ([]domain.Item, error) {
	items, err := f.reader.Search(ctx, substring)
	if err != nil {
		return nil, err
	}
	f.sortByName(items)
	return items, nil
}

// sortByName orders by locale collation; exact name then id break ties so
// the output is stable.
func (f *Facade) sortByName(items []domain.Item) {
	c := collate.New(f.lang, collate.IgnoreCase)
	sort.SliceStable(items, func(i, j int) bool {
		if cmp := c.CompareString(items[i].Name, items[j].Name); cmp != 0 {
			return cmp < 0
		}
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID < items[j].ID
	})
}
