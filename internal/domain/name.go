package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName returns the identity form of an item name: surrounding
// whitespace trimmed and NFC normalised. Identity comparison on the result
// is an exact, case-sensitive byte match.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// FoldName returns the search key for a name.
// Search is case-insensitive: both the stored key and the query are
// normalised and then Unicode case folded. Normalising trims, so a
// whitespace-only query folds to "" and matches every item.
func FoldName(name string) string {
	return cases.Fold().String(NormalizeName(name))
}

// ValidateItemFields checks the user supplied fields of an item.
func ValidateItemFields(name string, quantity int64, unitPrice decimal.Decimal) error {
	if name == "" {
		return NewInvalidInput("item name must not be empty")
	}
	if !utf8.ValidString(name) {
		return NewInvalidInput("item name must be valid UTF-8")
	}
	if quantity < 0 {
		return NewInvalidInput("quantity must not be negative")
	}
	if unitPrice.IsNegative() {
		return NewInvalidInput("unit price must not be negative")
	}
	return nil
}
