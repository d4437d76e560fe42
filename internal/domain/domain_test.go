package domain

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleLineSubtotal(t *testing.T) {
	line := SaleLine{ItemName: "Milk", QuantitySold: 3, UnitPriceAtSale: decimal.RequireFromString("2.5")}
	assert.True(t, line.Subtotal().Equal(decimal.RequireFromString("7.5")))
}

func TestSumLinesIsExact(t *testing.T) {
	lines := []SaleLine{
		{ItemName: "A", QuantitySold: 2, UnitPriceAtSale: decimal.NewFromInt(3)},
		{ItemName: "B", QuantitySold: 1, UnitPriceAtSale: decimal.NewFromInt(5)},
	}
	assert.True(t, SumLines(lines).Equal(decimal.NewFromInt(11)))

	// 0.1 * 3 drifts with floats, never with decimals
	dimes := []SaleLine{{ItemName: "Gum", QuantitySold: 3, UnitPriceAtSale: decimal.RequireFromString("0.1")}}
	assert.Equal(t, "0.3", SumLines(dimes).String())
}

func TestSumLinesEmpty(t *testing.T) {
	assert.True(t, SumLines(nil).IsZero())
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"invalid input", NewInvalidInput("bad"), IsInvalidInput},
		{"not found", NewNotFound("Milk"), IsNotFound},
		{"insufficient", NewInsufficientStock("Milk", 2, 5), IsInsufficientStock},
		{"out of stock", NewOutOfStock("Milk"), IsOutOfStock},
		{"empty cart", NewEmptyCart(), IsEmptyCart},
		{"invalid sale", NewInvalidSale("total mismatch"), IsInvalidSale},
		{"cart closed", NewCartClosed("committed"), IsCartClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, tt.check(wrapped), "helpers must see through wrapping")
		})
	}

	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(fmt.Errorf("plain")))
	assert.False(t, IsNotFound(NewOutOfStock("x")))
}

func TestAvailableOf(t *testing.T) {
	n, ok := AvailableOf(fmt.Errorf("wrap: %w", NewInsufficientStock("Rice", 0, 1)))
	require.True(t, ok)
	assert.Equal(t, int64(0), n)

	_, ok = AvailableOf(NewOutOfStock("Rice"))
	assert.False(t, ok)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "INSUFFICIENT_STOCK: only 2 left, requested 5 (item=Milk)",
		NewInsufficientStock("Milk", 2, 5).Error())
	assert.Equal(t, "EMPTY_CART: cart has no lines", NewEmptyCart().Error())
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Milk", NormalizeName("  Milk\t"))
	// "e" + combining acute composes to a single rune under NFC
	assert.Equal(t, "Caf\u00e9", NormalizeName("Cafe\u0301"))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestFoldName(t *testing.T) {
	assert.Equal(t, FoldName("MILK"), FoldName("milk"))
	assert.Equal(t, FoldName("Straße"), FoldName("STRASSE"))
}

func TestValidateItemFields(t *testing.T) {
	assert.NoError(t, ValidateItemFields("Milk", 0, decimal.Zero))
	assert.True(t, IsInvalidInput(ValidateItemFields("", 1, decimal.Zero)))
	assert.True(t, IsInvalidInput(ValidateItemFields("Caf\xe9", 1, decimal.Zero)))
	assert.True(t, IsInvalidInput(ValidateItemFields(NormalizeName(" Caf\xe9 "), 1, decimal.Zero)))
	assert.True(t, IsInvalidInput(ValidateItemFields("Milk", -1, decimal.Zero)))
	assert.True(t, IsInvalidInput(ValidateItemFields("Milk", 1, decimal.NewFromInt(-1))))
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"admin", RoleAdmin, true},
		{"Admin", RoleAdmin, true},
		{"User", RoleRegularUser, true},
		{"", RoleRegularUser, true},
		{"root", RoleRegularUser, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if !tt.ok {
				assert.True(t, IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.True(t, RoleAdmin.IsAdmin())
	assert.False(t, RoleRegularUser.IsAdmin())
	assert.Equal(t, "user", RoleRegularUser.String())
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount(" 20 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(20)))

	_, err = ParseAmount("twenty")
	assert.True(t, IsInvalidInput(err))

	_, err = ParseAmount("-1")
	assert.True(t, IsInvalidInput(err))
}

func TestParseQuantity(t *testing.T) {
	q, err := ParseQuantity("7")
	require.NoError(t, err)
	assert.Equal(t, int64(7), q)

	_, err = ParseQuantity("1.5")
	assert.True(t, IsInvalidInput(err))

	_, err = ParseQuantity("-2")
	assert.True(t, IsInvalidInput(err))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$11.00", FormatPrice(decimal.NewFromInt(11), "USD"))
	assert.Equal(t, "2.50 XYZ", FormatPrice(decimal.RequireFromString("2.5"), "XYZ"))
}
