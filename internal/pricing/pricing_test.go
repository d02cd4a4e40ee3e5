package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "oficina-system/pkg/errors"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func TestSuggestedPrice(t *testing.T) {
	assertDecimal(t, "140", SuggestedPrice(d("100"), d("40")))
	assertDecimal(t, "75.50", SuggestedPrice(d("50.33"), d("50")))
	assertDecimal(t, "0", SuggestedPrice(d("0"), d("40")))
}

func TestMarginOf(t *testing.T) {
	tests := []struct {
		cost, price, want string
	}{
		{"100", "140", "40"},
		{"80", "100", "25"},
		{"50", "50", "0"},
		{"200", "150", "-25"},
		{"4", "5", "25"},
	}
	for _, tt := range tests {
		m, ok := MarginOf(d(tt.cost), d(tt.price))
		require.True(t, ok)
		assertDecimal(t, tt.want, m)
	}

	_, ok := MarginOf(decimal.Zero, d("10"))
	assert.False(t, ok)
}

func TestQuotePart_FromMargin(t *testing.T) {
	q, err := QuotePart(PartInput{Quantity: 3, UnitCost: d("100"), Margin: dp("50")})
	require.NoError(t, err)
	assertDecimal(t, "150", q.UnitPrice)
	assertDecimal(t, "450", q.Total)
	assertDecimal(t, "50", q.Margin)
}

func TestQuotePart_UnitPriceWins(t *testing.T) {
	q, err := QuotePart(PartInput{Quantity: 2, UnitCost: d("80"), Margin: dp("60"), UnitPrice: dp("100")})
	require.NoError(t, err)
	assertDecimal(t, "100", q.UnitPrice)
	assertDecimal(t, "200", q.Total)
	assertDecimal(t, "25", q.Margin)
}

func TestQuotePart_ZeroCostUsesNominalMargin(t *testing.T) {
	q, err := QuotePart(PartInput{Quantity: 1, UnitCost: decimal.Zero, Margin: dp("35"), UnitPrice: dp("20")})
	require.NoError(t, err)
	assertDecimal(t, "35", q.Margin)
	assert.False(t, NeedsJustification(q, d("40")))

	q, err = QuotePart(PartInput{Quantity: 1, UnitCost: decimal.Zero, UnitPrice: dp("20")})
	require.NoError(t, err)
	assertDecimal(t, "100", q.Margin)
}

func TestQuotePart_InvalidInput(t *testing.T) {
	cases := []PartInput{
		{Quantity: 0, UnitCost: d("10"), Margin: dp("40")},
		{Quantity: 1, UnitCost: d("-1"), Margin: dp("40")},
		{Quantity: 1, UnitCost: d("10")},
		{Quantity: 1, UnitCost: d("10"), UnitPrice: dp("-5")},
		{Quantity: 1, UnitCost: d("10"), Margin: dp("-100")},
	}
	for _, in := range cases {
		_, err := QuotePart(in)
		assert.True(t, apperrors.IsInvalidInput(err), "%+v", in)
	}
}

func TestQuotePart_TinyCostHugeMargin(t *testing.T) {
	q, err := QuotePart(PartInput{Quantity: 1, UnitCost: d("0.01"), UnitPrice: dp("10000")})
	require.NoError(t, err)
	assertDecimal(t, "99999900", q.Margin)
	assert.True(t, q.Margin.LessThanOrEqual(MaxMargin))
}

func TestQuotePart_OutOfRange(t *testing.T) {
	cases := []PartInput{
		{Quantity: 1, UnitCost: d("10"), UnitPrice: dp("10000000000")},
		{Quantity: 2, UnitCost: d("10"), UnitPrice: dp("5000000000")},
		{Quantity: 1, UnitCost: d("0"), UnitPrice: dp("10"), Margin: dp("1e18")},
		{Quantity: 1, UnitCost: d("1"), Margin: dp("1e12")},
	}
	for _, in := range cases {
		_, err := QuotePart(in)
		assert.True(t, apperrors.IsInvalidInput(err), "%+v", in)
	}

	_, err := LaborQuote(3, d("4000000000"))
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestLaborQuote(t *testing.T) {
	q, err := LaborQuote(2, d("150"))
	require.NoError(t, err)
	assertDecimal(t, "300", q.Total)
	assertDecimal(t, "100", q.Margin)
	assert.True(t, q.UnitCost.IsZero())
	assert.False(t, NeedsJustification(q, d("40")))

	_, err = LaborQuote(0, d("150"))
	assert.Error(t, err)
}

func TestNeedsJustification(t *testing.T) {
	min := d("40")

	below, err := QuotePart(PartInput{Quantity: 1, UnitCost: d("100"), UnitPrice: dp("139.99")})
	require.NoError(t, err)
	assert.True(t, NeedsJustification(below, min))

	exact, err := QuotePart(PartInput{Quantity: 1, UnitCost: d("100"), Margin: dp("40")})
	require.NoError(t, err)
	assert.False(t, NeedsJustification(exact, min))

	// 39.999...% округляется до 40.00, но порог всё равно не пройден
	almost, err := QuotePart(PartInput{Quantity: 1, UnitCost: d("300"), UnitPrice: dp("419.99")})
	require.NoError(t, err)
	assertDecimal(t, "40", almost.Margin)
	assert.True(t, NeedsJustification(almost, min))
}
