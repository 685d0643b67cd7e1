package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowmart/glowmart-api/internal/domain/settings"
)

func testSettings() *settings.Settings {
	return &settings.Settings{
		Currency:              "INR",
		TaxName:               "GST",
		TaxRate:               decimal.NewFromInt(5),
		DeliveryCharge:        decimal.NewFromInt(50),
		FreeShippingThreshold: decimal.NewFromInt(2000),
	}
}

func line(id string, price string, qty int) Line {
	return Line{ProductID: id, UnitPrice: decimal.RequireFromString(price), Quantity: qty}
}

func TestCalculate_BelowFreeShippingThreshold(t *testing.T) {
	q, err := Calculate([]Line{line("p1", "500", 2)}, testSettings(), decimal.Zero)
	require.NoError(t, err)

	assert.True(t, q.Subtotal.Equal(decimal.NewFromInt(1000)), "subtotal %s", q.Subtotal)
	assert.True(t, q.Tax.Equal(decimal.NewFromInt(50)), "tax %s", q.Tax)
	assert.True(t, q.Shipping.Equal(decimal.NewFromInt(50)), "shipping %s", q.Shipping)
	assert.True(t, q.GrandTotal.Equal(decimal.NewFromInt(1100)), "total %s", q.GrandTotal)
}

func TestCalculate_FreeShippingAtThreshold(t *testing.T) {
	s := testSettings()
	s.FreeShippingThreshold = decimal.NewFromInt(900)

	q, err := Calculate([]Line{line("p1", "500", 2)}, s, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, q.Shipping.IsZero(), "shipping %s", q.Shipping)
	assert.True(t, q.GrandTotal.Equal(decimal.NewFromInt(1050)), "total %s", q.GrandTotal)
}

func TestCalculate_ZeroThresholdDisablesFreeShipping(t *testing.T) {
	s := testSettings()
	s.FreeShippingThreshold = decimal.Zero

	q, err := Calculate([]Line{line("p1", "5000", 1)}, s, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, q.Shipping.Equal(decimal.NewFromInt(50)), "shipping %s", q.Shipping)
}

func TestCalculate_DiscountReducesTaxableAmount(t *testing.T) {
	// Tax applies after the discount: (1000-100) * 5% = 45.
	q, err := Calculate([]Line{line("p1", "500", 2)}, testSettings(), decimal.NewFromInt(100))
	require.NoError(t, err)

	assert.True(t, q.Discount.Equal(decimal.NewFromInt(100)))
	assert.True(t, q.Tax.Equal(decimal.NewFromInt(45)), "tax %s", q.Tax)
	assert.True(t, q.GrandTotal.Equal(decimal.NewFromInt(995)), "total %s", q.GrandTotal)
}

func TestCalculate_DiscountExceedingSubtotalFloorsAtZero(t *testing.T) {
	q, err := Calculate([]Line{line("p1", "100", 1)}, testSettings(), decimal.NewFromInt(500))
	require.NoError(t, err)

	// Taxable floors at zero: only the delivery charge remains.
	assert.True(t, q.Tax.IsZero(), "tax %s", q.Tax)
	assert.True(t, q.GrandTotal.Equal(decimal.NewFromInt(50)), "total %s", q.GrandTotal)
}

func TestCalculate_FreeShippingUsesUndiscountedSubtotal(t *testing.T) {
	s := testSettings()
	s.FreeShippingThreshold = decimal.NewFromInt(1000)

	// Subtotal 1000 qualifies even though the discount drops it below the
	// threshold.
	q, err := Calculate([]Line{line("p1", "500", 2)}, s, decimal.NewFromInt(400))
	require.NoError(t, err)

	assert.True(t, q.Shipping.IsZero(), "shipping %s", q.Shipping)
}

func TestCalculate_Deterministic(t *testing.T) {
	lines := []Line{line("p1", "249.50", 3), line("p2", "99.99", 1)}
	s := testSettings()

	first, err := Calculate(lines, s, decimal.NewFromInt(50))
	require.NoError(t, err)

	for range 5 {
		again, err := Calculate(lines, s, decimal.NewFromInt(50))
		require.NoError(t, err)
		assert.True(t, first.GrandTotal.Equal(again.GrandTotal))
	}
}

func TestCalculate_RejectsMalformedLines(t *testing.T) {
	s := testSettings()

	_, err := Calculate([]Line{line("p1", "100", 0)}, s, decimal.Zero)
	require.ErrorIs(t, err, ErrMalformedLine)

	_, err = Calculate([]Line{line("p1", "100", -2)}, s, decimal.Zero)
	require.ErrorIs(t, err, ErrMalformedLine)

	_, err = Calculate([]Line{line("p1", "-5", 1)}, s, decimal.Zero)
	require.ErrorIs(t, err, ErrMalformedLine)
}

func TestCalculate_NegativeDiscountTreatedAsZero(t *testing.T) {
	q, err := Calculate([]Line{line("p1", "100", 1)}, testSettings(), decimal.NewFromInt(-10))
	require.NoError(t, err)

	assert.True(t, q.Discount.IsZero())
	assert.True(t, q.GrandTotal.Equal(decimal.NewFromInt(155)), "total %s", q.GrandTotal)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(110000), MinorUnits(decimal.NewFromInt(1100)))
	assert.Equal(t, int64(9999), MinorUnits(decimal.RequireFromString("99.99")))
	assert.Equal(t, int64(100), MinorUnits(decimal.RequireFromString("0.999")))
}
