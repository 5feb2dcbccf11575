package tariff

import (
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func newDefaultEngine() *Engine {
	return NewEngine(DefaultTable())
}

func TestPriceQuantityWithinFirstBand(t *testing.T) {
	res, err := newDefaultEngine().PriceQuantity(ClassResidential, 150)
	require.NoError(t, err)

	assert.Equal(t, ClassResidential, res.Class)
	assert.Equal(t, Forward, res.Direction)
	assertDecimal(t, "328.5", res.Cost)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, "1-200", res.Lines[0].Band)
	assertDecimal(t, "150", res.Lines[0].Quantity)
	assertDecimal(t, "2.19", res.Lines[0].Rate)
	assertDecimal(t, "328.5", res.Lines[0].Cost)
}

func TestPriceQuantitySpansTwoBands(t *testing.T) {
	res, err := newDefaultEngine().PriceQuantity(ClassResidential, 250)
	require.NoError(t, err)

	assertDecimal(t, "719.5", res.Cost)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, "1-200", res.Lines[0].Band)
	assertDecimal(t, "200", res.Lines[0].Quantity)
	assertDecimal(t, "438", res.Lines[0].Cost)
	assert.Equal(t, "201-400", res.Lines[1].Band)
	assertDecimal(t, "50", res.Lines[1].Quantity)
	assertDecimal(t, "5.63", res.Lines[1].Rate)
	assertDecimal(t, "281.5", res.Lines[1].Cost)
}

func TestPriceQuantityAllBands(t *testing.T) {
	res, err := newDefaultEngine().PriceQuantity(ClassResidential, 3000)
	require.NoError(t, err)

	require.Len(t, res.Lines, 5)
	wantUsage := []string{"200", "200", "300", "1300", "1000"}
	for i, line := range res.Lines {
		assertDecimal(t, wantUsage[i], line.Quantity, line.Band)
	}
	assert.Equal(t, "2001-∞", res.Lines[4].Band)
	// 200*2.19 + 200*5.63 + 300*8.13 + 1300*11.25 + 1000*12.5
	assertDecimal(t, "31128", res.Cost)
}

func TestPriceQuantityExactBoundaryStops(t *testing.T) {
	res, err := newDefaultEngine().PriceQuantity(ClassResidential, 200)
	require.NoError(t, err)

	require.Len(t, res.Lines, 1)
	assertDecimal(t, "438", res.Cost)
}

func TestPriceQuantityFlat(t *testing.T) {
	engine := newDefaultEngine()

	res, err := engine.PriceQuantity(ClassCommercial, 300)
	require.NoError(t, err)
	assertDecimal(t, "4875", res.Cost)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, "0-∞", res.Lines[0].Band)
	assertDecimal(t, "300", res.Lines[0].Quantity)
	assertDecimal(t, "16.25", res.Lines[0].Rate)
	assertDecimal(t, "4875", res.Lines[0].Cost)

	res, err = engine.PriceQuantity(ClassFactory, 500)
	require.NoError(t, err)
	assertDecimal(t, "3375", res.Cost)
}

func TestPriceAmountPartialSecondBand(t *testing.T) {
	res, err := newDefaultEngine().PriceAmount(ClassResidential, 1000)
	require.NoError(t, err)

	assert.Equal(t, Inverse, res.Direction)
	assertDecimal(t, "1000", res.Cost)
	assertDecimal(t, "299.82", res.Quantity)
	require.Len(t, res.Lines, 2)
	assertDecimal(t, "200", res.Lines[0].Quantity)
	assertDecimal(t, "438", res.Lines[0].Cost)
	assert.Equal(t, "201-400", res.Lines[1].Band)
	assertDecimal(t, "562", res.Lines[1].Cost)
}

func TestPriceAmountExactBandCost(t *testing.T) {
	res, err := newDefaultEngine().PriceAmount(ClassResidential, 438)
	require.NoError(t, err)

	assertDecimal(t, "200", res.Quantity)
	require.Len(t, res.Lines, 1)
}

func TestPriceAmountReachesUnboundedBand(t *testing.T) {
	res, err := newDefaultEngine().PriceAmount(ClassResidential, 31128)
	require.NoError(t, err)

	assertDecimal(t, "3000", res.Quantity)
	require.Len(t, res.Lines, 5)
	assert.Equal(t, "2001-∞", res.Lines[4].Band)
	assertDecimal(t, "1000", res.Lines[4].Quantity)
}

func TestPriceAmountFlat(t *testing.T) {
	engine := newDefaultEngine()

	res, err := engine.PriceAmount(ClassCommercial, 4875)
	require.NoError(t, err)
	assertDecimal(t, "300", res.Quantity)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, "0-∞", res.Lines[0].Band)

	res, err = engine.PriceAmount(ClassFactory, 100)
	require.NoError(t, err)
	assertDecimal(t, "14.81", res.Quantity)
}

func TestRoundTrip(t *testing.T) {
	engine := newDefaultEngine()
	tolerance := decimal.RequireFromString("0.01")
	quantities := []float64{0.01, 1, 150, 199.99, 200, 200.01, 250, 400, 699.5, 700, 1999, 2000, 2000.5, 3000, 12345.678}

	for _, class := range engine.Table().Classes() {
		for _, q := range quantities {
			forward, err := engine.PriceQuantity(class, q)
			require.NoError(t, err)

			inverse, err := engine.PriceAmount(class, forward.Cost.InexactFloat64())
			require.NoError(t, err)

			diff := inverse.Quantity.Sub(decimal.NewFromFloat(q)).Abs()
			assert.Truef(t, diff.LessThanOrEqual(tolerance), "%s q=%v got %s", class, q, inverse.Quantity)
		}
	}
}

func TestNoZeroUsageLines(t *testing.T) {
	engine := newDefaultEngine()
	values := []float64{0.5, 200, 201, 400, 438, 1564, 4003, 18628, 50000}

	for _, class := range engine.Table().Classes() {
		for _, v := range values {
			forward, err := engine.PriceQuantity(class, v)
			require.NoError(t, err)
			inverse, err := engine.PriceAmount(class, v)
			require.NoError(t, err)

			for _, line := range append(forward.Lines, inverse.Lines...) {
				assert.Truef(t, line.Quantity.IsPositive(), "%s v=%v band %s", class, v, line.Band)
			}
		}
	}
}

func TestInvalidInput(t *testing.T) {
	engine := newDefaultEngine()
	bad := []float64{0, -1, -100, math.NaN(), math.Inf(1), math.Inf(-1)}

	for _, v := range bad {
		_, err := engine.PriceQuantity(ClassResidential, v)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "quantity %v", v)

		_, err = engine.PriceAmount(ClassCommercial, v)
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %v", v)
	}
}

func TestUnknownClass(t *testing.T) {
	engine := newDefaultEngine()

	_, err := engine.PriceQuantity("industrial", 10)
	assert.ErrorIs(t, err, ErrUnknownClass)

	_, err = engine.PriceAmount("industrial", 10)
	assert.ErrorIs(t, err, ErrUnknownClass)
}

func TestCustomScheduleWithoutGlobalState(t *testing.T) {
	table, err := NewTable(map[string]Schedule{
		"pilot": NewTiered(
			Band{Lower: 1, Upper: 10, Rate: decimal.NewFromInt(1)},
			Band{Lower: 11, Upper: Unbounded, Rate: decimal.NewFromInt(3)},
		),
	})
	require.NoError(t, err)
	engine := NewEngine(table)

	res, err := engine.PriceQuantity("pilot", 12)
	require.NoError(t, err)
	assertDecimal(t, "16", res.Cost)

	res, err = engine.PriceAmount("pilot", 16)
	require.NoError(t, err)
	assertDecimal(t, "12", res.Quantity)

	_, err = engine.PriceQuantity(ClassResidential, 12)
	assert.ErrorIs(t, err, ErrUnknownClass)
}

func TestEngineConcurrentUse(t *testing.T) {
	engine := newDefaultEngine()

	var wg sync.WaitGroup
	for i := 1; i <= 32; i++ {
		wg.Add(1)
		go func(q float64) {
			defer wg.Done()
			res, err := engine.PriceQuantity(ClassResidential, q)
			assert.NoError(t, err)
			assert.True(t, res.Cost.IsPositive())
		}(float64(i * 97))
	}
	wg.Wait()
}
