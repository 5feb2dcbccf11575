package tariff

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// QuantityPlaces is the number of fractional digits kept in inverse totals.
const QuantityPlaces = 2

// Direction tells which side of the conversion was solved for.
type Direction string

const (
	// Forward prices a known consumption.
	Forward Direction = "kw_to_money"
	// Inverse finds the consumption a known amount buys.
	Inverse Direction = "money_to_kw"
)

// Line is one breakdown entry.
type Line struct {
	Band     string
	Quantity decimal.Decimal
	Rate     decimal.Decimal
	Cost     decimal.Decimal
}

// Result is the outcome of one conversion. Lines only cover bands actually used.
type Result struct {
	Class     string
	Direction Direction
	Quantity  decimal.Decimal
	Cost      decimal.Decimal
	Lines     []Line
}

// Engine resolves customer classes against a Table and prices them.
type Engine struct {
	table *Table
}

// NewEngine returns an engine over a validated table.
func NewEngine(table *Table) *Engine {
	return &Engine{table: table}
}

// Table exposes the read-only schedule table.
func (e *Engine) Table() *Table {
	return e.table
}

// PriceQuantity computes the cost of quantity kW for class.
func (e *Engine) PriceQuantity(class string, quantity float64) (Result, error) {
	if !isPositiveFinite(quantity) {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidQuantity, quantity)
	}
	s, err := e.table.Lookup(class)
	if err != nil {
		return Result{}, err
	}
	res, err := PriceQuantity(s, decimal.NewFromFloat(quantity))
	res.Class = class
	return res, err
}

// PriceAmount computes how many kW amount buys for class.
func (e *Engine) PriceAmount(class string, amount float64) (Result, error) {
	if !isPositiveFinite(amount) {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	s, err := e.table.Lookup(class)
	if err != nil {
		return Result{}, err
	}
	res, err := PriceAmount(s, decimal.NewFromFloat(amount))
	res.Class = class
	return res, err
}

// PriceQuantity partitions quantity across the schedule and prices each part.
func PriceQuantity(s Schedule, quantity decimal.Decimal) (Result, error) {
	if !quantity.IsPositive() {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidQuantity, quantity)
	}

	res := Result{Direction: Forward, Quantity: quantity}
	switch sched := s.(type) {
	case Flat:
		cost := quantity.Mul(sched.rate)
		res.Cost = cost
		res.Lines = []Line{flatLine(quantity, sched.rate, cost)}
	case Tiered:
		res.Cost, res.Lines = priceTieredQuantity(sched.bands, quantity)
	default:
		return Result{}, fmt.Errorf("tariff: unsupported schedule %T", s)
	}
	return res, nil
}

// PriceAmount inverts PriceQuantity: it finds the quantity whose cost is amount.
// The returned Quantity is rounded to QuantityPlaces; lines keep full precision.
func PriceAmount(s Schedule, amount decimal.Decimal) (Result, error) {
	if !amount.IsPositive() {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	res := Result{Direction: Inverse, Cost: amount}
	var quantity decimal.Decimal
	switch sched := s.(type) {
	case Flat:
		quantity = amount.Div(sched.rate)
		res.Lines = []Line{flatLine(quantity, sched.rate, amount)}
	case Tiered:
		quantity, res.Lines = priceTieredAmount(sched.bands, amount)
	default:
		return Result{}, fmt.Errorf("tariff: unsupported schedule %T", s)
	}
	res.Quantity = quantity.Round(QuantityPlaces)
	return res, nil
}

func priceTieredQuantity(bands []Band, quantity decimal.Decimal) (decimal.Decimal, []Line) {
	total := decimal.Zero
	remaining := quantity
	var lines []Line

	for _, b := range bands {
		used := remaining
		if !b.IsUnbounded() {
			used = decimal.Min(remaining, b.Capacity())
		}
		if used.IsPositive() {
			cost := used.Mul(b.Rate)
			lines = append(lines, Line{Band: b.Label(), Quantity: used, Rate: b.Rate, Cost: cost})
			total = total.Add(cost)
			remaining = remaining.Sub(used)
		}
		if !remaining.IsPositive() {
			break
		}
	}
	return total, lines
}

func priceTieredAmount(bands []Band, amount decimal.Decimal) (decimal.Decimal, []Line) {
	quantity := decimal.Zero
	remaining := amount
	var lines []Line

	for _, b := range bands {
		if !b.IsUnbounded() {
			capacity := b.Capacity()
			capacityCost := capacity.Mul(b.Rate)
			if remaining.GreaterThanOrEqual(capacityCost) {
				lines = append(lines, Line{Band: b.Label(), Quantity: capacity, Rate: b.Rate, Cost: capacityCost})
				quantity = quantity.Add(capacity)
				remaining = remaining.Sub(capacityCost)
				if remaining.IsZero() {
					break
				}
				continue
			}
		}

		// The rest of the money is absorbed by this band.
		used := remaining.Div(b.Rate)
		lines = append(lines, Line{Band: b.Label(), Quantity: used, Rate: b.Rate, Cost: remaining})
		quantity = quantity.Add(used)
		break
	}
	return quantity, lines
}

func flatLine(quantity, rate, cost decimal.Decimal) Line {
	return Line{Band: "0-" + UnboundedSymbol, Quantity: quantity, Rate: rate, Cost: cost}
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}
