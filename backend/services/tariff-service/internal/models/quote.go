package models

import (
	"meterbill/backend/libs/tariff"
)

// CostQuote answers a kW -> money request.
type CostQuote struct {
	Consumption float64         `json:"consumption"`
	TotalCost   float64         `json:"total_cost"`
	Breakdown   []BreakdownLine `json:"breakdown"`
	MeterType   string          `json:"meter_type"`
}

// EnergyQuote answers a money -> kW request.
type EnergyQuote struct {
	Amount    float64         `json:"amount"`
	TotalKW   float64         `json:"total_kw"`
	Breakdown []BreakdownLine `json:"breakdown"`
	MeterType string          `json:"meter_type"`
}

// NewBreakdown converts engine lines for JSON/storage.
func NewBreakdown(lines []tariff.Line) []BreakdownLine {
	out := make([]BreakdownLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, BreakdownLine{
			Tier:  l.Band,
			Usage: l.Quantity.InexactFloat64(),
			Rate:  l.Rate.InexactFloat64(),
			Cost:  l.Cost.InexactFloat64(),
		})
	}
	return out
}

// NewCostQuote maps a forward result.
func NewCostQuote(res tariff.Result) CostQuote {
	return CostQuote{
		Consumption: res.Quantity.InexactFloat64(),
		TotalCost:   res.Cost.InexactFloat64(),
		Breakdown:   NewBreakdown(res.Lines),
		MeterType:   res.Class,
	}
}

// NewEnergyQuote maps an inverse result.
func NewEnergyQuote(res tariff.Result) EnergyQuote {
	return EnergyQuote{
		Amount:    res.Cost.InexactFloat64(),
		TotalKW:   res.Quantity.InexactFloat64(),
		Breakdown: NewBreakdown(res.Lines),
		MeterType: res.Class,
	}
}
