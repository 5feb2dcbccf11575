package models

import "time"

// Calculation types accepted for history records.
const (
	CalculationKWToMoney = "kw_to_money"
	CalculationMoneyToKW = "money_to_kw"
)

// BreakdownLine is one band of a priced quantity.
type BreakdownLine struct {
	Tier  string  `json:"tier" bson:"tier"`
	Usage float64 `json:"usage" bson:"usage"`
	Rate  float64 `json:"rate" bson:"rate"`
	Cost  float64 `json:"cost" bson:"cost"`
}

// Calculation is a stored history entry. Optional fields are nil when the
// client did not send them.
type Calculation struct {
	ID              string          `json:"id" bson:"_id"`
	CalculationType string          `json:"calculation_type" bson:"calculation_type"`
	MeterType       string          `json:"meter_type" bson:"meter_type"`
	PreviousReading *float64        `json:"previous_reading" bson:"previous_reading,omitempty"`
	CurrentReading  *float64        `json:"current_reading" bson:"current_reading,omitempty"`
	Consumption     *float64        `json:"consumption" bson:"consumption,omitempty"`
	Amount          *float64        `json:"amount" bson:"amount,omitempty"`
	TotalCost       *float64        `json:"total_cost" bson:"total_cost,omitempty"`
	Breakdown       []BreakdownLine `json:"breakdown" bson:"breakdown,omitempty"`
	Timestamp       time.Time       `json:"timestamp" bson:"timestamp"`
}

// CalculationInput is the client payload for POST /api/calculate.
type CalculationInput struct {
	CalculationType string          `json:"calculation_type"`
	MeterType       string          `json:"meter_type"`
	PreviousReading *float64        `json:"previous_reading"`
	CurrentReading  *float64        `json:"current_reading"`
	Consumption     *float64        `json:"consumption"`
	Amount          *float64        `json:"amount"`
	TotalCost       *float64        `json:"total_cost"`
	Breakdown       []BreakdownLine `json:"breakdown"`
}
