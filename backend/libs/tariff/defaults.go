package tariff

import "github.com/shopspring/decimal"

// Customer classes served by the default table.
const (
	ClassResidential = "residential"
	ClassCommercial  = "commercial"
	ClassFactory     = "factory"
)

// DefaultSchedules returns the published AFN rates.
func DefaultSchedules() map[string]Schedule {
	return map[string]Schedule{
		ClassResidential: NewTiered(
			Band{Lower: 1, Upper: 200, Rate: decimal.RequireFromString("2.19")},
			Band{Lower: 201, Upper: 400, Rate: decimal.RequireFromString("5.63")},
			Band{Lower: 401, Upper: 700, Rate: decimal.RequireFromString("8.13")},
			Band{Lower: 701, Upper: 2000, Rate: decimal.RequireFromString("11.25")},
			Band{Lower: 2001, Upper: Unbounded, Rate: decimal.RequireFromString("12.5")},
		),
		ClassCommercial: NewFlat(decimal.RequireFromString("16.25")),
		ClassFactory:    NewFlat(decimal.RequireFromString("6.75")),
	}
}

// DefaultTable returns the validated default table.
func DefaultTable() *Table {
	t, err := NewTable(DefaultSchedules())
	if err != nil {
		panic(err)
	}
	return t
}
