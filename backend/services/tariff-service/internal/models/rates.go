package models

import (
	"meterbill/backend/libs/tariff"
)

// RateBand is a display row of a tiered schedule. Max is nil for the open band.
type RateBand struct {
	Min  int64   `json:"min"`
	Max  *int64  `json:"max"`
	Rate float64 `json:"rate"`
}

// FlatRate is the display form of a flat schedule.
type FlatRate struct {
	Rate float64 `json:"rate"`
}

// RateSheet renders the table as class -> []RateBand | FlatRate.
func RateSheet(table *tariff.Table) map[string]interface{} {
	sheet := make(map[string]interface{})
	for class, s := range table.List() {
		switch sched := s.(type) {
		case tariff.Flat:
			sheet[class] = FlatRate{Rate: sched.Rate().InexactFloat64()}
		case tariff.Tiered:
			bands := sched.Bands()
			rows := make([]RateBand, 0, len(bands))
			for _, b := range bands {
				row := RateBand{Min: b.Lower, Rate: b.Rate.InexactFloat64()}
				if !b.IsUnbounded() {
					upper := b.Upper
					row.Max = &upper
				}
				rows = append(rows, row)
			}
			sheet[class] = rows
		}
	}
	return sheet
}
