package tariff

import (
	"fmt"
	"math"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// File layout:
//
//	schedules:
//	  residential:
//	    bands:
//	      - {min: 1, max: 200, rate: 2.19}
//	      - {min: 201, rate: 5.63}   # no max: unbounded
//	  commercial:
//	    rate: 16.25
type scheduleFile struct {
	Schedules map[string]fileSchedule `yaml:"schedules"`
}

type fileSchedule struct {
	Rate  *float64   `yaml:"rate"`
	Bands []fileBand `yaml:"bands"`
}

type fileBand struct {
	Min  int64   `yaml:"min"`
	Max  *int64  `yaml:"max"`
	Rate float64 `yaml:"rate"`
}

// LoadSchedules reads and validates a YAML schedule file.
func LoadSchedules(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tariff: read schedules: %w", err)
	}
	return ParseSchedules(data)
}

// ParseSchedules decodes YAML schedules and builds a validated table.
func ParseSchedules(data []byte) (*Table, error) {
	var file scheduleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("tariff: decode schedules: %w", err)
	}

	schedules := make(map[string]Schedule, len(file.Schedules))
	for class, fs := range file.Schedules {
		s, err := fs.toSchedule(class)
		if err != nil {
			return nil, err
		}
		schedules[class] = s
	}
	return NewTable(schedules)
}

func (fs fileSchedule) toSchedule(class string) (Schedule, error) {
	switch {
	case fs.Rate != nil && len(fs.Bands) > 0:
		return nil, scheduleErrorf(class, "set either rate or bands, not both")
	case fs.Rate != nil:
		rate, err := toRate(class, *fs.Rate)
		if err != nil {
			return nil, err
		}
		return NewFlat(rate), nil
	case len(fs.Bands) > 0:
		bands := make([]Band, 0, len(fs.Bands))
		for _, fb := range fs.Bands {
			rate, err := toRate(class, fb.Rate)
			if err != nil {
				return nil, err
			}
			b := Band{Lower: fb.Min, Upper: Unbounded, Rate: rate}
			if fb.Max != nil {
				if *fb.Max == Unbounded {
					return nil, scheduleErrorf(class, "band starting at %d: max must be omitted for the open band", fb.Min)
				}
				b.Upper = *fb.Max
			}
			bands = append(bands, b)
		}
		return NewTiered(bands...), nil
	default:
		return nil, scheduleErrorf(class, "missing rate or bands")
	}
}

func toRate(class string, v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, scheduleErrorf(class, "rate must be finite")
	}
	return decimal.NewFromFloat(v), nil
}
