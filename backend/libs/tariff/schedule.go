// Package tariff prices electricity consumption against per-class rate schedules.
//
// A schedule is either flat (one rate for the whole quantity) or tiered (ordered,
// contiguous bands covering [1, ∞), the last one open-ended). Tables are validated
// once when they are built and are read-only afterwards, so an Engine can be shared
// freely between goroutines.
package tariff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Unbounded is the Upper value of the open-ended last band.
const Unbounded int64 = 0

// UnboundedSymbol renders the open upper edge in band labels.
const UnboundedSymbol = "∞"

// Kind identifies the schedule variant.
type Kind string

const (
	KindFlat   Kind = "flat"
	KindTiered Kind = "tiered"
)

// Band is one pricing tier. Lower and Upper are inclusive kW bounds.
type Band struct {
	Lower int64
	Upper int64
	Rate  decimal.Decimal
}

// IsUnbounded reports whether the band has no upper edge.
func (b Band) IsUnbounded() bool {
	return b.Upper == Unbounded
}

// Capacity returns upper-lower+1. Meaningless for the unbounded band.
func (b Band) Capacity() decimal.Decimal {
	return decimal.NewFromInt(b.Upper - b.Lower + 1)
}

// Label renders the band range, e.g. "1-200" or "2001-∞".
func (b Band) Label() string {
	if b.IsUnbounded() {
		return fmt.Sprintf("%d-%s", b.Lower, UnboundedSymbol)
	}
	return fmt.Sprintf("%d-%d", b.Lower, b.Upper)
}

// Schedule is implemented by Flat and Tiered only.
type Schedule interface {
	Kind() Kind
	validate(class string) error
}

// Flat charges one rate for the entire quantity.
type Flat struct {
	rate decimal.Decimal
}

// NewFlat returns a flat schedule.
func NewFlat(rate decimal.Decimal) Flat {
	return Flat{rate: rate}
}

func (Flat) Kind() Kind { return KindFlat }

// Rate returns the per-kW rate.
func (f Flat) Rate() decimal.Decimal {
	return f.rate
}

func (f Flat) validate(class string) error {
	if !f.rate.IsPositive() {
		return scheduleErrorf(class, "flat rate must be positive, got %s", f.rate)
	}
	return nil
}

// Tiered charges each band of the quantity at its own rate.
type Tiered struct {
	bands []Band
}

// NewTiered returns a tiered schedule over a private copy of bands.
func NewTiered(bands ...Band) Tiered {
	cp := make([]Band, len(bands))
	copy(cp, bands)
	return Tiered{bands: cp}
}

func (Tiered) Kind() Kind { return KindTiered }

// Bands returns a copy of the bands in ascending order.
func (t Tiered) Bands() []Band {
	cp := make([]Band, len(t.bands))
	copy(cp, t.bands)
	return cp
}

// validate checks that the bands partition [1, ∞) exactly.
func (t Tiered) validate(class string) error {
	if len(t.bands) == 0 {
		return scheduleErrorf(class, "tiered schedule has no bands")
	}
	if t.bands[0].Lower != 1 {
		return scheduleErrorf(class, "first band must start at 1, got %d", t.bands[0].Lower)
	}
	last := len(t.bands) - 1
	for i, b := range t.bands {
		if !b.Rate.IsPositive() {
			return scheduleErrorf(class, "band %s: rate must be positive, got %s", b.Label(), b.Rate)
		}
		if b.IsUnbounded() {
			if i != last {
				return scheduleErrorf(class, "unbounded band %s must be last", b.Label())
			}
			continue
		}
		if b.Upper < b.Lower {
			return scheduleErrorf(class, "band %d-%d: upper below lower", b.Lower, b.Upper)
		}
		if i == last {
			return scheduleErrorf(class, "last band %s must be unbounded", b.Label())
		}
		next := t.bands[i+1]
		switch {
		case next.Lower > b.Upper+1:
			return scheduleErrorf(class, "gap between %s and %s", b.Label(), next.Label())
		case next.Lower <= b.Upper:
			return scheduleErrorf(class, "%s overlaps %s", b.Label(), next.Label())
		}
	}
	return nil
}

// Table maps customer classes to validated schedules.
type Table struct {
	schedules map[string]Schedule
	classes   []string
}

// NewTable validates every schedule and returns an immutable table.
func NewTable(schedules map[string]Schedule) (*Table, error) {
	if len(schedules) == 0 {
		return nil, scheduleErrorf("", "no schedules defined")
	}

	t := &Table{
		schedules: make(map[string]Schedule, len(schedules)),
		classes:   make([]string, 0, len(schedules)),
	}
	for class, raw := range schedules {
		if strings.TrimSpace(class) == "" {
			return nil, scheduleErrorf("", "empty customer class")
		}
		s, err := normalize(class, raw)
		if err != nil {
			return nil, err
		}
		if err := s.validate(class); err != nil {
			return nil, err
		}
		t.schedules[class] = s
		t.classes = append(t.classes, class)
	}
	sort.Strings(t.classes)
	return t, nil
}

// normalize stores every schedule as a Flat or Tiered value with private bands.
func normalize(class string, s Schedule) (Schedule, error) {
	switch v := s.(type) {
	case nil:
		return nil, scheduleErrorf(class, "schedule is nil")
	case Flat:
		return v, nil
	case *Flat:
		if v == nil {
			return nil, scheduleErrorf(class, "schedule is nil")
		}
		return *v, nil
	case Tiered:
		return NewTiered(v.bands...), nil
	case *Tiered:
		if v == nil {
			return nil, scheduleErrorf(class, "schedule is nil")
		}
		return NewTiered(v.bands...), nil
	default:
		return nil, scheduleErrorf(class, "unsupported schedule %T", s)
	}
}

// Lookup returns the schedule for class.
func (t *Table) Lookup(class string) (Schedule, error) {
	s, ok := t.schedules[class]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
	return s, nil
}

// Classes returns the known classes, sorted.
func (t *Table) Classes() []string {
	cp := make([]string, len(t.classes))
	copy(cp, t.classes)
	return cp
}

// List returns a copy of the class -> schedule mapping.
func (t *Table) List() map[string]Schedule {
	out := make(map[string]Schedule, len(t.schedules))
	for class, s := range t.schedules {
		out[class] = s
	}
	return out
}
