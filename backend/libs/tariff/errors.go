package tariff

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownClass is returned when a customer class has no schedule.
	ErrUnknownClass = errors.New("tariff: unknown customer class")
	// ErrInvalidQuantity is returned for non-positive or non-finite consumption.
	ErrInvalidQuantity = errors.New("tariff: quantity must be a finite positive number")
	// ErrInvalidAmount is returned for non-positive or non-finite money amounts.
	ErrInvalidAmount = errors.New("tariff: amount must be a finite positive number")
	// ErrInvalidSchedule marks configuration errors found while building a table.
	ErrInvalidSchedule = errors.New("tariff: invalid schedule")
)

// ScheduleError describes why a schedule was rejected at load time.
type ScheduleError struct {
	Class  string
	Reason string
}

func (e *ScheduleError) Error() string {
	if e.Class == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidSchedule, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", ErrInvalidSchedule, e.Class, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidSchedule).
func (e *ScheduleError) Unwrap() error {
	return ErrInvalidSchedule
}

func scheduleErrorf(class, format string, args ...interface{}) error {
	return &ScheduleError{Class: class, Reason: fmt.Sprintf(format, args...)}
}
