package domain

import (
	"errors"
	"fmt"
	"time"
)

// PeriodType labels the reporting period a calculation belongs to
type PeriodType string

const (
	PeriodTypeDaily     PeriodType = "DAILY"
	PeriodTypeMonthly   PeriodType = "MONTHLY"
	PeriodTypeQuarterly PeriodType = "QUARTERLY"
	PeriodTypeYearly    PeriodType = "YEARLY"
	PeriodTypeInception PeriodType = "INCEPTION"
	PeriodTypeCustom    PeriodType = "CUSTOM"
)

// IsValid reports whether the period type is one of the known labels
func (p PeriodType) IsValid() bool {
	switch p {
	case PeriodTypeDaily, PeriodTypeMonthly, PeriodTypeQuarterly,
		PeriodTypeYearly, PeriodTypeInception, PeriodTypeCustom:
		return true
	}
	return false
}

// PeriodWindow is the half-open measurement interval [Start, End)
type PeriodWindow struct {
	Start time.Time
	End   time.Time
}

// NewPeriodWindow builds a window and enforces Start < End
func NewPeriodWindow(start, end time.Time) (PeriodWindow, error) {
	w := PeriodWindow{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return PeriodWindow{}, err
	}
	return w, nil
}

// Validate ensures the window is not empty or inverted
func (w PeriodWindow) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return errors.New("period start and end must be set")
	}
	if !w.Start.Before(w.End) {
		return errors.New("period start must be before period end")
	}
	return nil
}

// Contains reports whether t falls inside [Start, End)
func (w PeriodWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Days returns the calendar length of the window in whole days
func (w PeriodWindow) Days() int {
	return DaysBetween(w.Start, w.End)
}

// DaysBetween counts calendar days from a to b, ignoring the time of day
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// DateKey normalizes a timestamp to its calendar day, used to align series
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ClosedWindow returns the most recent complete calendar period of the given type before asOf
// DAILY is the previous day, MONTHLY the previous month, QUARTERLY the previous
// quarter and YEARLY the previous year, all in UTC
func ClosedWindow(periodType PeriodType, asOf time.Time) (PeriodWindow, error) {
	y, m, d := asOf.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	switch periodType {
	case PeriodTypeDaily:
		return PeriodWindow{Start: today.AddDate(0, 0, -1), End: today}, nil
	case PeriodTypeMonthly:
		end := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		return PeriodWindow{Start: end.AddDate(0, -1, 0), End: end}, nil
	case PeriodTypeQuarterly:
		firstMonth := time.Month((int(m)-1)/3*3 + 1)
		end := time.Date(y, firstMonth, 1, 0, 0, 0, 0, time.UTC)
		return PeriodWindow{Start: end.AddDate(0, -3, 0), End: end}, nil
	case PeriodTypeYearly:
		end := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		return PeriodWindow{Start: end.AddDate(-1, 0, 0), End: end}, nil
	}
	return PeriodWindow{}, fmt.Errorf("period type %q has no calendar window", periodType)
}
