// Package period implements the calendar period calculations for budgets.
package period

import (
	"time"

	"github.com/ledgerlight/backend/internal/types"
)

// Period is the cadence a budget covers.
type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
	Custom  Period = "custom"
)

// Bounds returns the date range a budget covers around the anchor date.
//
// For custom periods both explicit dates have to be set. If one of them is
// missing, the range degrades to the anchor's calendar month so that callers
// always get a usable range. Unknown periods degrade to monthly as well.
func Bounds(p Period, anchor types.Date, explicitStart, explicitEnd types.Date) (types.Date, types.Date) {
	switch p {
	case Weekly:
		start := startOfWeek(anchor)
		return start, start.AddDate(0, 0, 6)
	case Yearly:
		return types.NewDate(anchor.Year(), time.January, 1), types.NewDate(anchor.Year(), time.December, 31)
	case Custom:
		if !explicitStart.IsZero() && !explicitEnd.IsZero() {
			return explicitStart, explicitEnd
		}
	}

	return monthBounds(anchor)
}

// End returns the last day of the period that begins on start.
func End(start types.Date, p Period) types.Date {
	switch p {
	case Weekly:
		return start.AddDate(0, 0, 6)
	case Yearly:
		return types.NewDate(start.Year(), time.December, 31)
	}

	_, end := monthBounds(start)
	return end
}

// NextStart advances a period start by one period. Month and year arithmetic
// is calendar aware: the day of the month is preserved where it exists and
// clamped to the last day of the target month otherwise.
func NextStart(start types.Date, p Period) types.Date {
	switch p {
	case Weekly:
		return start.AddDate(0, 0, 7)
	case Yearly:
		return addMonthsClamped(start, 12)
	}

	return addMonthsClamped(start, 1)
}

// startOfWeek returns the Monday of the week containing d.
func startOfWeek(d types.Date) types.Date {
	offset := int(d.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}

	return d.AddDate(0, 0, -offset)
}

func monthBounds(d types.Date) (types.Date, types.Date) {
	start := types.NewDate(d.Year(), d.Month(), 1)
	return start, start.AddDate(0, 1, -1)
}

// addMonthsClamped adds months without the normalization of time.AddDate,
// e.g. one month after January 31 is the last day of February.
func addMonthsClamped(d types.Date, months int) types.Date {
	first := types.NewDate(d.Year(), d.Month(), 1).AddDate(0, months, 0)
	lastDay := first.AddDate(0, 1, -1).Day()

	day := d.Day()
	if day > lastDay {
		day = lastDay
	}

	return types.NewDate(first.Year(), first.Month(), day)
}

// AddMonths is the clamped month addition used by the recurrence schedules.
func AddMonths(d types.Date, months int) types.Date {
	return addMonthsClamped(d, months)
}
