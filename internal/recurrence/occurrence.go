// Package recurrence generates the concrete records recurring templates are
// due for: ledger transactions, budget periods and follow-up invoices.
package recurrence

import (
	"github.com/ledgerlight/backend/internal/period"
	"github.com/ledgerlight/backend/internal/types"
)

// Frequency is the cadence of a recurring template.
type Frequency string

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

// Occurrence returns the n-th schedule point of a template, counting from 0
// at the start date.
//
// Every occurrence is computed from the start date, not from its predecessor.
// This keeps a monthly schedule anchored to the start's day of the month:
// starting on January 31 the sequence is Jan 31, Feb 29 (or 28), Mar 31,
// and not Jan 31, Feb 29, Mar 29.
//
// An unknown frequency behaves as monthly so that a template with a bad
// frequency keeps producing occurrences instead of stalling the whole run.
func Occurrence(start types.Date, f Frequency, n int) types.Date {
	switch f {
	case Daily:
		return start.AddDate(0, 0, n)
	case Weekly:
		return start.AddDate(0, 0, 7*n)
	case Quarterly:
		return period.AddMonths(start, 3*n)
	case Yearly:
		return period.AddMonths(start, 12*n)
	}

	return period.AddMonths(start, n)
}

// DueOccurrences returns all schedule points of a template that are due but
// not yet materialized, in ascending order.
//
// The checkpoint is the last occurrence already processed; a zero checkpoint
// means none has been. Occurrences run up to and including the horizon, or up
// to the template's end date if that is earlier. A start date beyond the
// horizon yields an empty sequence.
func DueOccurrences(start types.Date, f Frequency, checkpoint, end, horizon types.Date) []types.Date {
	limit := horizon
	if !end.IsZero() && end.Before(horizon) {
		limit = end
	}

	var due []types.Date
	for n := 0; ; n++ {
		occurrence := Occurrence(start, f, n)
		if occurrence.After(limit) {
			break
		}

		if !checkpoint.IsZero() && !occurrence.After(checkpoint) {
			continue
		}

		due = append(due, occurrence)
	}

	return due
}
