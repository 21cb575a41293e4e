package core

import (
	"time"

	"github.com/jinzhu/now"
)

// MonthRange returns the first and last instants (millisecond precision) of ref's month in loc.
func MonthRange(ref time.Time, loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.Local
	}
	n := now.With(ref.In(loc))
	start = n.BeginningOfMonth()
	end = n.EndOfMonth().Truncate(time.Millisecond)
	return start, end
}

// Day truncates t to midnight of its calendar day in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return now.With(t.In(loc)).BeginningOfDay()
}
