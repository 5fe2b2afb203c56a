package ohours

import (
	"time"

	"github.com/teambition/rrule-go"
)

// This file implements the calendar helpers described in spec.md §4.6
// and the collaborator interfaces of §4.7 (C8). The engine performs no
// time-zone conversion of its own: every time.Time it is handed or
// hands back is treated as already being in the caller's local
// wall-clock.

// Holiday is a single dated public or school holiday as reported by a
// HolidayProvider.
type Holiday struct {
	Date time.Time
	Name string
}

// DateRange is a closed [Begin, End] calendar-day range, as reported by
// a SchoolHolidayProvider.
type DateRange struct {
	Begin time.Time
	End   time.Time
}

// HolidayProvider resolves public holidays for a region and year. A nil
// HolidayProvider on the Evaluator means "no region configured" and an
// expression requiring CapPublicHoliday will surface MissingRegion.
type HolidayProvider interface {
	PublicHolidays(region string, year int) ([]Holiday, error)
}

// SchoolHolidayProvider resolves school-holiday date ranges for a region
// and year. Per spec.md §4.7 this is currently surfaced as
// UnsupportedFeature whenever an expression references SH, regardless of
// whether a provider is configured; the interface exists so a future
// implementation has somewhere to plug in.
type SchoolHolidayProvider interface {
	SchoolHolidays(region string, year int) ([]DateRange, error)
}

// SunEventProvider resolves the wall-clock time of a sun event for a
// given calendar date and coordinates.
type SunEventProvider interface {
	SunEvent(kind EventKind, date time.Time, lat, lon float64) (time.Time, error)
}

// easterSunday computes the date of Gregorian Easter Sunday for the
// given year using the Anonymous (Meeus/Jones/Butcher) algorithm.
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// isoWeek returns the ISO-8601 week number (1..53) of a date.
func isoWeek(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

var rruleWeekdays = [7]rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}

// nthWeekdayOfMonth returns the date of the n-th occurrence (1-indexed,
// or negative to count from the end) of weekday wd (0=Mo..6=Su) in the
// given month. n == 0 is invalid and is never produced by the parser
// (see parser.go's range check). Built on rrule-go's BYDAY/BYSETPOS
// monthly recurrence rather than hand-rolled date arithmetic.
func nthWeekdayOfMonth(year int, month time.Month, wd int, n int) time.Time {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.MONTHLY,
		Byweekday: []rrule.Weekday{rruleWeekdays[wd]},
		Bysetpos:  []int{n},
		Dtstart:   start,
		Count:     1,
	})
	if err != nil {
		return time.Time{}
	}
	occurrences := rule.All()
	if len(occurrences) == 0 {
		return time.Time{}
	}
	return occurrences[0]
}

// weekdayIndex converts a Go time.Weekday (Sunday=0) to the Mo=0..Su=6
// convention used throughout the AST.
func weekdayIndex(wd time.Weekday) int { return (int(wd) + 6) % 7 }
