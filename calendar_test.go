package ohours

import (
	"testing"
	"time"
)

func TestEasterSundayKnownDates(t *testing.T) {
	cases := map[int]time.Time{
		2024: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		2025: time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC),
		2000: time.Date(2000, 4, 23, 0, 0, 0, 0, time.UTC),
	}
	for year, want := range cases {
		got := easterSunday(year)
		if !sameDate(got, want) {
			t.Errorf("easterSunday(%d) = %v, want %v", year, got, want)
		}
	}
}

func TestIsoWeek(t *testing.T) {
	// 2024-01-01 is a Monday in ISO week 1.
	if w := isoWeek(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)); w != 1 {
		t.Errorf("isoWeek(2024-01-01) = %d, want 1", w)
	}
	// 2020-12-31 falls in ISO week 53 of 2020.
	if w := isoWeek(time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)); w != 53 {
		t.Errorf("isoWeek(2020-12-31) = %d, want 53", w)
	}
}

func TestNthWeekdayOfMonth(t *testing.T) {
	// First Wednesday of January 2024 is 2024-01-03.
	got := nthWeekdayOfMonth(2024, time.January, 2, 1)
	want := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	if !sameDate(got, want) {
		t.Errorf("first Wednesday of Jan 2024 = %v, want %v", got, want)
	}

	// Last Sunday of January 2024 is 2024-01-28.
	got = nthWeekdayOfMonth(2024, time.January, 6, -1)
	want = time.Date(2024, 1, 28, 0, 0, 0, 0, time.UTC)
	if !sameDate(got, want) {
		t.Errorf("last Sunday of Jan 2024 = %v, want %v", got, want)
	}
}

func TestWeekdayIndex(t *testing.T) {
	// 2024-01-01 is a Monday -> index 0; 2024-01-07 is a Sunday -> index 6.
	if wi := weekdayIndex(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Weekday()); wi != 0 {
		t.Errorf("weekdayIndex(Monday) = %d, want 0", wi)
	}
	if wi := weekdayIndex(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC).Weekday()); wi != 6 {
		t.Errorf("weekdayIndex(Sunday) = %d, want 6", wi)
	}
}
