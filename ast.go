package ohours

// This file defines the AST produced by the parser. Per the flat-sequence
// guidance in spec.md §9, each selector owns an ordinary Go slice of
// ranges rather than a linked structure with "next" pointers — order is
// preserved for normalization but carries no semantic weight beyond that.

// Time is either a wall-clock time-of-day or a variable ("sun event")
// time, optionally offset by a signed number of minutes. Hour may exceed
// 24 (up to 48) to express wrapping into the following day.
type Time struct {
	Hour   int
	Minute int
	Event  EventKind
	Offset int // minutes, only meaningful when Event != NoEvent
}

func wallClock(hour, minute int) Time { return Time{Hour: hour, Minute: minute} }

func eventTime(kind EventKind, offset int) Time { return Time{Event: kind, Offset: offset} }

// Timespan is one range within a TimeSelector. End == nil denotes a bare
// point in time (valid only under the IncompatibleMode rules checked by
// the validator). Period is in minutes; zero means "no period".
type Timespan struct {
	Begin   Time
	End     *Time
	OpenEnd bool
	Period  int
	// PeriodColon records whether the period was written in "HH:MM" form
	// in the source text (as opposed to bare minutes); the validator
	// treats that spelling as IncompatibleMode per spec.md §4.5.
	PeriodColon bool
}

// TimeSelector is an ordered list of Timespans; an instant matches the
// selector if it falls in any of them.
type TimeSelector struct {
	Spans []Timespan
}

// WeekdayRange is one ordinary (non-holiday) member of a WeekdaySelector.
// BeginDay/EndDay are 0..6 (Mo..Su). A single day has EndDay == BeginDay
// and Ranged == false; EndDay < BeginDay denotes a wrap through Sunday.
type WeekdayRange struct {
	BeginDay int
	EndDay   int
	Ranged   bool
	Nth      []int // signed nth-occurrence-in-month positions; empty = every occurrence
	Offset   int   // signed day offset applied after nth-selection
}

// HolidayRange is a PH/SH tag, optionally offset by a signed day count.
type HolidayRange struct {
	Kind   HolidayKind
	Offset int
}

// WeekdaySelector holds the two parallel sub-sequences described in
// spec.md §3: ordinary weekday ranges and holiday tags. Both are
// evaluated as alternatives (union) within the selector.
type WeekdaySelector struct {
	Days     []WeekdayRange
	Holidays []HolidayRange
}

func (w *WeekdaySelector) empty() bool {
	return w == nil || (len(w.Days) == 0 && len(w.Holidays) == 0)
}

// WeekRange is an ISO-8601 week-number range, 1..53, with an optional
// "every nth week" interval. Wrap (begin > end) is rejected by the
// parser per spec.md §3.
type WeekRange struct {
	Begin, End int
	Interval   int // 0 = every week in range
}

// WeekSelector is an ordered list of WeekRanges.
type WeekSelector struct {
	Weeks []WeekRange
}

// DateKind distinguishes a fixed calendar date from a variable one
// (currently only Easter).
type DateKind int

const (
	FixedDate DateKind = iota
	EasterDate
)

// Date is one endpoint of a MonthdayRange: either a fixed (year/month/day,
// with year and day individually optional) or variable date, plus a
// signed day offset applied after resolution.
type Date struct {
	Kind       DateKind
	Year       int
	HasYear    bool
	Month      int // 1..12 for a FixedDate (also for a whole month); 0 for EasterDate
	Day        int
	HasDay     bool
	OffsetDays int
}

// MonthdayRange is one member of a MonthdaySelector: a whole month, a
// single date, a date range (Begin-End), or a variable date.
type MonthdayRange struct {
	WholeMonth bool
	Begin      Date
	End        *Date
}

// MonthdaySelector is an ordered list of MonthdayRanges.
type MonthdaySelector struct {
	Ranges []MonthdayRange
}

// YearRange is a single year, a closed [Begin,End], an open-ended
// "Begin+", or a closed/open range with a period.
type YearRange struct {
	Begin      int
	End        int
	HasEnd     bool
	OpenEnded  bool
	Interval   int // 0 = every year in range
}

// YearSelector is an ordered list of YearRanges.
type YearSelector struct {
	Years []YearRange
}

// Rule is a single clause of an Expression: "[selectors] [state]
// [comment]" or the "24/7" shorthand.
type Rule struct {
	Is24_7 bool

	Year     *YearSelector
	Monthday *MonthdaySelector
	Week     *WeekSelector
	Weekday  *WeekdaySelector
	Time     *TimeSelector

	HasState bool // false => default Open when any selector present
	State    State
	// StateText is the literal spelling the parser saw ("open", "closed",
	// "off", "unknown"). "closed" and "off" both map to State == Closed;
	// keeping the literal is what makes normalization idempotent for
	// both spellings instead of collapsing one into the other.
	StateText string

	HasComment bool
	Comment    string

	Kind RuleKind
}

// Expression is the immutable-after-build result of Parse. A SyntaxError
// expression has an empty or partial Rules slice and is not evaluable.
type Expression struct {
	Rules []Rule

	raw       string
	corrected bool
	err       *Error

	caps Capability // memoized RequiredCapabilities(); filled in by Parse
	capsDone bool
}
