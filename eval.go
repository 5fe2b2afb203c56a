package ohours

import "time"

// This file implements C7, the evaluator (spec.md §4.6). Per spec.md §9
// the day is treated as the natural unit of materialization: for each
// calendar day the rules are folded left to right into a day-local list
// of segments, then the caller's query is answered against that list (or
// against the concatenation of several days' lists for next_interval).

// Interval is a half-open [Begin, End) span of a single state, as
// returned by Evaluator.IntervalAt and Evaluator.NextInterval.
type Interval struct {
	State     State
	Begin     time.Time
	End       time.Time
	OpenBegin bool
	OpenEnd   bool
	Comment   string
}

// Contains reports whether t falls within the interval's half-open span.
func (iv Interval) Contains(t time.Time) bool {
	if !iv.OpenBegin && t.Before(iv.Begin) {
		return false
	}
	if !iv.OpenEnd && !t.Before(iv.End) {
		return false
	}
	return true
}

// Intersects reports whether iv and other share any instant.
func (iv Interval) Intersects(other Interval) bool {
	beginOK := iv.OpenBegin || other.OpenEnd || iv.Begin.Before(other.End)
	endOK := iv.OpenEnd || other.OpenBegin || other.Begin.Before(iv.End)
	return beginOK && endOK
}

// Less orders intervals by Begin; an open begin sorts before every
// bounded begin.
func (iv Interval) Less(other Interval) bool {
	if iv.OpenBegin != other.OpenBegin {
		return iv.OpenBegin
	}
	return iv.Begin.Before(other.Begin)
}

// EvalOption configures an Evaluator built by Expression.Evaluator.
type EvalOption func(*Evaluator)

// WithHolidayProvider supplies the collaborator that resolves public
// holidays; required for expressions that reference PH.
func WithHolidayProvider(p HolidayProvider) EvalOption {
	return func(ev *Evaluator) { ev.holidayProvider = p }
}

// WithSchoolHolidayProvider supplies the collaborator that resolves
// school-holiday ranges. Expressions referencing SH surface
// UnsupportedFeature regardless (spec.md §4.7); the option exists for
// forward compatibility.
func WithSchoolHolidayProvider(p SchoolHolidayProvider) EvalOption {
	return func(ev *Evaluator) { ev.schoolHolidayProvider = p }
}

// WithSunEventProvider supplies the collaborator that resolves
// sunrise/sunset/dawn/dusk wall-clock times.
func WithSunEventProvider(p SunEventProvider) EvalOption {
	return func(ev *Evaluator) { ev.sunProvider = p }
}

// WithRegion sets the region code passed to the holiday provider.
func WithRegion(region string) EvalOption {
	return func(ev *Evaluator) { ev.region = region }
}

// WithLocation sets the coordinates passed to the sun-event provider.
func WithLocation(lat, lon float64) EvalOption {
	return func(ev *Evaluator) { ev.lat, ev.lon, ev.hasLocation = lat, lon, true }
}

// Evaluator answers IntervalAt/NextInterval queries against a parsed
// Expression and a set of configured collaborators. It is not safe for
// concurrent use: every query reads and writes its internal day cache
// without locking, so concurrent callers need one Evaluator per goroutine
// (spec.md §5).
type Evaluator struct {
	expr *Expression

	holidayProvider       HolidayProvider
	schoolHolidayProvider SchoolHolidayProvider
	sunProvider           SunEventProvider
	region                string
	lat, lon              float64
	hasLocation           bool

	dayCache map[int64][]segment
}

// Evaluator builds an Evaluator for this expression, applying opts and
// running validation. A non-nil *Error means the expression cannot be
// evaluated with the given collaborators.
func (e *Expression) Evaluator(opts ...EvalOption) (*Evaluator, *Error) {
	if e.err != nil {
		return nil, e.err
	}
	ev := &Evaluator{expr: e, dayCache: make(map[int64][]segment)}
	for _, opt := range opts {
		opt(ev)
	}
	ctx := validationContext{
		hasHolidayProvider: ev.holidayProvider != nil && ev.region != "",
		hasLocationConfig:  ev.sunProvider != nil && ev.hasLocation,
	}
	if verr := e.validate(ctx); verr != nil {
		return nil, verr
	}
	return ev, nil
}

// segment is one piece of a day's materialized interval list. beginMin
// and endMin are minutes from local midnight, with
// 0 <= beginMin < endMin <= 1440.
type segment struct {
	beginMin, endMin int
	state            State
	comment          string
	touched          bool
	source           RuleKind
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

const minutesPerDay = 24 * 60

// IntervalAt returns the Interval covering dt.
func (ev *Evaluator) IntervalAt(dt time.Time) (Interval, *Error) {
	day := dateOnly(dt)
	segs, err := ev.materializeDay(day)
	if err != nil {
		return Interval{}, err
	}
	minute := dt.Hour()*60 + dt.Minute()
	for _, seg := range segs {
		if minute >= seg.beginMin && minute < seg.endMin {
			return segmentInterval(day, seg), nil
		}
	}
	// Segments always cover [0,1440); this is unreachable for a valid dt.
	return Interval{}, newError(MissingLocalTime, "no segment covers %v", dt)
}

func segmentInterval(day time.Time, seg segment) Interval {
	return Interval{
		State:   seg.state,
		Begin:   day.Add(time.Duration(seg.beginMin) * time.Minute),
		End:     day.Add(time.Duration(seg.endMin) * time.Minute),
		Comment: seg.comment,
	}
}

// maxNextIntervalHorizonDays bounds the forward walk performed by
// NextInterval for expressions whose state never changes (a bare "24/7
// open", or an open-ended year selector with nothing after it). Per
// spec.md §4.6 callers are expected to bound unbounded walks themselves;
// this is the engine's own backstop against never returning.
const maxNextIntervalHorizonDays = 3660

// NextInterval returns the earliest Interval strictly after dt whose
// state or comment differs from the Interval containing dt, or nil if
// none is found within the horizon. The returned Interval's End is carried
// past midnight for as long as the following days begin with the same
// state and comment.
func (ev *Evaluator) NextInterval(dt time.Time) (*Interval, *Error) {
	cur, err := ev.IntervalAt(dt)
	if err != nil {
		return nil, err
	}

	day := dateOnly(dt)
	for offset := 0; offset <= maxNextIntervalHorizonDays; offset++ {
		d := day.AddDate(0, 0, offset)
		segs, err := ev.materializeDay(d)
		if err != nil {
			return nil, err
		}
		for _, seg := range segs {
			iv := segmentInterval(d, seg)
			if !iv.End.After(dt) {
				continue
			}
			if !iv.Begin.After(dt) && offset == 0 {
				// still inside the starting interval
				continue
			}
			if seg.state != cur.State || seg.comment != cur.Comment {
				next := d.AddDate(0, 0, 1)
				for ext := offset + 1; ext <= maxNextIntervalHorizonDays && iv.End.Equal(next); ext++ {
					nsegs, err := ev.materializeDay(next)
					if err != nil {
						return nil, err
					}
					if nsegs[0].state != iv.State || nsegs[0].comment != iv.Comment {
						break
					}
					iv.End = segmentInterval(next, nsegs[0]).End
					next = next.AddDate(0, 0, 1)
				}
				return &iv, nil
			}
		}
	}
	return nil, nil
}

// materializeDay computes (and caches) the segment list for a calendar
// day by folding the expression's rules left to right, per spec.md
// §4.6's descriptive algorithm. It also absorbs the carry-in from the
// previous day's rules whose TimeSelector spilled past 24:00.
func (ev *Evaluator) materializeDay(day time.Time) ([]segment, *Error) {
	key := day.Unix()
	if cached, ok := ev.dayCache[key]; ok {
		return cached, nil
	}

	segs := []segment{{beginMin: 0, endMin: minutesPerDay, state: Closed, touched: false, source: Normal}}

	prevDay := day.AddDate(0, 0, -1)
	for _, r := range ev.expr.Rules {
		matched, err := ev.matchesDay(r, prevDay)
		if err != nil {
			return nil, err
		}
		if !matched && r.Kind != Fallback {
			continue
		}
		ranges, err := ev.timeRangesForDay(r, prevDay)
		if err != nil {
			return nil, err
		}
		for _, rg := range ranges {
			if rg.end <= minutesPerDay {
				continue
			}
			carryBegin := 0
			if rg.begin > minutesPerDay {
				carryBegin = rg.begin - minutesPerDay
			}
			carryEnd := rg.end - minutesPerDay
			segs = applyRange(segs, carryBegin, carryEnd, state(r), comment(r), r.Kind)
		}
	}

	for _, r := range ev.expr.Rules {
		matched, err := ev.matchesDay(r, day)
		if err != nil {
			return nil, err
		}
		if !matched && r.Kind != Fallback {
			continue
		}
		ranges, err := ev.timeRangesForDay(r, day)
		if err != nil {
			return nil, err
		}
		for _, rg := range ranges {
			begin := rg.begin
			end := rg.end
			if begin >= minutesPerDay {
				continue
			}
			if end > minutesPerDay {
				end = minutesPerDay
			}
			segs = applyRange(segs, begin, end, state(r), comment(r), r.Kind)
		}
	}

	segs = coalesce(segs)
	ev.dayCache[key] = segs
	return segs, nil
}

func state(r Rule) State {
	if r.HasState {
		return r.State
	}
	return Open
}

func comment(r Rule) string {
	if r.HasComment {
		return r.Comment
	}
	return ""
}

// applyRange folds one rule's [begin,end) contribution into segs per the
// rule-kind semantics of spec.md §4.6.
func applyRange(segs []segment, begin, end int, st State, cm string, kind RuleKind) []segment {
	if begin >= end {
		return segs
	}
	segs = splitAt(segs, begin)
	segs = splitAt(segs, end)

	for i := range segs {
		if segs[i].beginMin < begin || segs[i].endMin > end {
			continue
		}
		switch kind {
		case Normal:
			segs[i].state = st
			segs[i].comment = cm
			segs[i].touched = true
			segs[i].source = Normal
		case Additional:
			if !segs[i].touched || segs[i].source == Additional {
				newComment := cm
				if segs[i].touched && segs[i].comment != "" && cm != "" && segs[i].comment != cm {
					newComment = segs[i].comment + " / " + cm
				}
				segs[i].state = st
				segs[i].comment = newComment
				segs[i].touched = true
				segs[i].source = Additional
			}
		case Fallback:
			if !segs[i].touched {
				segs[i].state = st
				segs[i].comment = cm
				segs[i].touched = true
				segs[i].source = Fallback
			}
		}
	}
	return segs
}

// splitAt cuts any segment straddling point into two, leaving the
// overall list sorted and gap-free.
func splitAt(segs []segment, point int) []segment {
	if point <= 0 || point >= minutesPerDay {
		return segs
	}
	out := make([]segment, 0, len(segs)+1)
	for _, s := range segs {
		if point > s.beginMin && point < s.endMin {
			left := s
			left.endMin = point
			right := s
			right.beginMin = point
			out = append(out, left, right)
			continue
		}
		out = append(out, s)
	}
	return out
}

// coalesce merges adjacent segments sharing (state, comment).
func coalesce(segs []segment) []segment {
	if len(segs) == 0 {
		return segs
	}
	out := make([]segment, 0, len(segs))
	out = append(out, segs[0])
	for _, s := range segs[1:] {
		last := &out[len(out)-1]
		if last.endMin == s.beginMin && last.state == s.state && last.comment == s.comment {
			last.endMin = s.endMin
			continue
		}
		out = append(out, s)
	}
	return out
}

type minuteRange struct {
	begin, end int
}

// timeRangesForDay resolves a rule's TimeSelector into minute ranges for
// the given day, defaulting to the whole day when no TimeSelector is
// present. end may exceed 1440 to express wrapping into the next
// calendar day (spec.md §8 boundary behaviors).
func (ev *Evaluator) timeRangesForDay(r Rule, day time.Time) ([]minuteRange, *Error) {
	if r.Time == nil {
		return []minuteRange{{0, minutesPerDay}}, nil
	}
	var out []minuteRange
	for _, ts := range r.Time.Spans {
		begin, err := ev.resolveTime(ts.Begin, day)
		if err != nil {
			return nil, err
		}
		var end int
		switch {
		case ts.OpenEnd:
			end = minutesPerDay
		case ts.End != nil:
			end, err = ev.resolveTime(*ts.End, day)
			if err != nil {
				return nil, err
			}
			if end <= begin {
				end += minutesPerDay
			}
		default:
			// Bare point in time; validate() rejects this unless the
			// expression was built without validation. Treat as a
			// zero-width range so it contributes nothing.
			end = begin
		}
		out = append(out, minuteRange{begin, end})
	}
	return out, nil
}

func (ev *Evaluator) resolveTime(t Time, day time.Time) (int, *Error) {
	if t.Event == NoEvent {
		return t.Hour*60 + t.Minute, nil
	}
	if ev.sunProvider == nil {
		return 0, newError(MissingLocation, "sun event %s requires a configured location", t.Event)
	}
	wallClock, err := ev.sunProvider.SunEvent(t.Event, day, ev.lat, ev.lon)
	if err != nil {
		return 0, newError(MissingLocation, "sun event lookup failed: %v", err)
	}
	return wallClock.Hour()*60 + wallClock.Minute() + t.Offset, nil
}

// matchesDay is the conjunction of a rule's non-time selectors against a
// calendar day, per spec.md §4.6 step 2.
func (ev *Evaluator) matchesDay(r Rule, day time.Time) (bool, *Error) {
	if r.Is24_7 {
		return true, nil
	}
	if r.Year != nil && !yearSelectorMatches(r.Year, day.Year()) {
		return false, nil
	}
	if r.Monthday != nil && !monthdaySelectorMatches(r.Monthday, day) {
		return false, nil
	}
	if r.Week != nil && !weekSelectorMatches(r.Week, day) {
		return false, nil
	}
	if r.Weekday != nil {
		ok, err := ev.weekdaySelectorMatches(r.Weekday, day)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func yearSelectorMatches(sel *YearSelector, year int) bool {
	for _, y := range sel.Years {
		switch {
		case y.OpenEnded:
			if year >= y.Begin {
				return true
			}
		case !y.HasEnd:
			if year == y.Begin {
				return true
			}
		default:
			if year >= y.Begin && year <= y.End && (y.Interval == 0 || (year-y.Begin)%y.Interval == 0) {
				return true
			}
		}
	}
	return false
}

func weekSelectorMatches(sel *WeekSelector, day time.Time) bool {
	week := isoWeek(day)
	for _, w := range sel.Weeks {
		if week >= w.Begin && week <= w.End && (w.Interval == 0 || (week-w.Begin)%w.Interval == 0) {
			return true
		}
	}
	return false
}

func resolveDate(d Date, year int) time.Time {
	day := d.Day
	if !d.HasDay {
		day = 1
	}
	var base time.Time
	if d.Kind == EasterDate {
		base = easterSunday(year)
	} else {
		base = time.Date(year, time.Month(d.Month), day, 0, 0, 0, 0, time.UTC)
	}
	return base.AddDate(0, 0, d.OffsetDays)
}

func monthdaySelectorMatches(sel *MonthdaySelector, day time.Time) bool {
	probe := dateOnly(day)
	for _, r := range sel.Ranges {
		if monthdayRangeMatches(r, probe) {
			return true
		}
	}
	return false
}

func monthdayRangeMatches(r MonthdayRange, probe time.Time) bool {
	year := probe.Year()

	if r.WholeMonth {
		if r.Begin.HasYear && r.Begin.Year != year {
			return false
		}
		return int(probe.Month()) == r.Begin.Month
	}

	if r.End == nil {
		beginYear := year
		if r.Begin.HasYear {
			beginYear = r.Begin.Year
		}
		d := resolveDate(r.Begin, beginYear)
		return sameDate(d, probe)
	}

	// Try the range anchored at both the probe's year and the year before,
	// to catch ranges that wrap across a calendar year boundary (e.g.
	// "Dec 24-Jan 3").
	for _, startYear := range []int{year - 1, year} {
		beginYear := startYear
		if r.Begin.HasYear {
			beginYear = r.Begin.Year
		}
		begin := resolveDate(r.Begin, beginYear)

		endYear := beginYear
		if r.End.HasYear {
			endYear = r.End.Year
		} else if endBeforeBegin(r.Begin, *r.End) {
			endYear = beginYear + 1
		}
		end := resolveDate(*r.End, endYear)
		endExclusive := end.AddDate(0, 0, 1)

		if !probe.Before(begin) && probe.Before(endExclusive) {
			return true
		}
	}
	return false
}

// endBeforeBegin reports whether a range's end date, read as month/day in
// isolation, would precede its begin date within the same year -- the
// signal that the range actually wraps into the following year.
func endBeforeBegin(begin, end Date) bool {
	if begin.Kind == EasterDate || end.Kind == EasterDate {
		return false
	}
	if end.Month != begin.Month {
		return end.Month < begin.Month
	}
	return end.Day < begin.Day
}

func sameDate(a, b time.Time) bool {
	ya, ma, da := a.Date()
	yb, mb, db := b.Date()
	return ya == yb && ma == mb && da == db
}

func (ev *Evaluator) weekdaySelectorMatches(sel *WeekdaySelector, day time.Time) (bool, *Error) {
	wd := weekdayIndex(day.Weekday())
	probe := dateOnly(day)

	for _, wr := range sel.Days {
		if weekdayRangeCovers(wr, wd, probe) {
			return true, nil
		}
	}

	for _, hr := range sel.Holidays {
		switch hr.Kind {
		case PublicHoliday:
			if ev.holidayProvider == nil {
				continue
			}
			holidays, err := ev.holidayProvider.PublicHolidays(ev.region, probe.Year())
			if err != nil {
				return false, newError(MissingRegion, "holiday lookup failed: %v", err)
			}
			for _, h := range holidays {
				shifted := h.Date.AddDate(0, 0, hr.Offset)
				if sameDate(shifted, probe) {
					return true, nil
				}
			}
		case SchoolHoliday:
			// Reaching here means validate() was bypassed; treat as no
			// match rather than panicking.
			continue
		}
	}
	return false, nil
}

func weekdayRangeCovers(wr WeekdayRange, wd int, probe time.Time) bool {
	checkWd := wd
	shiftedProbe := probe
	if wr.Offset != 0 && len(wr.Nth) == 0 {
		shiftedProbe = probe.AddDate(0, 0, -wr.Offset)
		checkWd = weekdayIndex(shiftedProbe.Weekday())
	}

	if !weekdayInRange(wr, checkWd) {
		return false
	}

	if len(wr.Nth) == 0 {
		return true
	}

	// A day offset can push the nth-weekday anchor across a month
	// boundary in either direction, so the candidate month must be
	// searched alongside its neighbors.
	anchor := time.Date(probe.Year(), probe.Month(), 1, 0, 0, 0, 0, time.UTC)
	for _, monthOffset := range []int{-1, 0, 1} {
		candidateMonth := anchor.AddDate(0, monthOffset, 0)
		for _, n := range wr.Nth {
			nth := nthWeekdayOfMonth(candidateMonth.Year(), candidateMonth.Month(), checkWd, n)
			if nth.IsZero() {
				continue
			}
			if sameDate(nth.AddDate(0, 0, wr.Offset), probe) {
				return true
			}
		}
	}
	return false
}

func weekdayInRange(wr WeekdayRange, wd int) bool {
	if !wr.Ranged {
		return wd == wr.BeginDay
	}
	if wr.BeginDay <= wr.EndDay {
		return wd >= wr.BeginDay && wd <= wr.EndDay
	}
	// Wrap through Sunday, e.g. Fr-Mo.
	return wd >= wr.BeginDay || wd <= wr.EndDay
}
