package ohours

import (
	"fmt"
	"strconv"
	"strings"
)

// This file implements C5, the normalizer (spec.md §4.4). It serializes
// the AST back to the canonical textual form used as the identity form;
// normalize(normalize(s)) == normalize(s) for every input that parses
// without a SyntaxError.

var weekdayNames = [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

var monthNames = [13]string{"", "Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var eventNames = map[EventKind]string{
	Sunrise: "sunrise",
	Sunset:  "sunset",
	Dawn:    "dawn",
	Dusk:    "dusk",
}

// Normalized renders the expression in canonical form. Called on a
// SyntaxError expression it returns the empty string.
func (e *Expression) Normalized() string {
	if e.err != nil {
		return ""
	}
	var b strings.Builder
	for i, r := range e.Rules {
		if i > 0 {
			switch r.Kind {
			case Additional:
				b.WriteString(", ")
			case Fallback:
				b.WriteString(" || ")
			default:
				b.WriteString("; ")
			}
		}
		writeRule(&b, r)
	}
	return b.String()
}

func writeRule(b *strings.Builder, r Rule) {
	wroteAny := false
	write := func(s string) {
		if wroteAny {
			b.WriteByte(' ')
		}
		b.WriteString(s)
		wroteAny = true
	}

	if r.Is24_7 {
		write("24/7")
	} else {
		if r.Year != nil {
			write(renderYearSelector(r.Year))
		}
		if r.Monthday != nil {
			write(renderMonthdaySelector(r.Monthday))
		}
		if r.Week != nil {
			write(renderWeekSelector(r.Week))
		}
		if r.Weekday != nil {
			write(renderWeekdaySelector(r.Weekday))
		}
		if r.Time != nil {
			write(renderTimeSelector(r.Time))
		}
	}

	// A rule with no selectors at all has nothing to carry its state
	// implicitly (unlike a selector-bearing rule, where an absent state
	// defaults to Open), so an explicit "open" must still be printed
	// there even though it would otherwise be elided as the default.
	if r.HasState && (r.State != Open || !wroteAny) {
		if r.StateText != "" {
			write(r.StateText)
		} else if r.State == Closed {
			write("off")
		} else {
			write(r.State.String())
		}
	}

	if r.HasComment {
		write(quoteComment(r.Comment))
	}

	if !wroteAny {
		b.WriteString("24/7")
	}
}

func quoteComment(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

func renderYearSelector(sel *YearSelector) string {
	parts := make([]string, len(sel.Years))
	for i, y := range sel.Years {
		parts[i] = renderYearRange(y)
	}
	return strings.Join(parts, ",")
}

func renderYearRange(y YearRange) string {
	if y.OpenEnded {
		return fmt.Sprintf("%d+", y.Begin)
	}
	if !y.HasEnd {
		return strconv.Itoa(y.Begin)
	}
	if y.Interval > 0 {
		return fmt.Sprintf("%d-%d/%d", y.Begin, y.End, y.Interval)
	}
	return fmt.Sprintf("%d-%d", y.Begin, y.End)
}

func renderMonthdaySelector(sel *MonthdaySelector) string {
	parts := make([]string, len(sel.Ranges))
	for i, r := range sel.Ranges {
		parts[i] = renderMonthdayRange(r)
	}
	return strings.Join(parts, ",")
}

func renderMonthdayRange(r MonthdayRange) string {
	begin := renderDate(r.Begin, true)
	if r.End == nil {
		return begin
	}
	end := renderDate(*r.End, r.End.Month != r.Begin.Month || r.Begin.Kind != FixedDate || r.End.Kind != FixedDate)
	return begin + "-" + end
}

// renderDate renders one Date endpoint. withMonth controls whether the
// month name is repeated (it is omitted for a same-month range end,
// e.g. "Dec 08-25").
func renderDate(d Date, withMonth bool) string {
	var b strings.Builder
	if d.HasYear {
		b.WriteString(strconv.Itoa(d.Year))
		b.WriteByte(' ')
	}
	switch d.Kind {
	case EasterDate:
		b.WriteString("easter")
	default:
		if withMonth {
			b.WriteString(monthNames[d.Month])
		}
		if d.HasDay {
			if withMonth {
				b.WriteByte(' ')
			}
			b.WriteString(fmt.Sprintf("%02d", d.Day))
		}
	}
	if d.OffsetDays != 0 {
		b.WriteString(renderSignedDayOffset(d.OffsetDays))
	}
	return b.String()
}

func renderSignedDayOffset(n int) string {
	if n > 0 {
		return fmt.Sprintf(" +%d day", n)
	}
	return fmt.Sprintf(" -%d day", -n)
}

func renderWeekSelector(sel *WeekSelector) string {
	parts := make([]string, len(sel.Weeks))
	for i, w := range sel.Weeks {
		parts[i] = renderWeekRange(w)
	}
	return "week " + strings.Join(parts, ",")
}

func renderWeekRange(w WeekRange) string {
	if w.Begin == w.End {
		return fmt.Sprintf("%02d", w.Begin)
	}
	if w.Interval > 0 {
		return fmt.Sprintf("%02d-%02d/%d", w.Begin, w.End, w.Interval)
	}
	return fmt.Sprintf("%02d-%02d", w.Begin, w.End)
}

func renderWeekdaySelector(sel *WeekdaySelector) string {
	var parts []string
	for _, wd := range sel.Days {
		parts = append(parts, renderWeekdayRange(wd))
	}
	for _, h := range sel.Holidays {
		parts = append(parts, renderHolidayRange(h))
	}
	return strings.Join(parts, ",")
}

func renderWeekdayRange(w WeekdayRange) string {
	var b strings.Builder
	b.WriteString(weekdayNames[w.BeginDay])
	if w.Ranged {
		b.WriteByte('-')
		b.WriteString(weekdayNames[w.EndDay])
	}
	if len(w.Nth) > 0 {
		b.WriteByte('[')
		for i, n := range w.Nth {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(n))
		}
		b.WriteByte(']')
	}
	if w.Offset != 0 {
		b.WriteString(renderSignedDayOffset(w.Offset))
	}
	return b.String()
}

func renderHolidayRange(h HolidayRange) string {
	tag := "PH"
	if h.Kind == SchoolHoliday {
		tag = "SH"
	}
	if h.Offset != 0 {
		return tag + renderSignedDayOffset(h.Offset)
	}
	return tag
}

func renderTimeSelector(sel *TimeSelector) string {
	parts := make([]string, len(sel.Spans))
	for i, ts := range sel.Spans {
		parts[i] = renderTimespan(ts)
	}
	return strings.Join(parts, ",")
}

func renderTimespan(ts Timespan) string {
	begin := renderTime(ts.Begin)
	if ts.OpenEnd {
		return begin + "+"
	}
	if ts.End == nil {
		return begin
	}
	s := begin + "-" + renderTime(*ts.End)
	if ts.Period > 0 {
		s += "/" + renderPeriod(ts.Period)
	}
	return s
}

func renderTime(t Time) string {
	if t.Event != NoEvent {
		name := eventNames[t.Event]
		if t.Offset == 0 {
			return name
		}
		sign := "+"
		off := t.Offset
		if off < 0 {
			sign = "-"
			off = -off
		}
		return fmt.Sprintf("(%s%s%d)", name, sign, off)
	}
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// renderPeriod renders a period in minutes as bare minutes when under an
// hour, else as zero-padded HH:MM, per spec.md §4.4.
func renderPeriod(minutes int) string {
	if minutes < 60 {
		return strconv.Itoa(minutes)
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
