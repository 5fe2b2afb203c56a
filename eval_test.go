package ohours_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ohours"
)

func mustEvaluator(t *testing.T, expr *ohours.Expression, opts ...ohours.EvalOption) *ohours.Evaluator {
	t.Helper()
	require.Nil(t, expr.Error())
	ev, err := expr.Evaluator(opts...)
	require.Nil(t, err)
	return ev
}

func TestEvalWrapPastMidnight(t *testing.T) {
	expr := ohours.Parse("Fr 20:00-02:00")
	ev := mustEvaluator(t, expr)

	// Friday 23:00 is within the Friday-rooted span.
	iv, err := ev.IntervalAt(time.Date(2024, 1, 5, 23, 0, 0, 0, time.UTC))
	require.Nil(t, err)
	require.Equal(t, ohours.Open, iv.State)

	// Saturday 01:00 is still within the span, carried over from Friday.
	iv, err = ev.IntervalAt(time.Date(2024, 1, 6, 1, 0, 0, 0, time.UTC))
	require.Nil(t, err)
	require.Equal(t, ohours.Open, iv.State)

	// Saturday 03:00 is past the wrap and outside any rule.
	iv, err = ev.IntervalAt(time.Date(2024, 1, 6, 3, 0, 0, 0, time.UTC))
	require.Nil(t, err)
	require.Equal(t, ohours.Closed, iv.State)
}

func TestEvalAdditionalRuleFillsUntouchedGap(t *testing.T) {
	// An Additional rule only fills day-portions no earlier Normal rule
	// already claimed; it never overlays a Normal-covered span.
	expr := ohours.Parse(`Mo 09:00-12:00 "shop", Mo 13:00-15:00 "delivery"`)
	ev := mustEvaluator(t, expr)

	iv, err := ev.IntervalAt(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	require.Nil(t, err)
	require.Equal(t, ohours.Open, iv.State)
	require.Equal(t, "shop", iv.Comment)

	iv, err = ev.IntervalAt(time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC))
	require.Nil(t, err)
	require.Equal(t, ohours.Open, iv.State)
	require.Equal(t, "delivery", iv.Comment)
}

func TestEvalAdditionalRulesMergeCommentsAmongThemselves(t *testing.T) {
	// Two Additional rules overlapping each other, on a span no Normal
	// rule touched, concatenate with " / " instead of one silently
	// winning.
	expr := ohours.Parse(`Mo 09:00-12:00 "shop", Mo 13:00-16:00 "late order", Mo 14:00-15:00 "pickup window"`)
	ev := mustEvaluator(t, expr)

	iv, err := ev.IntervalAt(time.Date(2024, 1, 1, 13, 30, 0, 0, time.UTC))
	require.Nil(t, err)
	require.Equal(t, "late order", iv.Comment)

	iv, err = ev.IntervalAt(time.Date(2024, 1, 1, 14, 30, 0, 0, time.UTC))
	require.Nil(t, err)
	require.Equal(t, ohours.Open, iv.State)
	require.Equal(t, "late order / pickup window", iv.Comment)
}

func TestEvalFallbackOnlyFillsUnmatchedState(t *testing.T) {
	// Confirms the spec.md §9 open-question resolution: a fallback rule
	// only fills day-portions no prior rule matched; it does not reopen
	// a day portion an earlier Normal rule already decided Closed.
	expr := ohours.Parse("Mo 09:00-12:00 off || open")
	ev := mustEvaluator(t, expr)

	// Within the Normal rule's range: stays Closed, fallback does not override it.
	iv, err := ev.IntervalAt(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	require.Nil(t, err)
	require.Equal(t, ohours.Closed, iv.State)

	// Outside the Normal rule's range: fallback fills with Open.
	iv, err = ev.IntervalAt(time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC))
	require.Nil(t, err)
	require.Equal(t, ohours.Open, iv.State)
}

func TestEvalNormalRuleOverwritesEarlierAdditional(t *testing.T) {
	expr := ohours.Parse("Mo 09:00-17:00 open, Mo 12:00-13:00 unknown; Mo 12:30-12:45 closed")
	ev := mustEvaluator(t, expr)

	iv, err := ev.IntervalAt(time.Date(2024, 1, 1, 12, 35, 0, 0, time.UTC))
	require.Nil(t, err)
	require.Equal(t, ohours.Closed, iv.State)
}

func TestEvalNextIntervalHorizonForPermanentlyOpen(t *testing.T) {
	expr := ohours.Parse("24/7")
	ev := mustEvaluator(t, expr)

	next, err := ev.NextInterval(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.Nil(t, err)
	require.Nil(t, next, "a 24/7-open expression has no future state change within the horizon")
}

func TestEvalSunEventOffset(t *testing.T) {
	sun := newFakeSunProvider()
	sun.set(ohours.Sunrise, 6, 30)
	sun.set(ohours.Sunset, 18, 0)

	expr := ohours.Parse("(sunrise+30)-(sunset-30)")
	ev := mustEvaluator(t, expr, ohours.WithSunEventProvider(sun), ohours.WithLocation(52.5, 13.4))

	// sunrise+30 = 07:00; 06:45 is before that.
	iv, err := ev.IntervalAt(time.Date(2024, 6, 1, 6, 45, 0, 0, time.UTC))
	require.Nil(t, err)
	require.Equal(t, ohours.Closed, iv.State)

	// 07:30 is within [07:00, 17:30).
	iv, err = ev.IntervalAt(time.Date(2024, 6, 1, 7, 30, 0, 0, time.UTC))
	require.Nil(t, err)
	require.Equal(t, ohours.Open, iv.State)
}

func TestEvalYearWrapAcrossNewYear(t *testing.T) {
	// A bare "off" rule has nothing to override but the engine's own
	// Closed seed, so pair it with a permanently-open baseline to make
	// the wrap-around window observable.
	expr := ohours.Parse("24/7; Dec 24-Jan 03 off")
	ev := mustEvaluator(t, expr)

	iv, err := ev.IntervalAt(time.Date(2023, 12, 26, 12, 0, 0, 0, time.UTC))
	require.Nil(t, err)
	require.Equal(t, ohours.Closed, iv.State)

	iv, err = ev.IntervalAt(time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC))
	require.Nil(t, err)
	require.Equal(t, ohours.Closed, iv.State)

	iv, err = ev.IntervalAt(time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC))
	require.Nil(t, err)
	require.Equal(t, ohours.Open, iv.State)
}
