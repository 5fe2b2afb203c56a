package ohours_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ohours"
)

// TestScenarios implements the scenario table from spec.md §8 verbatim:
// each row names an input, its canonical normalized form, an instant,
// and the expected state at that instant.
func TestScenarios(t *testing.T) {
	holidays := newFakeHolidayProvider()
	// 2024-01-01 is a Monday; used as the PH anchor for the scenarios
	// that reference PH below.
	holidays.add("TEST", 2024, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "New Year's Day")

	type scenario struct {
		name      string
		input     string
		canonical string
		instant   time.Time
		want      ohours.State
	}

	scenarios := []scenario{
		{
			name:      "weekday range with time span",
			input:     "mo-fr 10:00-20:00",
			canonical: "Mo-Fr 10:00-20:00",
			instant:   time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC), // Tuesday
			want:      ohours.Open,
		},
		{
			name:      "24/7 closed with comment",
			input:     `24/7 closed "always closed"`,
			canonical: `24/7 closed "always closed"`,
			instant:   time.Date(2024, 5, 17, 3, 0, 0, 0, time.UTC),
			want:      ohours.Closed,
		},
		{
			name:      "multi-rule with PH off",
			input:     `Mo-Fr 08:00-12:00,13:00-17:30; Sa 08:00-12:00; PH off`,
			canonical: `Mo-Fr 08:00-12:00,13:00-17:30; Sa 08:00-12:00; PH off`,
			instant:   time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), // Monday, PH
			want:      ohours.Closed,
		},
		{
			name:      "fixed date range off",
			input:     "2020 Dec 24-26 off",
			canonical: "2020 Dec 24-26 off",
			instant:   time.Date(2020, 12, 25, 12, 0, 0, 0, time.UTC),
			want:      ohours.Closed,
		},
		{
			name:      "weekday override",
			input:     "Mo-Sa 10:00-20:00; Tu off",
			canonical: "Mo-Sa 10:00-20:00; Tu off",
			instant:   time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC), // Tuesday
			want:      ohours.Closed,
		},
		{
			name:      "fallback on holiday",
			input:     "PH off || open",
			canonical: "PH off || open",
			instant:   time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), // PH
			want:      ohours.Closed,
		},
		{
			name:      "fallback on non-holiday",
			input:     "PH off || open",
			canonical: "PH off || open",
			instant:   time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), // not PH
			want:      ohours.Open,
		},
		{
			name:      "hour-marker preconditioning",
			input:     "9h00-12h00,14:00-17:00",
			canonical: "09:00-12:00,14:00-17:00",
			instant:   time.Date(2024, 1, 2, 13, 0, 0, 0, time.UTC),
			want:      ohours.Closed,
		},
	}

	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			expr := ohours.Parse(sc.input)
			require.Nil(t, expr.Error(), "unexpected parse error for %q", sc.input)
			require.Equal(t, sc.canonical, expr.Normalized())

			ev, everr := expr.Evaluator(
				ohours.WithHolidayProvider(holidays),
				ohours.WithRegion("TEST"),
			)
			require.Nil(t, everr)

			iv, ierr := ev.IntervalAt(sc.instant)
			require.Nil(t, ierr)
			require.Equal(t, sc.want, iv.State)
		})
	}
}

// TestScenarioMissingLocation covers the eighth scenario row, which
// asserts a validation error rather than a state.
func TestScenarioMissingLocation(t *testing.T) {
	expr := ohours.Parse("sunrise-sunset")
	require.Nil(t, expr.Error())
	require.Equal(t, "sunrise-sunset", expr.Normalized())

	_, everr := expr.Evaluator()
	require.NotNil(t, everr)
	require.Equal(t, ohours.MissingLocation, everr.Code)
}

// TestNegativeScenarios covers spec.md §8's negative-scenario table: each
// of these must surface SyntaxError (or, for "SH off", UnsupportedFeature).
func TestNegativeScenarios(t *testing.T) {
	syntaxErrors := []string{
		"23/7",
		"2020-2000",
		"Su[0]",
		"49:00",
		"Mo[6]",
	}
	for _, input := range syntaxErrors {
		t.Run(input, func(t *testing.T) {
			expr := ohours.Parse(input)
			require.NotNil(t, expr.Error(), "expected an error for %q", input)
			require.Equal(t, ohours.SyntaxError, expr.Error().Code)
		})
	}

	t.Run("SH off", func(t *testing.T) {
		expr := ohours.Parse("SH off")
		require.Nil(t, expr.Error())
		_, everr := expr.Evaluator()
		require.NotNil(t, everr)
		require.Equal(t, ohours.UnsupportedFeature, everr.Code)
	})
}
