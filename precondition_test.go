package ohours

import "testing"

func TestPreconditionPunctuationFold(t *testing.T) {
	cases := map[string]string{
		"Mo–Fr 08:00-17:00":  "Mo-Fr 08:00-17:00",
		"Mo－Fr 08：00-17：00": "Mo-Fr 08:00-17:00",
		"Mo，Tu 08:00-12:00":  "Mo,Tu 08:00-12:00",
	}
	for in, want := range cases {
		got := precondition(in).text
		if got != want {
			t.Errorf("precondition(%q).text = %q, want %q", in, got, want)
		}
	}
}

func TestPreconditionHourMarkers(t *testing.T) {
	cases := map[string]string{
		"9h00-12h00":    "09:00-12:00",
		"9h-17h":        "09:00-17:00",
		"9:00am-5:00pm": "09:00-17:00",
		"9am-5pm":       "09:00-17:00",
		"12am-12pm":     "00:00-12:00",
	}
	for in, want := range cases {
		got := precondition(in).text
		if got != want {
			t.Errorf("precondition(%q).text = %q, want %q", in, got, want)
		}
	}
}

func TestPreconditionMultilingualWeekday(t *testing.T) {
	cases := map[string]string{
		"lundi-vendredi 08:00-17:00": "Mo-Fr 08:00-17:00",
		"lunes-viernes 08:00-17:00":  "Mo-Fr 08:00-17:00",
	}
	for in, want := range cases {
		got := precondition(in).text
		if got != want {
			t.Errorf("precondition(%q).text = %q, want %q", in, got, want)
		}
	}
}

func TestPreconditionRangeWords(t *testing.T) {
	got := precondition("Mo-Fr 9 to 17").text
	want := "Mo-Fr 9-17"
	if got != want {
		t.Errorf("precondition(...).text = %q, want %q", got, want)
	}
}

func TestPreconditionCorrectedFlag(t *testing.T) {
	if precondition("Mo-Fr 08:00-17:00").corrected {
		t.Error("clean canonical input should not report corrected")
	}
	if !precondition("Mo–Fr 08:00-17:00").corrected {
		t.Error("en-dash input should report corrected")
	}
}

func TestPreconditionPreservesQuotedComments(t *testing.T) {
	got := precondition(`Mo-Fr 08:00-17:00 "spaces  preserved"`).text
	want := `Mo-Fr 08:00-17:00 "spaces  preserved"`
	if got != want {
		t.Errorf("precondition(...).text = %q, want %q", got, want)
	}
}

func TestPreconditionTrailingSeparatorStripped(t *testing.T) {
	got := precondition("Mo-Fr 08:00-17:00;").text
	want := "Mo-Fr 08:00-17:00"
	if got != want {
		t.Errorf("precondition(...).text = %q, want %q", got, want)
	}
}
