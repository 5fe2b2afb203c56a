package ohours

import (
	"regexp"
	"strconv"
	"strings"
)

// This file implements C1, the input preconditioner (spec.md §4.1). It
// runs once, before the lexer, and produces a cleaned ASCII-ish string
// plus a flag recording whether any tolerant rewrite fired. Keeping every
// bit of encoding/casing/translation tolerance here, rather than in the
// lexer or parser, is what keeps the grammar those two see narrow and
// recoverable (spec.md §9).

// punctuationFolds maps non-ASCII punctuation variants seen in the wild
// onto their canonical ASCII equivalents.
var punctuationFolds = map[rune]rune{
	'–': '-', // en dash
	'—': '-', // em dash
	'−': '-', // minus sign
	'ー': '-', // katakana-hiragana prolonged sound mark
	'〜': '-', // wave dash
	'－': '-', // fullwidth hyphen-minus
	'：': ':', // fullwidth colon
	'，': ',', // fullwidth comma
	'、': ',', // ideographic comma
	'；': ';', // fullwidth semicolon
	' ': ' ', // non-breaking space
}

var hourMarkerRe = regexp.MustCompile(`(\d{1,2})h(\d{2})?\b`)

var ampmColonRe = regexp.MustCompile(`(?i)(\d{1,2})[.:](\d{2})\s*(am|pm)\b`)

var ampmBareRe = regexp.MustCompile(`(?i)(\d{1,2})\s*(a|p)\.?m\.?\b`)

// weekdayTranslations maps lowercased foreign/partial weekday tokens to
// the canonical two-letter English token. translateWords looks up whole
// words only, so a longer key such as "tuesday" is never shadowed by a
// shorter one such as "tue".
var weekdayTranslations = map[string]string{
	// English, partial and full
	"mon": "Mo", "monday": "Mo",
	"tue": "Tu", "tues": "Tu", "tuesday": "Tu",
	"wed": "We", "wednesday": "We",
	"thu": "Th", "thur": "Th", "thurs": "Th", "thursday": "Th",
	"fri": "Fr", "friday": "Fr",
	"sat": "Sa", "saturday": "Sa",
	"sun": "Su", "sunday": "Su",
	// French
	"lundi": "Mo", "lun": "Mo",
	"mardi": "Tu", "mar": "Tu",
	"mercredi": "We", "mer": "We",
	"jeudi": "Th", "jeu": "Th",
	"vendredi": "Fr", "ven": "Fr",
	"samedi": "Sa", "sam": "Sa",
	"dimanche": "Su", "dim": "Su",
	// Spanish / Portuguese
	"lunes": "Mo", "segunda": "Mo",
	"martes": "Tu", "terca": "Tu",
	"miercoles": "We", "quarta": "We",
	"jueves": "Th", "quinta": "Th",
	"viernes": "Fr", "sexta": "Fr",
	"sabado": "Sa",
	"domingo": "Su",
	// Japanese kanji
	"月曜日": "Mo", "月曜": "Mo", "月": "Mo",
	"火曜日": "Tu", "火曜": "Tu", "火": "Tu",
	"水曜日": "We", "水曜": "We", "水": "We",
	"木曜日": "Th", "木曜": "Th", "木": "Th",
	"金曜日": "Fr", "金曜": "Fr", "金": "Fr",
	"土曜日": "Sa", "土曜": "Sa", "土": "Sa",
	"日曜日": "Su", "日曜": "Su",
}

var monthTranslations = map[string]string{
	"jan": "Jan", "january": "Jan", "janvier": "Jan", "enero": "Jan", "janeiro": "Jan",
	"feb": "Feb", "february": "Feb", "fevrier": "Feb", "febrero": "Feb", "fevereiro": "Feb",
	"mar": "Mar", "march": "Mar", "mars": "Mar", "marzo": "Mar",
	"apr": "Apr", "april": "Apr", "avril": "Apr", "abril": "Apr",
	"may": "May", "mai": "May", "mayo": "May", "maio": "May",
	"jun": "Jun", "june": "Jun", "juin": "Jun", "junio": "Jun", "junho": "Jun",
	"jul": "Jul", "july": "Jul", "juillet": "Jul", "julio": "Jul", "julho": "Jul",
	"aug": "Aug", "august": "Aug", "aout": "Aug", "agosto": "Aug",
	"sep": "Sep", "sept": "Sep", "september": "Sep", "septembre": "Sep", "septiembre": "Sep", "setembro": "Sep",
	"oct": "Oct", "october": "Oct", "octobre": "Oct", "octubre": "Oct", "outubro": "Oct",
	"nov": "Nov", "november": "Nov", "novembre": "Nov", "noviembre": "Nov", "novembro": "Nov",
	"dec": "Dec", "december": "Dec", "decembre": "Dec", "diciembre": "Dec", "dezembro": "Dec",
	"1月": "Jan", "2月": "Feb", "3月": "Mar", "4月": "Apr", "5月": "May", "6月": "Jun",
	"7月": "Jul", "8月": "Aug", "9月": "Sep", "10月": "Oct", "11月": "Nov", "12月": "Dec",
}

var rangeWords = []string{" to ", " à ", " et ", " and ", "〜", "～"}

var completeRuleBoundaryRe = regexp.MustCompile(`(\d{2}:\d{2})\s+((?:Mo|Tu|We|Th|Fr|Sa|Su)(?:-(?:Mo|Tu|We|Th|Fr|Sa|Su))?)\b`)

// preconditionResult is the output of precondition: the cleaned text and
// whether any recovery rewrite fired. The flag is only reported through
// Expression.Corrected; no later stage reads it, and it does not change
// which inputs are accepted or rejected.
type preconditionResult struct {
	text      string
	corrected bool
}

func precondition(input string) preconditionResult {
	corrected := false

	s := foldPunctuation(input)
	if s != input {
		corrected = true
	}

	before := s
	s = collapseWhitespace(s)
	s = rewriteHourMarkers(s)
	s = translateWords(s)
	s = rewriteRangeWords(s)
	s = inferMissingSeparators(s)
	s = strings.TrimRight(s, " \t\n;,")
	if s != before {
		corrected = true
	}

	return preconditionResult{text: s, corrected: corrected}
}

func foldPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if repl, ok := punctuationFolds[r]; ok {
			b.WriteRune(repl)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var wsRunRe = regexp.MustCompile(`[ \t]+`)

func collapseWhitespace(s string) string {
	// Collapse runs of horizontal whitespace outside quoted comments.
	var b strings.Builder
	inQuote := false
	runStart := -1
	flush := func(end int, src string) {
		if runStart < 0 {
			return
		}
		if inQuote {
			b.WriteString(src[runStart:end])
		} else {
			b.WriteByte(' ')
		}
		runStart = -1
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' {
			flush(i, s)
			inQuote = !inQuote
			b.WriteByte(c)
			continue
		}
		if !inQuote && (c == ' ' || c == '\t') {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if inQuote && (c == ' ' || c == '\t') {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		flush(i, s)
		b.WriteByte(c)
	}
	flush(len(s), s)
	return b.String()
}

func rewriteHourMarkers(s string) string {
	s = hourMarkerRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := hourMarkerRe.FindStringSubmatch(m)
		minute := "00"
		if sub[2] != "" {
			minute = sub[2]
		}
		hour := sub[1]
		if len(hour) == 1 {
			hour = "0" + hour
		}
		return hour + ":" + minute
	})

	s = ampmColonRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := ampmColonRe.FindStringSubmatch(m)
		return normalizeAMPM(sub[1], sub[2], sub[3])
	})

	s = ampmBareRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := ampmBareRe.FindStringSubmatch(m)
		period := "am"
		if strings.EqualFold(sub[2], "p") {
			period = "pm"
		}
		return normalizeAMPM(sub[1], "00", period)
	})

	return s
}

func normalizeAMPM(hourStr, minuteStr, period string) string {
	hour, _ := strconv.Atoi(hourStr)
	period = strings.ToLower(period)

	switch {
	case period == "am" && hour == 12:
		hour = 0
	case period == "pm" && hour == 12:
		hour = 12
	case period == "pm":
		hour += 12
	case period == "am" && hour == 0:
		// "0am" is not idiomatic input but treat as midnight.
		hour = 0
	}

	// "12am" as an end-of-day boundary reads as 24:00 when it is the end
	// of a range; callers writing a lone end time rely on the parser's
	// wrap handling, so we leave 00:00 here and let end<=begin wrapping
	// in the evaluator do the rest, except for the literal "12am" case
	// used as a range end, which the grammar disambiguates positionally
	// and which this function cannot see.
	return padTime(hour, minuteStr)
}

func padTime(hour int, minuteStr string) string {
	h := strconv.Itoa(hour)
	if len(h) == 1 {
		h = "0" + h
	}
	if minuteStr == "" {
		minuteStr = "00"
	}
	return h + ":" + minuteStr
}

// translateWords performs case-insensitive, whole-word replacement of
// multilingual weekday/month tokens with their canonical English form.
// The weekday table is consulted first, so a lowercase "mar" reads as the
// French Tuesday, while a word already spelled as a canonical month token
// ("Mar") is left as it is. It operates on whitespace/punctuation-delimited
// runs so it never touches the inside of quoted comments.
func translateWords(s string) string {
	return mapWords(s, func(word string) (string, bool) {
		for _, m := range monthNames[1:] {
			if word == m {
				return word, false
			}
		}
		lower := strings.ToLower(word)
		if repl, ok := weekdayTranslations[lower]; ok {
			return repl, true
		}
		if repl, ok := monthTranslations[lower]; ok {
			return repl, true
		}
		return word, false
	})
}

// mapWords walks s outside quoted spans, applying fn to each maximal run
// of word runes as isWordRune defines them (ASCII letters, or any rune
// above U+2E80 such as CJK ideographs; accented Latin letters and digits
// end a run); fn returns the replacement and whether it applied.
func mapWords(s string, fn func(string) (string, bool)) string {
	var b strings.Builder
	inQuote := false
	runes := []rune(s)
	i := 0
	for i < len(runes) {
		r := runes[i]
		if r == '"' {
			inQuote = !inQuote
			b.WriteRune(r)
			i++
			continue
		}
		if inQuote || !isWordRune(r) {
			b.WriteRune(r)
			i++
			continue
		}
		j := i
		for j < len(runes) && isWordRune(runes[j]) {
			j++
		}
		word := string(runes[i:j])
		if repl, ok := fn(word); ok {
			b.WriteString(repl)
		} else {
			b.WriteString(word)
		}
		i = j
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x2e80
}

func rewriteRangeWords(s string) string {
	for _, w := range rangeWords {
		for strings.Contains(s, w) {
			s = strings.Replace(s, w, "-", 1)
		}
	}
	return s
}

// inferMissingSeparators inserts a "; " between what look like two
// adjacent complete rules separated only by whitespace, e.g.
// "Mo-Fr 08:00-12:00 Sa 08:00-12:00" -> "...; Sa 08:00-12:00".
func inferMissingSeparators(s string) string {
	return completeRuleBoundaryRe.ReplaceAllString(s, "$1; $2")
}
