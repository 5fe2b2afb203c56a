// Package ohours parses, normalizes, validates, and evaluates OpenStreetMap
// opening_hours expressions: compact human-authored strings such as
// "Mo-Fr 08:00-12:00,13:00-17:30; Sa 08:00-12:00; PH off" describing when
// an entity is open, closed, or in an unknown state.
package ohours

// Parse lexes and parses text, returning an Expression that
// never panics on malformed input -- the failure, if any, is recorded on
// Expression.Error and inspected via that accessor rather than by a
// returned error, since a successfully-built-but-unevaluable Expression
// is still useful (its Normalized form and RequiredCapabilities remain
// meaningful for a SyntaxError-free-but-capability-missing case).
func Parse(text string) *Expression {
	pre := precondition(text)

	toks, lexErr := lex(pre.text)
	if lexErr {
		return &Expression{raw: text, corrected: pre.corrected, err: newError(SyntaxError, "invalid token in input"), capsDone: true}
	}

	rules, perr := parseTokens(toks)
	if perr != nil {
		return &Expression{raw: text, corrected: pre.corrected, err: perr, capsDone: true}
	}

	expr := &Expression{Rules: rules, raw: text, corrected: pre.corrected}
	// Fill the capability memo here so later reads never write to expr.
	expr.RequiredCapabilities()
	return expr
}

// Error returns the terminal error code for this expression, or nil if
// it parsed without one. Note that a nil Error does not by itself mean
// the expression is evaluable against arbitrary collaborators --
// MissingRegion/MissingLocation/UnsupportedFeature/IncompatibleMode are
// only discovered once Evaluator is called, per spec.md §4.5.
func (e *Expression) Error() *Error { return e.err }

// Raw returns the original, unmodified input text.
func (e *Expression) Raw() string { return e.raw }

// Corrected reports whether the input preconditioner applied any
// tolerant rewrite to produce a parseable token stream.
func (e *Expression) Corrected() bool { return e.corrected }
