package ohours

// This file implements C6, the capability checker / validator (spec.md
// §4.5). RequiredCapabilities is a pure fold over the AST: it never
// re-walks selectors once computed, and validate() only interprets the
// resulting bitmask plus a couple of purely structural checks that
// aren't expressible as bits (IncompatibleMode cases).

// RequiredCapabilities returns the bitmask of collaborator capabilities
// this expression needs from its evaluator. The result is memoized.
func (e *Expression) RequiredCapabilities() Capability {
	if e.capsDone {
		return e.caps
	}
	var caps Capability
	for _, r := range e.Rules {
		caps |= ruleCapabilities(r)
	}
	e.caps = caps
	e.capsDone = true
	return caps
}

func ruleCapabilities(r Rule) Capability {
	var caps Capability

	if r.Weekday != nil {
		for _, h := range r.Weekday.Holidays {
			switch h.Kind {
			case PublicHoliday:
				caps |= CapPublicHoliday
			case SchoolHoliday:
				caps |= CapSchoolHoliday | CapNotImplemented
			}
		}
	}

	if r.Week != nil {
		for _, w := range r.Week.Weeks {
			if w.End < w.Begin {
				caps |= CapNotImplemented
			}
		}
	}

	if r.Year != nil {
		for _, y := range r.Year.Years {
			if y.OpenEnded && y.Interval > 0 {
				caps |= CapNotImplemented
			}
		}
	}

	if r.Time != nil {
		for _, ts := range r.Time.Spans {
			if eventRequiresLocation(ts.Begin) {
				caps |= CapLocation
			}
			if ts.End != nil && eventRequiresLocation(*ts.End) {
				caps |= CapLocation
			}
		}
	}

	return caps
}

func eventRequiresLocation(t Time) bool { return t.Event != NoEvent }

// validate checks the expression against a validation context built from
// the Evaluator's configured collaborators, returning the first
// applicable error per spec.md §4.5. A zero validationContext means "no
// collaborators configured"; every capability bit then fails its
// corresponding check.
type validationContext struct {
	hasHolidayProvider bool
	hasLocationConfig  bool
}

func (e *Expression) validate(ctx validationContext) *Error {
	caps := e.RequiredCapabilities()

	if caps.Has(CapNotImplemented) {
		return newError(UnsupportedFeature, "construct recognized but not implemented")
	}
	if caps.Has(CapPublicHoliday) && !ctx.hasHolidayProvider {
		return newError(MissingRegion, "expression references PH without a configured holiday provider")
	}
	if caps.Has(CapLocation) && !ctx.hasLocationConfig {
		return newError(MissingLocation, "expression references a sun event without a configured location")
	}

	for _, r := range e.Rules {
		if r.Time == nil {
			continue
		}
		for _, ts := range r.Time.Spans {
			if ts.End == nil && !ts.OpenEnd {
				return newError(IncompatibleMode, "bare point in time has no timespan context")
			}
			if ts.PeriodColon {
				return newError(IncompatibleMode, "period expressed in HH:MM form")
			}
		}
	}

	return nil
}
