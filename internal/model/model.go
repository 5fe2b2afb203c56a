// Package model holds the wire-format DTOs returned by the demo HTTP
// API (internal/api); they exist so internal/api never has to expose
// ohours.Expression/ohours.Interval directly as JSON, since those types
// carry fields (unexported caches, *Error) that aren't meant to cross
// the wire as-is.
package model

import "time"

// ParseResult is the JSON response for POST /v1/parse.
type ParseResult struct {
	Canonical    string   `json:"canonical"`
	Capabilities []string `json:"capabilities,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// IntervalResult is the JSON representation of an ohours.Interval.
type IntervalResult struct {
	State     string    `json:"state"`
	Begin     time.Time `json:"begin,omitempty"`
	End       time.Time `json:"end,omitempty"`
	OpenBegin bool      `json:"open_begin,omitempty"`
	OpenEnd   bool      `json:"open_end,omitempty"`
	Comment   string    `json:"comment,omitempty"`
}

// EvalResult is the JSON response for POST /v1/eval.
type EvalResult struct {
	Current IntervalResult  `json:"current"`
	Next    *IntervalResult `json:"next,omitempty"`
	Error   string          `json:"error,omitempty"`
}
