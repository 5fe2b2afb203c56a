// Package api is a small read-only HTTP front-end over the ohours
// engine: POST /v1/parse normalizes and reports the required
// capabilities for an expression, POST /v1/eval additionally evaluates
// it against the configured collaborators. This is a demo surface, not
// part of the core engine (spec.md §1 excludes front-ends from the
// core).
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"ohours"
	"ohours/internal/config"
	appLog "ohours/internal/log"
	"ohours/internal/model"
)

// Server provides the demo HTTP API.
type Server struct {
	cfg             *config.Config
	holidayProvider ohours.HolidayProvider
	sunProvider     ohours.SunEventProvider
	router          chi.Router
}

// NewServer constructs a Server bound to cfg and its evaluator
// collaborators. Either provider may be nil when unconfigured.
func NewServer(cfg *config.Config, holidayProvider ohours.HolidayProvider, sunProvider ohours.SunEventProvider) *Server {
	s := &Server{cfg: cfg, holidayProvider: holidayProvider, sunProvider: sunProvider}
	s.router = s.newRouter()
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) newRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/parse", s.handleParse)
		r.Post("/eval", s.handleEval)
	})
	return r
}

// requestIDMiddleware assigns an X-Request-Id header, generating one
// with google/uuid when the caller didn't supply one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		appLog.Info("api request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", w.Header().Get("X-Request-Id"),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type parseRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	expr := ohours.Parse(req.Text)
	result := model.ParseResult{Canonical: expr.Normalized()}
	if err := expr.Error(); err != nil {
		result.Error = err.Error()
	} else {
		result.Capabilities = capabilityNames(expr.RequiredCapabilities())
	}
	writeJSON(w, http.StatusOK, result)
}

type evalRequest struct {
	Text    string    `json:"text"`
	Instant time.Time `json:"instant"`
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	var req evalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Instant.IsZero() {
		req.Instant = time.Now()
	}

	expr := ohours.Parse(req.Text)
	if err := expr.Error(); err != nil {
		writeJSON(w, http.StatusOK, model.EvalResult{Error: err.Error()})
		return
	}

	opts := s.evalOptions()
	ev, verr := expr.Evaluator(opts...)
	if verr != nil {
		writeJSON(w, http.StatusOK, model.EvalResult{Error: verr.Error()})
		return
	}

	current, err := ev.IntervalAt(req.Instant)
	if err != nil {
		writeJSON(w, http.StatusOK, model.EvalResult{Error: err.Error()})
		return
	}
	next, err := ev.NextInterval(req.Instant)
	if err != nil {
		writeJSON(w, http.StatusOK, model.EvalResult{Error: err.Error()})
		return
	}

	result := model.EvalResult{Current: intervalResult(current)}
	if next != nil {
		nr := intervalResult(*next)
		result.Next = &nr
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) evalOptions() []ohours.EvalOption {
	var opts []ohours.EvalOption
	if s.holidayProvider != nil && s.cfg.Region != "" {
		opts = append(opts, ohours.WithHolidayProvider(s.holidayProvider), ohours.WithRegion(s.cfg.Region))
	}
	if s.sunProvider != nil && s.cfg.Location != nil {
		opts = append(opts, ohours.WithSunEventProvider(s.sunProvider), ohours.WithLocation(s.cfg.Location.Lat, s.cfg.Location.Lon))
	}
	return opts
}

func intervalResult(iv ohours.Interval) model.IntervalResult {
	return model.IntervalResult{
		State:     iv.State.String(),
		Begin:     iv.Begin,
		End:       iv.End,
		OpenBegin: iv.OpenBegin,
		OpenEnd:   iv.OpenEnd,
		Comment:   iv.Comment,
	}
}

func capabilityNames(caps ohours.Capability) []string {
	var out []string
	if caps.Has(ohours.CapPublicHoliday) {
		out = append(out, "public_holiday")
	}
	if caps.Has(ohours.CapSchoolHoliday) {
		out = append(out, "school_holiday")
	}
	if caps.Has(ohours.CapLocation) {
		out = append(out, "location")
	}
	if caps.Has(ohours.CapNotImplemented) {
		out = append(out, "not_implemented")
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
