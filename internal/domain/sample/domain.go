package sample

import (
	"encoding/json"
)

// Source identifies which backend produced a sample.
type Source string

const (
	// SourceRemote is the throttled test executed on the remote queue.
	SourceRemote Source = "remote"
	// SourceLocal is the unthrottled test executed on this machine.
	SourceLocal Source = "local"
)

// Sample is the output of one successful collection attempt. Report and
// Trace are kept as raw bytes so that what lands on disk is exactly what
// the backend produced. Log is only present for local samples.
type Sample struct {
	Report json.RawMessage
	Trace  []byte
	Log    []byte
}

// reportBody is the slice of the analysis report the validity contract
// looks at. Everything else in the report is opaque to the orchestrator.
type reportBody struct {
	RuntimeError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"runtimeError"`
	Audits map[string]struct {
		NumericValue *float64 `json:"numericValue"`
	} `json:"audits"`
}

const (
	auditInteractive = "interactive"
	auditFCP         = "first-contentful-paint"
)

// ValidateReport checks the report half of the validity contract: the
// report parses, carries no fatal runtime error, and has both timing
// metrics.
func ValidateReport(raw json.RawMessage) error {
	if len(raw) == 0 {
		return &ValidationError{Reason: "missing report"}
	}
	var body reportBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return &ValidationError{Reason: "malformed report: " + err.Error()}
	}
	if body.RuntimeError != nil && body.RuntimeError.Code != "" {
		return &ValidationError{Reason: "runtime error: " + body.RuntimeError.Code}
	}
	for _, id := range []string{auditInteractive, auditFCP} {
		a, ok := body.Audits[id]
		if !ok || a.NumericValue == nil {
			return &ValidationError{Reason: "missing metric: " + id}
		}
	}
	return nil
}

// Validate checks the full validity contract: valid report, trace
// present, and, for local samples, the devtools log present.
func (s *Sample) Validate(src Source) error {
	if s == nil {
		return &ValidationError{Reason: "missing sample"}
	}
	if err := ValidateReport(s.Report); err != nil {
		return err
	}
	if len(s.Trace) == 0 {
		return &ValidationError{Reason: "missing trace"}
	}
	if src == SourceLocal && len(s.Log) == 0 {
		return &ValidationError{Reason: "missing devtools log"}
	}
	return nil
}

// ResultSet is the accumulated saved samples for one URL. Remote and Local
// hold storage references (base file names) in collection order.
type ResultSet struct {
	URL    string   `json:"url"`
	Remote []string `json:"remote"`
	Local  []string `json:"local"`
}

// Complete reports whether both sources reached the per-source minimum
// of ceil(target/2) saved samples.
func (r *ResultSet) Complete(target int) bool {
	min := (target + 1) / 2
	return len(r.Remote) >= min && len(r.Local) >= min
}

// RunSummary is the persisted progress of a collection run: one ResultSet
// per completed URL, in completion order.
type RunSummary struct {
	Results []ResultSet `json:"results"`
}

// Has reports whether the summary already holds a ResultSet for url.
func (s *RunSummary) Has(url string) bool {
	for i := range s.Results {
		if s.Results[i].URL == url {
			return true
		}
	}
	return false
}

// Append records one completed URL.
func (s *RunSummary) Append(rs ResultSet) {
	s.Results = append(s.Results, rs)
}

// Filter drops entries whose URL is not in urls anymore and returns how
// many were dropped. Handles a shrunk or edited URL list across runs.
func (s *RunSummary) Filter(urls []string) int {
	keep := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		keep[u] = struct{}{}
	}
	kept := s.Results[:0]
	dropped := 0
	for _, rs := range s.Results {
		if _, ok := keep[rs.URL]; ok {
			kept = append(kept, rs)
		} else {
			dropped++
		}
	}
	s.Results = kept
	return dropped
}
