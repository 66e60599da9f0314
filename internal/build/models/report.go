package models

import (
	"time"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// Report summarizes one build.
type Report struct {
	BuildID        string                      `json:"build_id"`
	Mode           string                      `json:"mode"`
	Commit         string                      `json:"commit,omitempty"`
	Start          time.Time                   `json:"start"`
	End            time.Time                   `json:"end"`
	Outcome        BuildOutcome                `json:"outcome"`
	Plugins        []string                    `json:"plugins"`
	StageDurations map[StageName]time.Duration `json:"stage_durations"`
	Chunks         map[Target]int              `json:"chunks"`
	Warnings       []string                    `json:"warnings,omitempty"`
	Error          string                      `json:"error,omitempty"`
}

// NewReport starts a report for opts.
func NewReport(opts *Options) *Report {
	return &Report{
		BuildID:        opts.BuildID,
		Mode:           string(opts.Mode),
		Start:          opts.StartedAt,
		StageDurations: make(map[StageName]time.Duration),
		Chunks:         make(map[Target]int),
	}
}

// Duration returns the wall-clock build time.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start)
}

// Finish stamps the end time and derives the outcome from err and the warnings.
func (r *Report) Finish(end time.Time, err error, canceled bool) {
	r.End = end
	switch {
	case canceled:
		r.Outcome = OutcomeCanceled
	case err != nil:
		r.Outcome = OutcomeFailed
	case len(r.Warnings) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
	if err != nil {
		r.Error = err.Error()
	}
}
