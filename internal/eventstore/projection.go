package eventstore

import (
	"context"
	"time"
)

const (
	buildStatusRunning = "running"
)

// BuildSummary is a read model of one build reconstructed from its events.
type BuildSummary struct {
	BuildID     string                  `json:"build_id"`
	Status      string                  `json:"status"`
	Mode        string                  `json:"mode,omitempty"`
	Commit      string                  `json:"commit,omitempty"`
	Plugins     []string                `json:"plugins,omitempty"`
	StartedAt   time.Time               `json:"started_at"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
	Duration    time.Duration           `json:"duration,omitempty"`
	Stages      []StageCompletedPayload `json:"stages,omitempty"`
	Chunks      map[string]int          `json:"chunks,omitempty"`
	Warnings    []string                `json:"warnings,omitempty"`
	Error       string                  `json:"error,omitempty"`
}

// Summarize folds the events of a single build into a summary.
func Summarize(buildID string, events []Event) (*BuildSummary, error) {
	s := &BuildSummary{BuildID: buildID, Status: buildStatusRunning}
	for _, e := range events {
		switch e.Type() {
		case TypeBuildStarted:
			var p BuildStartedPayload
			if err := Decode(e, &p); err != nil {
				return nil, err
			}
			s.StartedAt = e.Timestamp()
			s.Mode = p.Mode
			s.Commit = p.Commit
			s.Plugins = p.Plugins
		case TypeStageCompleted:
			var p StageCompletedPayload
			if err := Decode(e, &p); err != nil {
				return nil, err
			}
			s.Stages = append(s.Stages, p)
		case TypeBuildCompleted:
			var p BuildCompletedPayload
			if err := Decode(e, &p); err != nil {
				return nil, err
			}
			ts := e.Timestamp()
			s.CompletedAt = &ts
			s.Status = p.Outcome
			s.Duration = time.Duration(p.DurationMS) * time.Millisecond
			s.Chunks = p.Chunks
			s.Warnings = p.Warnings
			s.Error = p.Error
			if s.StartedAt.IsZero() {
				s.StartedAt = p.StartedAt
			}
		}
	}
	return s, nil
}

// History returns summaries of the limit most recently started builds, newest first.
func History(ctx context.Context, store Store, limit int) ([]*BuildSummary, error) {
	started, err := store.Recent(ctx, TypeBuildStarted, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*BuildSummary, 0, len(started))
	for _, e := range started {
		events, err := store.GetByBuildID(ctx, e.BuildID())
		if err != nil {
			return nil, err
		}
		s, err := Summarize(e.BuildID(), events)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
