package metrics

import "time"

// ResultLabel enumerates stage and hook result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for build, stage and plugin hook metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveHookDuration(plugin, hook string, d time.Duration)
	IncHookResult(plugin, hook string, result ResultLabel)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string) // success|warning|failed|canceled
	SetChunkCount(target string, n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)        {}
func (NoopRecorder) IncStageResult(string, ResultLabel)                {}
func (NoopRecorder) ObserveHookDuration(string, string, time.Duration) {}
func (NoopRecorder) IncHookResult(string, string, ResultLabel)         {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)                {}
func (NoopRecorder) IncBuildOutcome(string)                            {}
func (NoopRecorder) SetChunkCount(string, int)                         {}
