package metrics

import (
	"testing"
	"time"
)

func TestNoopRecorder(_ *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("prepare", time.Second)
	r.IncStageResult("prepare", ResultSuccess)
	r.ObserveHookDuration("actions", "build:before", time.Millisecond)
	r.IncHookResult("actions", "build:before", ResultFatal)
	r.ObserveBuildDuration(time.Second)
	r.IncBuildOutcome("success")
	r.SetChunkCount("server", 3)
}

func TestNilPrometheusRecorder(_ *testing.T) {
	var p *PrometheusRecorder
	p.ObserveStageDuration("prepare", time.Second)
	p.IncHookResult("actions", "build:before", ResultSuccess)
	p.SetChunkCount("client", 1)
}
