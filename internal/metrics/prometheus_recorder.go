package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "sitebuild"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	stageResults  *prom.CounterVec
	hookDuration  *prom.HistogramVec
	hookResults   *prom.CounterVec
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	chunks        *prom.GaugeVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		hookDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "plugin_hook_duration_seconds",
			Help:      "Duration of plugin lifecycle hooks",
			Buckets:   prom.DefBuckets,
		}, []string{"plugin", "hook"}),
		hookResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "plugin_hook_results_total",
			Help:      "Plugin hook invocations by result",
		}, []string{"plugin", "hook", "result"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		chunks: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "bundle_chunks",
			Help:      "Chunks emitted for each target by the last build",
		}, []string{"target"}),
	}
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.hookDuration, pr.hookResults,
		pr.buildDuration, pr.buildOutcome, pr.chunks)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveHookDuration(plugin, hook string, d time.Duration) {
	if p == nil {
		return
	}
	p.hookDuration.WithLabelValues(plugin, hook).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncHookResult(plugin, hook string, result ResultLabel) {
	if p == nil {
		return
	}
	p.hookResults.WithLabelValues(plugin, hook, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetChunkCount(target string, n int) {
	if p == nil {
		return
	}
	p.chunks.WithLabelValues(target).Set(float64(n))
}
