// Package metrics provides build metrics for sitebuild.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so callers never nil-check:
//
//	b := build.NewBuilder(cfg, reg) // records nothing
//	b.WithRecorder(metrics.NewPrometheusRecorder(promReg))
//
// PrometheusRecorder registers its collectors on the registry it is given;
// HTTPHandler serves that registry for scraping.
package metrics
