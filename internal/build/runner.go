package build

import (
	"context"
	"errors"
	"time"

	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	"git.home.luguber.info/inful/sitebuild/internal/eventstore"
	"git.home.luguber.info/inful/sitebuild/internal/logfields"
	"git.home.luguber.info/inful/sitebuild/internal/metrics"
)

// runStages executes stages in order, recording timing and stopping on the first error.
func (b *Builder) runStages(ctx context.Context, bs *buildState, stages []stageDef) error {
	for _, st := range stages {
		log := bs.opts.Log().With(logfields.Stage(string(st.name)))

		select {
		case <-ctx.Done():
			se := &models.StageError{Kind: models.StageErrorCanceled, Stage: st.name, Err: ctx.Err()}
			b.recorder.IncStageResult(string(st.name), metrics.ResultCanceled)
			log.WarnContext(ctx, "Build canceled before stage")
			return se
		default:
		}

		log.DebugContext(ctx, "Stage started")
		t0 := time.Now()
		err := st.fn(ctx, bs)
		dur := time.Since(t0)

		bs.report.StageDurations[st.name] = dur
		b.recorder.ObserveStageDuration(string(st.name), dur)
		b.recorder.IncStageResult(string(st.name), resultLabel(err))

		payload := eventstore.StageCompletedPayload{Stage: string(st.name), DurationMS: dur.Milliseconds()}
		if err != nil {
			payload.Error = err.Error()
		}
		b.recordEvent(ctx, bs, eventstore.TypeStageCompleted, payload)

		if err != nil {
			kind := models.StageErrorFatal
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				kind = models.StageErrorCanceled
			}
			return &models.StageError{Kind: kind, Stage: st.name, Err: err}
		}
		log.DebugContext(ctx, "Stage completed", logfields.DurationMS(msec(dur)))
	}
	return nil
}

func resultLabel(err error) metrics.ResultLabel {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.ResultCanceled
	default:
		return metrics.ResultFatal
	}
}
