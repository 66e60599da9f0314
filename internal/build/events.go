package build

import (
	"context"

	"git.home.luguber.info/inful/sitebuild/internal/eventstore"
	"git.home.luguber.info/inful/sitebuild/internal/logfields"
	"git.home.luguber.info/inful/sitebuild/internal/notify"
)

// recordEvent appends an event when an event store is configured.
// Failures are logged; history never fails a build.
func (b *Builder) recordEvent(ctx context.Context, bs *buildState, eventType string, payload any) {
	if b.store == nil {
		return
	}
	if err := eventstore.AppendJSON(context.WithoutCancel(ctx), b.store, bs.opts.BuildID, eventType, payload); err != nil {
		bs.opts.Log().WarnContext(ctx, "Failed to record build event", "event", eventType, logfields.Error(err))
	}
}

// complete records the final event and publishes the completion notification.
func (b *Builder) complete(ctx context.Context, bs *buildState) {
	r := bs.report
	chunks := make(map[string]int, len(r.Chunks))
	for t, n := range r.Chunks {
		chunks[t.String()] = n
	}

	b.recordEvent(ctx, bs, eventstore.TypeBuildCompleted, eventstore.BuildCompletedPayload{
		Outcome:    string(r.Outcome),
		Mode:       r.Mode,
		Commit:     r.Commit,
		StartedAt:  r.Start,
		DurationMS: r.Duration().Milliseconds(),
		Chunks:     chunks,
		Warnings:   r.Warnings,
		Error:      r.Error,
	})

	evt := notify.BuildCompleted{
		BuildID:    r.BuildID,
		Outcome:    string(r.Outcome),
		Mode:       r.Mode,
		Commit:     r.Commit,
		StartedAt:  r.Start,
		FinishedAt: r.End,
		DurationMS: r.Duration().Milliseconds(),
		Chunks:     chunks,
		Warnings:   len(r.Warnings),
		Error:      r.Error,
	}
	if err := b.publisher.PublishBuildCompleted(context.WithoutCancel(ctx), evt); err != nil {
		bs.opts.Log().WarnContext(ctx, "Failed to publish build notification", logfields.Error(err))
	}
}
