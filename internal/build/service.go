package build

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	"git.home.luguber.info/inful/sitebuild/internal/bundle"
	"git.home.luguber.info/inful/sitebuild/internal/config"
	"git.home.luguber.info/inful/sitebuild/internal/eventstore"
	ferrors "git.home.luguber.info/inful/sitebuild/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuild/internal/logfields"
	"git.home.luguber.info/inful/sitebuild/internal/metrics"
	"git.home.luguber.info/inful/sitebuild/internal/notify"
	"git.home.luguber.info/inful/sitebuild/internal/plugin"
)

// Service is the interface watch mode and the CLI drive builds through.
type Service interface {
	Build(ctx context.Context) (*models.Report, error)
}

// Builder executes builds for one configuration.
type Builder struct {
	cfg       *config.Config
	registry  *plugin.Registry
	bundler   *bundle.Bundler
	recorder  metrics.Recorder
	store     eventstore.Store
	publisher notify.Publisher
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

var _ Service = (*Builder)(nil)

// NewBuilder creates a Builder that instantiates plugins from registry.
func NewBuilder(cfg *config.Config, registry *plugin.Registry) *Builder {
	return &Builder{
		cfg:       cfg,
		registry:  registry,
		bundler:   bundle.New(),
		recorder:  metrics.NoopRecorder{},
		publisher: notify.NoopPublisher{},
		logger:    slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// WithRecorder sets the metrics recorder.
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r != nil {
		b.recorder = r
	}
	return b
}

// WithEventStore enables build event recording.
func (b *Builder) WithEventStore(s eventstore.Store) *Builder {
	b.store = s
	return b
}

// WithPublisher sets the build completion publisher.
func (b *Builder) WithPublisher(p notify.Publisher) *Builder {
	if p != nil {
		b.publisher = p
	}
	return b
}

// WithLogger sets the logger handed to plugins through Options.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	if l != nil {
		b.logger = l
	}
	return b
}

// buildState is the mutable state threaded through the stages of one build.
type buildState struct {
	opts      *models.Options
	internals *models.Internals
	container *plugin.Container
	bundles   map[models.Target]*models.Bundle
	report    *models.Report
}

// Build runs one complete build. The report is returned even when the build fails.
func (b *Builder) Build(ctx context.Context) (*models.Report, error) {
	id := b.newID()
	opts := models.NewOptions(b.cfg, id, b.now())
	opts.Logger = b.logger.With(logfields.BuildID(id))

	bs := &buildState{
		opts:      opts,
		internals: models.NewInternals(),
		bundles:   make(map[models.Target]*models.Bundle),
		report:    models.NewReport(opts),
	}
	log := opts.Log()
	log.InfoContext(ctx, "Build started", logfields.Mode(opts.Mode.String()))
	b.recordEvent(ctx, bs, eventstore.TypeBuildStarted, eventstore.BuildStartedPayload{
		Mode:    opts.Mode.String(),
		Plugins: b.cfg.Build.Plugins,
	})

	err := b.runStages(ctx, bs, b.stages(opts))

	bs.report.Warnings = bs.internals.Warnings()
	bs.report.Commit = opts.Commit
	canceled := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
	bs.report.Finish(b.now(), err, canceled)

	b.recorder.ObserveBuildDuration(bs.report.Duration())
	b.recorder.IncBuildOutcome(string(bs.report.Outcome))
	b.complete(ctx, bs)

	if err != nil {
		log.ErrorContext(ctx, "Build failed",
			"outcome", bs.report.Outcome,
			logfields.DurationMS(msec(bs.report.Duration())),
			logfields.Error(err))
		return bs.report, classify(id, err)
	}
	log.InfoContext(ctx, "Build completed",
		"outcome", bs.report.Outcome,
		"warnings", len(bs.report.Warnings),
		logfields.DurationMS(msec(bs.report.Duration())))
	return bs.report, nil
}

// classify wraps a stage failure at the package boundary, keeping the
// category of the underlying cause when it has one.
func classify(buildID string, err error) error {
	category := ferrors.CategoryBuild
	var pe *plugin.PluginError
	switch {
	case ferrors.IsClassified(err):
		category = ferrors.GetCategory(err)
	case errors.As(err, &pe):
		category = ferrors.CategoryPlugin
	}
	builder := ferrors.WrapError(err, category, "build failed").WithContext("build_id", buildID)
	var se *models.StageError
	if errors.As(err, &se) {
		builder = builder.WithContext("stage", string(se.Stage))
		if se.Kind == models.StageErrorCanceled {
			builder = builder.WithSeverity(ferrors.SeverityWarning)
		}
	}
	return builder.Build()
}

func msec(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
