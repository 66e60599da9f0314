// Package watch rebuilds the site when its sources change and, optionally,
// on a fixed interval.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitebuild/internal/build"
	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	"git.home.luguber.info/inful/sitebuild/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuild/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuild/internal/logfields"
)

// Trigger reasons passed to the build callback.
const (
	ReasonInitial   = "initial"
	ReasonChange    = "change"
	ReasonScheduled = "scheduled"
)

// BuildFunc observes every finished build.
type BuildFunc func(reason string, report *models.Report, err error)

// Watcher serializes builds triggered by file changes and the scheduler.
type Watcher struct {
	svc      build.Service
	dirs     []string
	outDir   string
	debounce time.Duration
	interval time.Duration
	logger   *slog.Logger
	onBuild  BuildFunc

	fsw       *fsnotify.Watcher
	scheduler gocron.Scheduler
	requests  chan string
}

// New creates a watcher for the source and public directories of cfg.
func New(svc build.Service, cfg *config.Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "create file watcher").Build()
	}
	return &Watcher{
		svc:      svc,
		dirs:     []string{cfg.SrcPath(), cfg.PublicPath()},
		outDir:   cfg.OutPath(),
		debounce: cfg.Watch.Debounce,
		interval: cfg.Watch.Interval,
		logger:   slog.Default(),
		onBuild:  func(string, *models.Report, error) {},
		fsw:      fsw,
		requests: make(chan string, 1),
	}, nil
}

// WithLogger sets the logger.
func (w *Watcher) WithLogger(l *slog.Logger) *Watcher {
	if l != nil {
		w.logger = l
	}
	return w
}

// OnBuild registers a callback invoked after each build.
func (w *Watcher) OnBuild(fn BuildFunc) *Watcher {
	if fn != nil {
		w.onBuild = fn
	}
	return w
}

// Run builds once, then rebuilds on changes until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()

	for _, dir := range w.dirs {
		if err := w.addRecursive(dir); err != nil {
			return err
		}
	}
	if w.interval > 0 {
		if err := w.startScheduler(); err != nil {
			return err
		}
		defer func() {
			if err := w.scheduler.Shutdown(); err != nil {
				w.logger.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	w.request(ReasonInitial)
	go w.eventLoop(ctx)

	w.logger.Info("Watching for changes",
		"dirs", w.dirs,
		"debounce", w.debounce,
		"interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case reason := <-w.requests:
			report, err := w.svc.Build(ctx)
			if err != nil && ctx.Err() != nil {
				return nil
			}
			w.onBuild(reason, report, err)
		}
	}
}

// request queues a build. A pending request absorbs further ones.
func (w *Watcher) request(reason string) {
	select {
	case w.requests <- reason:
	default:
	}
}

func (w *Watcher) startScheduler() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "create scheduler").Build()
	}
	if _, err := s.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(w.request, ReasonScheduled),
		gocron.WithName("periodic-rebuild"),
	); err != nil {
		_ = s.Shutdown()
		return ferrors.WrapError(err, ferrors.CategoryInternal, "schedule periodic rebuild").Build()
	}
	s.Start()
	w.scheduler = s
	return nil
}

// eventLoop turns bursts of filesystem events into one debounced build request.
func (w *Watcher) eventLoop(ctx context.Context) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.logger.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			w.logger.Debug("Source change detected", logfields.Path(event.Name), "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() { w.request(ReasonChange) })
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if w.outDir != "" && config.Within(event.Name, w.outDir) {
		return false
	}
	base := filepath.Base(event.Name)
	return !strings.HasPrefix(base, ".") && !strings.HasSuffix(base, "~")
}

// addRecursive watches dir and every directory below it. A missing dir is skipped.
func (w *Watcher) addRecursive(dir string) error {
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.outDir != "" && config.Within(p, w.outDir) {
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return ferrors.WrapError(err, ferrors.CategoryFileSystem, "watch directory").
		WithContext("path", dir).
		Build()
}
