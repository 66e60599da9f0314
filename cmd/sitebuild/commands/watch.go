package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	"git.home.luguber.info/inful/sitebuild/internal/logfields"
	"git.home.luguber.info/inful/sitebuild/internal/metrics"
	"git.home.luguber.info/inful/sitebuild/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Mode        string        `short:"m" help:"Override build.mode (static|server)"`
	Interval    time.Duration `help:"Also rebuild on this interval (overrides watch.interval)"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (enables metrics)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	if w.Interval > 0 {
		cfg.Watch.Interval = w.Interval
	}
	if err := applyOverrides(cfg, w.Mode, ""); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	addr := w.MetricsAddr
	if addr == "" && cfg.Metrics.Enabled {
		addr = cfg.Metrics.Addr
	}
	if addr != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		srv := &http.Server{Addr: addr, Handler: metricsMux(reg), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				g.Logger.Error("Metrics server failed", "addr", addr, logfields.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		g.Logger.Info("Serving metrics", "addr", addr)
	}

	res, err := newBuilder(g, cfg, recorder)
	if err != nil {
		return err
	}
	defer res.Close()

	watcher, err := watch.New(res.builder, cfg)
	if err != nil {
		return err
	}
	watcher.WithLogger(g.Logger).OnBuild(func(reason string, report *models.Report, err error) {
		if report != nil {
			printReport(os.Stdout, report)
		}
		if err != nil {
			g.Logger.Error("Rebuild failed", "reason", reason, logfields.Error(err))
		}
	})
	return watcher.Run(ctx)
}

func metricsMux(reg *prom.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	return mux
}
