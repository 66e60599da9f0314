package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	"git.home.luguber.info/inful/sitebuild/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Mode    string `short:"m" help:"Override build.mode (static|server)"`
	Out     string `short:"o" help:"Override project.out_dir"`
	NoClean bool   `name:"no-clean" help:"Keep existing files in the output directory"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	if err := applyOverrides(cfg, b.Mode, b.Out); err != nil {
		return err
	}
	if b.NoClean {
		keep := false
		cfg.Build.Clean = &keep
	}

	res, err := newBuilder(g, cfg, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	defer res.Close()

	report, err := res.builder.Build(context.Background())
	if report != nil {
		printReport(os.Stdout, report)
	}
	return err
}

// printReport writes a human-readable build summary.
func printReport(w io.Writer, r *models.Report) {
	_, _ = fmt.Fprintf(w, "Build %s: %s in %s\n", r.BuildID, r.Outcome, r.Duration().Round(time.Millisecond))
	targets := make([]string, 0, len(r.Chunks))
	for t := range r.Chunks {
		targets = append(targets, t.String())
	}
	sort.Strings(targets)
	for _, t := range targets {
		_, _ = fmt.Fprintf(w, "  %s: %d chunks\n", t, r.Chunks[models.Target(t)])
	}
	for _, warning := range r.Warnings {
		_, _ = fmt.Fprintf(w, "  warning: %s\n", warning)
	}
}
