package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/sitebuild/internal/eventstore"
	"git.home.luguber.info/inful/sitebuild/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuild/internal/git"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int  `short:"n" help:"Number of builds to show" default:"10"`
	JSON  bool `help:"Print summaries as JSON"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	store, err := openEventStore(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.ConfigError("no event store configured (set eventstore.path)").Build()
	}
	defer func() { _ = store.Close() }()

	history, err := eventstore.History(context.Background(), store, h.Limit)
	if err != nil {
		return err
	}
	if h.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}
	return printHistory(os.Stdout, history)
}

func printHistory(w io.Writer, history []*eventstore.BuildSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "BUILD\tSTARTED\tSTATUS\tMODE\tCOMMIT\tDURATION\tWARNINGS")
	for _, s := range history {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			s.BuildID,
			s.StartedAt.Local().Format(time.DateTime),
			s.Status,
			s.Mode,
			git.Short(s.Commit),
			s.Duration.Round(time.Millisecond),
			len(s.Warnings))
	}
	return tw.Flush()
}
