package commands

import (
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"
	"text/tabwriter"

	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	"git.home.luguber.info/inful/sitebuild/internal/config"
	"git.home.luguber.info/inful/sitebuild/internal/plugin"
	"git.home.luguber.info/inful/sitebuild/internal/plugin/builtin"
)

// PluginsCmd implements the 'plugins' command.
type PluginsCmd struct{}

func (p *PluginsCmd) Run(_ *Global, root *CLI) error {
	reg, err := builtin.NewRegistry()
	if err != nil {
		return err
	}
	enabled := config.DefaultPlugins()
	if cfg, err := config.Load(root.Config); err == nil {
		enabled = cfg.Build.Plugins
	}
	return printPlugins(os.Stdout, reg, enabled)
}

// printPlugins describes every registered plugin. Factories are called with
// empty options; descriptor construction has no side effects.
func printPlugins(w io.Writer, reg *plugin.Registry, enabled []string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PLUGIN\tTARGETS\tHOOKS\tENABLED")
	for _, name := range reg.List() {
		factory, err := reg.Get(name)
		if err != nil {
			return err
		}
		desc := factory(&models.Options{}, models.NewInternals())

		targets := make([]string, 0, len(desc.Targets))
		for _, t := range desc.Targets {
			targets = append(targets, t.String())
		}
		hooks := make([]string, 0, len(desc.Hooks))
		for h := range desc.Hooks {
			hooks = append(hooks, h.String())
		}
		sort.Strings(hooks)

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n",
			name,
			strings.Join(targets, ","),
			strings.Join(hooks, ","),
			slices.Contains(enabled, name))
	}
	return tw.Flush()
}
