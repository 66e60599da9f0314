package commands

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	"git.home.luguber.info/inful/sitebuild/internal/config"
	"git.home.luguber.info/inful/sitebuild/internal/eventstore"
	"git.home.luguber.info/inful/sitebuild/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuild/internal/plugin/builtin"
)

func testGlobal() *Global {
	return &Global{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
}

// initProject writes a default configuration plus a one-page site.
func initProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sitebuild.yaml")
	require.NoError(t, (&InitCmd{}).Run(testGlobal(), &CLI{Config: cfgPath}))
	writeFile(t, filepath.Join(dir, "src", "actions", "index.yaml"), "actions:\n  - name: subscribe\n")
	writeFile(t, filepath.Join(dir, "src", "pages", "index.md"), "# Home\n\n<form action=\"?_action=subscribe\"></form>\n")
	return cfgPath
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		verbose bool
		env     string
		want    slog.Level
	}{
		{false, "", slog.LevelInfo},
		{true, "error", slog.LevelDebug},
		{false, "DEBUG", slog.LevelDebug},
		{false, " warn ", slog.LevelWarn},
		{false, "warning", slog.LevelWarn},
		{false, "error", slog.LevelError},
		{false, "bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.verbose, tt.env), "verbose=%v env=%q", tt.verbose, tt.env)
	}
}

func TestAfterApply_SetsLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	g := &Global{}
	require.NoError(t, (&CLI{Verbose: true}).AfterApply(g))
	require.NotNil(t, g.Logger)
	assert.True(t, g.Logger.Enabled(t.Context(), slog.LevelDebug))
}

func TestInit_RefusesOverwriteWithoutForce(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "sitebuild.yaml")
	root := &CLI{Config: cfgPath}
	require.NoError(t, (&InitCmd{}).Run(testGlobal(), root))

	err := (&InitCmd{}).Run(testGlobal(), root)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	require.NoError(t, (&InitCmd{Force: true}).Run(testGlobal(), root))
}

func TestLoadConfig_MissingFileIsConfigError(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestApplyOverrides(t *testing.T) {
	cfg, err := config.Parse([]byte("project:\n  root: /site\n"))
	require.NoError(t, err)

	require.NoError(t, applyOverrides(cfg, "SERVER", "out"))
	assert.Equal(t, config.ModeServer, cfg.Build.Mode)
	assert.True(t, filepath.IsAbs(cfg.Project.OutDir))

	err = applyOverrides(cfg, "hybrid", "")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestBuildThenHistory(t *testing.T) {
	cfgPath := initProject(t)
	root := &CLI{Config: cfgPath}

	require.NoError(t, (&BuildCmd{}).Run(testGlobal(), root))
	dir := filepath.Dir(cfgPath)
	assert.FileExists(t, filepath.Join(dir, "dist", "server", "manifest.json"))
	assert.FileExists(t, filepath.Join(dir, ".sitebuild", "events.db"))

	cfg, err := loadConfig(cfgPath)
	require.NoError(t, err)
	store, err := openEventStore(cfg)
	require.NoError(t, err)
	history, err := eventstore.History(t.Context(), store, 5)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.Len(t, history, 1)
	assert.Equal(t, string(models.OutcomeSuccess), history[0].Status)

	var buf bytes.Buffer
	require.NoError(t, printHistory(&buf, history))
	out := buf.String()
	assert.Contains(t, out, "BUILD")
	assert.Contains(t, out, history[0].BuildID)
	assert.Contains(t, out, "success")
}

func TestBuild_ServerModeOverride(t *testing.T) {
	cfgPath := initProject(t)
	out := filepath.Join(t.TempDir(), "site")

	require.NoError(t, (&BuildCmd{Mode: "server", Out: out}).Run(testGlobal(), &CLI{Config: cfgPath}))
	assert.DirExists(t, filepath.Join(out, "server"))
	assert.NoDirExists(t, filepath.Join(out, "client"))
}

func TestBuild_OutOverrideCannotTargetSources(t *testing.T) {
	cfgPath := initProject(t)
	dir := filepath.Dir(cfgPath)
	t.Chdir(dir)

	for _, out := range []string{"src", ".", filepath.Join(dir, "src", "pages")} {
		err := (&BuildCmd{Out: out}).Run(testGlobal(), &CLI{Config: cfgPath})
		require.Error(t, err, "out=%s", out)
		assert.True(t, errors.HasCategory(err, errors.CategoryConfig), "out=%s", out)
	}
	assert.FileExists(t, filepath.Join(dir, "src", "pages", "index.md"))
	assert.FileExists(t, cfgPath)
}

func TestHistory_RequiresEventStore(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sitebuild.yaml")
	writeFile(t, cfgPath, "project:\n  src_dir: src\n")

	err := (&HistoryCmd{Limit: 5}).Run(testGlobal(), &CLI{Config: cfgPath})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestPrintReport(t *testing.T) {
	r := &models.Report{
		BuildID:  "b1",
		Start:    time.Unix(0, 0),
		End:      time.Unix(2, 0),
		Outcome:  models.OutcomeWarning,
		Chunks:   map[models.Target]int{models.TargetServer: 2, models.TargetClient: 3},
		Warnings: []string{"contact.html: unknown action"},
	}
	var buf bytes.Buffer
	printReport(&buf, r)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Build b1: warning in 2s", lines[0])
	assert.Equal(t, "  client: 3 chunks", lines[1])
	assert.Equal(t, "  server: 2 chunks", lines[2])
	assert.Contains(t, lines[3], "warning: contact.html")
}

func TestPrintPlugins(t *testing.T) {
	reg, err := builtin.NewRegistry()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printPlugins(&buf, reg, []string{config.PluginActions}))
	out := buf.String()

	for _, name := range config.DefaultPlugins() {
		assert.Contains(t, out, name)
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] != config.PluginActions {
			continue
		}
		assert.Equal(t, []string{"actions", "server", "build:before", "true"}, fields)
	}
}
