package builtin

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	"git.home.luguber.info/inful/sitebuild/internal/bundle"
	"git.home.luguber.info/inful/sitebuild/internal/config"
	"git.home.luguber.info/inful/sitebuild/internal/plugin"
)

func testOpts(t *testing.T) *models.Options {
	t.Helper()
	root := t.TempDir()
	return &models.Options{
		BuildID:   "build-1",
		Mode:      config.ModeStatic,
		SrcDir:    filepath.Join(root, "src"),
		OutDir:    filepath.Join(root, "dist"),
		Commit:    "abc123",
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Logger:    slog.New(slog.DiscardHandler),
	}
}

func TestRegister(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	require.Equal(t, config.DefaultPlugins(), reg.List())

	opts := testOpts(t)
	internals := models.NewInternals()
	for _, name := range reg.List() {
		f, err := reg.Get(name)
		require.NoError(t, err)
		p := f(opts, internals)
		require.Equal(t, name, p.Name)
		require.NoError(t, p.Validate())
	}

	require.Error(t, Register(reg), "registering twice must fail")
}

func TestPluginMiddleware(t *testing.T) {
	opts := testOpts(t)
	entry := filepath.Join(opts.SrcDir, bundle.MiddlewareFile)
	require.NoError(t, os.MkdirAll(opts.SrcDir, 0o750))
	require.NoError(t, os.WriteFile(entry, []byte("sequence: []\n"), 0o600))
	internals := models.NewInternals()

	c := plugin.NewContainer(opts, internals)
	require.NoError(t, c.Register(PluginMiddleware(opts, internals)))
	subs, err := c.RunBeforeHook(context.Background(), models.TargetServer)
	require.NoError(t, err)
	require.Len(t, subs, 1)

	b := models.NewBundle(models.TargetServer)
	require.NoError(t, b.Add(&models.Chunk{FileName: "chunks/middleware_1234abcd.json", FacadeModuleID: entry, IsEntry: true}))

	ctx := context.Background()
	require.NoError(t, plugin.RunBuildStart(ctx, models.TargetServer, subs))
	require.NoError(t, plugin.RunWriteBundle(ctx, subs, b))
	require.Equal(t,
		filepath.Join(opts.OutDir, "server", "chunks", "middleware_1234abcd.json"),
		internals.MiddlewareEntryPoint())
}

func TestPluginPages(t *testing.T) {
	opts := testOpts(t)
	internals := models.NewInternals()
	p := PluginPages(opts, internals)
	before, ok := p.Before()
	require.True(t, ok)

	res, err := before(context.Background(), plugin.BeforeInput{Target: models.TargetClient})
	require.NoError(t, err)
	require.Equal(t, plugin.EnforceAfterUserPlugins, res.Enforce)

	b := models.NewBundle(models.TargetClient)
	require.NoError(t, b.Add(&models.Chunk{
		FileName:       "about/index.html",
		FacadeModuleID: "/src/pages/about.md",
		Meta: map[string]string{
			bundle.MetaKind:        bundle.KindPage,
			bundle.MetaRoute:       "/about/",
			bundle.MetaTitle:       "About",
			bundle.MetaFingerprint: "fp",
		},
	}))
	require.NoError(t, b.Add(&models.Chunk{FileName: "site.css", Type: models.ChunkTypeAsset}))

	require.NoError(t, plugin.RunGenerateBundle(context.Background(), []plugin.SubPlugin{res.SubPlugin}, b))
	require.Equal(t, []models.PageData{{
		Route:       "/about/",
		Title:       "About",
		Source:      "/src/pages/about.md",
		FileName:    "about/index.html",
		Fingerprint: "fp",
	}}, internals.Pages())
}

func TestPluginManifest(t *testing.T) {
	opts := testOpts(t)
	internals := models.NewInternals()
	internals.SetActions([]models.ActionDef{{Name: "subscribe", Accept: models.AcceptForm}})
	internals.SetActionsEntryPoint("/dist/server/chunks/index_00000000.json")

	server := models.NewBundle(models.TargetServer)
	require.NoError(t, server.Add(&models.Chunk{FileName: "chunks/index_00000000.json"}))

	post, ok := PluginManifest(opts, internals).Post()
	require.True(t, ok)
	require.NoError(t, post(context.Background(), plugin.PostInput{Server: server}))

	data, err := os.ReadFile(filepath.Join(opts.OutDir, "server", ManifestFile))
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	require.Equal(t, "build-1", m.BuildID)
	require.Equal(t, "static", m.Mode)
	require.Equal(t, "abc123", m.Commit)
	require.Equal(t, []string{"/_actions/subscribe"}, m.Routes)
	require.Equal(t, []string{"chunks/index_00000000.json"}, m.ServerChunks)
	require.Nil(t, m.ClientChunks)
	require.Equal(t, "/dist/server/chunks/index_00000000.json", m.ActionsEntryPoint)
}

func TestExtractActionRefs(t *testing.T) {
	page := []byte(`<html><body>
<form method="post" action="?_action=subscribe"><button formaction="/_actions/like">x</button></form>
<a href="/_actions/logout/">out</a>
<a href="/docs/">docs</a>
</body></html>`)

	refs, err := ExtractActionRefs(page)
	require.NoError(t, err)
	require.Equal(t, []ActionRef{
		{Tag: "form", Attr: "action", Action: "subscribe"},
		{Tag: "button", Attr: "formaction", Action: "like"},
		{Tag: "a", Attr: "href", Action: "logout"},
	}, refs)
}

func TestPluginFormActions_WarnsOnUnknownActions(t *testing.T) {
	opts := testOpts(t)
	internals := models.NewInternals()
	internals.SetActions([]models.ActionDef{{Name: "subscribe", Accept: models.AcceptForm}})

	client := models.NewBundle(models.TargetClient)
	require.NoError(t, client.Add(&models.Chunk{
		FileName: "index.html",
		Code:     []byte(`<form action="?_action=subscribe"></form><form action="?_action=missing"></form>`),
	}))
	require.NoError(t, client.Add(&models.Chunk{
		FileName: "raw.html",
		Type:     models.ChunkTypeAsset,
		Code:     []byte(`<form action="?_action=ignored"></form>`),
	}))

	post, ok := PluginFormActions(opts, internals).Post()
	require.True(t, ok)
	require.NoError(t, post(context.Background(), plugin.PostInput{Client: client}))

	warnings := internals.Warnings()
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0], `unknown action "missing"`)
}

func TestPluginFormActions_ServerModeIsNoop(t *testing.T) {
	opts := testOpts(t)
	internals := models.NewInternals()
	post, _ := PluginFormActions(opts, internals).Post()

	require.NoError(t, post(context.Background(), plugin.PostInput{}))
	require.Empty(t, internals.Warnings())
}
