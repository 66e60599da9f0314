package builtin

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitebuild/internal/actionsbuild"
	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	"git.home.luguber.info/inful/sitebuild/internal/config"
	"git.home.luguber.info/inful/sitebuild/internal/logfields"
	"git.home.luguber.info/inful/sitebuild/internal/plugin"
)

// actionQueryParam selects an action from a form posting to the page itself.
const actionQueryParam = "_action"

// ActionRef is a reference to an action found in rendered HTML.
type ActionRef struct {
	Tag    string
	Attr   string
	Action string
}

// PluginFormActions warns about rendered pages that reference undefined actions.
func PluginFormActions(opts *models.Options, internals *models.Internals) plugin.BuildPlugin {
	return plugin.BuildPlugin{
		Name:    config.PluginFormActions,
		Targets: []models.Target{models.TargetClient},
		Hooks: map[plugin.HookName]plugin.Hook{
			plugin.HookBuildPost: plugin.PostHook(func(ctx context.Context, in plugin.PostInput) error {
				checkFormActions(ctx, opts, internals, in.Client)
				return nil
			}),
		},
	}
}

func checkFormActions(ctx context.Context, opts *models.Options, internals *models.Internals, client *models.Bundle) {
	for _, c := range client.Chunks() {
		if c.Type == models.ChunkTypeAsset || !strings.HasSuffix(c.FileName, ".html") {
			continue
		}
		refs, err := ExtractActionRefs(c.Code)
		if err != nil {
			opts.Log().WarnContext(ctx, "Skipping unparsable page", logfields.Chunk(c.FileName), logfields.Error(err))
			continue
		}
		for _, ref := range refs {
			if internals.HasAction(ref.Action) {
				continue
			}
			msg := fmt.Sprintf("%s: <%s %s> references unknown action %q", c.FileName, ref.Tag, ref.Attr, ref.Action)
			internals.AddWarning(msg)
			opts.Log().WarnContext(ctx, "Unknown action reference",
				logfields.Chunk(c.FileName),
				"action", ref.Action)
		}
	}
}

// ExtractActionRefs finds form actions and links that target an action endpoint.
func ExtractActionRefs(page []byte) ([]ActionRef, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}

	var refs []ActionRef
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range []string{"action", "formaction", "href"} {
				if name := actionFromURL(getAttr(n, attr)); name != "" {
					refs = append(refs, ActionRef{Tag: n.Data, Attr: attr, Action: name})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs, nil
}

// actionFromURL returns the action named by raw, or "".
func actionFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if name := u.Query().Get(actionQueryParam); name != "" {
		return name
	}
	if rest, ok := strings.CutPrefix(u.Path, actionsbuild.RoutePrefix); ok {
		name, _, _ := strings.Cut(rest, "/")
		return name
	}
	return ""
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
