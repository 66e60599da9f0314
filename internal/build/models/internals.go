package models

import (
	"maps"
	"slices"
	"sort"
	"sync"
)

// ActionAccept is the request encoding an action accepts.
type ActionAccept string

const (
	AcceptForm ActionAccept = "form"
	AcceptJSON ActionAccept = "json"
)

// ActionInput describes one input field of an action.
type ActionInput struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Required bool   `yaml:"required,omitempty" json:"required,omitempty"`
}

// ActionDef is a server action declared in the actions entry module.
type ActionDef struct {
	Name   string        `yaml:"name" json:"name"`
	Accept ActionAccept  `yaml:"accept" json:"accept"`
	Input  []ActionInput `yaml:"input,omitempty" json:"input,omitempty"`
}

// PageData describes a rendered page.
type PageData struct {
	Route       string `json:"route"`
	Title       string `json:"title,omitempty"`
	Source      string `json:"source"`
	FileName    string `json:"file"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Internals aggregates cross-plugin build state for one build.
//
// A single Internals value is shared by the orchestrator and every registered
// plugin. The plugin container runs hooks sequentially. The mutex only guards
// readers such as watch-mode status output.
type Internals struct {
	mu                   sync.RWMutex
	actionsEntryPoint    string
	middlewareEntryPoint string
	entryChunks          map[string]string
	pages                map[string]PageData
	actions              map[string]ActionDef
	warnings             []string
}

// NewInternals creates an empty aggregator.
func NewInternals() *Internals {
	return &Internals{
		entryChunks: make(map[string]string),
		pages:       make(map[string]PageData),
		actions:     make(map[string]ActionDef),
	}
}

// SetActionsEntryPoint records the emitted actions chunk path.
func (in *Internals) SetActionsEntryPoint(path string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.actionsEntryPoint = path
}

// ActionsEntryPoint returns the emitted actions chunk path, or "" if none was emitted.
func (in *Internals) ActionsEntryPoint() string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.actionsEntryPoint
}

// SetMiddlewareEntryPoint records the emitted middleware chunk path.
func (in *Internals) SetMiddlewareEntryPoint(path string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.middlewareEntryPoint = path
}

// MiddlewareEntryPoint returns the emitted middleware chunk path.
func (in *Internals) MiddlewareEntryPoint() string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.middlewareEntryPoint
}

// RecordEntryChunk maps a source module to the chunk it was emitted as.
func (in *Internals) RecordEntryChunk(moduleID, fileName string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.entryChunks[moduleID] = fileName
}

// EntryChunk returns the chunk emitted for moduleID.
func (in *Internals) EntryChunk(moduleID string) (string, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	name, ok := in.entryChunks[moduleID]
	return name, ok
}

// AddPage records a rendered page, replacing any page with the same route.
func (in *Internals) AddPage(p PageData) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.pages[p.Route] = p
}

// Pages returns the rendered pages sorted by route.
func (in *Internals) Pages() []PageData {
	in.mu.RLock()
	defer in.mu.RUnlock()
	out := slices.Collect(maps.Values(in.pages))
	sort.Slice(out, func(i, j int) bool { return out[i].Route < out[j].Route })
	return out
}

// SetActions replaces the declared actions.
func (in *Internals) SetActions(defs []ActionDef) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.actions = make(map[string]ActionDef, len(defs))
	for _, d := range defs {
		in.actions[d.Name] = d
	}
}

// HasAction reports whether an action named name was declared.
func (in *Internals) HasAction(name string) bool {
	in.mu.RLock()
	defer in.mu.RUnlock()
	_, ok := in.actions[name]
	return ok
}

// Actions returns the declared actions sorted by name.
func (in *Internals) Actions() []ActionDef {
	in.mu.RLock()
	defer in.mu.RUnlock()
	out := slices.Collect(maps.Values(in.actions))
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AddWarning records a non-fatal build problem.
func (in *Internals) AddWarning(msg string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.warnings = append(in.warnings, msg)
}

// Warnings returns the recorded warnings in insertion order.
func (in *Internals) Warnings() []string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return slices.Clone(in.warnings)
}

// InternalsSnapshot is a point-in-time copy of Internals.
type InternalsSnapshot struct {
	ActionsEntryPoint    string      `json:"actions_entry_point,omitempty"`
	MiddlewareEntryPoint string      `json:"middleware_entry_point,omitempty"`
	Actions              []ActionDef `json:"actions"`
	Pages                []PageData  `json:"pages"`
	Warnings             []string    `json:"warnings,omitempty"`
}

// Snapshot copies the current state.
func (in *Internals) Snapshot() InternalsSnapshot {
	return InternalsSnapshot{
		ActionsEntryPoint:    in.ActionsEntryPoint(),
		MiddlewareEntryPoint: in.MiddlewareEntryPoint(),
		Actions:              in.Actions(),
		Pages:                in.Pages(),
		Warnings:             in.Warnings(),
	}
}
