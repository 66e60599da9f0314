// Package build runs the sitebuild pipeline.
//
// A Builder turns the loaded configuration into per-build Options and a fresh
// Internals, instantiates the configured plugins into a plugin.Container and
// then executes the stages in order:
//
//	prepare -> register -> build_server -> [build_client] -> post
//
// Each target stage runs the container's build:before hooks for that target,
// then drives the resulting sub-plugins around bundle generation and writing.
// The first failing stage aborts the build. Hook errors travel up unchanged
// until Build wraps them in a classified error.
package build
