package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyMode       = "mode"
	KeyTarget     = "target"
	KeyStage      = "stage"
	KeyHook       = "hook"
	KeyPlugin     = "plugin"
	KeySubPlugin  = "sub_plugin"
	KeyChunk      = "chunk"
	KeyChunks     = "chunks"
	KeyPath       = "path"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Mode(m string) slog.Attr         { return slog.String(KeyMode, m) }
func Target(t string) slog.Attr       { return slog.String(KeyTarget, t) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Hook(name string) slog.Attr      { return slog.String(KeyHook, name) }
func Plugin(name string) slog.Attr    { return slog.String(KeyPlugin, name) }
func SubPlugin(name string) slog.Attr { return slog.String(KeySubPlugin, name) }
func Chunk(fileName string) slog.Attr { return slog.String(KeyChunk, fileName) }
func Chunks(n int) slog.Attr          { return slog.Int(KeyChunks, n) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
