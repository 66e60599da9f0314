package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Within reports whether p is dir or lies below it. Both paths should be
// absolute, or relative to the same base.
func Within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ProtectedPath is a path that must survive cleaning the output directory.
type ProtectedPath struct {
	Name string
	Path string
	// Strict also forbids out_dir from lying inside Path.
	Strict bool
}

// CheckOutDir returns an error when out equals or contains one of protected.
// Empty and in-memory paths are ignored; the rest are compared as absolute paths.
func CheckOutDir(out string, protected ...ProtectedPath) error {
	absOut, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("resolve out_dir: %w", err)
	}
	for _, p := range protected {
		if p.Path == "" || p.Path == ":memory:" {
			continue
		}
		abs, err := filepath.Abs(p.Path)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p.Name, err)
		}
		if Within(abs, absOut) {
			return fmt.Errorf("out_dir must differ from and not contain %s (%s)", p.Name, p.Path)
		}
		if p.Strict && Within(absOut, abs) {
			return fmt.Errorf("out_dir must not be inside %s (%s)", p.Name, p.Path)
		}
	}
	return nil
}

// protectedPaths lists the configured paths a clean of OutPath must not remove.
func (c *Config) protectedPaths() []ProtectedPath {
	return []ProtectedPath{
		{Name: "project root", Path: c.Project.Root},
		{Name: "src_dir", Path: c.SrcPath(), Strict: true},
		{Name: "public_dir", Path: c.PublicPath(), Strict: true},
		{Name: "eventstore.path", Path: c.EventStorePath()},
	}
}
