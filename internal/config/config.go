package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the sitebuild configuration file.
type Config struct {
	Project    ProjectConfig    `yaml:"project"`
	Build      BuildConfig      `yaml:"build"`
	Actions    ActionsConfig    `yaml:"actions"`
	EventStore EventStoreConfig `yaml:"eventstore"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Notify     NotifyConfig     `yaml:"notify"`
	Watch      WatchConfig      `yaml:"watch"`
}

// ProjectConfig locates the site sources and the output tree.
// Relative directories are resolved against Root; Root itself is resolved
// against the directory holding the configuration file.
type ProjectConfig struct {
	Root      string `yaml:"root"`
	SrcDir    string `yaml:"src_dir"`
	PublicDir string `yaml:"public_dir"`
	OutDir    string `yaml:"out_dir"`
}

// BuildConfig controls the build pipeline.
type BuildConfig struct {
	Mode    BuildMode `yaml:"mode"`
	Plugins []string  `yaml:"plugins,omitempty"`
	Clean   *bool     `yaml:"clean,omitempty"`
}

// ShouldClean reports whether the output directory is wiped before a build (default true).
func (b BuildConfig) ShouldClean() bool {
	return b.Clean == nil || *b.Clean
}

// ActionsConfig toggles the actions feature.
type ActionsConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// IsEnabled reports whether actions are built (default true).
func (a ActionsConfig) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// EventStoreConfig configures the build event history. An empty Path disables it.
type EventStoreConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr,omitempty"`
}

// NotifyConfig configures build completion notifications over NATS. An empty URL disables them.
type NotifyConfig struct {
	NATSURL string        `yaml:"nats_url,omitempty"`
	Subject string        `yaml:"subject,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// Retries is how many times a failed publish is retried with exponential backoff.
	Retries int `yaml:"retries,omitempty"`
	// RetryDelay is the first backoff delay. Delays grow up to 5s, or up to
	// RetryDelay when it is larger.
	RetryDelay time.Duration `yaml:"retry_delay,omitempty"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty"`
}

// Load reads, expands, defaults and validates the configuration at configPath.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(filepath.Dir(configPath)); err != nil {
		fmt.Fprintf(os.Stderr, "Note: %v\n", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}

	if !filepath.IsAbs(cfg.Project.Root) {
		base, err := filepath.Abs(filepath.Dir(configPath))
		if err != nil {
			return nil, fmt.Errorf("resolve config directory: %w", err)
		}
		cfg.Project.Root = filepath.Join(base, cfg.Project.Root)
	}
	return cfg, nil
}

// Parse decodes YAML configuration, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Project: ProjectConfig{Root: ".", SrcDir: "src", PublicDir: "public", OutDir: "dist"},
		Build:   BuildConfig{Mode: ModeStatic, Plugins: DefaultPlugins()},
		EventStore: EventStoreConfig{
			Path: ".sitebuild/events.db",
		},
		Notify: NotifyConfig{Subject: DefaultNotifySubject},
		Watch:  WatchConfig{Debounce: DefaultDebounce},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SrcPath returns the absolute source directory.
func (c *Config) SrcPath() string { return c.resolve(c.Project.SrcDir) }

// PublicPath returns the absolute public assets directory.
func (c *Config) PublicPath() string { return c.resolve(c.Project.PublicDir) }

// OutPath returns the absolute output directory.
func (c *Config) OutPath() string { return c.resolve(c.Project.OutDir) }

// EventStorePath returns the absolute event store path, or "" when disabled.
func (c *Config) EventStorePath() string {
	if c.EventStore.Path == "" || c.EventStore.Path == ":memory:" {
		return c.EventStore.Path
	}
	return c.resolve(c.EventStore.Path)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Project.Root, p)
}
