// Package build runs a set of units through the compiler and lays the
// results out in an output directory.
package build

import (
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"martianoff/stjs/stjserr"
)

// ConfigFile is the project configuration looked up by the CLI.
const ConfigFile = "stjs.toml"

// Config holds configuration for a project build.
type Config struct {
	Project   ProjectConfig   `toml:"project"`
	Generator GeneratorConfig `toml:"generator"`

	// Dir is the directory relative paths are resolved against: the
	// directory of the configuration file, or the working directory.
	Dir string `toml:"-"`
}

// ProjectConfig is the [project] table.
type ProjectConfig struct {
	// Name is the bundle stem: <Name>.js and <Name>.map.
	Name string `toml:"name"`
	// Output is the root of the generated tree.
	// Defaults to target/js
	Output string `toml:"output"`
	// Encoding is the IANA name of the source text encoding.
	// Defaults to UTF-8
	Encoding string `toml:"encoding"`
	// Environment lists the environment documents describing the types
	// visible to the units.
	Environment []string `toml:"environment"`
}

// GeneratorConfig is the [generator] table.
type GeneratorConfig struct {
	AllowedPackages []string `toml:"allowed_packages"`
	IterationGuard  bool     `toml:"iteration_guard"`
	SourceMap       bool     `toml:"source_map"`
	CopySources     bool     `toml:"copy_sources"`
	Bundle          bool     `toml:"bundle"`
	Jobs            int      `toml:"jobs"`
	MaxDiagnostics  int      `toml:"max_diagnostics"`
}

// DefaultConfig returns the default build configuration.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Output:   filepath.Join("target", "js"),
			Encoding: "UTF-8",
		},
		Generator: GeneratorConfig{
			AllowedPackages: []string{"org.stjs.javascript"},
			IterationGuard:  true,
			CopySources:     true,
			Jobs:            1,
			MaxDiagnostics:  stjserr.DefaultMaxDiagnostics,
		},
		Dir: ".",
	}
}

// LoadConfig reads a stjs.toml file over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, stjserr.NewConfigError(path, "failed to parse TOML: %v", err)
	}
	if !meta.IsDefined("project") {
		return nil, stjserr.NewConfigError(path, "missing [project]")
	}
	if !meta.IsDefined("project", "name") {
		return nil, stjserr.NewConfigError(path, "missing [project].name")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, stjserr.NewConfigError(path, "unknown keys: %s", strings.Join(keys, ", "))
	}
	cfg.Dir = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		if ce, ok := err.(*stjserr.ConfigError); ok {
			ce.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the decoder cannot.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Project.Name) == "" {
		return stjserr.NewConfigError("", "[project].name must not be empty")
	}
	if strings.ContainsAny(c.Project.Name, `/\`) {
		return stjserr.NewConfigError("", "[project].name %q must be a file stem", c.Project.Name)
	}
	if c.Generator.Jobs < 1 {
		return stjserr.NewConfigError("", "[generator].jobs must be at least 1, got %d", c.Generator.Jobs)
	}
	if c.Generator.MaxDiagnostics < 1 {
		return stjserr.NewConfigError("", "[generator].max_diagnostics must be at least 1, got %d", c.Generator.MaxDiagnostics)
	}
	if _, err := lookupEncoding(c.Project.Encoding); err != nil {
		return stjserr.NewConfigError("", "[project].encoding: %v", err)
	}
	return nil
}

// OutputDir returns the output root.
func (c *Config) OutputDir() string {
	return c.path(c.Project.Output)
}

// EnvironmentFiles returns the environment documents to load.
func (c *Config) EnvironmentFiles() []string {
	out := make([]string, len(c.Project.Environment))
	for i, p := range c.Project.Environment {
		out[i] = c.path(p)
	}
	return out
}

func (c *Config) path(p string) string {
	if filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}
