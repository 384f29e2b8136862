package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/devgony/stc/pkg/analyzer"
	"github.com/devgony/stc/pkg/builtins"
	"github.com/devgony/stc/pkg/env"
)

// ConfigFileName is the project configuration looked up by the CLI.
const ConfigFileName = "stc.yaml"

// CompilerOptions mirrors the checker-relevant subset of tsconfig options.
type CompilerOptions struct {
	Strict               bool              `yaml:"strict"`
	StrictNullChecks     bool              `yaml:"strictNullChecks"`
	StrictFunctionTypes  bool              `yaml:"strictFunctionTypes"`
	NoImplicitAny        bool              `yaml:"noImplicitAny"`
	NoImplicitOverride   bool              `yaml:"noImplicitOverride"`
	NoDeclarationMerging bool              `yaml:"noDeclarationMerging"`
	Target               env.Target        `yaml:"target"`
	Module               env.ModuleConfig  `yaml:"module"`
	Lib                  []string          `yaml:"lib"`
	MaxDepth             int               `yaml:"maxDepth"`
	Paths                map[string]string `yaml:"paths"`
}

// Config is the project configuration read from stc.yaml.
type Config struct {
	CompilerOptions CompilerOptions `yaml:"compilerOptions"`
	Include         []string        `yaml:"include"`

	dir string
}

// DefaultConfig is used when no configuration file exists.
func DefaultConfig() *Config {
	return &Config{
		CompilerOptions: CompilerOptions{
			Target: env.Latest(),
			Module: env.ModuleES2015,
		},
	}
}

// LoadConfig reads a configuration file. Unknown fields are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// ParseConfig decodes configuration content over the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if cfg.CompilerOptions.MaxDepth < 0 {
		return nil, fmt.Errorf("maxDepth must not be negative, got %d", cfg.CompilerOptions.MaxDepth)
	}
	return cfg, nil
}

// Dir is the directory the configuration was loaded from.
func (c *Config) Dir() string { return c.dir }

// Rule returns the strictness toggles implied by the options.
func (c *Config) Rule() env.Rule {
	o := c.CompilerOptions
	rule := env.Rule{
		StrictNullChecks:     o.StrictNullChecks,
		StrictFunctionTypes:  o.StrictFunctionTypes,
		NoImplicitAny:        o.NoImplicitAny,
		NoImplicitOverride:   o.NoImplicitOverride,
		NoDeclarationMerging: o.NoDeclarationMerging,
	}
	if o.Strict {
		strict := env.StrictRule()
		strict.NoDeclarationMerging = o.NoDeclarationMerging
		rule = strict
	}
	return rule
}

// Libs returns the configured libraries, or the defaults of the target.
func (c *Config) Libs() []string {
	if len(c.CompilerOptions.Lib) > 0 {
		out := make([]string, len(c.CompilerOptions.Lib))
		for i, name := range c.CompilerOptions.Lib {
			out[i] = strings.ToLower(strings.TrimSpace(name))
		}
		return out
	}
	return builtins.DefaultLibs(c.CompilerOptions.Target)
}

// Env builds the analysis environment described by the configuration.
func (c *Config) Env() (*env.Env, error) {
	return analyzer.SimpleFromNames(c.Rule(), c.CompilerOptions.Target, c.CompilerOptions.Module, c.Libs())
}

// AnalyzerConfig returns the per-module analyzer settings.
func (c *Config) AnalyzerConfig(logger *slog.Logger) analyzer.Config {
	return analyzer.Config{MaxDepth: c.CompilerOptions.MaxDepth, Logger: logger}
}

// Files expands Include relative to the configuration directory. Directories
// contribute every .ts and .tsx file below them, node_modules excluded.
func (c *Config) Files() ([]string, error) {
	var out []string
	for _, entry := range c.Include {
		root := entry
		if !filepath.IsAbs(root) {
			root = filepath.Join(c.dir, root)
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("config: include %s: %w", entry, err)
		}
		if !info.IsDir() {
			out = append(out, root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "node_modules" || strings.HasPrefix(d.Name(), ".") && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if isSourceFile(path) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("config: traverse %s: %w", root, err)
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func isSourceFile(path string) bool {
	return strings.HasSuffix(path, ".ts") || strings.HasSuffix(path, ".tsx")
}
