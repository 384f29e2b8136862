package driver

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/devgony/stc/pkg/analyzer"
	"github.com/devgony/stc/pkg/env"
	"github.com/devgony/stc/pkg/logging"
	"github.com/devgony/stc/pkg/storage"
	"github.com/devgony/stc/pkg/types"
)

// Result is the outcome of checking one file.
type Result struct {
	Path        string
	ModuleId    types.ModuleId
	Storage     *storage.Storage
	Diagnostics []analyzer.Diagnostic
}

// HasErrors reports whether any diagnostic has error severity.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == analyzer.SeverityError {
			return true
		}
	}
	return false
}

// Checker checks files of one project. Independent files are analysed
// concurrently; imported modules are shared through one ModuleLoader.
type Checker struct {
	env    *env.Env
	loader *ModuleLoader
	logger *slog.Logger
	limit  int
}

// CheckerOption customises a Checker.
type CheckerOption func(*Checker)

// WithConcurrency bounds the number of files analysed at once.
func WithConcurrency(n int) CheckerOption {
	return func(c *Checker) {
		if n > 0 {
			c.limit = n
		}
	}
}

// NewChecker creates a checker reading files from src under the settings of cfg.
func NewChecker(cfg *Config, src Source, logger *slog.Logger, opts ...CheckerOption) (*Checker, error) {
	e, err := cfg.Env()
	if err != nil {
		return nil, err
	}
	logger = logging.OrDiscard(logger)
	loader := NewModuleLoader(e, src, cfg.AnalyzerConfig(logger), WithPathAliases(cfg.CompilerOptions.Paths))
	c := &Checker{env: e, loader: loader, logger: logger, limit: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Checker) Env() *env.Env { return c.env }

func (c *Checker) Loader() *ModuleLoader { return c.loader }

func (c *Checker) Close() { c.loader.Close() }

// CheckFile analyses the file at path and the modules it imports.
func (c *Checker) CheckFile(path string) (*Result, error) {
	mod, err := c.loader.Load(path)
	if err != nil {
		return nil, err
	}
	return &Result{
		Path:        mod.Path,
		ModuleId:    mod.ID,
		Storage:     mod.Storage,
		Diagnostics: mod.Diagnostics,
	}, nil
}

// CheckFiles analyses paths concurrently. Results keep the order of paths.
// The first failure cancels files not yet started.
func (c *Checker) CheckFiles(ctx context.Context, paths []string) ([]*Result, error) {
	results := make([]*Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.limit)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := c.CheckFile(path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	c.logger.Info("check finished", "files", len(paths))
	return results, nil
}
