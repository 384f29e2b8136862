package driver

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/devgony/stc/pkg/analyzer"
	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/env"
	"github.com/devgony/stc/pkg/hygiene"
	"github.com/devgony/stc/pkg/logging"
	"github.com/devgony/stc/pkg/parser"
	"github.com/devgony/stc/pkg/source"
	"github.com/devgony/stc/pkg/storage"
	"github.com/devgony/stc/pkg/types"
)

// ErrImportCycle is returned for an import that would close a cycle of
// modules under analysis.
var ErrImportCycle = errors.New("loader: import cycle")

// Module is one analysed file.
type Module struct {
	Path        string
	ID          types.ModuleId
	AST         *ast.Module
	Imports     []string
	Storage     *storage.Storage
	Diagnostics []analyzer.Diagnostic
}

// ModuleLoader parses, analyses and caches modules read from a Source. It
// implements analyzer.Loader and is safe for concurrent use: every module is
// analysed once and handed out frozen.
type ModuleLoader struct {
	env     *env.Env
	src     Source
	sources *source.Map
	config  analyzer.Config
	aliases map[string]string
	logger  *slog.Logger
	ids     types.ModuleIdGenerator
	parsers parserPool
	group   singleflight.Group

	mu        sync.Mutex
	modules   map[string]*Module
	failures  map[string]error
	edges     map[string]map[string]bool
	analyzers map[string]*analyzer.Analyzer
}

// LoaderOption customises a ModuleLoader.
type LoaderOption func(*ModuleLoader)

// WithPathAliases maps specifier prefixes to source paths.
func WithPathAliases(aliases map[string]string) LoaderOption {
	return func(l *ModuleLoader) { l.aliases = aliases }
}

// WithSourceMap shares a source map with the caller.
func WithSourceMap(m *source.Map) LoaderOption {
	return func(l *ModuleLoader) { l.sources = m }
}

func NewModuleLoader(e *env.Env, src Source, config analyzer.Config, opts ...LoaderOption) *ModuleLoader {
	l := &ModuleLoader{
		env:       e,
		src:       src,
		config:    config,
		logger:    logging.OrDiscard(config.Logger),
		modules:   make(map[string]*Module),
		failures:  make(map[string]error),
		edges:     make(map[string]map[string]bool),
		analyzers: make(map[string]*analyzer.Analyzer),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.sources == nil {
		l.sources = source.NewMap()
	}
	return l
}

// Close releases parser resources.
func (l *ModuleLoader) Close() {
	if l == nil {
		return
	}
	l.parsers.close()
}

// Sources returns the source map filled by every load.
func (l *ModuleLoader) Sources() *source.Map { return l.sources }

// Resolve implements analyzer.Loader.
func (l *ModuleLoader) Resolve(specifier, fromPath string) (*storage.Storage, error) {
	target, err := l.resolvePath(specifier, fromPath)
	if err != nil {
		return nil, err
	}
	if err := l.addEdge(fromPath, target); err != nil {
		l.logger.Warn("import cycle", "from", fromPath, "specifier", specifier)
		return nil, err
	}
	mod, err := l.Load(target)
	if err != nil {
		return nil, err
	}
	return mod.Storage, nil
}

// resolvePath finds the file a specifier names.
func (l *ModuleLoader) resolvePath(specifier, fromPath string) (string, error) {
	for _, candidate := range candidatePaths(specifier, fromPath, l.env.Module(), l.aliases) {
		if l.src.Exists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("loader: resolve %q from %s: %w", specifier, fromPath, analyzer.ErrModuleNotFound)
}

// addEdge records that from imports to, refusing edges that close a cycle.
// Edges are recorded before waiting on a load, so two goroutines can never
// wait on each other's modules.
func (l *ModuleLoader) addEdge(from, to string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if from == to || l.reaches(to, from, make(map[string]bool)) {
		return fmt.Errorf("%w: %s imports %s", ErrImportCycle, from, to)
	}
	if l.edges[from] == nil {
		l.edges[from] = make(map[string]bool)
	}
	l.edges[from][to] = true
	return nil
}

func (l *ModuleLoader) reaches(from, to string, seen map[string]bool) bool {
	if from == to {
		return true
	}
	if seen[from] {
		return false
	}
	seen[from] = true
	for next := range l.edges[from] {
		if l.reaches(next, to, seen) {
			return true
		}
	}
	return false
}

// Load analyses the module at path, once. Concurrent calls for the same path
// share one analysis.
func (l *ModuleLoader) Load(path string) (*Module, error) {
	path = normalizePath(path)
	if mod, err, ok := l.cached(path); ok {
		return mod, err
	}
	res, err, _ := l.group.Do(path, func() (any, error) {
		if mod, err, ok := l.cached(path); ok {
			return mod, err
		}
		mod, err := l.load(path)
		l.mu.Lock()
		if err != nil {
			l.failures[path] = err
		} else {
			l.modules[path] = mod
		}
		delete(l.analyzers, path)
		l.mu.Unlock()
		return mod, err
	})
	if err != nil {
		return nil, err
	}
	return res.(*Module), nil
}

func (l *ModuleLoader) cached(path string) (*Module, error, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if mod, ok := l.modules[path]; ok {
		return mod, nil, true
	}
	if err, ok := l.failures[path]; ok {
		return nil, err, true
	}
	return nil, nil, false
}

func (l *ModuleLoader) load(path string) (*Module, error) {
	content, err := l.src.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l.sources.AddFile(path, content)

	p, err := l.parsers.get()
	if err != nil {
		return nil, err
	}
	moduleAST, err := p.ParseModule(path, content)
	l.parsers.put(p)
	if err != nil {
		return nil, fmt.Errorf("loader: parse %s: %w", path, err)
	}

	id, top := l.ids.Generate(path)
	hygiene.Apply(moduleAST, l.env.Shared().UnresolvedMark(), top)
	st := analyzer.NewStorage(l.env, id, top, path, moduleAST.IsDTS)

	a := analyzer.Root(l.env, l.sources, l.config, st, l, l.importer(path))
	l.mu.Lock()
	l.analyzers[path] = a
	l.mu.Unlock()

	if err := a.VisitModule(moduleAST); err != nil {
		return nil, fmt.Errorf("loader: analyse %s: %w", path, err)
	}
	st.Freeze()
	diags := a.Diagnostics()
	l.logger.Info("module loaded", "path", path, "module", uint32(id), "diagnostics", len(diags))
	return &Module{
		Path:        path,
		ID:          id,
		AST:         moduleAST,
		Imports:     importSpecifiers(moduleAST),
		Storage:     st,
		Diagnostics: diags,
	}, nil
}

// importer returns the analyzer of a module under analysis that imports path.
func (l *ModuleLoader) importer(path string) *analyzer.Analyzer {
	l.mu.Lock()
	defer l.mu.Unlock()
	froms := make([]string, 0)
	for from, tos := range l.edges {
		if tos[path] {
			froms = append(froms, from)
		}
	}
	slices.Sort(froms)
	for _, from := range froms {
		if a, ok := l.analyzers[from]; ok {
			return a
		}
	}
	return nil
}

// parserPool hands out tree-sitter parsers, which are not safe for
// concurrent use.
type parserPool struct {
	mu   sync.Mutex
	free []*parser.ModuleParser
	all  []*parser.ModuleParser
}

func (p *parserPool) get() (*parser.ModuleParser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.free); n > 0 {
		mp := p.free[n-1]
		p.free = p.free[:n-1]
		return mp, nil
	}
	mp, err := parser.NewModuleParser()
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	p.all = append(p.all, mp)
	return mp, nil
}

func (p *parserPool) put(mp *parser.ModuleParser) {
	p.mu.Lock()
	p.free = append(p.free, mp)
	p.mu.Unlock()
}

func (p *parserPool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, mp := range p.all {
		mp.Close()
	}
	p.all, p.free = nil, nil
}
