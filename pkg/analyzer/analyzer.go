// Package analyzer resolves the declarations of one module into types.
//
// Resolution is lazy: a declaration is converted the first time something
// asks for it, the result is memoized in the owning storage, and an
// in-progress sentinel guards against re-entry. Recursion that passes a
// structural boundary (an object member, a signature, an array or tuple
// element, the argument of an interface reference) is legal and becomes a
// Ref; any other re-entry is reported once and replaced by an error type.
package analyzer

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/env"
	"github.com/devgony/stc/pkg/logging"
	"github.com/devgony/stc/pkg/source"
	"github.com/devgony/stc/pkg/storage"
	"github.com/devgony/stc/pkg/types"
)

// DefaultMaxDepth bounds nested resolution steps when Config.MaxDepth is zero.
const DefaultMaxDepth = 256

type Config struct {
	MaxDepth int
	Logger   *slog.Logger
	// IsBuiltin analyses ambient library declarations into the global storage.
	IsBuiltin bool
}

// frame is one declaration under resolution. boundary is the structural
// boundary count when its resolution started.
type frame struct {
	id       types.Id
	boundary int
}

// Analyzer owns the traversal of one module. It is not safe for concurrent
// use; independent modules get independent analyzers.
type Analyzer struct {
	env     *env.Env
	sources *source.Map
	config  Config
	logger  *slog.Logger
	storage *storage.Storage
	loader  Loader
	parent  *Analyzer
	path    string

	diags []Diagnostic

	depth    int
	boundary int
	frames   []frame

	imports  map[types.Id]*importBinding
	modules  map[string]*storage.Storage
	missing  map[string]bool
	known    map[ast.Mark]*storage.Storage
	scopes   map[ast.Node]*storage.Storage
	rejected map[ast.Node]bool
	cycles   map[types.Id]bool
}

// Root creates the analyzer of a module whose top-level storage is st. parent
// is the analyzer that imported this module, or nil.
func Root(e *env.Env, sources *source.Map, config Config, st *storage.Storage, loader Loader, parent *Analyzer) *Analyzer {
	if config.MaxDepth <= 0 {
		config.MaxDepth = DefaultMaxDepth
	}
	if loader == nil {
		loader = NoopLoader{}
	}
	if sources == nil {
		sources = source.NewMap()
	}
	path := st.Path()
	if config.IsBuiltin && path == "" {
		path = "<builtin>"
	}
	logger := logging.OrDiscard(config.Logger).With("module", path)
	return &Analyzer{
		env:      e,
		sources:  sources,
		config:   config,
		logger:   logger,
		storage:  st,
		loader:   loader,
		parent:   parent,
		path:     path,
		imports:  make(map[types.Id]*importBinding),
		modules:  make(map[string]*storage.Storage),
		missing:  make(map[string]bool),
		known:    make(map[ast.Mark]*storage.Storage),
		scopes:   make(map[ast.Node]*storage.Storage),
		rejected: make(map[ast.Node]bool),
		cycles:   make(map[types.Id]bool),
	}
}

// NewStorage creates the top-level storage of a module analysed under e.
func NewStorage(e *env.Env, id types.ModuleId, mark ast.Mark, path string, isDTS bool) *storage.Storage {
	return storage.NewModule(id, mark, storage.Options{
		Path:   path,
		IsDTS:  isDTS,
		Parent: e.Global(),
		Policy: e.Rule().MergePolicy(),
	})
}

func (a *Analyzer) Env() *env.Env { return a.env }

func (a *Analyzer) Storage() *storage.Storage { return a.storage }

func (a *Analyzer) Sources() *source.Map { return a.sources }

func (a *Analyzer) Parent() *Analyzer { return a.parent }

func (a *Analyzer) Path() string { return a.path }

// VisitModule analyses every declaration of m. Problems in the program are
// recorded as diagnostics; the returned error is reserved for engine
// failures that could not be attributed to a declaration.
func (a *Analyzer) VisitModule(m *ast.Module) error {
	return a.VisitModules(m)
}

// VisitModules registers the declarations of all modules before resolving
// any of them, so declarations spread over several ambient libraries merge.
func (a *Analyzer) VisitModules(mods ...*ast.Module) error {
	for _, m := range mods {
		if m == nil {
			continue
		}
		a.logger.Debug("declare", "path", m.Path, "statements", len(m.Body))
		a.declareStatements(a.storage, m.Body)
	}
	for _, m := range mods {
		if m == nil {
			continue
		}
		if err := a.visitStatements(a.storage, m.Body); err != nil {
			return errors.Wrapf(err, "analyzing %s", m.Path)
		}
	}
	return nil
}

// FindType returns the memoized candidates of id, resolving them first when
// needed. It returns nil, nil for an undeclared id.
func (a *Analyzer) FindType(id types.Id) (*Candidates, error) {
	e, owner := a.lookupType(id, a.storage)
	if e == nil {
		return nil, nil
	}
	ts, err := a.resolveEntry(e, owner)
	if err != nil {
		if _, ok := asCycle(err); ok {
			return nil, errors.Wrapf(ErrInvariant, "%s is still being resolved", id)
		}
		return nil, err
	}
	return newCandidates(ts), nil
}

// FindVar returns the type of the value binding id.
func (a *Analyzer) FindVar(id types.Id) (types.Type, bool) {
	e, owner := a.lookupVar(id, a.storage)
	if e == nil {
		return nil, false
	}
	t, err := a.resolveVarEntry(e, owner)
	if err != nil {
		return types.ErrorType, true
	}
	return t, true
}

// enter accounts one nested resolution step.
func (a *Analyzer) enter(what types.Id) error {
	if a.depth >= a.config.MaxDepth {
		start := what
		if len(a.frames) > 0 {
			start = a.frames[0].id
		}
		return errors.Wrapf(ErrDepthExceeded, "resolving %s (from %s) past depth %d", what, start, a.config.MaxDepth)
	}
	a.depth++
	return nil
}

func (a *Analyzer) leave() {
	a.depth--
}

func (a *Analyzer) unresolved() ast.Mark {
	return a.env.Shared().UnresolvedMark()
}

func (a *Analyzer) global() *storage.Storage {
	if a.config.IsBuiltin {
		return a.storage.Root()
	}
	return a.env.Global()
}

// storageFor finds the storage whose declarations carry mark: a scope of this
// module, the global storage, or a module reachable through imports.
func (a *Analyzer) storageFor(mark ast.Mark) *storage.Storage {
	if s, ok := a.known[mark]; ok {
		return s
	}
	var queue []*storage.Storage
	for cur := a.storage; cur != nil; cur = cur.Root().Parent() {
		queue = append(queue, cur.Root())
	}
	if g := a.global(); g != nil {
		queue = append(queue, g)
	}
	seen := make(map[*storage.Storage]bool)
	for len(queue) > 0 {
		root := queue[0].Root()
		queue = queue[1:]
		if seen[root] {
			continue
		}
		seen[root] = true
		if s, ok := root.ByMark(mark); ok {
			a.known[mark] = s
			return s
		}
		queue = append(queue, root.Links()...)
	}
	return nil
}

// lookupType finds the type entry of id and the storage owning it. The
// storage of the id's mark is consulted first, then the scope chain of from.
func (a *Analyzer) lookupType(id types.Id, from *storage.Storage) (*storage.Entry, *storage.Storage) {
	if s := a.storageFor(id.Mark); s != nil {
		if e, ok := s.LookupLocal(id); ok {
			return e, s
		}
	}
	if from == nil {
		return nil, nil
	}
	return from.Lookup(id)
}

func (a *Analyzer) lookupVar(id types.Id, from *storage.Storage) (*storage.Entry, *storage.Storage) {
	if s := a.storageFor(id.Mark); s != nil {
		if e, owner := s.LookupVar(id); e != nil && owner == s {
			return e, s
		}
	}
	if from == nil {
		return nil, nil
	}
	return from.LookupVar(id)
}

// inBoundary runs fn inside a structural boundary.
func (a *Analyzer) inBoundary(fn func() error) error {
	a.boundary++
	defer func() { a.boundary-- }()
	return fn()
}

func (a *Analyzer) frameOf(id types.Id) (frame, bool) {
	for i := len(a.frames) - 1; i >= 0; i-- {
		if a.frames[i].id == id {
			return a.frames[i], true
		}
	}
	return frame{}, false
}

func (a *Analyzer) resolving(id types.Id) bool {
	_, ok := a.frameOf(id)
	return ok
}
