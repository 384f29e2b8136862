// Package storage holds the binding tables of analysed modules. A Storage is
// one lexical level (global, module or nested scope); lookups fall back along
// an explicit parent chain.
package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/types"
)

type Kind int

const (
	KindGlobal Kind = iota
	KindModule
	KindScope
)

func (k Kind) String() string {
	switch k {
	case KindGlobal:
		return "global"
	case KindModule:
		return "module"
	case KindScope:
		return "scope"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Storage is a binding table for one scope level. The parent is borrowed:
// it must outlive every child.
type Storage struct {
	moduleID types.ModuleId
	mark     ast.Mark
	path     string
	isDTS    bool
	kind     Kind
	parent   *Storage
	root     *Storage

	mu      sync.RWMutex
	types   *table
	values  *table
	exports map[string]Export
	order   []string
	stars   []*Storage
	policy  MergePolicy
	frozen  bool

	// scopes indexes every storage of this module tree by mark; only the
	// root's map is populated.
	scopes map[ast.Mark]*Storage
	links  []*Storage
}

// Options configure a new root storage.
type Options struct {
	Path   string
	IsDTS  bool
	Parent *Storage
	Policy MergePolicy
}

// NewGlobal creates the storage of builtin declarations. Its top-level mark is
// the process-wide unresolved mark.
func NewGlobal(unresolved ast.Mark, policy MergePolicy) *Storage {
	return newRoot(types.BuiltinModuleId(), unresolved, KindGlobal, Options{IsDTS: true, Policy: policy})
}

// NewModule creates the top-level storage of a module.
func NewModule(id types.ModuleId, mark ast.Mark, opts Options) *Storage {
	return newRoot(id, mark, KindModule, opts)
}

func newRoot(id types.ModuleId, mark ast.Mark, kind Kind, opts Options) *Storage {
	if opts.Policy == nil {
		opts.Policy = DefaultMergePolicy()
	}
	s := &Storage{
		moduleID: id,
		mark:     mark,
		path:     opts.Path,
		isDTS:    opts.IsDTS,
		kind:     kind,
		parent:   opts.Parent,
		types:    newTable(),
		values:   newTable(),
		exports:  make(map[string]Export),
		policy:   opts.Policy,
		scopes:   make(map[ast.Mark]*Storage),
	}
	s.root = s
	s.scopes[mark] = s
	return s
}

// Child creates a nested scope storage whose declarations carry mark.
func (s *Storage) Child(mark ast.Mark) *Storage {
	s.mustMutate()
	c := &Storage{
		moduleID: s.moduleID,
		mark:     mark,
		path:     s.path,
		isDTS:    s.isDTS,
		kind:     KindScope,
		parent:   s,
		root:     s.root,
		types:    newTable(),
		values:   newTable(),
		exports:  make(map[string]Export),
		policy:   s.policy,
	}
	s.root.mu.Lock()
	s.root.scopes[mark] = c
	s.root.mu.Unlock()
	return c
}

func (s *Storage) ModuleId() types.ModuleId { return s.moduleID }

func (s *Storage) TopLevelMark() ast.Mark { return s.mark }

func (s *Storage) Path() string { return s.path }

func (s *Storage) IsDTS() bool { return s.isDTS }

func (s *Storage) Kind() Kind { return s.kind }

func (s *Storage) Parent() *Storage { return s.parent }

// Root returns the top-level storage of this module tree.
func (s *Storage) Root() *Storage { return s.root }

// ByMark finds the storage of this module tree whose declarations carry mark.
func (s *Storage) ByMark(mark ast.Mark) (*Storage, bool) {
	s.root.mu.RLock()
	defer s.root.mu.RUnlock()
	found, ok := s.root.scopes[mark]
	return found, ok
}

// Declare registers declaration syntax for id. Type-space and value-space
// bindings are kept apart, so `interface X` and `const X` never conflict.
// A conflict under the merge policy returns a *RedeclarationError and keeps
// the first declaration.
func (s *Storage) Declare(id types.Id, kind DeclKind, node ast.Node) error {
	s.mustMutate()
	s.mu.Lock()
	defer s.mu.Unlock()
	decl := Decl{Kind: kind, Node: node}
	if kind.InTypeSpace() {
		if err := s.types.check(id, decl, s.policy); err != nil {
			return err
		}
	}
	if kind.InValueSpace() {
		if err := s.values.check(id, decl, s.policy); err != nil {
			return err
		}
	}
	if kind.InTypeSpace() {
		s.types.entry(id).Decls = append(s.types.entry(id).Decls, decl)
	}
	if kind.InValueSpace() {
		s.values.entry(id).Decls = append(s.values.entry(id).Decls, decl)
	}
	return nil
}

// DeclareType appends a resolved candidate for id.
func (s *Storage) DeclareType(id types.Id, t types.Type) {
	s.mustMutate()
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.types.entry(id)
	e.Types = append(e.Types, t)
	e.State = StateResolved
}

// SetTypes replaces the memoized candidates of id.
func (s *Storage) SetTypes(id types.Id, ts []types.Type) {
	s.mustMutate()
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.types.entry(id)
	e.Types = append([]types.Type(nil), ts...)
	e.State = StateResolved
}

// Lookup searches this level, then the parent chain, and returns the entry at
// the first level that has any binding for id together with that level.
func (s *Storage) Lookup(id types.Id) (*Entry, *Storage) {
	for cur := s; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		e, ok := cur.types.entries[id]
		cur.mu.RUnlock()
		if ok {
			return e, cur
		}
	}
	return nil, nil
}

// LookupLocal searches only this level.
func (s *Storage) LookupLocal(id types.Id) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.types.entries[id]
	return e, ok
}

// Begin marks id as being resolved. It reports false when the resolution of
// id is already in progress.
func (s *Storage) Begin(id types.Id) bool {
	s.mustMutate()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.types.begin(id)
}

// Finish memoizes the resolved candidates and clears the sentinel.
func (s *Storage) Finish(id types.Id, ts []types.Type) {
	s.mustMutate()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.types.finish(id, ts)
}

// Abort clears the sentinel without memoizing anything.
func (s *Storage) Abort(id types.Id) {
	s.mustMutate()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.types.abort(id)
}

// DeclareVar registers a value-space declaration.
func (s *Storage) DeclareVar(id types.Id, kind DeclKind, node ast.Node) error {
	s.mustMutate()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.declare(id, Decl{Kind: kind, Node: node}, s.policy)
}

// SetVar memoizes the type of a value binding.
func (s *Storage) SetVar(id types.Id, t types.Type) {
	s.mustMutate()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.finish(id, []types.Type{t})
}

// LookupVar is Lookup for value bindings.
func (s *Storage) LookupVar(id types.Id) (*Entry, *Storage) {
	for cur := s; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		e, ok := cur.values.entries[id]
		cur.mu.RUnlock()
		if ok {
			return e, cur
		}
	}
	return nil, nil
}

func (s *Storage) BeginVar(id types.Id) bool {
	s.mustMutate()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.begin(id)
}

func (s *Storage) AbortVar(id types.Id) {
	s.mustMutate()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.abort(id)
}

// TypeIds returns the type-space ids of this level in declaration order.
func (s *Storage) TypeIds() []types.Id {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Id(nil), s.types.order...)
}

// VarIds returns the value-space ids of this level in declaration order.
func (s *Storage) VarIds() []types.Id {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Id(nil), s.values.order...)
}

// Link records that this module imports dep. Types of this module may hold
// references into dep, so readers follow links to find the owning storage.
func (s *Storage) Link(dep *Storage) {
	if dep == nil {
		return
	}
	s.mustMutate()
	root := s.root
	root.mu.Lock()
	defer root.mu.Unlock()
	for _, l := range root.links {
		if l == dep.root {
			return
		}
	}
	root.links = append(root.links, dep.root)
}

// Links returns the module storages linked to this module's root.
func (s *Storage) Links() []*Storage {
	root := s.root
	root.mu.RLock()
	defer root.mu.RUnlock()
	return append([]*Storage(nil), root.links...)
}

// Freeze makes the whole module tree read-only. Any later mutation panics.
func (s *Storage) Freeze() {
	root := s.root
	root.mu.Lock()
	scopes := make([]*Storage, 0, len(root.scopes))
	for _, c := range root.scopes {
		scopes = append(scopes, c)
	}
	root.mu.Unlock()
	for _, c := range scopes {
		c.mu.Lock()
		c.frozen = true
		c.mu.Unlock()
	}
}

func (s *Storage) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}

func (s *Storage) mustMutate() {
	s.mu.RLock()
	frozen := s.frozen
	s.mu.RUnlock()
	if frozen {
		panic(fmt.Sprintf("storage: mutation of frozen storage %s", s.describe()))
	}
}

func (s *Storage) describe() string {
	if s.path != "" {
		return s.path
	}
	return s.kind.String() + s.mark.String()
}

// Snapshot returns the resolved type candidates of this level keyed by
// printed id. Unresolved entries are omitted.
func (s *Storage) Snapshot() map[string][]types.Type {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]types.Type, len(s.types.entries))
	for id, e := range s.types.entries {
		if e.State == StateResolved {
			out[id.String()] = append([]types.Type(nil), e.Types...)
		}
	}
	return out
}

// Keys returns the printed type-space ids of this level in sorted order.
func (s *Storage) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.types.entries))
	for id := range s.types.entries {
		keys = append(keys, id.String())
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Info is the persisted shape of a storage node.
type Info struct {
	ModuleId     types.ModuleId `json:"moduleId" yaml:"moduleId"`
	TopLevelMark ast.Mark       `json:"topLevelMark" yaml:"topLevelMark"`
	Path         string         `json:"path" yaml:"path"`
	IsDTS        bool           `json:"isDts" yaml:"isDts"`
	Kind         string         `json:"kind" yaml:"kind"`
	Parent       *types.ModuleId `json:"parent,omitempty" yaml:"parent,omitempty"`
}

func (s *Storage) Info() Info {
	info := Info{
		ModuleId:     s.moduleID,
		TopLevelMark: s.mark,
		Path:         s.path,
		IsDTS:        s.isDTS,
		Kind:         s.kind.String(),
	}
	if s.parent != nil {
		parent := s.parent.moduleID
		info.Parent = &parent
	}
	return info
}
