package types

import (
	"sync"
	"sync/atomic"

	"github.com/devgony/stc/pkg/ast"
)

// Id is a hygienic identifier: equality and hashing use both the name and
// the mark, so identically named bindings of different scopes never collide.
type Id struct {
	Sym  string
	Mark ast.Mark
}

func NewId(sym string, mark ast.Mark) Id {
	return Id{Sym: sym, Mark: mark}
}

// IdOf converts a marked identifier node.
func IdOf(ident *ast.Identifier) Id {
	if ident == nil {
		return Id{}
	}
	return Id{Sym: ident.Name, Mark: ident.Mark}
}

func (i Id) IsZero() bool { return i == Id{} }

func (i Id) String() string {
	return i.Sym + i.Mark.String()
}

// ModuleId identifies an analysed module. Ids are dense and never reused
// within a process run.
type ModuleId uint32

const builtinModule ModuleId = 0

// BuiltinModuleId is the sentinel identity of the synthetic global module.
func BuiltinModuleId() ModuleId { return builtinModule }

func (m ModuleId) IsBuiltin() bool { return m == builtinModule }

// ModuleIdGenerator allocates module identities. The zero value is ready to
// use and safe for concurrent callers.
type ModuleIdGenerator struct {
	next  atomic.Uint32
	mu    sync.Mutex
	paths map[ModuleId]string
}

// Generate returns a fresh module id and top-level mark. Asking twice for the
// same path yields two distinct pairs so stale bindings never leak between runs.
func (g *ModuleIdGenerator) Generate(path string) (ModuleId, ast.Mark) {
	id := ModuleId(g.next.Add(1))
	mark := ast.NewMark()
	g.mu.Lock()
	if g.paths == nil {
		g.paths = make(map[ModuleId]string)
	}
	g.paths[id] = path
	g.mu.Unlock()
	return id, mark
}

// Path returns the path a module id was generated for.
func (g *ModuleIdGenerator) Path(id ModuleId) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	path, ok := g.paths[id]
	return path, ok
}
