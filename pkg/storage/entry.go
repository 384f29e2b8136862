package storage

import (
	"fmt"

	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/types"
)

type State int

const (
	StateUnresolved State = iota
	StateInProgress
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateInProgress:
		return "in-progress"
	case StateResolved:
		return "resolved"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type DeclKind string

const (
	DeclTypeAlias DeclKind = "type"
	DeclInterface DeclKind = "interface"
	DeclClass     DeclKind = "class"
	DeclEnum      DeclKind = "enum"
	DeclNamespace DeclKind = "namespace"
	DeclFunction  DeclKind = "function"
	DeclVar       DeclKind = "var"
	DeclLet       DeclKind = "let"
	DeclConst     DeclKind = "const"
	DeclImport    DeclKind = "import"
	DeclParam     DeclKind = "parameter"
	// DeclTypeParam binds a generic parameter inside a function or class body scope.
	DeclTypeParam DeclKind = "type parameter"
)

// InTypeSpace reports whether declarations of this kind bind a type.
func (k DeclKind) InTypeSpace() bool {
	switch k {
	case DeclTypeAlias, DeclInterface, DeclClass, DeclEnum, DeclNamespace, DeclImport, DeclTypeParam:
		return true
	}
	return false
}

// InValueSpace reports whether declarations of this kind bind a value.
func (k DeclKind) InValueSpace() bool {
	switch k {
	case DeclClass, DeclEnum, DeclNamespace, DeclFunction, DeclVar, DeclLet, DeclConst, DeclImport, DeclParam:
		return true
	}
	return false
}

// Decl is one declaration contributing to a binding.
type Decl struct {
	Kind DeclKind
	Node ast.Node
}

// Entry is the binding of one id at one level: its declarations in source
// order and, once resolved, its candidate types in merge order.
type Entry struct {
	Id    types.Id
	Decls []Decl
	Types []types.Type
	State State
}

// Kinds lists the declaration kinds of the entry in order.
func (e *Entry) Kinds() []DeclKind {
	out := make([]DeclKind, len(e.Decls))
	for i, d := range e.Decls {
		out[i] = d.Kind
	}
	return out
}

// RedeclarationError reports declarations the merge policy rejects.
type RedeclarationError struct {
	Id       types.Id
	Existing DeclKind
	Incoming DeclKind
	First    ast.Node
	Node     ast.Node
}

func (e *RedeclarationError) Error() string {
	return fmt.Sprintf("duplicate identifier '%s': %s cannot merge with earlier %s", e.Id.Sym, e.Incoming, e.Existing)
}

type table struct {
	entries map[types.Id]*Entry
	order   []types.Id
}

func newTable() *table {
	return &table{entries: make(map[types.Id]*Entry)}
}

func (t *table) entry(id types.Id) *Entry {
	e, ok := t.entries[id]
	if !ok {
		e = &Entry{Id: id}
		t.entries[id] = e
		t.order = append(t.order, id)
	}
	return e
}

func (t *table) check(id types.Id, decl Decl, policy MergePolicy) error {
	e, ok := t.entries[id]
	if !ok {
		return nil
	}
	for _, existing := range e.Decls {
		if !policy.CanMerge(existing.Kind, decl.Kind) {
			return &RedeclarationError{Id: id, Existing: existing.Kind, Incoming: decl.Kind, First: e.Decls[0].Node, Node: decl.Node}
		}
	}
	return nil
}

func (t *table) declare(id types.Id, decl Decl, policy MergePolicy) error {
	if err := t.check(id, decl, policy); err != nil {
		return err
	}
	e := t.entry(id)
	e.Decls = append(e.Decls, decl)
	return nil
}

func (t *table) begin(id types.Id) bool {
	e := t.entry(id)
	if e.State == StateInProgress {
		return false
	}
	e.State = StateInProgress
	return true
}

func (t *table) finish(id types.Id, ts []types.Type) {
	e := t.entry(id)
	e.Types = append([]types.Type(nil), ts...)
	e.State = StateResolved
}

func (t *table) abort(id types.Id) {
	if e, ok := t.entries[id]; ok && e.State == StateInProgress {
		e.State = StateUnresolved
	}
}
