package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/types"
)

func newModule(t *testing.T, parent *Storage) *Storage {
	t.Helper()
	var gen types.ModuleIdGenerator
	id, mark := gen.Generate("main.ts")
	return NewModule(id, mark, Options{Path: "main.ts", Parent: parent})
}

func TestIdsWithDistinctMarksNeverCollide(t *testing.T) {
	s := newModule(t, nil)
	a := types.NewId("T", s.TopLevelMark())
	b := types.NewId("T", ast.NewMark())

	require.NoError(t, s.Declare(a, DeclTypeAlias, nil))
	s.SetTypes(a, []types.Type{types.Number})

	entry, owner := s.Lookup(a)
	require.NotNil(t, entry)
	assert.Same(t, s, owner)

	entry, owner = s.Lookup(b)
	assert.Nil(t, entry)
	assert.Nil(t, owner)
}

func TestLookupStopsAtFirstLevelWithMatch(t *testing.T) {
	global := NewGlobal(ast.NewMark(), nil)
	mod := newModule(t, global)
	id := types.NewId("X", global.TopLevelMark())

	require.NoError(t, global.Declare(id, DeclInterface, nil))
	global.SetTypes(id, []types.Type{types.String})

	entry, owner := mod.Lookup(id)
	require.NotNil(t, entry)
	assert.Same(t, global, owner)

	// a local binding for the same id shadows the global one entirely
	require.NoError(t, mod.Declare(id, DeclTypeAlias, nil))
	mod.SetTypes(id, []types.Type{types.Number})
	entry, owner = mod.Lookup(id)
	require.NotNil(t, entry)
	assert.Same(t, mod, owner)
	assert.Equal(t, []types.Type{types.Number}, entry.Types)
}

func TestDeclareMergesCompatibleKinds(t *testing.T) {
	s := newModule(t, nil)
	id := types.NewId("X", s.TopLevelMark())
	require.NoError(t, s.Declare(id, DeclInterface, nil))
	require.NoError(t, s.Declare(id, DeclInterface, nil))
	require.NoError(t, s.Declare(id, DeclNamespace, nil))

	entry, _ := s.Lookup(id)
	require.NotNil(t, entry)
	assert.Equal(t, []DeclKind{DeclInterface, DeclInterface, DeclNamespace}, entry.Kinds())

	s.DeclareType(id, types.NewTypeLit(types.Prop("a", types.String)))
	s.DeclareType(id, types.NewTypeLit(types.Prop("b", types.Number)))
	entry, _ = s.Lookup(id)
	assert.Len(t, entry.Types, 2)
	assert.Equal(t, StateResolved, entry.State)
}

func TestDeclareRejectsIncompatibleKinds(t *testing.T) {
	s := newModule(t, nil)
	id := types.NewId("X", s.TopLevelMark())
	first := ast.Alias("X", ast.Kw("string"))
	require.NoError(t, s.Declare(id, DeclTypeAlias, first))

	err := s.Declare(id, DeclInterface, ast.Iface("X"))
	var redecl *RedeclarationError
	require.True(t, errors.As(err, &redecl))
	assert.Equal(t, DeclTypeAlias, redecl.Existing)
	assert.Equal(t, DeclInterface, redecl.Incoming)
	assert.Same(t, ast.Node(first), redecl.First)

	entry, _ := s.Lookup(id)
	assert.Equal(t, []DeclKind{DeclTypeAlias}, entry.Kinds())
}

func TestDeclareKeepsNamespacesApart(t *testing.T) {
	s := newModule(t, nil)
	id := types.NewId("X", s.TopLevelMark())
	require.NoError(t, s.Declare(id, DeclInterface, nil))
	require.NoError(t, s.Declare(id, DeclConst, nil))

	_, owner := s.LookupVar(id)
	assert.Same(t, s, owner)

	// class occupies both spaces; the value side conflicts with the const
	err := s.Declare(id, DeclClass, nil)
	require.Error(t, err)
	entry, _ := s.Lookup(id)
	assert.Equal(t, []DeclKind{DeclInterface}, entry.Kinds(), "a rejected declaration must not leak into either space")
}

func TestStrictPolicyRejectsInterfaceMerge(t *testing.T) {
	var gen types.ModuleIdGenerator
	id, mark := gen.Generate("a.ts")
	s := NewModule(id, mark, Options{Policy: StrictMergePolicy()})
	x := types.NewId("X", mark)
	require.NoError(t, s.Declare(x, DeclInterface, nil))
	assert.Error(t, s.Declare(x, DeclInterface, nil))
}

func TestCycleSentinel(t *testing.T) {
	s := newModule(t, nil)
	id := types.NewId("T", s.TopLevelMark())
	require.NoError(t, s.Declare(id, DeclTypeAlias, nil))

	require.True(t, s.Begin(id))
	assert.False(t, s.Begin(id), "re-entrant begin must report the cycle")
	entry, _ := s.Lookup(id)
	assert.Equal(t, StateInProgress, entry.State)

	s.Abort(id)
	entry, _ = s.Lookup(id)
	assert.Equal(t, StateUnresolved, entry.State)
	assert.Empty(t, entry.Types)

	require.True(t, s.Begin(id))
	s.Finish(id, []types.Type{types.String})
	entry, _ = s.Lookup(id)
	assert.Equal(t, StateResolved, entry.State)
	assert.Equal(t, []types.Type{types.String}, entry.Types)
}

func TestChildScopesAreIndexedByMark(t *testing.T) {
	s := newModule(t, nil)
	mark := ast.NewMarkWithParent(s.TopLevelMark())
	child := s.Child(mark)

	found, ok := s.ByMark(mark)
	require.True(t, ok)
	assert.Same(t, child, found)
	found, ok = child.ByMark(s.TopLevelMark())
	require.True(t, ok)
	assert.Same(t, s, found)
	assert.Same(t, s, child.Root())
	assert.Equal(t, KindScope, child.Kind())
	assert.Equal(t, s.ModuleId(), child.ModuleId())
}

func TestFreezePanicsOnMutation(t *testing.T) {
	s := newModule(t, nil)
	child := s.Child(ast.NewMarkWithParent(s.TopLevelMark()))
	s.Freeze()
	assert.True(t, child.Frozen())
	assert.Panics(t, func() {
		_ = child.Declare(types.NewId("X", child.TopLevelMark()), DeclInterface, nil)
	})
	assert.Panics(t, func() { s.Export("x", types.Id{}) })
}

func TestExportsAndStarReexports(t *testing.T) {
	lib := newModule(t, nil)
	a := types.NewId("A", lib.TopLevelMark())
	lib.Export("A", a)
	lib.Export("default", types.NewId("D", lib.TopLevelMark()))
	lib.Freeze()

	mod := newModule(t, nil)
	mod.ExportAll(lib)
	b := types.NewId("B", mod.TopLevelMark())
	mod.Export("B", b)

	exp, ok := mod.LookupExport("A")
	require.True(t, ok)
	assert.Equal(t, a, exp.Id)
	assert.Same(t, lib, exp.Owner)

	_, ok = mod.LookupExport("default")
	assert.False(t, ok, "star re-exports skip the default export")

	assert.Equal(t, []string{"A", "B"}, mod.ExportNames())
	assert.Len(t, mod.Exports(), 1)
}

func TestSnapshotAndKeysAreDeterministic(t *testing.T) {
	s := newModule(t, nil)
	b := types.NewId("B", s.TopLevelMark())
	a := types.NewId("A", s.TopLevelMark())
	require.NoError(t, s.Declare(b, DeclTypeAlias, nil))
	require.NoError(t, s.Declare(a, DeclTypeAlias, nil))
	s.SetTypes(a, []types.Type{types.Number})

	assert.Equal(t, []string{a.String(), b.String()}, s.Keys())
	snap := s.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, []types.Type{types.Number}, snap[a.String()])
	assert.Equal(t, []types.Id{b, a}, s.TypeIds())
}

func TestInfo(t *testing.T) {
	global := NewGlobal(ast.NewMark(), nil)
	mod := newModule(t, global)
	info := mod.Info()
	assert.Equal(t, "main.ts", info.Path)
	assert.Equal(t, mod.TopLevelMark(), info.TopLevelMark)
	assert.False(t, info.IsDTS)
	require.NotNil(t, info.Parent)
	assert.True(t, info.Parent.IsBuiltin())

	ginfo := global.Info()
	assert.Nil(t, ginfo.Parent)
	assert.True(t, ginfo.IsDTS)
	assert.Equal(t, "global", ginfo.Kind)
}

func TestLinksRecordImportedRoots(t *testing.T) {
	a := newModule(t, nil)
	b := newModule(t, nil)
	child := b.Child(ast.NewMarkWithParent(b.TopLevelMark()))

	a.Link(child)
	a.Link(b)
	a.Link(nil)
	require.Len(t, a.Links(), 1)
	assert.Same(t, b, a.Links()[0])
	assert.Empty(t, b.Links())
}
