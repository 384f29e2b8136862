package analyzer

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"

	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/env"
	"github.com/devgony/stc/pkg/hygiene"
	"github.com/devgony/stc/pkg/storage"
	"github.com/devgony/stc/pkg/types"
)

var testIds types.ModuleIdGenerator

func newEnv(rule env.Rule, target env.Target) *env.Env {
	shared := env.NewShared()
	global := storage.NewGlobal(shared.UnresolvedMark(), storage.DefaultMergePolicy())
	global.Freeze()
	return env.New(rule, target, env.ModuleES2015, shared, global, nil)
}

func defaultEnv() *env.Env {
	return newEnv(env.Rule{}, env.Latest())
}

// prepare applies hygiene and creates the analyzer of a module without
// visiting it.
func prepare(e *env.Env, config Config, loader Loader, path string, body ...ast.Statement) (*Analyzer, *ast.Module) {
	mod := ast.Mod(path, body...)
	id, top := testIds.Generate(path)
	hygiene.Apply(mod, e.Shared().UnresolvedMark(), top)
	return Root(e, nil, config, NewStorage(e, id, top, path, mod.IsDTS), loader, nil), mod
}

func analyze(t *testing.T, e *env.Env, loader Loader, path string, body ...ast.Statement) *Analyzer {
	t.Helper()
	a, mod := prepare(e, Config{}, loader, path, body...)
	if err := a.VisitModule(mod); err != nil {
		t.Fatalf("VisitModule(%s) error = %v", path, err)
	}
	return a
}

func findType(t *testing.T, a *Analyzer, ident *ast.Identifier) types.Type {
	t.Helper()
	c, err := a.FindType(types.IdOf(ident))
	if err != nil {
		t.Fatalf("FindType(%s) error = %v", ident.Name, err)
	}
	if c == nil {
		t.Fatalf("FindType(%s) = nil, want candidates", ident.Name)
	}
	return c.First()
}

func countCode(a *Analyzer, code Code) int {
	n := 0
	for _, d := range a.Diagnostics() {
		if d.Code == code {
			n++
		}
	}
	return n
}

func expectNoDiagnostics(t *testing.T, a *Analyzer) {
	t.Helper()
	if diags := a.Diagnostics(); len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func expectType(t *testing.T, got, want types.Type) {
	t.Helper()
	if !types.Equal(got, want) {
		t.Fatalf("type = %s, want %s", printType(got), printType(want))
	}
}

func TestAliasOfAlias(t *testing.T) {
	b := ast.Alias("B", ast.Ref("A"))
	a := analyze(t, defaultEnv(), nil, "main.ts",
		ast.Alias("A", ast.Kw("number")),
		b,
	)
	expectNoDiagnostics(t, a)
	expectType(t, findType(t, a, b.ID), types.Number)
}

func TestForwardReference(t *testing.T) {
	first := ast.Alias("A", ast.Ref("B"))
	a := analyze(t, defaultEnv(), nil, "main.ts",
		first,
		ast.Alias("B", ast.Kw("string")),
	)
	expectNoDiagnostics(t, a)
	expectType(t, findType(t, a, first.ID), types.String)
}

func TestInterfaceDeclarationsMerge(t *testing.T) {
	first := ast.Iface("X", ast.Prop("a", ast.Kw("string")))
	a := analyze(t, defaultEnv(), nil, "main.ts",
		first,
		ast.Iface("X", ast.Prop("b", ast.Kw("number"))),
	)
	expectNoDiagnostics(t, a)
	c, err := a.FindType(types.IdOf(first.ID))
	if err != nil || c == nil {
		t.Fatalf("FindType(X) = %v, %v", c, err)
	}
	if c.Len() != 1 {
		t.Fatalf("candidates = %d, want one merged interface", c.Len())
	}
	iface, ok := c.First().(*types.Interface)
	if !ok {
		t.Fatalf("X = %T, want *types.Interface", c.First())
	}
	if len(iface.Body) != 2 || iface.Body[0].MemberKey() != "a" || iface.Body[1].MemberKey() != "b" {
		t.Fatalf("merged members = %v, want [a b]", iface.Body)
	}
	// iterating twice yields the same candidates
	n := 0
	for range c.All() {
		n++
	}
	for range c.All() {
		n++
	}
	if n != 2 {
		t.Fatalf("two iterations yielded %d candidates, want 2", n)
	}
}

func TestDuplicateAliasIsReported(t *testing.T) {
	first := ast.Alias("A", ast.Kw("string"))
	a := analyze(t, defaultEnv(), nil, "main.ts",
		first,
		ast.Alias("A", ast.Kw("number")),
	)
	if got := countCode(a, CodeDuplicateIdentifier); got != 1 {
		t.Fatalf("duplicate diagnostics = %d, want 1 (%v)", got, a.Diagnostics())
	}
	expectType(t, findType(t, a, first.ID), types.String)
}

func TestNoDeclarationMergingRejectsInterfaces(t *testing.T) {
	a := analyze(t, newEnv(env.Rule{NoDeclarationMerging: true}, env.Latest()), nil, "main.ts",
		ast.Iface("X", ast.Prop("a", ast.Kw("string"))),
		ast.Iface("X", ast.Prop("b", ast.Kw("number"))),
	)
	if got := countCode(a, CodeDuplicateIdentifier); got != 1 {
		t.Fatalf("duplicate diagnostics = %d, want 1", got)
	}
}

func TestBlockShadowing(t *testing.T) {
	outer := ast.Alias("V", ast.Ref("T"))
	inner := ast.Alias("U", ast.Ref("T"))
	a := analyze(t, defaultEnv(), nil, "main.ts",
		ast.Alias("T", ast.Kw("number")),
		outer,
		ast.Block(
			ast.Alias("T", ast.Kw("string")),
			inner,
		),
	)
	expectNoDiagnostics(t, a)
	expectType(t, findType(t, a, outer.ID), types.Number)
	expectType(t, findType(t, a, inner.ID), types.String)
}

func TestModulesDoNotCollide(t *testing.T) {
	e := defaultEnv()
	first := ast.Alias("T", ast.Kw("string"))
	second := ast.Alias("T", ast.Kw("number"))
	a1 := analyze(t, e, nil, "a.ts", first)
	a2 := analyze(t, e, nil, "b.ts", second)
	if types.IdOf(first.ID) == types.IdOf(second.ID) {
		t.Fatalf("declarations of two modules share id %s", types.IdOf(first.ID))
	}
	expectType(t, findType(t, a1, first.ID), types.String)
	expectType(t, findType(t, a2, second.ID), types.Number)
	if c, err := a1.FindType(types.IdOf(second.ID)); err != nil || c != nil {
		t.Fatalf("module a sees b's T: %v, %v", c, err)
	}
	if keys := e.Global().Keys(); len(keys) != 0 {
		t.Fatalf("global storage gained keys %v", keys)
	}
}

func TestSelfAliasReportedOnce(t *testing.T) {
	decl := ast.Alias("T", ast.Ref("T"))
	a := analyze(t, defaultEnv(), nil, "main.ts", decl)
	if got := countCode(a, CodeCircularAlias); got != 1 {
		t.Fatalf("circular diagnostics = %d, want 1 (%v)", got, a.Diagnostics())
	}
	if got := findType(t, a, decl.ID); !types.IsError(got) {
		t.Fatalf("T = %s, want error placeholder", printType(got))
	}
	// asking again does not report again
	findType(t, a, decl.ID)
	if got := countCode(a, CodeCircularAlias); got != 1 {
		t.Fatalf("circular diagnostics after lookup = %d, want 1", got)
	}
}

func TestMutualAliasCycle(t *testing.T) {
	first := ast.Alias("A", ast.Ref("B"))
	second := ast.Alias("B", ast.Ref("A"))
	a := analyze(t, defaultEnv(), nil, "main.ts", first, second)
	if got := countCode(a, CodeCircularAlias); got == 0 {
		t.Fatalf("no circular diagnostic for A = B, B = A")
	}
	if got := findType(t, a, first.ID); !types.IsError(got) {
		t.Fatalf("A = %s, want error placeholder", printType(got))
	}
}

func TestIndexedAccessCycle(t *testing.T) {
	iface := func() *ast.InterfaceDeclaration {
		return ast.Iface("I", ast.Prop("x", ast.Ref("T")), ast.Prop("y", ast.Kw("string")))
	}
	tests := []struct {
		name  string
		iface bool
	}{
		{name: "interface first", iface: true},
		{name: "alias first"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			alias := ast.Alias("T", ast.Index(ast.Ref("I"), ast.LitStr("x")))
			u := ast.Alias("U", ast.Index(ast.Ref("T"), ast.LitStr("y")))
			body := []ast.Statement{alias, iface(), u}
			if tc.iface {
				body = []ast.Statement{iface(), alias, u}
			}
			a := analyze(t, defaultEnv(), nil, "main.ts", body...)
			if got := countCode(a, CodeCircularAlias); got != 1 {
				t.Fatalf("circular diagnostics = %d, want 1 (%v)", got, a.Diagnostics())
			}
			if got := countCode(a, CodePropertyMissing); got != 0 {
				t.Fatalf("unexpected missing property diagnostics: %v", a.Diagnostics())
			}
			if got := findType(t, a, alias.ID); !types.IsError(got) {
				t.Fatalf("T = %s, want error placeholder", printType(got))
			}
			if got := findType(t, a, u.ID); !types.IsError(got) {
				t.Fatalf("U = %s, want error placeholder", printType(got))
			}
		})
	}

	sibling := ast.Alias("T", ast.Index(ast.Ref("I"), ast.LitStr("y")))
	a := analyze(t, defaultEnv(), nil, "main.ts", sibling, iface())
	expectNoDiagnostics(t, a)
	expectType(t, findType(t, a, sibling.ID), types.String)
}

func TestRecursiveShapesAreLegal(t *testing.T) {
	list := ast.Alias("List", ast.Obj(
		ast.Prop("value", ast.Kw("number")),
		ast.Prop("next", ast.Union(ast.Ref("List"), ast.Kw("null"))),
	))
	json := ast.Alias("Json", ast.Union(
		ast.Kw("string"),
		ast.Kw("number"),
		ast.ArrT(ast.Ref("Json")),
		ast.Obj(ast.IndexSig(ast.Kw("string"), ast.Ref("Json"))),
	))
	tree := ast.Iface("Tree", ast.Prop("children", ast.ArrT(ast.Ref("Tree"))))
	a := analyze(t, defaultEnv(), nil, "main.ts", list, json, tree)
	expectNoDiagnostics(t, a)

	lit, ok := findType(t, a, list.ID).(*types.TypeLit)
	if !ok {
		t.Fatalf("List = %T, want *types.TypeLit", findType(t, a, list.ID))
	}
	next, _ := types.PropertyOf(lit.Members, "next")
	want := types.NewUnion(&types.Ref{Name: types.IdOf(list.ID)}, types.Null)
	expectType(t, next, want)
}

func TestGenericRecursiveAliasStaysSymbolic(t *testing.T) {
	tree := ast.Alias("Tree", ast.Obj(
		ast.Prop("value", ast.Ref("T")),
		ast.Prop("children", ast.ArrT(ast.Ref("Tree", ast.Ref("T")))),
	), ast.TParam("T"))
	n := ast.Alias("N", ast.Ref("Tree", ast.Kw("number")))
	a := analyze(t, defaultEnv(), nil, "main.ts", tree, n)
	expectNoDiagnostics(t, a)

	lit, ok := findType(t, a, n.ID).(*types.TypeLit)
	if !ok {
		t.Fatalf("N = %s, want an object type", printType(findType(t, a, n.ID)))
	}
	value, _ := types.PropertyOf(lit.Members, "value")
	expectType(t, value, types.Number)
	children, _ := types.PropertyOf(lit.Members, "children")
	expectType(t, children, types.NewArray(&types.Ref{Name: types.IdOf(tree.ID), Args: []types.Type{types.Number}}))
}

func chain(n int) ([]ast.Statement, []*ast.TypeAliasDeclaration) {
	stmts := make([]ast.Statement, 0, n+1)
	decls := make([]*ast.TypeAliasDeclaration, 0, n+1)
	for i := 0; i < n; i++ {
		d := ast.Alias(fmt.Sprintf("T%d", i), ast.Ref(fmt.Sprintf("T%d", i+1)))
		stmts = append(stmts, d)
		decls = append(decls, d)
	}
	last := ast.Alias(fmt.Sprintf("T%d", n), ast.Kw("number"))
	return append(stmts, last), append(decls, last)
}

func TestDepthGuardFailsFindType(t *testing.T) {
	stmts, decls := chain(40)
	a, mod := prepare(defaultEnv(), Config{MaxDepth: 10}, nil, "main.ts", stmts...)
	a.declareStatements(a.Storage(), mod.Body)

	id := types.IdOf(decls[0].ID)
	_, err := a.FindType(id)
	if !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("FindType(T0) error = %v, want ErrDepthExceeded", err)
	}
	for _, d := range decls {
		e, ok := a.Storage().LookupLocal(types.IdOf(d.ID))
		if ok && e.State == storage.StateInProgress {
			t.Fatalf("%s left in progress after depth failure", d.ID.Name)
		}
	}
	if a.depth != 0 || len(a.frames) != 0 {
		t.Fatalf("depth = %d, frames = %d after failure, want 0, 0", a.depth, len(a.frames))
	}
}

func TestDepthGuardBecomesDiagnostic(t *testing.T) {
	stmts, decls := chain(40)
	a, mod := prepare(defaultEnv(), Config{MaxDepth: 10}, nil, "main.ts", stmts...)
	if err := a.VisitModule(mod); err != nil {
		t.Fatalf("VisitModule error = %v, want recovery", err)
	}
	if countCode(a, CodeDepthExceeded) == 0 {
		t.Fatalf("no depth diagnostic recorded: %v", a.Diagnostics())
	}
	if got := findType(t, a, decls[0].ID); !types.IsError(got) {
		t.Fatalf("T0 = %s, want error placeholder", printType(got))
	}
	expectType(t, findType(t, a, decls[len(decls)-2].ID), types.Number)
}

func TestUnknownNames(t *testing.T) {
	a := analyze(t, defaultEnv(), nil, "main.ts",
		ast.Alias("A", ast.Ref("Missing")),
		ast.Const("v", nil, ast.Num("1")),
		ast.Alias("B", ast.Ref("v")),
	)
	if got := countCode(a, CodeNameNotFound); got != 1 {
		t.Fatalf("name-not-found diagnostics = %d, want 1 (%v)", got, a.Diagnostics())
	}
	if got := countCode(a, CodeValueAsType); got != 1 {
		t.Fatalf("value-as-type diagnostics = %d, want 1 (%v)", got, a.Diagnostics())
	}
}

func TestTypeofQueries(t *testing.T) {
	c := ast.Alias("C", ast.TypeOf("c"))
	l := ast.Alias("L", ast.TypeOf("l"))
	o := ast.Alias("O", ast.TypeOf("o", "x"))
	a := analyze(t, defaultEnv(), nil, "main.ts",
		ast.Const("c", nil, ast.Num("1")),
		ast.Let("l", nil, ast.Num("1")),
		ast.Const("o", nil, ast.ObjLit(ast.Field("x", ast.Str("s")))),
		c, l, o,
	)
	expectNoDiagnostics(t, a)
	expectType(t, findType(t, a, c.ID), types.NumberLit("1"))
	expectType(t, findType(t, a, l.ID), types.Number)
	expectType(t, findType(t, a, o.ID), types.String)
}

func TestAsConstKeepsLiterals(t *testing.T) {
	tuple := ast.NewAsExpression(ast.Arr(ast.Str("a"), ast.Num("1")), nil)
	tuple.Const = true
	q := ast.Alias("Q", ast.TypeOf("xs"))
	a := analyze(t, defaultEnv(), nil, "main.ts",
		ast.Const("xs", nil, tuple),
		q,
	)
	expectNoDiagnostics(t, a)
	want := &types.Operator{Op: types.OpReadonly, Type: &types.Tuple{Elems: []types.TupleElem{
		{Type: types.StringLit("a")},
		{Type: types.NumberLit("1")},
	}}}
	expectType(t, findType(t, a, q.ID), want)
}

func TestInitializerAssignability(t *testing.T) {
	strict := newEnv(env.Rule{StrictNullChecks: true}, env.Latest())
	loose := defaultEnv()
	body := func() []ast.Statement {
		return []ast.Statement{
			ast.Const("n", ast.Kw("number"), ast.Str("a")),
			ast.Const("m", ast.Kw("number"), ast.Null()),
			ast.Const("ok", ast.Union(ast.Kw("string"), ast.Kw("number")), ast.Num("2")),
		}
	}
	if got := countCode(analyze(t, loose, nil, "loose.ts", body()...), CodeNotAssignable); got != 1 {
		t.Fatalf("loose not-assignable diagnostics = %d, want 1", got)
	}
	if got := countCode(analyze(t, strict, nil, "strict.ts", body()...), CodeNotAssignable); got != 2 {
		t.Fatalf("strict not-assignable diagnostics = %d, want 2", got)
	}
}

func TestEnumMembers(t *testing.T) {
	b := ast.Alias("B", ast.QRef("E", "B"))
	a := analyze(t, defaultEnv(), nil, "main.ts",
		ast.Enum("E", "A", "B"),
		b,
	)
	expectNoDiagnostics(t, a)
	expectType(t, findType(t, a, b.ID), types.NumberLit("1"))
}

func TestNamespaceMembers(t *testing.T) {
	ns := ast.Namespace("NS",
		ast.Export(ast.Iface("I", ast.Prop("a", ast.Kw("string")))),
		ast.Iface("Hidden"),
	)
	ok := ast.Alias("A", ast.QRef("NS", "I"))
	a := analyze(t, defaultEnv(), nil, "main.ts",
		ns,
		ok,
		ast.Alias("B", ast.QRef("NS", "Hidden")),
		ast.Alias("C", ast.Ref("NS")),
	)
	ref, isRef := findType(t, a, ok.ID).(*types.Ref)
	if !isRef || ref.Name.Sym != "I" {
		t.Fatalf("A = %s, want a reference to I", printType(findType(t, a, ok.ID)))
	}
	if got := countCode(a, CodeNamespaceMember); got != 1 {
		t.Fatalf("namespace member diagnostics = %d, want 1 (%v)", got, a.Diagnostics())
	}
	if got := countCode(a, CodeNamespaceAsType); got != 1 {
		t.Fatalf("namespace-as-type diagnostics = %d, want 1 (%v)", got, a.Diagnostics())
	}
}

func TestBigIntTargetGate(t *testing.T) {
	old := analyze(t, newEnv(env.Rule{}, env.ES2015), nil, "old.ts", ast.Alias("B", ast.LitBigInt("10n")))
	if got := countCode(old, CodeBigIntTarget); got != 1 {
		t.Fatalf("ES2015 bigint diagnostics = %d, want 1", got)
	}
	current := analyze(t, newEnv(env.Rule{}, env.ES2020), nil, "new.ts", ast.Alias("B", ast.LitBigInt("10n")))
	expectNoDiagnostics(t, current)
}

func TestHeritageCycle(t *testing.T) {
	a := analyze(t, defaultEnv(), nil, "main.ts",
		ast.IfaceG("A", nil, []*ast.TypeReference{ast.Ref("B")}),
		ast.IfaceG("B", nil, []*ast.TypeReference{ast.Ref("A")}),
	)
	if got := countCode(a, CodeCircularBase); got == 0 {
		t.Fatalf("no circular base diagnostic: %v", a.Diagnostics())
	}
}

func TestFunctionScopes(t *testing.T) {
	inner := ast.Alias("Inner", ast.Ref("T"))
	fn := ast.Func("f", ast.Sig([]*ast.TypeParameter{ast.TParam("T")}, ast.Ref("T"), ast.Param("x", ast.Ref("T"))),
		inner,
	)
	q := ast.Alias("F", ast.TypeOf("f"))
	a := analyze(t, defaultEnv(), nil, "main.ts", fn, q)
	expectNoDiagnostics(t, a)
	if _, ok := findType(t, a, inner.ID).(*types.Param); !ok {
		t.Fatalf("Inner = %s, want the type parameter", printType(findType(t, a, inner.ID)))
	}
	f, ok := findType(t, a, q.ID).(*types.Function)
	if !ok || len(f.TypeParams) != 1 || len(f.Params) != 1 {
		t.Fatalf("typeof f = %s, want <T>(x: T) => T", printType(findType(t, a, q.ID)))
	}
}

func TestFindVar(t *testing.T) {
	decl := ast.Const("x", ast.Kw("string"), nil)
	a := analyze(t, defaultEnv(), nil, "main.ts", decl)
	got, ok := a.FindVar(types.IdOf(decl.Declarators[0].ID))
	if !ok {
		t.Fatalf("FindVar(x) not found")
	}
	expectType(t, got, types.String)
	if _, ok := a.FindVar(types.NewId("missing", ast.NoMark)); ok {
		t.Fatalf("FindVar(missing) found a binding")
	}
}
