package analyzer

import (
	"testing"

	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/env"
	"github.com/devgony/stc/pkg/types"
)

func TestGenericAliasInstantiation(t *testing.T) {
	box := ast.Alias("B", ast.Ref("Box", ast.Kw("string")))
	a := analyze(t, defaultEnv(), nil, "main.ts",
		ast.Alias("Box", ast.Obj(ast.Prop("value", ast.Ref("T"))), ast.TParam("T")),
		box,
	)
	expectNoDiagnostics(t, a)
	lit, ok := findType(t, a, box.ID).(*types.TypeLit)
	if !ok {
		t.Fatalf("Box<string> = %s, want an object type", printType(findType(t, a, box.ID)))
	}
	value, ok := types.PropertyOf(lit.Members, "value")
	if !ok {
		t.Fatalf("Box<string> has no value property")
	}
	expectType(t, value, types.String)
}

func TestTypeParameterDefault(t *testing.T) {
	param := ast.TParam("T")
	param.Default = ast.Kw("string")
	d := ast.Alias("D", ast.Ref("Box"))
	a := analyze(t, defaultEnv(), nil, "main.ts",
		ast.Alias("Box", ast.Obj(ast.Prop("value", ast.Ref("T"))), param),
		d,
	)
	expectNoDiagnostics(t, a)
	lit, ok := findType(t, a, d.ID).(*types.TypeLit)
	if !ok {
		t.Fatalf("Box = %s, want an object type", printType(findType(t, a, d.ID)))
	}
	value, _ := types.PropertyOf(lit.Members, "value")
	expectType(t, value, types.String)
}

func TestGenericArity(t *testing.T) {
	a := analyze(t, defaultEnv(), nil, "main.ts",
		ast.Alias("Pair", ast.Tuple(ast.Ref("A"), ast.Ref("B")), ast.TParam("A"), ast.TParam("B")),
		ast.Alias("P", ast.Ref("Pair", ast.Kw("string"))),
		ast.Alias("N", ast.Kw("number")),
		ast.Alias("Q", ast.Ref("N", ast.Kw("string"))),
	)
	if got := countCode(a, CodeGenericArity); got != 1 {
		t.Fatalf("arity diagnostics = %d, want 1 (%v)", got, a.Diagnostics())
	}
	if got := countCode(a, CodeNotGeneric); got != 1 {
		t.Fatalf("not-generic diagnostics = %d, want 1 (%v)", got, a.Diagnostics())
	}
}

func TestDistributiveConditional(t *testing.T) {
	nonNull := ast.Alias("NonNull",
		ast.Cond(ast.Ref("T"), ast.Union(ast.Kw("null"), ast.Kw("undefined")), ast.Kw("never"), ast.Ref("T")),
		ast.TParam("T"),
	)
	s := ast.Alias("S", ast.Ref("NonNull", ast.Union(ast.Kw("string"), ast.Kw("null"), ast.Kw("undefined"))))
	a := analyze(t, newEnv(env.Rule{StrictNullChecks: true}, env.Latest()), nil, "main.ts", nonNull, s)
	expectNoDiagnostics(t, a)
	expectType(t, findType(t, a, s.ID), types.String)
}

func TestConditionalInfer(t *testing.T) {
	rest := ast.Param("args", ast.ArrT(ast.Kw("any")))
	rest.Rest = true
	ret := ast.Alias("Ret",
		ast.Cond(ast.Ref("F"), ast.FnT(ast.Infer("R"), rest), ast.Ref("R"), ast.Kw("never")),
		ast.TParam("F"),
	)
	r := ast.Alias("R", ast.Ref("Ret", ast.FnT(ast.Kw("number"))))
	n := ast.Alias("N", ast.Ref("Ret", ast.Kw("string")))
	a := analyze(t, defaultEnv(), nil, "main.ts", ret, r, n)
	expectNoDiagnostics(t, a)
	expectType(t, findType(t, a, r.ID), types.Number)
	expectType(t, findType(t, a, n.ID), types.Never)
}

func TestKeyofInterface(t *testing.T) {
	k := ast.Alias("K", ast.KeyOf(ast.Ref("P")))
	a := analyze(t, defaultEnv(), nil, "main.ts",
		ast.Iface("P", ast.Prop("a", ast.Kw("string")), ast.Prop("b", ast.Kw("number"))),
		k,
	)
	expectNoDiagnostics(t, a)
	expectType(t, findType(t, a, k.ID), types.NewUnion(types.StringLit("a"), types.StringLit("b")))
}

func TestPartialMappedType(t *testing.T) {
	mapped := ast.Mapped("K", ast.KeyOf(ast.Ref("T")), ast.Index(ast.Ref("T"), ast.Ref("K")))
	mapped.Optional = ast.MappedModifierAdd
	r := ast.Alias("R", ast.Ref("Partial", ast.Ref("P")))
	a := analyze(t, defaultEnv(), nil, "main.ts",
		ast.Iface("P", ast.Prop("a", ast.Kw("string")), ast.OptProp("b", ast.Kw("number"))),
		ast.Alias("Partial", mapped, ast.TParam("T")),
		r,
	)
	expectNoDiagnostics(t, a)
	lit, ok := findType(t, a, r.ID).(*types.TypeLit)
	if !ok {
		t.Fatalf("Partial<P> = %s, want an object type", printType(findType(t, a, r.ID)))
	}
	for _, key := range []string{"a", "b"} {
		prop, ok := types.FindMember(lit.Members, key).(*types.Property)
		if !ok {
			t.Fatalf("Partial<P> lacks property %s", key)
		}
		if !prop.Optional {
			t.Fatalf("Partial<P>.%s is required, want optional", key)
		}
	}
	a1, _ := types.FindMember(lit.Members, "a").(*types.Property)
	expectType(t, a1.Type, types.String)
}

func TestIndexedAccess(t *testing.T) {
	ok := ast.Alias("A", ast.Index(ast.Ref("P"), ast.LitStr("a")))
	both := ast.Alias("AB", ast.Index(ast.Ref("P"), ast.Union(ast.LitStr("a"), ast.LitStr("b"))))
	elem := ast.Alias("E", ast.Index(ast.ArrT(ast.Kw("boolean")), ast.Kw("number")))
	a := analyze(t, defaultEnv(), nil, "main.ts",
		ast.Iface("P", ast.Prop("a", ast.Kw("string")), ast.Prop("b", ast.Kw("number"))),
		ok, both, elem,
		ast.Alias("C", ast.Index(ast.Ref("P"), ast.LitStr("c"))),
	)
	expectType(t, findType(t, a, ok.ID), types.String)
	expectType(t, findType(t, a, both.ID), types.NewUnion(types.String, types.Number))
	expectType(t, findType(t, a, elem.ID), types.Boolean)
	if got := countCode(a, CodePropertyMissing); got != 1 {
		t.Fatalf("missing property diagnostics = %d, want 1 (%v)", got, a.Diagnostics())
	}
}

func TestConditionalStaysDeferredInsideGeneric(t *testing.T) {
	isStr := ast.Alias("IsStr",
		ast.Cond(ast.Ref("T"), ast.Kw("string"), ast.LitBool(true), ast.LitBool(false)),
		ast.TParam("T"),
	)
	wrap := ast.Alias("Wrap", ast.Obj(ast.Prop("flag", ast.Ref("IsStr", ast.Ref("T")))), ast.TParam("T"))
	w := ast.Alias("W", ast.Ref("Wrap", ast.LitStr("x")))
	a := analyze(t, defaultEnv(), nil, "main.ts", isStr, wrap, w)
	expectNoDiagnostics(t, a)
	lit, ok := findType(t, a, w.ID).(*types.TypeLit)
	if !ok {
		t.Fatalf("Wrap<'x'> = %s, want an object type", printType(findType(t, a, w.ID)))
	}
	flag, _ := types.PropertyOf(lit.Members, "flag")
	got, err := a.expand(flag)
	if err != nil {
		t.Fatalf("expand(flag) error = %v", err)
	}
	expectType(t, got, types.BoolLit(true))
}

func TestAssignabilityOfFunctions(t *testing.T) {
	narrow := &types.Function{Params: []types.FnParam{{Name: "x", Type: types.String}}, Ret: types.Void}
	wide := &types.Function{Params: []types.FnParam{{Name: "x", Type: types.NewUnion(types.String, types.Number)}}, Ret: types.Void}

	strict := analyze(t, newEnv(env.StrictRule(), env.Latest()), nil, "strict.ts")
	loose := analyze(t, defaultEnv(), nil, "loose.ts")

	cases := []struct {
		name     string
		a        *Analyzer
		src, dst types.Type
		want     bool
	}{
		{"wide to narrow", strict, wide, narrow, true},
		{"narrow to wide strict", strict, narrow, wide, false},
		{"narrow to wide bivariant", loose, narrow, wide, true},
		{
			"methods stay bivariant",
			strict,
			&types.TypeLit{Members: []types.Member{&types.Method{Key: "m", Fn: narrow}}},
			&types.TypeLit{Members: []types.Member{&types.Method{Key: "m", Fn: wide}}},
			true,
		},
		{"void return accepts any return", strict, &types.Function{Ret: types.Number}, &types.Function{Ret: types.Void}, true},
		{"fewer params", strict, &types.Function{Ret: types.Void}, narrow, true},
	}
	for _, tc := range cases {
		got, err := tc.a.IsAssignable(tc.src, tc.dst)
		if err != nil {
			t.Fatalf("%s: IsAssignable error = %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: IsAssignable(%s, %s) = %v, want %v", tc.name, printType(tc.src), printType(tc.dst), got, tc.want)
		}
	}
}

func TestAssignabilityOfObjects(t *testing.T) {
	a := analyze(t, newEnv(env.StrictRule(), env.Latest()), nil, "main.ts")
	point := &types.TypeLit{Members: []types.Member{
		&types.Property{Key: "x", Type: types.Number},
		&types.Property{Key: "y", Type: types.Number, Optional: true},
	}}
	cases := []struct {
		name string
		src  types.Type
		want bool
	}{
		{"exact", &types.TypeLit{Members: []types.Member{&types.Property{Key: "x", Type: types.NumberLit("1")}}}, true},
		{"extra property", &types.TypeLit{Members: []types.Member{
			&types.Property{Key: "x", Type: types.Number},
			&types.Property{Key: "z", Type: types.String},
		}}, true},
		{"missing required", &types.TypeLit{}, false},
		{"wrong type", &types.TypeLit{Members: []types.Member{&types.Property{Key: "x", Type: types.String}}}, false},
		{"any", types.Any, true},
		{"never", types.Never, true},
		{"null under strict", types.Null, false},
	}
	for _, tc := range cases {
		got, err := a.IsAssignable(tc.src, point)
		if err != nil {
			t.Fatalf("%s: IsAssignable error = %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: IsAssignable(%s, %s) = %v, want %v", tc.name, printType(tc.src), printType(point), got, tc.want)
		}
	}
}

func TestAssignabilityOfRecursiveInterfaces(t *testing.T) {
	tree := ast.Iface("Tree", ast.Prop("children", ast.ArrT(ast.Ref("Tree"))))
	node := ast.Iface("Node", ast.Prop("children", ast.ArrT(ast.Ref("Node"))))
	a := analyze(t, defaultEnv(), nil, "main.ts", tree, node)
	src := &types.Ref{Name: types.IdOf(tree.ID)}
	dst := &types.Ref{Name: types.IdOf(node.ID)}
	got, err := a.IsAssignable(src, dst)
	if err != nil {
		t.Fatalf("IsAssignable error = %v", err)
	}
	if !got {
		t.Fatalf("Tree is not assignable to Node")
	}
}
