package hygiene

import (
	"testing"

	"github.com/devgony/stc/pkg/ast"
)

func apply(body ...ast.Statement) (*ast.Module, ast.Mark, ast.Mark) {
	mod := ast.Mod("main.ts", body...)
	unresolved := ast.NewMark()
	top := ast.NewMark()
	Apply(mod, unresolved, top)
	return mod, unresolved, top
}

func TestForwardReferenceGetsTopLevelMark(t *testing.T) {
	ref := ast.Ref("B")
	_, _, top := apply(
		ast.Alias("A", ref),
		ast.Alias("B", ast.Kw("number")),
	)
	if ref.Name.Mark != top {
		t.Fatalf("forward reference mark = %v, want %v", ref.Name.Mark, top)
	}
}

func TestUnknownNameGetsUnresolvedMark(t *testing.T) {
	ref := ast.Ref("Array", ast.Kw("string"))
	_, unresolved, _ := apply(ast.Alias("A", ref))
	if ref.Name.Mark != unresolved {
		t.Fatalf("global reference mark = %v, want %v", ref.Name.Mark, unresolved)
	}
}

func TestBlockShadowingUsesFreshMark(t *testing.T) {
	outerRef := ast.Ref("T")
	innerRef := ast.Ref("T")
	inner := ast.Alias("T", ast.Kw("string"))
	block := ast.Block(inner, ast.Alias("U", innerRef))
	_, _, top := apply(
		ast.Alias("T", ast.Kw("number")),
		ast.Alias("V", outerRef),
		block,
	)
	if outerRef.Name.Mark != top {
		t.Fatalf("outer ref mark = %v, want %v", outerRef.Name.Mark, top)
	}
	if innerRef.Name.Mark == top {
		t.Fatalf("inner ref resolved to the shadowed outer declaration")
	}
	if innerRef.Name.Mark != inner.ID.Mark {
		t.Fatalf("inner ref mark = %v, want %v", innerRef.Name.Mark, inner.ID.Mark)
	}
	if block.ScopeMark != inner.ID.Mark {
		t.Fatalf("block scope mark = %v, want %v", block.ScopeMark, inner.ID.Mark)
	}
	if block.ScopeMark.Parent() != top {
		t.Fatalf("block scope parent = %v, want %v", block.ScopeMark.Parent(), top)
	}
}

func TestTypeParametersAreScoped(t *testing.T) {
	tp := ast.TParam("T")
	use := ast.Ref("T")
	outside := ast.Ref("T")
	_, unresolved, top := apply(
		ast.Alias("Box", ast.Obj(ast.Prop("value", use)), tp),
		ast.Alias("Other", outside),
	)
	if use.Name.Mark != tp.ID.Mark {
		t.Fatalf("type param use mark = %v, want %v", use.Name.Mark, tp.ID.Mark)
	}
	if tp.ID.Mark == top {
		t.Fatalf("type parameter shares the module mark")
	}
	if outside.Name.Mark != unresolved {
		t.Fatalf("type param leaked outside its declaration: mark %v", outside.Name.Mark)
	}
}

func TestInferBindsInTrueBranchOnly(t *testing.T) {
	infer := ast.Infer("R")
	inTrue := ast.Ref("R")
	inFalse := ast.Ref("R")
	_, unresolved, _ := apply(
		ast.Alias("Ret", ast.Cond(ast.Ref("F"), ast.FnT(infer), inTrue, inFalse), ast.TParam("F")),
	)
	if inTrue.Name.Mark != infer.Param.ID.Mark {
		t.Fatalf("true branch mark = %v, want %v", inTrue.Name.Mark, infer.Param.ID.Mark)
	}
	if inFalse.Name.Mark != unresolved {
		t.Fatalf("false branch mark = %v, want unresolved %v", inFalse.Name.Mark, unresolved)
	}
}

func TestMappedParameterScope(t *testing.T) {
	use := ast.Ref("K")
	m := ast.Mapped("K", ast.KeyOf(ast.Ref("T")), use)
	apply(ast.Alias("Keys", m, ast.TParam("T")))
	if use.Name.Mark != m.Param.ID.Mark {
		t.Fatalf("mapped param use mark = %v, want %v", use.Name.Mark, m.Param.ID.Mark)
	}
}

func TestTypeAndValueNamespacesAreSeparate(t *testing.T) {
	query := ast.TypeOf("x")
	ref := ast.Ref("x")
	_, unresolved, top := apply(
		ast.Const("x", nil, ast.Num("1")),
		ast.Alias("A", query),
		ast.Alias("B", ref),
	)
	if query.Name.Mark != top {
		t.Fatalf("typeof mark = %v, want %v", query.Name.Mark, top)
	}
	if ref.Name.Mark != unresolved {
		t.Fatalf("type ref to a value mark = %v, want unresolved", ref.Name.Mark)
	}
}

func TestNamespaceScope(t *testing.T) {
	inner := ast.Alias("Inner", ast.Kw("string"))
	ns := ast.Namespace("NS", inner)
	_, _, top := apply(ns)
	if ns.ID.Mark != top {
		t.Fatalf("namespace id mark = %v, want %v", ns.ID.Mark, top)
	}
	if inner.ID.Mark != ns.ScopeMark || ns.ScopeMark == top {
		t.Fatalf("namespace member mark = %v, scope %v", inner.ID.Mark, ns.ScopeMark)
	}
}

func TestBuiltinModulesShareUnresolvedMark(t *testing.T) {
	unresolved := ast.NewMark()
	lib := ast.Mod("lib.d.ts", ast.Iface("Array"))
	Apply(lib, unresolved, unresolved)

	ref := ast.Ref("Array")
	user := ast.Mod("main.ts", ast.Alias("A", ref))
	Apply(user, unresolved, ast.NewMark())

	if lib.Body[0].(*ast.InterfaceDeclaration).ID.Mark != ref.Name.Mark {
		t.Fatalf("builtin declaration and user reference marks differ")
	}
}
