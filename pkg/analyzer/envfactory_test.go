package analyzer

import (
	"testing"

	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/builtins"
	"github.com/devgony/stc/pkg/env"
	"github.com/devgony/stc/pkg/types"
)

func TestBuiltinStorageIsShared(t *testing.T) {
	loose, err := SimpleFromNames(env.Rule{}, env.ES5, env.ModuleES2015, []string{"es5"})
	if err != nil {
		t.Fatalf("SimpleFromNames error = %v", err)
	}
	strict, err := SimpleFromNames(env.StrictRule(), env.ESNext, env.ModuleNone, []string{"es5", "es5"})
	if err != nil {
		t.Fatalf("SimpleFromNames error = %v", err)
	}
	if loose.Global() != strict.Global() {
		t.Fatalf("envs over the same libs built two global storages")
	}
	if !loose.Global().Frozen() {
		t.Fatalf("global storage is not frozen")
	}
	if strict.Rule() != env.StrictRule() {
		t.Fatalf("env rule = %+v, want strict", strict.Rule())
	}
}

func TestBuiltinArrayMembers(t *testing.T) {
	e, err := SimpleFromNames(env.StrictRule(), env.ESNext, env.ModuleES2015, []string{"es5"})
	if err != nil {
		t.Fatalf("SimpleFromNames error = %v", err)
	}
	length := ast.Alias("L", ast.Index(ast.Ref("Array", ast.Kw("string")), ast.LitStr("length")))
	tupleLen := ast.Alias("TL", ast.Index(ast.Tuple(ast.Kw("string"), ast.Kw("number")), ast.LitStr("length")))
	a := analyze(t, e, nil, "main.ts", length, tupleLen)
	expectNoDiagnostics(t, a)
	expectType(t, findType(t, a, length.ID), types.Number)
	expectType(t, findType(t, a, tupleLen.ID), types.NumberLit("2"))
}

func TestUnknownLibFails(t *testing.T) {
	if _, err := SimpleFromNames(env.Rule{}, env.ESNext, env.ModuleES2015, []string{"es1999"}); err == nil {
		t.Fatalf("SimpleFromNames(es1999) succeeded, want an unknown lib error")
	}
}

func TestSimpleDeduplicatesLibs(t *testing.T) {
	libs, err := builtins.LoadAll([]string{"es5"})
	if err != nil {
		t.Fatalf("LoadAll error = %v", err)
	}
	e1, err := Simple(env.Rule{}, env.ESNext, env.ModuleES2015, libs)
	if err != nil {
		t.Fatalf("Simple error = %v", err)
	}
	e2, err := Simple(env.Rule{}, env.ESNext, env.ModuleES2015, append(libs, libs...))
	if err != nil {
		t.Fatalf("Simple error = %v", err)
	}
	if e1.Global() != e2.Global() {
		t.Fatalf("duplicate libs built a second global storage")
	}
}
