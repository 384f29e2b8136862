package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devgony/stc/pkg/ast"
)

func parseSource(t *testing.T, path, src string) *ast.Module {
	t.Helper()
	p, err := NewModuleParser()
	require.NoError(t, err)
	t.Cleanup(p.Close)
	mod, err := p.ParseModule(path, []byte(src))
	require.NoError(t, err)
	return mod
}

func aliasType(t *testing.T, stmt ast.Statement) ast.TypeExpression {
	t.Helper()
	alias, ok := stmt.(*ast.TypeAliasDeclaration)
	require.True(t, ok, "expected type alias, got %T", stmt)
	return alias.Type
}

func TestParseModuleTypeAliases(t *testing.T) {
	mod := parseSource(t, "a.ts", "type A = number;\ntype B = A;\n")
	require.Len(t, mod.Body, 2)
	assert.False(t, mod.IsDTS)

	first := mod.Body[0].(*ast.TypeAliasDeclaration)
	assert.Equal(t, "A", first.ID.Name)
	assert.Equal(t, "number", first.Type.(*ast.KeywordType).Keyword)
	assert.Equal(t, 1, first.Span().Start.Line)

	ref := aliasType(t, mod.Body[1]).(*ast.TypeReference)
	assert.Equal(t, "A", ref.Name.Name)
	assert.Equal(t, 2, ref.Span().Start.Line)
}

func TestParseModuleDeclarationFile(t *testing.T) {
	mod := parseSource(t, "lib.d.ts", "declare var x: string;\ndeclare function f(a: number, b?: string, ...rest: boolean[]): void;\n")
	assert.True(t, mod.IsDTS)
	require.Len(t, mod.Body, 2)

	v := mod.Body[0].(*ast.VariableDeclaration)
	assert.True(t, v.Declare)
	assert.Equal(t, ast.VarKindVar, v.Kind)

	fn := mod.Body[1].(*ast.FunctionDeclaration)
	assert.True(t, fn.Declare)
	require.Len(t, fn.Signature.Params, 3)
	assert.True(t, fn.Signature.Params[1].Optional)
	assert.True(t, fn.Signature.Params[2].Rest)
	assert.Equal(t, "rest", fn.Signature.Params[2].ID.Name)
	assert.Equal(t, "void", fn.Signature.ReturnType.(*ast.KeywordType).Keyword)
}

func TestParseInterfaceMembers(t *testing.T) {
	src := `interface Box<T extends object = {}> extends Base<T>, Other {
  readonly value: T;
  label?: string;
  get(key: string): T;
  (x: number): string;
  new (x: number): Box<T>;
  [key: string]: unknown;
}`
	mod := parseSource(t, "box.ts", src)
	iface := mod.Body[0].(*ast.InterfaceDeclaration)
	require.Len(t, iface.TypeParams, 1)
	assert.NotNil(t, iface.TypeParams[0].Constraint)
	assert.NotNil(t, iface.TypeParams[0].Default)
	require.Len(t, iface.Extends, 2)
	assert.Equal(t, "Base", iface.Extends[0].Name.Name)
	require.Len(t, iface.Extends[0].TypeArgs, 1)

	require.Len(t, iface.Body, 6)
	value := iface.Body[0].(*ast.PropertySignature)
	assert.True(t, value.Readonly)
	assert.False(t, value.Optional)
	assert.True(t, iface.Body[1].(*ast.PropertySignature).Optional)
	assert.Equal(t, "get", iface.Body[2].(*ast.MethodSignature).Key)
	assert.IsType(t, &ast.CallSignature{}, iface.Body[3])
	ctor := iface.Body[4].(*ast.ConstructSignature)
	assert.IsType(t, &ast.TypeReference{}, ctor.Signature.ReturnType)
	index := iface.Body[5].(*ast.IndexSignature)
	assert.Equal(t, "key", index.ParamName)
}

func TestParseTypeForms(t *testing.T) {
	src := `type U = "a" | 'b' | 1 | -2 | 10n | true | null | undefined;
type I = A & B & C;
type F = <T>(x: T) => T[];
type C = abstract new () => object;
type Tup = [a: string, b?: number, ...rest: boolean[]];
type K = keyof T;
type R = readonly string[];
type X = T["k"];
type Cond<T> = T extends (infer U)[] ? U : never;
type Q = typeof ns.value;
type P = (string);
type N = A.B.C<number>;
type S = unique symbol;
type Tpl = ` + "`x${string}`" + `;`
	mod := parseSource(t, "forms.ts", src)
	require.Len(t, mod.Body, 14)

	u := aliasType(t, mod.Body[0]).(*ast.UnionType)
	require.Len(t, u.Types, 8)
	assert.Equal(t, "a", u.Types[0].(*ast.LiteralType).Value)
	assert.Equal(t, "b", u.Types[1].(*ast.LiteralType).Value)
	assert.Equal(t, "-2", u.Types[3].(*ast.LiteralType).Value)
	big := u.Types[4].(*ast.LiteralType)
	assert.Equal(t, ast.LiteralBigInt, big.Kind)
	assert.Equal(t, "10", big.Value)
	assert.Equal(t, "null", u.Types[6].(*ast.KeywordType).Keyword)

	assert.Len(t, aliasType(t, mod.Body[1]).(*ast.IntersectionType).Types, 3)

	fn := aliasType(t, mod.Body[2]).(*ast.FunctionType)
	require.Len(t, fn.Signature.TypeParams, 1)
	assert.IsType(t, &ast.ArrayType{}, fn.Signature.ReturnType)

	assert.True(t, aliasType(t, mod.Body[3]).(*ast.ConstructorType).Abstract)

	tup := aliasType(t, mod.Body[4]).(*ast.TupleType)
	require.Len(t, tup.Elements, 3)
	assert.Equal(t, "a", tup.Elements[0].Label)
	assert.True(t, tup.Elements[1].Optional)
	assert.True(t, tup.Elements[2].Rest)

	assert.Equal(t, ast.TypeOperatorKeyOf, aliasType(t, mod.Body[5]).(*ast.TypeOperator).Op)
	assert.Equal(t, ast.TypeOperatorReadonly, aliasType(t, mod.Body[6]).(*ast.TypeOperator).Op)
	assert.IsType(t, &ast.IndexedAccessType{}, aliasType(t, mod.Body[7]))

	cond := aliasType(t, mod.Body[8]).(*ast.ConditionalType)
	arr := cond.Extends.(*ast.ArrayType)
	infer := arr.Elem.(*ast.ParenthesizedType).Type.(*ast.InferType)
	assert.Equal(t, "U", infer.Param.ID.Name)

	q := aliasType(t, mod.Body[9]).(*ast.TypeQuery)
	assert.Equal(t, "ns", q.Name.Name)
	assert.Equal(t, []string{"value"}, q.Path)

	assert.IsType(t, &ast.ParenthesizedType{}, aliasType(t, mod.Body[10]))

	n := aliasType(t, mod.Body[11]).(*ast.TypeReference)
	assert.Equal(t, "A", n.Name.Name)
	assert.Equal(t, []string{"B", "C"}, n.Path)
	assert.Len(t, n.TypeArgs, 1)

	assert.Equal(t, ast.TypeOperatorUnique, aliasType(t, mod.Body[12]).(*ast.TypeOperator).Op)
	assert.Equal(t, "string", aliasType(t, mod.Body[13]).(*ast.KeywordType).Keyword)
}

func TestParseMappedType(t *testing.T) {
	src := `type M<T> = { readonly [K in keyof T as Uppercase<K>]?: T[K] };
type Req<T> = { -readonly [K in keyof T]-?: T[K] };`
	mod := parseSource(t, "mapped.ts", src)

	m := aliasType(t, mod.Body[0]).(*ast.MappedType)
	assert.Equal(t, "K", m.Param.ID.Name)
	assert.IsType(t, &ast.TypeOperator{}, m.Param.Constraint)
	assert.NotNil(t, m.NameType)
	assert.Equal(t, ast.MappedModifierAdd, m.Optional)
	assert.Equal(t, ast.MappedModifierAdd, m.Readonly)

	req := aliasType(t, mod.Body[1]).(*ast.MappedType)
	assert.Equal(t, ast.MappedModifierRemove, req.Optional)
	assert.Equal(t, ast.MappedModifierRemove, req.Readonly)
	assert.Nil(t, req.NameType)
}

func TestParseClassAndEnum(t *testing.T) {
	src := `abstract class Foo<T> extends Base<T> implements I, J {
  static count: number = 0;
  name?: string;
  constructor(x: T) {}
  value(): T { return this.x; }
}
const enum Color { Red, Green = "g", Blue = 4 }`
	mod := parseSource(t, "class.ts", src)
	class := mod.Body[0].(*ast.ClassDeclaration)
	assert.True(t, class.Abstract)
	require.NotNil(t, class.SuperClass)
	assert.Equal(t, "Base", class.SuperClass.Name.Name)
	assert.Len(t, class.SuperClass.TypeArgs, 1)
	assert.Len(t, class.Implements, 2)
	require.Len(t, class.Members, 4)
	count := class.Members[0].(*ast.ClassProperty)
	assert.True(t, count.Static)
	assert.IsType(t, &ast.NumberLiteral{}, count.Value)
	assert.True(t, class.Members[1].(*ast.ClassProperty).Optional)
	assert.Len(t, class.Members[2].(*ast.ClassConstructor).Params, 1)
	assert.Equal(t, "value", class.Members[3].(*ast.ClassMethod).Key)

	enum := mod.Body[1].(*ast.EnumDeclaration)
	assert.True(t, enum.Const)
	require.Len(t, enum.Members, 3)
	assert.Nil(t, enum.Members[0].Init)
	assert.Equal(t, "g", enum.Members[1].Init.(*ast.StringLiteral).Value)
	assert.Equal(t, "4", enum.Members[2].Init.(*ast.NumberLiteral).Raw)
}

func TestParseImportsAndExports(t *testing.T) {
	src := `import D, { a, b as c } from "./dep";
import * as ns from "./ns";
import type { T } from "./types";
export { c as d };
export { x } from "./other";
export * from "./all";
export interface E {}
export default D;`
	mod := parseSource(t, "mod.ts", src)
	require.Len(t, mod.Body, 8)

	imp := mod.Body[0].(*ast.ImportDeclaration)
	assert.Equal(t, "./dep", imp.Source)
	assert.Equal(t, "D", imp.Default.Name)
	require.Len(t, imp.Specifiers, 2)
	assert.Equal(t, "b", imp.Specifiers[1].Imported)
	assert.Equal(t, "c", imp.Specifiers[1].Local.Name)

	assert.Equal(t, "ns", mod.Body[1].(*ast.ImportDeclaration).Namespace.Name)
	assert.True(t, mod.Body[2].(*ast.ImportDeclaration).TypeOnly)

	named := mod.Body[3].(*ast.ExportNamed)
	assert.Equal(t, "d", named.Specifiers[0].Exported)
	assert.Equal(t, "./other", mod.Body[4].(*ast.ExportNamed).Source)
	assert.True(t, mod.Body[5].(*ast.ExportNamed).Star)
	assert.IsType(t, &ast.InterfaceDeclaration{}, mod.Body[6].(*ast.ExportDeclaration).Declaration)
	assert.Equal(t, "default", mod.Body[7].(*ast.ExportNamed).Specifiers[0].Exported)
}

func TestParseNamespaces(t *testing.T) {
	mod := parseSource(t, "ns.ts", "namespace A.B { export type T = string; }\ndeclare module \"ext\" { }\n")
	require.Len(t, mod.Body, 1)
	a := mod.Body[0].(*ast.NamespaceDeclaration)
	assert.Equal(t, "A", a.ID.Name)
	b := a.Body[0].(*ast.ExportDeclaration).Declaration.(*ast.NamespaceDeclaration)
	assert.Equal(t, "B", b.ID.Name)
	require.Len(t, b.Body, 1)
}

func TestParseInitializers(t *testing.T) {
	src := `const a = [1, "x"] as const;
let b = { k: 1, s, n: -3 };
const c = undefined;
const d = foo();
const e = 5n;`
	mod := parseSource(t, "init.ts", src)
	require.Len(t, mod.Body, 5)

	as := mod.Body[0].(*ast.VariableDeclaration).Declarators[0].Init.(*ast.AsExpression)
	assert.True(t, as.Const)
	assert.Len(t, as.Expression.(*ast.ArrayLiteral).Elements, 2)

	b := mod.Body[1].(*ast.VariableDeclaration)
	assert.Equal(t, ast.VarKindLet, b.Kind)
	obj := b.Declarators[0].Init.(*ast.ObjectLiteral)
	require.Len(t, obj.Properties, 3)
	assert.Equal(t, "s", obj.Properties[1].Key)
	assert.Equal(t, "-3", obj.Properties[2].Value.(*ast.NumberLiteral).Raw)

	assert.Equal(t, "undefined", mod.Body[2].(*ast.VariableDeclaration).Declarators[0].Init.(*ast.Identifier).Name)
	assert.IsType(t, &ast.OpaqueExpression{}, mod.Body[3].(*ast.VariableDeclaration).Declarators[0].Init)
	assert.Equal(t, "5", mod.Body[4].(*ast.VariableDeclaration).Declarators[0].Init.(*ast.BigIntLiteral).Raw)
}

func TestParseModuleSyntaxError(t *testing.T) {
	p, err := NewModuleParser()
	require.NoError(t, err)
	defer p.Close()

	_, err = p.ParseModule("bad.ts", []byte("type = ;\n"))
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "bad.ts", perr.Path)
	assert.Equal(t, 1, perr.Line)
}
