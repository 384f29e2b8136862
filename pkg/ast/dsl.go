package ast

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

// IDM builds an identifier that already carries a hygienic mark.
func IDM(name string, mark Mark) *Identifier {
	id := NewIdentifier(name)
	id.Mark = mark
	return id
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Num(raw string) *NumberLiteral {
	return NewNumberLiteral(raw)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Null() *NullLiteral {
	return NewNullLiteral()
}

func Arr(elements ...Expression) *ArrayLiteral {
	return NewArrayLiteral(elements)
}

func ObjLit(props ...*ObjectProperty) *ObjectLiteral {
	return NewObjectLiteral(props)
}

func Field(key string, value Expression) *ObjectProperty {
	return NewObjectProperty(key, value)
}

// Type expression helpers.

func Kw(keyword string) *KeywordType {
	return NewKeywordType(keyword)
}

func LitStr(value string) *LiteralType {
	return NewLiteralType(LiteralString, value)
}

func LitNum(raw string) *LiteralType {
	return NewLiteralType(LiteralNumber, raw)
}

func LitBool(value bool) *LiteralType {
	if value {
		return NewLiteralType(LiteralBoolean, "true")
	}
	return NewLiteralType(LiteralBoolean, "false")
}

func LitBigInt(raw string) *LiteralType {
	return NewLiteralType(LiteralBigInt, raw)
}

func Ref(name string, args ...TypeExpression) *TypeReference {
	return NewTypeReference(ID(name), nil, args)
}

func RefID(id *Identifier, args ...TypeExpression) *TypeReference {
	return NewTypeReference(id, nil, args)
}

// QRef builds a qualified reference `name.path[0].path[1]...`.
func QRef(name string, path ...string) *TypeReference {
	return NewTypeReference(ID(name), path, nil)
}

func Obj(members ...TypeMember) *TypeLiteral {
	return NewTypeLiteral(members)
}

func Prop(key string, typ TypeExpression) *PropertySignature {
	return NewPropertySignature(key, typ, false)
}

func OptProp(key string, typ TypeExpression) *PropertySignature {
	return NewPropertySignature(key, typ, true)
}

func Method(key string, sig *FunctionSignature) *MethodSignature {
	return NewMethodSignature(key, sig)
}

func IndexSig(keyType, typ TypeExpression) *IndexSignature {
	return NewIndexSignature("key", keyType, typ)
}

func Union(types ...TypeExpression) *UnionType {
	return NewUnionType(types)
}

func Inter(types ...TypeExpression) *IntersectionType {
	return NewIntersectionType(types)
}

func ArrT(elem TypeExpression) *ArrayType {
	return NewArrayType(elem)
}

func Tuple(types ...TypeExpression) *TupleType {
	elems := make([]*TupleElement, len(types))
	for i, t := range types {
		elems[i] = NewTupleElement("", t)
	}
	return NewTupleType(elems)
}

func Sig(typeParams []*TypeParameter, ret TypeExpression, params ...*Parameter) *FunctionSignature {
	return NewFunctionSignature(typeParams, params, ret)
}

func FnT(ret TypeExpression, params ...*Parameter) *FunctionType {
	return NewFunctionType(NewFunctionSignature(nil, params, ret))
}

func Param(name string, typ TypeExpression) *Parameter {
	return NewParameter(ID(name), typ)
}

func TParam(name string) *TypeParameter {
	return NewTypeParameter(ID(name), nil, nil)
}

func TParamC(name string, constraint TypeExpression) *TypeParameter {
	return NewTypeParameter(ID(name), constraint, nil)
}

func KeyOf(typ TypeExpression) *TypeOperator {
	return NewTypeOperator(TypeOperatorKeyOf, typ)
}

func Index(object, index TypeExpression) *IndexedAccessType {
	return NewIndexedAccessType(object, index)
}

func Cond(check, extends, trueType, falseType TypeExpression) *ConditionalType {
	return NewConditionalType(check, extends, trueType, falseType)
}

func Infer(name string) *InferType {
	return NewInferType(TParam(name))
}

func Mapped(param string, constraint, typ TypeExpression) *MappedType {
	return NewMappedType(TParamC(param, constraint), nil, typ)
}

func TypeOf(name string, path ...string) *TypeQuery {
	return NewTypeQuery(ID(name), path)
}

// Declaration helpers.

func Alias(name string, typ TypeExpression, typeParams ...*TypeParameter) *TypeAliasDeclaration {
	return NewTypeAliasDeclaration(ID(name), typeParams, typ)
}

func Iface(name string, members ...TypeMember) *InterfaceDeclaration {
	return NewInterfaceDeclaration(ID(name), nil, nil, members)
}

func IfaceG(name string, typeParams []*TypeParameter, extends []*TypeReference, members ...TypeMember) *InterfaceDeclaration {
	return NewInterfaceDeclaration(ID(name), typeParams, extends, members)
}

func Class(name string, members ...ClassMember) *ClassDeclaration {
	return NewClassDeclaration(ID(name), nil, nil, nil, members)
}

func Enum(name string, members ...string) *EnumDeclaration {
	out := make([]*EnumMember, len(members))
	for i, m := range members {
		out[i] = NewEnumMember(m, nil)
	}
	return NewEnumDeclaration(ID(name), out)
}

func Func(name string, sig *FunctionSignature, body ...Statement) *FunctionDeclaration {
	var block *BlockStatement
	if body != nil {
		block = NewBlockStatement(body)
	}
	return NewFunctionDeclaration(ID(name), sig, block)
}

func Var(kind VarKind, name string, typ TypeExpression, init Expression) *VariableDeclaration {
	return NewVariableDeclaration(kind, []*VariableDeclarator{NewVariableDeclarator(ID(name), typ, init)})
}

func Const(name string, typ TypeExpression, init Expression) *VariableDeclaration {
	return Var(VarKindConst, name, typ, init)
}

func Let(name string, typ TypeExpression, init Expression) *VariableDeclaration {
	return Var(VarKindLet, name, typ, init)
}

func Namespace(name string, body ...Statement) *NamespaceDeclaration {
	return NewNamespaceDeclaration(ID(name), body)
}

func Block(body ...Statement) *BlockStatement {
	return NewBlockStatement(body)
}

func Export(decl Statement) *ExportDeclaration {
	return NewExportDeclaration(decl)
}

// Import builds `import { names... } from source`.
func Import(source string, names ...string) *ImportDeclaration {
	specs := make([]*ImportSpecifier, len(names))
	for i, name := range names {
		specs[i] = NewImportSpecifier(name, ID(name))
	}
	return NewImportDeclaration(source, specs)
}

// ImportNS builds `import * as local from source`.
func ImportNS(source, local string) *ImportDeclaration {
	decl := NewImportDeclaration(source, nil)
	decl.Namespace = ID(local)
	return decl
}

func Mod(path string, body ...Statement) *Module {
	return NewModule(path, body)
}
