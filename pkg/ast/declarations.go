package ast

// Declarations and statements.

// TypeParameter declares a generic parameter: `T extends C = D`.
type TypeParameter struct {
	nodeImpl

	ID         *Identifier    `json:"id"`
	Constraint TypeExpression `json:"constraint,omitempty"`
	Default    TypeExpression `json:"default,omitempty"`
}

func NewTypeParameter(id *Identifier, constraint, def TypeExpression) *TypeParameter {
	return &TypeParameter{nodeImpl: newNodeImpl(NodeTypeParameter), ID: id, Constraint: constraint, Default: def}
}

type TypeAliasDeclaration struct {
	nodeImpl
	statementMarker

	ID         *Identifier      `json:"id"`
	TypeParams []*TypeParameter `json:"typeParams,omitempty"`
	Type       TypeExpression   `json:"type"`
	Declare    bool             `json:"declare,omitempty"`
}

func NewTypeAliasDeclaration(id *Identifier, typeParams []*TypeParameter, typ TypeExpression) *TypeAliasDeclaration {
	return &TypeAliasDeclaration{nodeImpl: newNodeImpl(NodeTypeAliasDeclaration), ID: id, TypeParams: typeParams, Type: typ}
}

type InterfaceDeclaration struct {
	nodeImpl
	statementMarker

	ID         *Identifier      `json:"id"`
	TypeParams []*TypeParameter `json:"typeParams,omitempty"`
	Extends    []*TypeReference `json:"extends,omitempty"`
	Body       []TypeMember     `json:"body"`
	Declare    bool             `json:"declare,omitempty"`
}

func NewInterfaceDeclaration(id *Identifier, typeParams []*TypeParameter, extends []*TypeReference, body []TypeMember) *InterfaceDeclaration {
	return &InterfaceDeclaration{nodeImpl: newNodeImpl(NodeInterfaceDeclaration), ID: id, TypeParams: typeParams, Extends: extends, Body: body}
}

type ClassMember interface {
	Node
	classMemberNode()
}

type classMemberMarker struct{}

func (classMemberMarker) classMemberNode() {}

type ClassProperty struct {
	nodeImpl
	classMemberMarker

	Key      string         `json:"key"`
	Type     TypeExpression `json:"type,omitempty"`
	Value    Expression     `json:"value,omitempty"`
	Optional bool           `json:"optional,omitempty"`
	Readonly bool           `json:"readonly,omitempty"`
	Static   bool           `json:"static,omitempty"`
}

func NewClassProperty(key string, typ TypeExpression, value Expression) *ClassProperty {
	return &ClassProperty{nodeImpl: newNodeImpl(NodeClassProperty), Key: key, Type: typ, Value: value}
}

type ClassMethod struct {
	nodeImpl
	classMemberMarker

	Key       string             `json:"key"`
	Signature *FunctionSignature `json:"signature"`
	Body      *BlockStatement    `json:"body,omitempty"`
	Optional  bool               `json:"optional,omitempty"`
	Static    bool               `json:"static,omitempty"`
}

func NewClassMethod(key string, sig *FunctionSignature, body *BlockStatement) *ClassMethod {
	return &ClassMethod{nodeImpl: newNodeImpl(NodeClassMethod), Key: key, Signature: sig, Body: body}
}

type ClassConstructor struct {
	nodeImpl
	classMemberMarker

	Params []*Parameter     `json:"params"`
	Body   *BlockStatement `json:"body,omitempty"`
}

func NewClassConstructor(params []*Parameter, body *BlockStatement) *ClassConstructor {
	return &ClassConstructor{nodeImpl: newNodeImpl(NodeClassConstructor), Params: params, Body: body}
}

type ClassDeclaration struct {
	nodeImpl
	statementMarker

	ID         *Identifier      `json:"id"`
	TypeParams []*TypeParameter `json:"typeParams,omitempty"`
	SuperClass *TypeReference   `json:"superClass,omitempty"`
	Implements []*TypeReference `json:"implements,omitempty"`
	Members    []ClassMember    `json:"members"`
	Abstract   bool             `json:"abstract,omitempty"`
	Declare    bool             `json:"declare,omitempty"`
}

func NewClassDeclaration(id *Identifier, typeParams []*TypeParameter, super *TypeReference, implements []*TypeReference, members []ClassMember) *ClassDeclaration {
	return &ClassDeclaration{nodeImpl: newNodeImpl(NodeClassDeclaration), ID: id, TypeParams: typeParams, SuperClass: super, Implements: implements, Members: members}
}

type EnumMember struct {
	nodeImpl

	Name string     `json:"name"`
	Init Expression `json:"init,omitempty"`
}

func NewEnumMember(name string, init Expression) *EnumMember {
	return &EnumMember{nodeImpl: newNodeImpl(NodeEnumMember), Name: name, Init: init}
}

type EnumDeclaration struct {
	nodeImpl
	statementMarker

	ID      *Identifier   `json:"id"`
	Members []*EnumMember `json:"members"`
	Const   bool          `json:"const,omitempty"`
	Declare bool          `json:"declare,omitempty"`
}

func NewEnumDeclaration(id *Identifier, members []*EnumMember) *EnumDeclaration {
	return &EnumDeclaration{nodeImpl: newNodeImpl(NodeEnumDeclaration), ID: id, Members: members}
}

// Parameter is a function or constructor parameter.
type Parameter struct {
	nodeImpl

	ID       *Identifier    `json:"id"`
	Type     TypeExpression `json:"type,omitempty"`
	Optional bool           `json:"optional,omitempty"`
	Rest     bool           `json:"rest,omitempty"`
}

func NewParameter(id *Identifier, typ TypeExpression) *Parameter {
	return &Parameter{nodeImpl: newNodeImpl(NodeParameter), ID: id, Type: typ}
}

// FunctionSignature is shared by declarations, method signatures and function types.
type FunctionSignature struct {
	nodeImpl

	TypeParams []*TypeParameter `json:"typeParams,omitempty"`
	Params     []*Parameter     `json:"params"`
	ReturnType TypeExpression   `json:"returnType,omitempty"`
}

func NewFunctionSignature(typeParams []*TypeParameter, params []*Parameter, ret TypeExpression) *FunctionSignature {
	return &FunctionSignature{nodeImpl: newNodeImpl(NodeFunctionSignature), TypeParams: typeParams, Params: params, ReturnType: ret}
}

type FunctionDeclaration struct {
	nodeImpl
	statementMarker

	ID        *Identifier        `json:"id"`
	Signature *FunctionSignature `json:"signature"`
	Body      *BlockStatement    `json:"body,omitempty"`
	Declare   bool               `json:"declare,omitempty"`
}

func NewFunctionDeclaration(id *Identifier, sig *FunctionSignature, body *BlockStatement) *FunctionDeclaration {
	return &FunctionDeclaration{nodeImpl: newNodeImpl(NodeFunctionDeclaration), ID: id, Signature: sig, Body: body}
}

type VarKind string

const (
	VarKindVar   VarKind = "var"
	VarKindLet   VarKind = "let"
	VarKindConst VarKind = "const"
)

type VariableDeclarator struct {
	nodeImpl

	ID   *Identifier    `json:"id"`
	Type TypeExpression `json:"type,omitempty"`
	Init Expression     `json:"init,omitempty"`
}

func NewVariableDeclarator(id *Identifier, typ TypeExpression, init Expression) *VariableDeclarator {
	return &VariableDeclarator{nodeImpl: newNodeImpl(NodeVariableDeclarator), ID: id, Type: typ, Init: init}
}

type VariableDeclaration struct {
	nodeImpl
	statementMarker

	Kind        VarKind               `json:"kind"`
	Declarators []*VariableDeclarator `json:"declarators"`
	Declare     bool                  `json:"declare,omitempty"`
}

func NewVariableDeclaration(kind VarKind, declarators []*VariableDeclarator) *VariableDeclaration {
	return &VariableDeclaration{nodeImpl: newNodeImpl(NodeVariableDeclaration), Kind: kind, Declarators: declarators}
}

type NamespaceDeclaration struct {
	nodeImpl
	statementMarker

	ID        *Identifier `json:"id"`
	Body      []Statement `json:"body"`
	Declare   bool        `json:"declare,omitempty"`
	ScopeMark Mark        `json:"scopeMark,omitempty"`
}

func NewNamespaceDeclaration(id *Identifier, body []Statement) *NamespaceDeclaration {
	return &NamespaceDeclaration{nodeImpl: newNodeImpl(NodeNamespaceDeclaration), ID: id, Body: body}
}

type ImportSpecifier struct {
	nodeImpl

	Imported string      `json:"imported"`
	Local    *Identifier `json:"local"`
}

func NewImportSpecifier(imported string, local *Identifier) *ImportSpecifier {
	return &ImportSpecifier{nodeImpl: newNodeImpl(NodeImportSpecifier), Imported: imported, Local: local}
}

// ImportDeclaration covers `import D, * as NS, { a as b } from "src"`.
type ImportDeclaration struct {
	nodeImpl
	statementMarker

	Source     string             `json:"source"`
	Default    *Identifier        `json:"default,omitempty"`
	Namespace  *Identifier        `json:"namespace,omitempty"`
	Specifiers []*ImportSpecifier `json:"specifiers,omitempty"`
	TypeOnly   bool               `json:"typeOnly,omitempty"`
}

func NewImportDeclaration(source string, specifiers []*ImportSpecifier) *ImportDeclaration {
	return &ImportDeclaration{nodeImpl: newNodeImpl(NodeImportDeclaration), Source: source, Specifiers: specifiers}
}

// ExportDeclaration exports the wrapped declaration under its own name.
type ExportDeclaration struct {
	nodeImpl
	statementMarker

	Declaration Statement `json:"declaration"`
	Default     bool      `json:"default,omitempty"`
}

func NewExportDeclaration(decl Statement) *ExportDeclaration {
	return &ExportDeclaration{nodeImpl: newNodeImpl(NodeExportDeclaration), Declaration: decl}
}

type ExportSpecifier struct {
	nodeImpl

	Local    *Identifier `json:"local"`
	Exported string      `json:"exported"`
}

func NewExportSpecifier(local *Identifier, exported string) *ExportSpecifier {
	return &ExportSpecifier{nodeImpl: newNodeImpl(NodeExportSpecifier), Local: local, Exported: exported}
}

// ExportNamed covers `export { a as b }` and `export { a } from "src"`.
// Re-exports leave Local marks untouched; they name bindings of Source.
type ExportNamed struct {
	nodeImpl
	statementMarker

	Specifiers []*ExportSpecifier `json:"specifiers"`
	Source     string             `json:"source,omitempty"`
	// Star marks `export * from source`.
	Star bool `json:"star,omitempty"`
}

func NewExportNamed(specifiers []*ExportSpecifier, source string) *ExportNamed {
	return &ExportNamed{nodeImpl: newNodeImpl(NodeExportNamed), Specifiers: specifiers, Source: source}
}

type BlockStatement struct {
	nodeImpl
	statementMarker

	Body []Statement `json:"body"`
	// ScopeMark is the mark hygiene assigned to declarations of this block.
	ScopeMark Mark `json:"scopeMark,omitempty"`
}

func NewBlockStatement(body []Statement) *BlockStatement {
	return &BlockStatement{nodeImpl: newNodeImpl(NodeBlockStatement), Body: body}
}

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Argument Expression `json:"argument,omitempty"`
}

func NewReturnStatement(arg Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Argument: arg}
}
