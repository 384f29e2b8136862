package ast

type NodeType string

const (
	NodeIdentifier            NodeType = "Identifier"
	NodeModule                NodeType = "Module"
	NodeTypeAliasDeclaration  NodeType = "TypeAliasDeclaration"
	NodeInterfaceDeclaration  NodeType = "InterfaceDeclaration"
	NodeClassDeclaration      NodeType = "ClassDeclaration"
	NodeClassProperty         NodeType = "ClassProperty"
	NodeClassMethod           NodeType = "ClassMethod"
	NodeClassConstructor      NodeType = "ClassConstructor"
	NodeEnumDeclaration       NodeType = "EnumDeclaration"
	NodeEnumMember            NodeType = "EnumMember"
	NodeFunctionDeclaration   NodeType = "FunctionDeclaration"
	NodeFunctionSignature     NodeType = "FunctionSignature"
	NodeParameter             NodeType = "Parameter"
	NodeVariableDeclaration   NodeType = "VariableDeclaration"
	NodeVariableDeclarator    NodeType = "VariableDeclarator"
	NodeNamespaceDeclaration  NodeType = "NamespaceDeclaration"
	NodeImportDeclaration     NodeType = "ImportDeclaration"
	NodeImportSpecifier       NodeType = "ImportSpecifier"
	NodeExportDeclaration     NodeType = "ExportDeclaration"
	NodeExportNamed           NodeType = "ExportNamed"
	NodeExportSpecifier       NodeType = "ExportSpecifier"
	NodeBlockStatement        NodeType = "BlockStatement"
	NodeExpressionStatement   NodeType = "ExpressionStatement"
	NodeReturnStatement       NodeType = "ReturnStatement"
	NodeTypeParameter         NodeType = "TypeParameter"
	NodeKeywordType           NodeType = "KeywordType"
	NodeLiteralType           NodeType = "LiteralType"
	NodeTypeReference         NodeType = "TypeReference"
	NodeTypeLiteral           NodeType = "TypeLiteral"
	NodePropertySignature     NodeType = "PropertySignature"
	NodeMethodSignature       NodeType = "MethodSignature"
	NodeCallSignature         NodeType = "CallSignature"
	NodeConstructSignature    NodeType = "ConstructSignature"
	NodeIndexSignature        NodeType = "IndexSignature"
	NodeUnionType             NodeType = "UnionType"
	NodeIntersectionType      NodeType = "IntersectionType"
	NodeFunctionType          NodeType = "FunctionType"
	NodeConstructorType       NodeType = "ConstructorType"
	NodeArrayType             NodeType = "ArrayType"
	NodeTupleType             NodeType = "TupleType"
	NodeTupleElement          NodeType = "TupleElement"
	NodeParenthesizedType     NodeType = "ParenthesizedType"
	NodeTypeOperator          NodeType = "TypeOperator"
	NodeIndexedAccessType     NodeType = "IndexedAccessType"
	NodeConditionalType       NodeType = "ConditionalType"
	NodeInferType             NodeType = "InferType"
	NodeMappedType            NodeType = "MappedType"
	NodeTypeQuery             NodeType = "TypeQuery"
	NodeThisType              NodeType = "ThisType"
	NodeStringLiteral         NodeType = "StringLiteral"
	NodeNumberLiteral         NodeType = "NumberLiteral"
	NodeBigIntLiteral         NodeType = "BigIntLiteral"
	NodeBooleanLiteral        NodeType = "BooleanLiteral"
	NodeNullLiteral           NodeType = "NullLiteral"
	NodeArrayLiteral          NodeType = "ArrayLiteral"
	NodeObjectLiteral         NodeType = "ObjectLiteral"
	NodeObjectProperty        NodeType = "ObjectProperty"
	NodeAsExpression          NodeType = "AsExpression"
	NodeOpaqueExpression      NodeType = "OpaqueExpression"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// IsZero reports whether the span was never annotated.
func (s Span) IsZero() bool { return s == Span{} }

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

type spanSetter interface {
	setSpan(Span)
}

// SetSpan records the source span of node. Nodes built by the DSL keep a zero span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(spanSetter); ok {
		setter.setSpan(span)
	}
}

// Marker interfaces.

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type TypeExpression interface {
	Node
	typeExpressionNode()
}

type typeExpressionMarker struct{}

func (typeExpressionMarker) typeExpressionNode() {}

// Identifier is a binding or reference occurrence tagged with its hygienic mark.
type Identifier struct {
	nodeImpl
	expressionMarker

	Name string `json:"name"`
	Mark Mark   `json:"mark"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// Module is the root of a parsed source file.
type Module struct {
	nodeImpl

	Path  string      `json:"path"`
	IsDTS bool        `json:"isDts"`
	Body  []Statement `json:"body"`
}

func NewModule(path string, body []Statement) *Module {
	return &Module{nodeImpl: newNodeImpl(NodeModule), Path: path, Body: body, IsDTS: isDeclarationPath(path)}
}

func isDeclarationPath(path string) bool {
	const suffix = ".d.ts"
	return len(path) >= len(suffix) && path[len(path)-len(suffix):] == suffix
}
