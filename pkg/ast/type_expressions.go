package ast

// Type expressions

type KeywordType struct {
	nodeImpl
	typeExpressionMarker

	Keyword string `json:"keyword"`
}

func NewKeywordType(keyword string) *KeywordType {
	return &KeywordType{nodeImpl: newNodeImpl(NodeKeywordType), Keyword: keyword}
}

type LiteralKind string

const (
	LiteralString  LiteralKind = "string"
	LiteralNumber  LiteralKind = "number"
	LiteralBigInt  LiteralKind = "bigint"
	LiteralBoolean LiteralKind = "boolean"
)

type LiteralType struct {
	nodeImpl
	typeExpressionMarker

	Kind  LiteralKind `json:"kind"`
	Value string      `json:"value"`
}

func NewLiteralType(kind LiteralKind, value string) *LiteralType {
	return &LiteralType{nodeImpl: newNodeImpl(NodeLiteralType), Kind: kind, Value: value}
}

// TypeReference names a type, optionally qualified (`NS.Inner`) and applied to arguments.
type TypeReference struct {
	nodeImpl
	typeExpressionMarker

	Name     *Identifier      `json:"name"`
	Path     []string         `json:"path,omitempty"`
	TypeArgs []TypeExpression `json:"typeArgs,omitempty"`
}

func NewTypeReference(name *Identifier, path []string, args []TypeExpression) *TypeReference {
	return &TypeReference{nodeImpl: newNodeImpl(NodeTypeReference), Name: name, Path: path, TypeArgs: args}
}

// TypeMember is an element of an object type literal or interface body.
type TypeMember interface {
	Node
	typeMemberNode()
}

type typeMemberMarker struct{}

func (typeMemberMarker) typeMemberNode() {}

type PropertySignature struct {
	nodeImpl
	typeMemberMarker

	Key      string         `json:"key"`
	Type     TypeExpression `json:"type,omitempty"`
	Optional bool           `json:"optional,omitempty"`
	Readonly bool           `json:"readonly,omitempty"`
}

func NewPropertySignature(key string, typ TypeExpression, optional bool) *PropertySignature {
	return &PropertySignature{nodeImpl: newNodeImpl(NodePropertySignature), Key: key, Type: typ, Optional: optional}
}

type MethodSignature struct {
	nodeImpl
	typeMemberMarker

	Key       string             `json:"key"`
	Signature *FunctionSignature `json:"signature"`
	Optional  bool               `json:"optional,omitempty"`
}

func NewMethodSignature(key string, sig *FunctionSignature) *MethodSignature {
	return &MethodSignature{nodeImpl: newNodeImpl(NodeMethodSignature), Key: key, Signature: sig}
}

type CallSignature struct {
	nodeImpl
	typeMemberMarker

	Signature *FunctionSignature `json:"signature"`
}

func NewCallSignature(sig *FunctionSignature) *CallSignature {
	return &CallSignature{nodeImpl: newNodeImpl(NodeCallSignature), Signature: sig}
}

type ConstructSignature struct {
	nodeImpl
	typeMemberMarker

	Signature *FunctionSignature `json:"signature"`
}

func NewConstructSignature(sig *FunctionSignature) *ConstructSignature {
	return &ConstructSignature{nodeImpl: newNodeImpl(NodeConstructSignature), Signature: sig}
}

type IndexSignature struct {
	nodeImpl
	typeMemberMarker

	ParamName string         `json:"paramName"`
	KeyType   TypeExpression `json:"keyType"`
	Type      TypeExpression `json:"type"`
	Readonly  bool           `json:"readonly,omitempty"`
}

func NewIndexSignature(param string, keyType, typ TypeExpression) *IndexSignature {
	return &IndexSignature{nodeImpl: newNodeImpl(NodeIndexSignature), ParamName: param, KeyType: keyType, Type: typ}
}

type TypeLiteral struct {
	nodeImpl
	typeExpressionMarker

	Members []TypeMember `json:"members"`
}

func NewTypeLiteral(members []TypeMember) *TypeLiteral {
	return &TypeLiteral{nodeImpl: newNodeImpl(NodeTypeLiteral), Members: members}
}

type UnionType struct {
	nodeImpl
	typeExpressionMarker

	Types []TypeExpression `json:"types"`
}

func NewUnionType(types []TypeExpression) *UnionType {
	return &UnionType{nodeImpl: newNodeImpl(NodeUnionType), Types: types}
}

type IntersectionType struct {
	nodeImpl
	typeExpressionMarker

	Types []TypeExpression `json:"types"`
}

func NewIntersectionType(types []TypeExpression) *IntersectionType {
	return &IntersectionType{nodeImpl: newNodeImpl(NodeIntersectionType), Types: types}
}

type FunctionType struct {
	nodeImpl
	typeExpressionMarker

	Signature *FunctionSignature `json:"signature"`
}

func NewFunctionType(sig *FunctionSignature) *FunctionType {
	return &FunctionType{nodeImpl: newNodeImpl(NodeFunctionType), Signature: sig}
}

type ConstructorType struct {
	nodeImpl
	typeExpressionMarker

	Signature *FunctionSignature `json:"signature"`
	Abstract  bool               `json:"abstract,omitempty"`
}

func NewConstructorType(sig *FunctionSignature) *ConstructorType {
	return &ConstructorType{nodeImpl: newNodeImpl(NodeConstructorType), Signature: sig}
}

type ArrayType struct {
	nodeImpl
	typeExpressionMarker

	Elem TypeExpression `json:"elem"`
}

func NewArrayType(elem TypeExpression) *ArrayType {
	return &ArrayType{nodeImpl: newNodeImpl(NodeArrayType), Elem: elem}
}

type TupleElement struct {
	nodeImpl

	Label    string         `json:"label,omitempty"`
	Type     TypeExpression `json:"type"`
	Optional bool           `json:"optional,omitempty"`
	Rest     bool           `json:"rest,omitempty"`
}

func NewTupleElement(label string, typ TypeExpression) *TupleElement {
	return &TupleElement{nodeImpl: newNodeImpl(NodeTupleElement), Label: label, Type: typ}
}

type TupleType struct {
	nodeImpl
	typeExpressionMarker

	Elements []*TupleElement `json:"elements"`
}

func NewTupleType(elements []*TupleElement) *TupleType {
	return &TupleType{nodeImpl: newNodeImpl(NodeTupleType), Elements: elements}
}

type ParenthesizedType struct {
	nodeImpl
	typeExpressionMarker

	Type TypeExpression `json:"type"`
}

func NewParenthesizedType(typ TypeExpression) *ParenthesizedType {
	return &ParenthesizedType{nodeImpl: newNodeImpl(NodeParenthesizedType), Type: typ}
}

type TypeOperatorKind string

const (
	TypeOperatorKeyOf    TypeOperatorKind = "keyof"
	TypeOperatorReadonly TypeOperatorKind = "readonly"
	TypeOperatorUnique   TypeOperatorKind = "unique"
)

type TypeOperator struct {
	nodeImpl
	typeExpressionMarker

	Op   TypeOperatorKind `json:"op"`
	Type TypeExpression   `json:"type"`
}

func NewTypeOperator(op TypeOperatorKind, typ TypeExpression) *TypeOperator {
	return &TypeOperator{nodeImpl: newNodeImpl(NodeTypeOperator), Op: op, Type: typ}
}

type IndexedAccessType struct {
	nodeImpl
	typeExpressionMarker

	Object TypeExpression `json:"object"`
	Index  TypeExpression `json:"index"`
}

func NewIndexedAccessType(object, index TypeExpression) *IndexedAccessType {
	return &IndexedAccessType{nodeImpl: newNodeImpl(NodeIndexedAccessType), Object: object, Index: index}
}

type ConditionalType struct {
	nodeImpl
	typeExpressionMarker

	Check   TypeExpression `json:"check"`
	Extends TypeExpression `json:"extends"`
	True    TypeExpression `json:"true"`
	False   TypeExpression `json:"false"`
}

func NewConditionalType(check, extends, trueType, falseType TypeExpression) *ConditionalType {
	return &ConditionalType{nodeImpl: newNodeImpl(NodeConditionalType), Check: check, Extends: extends, True: trueType, False: falseType}
}

type InferType struct {
	nodeImpl
	typeExpressionMarker

	Param *TypeParameter `json:"param"`
}

func NewInferType(param *TypeParameter) *InferType {
	return &InferType{nodeImpl: newNodeImpl(NodeInferType), Param: param}
}

// MappedModifier is the `+`/`-` prefix of `?` and `readonly` in mapped types.
type MappedModifier string

const (
	MappedModifierNone   MappedModifier = ""
	MappedModifierAdd    MappedModifier = "+"
	MappedModifierRemove MappedModifier = "-"
)

// MappedType is `{ readonly [K in C as N]?: T }`. Param.Constraint holds C.
type MappedType struct {
	nodeImpl
	typeExpressionMarker

	Param    *TypeParameter `json:"param"`
	NameType TypeExpression `json:"nameType,omitempty"`
	Type     TypeExpression `json:"type,omitempty"`
	Optional MappedModifier `json:"optional,omitempty"`
	Readonly MappedModifier `json:"readonly,omitempty"`
}

func NewMappedType(param *TypeParameter, nameType, typ TypeExpression) *MappedType {
	return &MappedType{nodeImpl: newNodeImpl(NodeMappedType), Param: param, NameType: nameType, Type: typ}
}

// TypeQuery is `typeof name.path`.
type TypeQuery struct {
	nodeImpl
	typeExpressionMarker

	Name *Identifier `json:"name"`
	Path []string    `json:"path,omitempty"`
}

func NewTypeQuery(name *Identifier, path []string) *TypeQuery {
	return &TypeQuery{nodeImpl: newNodeImpl(NodeTypeQuery), Name: name, Path: path}
}

type ThisType struct {
	nodeImpl
	typeExpressionMarker
}

func NewThisType() *ThisType {
	return &ThisType{nodeImpl: newNodeImpl(NodeThisType)}
}
