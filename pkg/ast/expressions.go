package ast

// Expressions are kept only as far as initializer typing needs them.

type StringLiteral struct {
	nodeImpl
	expressionMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type NumberLiteral struct {
	nodeImpl
	expressionMarker

	Raw string `json:"raw"`
}

func NewNumberLiteral(raw string) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Raw: raw}
}

type BigIntLiteral struct {
	nodeImpl
	expressionMarker

	Raw string `json:"raw"`
}

func NewBigIntLiteral(raw string) *BigIntLiteral {
	return &BigIntLiteral{nodeImpl: newNodeImpl(NodeBigIntLiteral), Raw: raw}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type NullLiteral struct {
	nodeImpl
	expressionMarker
}

func NewNullLiteral() *NullLiteral {
	return &NullLiteral{nodeImpl: newNodeImpl(NodeNullLiteral)}
}

type ArrayLiteral struct {
	nodeImpl
	expressionMarker

	Elements []Expression `json:"elements"`
}

func NewArrayLiteral(elements []Expression) *ArrayLiteral {
	return &ArrayLiteral{nodeImpl: newNodeImpl(NodeArrayLiteral), Elements: elements}
}

type ObjectProperty struct {
	nodeImpl

	Key   string     `json:"key"`
	Value Expression `json:"value"`
}

func NewObjectProperty(key string, value Expression) *ObjectProperty {
	return &ObjectProperty{nodeImpl: newNodeImpl(NodeObjectProperty), Key: key, Value: value}
}

type ObjectLiteral struct {
	nodeImpl
	expressionMarker

	Properties []*ObjectProperty `json:"properties"`
}

func NewObjectLiteral(props []*ObjectProperty) *ObjectLiteral {
	return &ObjectLiteral{nodeImpl: newNodeImpl(NodeObjectLiteral), Properties: props}
}

// AsExpression is `expr as T`; `expr as const` is represented with Const set.
type AsExpression struct {
	nodeImpl
	expressionMarker

	Expression Expression     `json:"expression"`
	Type       TypeExpression `json:"type,omitempty"`
	Const      bool           `json:"const,omitempty"`
}

func NewAsExpression(expr Expression, typ TypeExpression) *AsExpression {
	return &AsExpression{nodeImpl: newNodeImpl(NodeAsExpression), Expression: expr, Type: typ}
}

// OpaqueExpression stands in for expressions the analyzer does not type.
type OpaqueExpression struct {
	nodeImpl
	expressionMarker

	Text string `json:"text"`
}

func NewOpaqueExpression(text string) *OpaqueExpression {
	return &OpaqueExpression{nodeImpl: newNodeImpl(NodeOpaqueExpression), Text: text}
}
