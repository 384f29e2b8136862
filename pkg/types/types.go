package types

// Type is an immutable structural type. Values are shared freely between
// bindings; refinement always builds a new value.
type Type interface {
	Kind() Kind
	String() string
	isType()
}

type Kind string

const (
	KindKeyword       Kind = "Keyword"
	KindLit           Kind = "Lit"
	KindTypeLit       Kind = "TypeLit"
	KindInterface     Kind = "Interface"
	KindClass         Kind = "Class"
	KindEnum          Kind = "Enum"
	KindAlias         Kind = "Alias"
	KindRef           Kind = "Ref"
	KindParam         Kind = "Param"
	KindUnion         Kind = "Union"
	KindIntersection  Kind = "Intersection"
	KindFunction      Kind = "Function"
	KindConstructor   Kind = "Constructor"
	KindArray         Kind = "Array"
	KindTuple         Kind = "Tuple"
	KindOperator      Kind = "Operator"
	KindIndexedAccess Kind = "IndexedAccess"
	KindConditional   Kind = "Conditional"
	KindInfer         Kind = "Infer"
	KindMapped        Kind = "Mapped"
	KindQuery         Kind = "Query"
	KindModule        Kind = "Module"
	KindThis          Kind = "This"
	KindError         Kind = "Error"
)

type typeMarker struct{}

func (typeMarker) isType() {}

type KeywordKind string

const (
	KeywordAny       KeywordKind = "any"
	KeywordUnknown   KeywordKind = "unknown"
	KeywordNever     KeywordKind = "never"
	KeywordVoid      KeywordKind = "void"
	KeywordUndefined KeywordKind = "undefined"
	KeywordNull      KeywordKind = "null"
	KeywordNumber    KeywordKind = "number"
	KeywordString    KeywordKind = "string"
	KeywordBoolean   KeywordKind = "boolean"
	KeywordBigInt    KeywordKind = "bigint"
	KeywordSymbol    KeywordKind = "symbol"
	KeywordObject    KeywordKind = "object"
)

type Keyword struct {
	typeMarker
	Name KeywordKind
}

func (*Keyword) Kind() Kind { return KindKeyword }

var (
	Any       Type = &Keyword{Name: KeywordAny}
	Unknown   Type = &Keyword{Name: KeywordUnknown}
	Never     Type = &Keyword{Name: KeywordNever}
	Void      Type = &Keyword{Name: KeywordVoid}
	Undefined Type = &Keyword{Name: KeywordUndefined}
	Null      Type = &Keyword{Name: KeywordNull}
	Number    Type = &Keyword{Name: KeywordNumber}
	String    Type = &Keyword{Name: KeywordString}
	Boolean   Type = &Keyword{Name: KeywordBoolean}
	BigInt    Type = &Keyword{Name: KeywordBigInt}
	Symbol    Type = &Keyword{Name: KeywordSymbol}
	Object    Type = &Keyword{Name: KeywordObject}
)

var keywords = map[KeywordKind]Type{
	KeywordAny: Any, KeywordUnknown: Unknown, KeywordNever: Never, KeywordVoid: Void,
	KeywordUndefined: Undefined, KeywordNull: Null, KeywordNumber: Number, KeywordString: String,
	KeywordBoolean: Boolean, KeywordBigInt: BigInt, KeywordSymbol: Symbol, KeywordObject: Object,
}

// KeywordType returns the shared keyword type for name.
func KeywordType(name string) (Type, bool) {
	t, ok := keywords[KeywordKind(name)]
	return t, ok
}

// IsKeyword reports whether t is the keyword k.
func IsKeyword(t Type, k KeywordKind) bool {
	kw, ok := t.(*Keyword)
	return ok && kw.Name == k
}

type LitKind string

const (
	LitString  LitKind = "string"
	LitNumber  LitKind = "number"
	LitBigInt  LitKind = "bigint"
	LitBoolean LitKind = "boolean"
)

type Lit struct {
	typeMarker
	LitKind LitKind
	Value   string
}

func (*Lit) Kind() Kind { return KindLit }

// Member is an element of an object shape.
type Member interface {
	MemberKey() string
	isMember()
}

type memberMarker struct{}

func (memberMarker) isMember() {}

type Property struct {
	memberMarker
	Key      string
	Type     Type
	Optional bool
	Readonly bool
}

func (p *Property) MemberKey() string { return p.Key }

type Method struct {
	memberMarker
	Key      string
	Optional bool
	Fn       *Function
}

func (m *Method) MemberKey() string { return m.Key }

type CallSignature struct {
	memberMarker
	Fn *Function
}

func (*CallSignature) MemberKey() string { return "()" }

type ConstructSignature struct {
	memberMarker
	Fn *Function
}

func (*ConstructSignature) MemberKey() string { return "new()" }

type IndexSignature struct {
	memberMarker
	Key      Type
	Type     Type
	Readonly bool
}

func (s *IndexSignature) MemberKey() string { return "[" + s.Key.String() + "]" }

// TypeLit is an anonymous object shape with ordered members.
type TypeLit struct {
	typeMarker
	Members []Member
}

func (*TypeLit) Kind() Kind { return KindTypeLit }

// TypeParamDecl declares a generic parameter of a declaration or signature.
type TypeParamDecl struct {
	Name       Id
	Constraint Type
	Default    Type
}

type Interface struct {
	typeMarker
	Name       Id
	TypeParams []*TypeParamDecl
	Extends    []Type
	Body       []Member
}

func (*Interface) Kind() Kind { return KindInterface }

type Class struct {
	typeMarker
	Name       Id
	TypeParams []*TypeParamDecl
	Super      Type
	Implements []Type
	Body       []Member
	Statics    []Member
	Ctor       *Function
	Abstract   bool
}

func (*Class) Kind() Kind { return KindClass }

type EnumVariant struct {
	Name  string
	Value *Lit
}

type Enum struct {
	typeMarker
	Name    Id
	Members []EnumVariant
	Const   bool
}

func (*Enum) Kind() Kind { return KindEnum }

// Alias is the template of a generic type alias; non-generic aliases resolve
// straight to their target.
type Alias struct {
	typeMarker
	Name       Id
	TypeParams []*TypeParamDecl
	Target     Type
}

func (*Alias) Kind() Kind { return KindAlias }

// Ref names a declared type. It is the indirection that lets recursive shapes
// exist without owning themselves.
type Ref struct {
	typeMarker
	Name Id
	Args []Type
}

func (*Ref) Kind() Kind { return KindRef }

// Param is a use of a generic type parameter.
type Param struct {
	typeMarker
	Name       Id
	Constraint Type
}

func (*Param) Kind() Kind { return KindParam }

type Union struct {
	typeMarker
	Types []Type
}

func (*Union) Kind() Kind { return KindUnion }

type Intersection struct {
	typeMarker
	Types []Type
}

func (*Intersection) Kind() Kind { return KindIntersection }

type FnParam struct {
	Name     string
	Type     Type
	Optional bool
	Rest     bool
}

type Function struct {
	typeMarker
	TypeParams []*TypeParamDecl
	Params     []FnParam
	Ret        Type
}

func (*Function) Kind() Kind { return KindFunction }

type Constructor struct {
	typeMarker
	TypeParams []*TypeParamDecl
	Params     []FnParam
	Ret        Type
	Abstract   bool
}

func (*Constructor) Kind() Kind { return KindConstructor }

type Array struct {
	typeMarker
	Elem Type
}

func (*Array) Kind() Kind { return KindArray }

type TupleElem struct {
	Label    string
	Type     Type
	Optional bool
	Rest     bool
}

type Tuple struct {
	typeMarker
	Elems []TupleElem
}

func (*Tuple) Kind() Kind { return KindTuple }

type OperatorKind string

const (
	OpKeyOf    OperatorKind = "keyof"
	OpReadonly OperatorKind = "readonly"
	OpUnique   OperatorKind = "unique"
)

// Operator is a type operator that could not be evaluated yet, e.g. `keyof T`.
type Operator struct {
	typeMarker
	Op   OperatorKind
	Type Type
}

func (*Operator) Kind() Kind { return KindOperator }

type IndexedAccess struct {
	typeMarker
	Obj   Type
	Index Type
}

func (*IndexedAccess) Kind() Kind { return KindIndexedAccess }

type Conditional struct {
	typeMarker
	Check   Type
	Extends Type
	True    Type
	False   Type
}

func (*Conditional) Kind() Kind { return KindConditional }

// Infer is an `infer X` binder inside a conditional extends clause.
type Infer struct {
	typeMarker
	Name Id
}

func (*Infer) Kind() Kind { return KindInfer }

type Modifier string

const (
	ModifierNone   Modifier = ""
	ModifierAdd    Modifier = "+"
	ModifierRemove Modifier = "-"
)

type Mapped struct {
	typeMarker
	Param      Id
	Constraint Type
	NameType   Type
	Type       Type
	Optional   Modifier
	Readonly   Modifier
}

func (*Mapped) Kind() Kind { return KindMapped }

// Query is an unevaluated `typeof x`.
type Query struct {
	typeMarker
	Name Id
	Path []string
}

func (*Query) Kind() Kind { return KindQuery }

// Module is the export table of a namespace or of an imported module.
// The maps are filled once by the constructor and never mutated.
type Module struct {
	typeMarker
	Name  Id
	Types map[string][]Type
	Vars  map[string]Type
}

func (*Module) Kind() Kind { return KindModule }

type This struct {
	typeMarker
}

func (*This) Kind() Kind { return KindThis }

// Error is the placeholder produced after a reported problem. It is
// assignable to and from everything so later checks stay quiet.
type Error struct {
	typeMarker
}

func (*Error) Kind() Kind { return KindError }

var ErrorType Type = &Error{}

// IsError reports whether t is the error placeholder.
func IsError(t Type) bool {
	_, ok := t.(*Error)
	return ok
}

// Constructors for the common composite forms.

func NewLit(kind LitKind, value string) *Lit {
	if kind == LitNumber {
		value = normalizeNumber(value)
	}
	return &Lit{LitKind: kind, Value: value}
}

func StringLit(value string) *Lit { return &Lit{LitKind: LitString, Value: value} }

func NumberLit(value string) *Lit { return NewLit(LitNumber, value) }

func BoolLit(value bool) *Lit {
	if value {
		return &Lit{LitKind: LitBoolean, Value: "true"}
	}
	return &Lit{LitKind: LitBoolean, Value: "false"}
}

func NewRef(name Id, args ...Type) *Ref {
	return &Ref{Name: name, Args: args}
}

func NewArray(elem Type) *Array {
	return &Array{Elem: elem}
}

func NewTypeLit(members ...Member) *TypeLit {
	return &TypeLit{Members: members}
}

func Prop(key string, t Type) *Property {
	return &Property{Key: key, Type: t}
}

func OptProp(key string, t Type) *Property {
	return &Property{Key: key, Type: t, Optional: true}
}
