package types

import (
	"strconv"
	"strings"
)

// Equal reports structural equality. References compare by identifier and
// arguments, so recursive shapes never unfold. Union and intersection
// operands compare as sets.
func Equal(a, b Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch a := a.(type) {
	case *Keyword:
		return a.Name == b.(*Keyword).Name
	case *Lit:
		bl := b.(*Lit)
		return a.LitKind == bl.LitKind && a.Value == bl.Value
	case *TypeLit:
		return membersEqual(a.Members, b.(*TypeLit).Members)
	case *Interface:
		bi := b.(*Interface)
		return a.Name == bi.Name && typeParamsEqual(a.TypeParams, bi.TypeParams) &&
			typesEqual(a.Extends, bi.Extends) && membersEqual(a.Body, bi.Body)
	case *Class:
		bc := b.(*Class)
		return a.Name == bc.Name && a.Abstract == bc.Abstract && typeParamsEqual(a.TypeParams, bc.TypeParams) &&
			Equal(a.Super, bc.Super) && typesEqual(a.Implements, bc.Implements) &&
			membersEqual(a.Body, bc.Body) && membersEqual(a.Statics, bc.Statics)
	case *Enum:
		be := b.(*Enum)
		if a.Name != be.Name || a.Const != be.Const || len(a.Members) != len(be.Members) {
			return false
		}
		for i := range a.Members {
			if a.Members[i].Name != be.Members[i].Name || !Equal(a.Members[i].Value, be.Members[i].Value) {
				return false
			}
		}
		return true
	case *Alias:
		ba := b.(*Alias)
		return a.Name == ba.Name && typeParamsEqual(a.TypeParams, ba.TypeParams) && Equal(a.Target, ba.Target)
	case *Ref:
		br := b.(*Ref)
		return a.Name == br.Name && typesEqual(a.Args, br.Args)
	case *Param:
		return a.Name == b.(*Param).Name
	case *Union:
		return sameSet(a.Types, b.(*Union).Types)
	case *Intersection:
		return sameSet(a.Types, b.(*Intersection).Types)
	case *Function:
		bf := b.(*Function)
		return typeParamsEqual(a.TypeParams, bf.TypeParams) && paramsEqual(a.Params, bf.Params) && Equal(a.Ret, bf.Ret)
	case *Constructor:
		bc := b.(*Constructor)
		return a.Abstract == bc.Abstract && typeParamsEqual(a.TypeParams, bc.TypeParams) &&
			paramsEqual(a.Params, bc.Params) && Equal(a.Ret, bc.Ret)
	case *Array:
		return Equal(a.Elem, b.(*Array).Elem)
	case *Tuple:
		bt := b.(*Tuple)
		if len(a.Elems) != len(bt.Elems) {
			return false
		}
		for i := range a.Elems {
			x, y := a.Elems[i], bt.Elems[i]
			if x.Optional != y.Optional || x.Rest != y.Rest || !Equal(x.Type, y.Type) {
				return false
			}
		}
		return true
	case *Operator:
		bo := b.(*Operator)
		return a.Op == bo.Op && Equal(a.Type, bo.Type)
	case *IndexedAccess:
		bi := b.(*IndexedAccess)
		return Equal(a.Obj, bi.Obj) && Equal(a.Index, bi.Index)
	case *Conditional:
		bc := b.(*Conditional)
		return Equal(a.Check, bc.Check) && Equal(a.Extends, bc.Extends) && Equal(a.True, bc.True) && Equal(a.False, bc.False)
	case *Infer:
		return a.Name == b.(*Infer).Name
	case *Mapped:
		bm := b.(*Mapped)
		return a.Param == bm.Param && a.Optional == bm.Optional && a.Readonly == bm.Readonly &&
			Equal(a.Constraint, bm.Constraint) && Equal(a.NameType, bm.NameType) && Equal(a.Type, bm.Type)
	case *Query:
		bq := b.(*Query)
		return a.Name == bq.Name && strings.Join(a.Path, ".") == strings.Join(bq.Path, ".")
	case *Module:
		return a.Name == b.(*Module).Name
	case *This, *Error:
		return true
	}
	return false
}

func typesEqual(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func sameSet(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		if !containsType(b, x) {
			return false
		}
	}
	for _, y := range b {
		if !containsType(a, y) {
			return false
		}
	}
	return true
}

func containsType(ts []Type, t Type) bool {
	for _, c := range ts {
		if Equal(c, t) {
			return true
		}
	}
	return false
}

func typeParamsEqual(a, b []*TypeParamDecl) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !Equal(a[i].Constraint, b[i].Constraint) || !Equal(a[i].Default, b[i].Default) {
			return false
		}
	}
	return true
}

func paramsEqual(a, b []FnParam) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Optional != b[i].Optional || a[i].Rest != b[i].Rest || !Equal(a[i].Type, b[i].Type) {
			return false
		}
	}
	return true
}

func membersEqual(a, b []Member) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !memberEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func memberEqual(a, b Member) bool {
	switch a := a.(type) {
	case *Property:
		bp, ok := b.(*Property)
		return ok && a.Key == bp.Key && a.Optional == bp.Optional && a.Readonly == bp.Readonly && Equal(a.Type, bp.Type)
	case *Method:
		bm, ok := b.(*Method)
		return ok && a.Key == bm.Key && a.Optional == bm.Optional && Equal(a.Fn, bm.Fn)
	case *CallSignature:
		bc, ok := b.(*CallSignature)
		return ok && Equal(a.Fn, bc.Fn)
	case *ConstructSignature:
		bc, ok := b.(*ConstructSignature)
		return ok && Equal(a.Fn, bc.Fn)
	case *IndexSignature:
		bi, ok := b.(*IndexSignature)
		return ok && a.Readonly == bi.Readonly && Equal(a.Key, bi.Key) && Equal(a.Type, bi.Type)
	}
	return false
}

// normalizeNumber canonicalises numeric literal text so `1.0` and `1`
// compare equal.
func normalizeNumber(raw string) string {
	clean := strings.ReplaceAll(raw, "_", "")
	if i, err := strconv.ParseInt(clean, 0, 64); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := strconv.ParseFloat(clean, 64); err == nil {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return raw
}
