package analyzer

import (
	"github.com/devgony/stc/pkg/types"
)

// assumption is a pair being compared further up; recursive shapes are
// assumed assignable when they reach themselves again.
type assumption struct {
	src, dst types.Type
}

// IsAssignable reports whether a value of type src can be stored in a
// binding of type dst. The error is an engine failure such as
// ErrDepthExceeded.
func (a *Analyzer) IsAssignable(src, dst types.Type) (bool, error) {
	return a.assignable(src, dst, nil)
}

func (a *Analyzer) assignable(src, dst types.Type, seen []assumption) (bool, error) {
	if src == nil || dst == nil {
		return true, nil
	}
	if src == dst || types.IsError(src) || types.IsError(dst) {
		return true, nil
	}
	if kw, ok := dst.(*types.Keyword); ok {
		switch kw.Name {
		case types.KeywordAny, types.KeywordUnknown:
			return true, nil
		}
	}
	if kw, ok := src.(*types.Keyword); ok {
		switch kw.Name {
		case types.KeywordAny, types.KeywordNever:
			return true, nil
		case types.KeywordNull, types.KeywordUndefined:
			if !a.env.Rule().StrictNullChecks {
				return true, nil
			}
		}
	}
	if types.Equal(src, dst) {
		return true, nil
	}
	for _, s := range seen {
		if types.Equal(s.src, src) && types.Equal(s.dst, dst) {
			return true, nil
		}
	}
	if err := a.enter(types.Id{Sym: "assignable"}); err != nil {
		return false, err
	}
	defer a.leave()
	seen = append(seen, assumption{src: src, dst: dst})

	// unions on the source side must fit member by member
	if u, ok := src.(*types.Union); ok {
		for _, member := range u.Types {
			ok, err := a.assignable(member, dst, seen)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
	if u, ok := dst.(*types.Union); ok {
		for _, member := range u.Types {
			ok, err := a.assignable(src, member, seen)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		if _, isRef := src.(*types.Ref); !isRef {
			return false, nil
		}
	}
	if in, ok := dst.(*types.Intersection); ok {
		for _, member := range in.Types {
			ok, err := a.assignable(src, member, seen)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
	if in, ok := src.(*types.Intersection); ok {
		for _, member := range in.Types {
			ok, err := a.assignable(member, dst, seen)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
	}
	if p, ok := src.(*types.Param); ok {
		if p.Constraint == nil {
			return false, nil
		}
		return a.assignable(p.Constraint, dst, seen)
	}
	if _, ok := dst.(*types.Param); ok {
		return false, nil
	}

	s, err := a.expand(src)
	if err != nil {
		return false, err
	}
	d, err := a.expand(dst)
	if err != nil {
		return false, err
	}
	if s != src || d != dst {
		return a.assignable(s, d, seen)
	}
	return a.assignableStructure(s, d, seen)
}

func (a *Analyzer) assignableStructure(src, dst types.Type, seen []assumption) (bool, error) {
	switch d := dst.(type) {
	case *types.Keyword:
		return a.assignableToKeyword(src, d), nil
	case *types.Lit:
		l, ok := src.(*types.Lit)
		return ok && types.Equal(l, d), nil
	case *types.Enum:
		if e, ok := src.(*types.Enum); ok {
			return e.Name == d.Name, nil
		}
		if l, ok := src.(*types.Lit); ok {
			for _, m := range d.Members {
				if m.Value != nil && types.Equal(m.Value, l) {
					return true, nil
				}
			}
			return l.LitKind == types.LitNumber && enumIsNumeric(d), nil
		}
		return types.IsKeyword(src, types.KeywordNumber) && enumIsNumeric(d), nil
	case *types.Array:
		switch s := src.(type) {
		case *types.Array:
			return a.assignable(s.Elem, d.Elem, seen)
		case *types.Tuple:
			for _, el := range s.Elems {
				et := el.Type
				if el.Rest {
					if inner, ok, err := a.elementType(el.Type); err != nil {
						return false, err
					} else if ok {
						et = inner
					}
				}
				ok, err := a.assignable(et, d.Elem, seen)
				if err != nil || !ok {
					return false, err
				}
			}
			return true, nil
		}
		return false, nil
	case *types.Tuple:
		s, ok := src.(*types.Tuple)
		if !ok {
			return false, nil
		}
		return a.assignableTuple(s, d, seen)
	case *types.Operator:
		if d.Op == types.OpReadonly {
			inner := src
			if op, ok := src.(*types.Operator); ok && op.Op == types.OpReadonly {
				inner = op.Type
			}
			return a.assignable(inner, d.Type, seen)
		}
	case *types.Function:
		sigs, err := a.signatures(src, false)
		if err != nil {
			return false, err
		}
		return a.anySignature(sigs, d, false, seen)
	case *types.Constructor:
		sigs, err := a.signatures(src, true)
		if err != nil {
			return false, err
		}
		return a.anySignature(sigs, &types.Function{TypeParams: d.TypeParams, Params: d.Params, Ret: d.Ret}, false, seen)
	case *types.Module:
		s, ok := src.(*types.Module)
		return ok && s.Name == d.Name, nil
	}
	if op, ok := src.(*types.Operator); ok && op.Op == types.OpReadonly {
		if _, isArray := op.Type.(*types.Array); isArray {
			return false, nil
		}
		if _, isTuple := op.Type.(*types.Tuple); isTuple {
			return false, nil
		}
	}
	switch src.(type) {
	case *types.Keyword:
		if types.IsKeyword(src, types.KeywordNull) || types.IsKeyword(src, types.KeywordUndefined) || types.IsKeyword(src, types.KeywordVoid) {
			return false, nil
		}
	case *types.Conditional, *types.IndexedAccess, *types.Mapped:
		return false, nil
	}
	return a.assignableMembers(src, dst, seen)
}

func enumIsNumeric(e *types.Enum) bool {
	for _, m := range e.Members {
		if m.Value != nil && m.Value.LitKind != types.LitNumber {
			return false
		}
	}
	return true
}

func (a *Analyzer) assignableToKeyword(src types.Type, d *types.Keyword) bool {
	strict := a.env.Rule().StrictNullChecks
	switch s := src.(type) {
	case *types.Keyword:
		if s.Name == d.Name {
			return true
		}
		switch d.Name {
		case types.KeywordVoid:
			return s.Name == types.KeywordUndefined || (!strict && s.Name == types.KeywordNull)
		}
		return false
	case *types.Lit:
		return types.KeywordKind(s.LitKind) == d.Name
	case *types.Enum:
		return d.Name == types.KeywordNumber && enumIsNumeric(s)
	}
	if d.Name == types.KeywordObject {
		switch src.(type) {
		case *types.TypeLit, *types.Interface, *types.Class, *types.Array, *types.Tuple, *types.Function, *types.Constructor, *types.Module:
			return true
		}
	}
	return false
}

func (a *Analyzer) assignableTuple(s, d *types.Tuple, seen []assumption) (bool, error) {
	for i, del := range d.Elems {
		if del.Rest {
			elem, _, err := a.elementType(del.Type)
			if err != nil {
				return false, err
			}
			for _, sel := range s.Elems[min(i, len(s.Elems)):] {
				ok, err := a.assignable(sel.Type, elem, seen)
				if err != nil || !ok {
					return false, err
				}
			}
			return true, nil
		}
		if i >= len(s.Elems) {
			if del.Optional {
				continue
			}
			return false, nil
		}
		if s.Elems[i].Rest {
			return false, nil
		}
		ok, err := a.assignable(s.Elems[i].Type, del.Type, seen)
		if err != nil || !ok {
			return false, err
		}
	}
	return len(s.Elems) <= len(d.Elems), nil
}

// anySignature reports whether one of the source signatures fits dst.
func (a *Analyzer) anySignature(sigs []*types.Function, dst *types.Function, method bool, seen []assumption) (bool, error) {
	for _, s := range sigs {
		ok, err := a.assignableSignature(s, dst, method, seen)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// assignableSignature compares two signatures. Parameters are compared
// contravariantly under StrictFunctionTypes unless the signature belongs to a
// method, which stays bivariant.
func (a *Analyzer) assignableSignature(src, dst *types.Function, method bool, seen []assumption) (bool, error) {
	if len(src.TypeParams) > 0 {
		s := make(types.Subst, len(src.TypeParams))
		for _, tp := range src.TypeParams {
			if tp.Constraint != nil {
				s[tp.Name] = tp.Constraint
			} else {
				s[tp.Name] = types.Any
			}
		}
		src = types.Substitute(&types.Function{Params: src.Params, Ret: src.Ret}, s).(*types.Function)
	}
	required := 0
	for _, p := range src.Params {
		if !p.Optional && !p.Rest {
			required++
		}
	}
	if required > len(dst.Params) && !hasRest(dst) {
		return false, nil
	}
	strict := a.env.Rule().StrictFunctionTypes && !method
	for i, sp := range src.Params {
		if i >= len(dst.Params) {
			break
		}
		st, dt := sp.Type, dst.Params[i].Type
		ok, err := a.assignable(dt, st, seen)
		if err != nil {
			return false, err
		}
		if !ok && !strict {
			if ok, err = a.assignable(st, dt, seen); err != nil {
				return false, err
			}
		}
		if !ok {
			return false, nil
		}
	}
	if dst.Ret == nil || types.IsKeyword(dst.Ret, types.KeywordVoid) {
		return true, nil
	}
	return a.assignable(src.Ret, dst.Ret, seen)
}

func hasRest(f *types.Function) bool {
	return len(f.Params) > 0 && f.Params[len(f.Params)-1].Rest
}

// assignableMembers checks structural compatibility: every required member
// of dst exists on src with an assignable type.
func (a *Analyzer) assignableMembers(src, dst types.Type, seen []assumption) (bool, error) {
	dm, err := a.members(dst)
	if err != nil {
		return false, err
	}
	sm, err := a.members(src)
	if err != nil {
		return false, err
	}
	if len(dm) == 0 {
		if _, isObject := dst.(*types.TypeLit); isObject {
			return true, nil
		}
		_, isIface := dst.(*types.Interface)
		_, isClass := dst.(*types.Class)
		return isIface || isClass, nil
	}
	for _, m := range dm {
		switch m := m.(type) {
		case *types.Property:
			st, ok := types.PropertyOf(sm, m.Key)
			if !ok {
				if m.Optional {
					continue
				}
				return false, nil
			}
			if sp, isProp := types.FindMember(sm, m.Key).(*types.Property); isProp && sp.Optional && !m.Optional && a.env.Rule().StrictNullChecks {
				return false, nil
			}
			want := m.Type
			if m.Optional {
				want = types.NewUnion(m.Type, types.Undefined)
			}
			ok, err := a.assignable(st, want, seen)
			if err != nil || !ok {
				return false, err
			}
		case *types.Method:
			sf, ok := types.PropertyOf(sm, m.Key)
			if !ok {
				if m.Optional {
					continue
				}
				return false, nil
			}
			sigs, err := a.signatures(sf, false)
			if err != nil {
				return false, err
			}
			ok, err = a.anySignature(sigs, m.Fn, true, seen)
			if err != nil || !ok {
				return false, err
			}
		case *types.CallSignature:
			sigs, err := a.signatures(src, false)
			if err != nil {
				return false, err
			}
			ok, err := a.anySignature(sigs, m.Fn, false, seen)
			if err != nil || !ok {
				return false, err
			}
		case *types.ConstructSignature:
			sigs, err := a.signatures(src, true)
			if err != nil {
				return false, err
			}
			ok, err := a.anySignature(sigs, m.Fn, false, seen)
			if err != nil || !ok {
				return false, err
			}
		case *types.IndexSignature:
			for _, s := range sm {
				var st types.Type
				switch s := s.(type) {
				case *types.Property:
					if types.IsKeyword(m.Key, types.KeywordNumber) && !isNumericKey(s.Key) {
						continue
					}
					st = s.Type
				case *types.IndexSignature:
					st = s.Type
				default:
					continue
				}
				ok, err := a.assignable(st, m.Type, seen)
				if err != nil || !ok {
					return false, err
				}
			}
		}
	}
	return true, nil
}

func isNumericKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if (r < '0' || r > '9') && r != '.' && r != '-' {
			return false
		}
	}
	return true
}
