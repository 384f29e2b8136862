package types

// Subst maps type parameters (and infer binders) to their arguments.
type Subst map[Id]Type

// Substitute replaces every free occurrence of the parameters in s.
// Types that mention none of them are returned unchanged, so sharing is kept.
func Substitute(t Type, s Subst) Type {
	if t == nil || len(s) == 0 {
		return t
	}
	ids := make([]Id, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	if !ContainsParam(t, ids...) {
		return t
	}
	return subst(t, s)
}

func subst(t Type, s Subst) Type {
	switch t := t.(type) {
	case nil:
		return nil
	case *Param:
		if r, ok := s[t.Name]; ok {
			return r
		}
		return t
	case *Infer:
		if r, ok := s[t.Name]; ok {
			return r
		}
		return t
	case *TypeLit:
		return &TypeLit{Members: substMembers(t.Members, s)}
	case *Interface:
		return &Interface{Name: t.Name, TypeParams: substTypeParams(t.TypeParams, s), Extends: substTypes(t.Extends, s), Body: substMembers(t.Body, s)}
	case *Class:
		return &Class{
			Name: t.Name, TypeParams: substTypeParams(t.TypeParams, s), Super: subst(t.Super, s),
			Implements: substTypes(t.Implements, s), Body: substMembers(t.Body, s), Statics: t.Statics,
			Ctor: substFn(t.Ctor, s), Abstract: t.Abstract,
		}
	case *Alias:
		return &Alias{Name: t.Name, TypeParams: substTypeParams(t.TypeParams, s), Target: subst(t.Target, s)}
	case *Ref:
		return &Ref{Name: t.Name, Args: substTypes(t.Args, s)}
	case *Union:
		return NewUnion(substTypes(t.Types, s)...)
	case *Intersection:
		return NewIntersection(substTypes(t.Types, s)...)
	case *Function:
		return substFn(t, s)
	case *Constructor:
		return &Constructor{TypeParams: substTypeParams(t.TypeParams, s), Params: substParams(t.Params, s), Ret: subst(t.Ret, s), Abstract: t.Abstract}
	case *Array:
		return &Array{Elem: subst(t.Elem, s)}
	case *Tuple:
		elems := make([]TupleElem, len(t.Elems))
		for i, e := range t.Elems {
			e.Type = subst(e.Type, s)
			elems[i] = e
		}
		return &Tuple{Elems: elems}
	case *Operator:
		return &Operator{Op: t.Op, Type: subst(t.Type, s)}
	case *IndexedAccess:
		return &IndexedAccess{Obj: subst(t.Obj, s), Index: subst(t.Index, s)}
	case *Conditional:
		return &Conditional{Check: subst(t.Check, s), Extends: subst(t.Extends, s), True: subst(t.True, s), False: subst(t.False, s)}
	case *Mapped:
		inner := s
		if _, shadowed := s[t.Param]; shadowed {
			inner = make(Subst, len(s))
			for k, v := range s {
				if k != t.Param {
					inner[k] = v
				}
			}
		}
		return &Mapped{
			Param: t.Param, Constraint: subst(t.Constraint, s), NameType: subst(t.NameType, inner),
			Type: subst(t.Type, inner), Optional: t.Optional, Readonly: t.Readonly,
		}
	}
	return t
}

func substTypes(ts []Type, s Subst) []Type {
	if ts == nil {
		return nil
	}
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = subst(t, s)
	}
	return out
}

func substParams(ps []FnParam, s Subst) []FnParam {
	out := make([]FnParam, len(ps))
	for i, p := range ps {
		p.Type = subst(p.Type, s)
		out[i] = p
	}
	return out
}

func substTypeParams(tps []*TypeParamDecl, s Subst) []*TypeParamDecl {
	if tps == nil {
		return nil
	}
	out := make([]*TypeParamDecl, len(tps))
	for i, tp := range tps {
		out[i] = &TypeParamDecl{Name: tp.Name, Constraint: subst(tp.Constraint, s), Default: subst(tp.Default, s)}
	}
	return out
}

func substFn(f *Function, s Subst) *Function {
	if f == nil {
		return nil
	}
	return &Function{TypeParams: substTypeParams(f.TypeParams, s), Params: substParams(f.Params, s), Ret: subst(f.Ret, s)}
}

func substMembers(ms []Member, s Subst) []Member {
	out := make([]Member, len(ms))
	for i, m := range ms {
		switch m := m.(type) {
		case *Property:
			out[i] = &Property{Key: m.Key, Type: subst(m.Type, s), Optional: m.Optional, Readonly: m.Readonly}
		case *Method:
			out[i] = &Method{Key: m.Key, Optional: m.Optional, Fn: substFn(m.Fn, s)}
		case *CallSignature:
			out[i] = &CallSignature{Fn: substFn(m.Fn, s)}
		case *ConstructSignature:
			out[i] = &ConstructSignature{Fn: substFn(m.Fn, s)}
		case *IndexSignature:
			out[i] = &IndexSignature{Key: subst(m.Key, s), Type: subst(m.Type, s), Readonly: m.Readonly}
		default:
			out[i] = m
		}
	}
	return out
}
