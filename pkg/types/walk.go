package types

// Children returns the direct type operands of t in a stable order.
func Children(t Type) []Type {
	var out []Type
	add := func(ts ...Type) {
		for _, c := range ts {
			if c != nil {
				out = append(out, c)
			}
		}
	}
	addFn := func(f *Function) {
		if f == nil {
			return
		}
		addTypeParams(&out, f.TypeParams)
		for _, p := range f.Params {
			add(p.Type)
		}
		add(f.Ret)
	}
	addMembers := func(ms []Member) {
		for _, m := range ms {
			switch m := m.(type) {
			case *Property:
				add(m.Type)
			case *Method:
				addFn(m.Fn)
			case *CallSignature:
				addFn(m.Fn)
			case *ConstructSignature:
				addFn(m.Fn)
			case *IndexSignature:
				add(m.Key, m.Type)
			}
		}
	}
	switch t := t.(type) {
	case *TypeLit:
		addMembers(t.Members)
	case *Interface:
		addTypeParams(&out, t.TypeParams)
		add(t.Extends...)
		addMembers(t.Body)
	case *Class:
		addTypeParams(&out, t.TypeParams)
		add(t.Super)
		add(t.Implements...)
		addMembers(t.Body)
		addMembers(t.Statics)
		addFn(t.Ctor)
	case *Alias:
		addTypeParams(&out, t.TypeParams)
		add(t.Target)
	case *Ref:
		add(t.Args...)
	case *Union:
		add(t.Types...)
	case *Intersection:
		add(t.Types...)
	case *Function:
		addFn(t)
	case *Constructor:
		addTypeParams(&out, t.TypeParams)
		for _, p := range t.Params {
			add(p.Type)
		}
		add(t.Ret)
	case *Array:
		add(t.Elem)
	case *Tuple:
		for _, e := range t.Elems {
			add(e.Type)
		}
	case *Operator:
		add(t.Type)
	case *IndexedAccess:
		add(t.Obj, t.Index)
	case *Conditional:
		add(t.Check, t.Extends, t.True, t.False)
	case *Mapped:
		add(t.Constraint, t.NameType, t.Type)
	}
	return out
}

func addTypeParams(out *[]Type, params []*TypeParamDecl) {
	for _, p := range params {
		if p.Constraint != nil {
			*out = append(*out, p.Constraint)
		}
		if p.Default != nil {
			*out = append(*out, p.Default)
		}
	}
}

// Walk visits t and its operands depth first. Returning false from fn skips
// the operands of the visited type.
func Walk(t Type, fn func(Type) bool) {
	if t == nil || !fn(t) {
		return
	}
	for _, c := range Children(t) {
		Walk(c, fn)
	}
}

// ContainsParam reports whether t mentions a free type parameter or infer
// binder. With no ids, any parameter counts. Mapped type parameters are bound
// by their mapped type and do not count.
func ContainsParam(t Type, ids ...Id) bool {
	return containsParam(t, ids, nil)
}

func containsParam(t Type, ids []Id, bound map[Id]bool) bool {
	var name Id
	switch c := t.(type) {
	case nil:
		return false
	case *Param:
		name = c.Name
	case *Infer:
		name = c.Name
	case *Mapped:
		inner := make(map[Id]bool, len(bound)+1)
		for k := range bound {
			inner[k] = true
		}
		inner[c.Param] = true
		return containsParam(c.Constraint, ids, bound) ||
			containsParam(c.NameType, ids, inner) || containsParam(c.Type, ids, inner)
	}
	if !name.IsZero() && !bound[name] {
		if len(ids) == 0 {
			return true
		}
		for _, id := range ids {
			if id == name {
				return true
			}
		}
	}
	for _, child := range Children(t) {
		if containsParam(child, ids, bound) {
			return true
		}
	}
	return false
}
