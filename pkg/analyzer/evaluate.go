package analyzer

import (
	"strconv"

	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/types"
)

// hasFreeParams reports whether t mentions a generic parameter or infer
// binder that no enclosing signature, mapped type or conditional binds.
func hasFreeParams(t types.Type) bool {
	return hasFree(t, nil)
}

func hasFree(t types.Type, bound map[types.Id]bool) bool {
	with := func(ids ...types.Id) map[types.Id]bool {
		if len(ids) == 0 {
			return bound
		}
		inner := make(map[types.Id]bool, len(bound)+len(ids))
		for k := range bound {
			inner[k] = true
		}
		for _, id := range ids {
			inner[id] = true
		}
		return inner
	}
	children := func(b map[types.Id]bool) bool {
		for _, c := range types.Children(t) {
			if hasFree(c, b) {
				return true
			}
		}
		return false
	}
	switch t := t.(type) {
	case nil:
		return false
	case *types.Param:
		return !bound[t.Name]
	case *types.Infer:
		return !bound[t.Name]
	case *types.Function:
		return children(with(typeParamIds(t.TypeParams)...))
	case *types.Constructor:
		return children(with(typeParamIds(t.TypeParams)...))
	case *types.Interface:
		return children(with(typeParamIds(t.TypeParams)...))
	case *types.Class:
		return children(with(typeParamIds(t.TypeParams)...))
	case *types.Alias:
		return children(with(typeParamIds(t.TypeParams)...))
	case *types.Mapped:
		inner := with(t.Param)
		return hasFree(t.Constraint, bound) || hasFree(t.NameType, inner) || hasFree(t.Type, inner)
	case *types.Conditional:
		inner := with(infersOf(t.Extends)...)
		return hasFree(t.Check, bound) || hasFree(t.Extends, inner) || hasFree(t.True, inner) || hasFree(t.False, bound)
	}
	return children(bound)
}

func typeParamIds(params []*types.TypeParamDecl) []types.Id {
	out := make([]types.Id, 0, len(params))
	for _, p := range params {
		out = append(out, p.Name)
	}
	return out
}

// infersOf lists the infer binders of an extends type.
func infersOf(t types.Type) []types.Id {
	var out []types.Id
	types.Walk(t, func(c types.Type) bool {
		if in, ok := c.(*types.Infer); ok {
			out = append(out, in.Name)
		}
		return true
	})
	return out
}

// bindTypeParams maps generic parameters to arguments, filling defaults and
// using the error type for missing arguments.
func (a *Analyzer) bindTypeParams(params []*types.TypeParamDecl, args []types.Type) (types.Subst, error) {
	s := make(types.Subst, len(params))
	for i, p := range params {
		switch {
		case i < len(args):
			s[p.Name] = args[i]
		case p.Default != nil:
			def, err := a.instantiate(p.Default, s)
			if err != nil {
				return nil, err
			}
			s[p.Name] = def
		default:
			s[p.Name] = types.ErrorType
		}
	}
	return s, nil
}

func (a *Analyzer) instantiateAlias(alias *types.Alias, args []types.Type) (types.Type, error) {
	if err := a.enter(alias.Name); err != nil {
		return nil, err
	}
	defer a.leave()
	s, err := a.bindTypeParams(alias.TypeParams, args)
	if err != nil {
		return nil, err
	}
	return a.instantiate(alias.Target, s)
}

// instantiate substitutes s into t and evaluates every form that no longer
// depends on a free parameter. Alias references in top-level position are
// expanded; inside structural boundaries they stay references.
func (a *Analyzer) instantiate(t types.Type, s types.Subst) (types.Type, error) {
	return a.inst(t, s, false)
}

func (a *Analyzer) inst(t types.Type, s types.Subst, lazy bool) (types.Type, error) {
	switch t := t.(type) {
	case nil:
		return nil, nil
	case *types.Param:
		if r, ok := s[t.Name]; ok {
			return r, nil
		}
		return t, nil
	case *types.Infer:
		if r, ok := s[t.Name]; ok {
			return r, nil
		}
		return t, nil
	case *types.Keyword, *types.Lit, *types.Error, *types.This, *types.Enum, *types.Module, *types.Alias:
		return t, nil
	case *types.Ref:
		args, err := a.instAll(t.Args, s, lazy)
		if err != nil {
			return nil, err
		}
		ref := &types.Ref{Name: t.Name, Args: args}
		if lazy || a.deferred(ref) || !a.isAliasRef(ref) {
			return ref, nil
		}
		return a.expandRef(ref)
	case *types.Query:
		v, ok, err := a.resolveVar(t.Name, nil)
		if err != nil {
			return nil, err
		}
		if !ok {
			return types.ErrorType, nil
		}
		owner := t.Name.Sym
		for _, seg := range t.Path {
			if v, err = a.propertyType(v, seg, owner, nil); err != nil {
				return nil, err
			}
			owner += "." + seg
		}
		return v, nil
	case *types.TypeLit:
		members, err := a.instMembers(t.Members, s)
		if err != nil {
			return nil, err
		}
		return &types.TypeLit{Members: members}, nil
	case *types.Interface:
		if len(s) == 0 {
			return t, nil
		}
		extends, err := a.instAll(t.Extends, s, true)
		if err != nil {
			return nil, err
		}
		body, err := a.instMembers(t.Body, s)
		if err != nil {
			return nil, err
		}
		return &types.Interface{Name: t.Name, TypeParams: t.TypeParams, Extends: extends, Body: body}, nil
	case *types.Class:
		if len(s) == 0 {
			return t, nil
		}
		return types.Substitute(t, s), nil
	case *types.Union:
		ts, err := a.instAll(t.Types, s, lazy)
		if err != nil {
			return nil, err
		}
		return types.NewUnion(ts...), nil
	case *types.Intersection:
		ts, err := a.instAll(t.Types, s, lazy)
		if err != nil {
			return nil, err
		}
		return types.NewIntersection(ts...), nil
	case *types.Function:
		return a.instFn(t, s)
	case *types.Constructor:
		fn, err := a.instFn(&types.Function{TypeParams: t.TypeParams, Params: t.Params, Ret: t.Ret}, s)
		if err != nil {
			return nil, err
		}
		return &types.Constructor{TypeParams: fn.TypeParams, Params: fn.Params, Ret: fn.Ret, Abstract: t.Abstract}, nil
	case *types.Array:
		elem, err := a.inst(t.Elem, s, true)
		if err != nil {
			return nil, err
		}
		return types.NewArray(elem), nil
	case *types.Tuple:
		elems := make([]types.TupleElem, len(t.Elems))
		for i, el := range t.Elems {
			et, err := a.inst(el.Type, s, true)
			if err != nil {
				return nil, err
			}
			el.Type = et
			elems[i] = el
		}
		return &types.Tuple{Elems: elems}, nil
	case *types.Operator:
		inner, err := a.inst(t.Type, s, lazy)
		if err != nil {
			return nil, err
		}
		if t.Op == types.OpKeyOf && !a.deferred(inner) {
			return a.keyOf(inner)
		}
		return &types.Operator{Op: t.Op, Type: inner}, nil
	case *types.IndexedAccess:
		obj, err := a.inst(t.Obj, s, false)
		if err != nil {
			return nil, err
		}
		idx, err := a.inst(t.Index, s, false)
		if err != nil {
			return nil, err
		}
		out := &types.IndexedAccess{Obj: obj, Index: idx}
		if a.deferred(out) {
			return out, nil
		}
		return a.indexedAccess(obj, idx, nil)
	case *types.Conditional:
		return a.evalConditional(t, s)
	case *types.Mapped:
		return a.evalMapped(t, s)
	}
	return t, nil
}

func (a *Analyzer) instAll(ts []types.Type, s types.Subst, lazy bool) ([]types.Type, error) {
	if ts == nil {
		return nil, nil
	}
	out := make([]types.Type, len(ts))
	for i, t := range ts {
		r, err := a.inst(t, s, lazy)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func (a *Analyzer) instFn(f *types.Function, s types.Subst) (*types.Function, error) {
	if f == nil {
		return nil, nil
	}
	out := &types.Function{TypeParams: f.TypeParams, Params: make([]types.FnParam, len(f.Params))}
	for i, p := range f.Params {
		pt, err := a.inst(p.Type, s, true)
		if err != nil {
			return nil, err
		}
		p.Type = pt
		out.Params[i] = p
	}
	ret, err := a.inst(f.Ret, s, true)
	if err != nil {
		return nil, err
	}
	out.Ret = ret
	if len(f.TypeParams) > 0 && len(s) > 0 {
		out.TypeParams = make([]*types.TypeParamDecl, len(f.TypeParams))
		for i, tp := range f.TypeParams {
			out.TypeParams[i] = &types.TypeParamDecl{
				Name:       tp.Name,
				Constraint: types.Substitute(tp.Constraint, s),
				Default:    types.Substitute(tp.Default, s),
			}
		}
	}
	return out, nil
}

func (a *Analyzer) instMembers(ms []types.Member, s types.Subst) ([]types.Member, error) {
	out := make([]types.Member, len(ms))
	for i, m := range ms {
		switch m := m.(type) {
		case *types.Property:
			t, err := a.inst(m.Type, s, true)
			if err != nil {
				return nil, err
			}
			out[i] = &types.Property{Key: m.Key, Type: t, Optional: m.Optional, Readonly: m.Readonly}
		case *types.Method:
			fn, err := a.instFn(m.Fn, s)
			if err != nil {
				return nil, err
			}
			out[i] = &types.Method{Key: m.Key, Optional: m.Optional, Fn: fn}
		case *types.CallSignature:
			fn, err := a.instFn(m.Fn, s)
			if err != nil {
				return nil, err
			}
			out[i] = &types.CallSignature{Fn: fn}
		case *types.ConstructSignature:
			fn, err := a.instFn(m.Fn, s)
			if err != nil {
				return nil, err
			}
			out[i] = &types.ConstructSignature{Fn: fn}
		case *types.IndexSignature:
			key, err := a.inst(m.Key, s, false)
			if err != nil {
				return nil, err
			}
			t, err := a.inst(m.Type, s, true)
			if err != nil {
				return nil, err
			}
			out[i] = &types.IndexSignature{Key: key, Type: t, Readonly: m.Readonly}
		default:
			out[i] = m
		}
	}
	return out, nil
}

// isAliasRef reports whether ref names a type alias.
func (a *Analyzer) isAliasRef(ref *types.Ref) bool {
	e, _ := a.lookupType(ref.Name, nil)
	if e == nil {
		return false
	}
	for _, d := range e.Decls {
		if _, ok := d.Node.(*ast.TypeAliasDeclaration); ok {
			return true
		}
	}
	return false
}

// evalConditional evaluates `Check extends Extends ? True : False` under s.
// A check type that was a naked parameter distributes over unions.
func (a *Analyzer) evalConditional(c *types.Conditional, s types.Subst) (types.Type, error) {
	check, err := a.inst(c.Check, s, false)
	if err != nil {
		return nil, err
	}
	if _, naked := c.Check.(*types.Param); naked {
		if u, ok := check.(*types.Union); ok {
			out := make([]types.Type, 0, len(u.Types))
			for _, member := range u.Types {
				r, err := a.evalConditional(c, withBinding(s, c.Check.(*types.Param).Name, member))
				if err != nil {
					return nil, err
				}
				out = append(out, r)
			}
			return types.NewUnion(out...), nil
		}
		if types.IsKeyword(check, types.KeywordNever) {
			return types.Never, nil
		}
	}
	extends, err := a.inst(c.Extends, s, false)
	if err != nil {
		return nil, err
	}
	if a.deferred(check) || hasFree(extends, setOf(infersOf(c.Extends))) {
		trueT, err := a.inst(c.True, s, true)
		if err != nil {
			return nil, err
		}
		falseT, err := a.inst(c.False, s, true)
		if err != nil {
			return nil, err
		}
		return &types.Conditional{Check: check, Extends: extends, True: trueT, False: falseT}, nil
	}
	if err := a.enter(types.Id{Sym: "conditional"}); err != nil {
		return nil, err
	}
	defer a.leave()
	if types.IsKeyword(check, types.KeywordAny) || types.IsError(check) {
		trueT, err := a.inst(c.True, withInfers(s, c.Extends, check), false)
		if err != nil {
			return nil, err
		}
		falseT, err := a.inst(c.False, s, false)
		if err != nil {
			return nil, err
		}
		return types.NewUnion(trueT, falseT), nil
	}
	binds := types.Subst{}
	ok, err := a.inferFrom(check, extends, binds)
	if err != nil {
		return nil, err
	}
	if ok {
		inner := make(types.Subst, len(s)+len(binds))
		for k, v := range s {
			inner[k] = v
		}
		for _, id := range infersOf(c.Extends) {
			if v, found := binds[id]; found {
				inner[id] = v
			} else {
				inner[id] = types.Unknown
			}
		}
		matched, err := a.inst(extends, inner, false)
		if err != nil {
			return nil, err
		}
		if ok, err = a.IsAssignable(check, matched); err != nil {
			return nil, err
		}
		if ok {
			return a.inst(c.True, inner, false)
		}
	}
	return a.inst(c.False, s, false)
}

func withBinding(s types.Subst, id types.Id, t types.Type) types.Subst {
	out := make(types.Subst, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[id] = t
	return out
}

func withInfers(s types.Subst, extends types.Type, t types.Type) types.Subst {
	out := s
	for _, id := range infersOf(extends) {
		out = withBinding(out, id, t)
	}
	return out
}

func setOf(ids []types.Id) map[types.Id]bool {
	out := make(map[types.Id]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

// inferFrom matches src against a pattern containing infer binders and
// records the candidates in binds. It reports false when the shapes cannot
// match.
func (a *Analyzer) inferFrom(src, pattern types.Type, binds types.Subst) (bool, error) {
	switch p := pattern.(type) {
	case *types.Infer:
		if prev, ok := binds[p.Name]; ok {
			binds[p.Name] = types.NewUnion(prev, src)
		} else {
			binds[p.Name] = src
		}
		return true, nil
	case *types.Array:
		elem, ok, err := a.elementType(src)
		if err != nil || !ok {
			return ok, err
		}
		return a.inferFrom(elem, p.Elem, binds)
	case *types.Tuple:
		st, ok := src.(*types.Tuple)
		if !ok {
			if op, isOp := src.(*types.Operator); isOp && op.Op == types.OpReadonly {
				st, ok = op.Type.(*types.Tuple)
			}
		}
		if !ok {
			return false, nil
		}
		for i, el := range p.Elems {
			if el.Rest {
				rest := &types.Tuple{}
				if i < len(st.Elems) {
					rest.Elems = st.Elems[i:]
				}
				return a.inferFrom(rest, el.Type, binds)
			}
			if i >= len(st.Elems) {
				if el.Optional {
					continue
				}
				return false, nil
			}
			if _, err := a.inferFrom(st.Elems[i].Type, el.Type, binds); err != nil {
				return false, err
			}
		}
		return true, nil
	case *types.Function:
		sf, ok, err := a.callSignature(src)
		if err != nil || !ok {
			return ok, err
		}
		for i, pp := range p.Params {
			if pp.Rest {
				rest := &types.Tuple{}
				for _, sp := range sf.Params[min(i, len(sf.Params)):] {
					rest.Elems = append(rest.Elems, types.TupleElem{Label: sp.Name, Type: sp.Type, Optional: sp.Optional, Rest: sp.Rest})
				}
				if _, err := a.inferFrom(rest, pp.Type, binds); err != nil {
					return false, err
				}
				break
			}
			if i < len(sf.Params) {
				if _, err := a.inferFrom(sf.Params[i].Type, pp.Type, binds); err != nil {
					return false, err
				}
			}
		}
		return a.inferFrom(sf.Ret, p.Ret, binds)
	case *types.Constructor:
		sc, ok, err := a.constructSignature(src)
		if err != nil || !ok {
			return ok, err
		}
		for i, pp := range p.Params {
			if i < len(sc.Params) {
				if _, err := a.inferFrom(sc.Params[i].Type, pp.Type, binds); err != nil {
					return false, err
				}
			}
		}
		return a.inferFrom(sc.Ret, p.Ret, binds)
	case *types.Ref:
		if len(infersOf(p)) == 0 {
			return true, nil
		}
		if sr, ok := src.(*types.Ref); ok && sr.Name == p.Name {
			for i, arg := range p.Args {
				if i < len(sr.Args) {
					if _, err := a.inferFrom(sr.Args[i], arg, binds); err != nil {
						return false, err
					}
				}
			}
			return true, nil
		}
		expanded, err := a.expand(p)
		if err != nil {
			return false, err
		}
		if _, still := expanded.(*types.Ref); still {
			return false, nil
		}
		return a.inferFrom(src, expanded, binds)
	case *types.TypeLit, *types.Interface:
		if len(infersOf(p)) == 0 {
			return true, nil
		}
		pm, err := a.members(p)
		if err != nil {
			return false, err
		}
		sm, err := a.members(src)
		if err != nil {
			return false, err
		}
		for _, m := range pm {
			switch m := m.(type) {
			case *types.Property:
				st, ok := types.PropertyOf(sm, m.Key)
				if !ok {
					if m.Optional {
						continue
					}
					return false, nil
				}
				if _, err := a.inferFrom(st, m.Type, binds); err != nil {
					return false, err
				}
			case *types.Method:
				st, ok := types.PropertyOf(sm, m.Key)
				if !ok {
					return false, nil
				}
				if _, err := a.inferFrom(st, m.Fn, binds); err != nil {
					return false, err
				}
			case *types.CallSignature:
				if _, err := a.inferFrom(src, m.Fn, binds); err != nil {
					return false, err
				}
			}
		}
		return true, nil
	case *types.Union:
		for _, member := range p.Types {
			if len(infersOf(member)) > 0 {
				if _, err := a.inferFrom(src, member, binds); err != nil {
					return false, err
				}
			}
		}
		return true, nil
	case *types.Intersection:
		for _, member := range p.Types {
			if _, err := a.inferFrom(src, member, binds); err != nil {
				return false, err
			}
		}
		return true, nil
	}
	return true, nil
}

// evalMapped evaluates `{ [P in C as N]: T }` once its keys are known.
// A constraint of the form `keyof X` makes the mapping homomorphic: the
// modifiers of X's properties are kept and arrays map to arrays.
func (a *Analyzer) evalMapped(m *types.Mapped, s types.Subst) (types.Type, error) {
	var source types.Type
	var keys types.Type
	var err error
	if op, ok := m.Constraint.(*types.Operator); ok && op.Op == types.OpKeyOf {
		if source, err = a.inst(op.Type, s, false); err != nil {
			return nil, err
		}
		if !a.deferred(source) {
			if keys, err = a.keyOf(source); err != nil {
				return nil, err
			}
		}
	} else if keys, err = a.inst(m.Constraint, s, false); err != nil {
		return nil, err
	}
	if keys == nil || a.deferred(keys) {
		inner := withoutBinding(s, m.Param)
		constraint, err := a.inst(m.Constraint, s, false)
		if err != nil {
			return nil, err
		}
		nameType, err := a.inst(m.NameType, inner, true)
		if err != nil {
			return nil, err
		}
		typ, err := a.inst(m.Type, inner, true)
		if err != nil {
			return nil, err
		}
		return &types.Mapped{Param: m.Param, Constraint: constraint, NameType: nameType, Type: typ, Optional: m.Optional, Readonly: m.Readonly}, nil
	}
	if err := a.enter(m.Param); err != nil {
		return nil, err
	}
	defer a.leave()

	if source != nil && m.NameType == nil {
		if mapped, ok, err := a.mapArrayLike(m, source, s); ok || err != nil {
			return mapped, err
		}
	}
	var srcMembers []types.Member
	if source != nil {
		if srcMembers, err = a.members(source); err != nil {
			return nil, err
		}
	}
	var members []types.Member
	for _, key := range types.Members(keys) {
		inner := withBinding(s, m.Param, key)
		name := key
		if m.NameType != nil {
			if name, err = a.inst(m.NameType, inner, false); err != nil {
				return nil, err
			}
		}
		value, err := a.inst(m.Type, inner, true)
		if err != nil {
			return nil, err
		}
		for _, nk := range types.Members(name) {
			member := a.mappedMember(m, nk, value, srcMembers, key)
			if member != nil {
				members = append(members, member)
			}
		}
	}
	return &types.TypeLit{Members: members}, nil
}

func withoutBinding(s types.Subst, id types.Id) types.Subst {
	if _, ok := s[id]; !ok {
		return s
	}
	out := make(types.Subst, len(s))
	for k, v := range s {
		if k != id {
			out[k] = v
		}
	}
	return out
}

func (a *Analyzer) mappedMember(m *types.Mapped, name, value types.Type, srcMembers []types.Member, key types.Type) types.Member {
	var optional, readonly bool
	if lit, ok := key.(*types.Lit); ok && srcMembers != nil {
		if p, ok := types.FindMember(srcMembers, lit.Value).(*types.Property); ok {
			optional, readonly = p.Optional, p.Readonly
		}
		if _, ok := types.FindMember(srcMembers, lit.Value).(*types.Method); ok {
			optional = types.FindMember(srcMembers, lit.Value).(*types.Method).Optional
		}
	}
	switch m.Optional {
	case types.ModifierAdd:
		optional = true
	case types.ModifierRemove:
		optional = false
	}
	switch m.Readonly {
	case types.ModifierAdd:
		readonly = true
	case types.ModifierRemove:
		readonly = false
	}
	if optional || m.Optional == types.ModifierRemove {
		value = removeUndefined(value)
	}
	switch n := name.(type) {
	case *types.Lit:
		if n.LitKind == types.LitString || n.LitKind == types.LitNumber {
			return &types.Property{Key: n.Value, Type: value, Optional: optional, Readonly: readonly}
		}
	case *types.Keyword:
		switch n.Name {
		case types.KeywordString, types.KeywordNumber, types.KeywordSymbol:
			return &types.IndexSignature{Key: n, Type: value, Readonly: readonly}
		}
	}
	return nil
}

// mapArrayLike applies a homomorphic mapped type to an array or tuple source.
func (a *Analyzer) mapArrayLike(m *types.Mapped, source types.Type, s types.Subst) (types.Type, bool, error) {
	readonlyOf := func(t types.Type) types.Type {
		if m.Readonly == types.ModifierAdd {
			return &types.Operator{Op: types.OpReadonly, Type: t}
		}
		return t
	}
	if op, ok := source.(*types.Operator); ok && op.Op == types.OpReadonly {
		source = op.Type
		if m.Readonly != types.ModifierRemove {
			readonlyOf = func(t types.Type) types.Type { return &types.Operator{Op: types.OpReadonly, Type: t} }
		}
	}
	switch src := source.(type) {
	case *types.Array:
		value, err := a.inst(m.Type, withBinding(s, m.Param, types.Number), true)
		if err != nil {
			return nil, true, err
		}
		if m.Optional == types.ModifierRemove {
			value = removeUndefined(value)
		}
		return readonlyOf(types.NewArray(value)), true, nil
	case *types.Tuple:
		elems := make([]types.TupleElem, len(src.Elems))
		for i, el := range src.Elems {
			value, err := a.inst(m.Type, withBinding(s, m.Param, types.NumberLit(strconv.Itoa(i))), true)
			if err != nil {
				return nil, true, err
			}
			optional := el.Optional
			switch m.Optional {
			case types.ModifierAdd:
				optional = true
			case types.ModifierRemove:
				optional = false
				value = removeUndefined(value)
			}
			elems[i] = types.TupleElem{Label: el.Label, Type: value, Optional: optional && !el.Rest, Rest: el.Rest}
		}
		return readonlyOf(&types.Tuple{Elems: elems}), true, nil
	}
	return nil, false, nil
}

func removeUndefined(t types.Type) types.Type {
	u, ok := t.(*types.Union)
	if !ok {
		return t
	}
	kept := make([]types.Type, 0, len(u.Types))
	for _, member := range u.Types {
		if !types.IsKeyword(member, types.KeywordUndefined) {
			kept = append(kept, member)
		}
	}
	return types.NewUnion(kept...)
}

// keyOf evaluates `keyof t`.
func (a *Analyzer) keyOf(t types.Type) (types.Type, error) {
	t, err := a.expand(t)
	if err != nil {
		return nil, err
	}
	switch t := t.(type) {
	case *types.Error:
		return t, nil
	case *types.Keyword:
		switch t.Name {
		case types.KeywordAny:
			return types.NewUnion(types.String, types.Number, types.Symbol), nil
		case types.KeywordNever:
			return types.NewUnion(types.String, types.Number, types.Symbol), nil
		case types.KeywordUnknown, types.KeywordNull, types.KeywordUndefined, types.KeywordVoid, types.KeywordObject:
			return types.Never, nil
		}
	case *types.Param, *types.Infer, *types.Conditional, *types.Mapped:
		if a.deferred(t) {
			return &types.Operator{Op: types.OpKeyOf, Type: t}, nil
		}
	case *types.Union:
		var common []types.Type
		for i, member := range t.Types {
			keys, err := a.keyOf(member)
			if err != nil {
				return nil, err
			}
			if i == 0 {
				common = types.Members(keys)
				continue
			}
			next := types.Members(keys)
			kept := common[:0:0]
			for _, k := range common {
				for _, n := range next {
					if types.Equal(k, n) {
						kept = append(kept, k)
						break
					}
				}
			}
			common = kept
		}
		return types.NewUnion(common...), nil
	case *types.Intersection:
		keys := make([]types.Type, 0, len(t.Types))
		for _, member := range t.Types {
			k, err := a.keyOf(member)
			if err != nil {
				return nil, err
			}
			keys = append(keys, k)
		}
		return types.NewUnion(keys...), nil
	case *types.Enum:
		return a.keyOf(types.Number)
	}
	members, err := a.members(t)
	if err != nil {
		return nil, err
	}
	return types.KeysOf(members), nil
}

// indexedAccess evaluates `obj[idx]`. node locates the diagnostic for a
// missing property; evaluation inside instantiation passes nil.
func (a *Analyzer) indexedAccess(obj, idx types.Type, node ast.Node) (types.Type, error) {
	if types.IsError(obj) || types.IsError(idx) || types.IsKeyword(obj, types.KeywordAny) {
		return obj, nil
	}
	if u, ok := idx.(*types.Union); ok {
		out := make([]types.Type, 0, len(u.Types))
		for _, member := range u.Types {
			r, err := a.indexedAccess(obj, member, node)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return types.NewUnion(out...), nil
	}
	expanded, err := a.expand(obj)
	if err != nil {
		return nil, err
	}
	if u, ok := expanded.(*types.Union); ok {
		out := make([]types.Type, 0, len(u.Types))
		for _, member := range u.Types {
			r, err := a.indexedAccess(member, idx, node)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return types.NewUnion(out...), nil
	}
	switch key := idx.(type) {
	case *types.Keyword:
		if key.Name == types.KeywordNumber {
			if elem, ok, err := a.elementType(expanded); err != nil || ok {
				return elem, err
			}
		}
		members, err := a.members(expanded)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			if sig, ok := m.(*types.IndexSignature); ok {
				if types.Equal(sig.Key, key) || (key.Name == types.KeywordNumber && types.IsKeyword(sig.Key, types.KeywordString)) {
					return sig.Type, nil
				}
			}
		}
		if key.Name == types.KeywordString && node != nil {
			a.report(CodePropertyMissing, node, "Type '%s' has no matching index signature for type 'string'.", printType(obj))
			return types.ErrorType, nil
		}
		return types.ErrorType, nil
	case *types.Lit:
		if t, ok := expanded.(*types.Tuple); ok && key.LitKind == types.LitNumber {
			if i, err := strconv.Atoi(key.Value); err == nil && i >= 0 && i < len(t.Elems) {
				return t.Elems[i].Type, nil
			}
		}
		members, err := a.members(expanded)
		if err != nil {
			return nil, err
		}
		if p, ok := types.PropertyOf(members, key.Value); ok {
			return p, nil
		}
		if node != nil {
			a.report(CodePropertyMissing, node, "Property '%s' does not exist on type '%s'.", key.Value, printType(obj))
		}
		return types.ErrorType, nil
	}
	return &types.IndexedAccess{Obj: obj, Index: idx}, nil
}

// elementType returns the element type of an array-like type.
func (a *Analyzer) elementType(t types.Type) (types.Type, bool, error) {
	t, err := a.expand(t)
	if err != nil {
		return nil, false, err
	}
	switch t := t.(type) {
	case *types.Array:
		return t.Elem, true, nil
	case *types.Tuple:
		elems := make([]types.Type, 0, len(t.Elems))
		for _, el := range t.Elems {
			if el.Rest {
				if inner, ok, err := a.elementType(el.Type); err == nil && ok {
					elems = append(elems, inner)
					continue
				}
			}
			elems = append(elems, el.Type)
		}
		return types.NewUnion(elems...), true, nil
	case *types.Operator:
		if t.Op == types.OpReadonly {
			return a.elementType(t.Type)
		}
	}
	return nil, false, nil
}

// expand replaces references by the structure they name and evaluates
// deferred forms that became concrete.
func (a *Analyzer) expand(t types.Type) (types.Type, error) {
	for {
		ref, ok := t.(*types.Ref)
		if !ok {
			break
		}
		next, err := a.expandRef(ref)
		if err != nil {
			return nil, err
		}
		if next == t {
			break
		}
		t = next
	}
	switch t.(type) {
	case *types.IndexedAccess, *types.Conditional, *types.Operator, *types.Mapped, *types.Query:
		if !a.deferred(t) {
			return a.instantiate(t, nil)
		}
	}
	return t, nil
}

// expandRef resolves the declaration a reference names and applies its
// arguments. A declaration that is still being resolved expands to the
// error type.
func (a *Analyzer) expandRef(ref *types.Ref) (types.Type, error) {
	if err := a.enter(ref.Name); err != nil {
		return nil, err
	}
	defer a.leave()
	e, owner := a.lookupType(ref.Name, nil)
	if e == nil {
		return types.ErrorType, nil
	}
	ts, err := a.resolveEntry(e, owner)
	if err != nil {
		if _, ok := asCycle(err); ok {
			return types.ErrorType, nil
		}
		return nil, err
	}
	var structural []types.Type
	for _, t := range ts {
		if _, isModule := t.(*types.Module); !isModule {
			structural = append(structural, t)
		}
	}
	if len(structural) == 0 {
		return types.ErrorType, nil
	}
	out := make([]types.Type, 0, len(structural))
	for _, t := range structural {
		r, err := a.applyArgs(t, ref.Args)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if len(out) == 1 {
		return out[0], nil
	}
	return types.NewIntersection(out...), nil
}

// applyArgs instantiates a generic declaration with arguments.
func (a *Analyzer) applyArgs(t types.Type, args []types.Type) (types.Type, error) {
	switch t := t.(type) {
	case *types.Alias:
		return a.instantiateAlias(t, args)
	case *types.Interface:
		if len(t.TypeParams) == 0 {
			return t, nil
		}
		s, err := a.bindTypeParams(t.TypeParams, args)
		if err != nil {
			return nil, err
		}
		r, err := a.inst(t, s, true)
		if err != nil {
			return nil, err
		}
		iface := r.(*types.Interface)
		return &types.Interface{Name: iface.Name, Extends: iface.Extends, Body: iface.Body}, nil
	case *types.Class:
		if len(t.TypeParams) == 0 {
			return t, nil
		}
		s, err := a.bindTypeParams(t.TypeParams, args)
		if err != nil {
			return nil, err
		}
		c := types.Substitute(t, s).(*types.Class)
		out := *c
		out.TypeParams = nil
		return &out, nil
	}
	return t, nil
}
