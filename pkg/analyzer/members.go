package analyzer

import (
	"maps"
	"slices"
	"strconv"

	"github.com/devgony/stc/pkg/types"
)

// globalType is the builtin interface called name, or nil when no loaded
// library declares it.
func (a *Analyzer) globalType(name string, args ...types.Type) (types.Type, error) {
	id := types.NewId(name, a.unresolved())
	e, owner := a.lookupType(id, nil)
	if e == nil {
		return nil, nil
	}
	if _, err := a.resolveEntry(e, owner); err != nil {
		if _, ok := asCycle(err); ok {
			return nil, nil
		}
		return nil, err
	}
	return a.expandRef(&types.Ref{Name: id, Args: args})
}

func (a *Analyzer) globalMembers(name string, args ...types.Type) ([]types.Member, error) {
	t, err := a.globalType(name, args...)
	if err != nil || t == nil || types.IsError(t) {
		return nil, err
	}
	return a.members(t)
}

// members returns the apparent members of t: declared members, inherited
// members, and those of the builtin wrapper of a primitive.
func (a *Analyzer) members(t types.Type) ([]types.Member, error) {
	t, err := a.expand(t)
	if err != nil {
		return nil, err
	}
	switch t := t.(type) {
	case *types.TypeLit:
		return t.Members, nil
	case *types.Interface:
		if err := a.enter(t.Name); err != nil {
			return nil, err
		}
		defer a.leave()
		out := append([]types.Member(nil), t.Body...)
		for _, base := range t.Extends {
			inherited, err := a.members(base)
			if err != nil {
				return nil, err
			}
			out = appendMissing(out, inherited)
		}
		return out, nil
	case *types.Class:
		if err := a.enter(t.Name); err != nil {
			return nil, err
		}
		defer a.leave()
		out := append([]types.Member(nil), t.Body...)
		if t.Super != nil {
			inherited, err := a.members(t.Super)
			if err != nil {
				return nil, err
			}
			out = appendMissing(out, inherited)
		}
		return out, nil
	case *types.Intersection:
		var out []types.Member
		for _, part := range t.Types {
			ms, err := a.members(part)
			if err != nil {
				return nil, err
			}
			out = mergeIntersection(out, ms)
		}
		return out, nil
	case *types.Union:
		return a.commonMembers(t)
	case *types.Array:
		return a.globalMembers("Array", t.Elem)
	case *types.Tuple:
		return a.tupleMembers(t)
	case *types.Operator:
		if t.Op == types.OpReadonly {
			if arr, ok := t.Type.(*types.Array); ok {
				return a.globalMembers("ReadonlyArray", arr.Elem)
			}
			ms, err := a.members(t.Type)
			if err != nil {
				return nil, err
			}
			return readonlyMembers(ms), nil
		}
	case *types.Param:
		if t.Constraint != nil {
			return a.members(t.Constraint)
		}
	case *types.Function:
		ms, err := a.globalMembers("Function")
		if err != nil {
			return nil, err
		}
		return append([]types.Member{&types.CallSignature{Fn: t}}, ms...), nil
	case *types.Constructor:
		ms, err := a.globalMembers("Function")
		if err != nil {
			return nil, err
		}
		fn := &types.Function{TypeParams: t.TypeParams, Params: t.Params, Ret: t.Ret}
		return append([]types.Member{&types.ConstructSignature{Fn: fn}}, ms...), nil
	case *types.Module:
		out := make([]types.Member, 0, len(t.Vars))
		for _, name := range slices.Sorted(maps.Keys(t.Vars)) {
			vt, err := a.instantiate(t.Vars[name], nil)
			if err != nil {
				return nil, err
			}
			out = append(out, &types.Property{Key: name, Type: vt, Readonly: true})
		}
		return out, nil
	case *types.Enum:
		return a.globalMembers("Number")
	case *types.Lit:
		return a.primitiveMembers(types.KeywordKind(t.LitKind))
	case *types.Keyword:
		return a.primitiveMembers(t.Name)
	}
	return nil, nil
}

func (a *Analyzer) primitiveMembers(kind types.KeywordKind) ([]types.Member, error) {
	switch kind {
	case types.KeywordString:
		return a.globalMembers("String")
	case types.KeywordNumber:
		return a.globalMembers("Number")
	case types.KeywordBoolean:
		return a.globalMembers("Boolean")
	case types.KeywordBigInt:
		return a.globalMembers("BigInt")
	case types.KeywordSymbol:
		return a.globalMembers("Symbol")
	case types.KeywordObject:
		return a.globalMembers("Object")
	}
	return nil, nil
}

func (a *Analyzer) tupleMembers(t *types.Tuple) ([]types.Member, error) {
	out := make([]types.Member, 0, len(t.Elems)+1)
	elems := make([]types.Type, 0, len(t.Elems))
	fixed := true
	for i, el := range t.Elems {
		if el.Rest {
			fixed = false
			elems = append(elems, el.Type)
			continue
		}
		out = append(out, &types.Property{Key: strconv.Itoa(i), Type: el.Type, Optional: el.Optional})
		elems = append(elems, el.Type)
	}
	if fixed {
		out = append(out, &types.Property{Key: "length", Type: types.NumberLit(strconv.Itoa(len(t.Elems)))})
	}
	elem, _, err := a.elementType(t)
	if err != nil {
		return nil, err
	}
	if elem == nil {
		elem = types.NewUnion(elems...)
	}
	array, err := a.globalMembers("Array", elem)
	if err != nil {
		return nil, err
	}
	return appendMissing(out, array), nil
}

// appendMissing appends the members of more whose key is not yet present.
func appendMissing(out, more []types.Member) []types.Member {
	for _, m := range more {
		if types.FindMember(out, m.MemberKey()) == nil {
			out = append(out, m)
		}
	}
	return out
}

// mergeIntersection combines members of intersected shapes; properties
// present on both sides intersect their types.
func mergeIntersection(out, more []types.Member) []types.Member {
	for _, m := range more {
		existing, ok := types.FindMember(out, m.MemberKey()).(*types.Property)
		incoming, isProp := m.(*types.Property)
		if !ok || !isProp {
			if types.FindMember(out, m.MemberKey()) == nil || !isProp {
				out = append(out, m)
			}
			continue
		}
		merged := &types.Property{
			Key:      existing.Key,
			Type:     types.NewIntersection(existing.Type, incoming.Type),
			Optional: existing.Optional && incoming.Optional,
			Readonly: existing.Readonly && incoming.Readonly,
		}
		for i, cur := range out {
			if cur == existing {
				out[i] = merged
			}
		}
	}
	return out
}

// commonMembers keeps the properties present on every member of a union.
func (a *Analyzer) commonMembers(u *types.Union) ([]types.Member, error) {
	all := make([][]types.Member, 0, len(u.Types))
	for _, part := range u.Types {
		ms, err := a.members(part)
		if err != nil {
			return nil, err
		}
		all = append(all, ms)
	}
	if len(all) == 0 {
		return nil, nil
	}
	var out []types.Member
	for _, m := range all[0] {
		key := m.MemberKey()
		var parts []types.Type
		optional, readonly := false, false
		present := true
		for _, ms := range all {
			t, ok := types.PropertyOf(ms, key)
			if !ok {
				present = false
				break
			}
			if p, ok := types.FindMember(ms, key).(*types.Property); ok {
				optional = optional || p.Optional
				readonly = readonly || p.Readonly
			}
			parts = append(parts, t)
		}
		if !present {
			continue
		}
		if _, isProp := m.(*types.Property); !isProp {
			if _, isMethod := m.(*types.Method); !isMethod {
				continue
			}
		}
		out = append(out, &types.Property{Key: key, Type: removeUndefinedIf(types.NewUnion(parts...), optional), Optional: optional, Readonly: readonly})
	}
	return out, nil
}

func removeUndefinedIf(t types.Type, cond bool) types.Type {
	if cond {
		return removeUndefined(t)
	}
	return t
}

func readonlyMembers(ms []types.Member) []types.Member {
	out := make([]types.Member, len(ms))
	for i, m := range ms {
		if p, ok := m.(*types.Property); ok {
			out[i] = &types.Property{Key: p.Key, Type: p.Type, Optional: p.Optional, Readonly: true}
			continue
		}
		out[i] = m
	}
	return out
}

// callSignature returns the first call signature of t.
func (a *Analyzer) callSignature(t types.Type) (*types.Function, bool, error) {
	t, err := a.expand(t)
	if err != nil {
		return nil, false, err
	}
	if fn, ok := t.(*types.Function); ok {
		return fn, true, nil
	}
	ms, err := a.members(t)
	if err != nil {
		return nil, false, err
	}
	for _, m := range ms {
		if sig, ok := m.(*types.CallSignature); ok {
			return sig.Fn, true, nil
		}
	}
	return nil, false, nil
}

// constructSignature returns the first construct signature of t.
func (a *Analyzer) constructSignature(t types.Type) (*types.Function, bool, error) {
	t, err := a.expand(t)
	if err != nil {
		return nil, false, err
	}
	if c, ok := t.(*types.Constructor); ok {
		return &types.Function{TypeParams: c.TypeParams, Params: c.Params, Ret: c.Ret}, true, nil
	}
	ms, err := a.members(t)
	if err != nil {
		return nil, false, err
	}
	for _, m := range ms {
		if sig, ok := m.(*types.ConstructSignature); ok {
			return sig.Fn, true, nil
		}
	}
	return nil, false, nil
}

// signatures lists every call (or construct) signature of t.
func (a *Analyzer) signatures(t types.Type, construct bool) ([]*types.Function, error) {
	t, err := a.expand(t)
	if err != nil {
		return nil, err
	}
	switch t := t.(type) {
	case *types.Function:
		if !construct {
			return []*types.Function{t}, nil
		}
		return nil, nil
	case *types.Constructor:
		if construct {
			return []*types.Function{{TypeParams: t.TypeParams, Params: t.Params, Ret: t.Ret}}, nil
		}
		return nil, nil
	}
	ms, err := a.members(t)
	if err != nil {
		return nil, err
	}
	var out []*types.Function
	for _, m := range ms {
		switch m := m.(type) {
		case *types.CallSignature:
			if !construct {
				out = append(out, m.Fn)
			}
		case *types.ConstructSignature:
			if construct {
				out = append(out, m.Fn)
			}
		}
	}
	return out, nil
}
