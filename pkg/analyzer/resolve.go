package analyzer

import (
	"github.com/pkg/errors"

	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/storage"
	"github.com/devgony/stc/pkg/types"
)

// resolveType resolves id as seen from the scope from.
func (a *Analyzer) resolveType(id types.Id, from *storage.Storage) ([]types.Type, *storage.Entry, error) {
	e, owner := a.lookupType(id, from)
	if e == nil {
		return nil, nil, nil
	}
	ts, err := a.resolveEntry(e, owner)
	return ts, e, err
}

// resolveEntry memoizes the candidates of a type entry. An entry already
// being resolved yields a *cycleError that the caller classifies.
func (a *Analyzer) resolveEntry(e *storage.Entry, owner *storage.Storage) ([]types.Type, error) {
	switch e.State {
	case storage.StateResolved:
		return e.Types, nil
	case storage.StateInProgress:
		return nil, &cycleError{id: e.Id}
	}
	if owner.Frozen() {
		// a finalized module never resolved this entry; its analysis failed
		return []types.Type{types.ErrorType}, nil
	}
	if err := a.enter(e.Id); err != nil {
		return nil, err
	}
	defer a.leave()

	if !owner.Begin(e.Id) {
		return nil, &cycleError{id: e.Id}
	}
	a.frames = append(a.frames, frame{id: e.Id, boundary: a.boundary})
	a.logger.Debug("resolve type", "id", e.Id.String(), "depth", a.depth)
	ts, err := a.declaredTypes(e, owner)
	a.frames = a.frames[:len(a.frames)-1]
	if err != nil {
		owner.Abort(e.Id)
		return nil, err
	}
	owner.Finish(e.Id, ts)
	return ts, nil
}

// declaredTypes converts the declaration syntax of an entry. Interfaces merge
// into the first interface candidate; namespaces merge into one module; the
// other declarations contribute one candidate each.
func (a *Analyzer) declaredTypes(e *storage.Entry, owner *storage.Storage) ([]types.Type, error) {
	var out []types.Type
	ifaceAt, nsAt := -1, -1
	var namespaces []*ast.NamespaceDeclaration
	for _, d := range e.Decls {
		if a.rejected[d.Node] {
			continue
		}
		switch n := d.Node.(type) {
		case *ast.TypeAliasDeclaration:
			t, err := a.aliasType(e.Id, n, owner)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		case *ast.InterfaceDeclaration:
			t, err := a.interfaceType(e.Id, n, owner)
			if err != nil {
				return nil, err
			}
			if ifaceAt < 0 {
				ifaceAt = len(out)
				out = append(out, t)
			} else {
				out[ifaceAt] = mergeInterfaces(out[ifaceAt].(*types.Interface), t)
			}
		case *ast.ClassDeclaration:
			t, err := a.classType(e.Id, n, owner)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		case *ast.EnumDeclaration:
			out = append(out, a.enumType(e.Id, n))
		case *ast.NamespaceDeclaration:
			namespaces = append(namespaces, n)
			if nsAt < 0 {
				nsAt = len(out)
				out = append(out, nil)
			}
		case *ast.ImportSpecifier, *ast.Identifier:
			ts, err := a.importTypes(e.Id)
			if err != nil {
				return nil, err
			}
			out = append(out, ts...)
		case *ast.TypeParameter:
			t, err := a.typeParamType(e.Id, n, owner)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		default:
			return nil, errors.Wrapf(ErrInvariant, "unexpected %s declaration for type %s", d.Node.NodeType(), e.Id)
		}
	}
	if nsAt >= 0 {
		out[nsAt] = a.namespaceModule(e.Id, namespaces, owner)
	}
	return out, nil
}

// mergeInterfaces appends the heritage and members of next to first. Type
// parameters of later declarations are renamed to the first declaration's.
func mergeInterfaces(first, next *types.Interface) *types.Interface {
	s := types.Subst{}
	for i, tp := range next.TypeParams {
		if i < len(first.TypeParams) {
			s[tp.Name] = &types.Param{Name: first.TypeParams[i].Name, Constraint: first.TypeParams[i].Constraint}
		}
	}
	renamed := types.Substitute(&types.Interface{Extends: next.Extends, Body: next.Body}, s).(*types.Interface)
	return &types.Interface{
		Name:       first.Name,
		TypeParams: first.TypeParams,
		Extends:    append(append([]types.Type(nil), first.Extends...), renamed.Extends...),
		Body:       append(append([]types.Member(nil), first.Body...), renamed.Body...),
	}
}

// cycleType classifies a re-entered resolution of id. Past a structural
// boundary opened after id started resolving the reference is legal and stays
// symbolic; otherwise the cycle is reported once.
func (a *Analyzer) cycleType(id types.Id, args []types.Type, node ast.Node) types.Type {
	if f, ok := a.frameOf(id); ok && a.boundary > f.boundary {
		return &types.Ref{Name: id, Args: args}
	}
	if !a.cycles[id] {
		a.cycles[id] = true
		a.report(CodeCircularAlias, node, "Type alias '%s' circularly references itself.", id.Sym)
	}
	return types.ErrorType
}

// indexedCycle reports the alias under resolution that obj[idx] leads back
// to when the indexed property is declared as that alias with no structural
// boundary in between, as in `interface I { x: T } type T = I["x"]`.
// Only non-generic interfaces are inspected.
func (a *Analyzer) indexedCycle(obj, idx types.Type) (types.Id, bool) {
	ref, ok := obj.(*types.Ref)
	key, isLit := idx.(*types.Lit)
	if !ok || !isLit || len(ref.Args) > 0 || len(a.frames) == 0 {
		return types.Id{}, false
	}
	e, owner := a.lookupType(ref.Name, nil)
	if e == nil {
		return types.Id{}, false
	}
	for _, d := range e.Decls {
		n, ok := d.Node.(*ast.InterfaceDeclaration)
		if !ok || len(n.TypeParams) > 0 {
			continue
		}
		for _, member := range n.Body {
			if p, ok := member.(*ast.PropertySignature); ok && p.Key == key.Value {
				if id, ok := a.aliasCycleIn(p.Type, owner); ok {
					return id, true
				}
			}
		}
	}
	return types.Id{}, false
}

// aliasCycleIn finds an alias under resolution named at the top level of
// expr, looking through parentheses, unions and intersections.
func (a *Analyzer) aliasCycleIn(expr ast.TypeExpression, st *storage.Storage) (types.Id, bool) {
	var parts []ast.TypeExpression
	switch n := expr.(type) {
	case *ast.TypeReference:
		if n.Name == nil || len(n.Path) > 0 {
			return types.Id{}, false
		}
		id := types.IdOf(n.Name)
		f, ok := a.frameOf(id)
		if !ok || a.boundary > f.boundary {
			return types.Id{}, false
		}
		if e, _ := a.lookupType(id, st); e != nil && hasKind(e, storage.DeclTypeAlias) {
			return id, true
		}
		return types.Id{}, false
	case *ast.ParenthesizedType:
		return a.aliasCycleIn(n.Type, st)
	case *ast.UnionType:
		parts = n.Types
	case *ast.IntersectionType:
		parts = n.Types
	}
	for _, part := range parts {
		if id, ok := a.aliasCycleIn(part, st); ok {
			return id, true
		}
	}
	return types.Id{}, false
}

// resolveVarEntry memoizes the type of a value binding.
func (a *Analyzer) resolveVarEntry(e *storage.Entry, owner *storage.Storage) (types.Type, error) {
	switch e.State {
	case storage.StateResolved:
		if len(e.Types) == 0 {
			return types.ErrorType, nil
		}
		return e.Types[0], nil
	case storage.StateInProgress:
		return a.varCycle(e), nil
	}
	if owner.Frozen() {
		return types.ErrorType, nil
	}
	if err := a.enter(e.Id); err != nil {
		return nil, err
	}
	defer a.leave()
	if !owner.BeginVar(e.Id) {
		return a.varCycle(e), nil
	}
	a.logger.Debug("resolve value", "id", e.Id.String(), "depth", a.depth)
	t, err := a.declaredValue(e, owner)
	if err != nil {
		owner.AbortVar(e.Id)
		return nil, err
	}
	owner.SetVar(e.Id, t)
	return t, nil
}

// varCycle is the type of a value whose own initializer refers to it.
func (a *Analyzer) varCycle(e *storage.Entry) types.Type {
	if a.env.Rule().NoImplicitAny && !a.cycles[e.Id] {
		a.cycles[e.Id] = true
		var node ast.Node
		if len(e.Decls) > 0 {
			node = e.Decls[0].Node
		}
		a.report(CodeCircularInit, node, "'%s' implicitly has type 'any' because it does not have a type annotation and is referenced directly or indirectly in its own initializer.", e.Id.Sym)
	}
	return types.Any
}

// resolveVar resolves the value binding id as seen from the scope from.
func (a *Analyzer) resolveVar(id types.Id, from *storage.Storage) (types.Type, bool, error) {
	e, owner := a.lookupVar(id, from)
	if e == nil {
		return nil, false, nil
	}
	t, err := a.resolveVarEntry(e, owner)
	return t, true, err
}
