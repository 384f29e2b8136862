package analyzer

import (
	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/storage"
	"github.com/devgony/stc/pkg/types"
)

// exprType types an initializer expression. keepLiterals keeps the literal
// type of a primitive, as a const declaration does.
func (a *Analyzer) exprType(sc *scope, expr ast.Expression, keepLiterals bool) (types.Type, error) {
	switch n := expr.(type) {
	case nil:
		return types.Any, nil
	case *ast.StringLiteral:
		return literalOrWide(types.StringLit(n.Value), keepLiterals), nil
	case *ast.NumberLiteral:
		return literalOrWide(types.NumberLit(n.Raw), keepLiterals), nil
	case *ast.BigIntLiteral:
		a.checkBigInt(n)
		return literalOrWide(types.NewLit(types.LitBigInt, n.Raw), keepLiterals), nil
	case *ast.BooleanLiteral:
		return literalOrWide(types.BoolLit(n.Value), keepLiterals), nil
	case *ast.NullLiteral:
		return types.Null, nil
	case *ast.Identifier:
		return a.identifierType(sc, n)
	case *ast.ArrayLiteral:
		elems := make([]types.Type, 0, len(n.Elements))
		for _, el := range n.Elements {
			t, err := a.exprType(sc, el, false)
			if err != nil {
				return nil, err
			}
			elems = append(elems, types.Widen(t))
		}
		if len(elems) == 0 {
			return types.NewArray(types.Any), nil
		}
		return types.NewArray(types.NewUnion(elems...)), nil
	case *ast.ObjectLiteral:
		members := make([]types.Member, 0, len(n.Properties))
		for _, p := range n.Properties {
			if p == nil {
				continue
			}
			t, err := a.exprType(sc, p.Value, false)
			if err != nil {
				return nil, err
			}
			members = append(members, &types.Property{Key: p.Key, Type: types.Widen(t)})
		}
		return &types.TypeLit{Members: members}, nil
	case *ast.AsExpression:
		if n.Const {
			return a.constType(sc, n.Expression)
		}
		if _, err := a.exprType(sc, n.Expression, false); err != nil {
			return nil, err
		}
		return a.typeOf(sc, n.Type)
	}
	return types.Any, nil
}

func literalOrWide(t types.Type, keep bool) types.Type {
	if keep {
		return t
	}
	return types.Widen(t)
}

func (a *Analyzer) identifierType(sc *scope, n *ast.Identifier) (types.Type, error) {
	id := types.IdOf(n)
	t, ok, err := a.resolveVar(id, sc.st)
	if err != nil {
		return nil, err
	}
	if ok {
		return t, nil
	}
	switch n.Name {
	case "undefined":
		return types.Undefined, nil
	case "NaN", "Infinity":
		return types.Number, nil
	}
	a.report(CodeNameNotFound, n, "Cannot find name '%s'.", n.Name)
	return types.ErrorType, nil
}

// constType types `expr as const`: literals stay literal, arrays become
// readonly tuples and object properties become readonly.
func (a *Analyzer) constType(sc *scope, expr ast.Expression) (types.Type, error) {
	switch n := expr.(type) {
	case *ast.ArrayLiteral:
		elems := make([]types.TupleElem, 0, len(n.Elements))
		for _, el := range n.Elements {
			t, err := a.constType(sc, el)
			if err != nil {
				return nil, err
			}
			elems = append(elems, types.TupleElem{Type: t})
		}
		return &types.Operator{Op: types.OpReadonly, Type: &types.Tuple{Elems: elems}}, nil
	case *ast.ObjectLiteral:
		members := make([]types.Member, 0, len(n.Properties))
		for _, p := range n.Properties {
			if p == nil {
				continue
			}
			t, err := a.constType(sc, p.Value)
			if err != nil {
				return nil, err
			}
			members = append(members, &types.Property{Key: p.Key, Type: t, Readonly: true})
		}
		return &types.TypeLit{Members: members}, nil
	}
	return a.exprType(sc, expr, true)
}

// declaredValue computes the type of a value binding from its declarations.
// Several declarations (a function merged with a namespace, say) intersect.
func (a *Analyzer) declaredValue(e *storage.Entry, owner *storage.Storage) (types.Type, error) {
	var out []types.Type
	var functions []*ast.FunctionDeclaration
	var namespaces []*ast.NamespaceDeclaration
	sc := &scope{st: owner}
	for _, d := range e.Decls {
		if a.rejected[d.Node] {
			continue
		}
		switch n := d.Node.(type) {
		case *ast.VariableDeclarator:
			t, err := a.variableType(sc, d.Kind, n)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		case *ast.FunctionDeclaration:
			functions = append(functions, n)
		case *ast.ClassDeclaration:
			t, err := a.classValue(e.Id, owner)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		case *ast.EnumDeclaration:
			out = append(out, enumValue(a.enumType(e.Id, n)))
		case *ast.NamespaceDeclaration:
			namespaces = append(namespaces, n)
		case *ast.ImportSpecifier, *ast.Identifier:
			t, err := a.importValue(e.Id)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		case *ast.Parameter:
			t, err := a.paramType(sc, n)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
	}
	if len(functions) > 0 {
		t, err := a.functionValue(owner, functions)
		if err != nil {
			return nil, err
		}
		out = append([]types.Type{t}, out...)
	}
	if len(namespaces) > 0 {
		out = append(out, a.namespaceModule(e.Id, namespaces, owner))
	}
	switch len(out) {
	case 0:
		return types.ErrorType, nil
	case 1:
		return out[0], nil
	}
	return types.NewIntersection(out...), nil
}

func (a *Analyzer) variableType(sc *scope, kind storage.DeclKind, n *ast.VariableDeclarator) (types.Type, error) {
	if n.Type != nil {
		return a.typeOf(sc, n.Type)
	}
	if n.Init == nil {
		return types.Any, nil
	}
	t, err := a.exprType(sc, n.Init, kind == storage.DeclConst)
	if err != nil {
		return nil, err
	}
	if !a.env.Rule().StrictNullChecks && (types.IsKeyword(t, types.KeywordNull) || types.IsKeyword(t, types.KeywordUndefined)) {
		return types.Any, nil
	}
	return t, nil
}

// functionValue types a function from its overloads. The implementation
// signature is hidden when overloads exist.
func (a *Analyzer) functionValue(owner *storage.Storage, decls []*ast.FunctionDeclaration) (types.Type, error) {
	overloads := decls[:0:0]
	for _, d := range decls {
		if d.Body == nil {
			overloads = append(overloads, d)
		}
	}
	if len(overloads) == 0 {
		overloads = decls
	}
	sigs := make([]*types.Function, 0, len(overloads))
	for _, d := range overloads {
		st := owner
		if s, ok := a.scopes[d]; ok {
			st = s
		}
		fn, err := a.signature(&scope{st: st}, d.Signature)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, fn)
	}
	if len(sigs) == 1 {
		return sigs[0], nil
	}
	members := make([]types.Member, len(sigs))
	for i, fn := range sigs {
		members[i] = &types.CallSignature{Fn: fn}
	}
	return &types.TypeLit{Members: members}, nil
}

// classValue is the constructor side of a class: a construct signature
// returning the instance type plus the static members.
func (a *Analyzer) classValue(id types.Id, owner *storage.Storage) (types.Type, error) {
	e, ok := owner.LookupLocal(id)
	if !ok {
		return types.ErrorType, nil
	}
	ts, err := a.resolveEntry(e, owner)
	if err != nil {
		if _, ok := asCycle(err); ok {
			return types.Any, nil
		}
		return nil, err
	}
	for _, t := range ts {
		class, ok := t.(*types.Class)
		if !ok {
			continue
		}
		args := make([]types.Type, len(class.TypeParams))
		for i, tp := range class.TypeParams {
			args[i] = &types.Param{Name: tp.Name, Constraint: tp.Constraint}
		}
		ctor := &types.Function{TypeParams: class.TypeParams, Ret: &types.Ref{Name: id, Args: args}}
		if class.Ctor != nil {
			ctor.Params = class.Ctor.Params
		} else if class.Super != nil {
			if base, ok, err := a.constructSignature(a.staticSide(class.Super)); err != nil {
				return nil, err
			} else if ok {
				ctor.Params = base.Params
			}
		}
		members := make([]types.Member, 0, len(class.Statics)+1)
		if !class.Abstract {
			members = append(members, &types.ConstructSignature{Fn: ctor})
		}
		members = append(members, class.Statics...)
		return &types.TypeLit{Members: members}, nil
	}
	return types.ErrorType, nil
}

// staticSide maps an instance reference to the value of its class.
func (a *Analyzer) staticSide(t types.Type) types.Type {
	ref, ok := t.(*types.Ref)
	if !ok {
		return types.ErrorType
	}
	v, found, err := a.resolveVar(ref.Name, nil)
	if err != nil || !found {
		return types.ErrorType
	}
	return v
}

// enumValue is the object holding the members of an enum.
func enumValue(enum *types.Enum) types.Type {
	members := make([]types.Member, 0, len(enum.Members))
	for _, m := range enum.Members {
		var t types.Type = types.Number
		if m.Value != nil {
			t = m.Value
		}
		members = append(members, &types.Property{Key: m.Name, Type: t, Readonly: true})
	}
	return &types.TypeLit{Members: members}
}

func (a *Analyzer) paramType(sc *scope, p *ast.Parameter) (types.Type, error) {
	t := types.Any
	if p.Type != nil {
		var err error
		if t, err = a.typeOf(sc, p.Type); err != nil {
			return nil, err
		}
	} else if p.Rest {
		t = types.NewArray(types.Any)
	}
	if p.Optional && a.env.Rule().StrictNullChecks {
		t = types.NewUnion(t, types.Undefined)
	}
	return t, nil
}
