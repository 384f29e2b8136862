package analyzer

import (
	"slices"
	"strconv"
	"strings"

	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/env"
	"github.com/devgony/stc/pkg/storage"
	"github.com/devgony/stc/pkg/types"
)

// scope is the conversion context of type syntax: the storage names are
// looked up from and the generic parameters, infer binders and mapped
// parameters currently in scope.
type scope struct {
	st     *storage.Storage
	params map[types.Id]types.Type
}

func (sc *scope) bind(id types.Id, t types.Type) *scope {
	params := make(map[types.Id]types.Type, len(sc.params)+1)
	for k, v := range sc.params {
		params[k] = v
	}
	params[id] = t
	return &scope{st: sc.st, params: params}
}

// typeParams brings generic parameters into scope and converts their
// constraints and defaults.
func (a *Analyzer) typeParams(sc *scope, params []*ast.TypeParameter) (*scope, []*types.TypeParamDecl, error) {
	if len(params) == 0 {
		return sc, nil, nil
	}
	inner := sc
	for _, p := range params {
		if p != nil {
			id := types.IdOf(p.ID)
			inner = inner.bind(id, &types.Param{Name: id})
		}
	}
	decls := make([]*types.TypeParamDecl, 0, len(params))
	for _, p := range params {
		if p == nil {
			continue
		}
		id := types.IdOf(p.ID)
		decl := &types.TypeParamDecl{Name: id}
		var err error
		if p.Constraint != nil {
			if decl.Constraint, err = a.typeOf(inner, p.Constraint); err != nil {
				return nil, nil, err
			}
		}
		if p.Default != nil {
			if decl.Default, err = a.typeOf(inner, p.Default); err != nil {
				return nil, nil, err
			}
		}
		inner.params[id] = &types.Param{Name: id, Constraint: decl.Constraint}
		decls = append(decls, decl)
	}
	return inner, decls, nil
}

func (a *Analyzer) aliasType(id types.Id, n *ast.TypeAliasDeclaration, owner *storage.Storage) (types.Type, error) {
	sc := &scope{st: owner}
	if len(n.TypeParams) == 0 {
		return a.typeOf(sc, n.Type)
	}
	inner, tps, err := a.typeParams(sc, n.TypeParams)
	if err != nil {
		return nil, err
	}
	target, err := a.typeOf(inner, n.Type)
	if err != nil {
		return nil, err
	}
	return &types.Alias{Name: id, TypeParams: tps, Target: target}, nil
}

func (a *Analyzer) interfaceType(id types.Id, n *ast.InterfaceDeclaration, owner *storage.Storage) (*types.Interface, error) {
	sc, tps, err := a.typeParams(&scope{st: owner}, n.TypeParams)
	if err != nil {
		return nil, err
	}
	var extends []types.Type
	for _, ref := range n.Extends {
		if ref == nil {
			continue
		}
		cyclic, err := a.heritageCycle(sc, ref)
		if err != nil {
			return nil, err
		}
		if cyclic {
			continue
		}
		t, err := a.typeOf(sc, ref)
		if err != nil {
			return nil, err
		}
		extends = append(extends, t)
	}
	var body []types.Member
	err = a.inBoundary(func() error {
		var err error
		body, err = a.typeMembers(sc, n.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &types.Interface{Name: id, TypeParams: tps, Extends: extends, Body: body}, nil
}

// heritageCycle resolves the base named by ref and reports whether it leads
// back to a declaration under resolution.
func (a *Analyzer) heritageCycle(sc *scope, ref *ast.TypeReference) (bool, error) {
	if len(ref.Path) > 0 || ref.Name == nil {
		return false, nil
	}
	id := types.IdOf(ref.Name)
	if _, ok := sc.params[id]; ok {
		return false, nil
	}
	e, owner := a.lookupType(id, sc.st)
	if e == nil {
		return false, nil
	}
	_, err := a.resolveEntry(e, owner)
	if c, ok := asCycle(err); ok {
		if !a.cycles[c.id] {
			a.cycles[c.id] = true
			a.report(CodeCircularBase, ref, "Type '%s' recursively references itself as a base type.", ref.Name.Name)
		}
		return true, nil
	}
	return false, err
}

func (a *Analyzer) classType(id types.Id, n *ast.ClassDeclaration, owner *storage.Storage) (*types.Class, error) {
	st := owner
	if s, ok := a.scopes[n]; ok {
		st = s
	}
	sc, tps, err := a.typeParams(&scope{st: st}, n.TypeParams)
	if err != nil {
		return nil, err
	}
	class := &types.Class{Name: id, TypeParams: tps, Abstract: n.Abstract}
	if n.SuperClass != nil {
		cyclic, err := a.heritageCycle(sc, n.SuperClass)
		if err != nil {
			return nil, err
		}
		if !cyclic {
			if class.Super, err = a.typeOf(sc, n.SuperClass); err != nil {
				return nil, err
			}
		}
	}
	for _, impl := range n.Implements {
		t, err := a.typeOf(sc, impl)
		if err != nil {
			return nil, err
		}
		class.Implements = append(class.Implements, t)
	}
	err = a.inBoundary(func() error {
		for _, member := range n.Members {
			switch m := member.(type) {
			case *ast.ClassProperty:
				t, err := a.classPropertyType(sc, m)
				if err != nil {
					return err
				}
				prop := &types.Property{Key: m.Key, Type: t, Optional: m.Optional, Readonly: m.Readonly}
				if m.Static {
					class.Statics = append(class.Statics, prop)
				} else {
					class.Body = append(class.Body, prop)
				}
			case *ast.ClassMethod:
				fn, err := a.signature(sc, m.Signature)
				if err != nil {
					return err
				}
				method := &types.Method{Key: m.Key, Optional: m.Optional, Fn: fn}
				if m.Static {
					class.Statics = append(class.Statics, method)
				} else {
					class.Body = append(class.Body, method)
				}
			case *ast.ClassConstructor:
				params, err := a.params(sc, m.Params)
				if err != nil {
					return err
				}
				class.Ctor = &types.Function{Params: params}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return class, nil
}

func (a *Analyzer) classPropertyType(sc *scope, m *ast.ClassProperty) (types.Type, error) {
	if m.Type != nil {
		return a.typeOf(sc, m.Type)
	}
	if m.Value != nil {
		t, err := a.exprType(sc, m.Value, false)
		if err != nil {
			return nil, err
		}
		if m.Readonly {
			return t, nil
		}
		return types.Widen(t), nil
	}
	return types.Any, nil
}

func (a *Analyzer) enumType(id types.Id, n *ast.EnumDeclaration) *types.Enum {
	enum := &types.Enum{Name: id, Const: n.Const}
	next, numeric := 0.0, true
	for _, m := range n.Members {
		if m == nil {
			continue
		}
		var value *types.Lit
		switch init := m.Init.(type) {
		case nil:
			if numeric {
				value = types.NumberLit(strconv.FormatFloat(next, 'f', -1, 64))
				next++
			}
		case *ast.NumberLiteral:
			if v, err := strconv.ParseFloat(init.Raw, 64); err == nil {
				value = types.NumberLit(init.Raw)
				next, numeric = v+1, true
			}
		case *ast.StringLiteral:
			value = types.StringLit(init.Value)
			numeric = false
		case *ast.Identifier:
			for _, prev := range enum.Members {
				if prev.Name == init.Name {
					value = prev.Value
				}
			}
			if value != nil && value.LitKind == types.LitNumber {
				if v, err := strconv.ParseFloat(value.Value, 64); err == nil {
					next, numeric = v+1, true
				}
			}
		default:
			numeric = false
		}
		enum.Members = append(enum.Members, types.EnumVariant{Name: m.Name, Value: value})
	}
	return enum
}

func (a *Analyzer) typeParamType(id types.Id, n *ast.TypeParameter, owner *storage.Storage) (types.Type, error) {
	if n.Constraint == nil {
		return &types.Param{Name: id}, nil
	}
	constraint, err := a.typeOf(&scope{st: owner}, n.Constraint)
	if err != nil {
		return nil, err
	}
	return &types.Param{Name: id, Constraint: constraint}, nil
}

func (a *Analyzer) signature(sc *scope, sig *ast.FunctionSignature) (*types.Function, error) {
	if sig == nil {
		return &types.Function{Ret: types.Any}, nil
	}
	inner, tps, err := a.typeParams(sc, sig.TypeParams)
	if err != nil {
		return nil, err
	}
	params, err := a.params(inner, sig.Params)
	if err != nil {
		return nil, err
	}
	ret := types.Any
	if sig.ReturnType != nil {
		if ret, err = a.typeOf(inner, sig.ReturnType); err != nil {
			return nil, err
		}
	}
	return &types.Function{TypeParams: tps, Params: params, Ret: ret}, nil
}

func (a *Analyzer) params(sc *scope, params []*ast.Parameter) ([]types.FnParam, error) {
	out := make([]types.FnParam, 0, len(params))
	for _, p := range params {
		if p == nil {
			continue
		}
		t := types.Any
		if p.Type != nil {
			var err error
			if t, err = a.typeOf(sc, p.Type); err != nil {
				return nil, err
			}
		}
		name := ""
		if p.ID != nil {
			name = p.ID.Name
		}
		out = append(out, types.FnParam{Name: name, Type: t, Optional: p.Optional, Rest: p.Rest})
	}
	return out, nil
}

func (a *Analyzer) typeMembers(sc *scope, members []ast.TypeMember) ([]types.Member, error) {
	out := make([]types.Member, 0, len(members))
	for _, member := range members {
		switch m := member.(type) {
		case *ast.PropertySignature:
			t := types.Any
			if m.Type != nil {
				var err error
				if t, err = a.typeOf(sc, m.Type); err != nil {
					return nil, err
				}
			}
			out = append(out, &types.Property{Key: m.Key, Type: t, Optional: m.Optional, Readonly: m.Readonly})
		case *ast.MethodSignature:
			fn, err := a.signature(sc, m.Signature)
			if err != nil {
				return nil, err
			}
			out = append(out, &types.Method{Key: m.Key, Optional: m.Optional, Fn: fn})
		case *ast.CallSignature:
			fn, err := a.signature(sc, m.Signature)
			if err != nil {
				return nil, err
			}
			out = append(out, &types.CallSignature{Fn: fn})
		case *ast.ConstructSignature:
			fn, err := a.signature(sc, m.Signature)
			if err != nil {
				return nil, err
			}
			out = append(out, &types.ConstructSignature{Fn: fn})
		case *ast.IndexSignature:
			key, err := a.typeOf(sc, m.KeyType)
			if err != nil {
				return nil, err
			}
			t, err := a.typeOf(sc, m.Type)
			if err != nil {
				return nil, err
			}
			out = append(out, &types.IndexSignature{Key: key, Type: t, Readonly: m.Readonly})
		}
	}
	return out, nil
}

// typeOf converts type syntax. Problems become diagnostics and an error type;
// the returned error is an engine failure.
func (a *Analyzer) typeOf(sc *scope, expr ast.TypeExpression) (types.Type, error) {
	switch n := expr.(type) {
	case nil:
		return types.Any, nil
	case *ast.KeywordType:
		if t, ok := types.KeywordType(n.Keyword); ok {
			return t, nil
		}
		return types.Any, nil
	case *ast.LiteralType:
		return a.literalType(n), nil
	case *ast.TypeReference:
		return a.typeRef(sc, n)
	case *ast.ParenthesizedType:
		return a.typeOf(sc, n.Type)
	case *ast.TypeLiteral:
		var members []types.Member
		err := a.inBoundary(func() error {
			var err error
			members, err = a.typeMembers(sc, n.Members)
			return err
		})
		if err != nil {
			return nil, err
		}
		return &types.TypeLit{Members: members}, nil
	case *ast.UnionType:
		ts, err := a.typesOf(sc, n.Types)
		if err != nil {
			return nil, err
		}
		return types.NewUnion(ts...), nil
	case *ast.IntersectionType:
		ts, err := a.typesOf(sc, n.Types)
		if err != nil {
			return nil, err
		}
		return types.NewIntersection(ts...), nil
	case *ast.FunctionType:
		var fn *types.Function
		err := a.inBoundary(func() error {
			var err error
			fn, err = a.signature(sc, n.Signature)
			return err
		})
		if err != nil {
			return nil, err
		}
		return fn, nil
	case *ast.ConstructorType:
		var fn *types.Function
		err := a.inBoundary(func() error {
			var err error
			fn, err = a.signature(sc, n.Signature)
			return err
		})
		if err != nil {
			return nil, err
		}
		return &types.Constructor{TypeParams: fn.TypeParams, Params: fn.Params, Ret: fn.Ret, Abstract: n.Abstract}, nil
	case *ast.ArrayType:
		var elem types.Type
		err := a.inBoundary(func() error {
			var err error
			elem, err = a.typeOf(sc, n.Elem)
			return err
		})
		if err != nil {
			return nil, err
		}
		return types.NewArray(elem), nil
	case *ast.TupleType:
		return a.tupleType(sc, n)
	case *ast.TypeOperator:
		return a.operatorType(sc, n)
	case *ast.IndexedAccessType:
		obj, err := a.typeOf(sc, n.Object)
		if err != nil {
			return nil, err
		}
		idx, err := a.typeOf(sc, n.Index)
		if err != nil {
			return nil, err
		}
		if id, ok := a.indexedCycle(obj, idx); ok {
			return a.cycleType(id, nil, n), nil
		}
		t := &types.IndexedAccess{Obj: obj, Index: idx}
		if a.deferred(t) {
			return t, nil
		}
		return a.indexedAccess(obj, idx, n)
	case *ast.ConditionalType:
		return a.conditionalType(sc, n)
	case *ast.InferType:
		if n.Param == nil {
			return types.ErrorType, nil
		}
		return &types.Infer{Name: types.IdOf(n.Param.ID)}, nil
	case *ast.MappedType:
		return a.mappedType(sc, n)
	case *ast.TypeQuery:
		return a.typeQuery(sc, n)
	case *ast.ThisType:
		return &types.This{}, nil
	}
	return types.Any, nil
}

func (a *Analyzer) typesOf(sc *scope, exprs []ast.TypeExpression) ([]types.Type, error) {
	out := make([]types.Type, 0, len(exprs))
	for _, expr := range exprs {
		t, err := a.typeOf(sc, expr)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (a *Analyzer) literalType(n *ast.LiteralType) types.Type {
	switch n.Kind {
	case ast.LiteralString:
		return types.StringLit(n.Value)
	case ast.LiteralNumber:
		return types.NumberLit(n.Value)
	case ast.LiteralBoolean:
		return types.BoolLit(n.Value == "true")
	case ast.LiteralBigInt:
		a.checkBigInt(n)
		return types.NewLit(types.LitBigInt, n.Value)
	}
	return types.ErrorType
}

func (a *Analyzer) checkBigInt(node ast.Node) {
	if a.config.IsBuiltin || a.env.Target() >= env.ES2020 {
		return
	}
	a.report(CodeBigIntTarget, node, "BigInt literals are not available when targeting lower than ES2020.")
}

func (a *Analyzer) tupleType(sc *scope, n *ast.TupleType) (types.Type, error) {
	elems := make([]types.TupleElem, 0, len(n.Elements))
	err := a.inBoundary(func() error {
		for _, el := range n.Elements {
			if el == nil {
				continue
			}
			t, err := a.typeOf(sc, el.Type)
			if err != nil {
				return err
			}
			elems = append(elems, types.TupleElem{Label: el.Label, Type: t, Optional: el.Optional, Rest: el.Rest})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &types.Tuple{Elems: elems}, nil
}

func (a *Analyzer) operatorType(sc *scope, n *ast.TypeOperator) (types.Type, error) {
	switch n.Op {
	case ast.TypeOperatorUnique:
		return types.Symbol, nil
	case ast.TypeOperatorReadonly:
		inner, err := a.typeOf(sc, n.Type)
		if err != nil {
			return nil, err
		}
		switch inner.(type) {
		case *types.Array, *types.Tuple:
			return &types.Operator{Op: types.OpReadonly, Type: inner}, nil
		}
		return inner, nil
	}
	inner, err := a.typeOf(sc, n.Type)
	if err != nil {
		return nil, err
	}
	if a.deferred(inner) {
		return &types.Operator{Op: types.OpKeyOf, Type: inner}, nil
	}
	return a.keyOf(inner)
}

func (a *Analyzer) conditionalType(sc *scope, n *ast.ConditionalType) (types.Type, error) {
	check, err := a.typeOf(sc, n.Check)
	if err != nil {
		return nil, err
	}
	inner := sc
	for _, id := range collectInfers(n.Extends) {
		inner = inner.bind(id, &types.Param{Name: id})
	}
	extends, err := a.typeOf(inner, n.Extends)
	if err != nil {
		return nil, err
	}
	var whenTrue, whenFalse types.Type
	err = a.inBoundary(func() error {
		var err error
		if whenTrue, err = a.typeOf(inner, n.True); err != nil {
			return err
		}
		whenFalse, err = a.typeOf(sc, n.False)
		return err
	})
	if err != nil {
		return nil, err
	}
	cond := &types.Conditional{Check: check, Extends: extends, True: whenTrue, False: whenFalse}
	if a.deferred(cond) {
		return cond, nil
	}
	return a.instantiate(cond, nil)
}

// collectInfers lists the `infer X` binders of an extends clause.
func collectInfers(expr ast.TypeExpression) []types.Id {
	var out []types.Id
	var walk func(ast.TypeExpression)
	walkSig := func(sig *ast.FunctionSignature) {
		if sig == nil {
			return
		}
		for _, p := range sig.Params {
			if p != nil {
				walk(p.Type)
			}
		}
		walk(sig.ReturnType)
	}
	walk = func(expr ast.TypeExpression) {
		switch n := expr.(type) {
		case *ast.InferType:
			if n.Param != nil {
				out = append(out, types.IdOf(n.Param.ID))
			}
		case *ast.TypeReference:
			for _, arg := range n.TypeArgs {
				walk(arg)
			}
		case *ast.TypeLiteral:
			for _, member := range n.Members {
				switch m := member.(type) {
				case *ast.PropertySignature:
					walk(m.Type)
				case *ast.MethodSignature:
					walkSig(m.Signature)
				case *ast.IndexSignature:
					walk(m.Type)
				}
			}
		case *ast.UnionType:
			for _, t := range n.Types {
				walk(t)
			}
		case *ast.IntersectionType:
			for _, t := range n.Types {
				walk(t)
			}
		case *ast.FunctionType:
			walkSig(n.Signature)
		case *ast.ConstructorType:
			walkSig(n.Signature)
		case *ast.ArrayType:
			walk(n.Elem)
		case *ast.TupleType:
			for _, el := range n.Elements {
				if el != nil {
					walk(el.Type)
				}
			}
		case *ast.ParenthesizedType:
			walk(n.Type)
		case *ast.TypeOperator:
			walk(n.Type)
		case *ast.IndexedAccessType:
			walk(n.Object)
			walk(n.Index)
		}
	}
	walk(expr)
	return out
}

func (a *Analyzer) mappedType(sc *scope, n *ast.MappedType) (types.Type, error) {
	if n.Param == nil {
		return types.ErrorType, nil
	}
	id := types.IdOf(n.Param.ID)
	constraint, err := a.typeOf(sc, n.Param.Constraint)
	if err != nil {
		return nil, err
	}
	inner := sc.bind(id, &types.Param{Name: id, Constraint: constraint})
	m := &types.Mapped{
		Param:      id,
		Constraint: constraint,
		Optional:   types.Modifier(n.Optional),
		Readonly:   types.Modifier(n.Readonly),
	}
	err = a.inBoundary(func() error {
		var err error
		if n.NameType != nil {
			if m.NameType, err = a.typeOf(inner, n.NameType); err != nil {
				return err
			}
		}
		if n.Type == nil {
			m.Type = types.Any
			return nil
		}
		m.Type, err = a.typeOf(inner, n.Type)
		return err
	})
	if err != nil {
		return nil, err
	}
	if a.deferred(m) {
		return m, nil
	}
	return a.instantiate(m, nil)
}

// deferred reports whether evaluating t must wait: it mentions free generic
// parameters or a declaration that is still being resolved.
func (a *Analyzer) deferred(t types.Type) bool {
	if hasFreeParams(t) {
		return true
	}
	if len(a.frames) == 0 {
		return false
	}
	found := false
	types.Walk(t, func(c types.Type) bool {
		if r, ok := c.(*types.Ref); ok && a.resolving(r.Name) {
			found = true
		}
		return !found
	})
	return found
}

func (a *Analyzer) typeRef(sc *scope, n *ast.TypeReference) (types.Type, error) {
	if n.Name == nil {
		return types.ErrorType, nil
	}
	if len(n.Path) > 0 {
		return a.qualifiedType(sc, n)
	}
	id := types.IdOf(n.Name)
	if p, ok := sc.params[id]; ok {
		if len(n.TypeArgs) > 0 {
			a.report(CodeNotGeneric, n, "Type '%s' is not generic.", n.Name.Name)
		}
		return p, nil
	}
	e, owner := a.lookupType(id, sc.st)
	if e == nil {
		return a.unknownType(sc, id, n), nil
	}
	return a.namedType(sc, e, owner, n.Name.Name, n.TypeArgs, n)
}

// unknownType reports a type name that no scope declares.
func (a *Analyzer) unknownType(sc *scope, id types.Id, node ast.Node) types.Type {
	if e, _ := a.lookupVar(id, sc.st); e != nil {
		a.report(CodeValueAsType, node, "'%s' refers to a value, but is being used as a type here. Did you mean 'typeof %s'?", id.Sym, id.Sym)
	} else {
		a.report(CodeNameNotFound, node, "Cannot find name '%s'.", id.Sym)
	}
	return types.ErrorType
}

func hasKind(e *storage.Entry, kinds ...storage.DeclKind) bool {
	for _, d := range e.Decls {
		if slices.Contains(kinds, d.Kind) {
			return true
		}
	}
	return false
}

// namedType converts a reference to the declared entry e.
func (a *Analyzer) namedType(sc *scope, e *storage.Entry, owner *storage.Storage, name string, argExprs []ast.TypeExpression, node ast.Node) (types.Type, error) {
	switch {
	case hasKind(e, storage.DeclTypeParam):
		if e.State == storage.StateInProgress {
			return &types.Param{Name: e.Id}, nil
		}
		ts, err := a.resolveEntry(e, owner)
		if err != nil {
			if _, ok := asCycle(err); ok {
				return &types.Param{Name: e.Id}, nil
			}
			return nil, err
		}
		return ts[0], nil

	case hasKind(e, storage.DeclTypeAlias):
		args, err := a.typesOf(sc, argExprs)
		if err != nil {
			return nil, err
		}
		ts, err := a.resolveEntry(e, owner)
		if err != nil {
			if _, ok := asCycle(err); ok {
				return a.cycleType(e.Id, args, node), nil
			}
			return nil, err
		}
		if len(ts) == 0 {
			return types.ErrorType, nil
		}
		alias, ok := ts[0].(*types.Alias)
		if !ok {
			if len(args) > 0 {
				a.report(CodeNotGeneric, node, "Type '%s' is not generic.", name)
			}
			return ts[0], nil
		}
		if !a.checkArity(name, alias.TypeParams, len(args), node) {
			return types.ErrorType, nil
		}
		for _, arg := range args {
			if a.deferred(arg) {
				return &types.Ref{Name: e.Id, Args: args}, nil
			}
		}
		return a.instantiateAlias(alias, args)

	case hasKind(e, storage.DeclInterface, storage.DeclClass, storage.DeclEnum):
		var args []types.Type
		err := a.inBoundary(func() error {
			var err error
			args, err = a.typesOf(sc, argExprs)
			return err
		})
		if err != nil {
			return nil, err
		}
		if !a.checkArity(name, declaredTypeParams(e), len(args), node) {
			return types.ErrorType, nil
		}
		return &types.Ref{Name: e.Id, Args: args}, nil

	case hasKind(e, storage.DeclImport):
		if _, own := a.imports[e.Id]; !own {
			// an import of another module, re-exported to us: use its memoized result
			if e.State == storage.StateResolved && len(e.Types) > 0 {
				return e.Types[0], nil
			}
			return types.ErrorType, nil
		}
		target, towner := a.importedEntry(e.Id, node)
		if target == nil || target == e {
			return types.ErrorType, nil
		}
		return a.namedType(sc, target, towner, name, argExprs, node)

	case hasKind(e, storage.DeclNamespace):
		a.report(CodeNamespaceAsType, node, "Cannot use namespace '%s' as a type.", name)
		return types.ErrorType, nil
	}
	return types.ErrorType, nil
}

// declaredTypeParams returns the generic parameters of the first interface or
// class declaration of e.
func declaredTypeParams(e *storage.Entry) []*types.TypeParamDecl {
	for _, d := range e.Decls {
		var params []*ast.TypeParameter
		switch n := d.Node.(type) {
		case *ast.InterfaceDeclaration:
			params = n.TypeParams
		case *ast.ClassDeclaration:
			params = n.TypeParams
		default:
			continue
		}
		out := make([]*types.TypeParamDecl, 0, len(params))
		for _, p := range params {
			if p == nil {
				continue
			}
			decl := &types.TypeParamDecl{Name: types.IdOf(p.ID)}
			if p.Default != nil {
				decl.Default = types.Unknown
			}
			out = append(out, decl)
		}
		return out
	}
	return nil
}

// checkArity reports a wrong number of type arguments.
func (a *Analyzer) checkArity(name string, params []*types.TypeParamDecl, got int, node ast.Node) bool {
	required := 0
	for _, p := range params {
		if p.Default == nil {
			required++
		}
	}
	if got >= required && got <= len(params) {
		return true
	}
	if len(params) == 0 {
		a.report(CodeNotGeneric, node, "Type '%s' is not generic.", name)
		return false
	}
	if required == len(params) {
		a.report(CodeGenericArity, node, "Generic type '%s' requires %d type argument(s).", name, required)
	} else {
		a.report(CodeGenericArity, node, "Generic type '%s' requires between %d and %d type arguments.", name, required, len(params))
	}
	return false
}

// qualifiedType follows `A.B.C` through namespaces, namespace imports and
// enums.
func (a *Analyzer) qualifiedType(sc *scope, n *ast.TypeReference) (types.Type, error) {
	head := types.IdOf(n.Name)
	e, owner := a.lookupType(head, sc.st)
	if e == nil {
		return a.unknownType(sc, head, n), nil
	}
	prefix := n.Name.Name
	for i, seg := range n.Path {
		ts, err := a.resolveEntry(e, owner)
		if err != nil {
			if _, ok := asCycle(err); ok {
				return a.cycleType(e.Id, nil, n), nil
			}
			return nil, err
		}
		last := i == len(n.Path)-1
		if last {
			if lit, ok := enumMember(ts, seg); ok {
				return lit, nil
			}
		}
		next, nowner := a.moduleMember(ts, seg)
		if next == nil {
			a.report(CodeNamespaceMember, n, "Namespace '%s' has no exported member '%s'.", prefix, seg)
			return types.ErrorType, nil
		}
		e, owner = next, nowner
		prefix += "." + seg
	}
	return a.namedType(sc, e, owner, prefix, n.TypeArgs, n)
}

// enumMember returns the literal type of member name of an enum candidate.
func enumMember(ts []types.Type, name string) (types.Type, bool) {
	for _, t := range ts {
		enum, ok := t.(*types.Enum)
		if !ok {
			continue
		}
		for _, m := range enum.Members {
			if m.Name == name {
				if m.Value == nil {
					return types.Number, true
				}
				return m.Value, true
			}
		}
	}
	return nil, false
}

// moduleMember finds the type entry exported as name by a module candidate.
func (a *Analyzer) moduleMember(ts []types.Type, name string) (*storage.Entry, *storage.Storage) {
	for _, t := range ts {
		mod, ok := t.(*types.Module)
		if !ok {
			continue
		}
		for _, member := range mod.Types[name] {
			if ref, ok := member.(*types.Ref); ok {
				if e, owner := a.lookupType(ref.Name, nil); e != nil {
					return e, owner
				}
			}
		}
	}
	return nil, nil
}

func (a *Analyzer) typeQuery(sc *scope, n *ast.TypeQuery) (types.Type, error) {
	if n.Name == nil {
		return types.ErrorType, nil
	}
	id := types.IdOf(n.Name)
	t, ok, err := a.resolveVar(id, sc.st)
	if err != nil {
		return nil, err
	}
	if !ok {
		a.report(CodeNameNotFound, n, "Cannot find name '%s'.", n.Name.Name)
		return types.ErrorType, nil
	}
	path := n.Name.Name
	for _, seg := range n.Path {
		if t, err = a.propertyType(t, seg, path, n); err != nil {
			return nil, err
		}
		path += "." + seg
	}
	return t, nil
}

// propertyType is the type of property key read from a value of type t.
func (a *Analyzer) propertyType(t types.Type, key, owner string, node ast.Node) (types.Type, error) {
	if mod, ok := t.(*types.Module); ok {
		v, ok := mod.Vars[key]
		if !ok {
			a.report(CodeNamespaceMember, node, "Namespace '%s' has no exported member '%s'.", owner, key)
			return types.ErrorType, nil
		}
		return a.instantiate(v, nil)
	}
	if types.IsError(t) || types.IsKeyword(t, types.KeywordAny) {
		return t, nil
	}
	members, err := a.members(t)
	if err != nil {
		return nil, err
	}
	if p, ok := types.PropertyOf(members, key); ok {
		return p, nil
	}
	a.report(CodePropertyMissing, node, "Property '%s' does not exist on type '%s'.", key, printType(t))
	return types.ErrorType, nil
}

func printType(t types.Type) string {
	if t == nil {
		return "any"
	}
	s := t.String()
	return strings.TrimSpace(s)
}
