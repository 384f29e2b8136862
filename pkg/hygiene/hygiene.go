// Package hygiene tags every identifier of a module with the mark of the scope
// that binds it. After Apply, two identifiers denote the same binding exactly
// when both their names and marks are equal; references that no enclosing
// scope declares receive the unresolved mark and are looked up globally.
package hygiene

import "github.com/devgony/stc/pkg/ast"

type namespace int

const (
	typeSpace namespace = iota
	valueSpace
)

type scope struct {
	parent *scope
	mark   ast.Mark
	types  map[string]struct{}
	values map[string]struct{}
}

func newScope(parent *scope, mark ast.Mark) *scope {
	return &scope{
		parent: parent,
		mark:   mark,
		types:  make(map[string]struct{}),
		values: make(map[string]struct{}),
	}
}

func (s *scope) child() *scope {
	return newScope(s, ast.NewMarkWithParent(s.mark))
}

func (s *scope) declare(id *ast.Identifier, spaces ...namespace) {
	if id == nil {
		return
	}
	id.Mark = s.mark
	for _, ns := range spaces {
		switch ns {
		case typeSpace:
			s.types[id.Name] = struct{}{}
		case valueSpace:
			s.values[id.Name] = struct{}{}
		}
	}
}

func (s *scope) has(name string, ns namespace) bool {
	if ns == typeSpace {
		_, ok := s.types[name]
		return ok
	}
	_, ok := s.values[name]
	return ok
}

type resolver struct {
	unresolved ast.Mark
}

// Apply runs the renaming pass over module. Module-level declarations receive
// topLevel; builtin library modules pass topLevel == unresolved.
func Apply(module *ast.Module, unresolved, topLevel ast.Mark) {
	if module == nil {
		return
	}
	r := &resolver{unresolved: unresolved}
	s := newScope(nil, topLevel)
	r.hoist(s, module.Body)
	r.statements(s, module.Body)
}

func (r *resolver) reference(s *scope, id *ast.Identifier, ns namespace) {
	if id == nil {
		return
	}
	for cur := s; cur != nil; cur = cur.parent {
		if cur.has(id.Name, ns) {
			id.Mark = cur.mark
			return
		}
	}
	id.Mark = r.unresolved
}

// hoist binds every declaration of a statement list before any reference is
// resolved, so declaration order never restricts visibility.
func (r *resolver) hoist(s *scope, body []ast.Statement) {
	for _, stmt := range body {
		r.hoistStatement(s, stmt)
	}
}

func (r *resolver) hoistStatement(s *scope, stmt ast.Statement) {
	switch n := stmt.(type) {
	case *ast.TypeAliasDeclaration:
		s.declare(n.ID, typeSpace)
	case *ast.InterfaceDeclaration:
		s.declare(n.ID, typeSpace)
	case *ast.ClassDeclaration:
		s.declare(n.ID, typeSpace, valueSpace)
	case *ast.EnumDeclaration:
		s.declare(n.ID, typeSpace, valueSpace)
	case *ast.FunctionDeclaration:
		s.declare(n.ID, valueSpace)
	case *ast.VariableDeclaration:
		for _, d := range n.Declarators {
			if d != nil {
				s.declare(d.ID, valueSpace)
			}
		}
	case *ast.NamespaceDeclaration:
		s.declare(n.ID, typeSpace, valueSpace)
	case *ast.ImportDeclaration:
		s.declare(n.Default, typeSpace, valueSpace)
		s.declare(n.Namespace, typeSpace, valueSpace)
		for _, spec := range n.Specifiers {
			if spec != nil {
				s.declare(spec.Local, typeSpace, valueSpace)
			}
		}
	case *ast.ExportDeclaration:
		r.hoistStatement(s, n.Declaration)
	}
}

func (r *resolver) statements(s *scope, body []ast.Statement) {
	for _, stmt := range body {
		r.statement(s, stmt)
	}
}

func (r *resolver) statement(s *scope, stmt ast.Statement) {
	switch n := stmt.(type) {
	case nil:
	case *ast.TypeAliasDeclaration:
		inner := r.typeParams(s, n.TypeParams)
		r.typeExpr(inner, n.Type)
	case *ast.InterfaceDeclaration:
		inner := r.typeParams(s, n.TypeParams)
		for _, ext := range n.Extends {
			r.typeExpr(inner, ext)
		}
		r.members(inner, n.Body)
	case *ast.ClassDeclaration:
		r.class(s, n)
	case *ast.EnumDeclaration:
		for _, m := range n.Members {
			if m != nil {
				r.expr(s, m.Init)
			}
		}
	case *ast.FunctionDeclaration:
		fn := r.signature(s, n.Signature)
		if n.Body != nil {
			r.block(fn, n.Body)
		}
	case *ast.VariableDeclaration:
		for _, d := range n.Declarators {
			if d == nil {
				continue
			}
			r.typeExpr(s, d.Type)
			r.expr(s, d.Init)
		}
	case *ast.NamespaceDeclaration:
		inner := s.child()
		n.ScopeMark = inner.mark
		r.hoist(inner, n.Body)
		r.statements(inner, n.Body)
	case *ast.ImportDeclaration:
	case *ast.ExportDeclaration:
		r.statement(s, n.Declaration)
	case *ast.ExportNamed:
		if n.Source != "" {
			return
		}
		for _, spec := range n.Specifiers {
			if spec == nil || spec.Local == nil {
				continue
			}
			r.reference(s, spec.Local, typeSpace)
			if spec.Local.Mark == r.unresolved {
				r.reference(s, spec.Local, valueSpace)
			}
		}
	case *ast.BlockStatement:
		r.block(s, n)
	case *ast.ExpressionStatement:
		r.expr(s, n.Expression)
	case *ast.ReturnStatement:
		r.expr(s, n.Argument)
	}
}

func (r *resolver) block(s *scope, block *ast.BlockStatement) {
	inner := s.child()
	block.ScopeMark = inner.mark
	r.hoist(inner, block.Body)
	r.statements(inner, block.Body)
}

func (r *resolver) class(s *scope, n *ast.ClassDeclaration) {
	inner := r.typeParams(s, n.TypeParams)
	if n.SuperClass != nil {
		r.typeExpr(inner, n.SuperClass)
	}
	for _, impl := range n.Implements {
		r.typeExpr(inner, impl)
	}
	for _, member := range n.Members {
		switch m := member.(type) {
		case *ast.ClassProperty:
			r.typeExpr(inner, m.Type)
			r.expr(inner, m.Value)
		case *ast.ClassMethod:
			fn := r.signature(inner, m.Signature)
			if m.Body != nil {
				r.block(fn, m.Body)
			}
		case *ast.ClassConstructor:
			fn := inner.child()
			r.params(fn, m.Params)
			if m.Body != nil {
				r.block(fn, m.Body)
			}
		}
	}
}

// typeParams opens a scope for a declaration's generic parameters. Without
// parameters the enclosing scope is reused.
func (r *resolver) typeParams(s *scope, params []*ast.TypeParameter) *scope {
	if len(params) == 0 {
		return s
	}
	inner := s.child()
	for _, p := range params {
		if p != nil {
			inner.declare(p.ID, typeSpace)
		}
	}
	for _, p := range params {
		if p == nil {
			continue
		}
		r.typeExpr(inner, p.Constraint)
		r.typeExpr(inner, p.Default)
	}
	return inner
}

func (r *resolver) signature(s *scope, sig *ast.FunctionSignature) *scope {
	fn := s.child()
	if sig == nil {
		return fn
	}
	for _, p := range sig.TypeParams {
		if p != nil {
			fn.declare(p.ID, typeSpace)
		}
	}
	for _, p := range sig.TypeParams {
		if p == nil {
			continue
		}
		r.typeExpr(fn, p.Constraint)
		r.typeExpr(fn, p.Default)
	}
	r.params(fn, sig.Params)
	r.typeExpr(fn, sig.ReturnType)
	return fn
}

func (r *resolver) params(fn *scope, params []*ast.Parameter) {
	for _, p := range params {
		if p != nil {
			fn.declare(p.ID, valueSpace)
		}
	}
	for _, p := range params {
		if p != nil {
			r.typeExpr(fn, p.Type)
		}
	}
}

func (r *resolver) members(s *scope, members []ast.TypeMember) {
	for _, member := range members {
		switch m := member.(type) {
		case *ast.PropertySignature:
			r.typeExpr(s, m.Type)
		case *ast.MethodSignature:
			r.signature(s, m.Signature)
		case *ast.CallSignature:
			r.signature(s, m.Signature)
		case *ast.ConstructSignature:
			r.signature(s, m.Signature)
		case *ast.IndexSignature:
			r.typeExpr(s, m.KeyType)
			r.typeExpr(s, m.Type)
		}
	}
}

func (r *resolver) typeExpr(s *scope, expr ast.TypeExpression) {
	switch n := expr.(type) {
	case nil:
	case *ast.TypeReference:
		r.reference(s, n.Name, typeSpace)
		for _, arg := range n.TypeArgs {
			r.typeExpr(s, arg)
		}
	case *ast.TypeQuery:
		r.reference(s, n.Name, valueSpace)
	case *ast.TypeLiteral:
		r.members(s, n.Members)
	case *ast.UnionType:
		for _, t := range n.Types {
			r.typeExpr(s, t)
		}
	case *ast.IntersectionType:
		for _, t := range n.Types {
			r.typeExpr(s, t)
		}
	case *ast.FunctionType:
		r.signature(s, n.Signature)
	case *ast.ConstructorType:
		r.signature(s, n.Signature)
	case *ast.ArrayType:
		r.typeExpr(s, n.Elem)
	case *ast.TupleType:
		for _, el := range n.Elements {
			if el != nil {
				r.typeExpr(s, el.Type)
			}
		}
	case *ast.ParenthesizedType:
		r.typeExpr(s, n.Type)
	case *ast.TypeOperator:
		r.typeExpr(s, n.Type)
	case *ast.IndexedAccessType:
		r.typeExpr(s, n.Object)
		r.typeExpr(s, n.Index)
	case *ast.ConditionalType:
		r.typeExpr(s, n.Check)
		inferScope := s.child()
		r.collectInfers(inferScope, n.Extends)
		r.typeExpr(inferScope, n.Extends)
		r.typeExpr(inferScope, n.True)
		r.typeExpr(s, n.False)
	case *ast.InferType:
		if n.Param != nil {
			r.typeExpr(s, n.Param.Constraint)
		}
	case *ast.MappedType:
		inner := s.child()
		if n.Param != nil {
			r.typeExpr(s, n.Param.Constraint)
			inner.declare(n.Param.ID, typeSpace)
		}
		r.typeExpr(inner, n.NameType)
		r.typeExpr(inner, n.Type)
	}
}

// collectInfers binds every `infer X` of an extends clause in s.
func (r *resolver) collectInfers(s *scope, expr ast.TypeExpression) {
	switch n := expr.(type) {
	case nil:
	case *ast.InferType:
		if n.Param != nil {
			s.declare(n.Param.ID, typeSpace)
		}
	case *ast.TypeReference:
		for _, arg := range n.TypeArgs {
			r.collectInfers(s, arg)
		}
	case *ast.TypeLiteral:
		for _, member := range n.Members {
			switch m := member.(type) {
			case *ast.PropertySignature:
				r.collectInfers(s, m.Type)
			case *ast.MethodSignature:
				r.collectSignatureInfers(s, m.Signature)
			case *ast.IndexSignature:
				r.collectInfers(s, m.Type)
			}
		}
	case *ast.UnionType:
		for _, t := range n.Types {
			r.collectInfers(s, t)
		}
	case *ast.IntersectionType:
		for _, t := range n.Types {
			r.collectInfers(s, t)
		}
	case *ast.FunctionType:
		r.collectSignatureInfers(s, n.Signature)
	case *ast.ConstructorType:
		r.collectSignatureInfers(s, n.Signature)
	case *ast.ArrayType:
		r.collectInfers(s, n.Elem)
	case *ast.TupleType:
		for _, el := range n.Elements {
			if el != nil {
				r.collectInfers(s, el.Type)
			}
		}
	case *ast.ParenthesizedType:
		r.collectInfers(s, n.Type)
	case *ast.TypeOperator:
		r.collectInfers(s, n.Type)
	case *ast.IndexedAccessType:
		r.collectInfers(s, n.Object)
		r.collectInfers(s, n.Index)
	}
}

func (r *resolver) collectSignatureInfers(s *scope, sig *ast.FunctionSignature) {
	if sig == nil {
		return
	}
	for _, p := range sig.Params {
		if p != nil {
			r.collectInfers(s, p.Type)
		}
	}
	r.collectInfers(s, sig.ReturnType)
}

func (r *resolver) expr(s *scope, expr ast.Expression) {
	switch n := expr.(type) {
	case nil:
	case *ast.Identifier:
		r.reference(s, n, valueSpace)
	case *ast.ArrayLiteral:
		for _, el := range n.Elements {
			r.expr(s, el)
		}
	case *ast.ObjectLiteral:
		for _, p := range n.Properties {
			if p != nil {
				r.expr(s, p.Value)
			}
		}
	case *ast.AsExpression:
		r.expr(s, n.Expression)
		r.typeExpr(s, n.Type)
	}
}
