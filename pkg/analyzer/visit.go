package analyzer

import (
	"github.com/pkg/errors"

	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/storage"
	"github.com/devgony/stc/pkg/types"
)

// visitStatements is pass 2: it settles the type and value of every
// declaration of body and walks nested scopes. Depth failures are recorded
// against the declaration that triggered them and traversal continues.
func (a *Analyzer) visitStatements(st *storage.Storage, body []ast.Statement) error {
	for _, stmt := range body {
		if err := a.visitStatement(st, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) visitStatement(st *storage.Storage, stmt ast.Statement) error {
	if stmt == nil || a.rejected[stmt] {
		return nil
	}
	switch n := stmt.(type) {
	case *ast.TypeAliasDeclaration:
		return a.settleType(st, n.ID, n)
	case *ast.InterfaceDeclaration:
		return a.settleType(st, n.ID, n)
	case *ast.EnumDeclaration:
		if err := a.settleType(st, n.ID, n); err != nil {
			return err
		}
		return a.settleVar(st, n.ID, n)
	case *ast.ClassDeclaration:
		if err := a.settleType(st, n.ID, n); err != nil {
			return err
		}
		if err := a.settleVar(st, n.ID, n); err != nil {
			return err
		}
		return a.visitClassBodies(n)
	case *ast.FunctionDeclaration:
		if err := a.settleVar(st, n.ID, n); err != nil {
			return err
		}
		var params []*ast.Parameter
		if n.Signature != nil {
			params = n.Signature.Params
		}
		return a.visitFunctionBody(n, params, n.Body)
	case *ast.VariableDeclaration:
		for _, d := range n.Declarators {
			if d == nil || a.rejected[d] {
				continue
			}
			if err := a.settleVar(st, d.ID, d); err != nil {
				return err
			}
			if err := a.checkInitializer(st, d); err != nil {
				return err
			}
		}
	case *ast.NamespaceDeclaration:
		if err := a.settleType(st, n.ID, n); err != nil {
			return err
		}
		if err := a.settleVar(st, n.ID, n); err != nil {
			return err
		}
		inner, ok := st.ByMark(n.ScopeMark)
		if !ok {
			inner = st
		}
		return a.visitStatements(inner, n.Body)
	case *ast.ImportDeclaration:
		locals := []*ast.Identifier{n.Default, n.Namespace}
		for _, spec := range n.Specifiers {
			if spec != nil {
				locals = append(locals, spec.Local)
			}
		}
		for _, local := range locals {
			if local == nil || a.imports[types.IdOf(local)] == nil {
				continue
			}
			if err := a.settleType(st, local, n); err != nil {
				return err
			}
			if err := a.settleVar(st, local, n); err != nil {
				return err
			}
		}
	case *ast.ExportDeclaration:
		return a.visitStatement(st, n.Declaration)
	case *ast.ExportNamed:
		if n.Source != "" {
			return nil
		}
		for _, spec := range n.Specifiers {
			if spec == nil || spec.Local == nil {
				continue
			}
			id := types.IdOf(spec.Local)
			te, _ := a.lookupType(id, st)
			ve, _ := a.lookupVar(id, st)
			if te == nil && ve == nil {
				a.report(CodeNameNotFound, spec, "Cannot find name '%s'.", spec.Local.Name)
			}
		}
	case *ast.BlockStatement:
		inner := st
		if s, ok := a.scopes[n]; ok {
			inner = s
		}
		return a.visitStatements(inner, n.Body)
	case *ast.ExpressionStatement:
		return a.guard(n, func() error {
			_, err := a.exprType(&scope{st: st}, n.Expression, false)
			return err
		})
	case *ast.ReturnStatement:
		if n.Argument == nil {
			return nil
		}
		return a.guard(n, func() error {
			_, err := a.exprType(&scope{st: st}, n.Argument, false)
			return err
		})
	}
	return nil
}

// guard runs one settling step and turns a depth failure into a diagnostic.
func (a *Analyzer) guard(node ast.Node, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDepthExceeded) {
		a.logger.Warn("depth exceeded", "error", err)
		a.report(CodeDepthExceeded, node, "Type instantiation is excessively deep and possibly infinite.")
		return nil
	}
	if _, ok := asCycle(err); ok {
		return errors.Wrap(ErrInvariant, err.Error())
	}
	return err
}

func (a *Analyzer) settleType(st *storage.Storage, ident *ast.Identifier, node ast.Node) error {
	if ident == nil {
		return nil
	}
	id := types.IdOf(ident)
	e, owner := a.lookupType(id, st)
	if e == nil {
		return nil
	}
	err := a.guard(node, func() error {
		_, err := a.resolveEntry(e, owner)
		return err
	})
	if err == nil && e.State != storage.StateResolved && !owner.Frozen() {
		owner.SetTypes(id, []types.Type{types.ErrorType})
	}
	return err
}

func (a *Analyzer) settleVar(st *storage.Storage, ident *ast.Identifier, node ast.Node) error {
	if ident == nil {
		return nil
	}
	id := types.IdOf(ident)
	e, owner := a.lookupVar(id, st)
	if e == nil {
		return nil
	}
	err := a.guard(node, func() error {
		_, err := a.resolveVarEntry(e, owner)
		return err
	})
	if err == nil && e.State != storage.StateResolved && !owner.Frozen() {
		owner.SetVar(id, types.ErrorType)
	}
	return err
}

// checkInitializer reports an initializer that does not fit the declared
// type of its variable.
func (a *Analyzer) checkInitializer(st *storage.Storage, d *ast.VariableDeclarator) error {
	if d.Type == nil || d.Init == nil || a.config.IsBuiltin {
		return nil
	}
	return a.guard(d, func() error {
		declared, ok, err := a.resolveVar(types.IdOf(d.ID), st)
		if err != nil || !ok {
			return err
		}
		init, err := a.exprType(&scope{st: st}, d.Init, true)
		if err != nil {
			return err
		}
		ok, err = a.IsAssignable(init, declared)
		if err != nil {
			return err
		}
		if !ok {
			a.report(CodeNotAssignable, d.Init, "Type '%s' is not assignable to type '%s'.", printType(init), printType(declared))
		}
		return nil
	})
}

func (a *Analyzer) visitFunctionBody(owner ast.Node, params []*ast.Parameter, body *ast.BlockStatement) error {
	st, ok := a.scopes[owner]
	if !ok {
		return nil
	}
	for _, p := range params {
		if p != nil {
			if err := a.settleVar(st, p.ID, p); err != nil {
				return err
			}
		}
	}
	if body == nil {
		return nil
	}
	inner := st
	if s, ok := a.scopes[body]; ok {
		inner = s
	}
	return a.visitStatements(inner, body.Body)
}

func (a *Analyzer) visitClassBodies(n *ast.ClassDeclaration) error {
	for _, member := range n.Members {
		switch m := member.(type) {
		case *ast.ClassMethod:
			var params []*ast.Parameter
			if m.Signature != nil {
				params = m.Signature.Params
			}
			if err := a.visitFunctionBody(m, params, m.Body); err != nil {
				return err
			}
		case *ast.ClassConstructor:
			if err := a.visitFunctionBody(m, m.Params, m.Body); err != nil {
				return err
			}
		}
	}
	return nil
}
