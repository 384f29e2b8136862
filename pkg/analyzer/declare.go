package analyzer

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/storage"
	"github.com/devgony/stc/pkg/types"
)

// importBinding remembers what a local import name refers to. imported is
// "default", "*" for a namespace import, or the exported name.
type importBinding struct {
	source   string
	imported string
	node     ast.Node
	reported bool
}

func (b *importBinding) namespace() bool { return b.imported == "*" }

// declareStatements is pass 1: every declaration of body is registered in st
// before anything is resolved, so forward references work.
func (a *Analyzer) declareStatements(st *storage.Storage, body []ast.Statement) {
	for _, stmt := range body {
		a.declareStatement(st, stmt, false, false)
	}
}

func (a *Analyzer) declareStatement(st *storage.Storage, stmt ast.Statement, exported, isDefault bool) {
	switch n := stmt.(type) {
	case nil:
	case *ast.TypeAliasDeclaration:
		a.declareNamed(st, n.ID, storage.DeclTypeAlias, n, exported, isDefault)
	case *ast.InterfaceDeclaration:
		a.declareNamed(st, n.ID, storage.DeclInterface, n, exported, isDefault)
	case *ast.ClassDeclaration:
		if a.declareNamed(st, n.ID, storage.DeclClass, n, exported, isDefault) {
			a.declareClassScopes(st, n)
		}
	case *ast.EnumDeclaration:
		a.declareNamed(st, n.ID, storage.DeclEnum, n, exported, isDefault)
	case *ast.FunctionDeclaration:
		if a.declareNamed(st, n.ID, storage.DeclFunction, n, exported, isDefault) {
			a.declareFunctionScope(st, n, n.Signature, n.Body)
		}
	case *ast.VariableDeclaration:
		kind := varDeclKind(n.Kind)
		for _, d := range n.Declarators {
			if d != nil {
				a.declareNamed(st, d.ID, kind, d, exported, false)
			}
		}
	case *ast.NamespaceDeclaration:
		if !a.declareNamed(st, n.ID, storage.DeclNamespace, n, exported, isDefault) {
			return
		}
		inner := a.childScope(st, n.ScopeMark)
		implicit := n.Declare || st.IsDTS()
		for _, s := range n.Body {
			a.declareStatement(inner, s, implicit, false)
		}
	case *ast.ImportDeclaration:
		a.declareImport(st, n)
	case *ast.ExportDeclaration:
		a.declareStatement(st, n.Declaration, true, n.Default)
	case *ast.ExportNamed:
		a.declareExportNamed(st, n)
	case *ast.BlockStatement:
		a.declareBlock(st, n)
	}
}

func varDeclKind(kind ast.VarKind) storage.DeclKind {
	switch kind {
	case ast.VarKindLet:
		return storage.DeclLet
	case ast.VarKindConst:
		return storage.DeclConst
	}
	return storage.DeclVar
}

// declareNamed registers one binding and reports whether it was accepted.
func (a *Analyzer) declareNamed(st *storage.Storage, ident *ast.Identifier, kind storage.DeclKind, node ast.Node, exported, isDefault bool) bool {
	if ident == nil {
		return false
	}
	id := types.IdOf(ident)
	if err := st.Declare(id, kind, node); err != nil {
		var re *storage.RedeclarationError
		if errors.As(err, &re) {
			a.addDiagnostic(Diagnostic{
				Severity: SeverityError,
				Code:     CodeDuplicateIdentifier,
				Message:  fmt.Sprintf("Duplicate identifier '%s'.", ident.Name),
				Node:     node,
				Notes:    []DiagnosticNote{{Message: fmt.Sprintf("'%s' was also declared here as %s.", ident.Name, re.Existing), Node: re.First}},
			})
		}
		a.logger.Warn("declare", "id", id.String(), "error", err)
		a.rejected[node] = true
		return false
	}
	if exported {
		st.Export(ident.Name, id)
	}
	if isDefault {
		st.Export("default", id)
	}
	return true
}

// childScope returns the storage of mark below parent, creating it once.
func (a *Analyzer) childScope(parent *storage.Storage, mark ast.Mark) *storage.Storage {
	if mark == ast.NoMark {
		return parent
	}
	if s, ok := parent.ByMark(mark); ok {
		return s
	}
	return parent.Child(mark)
}

func (a *Analyzer) declareBlock(parent *storage.Storage, block *ast.BlockStatement) {
	if block == nil {
		return
	}
	st := a.childScope(parent, block.ScopeMark)
	a.scopes[block] = st
	for _, s := range block.Body {
		a.declareStatement(st, s, false, false)
	}
}

// signatureMark is the mark hygiene gave the parameters of a signature.
func signatureMark(typeParams []*ast.TypeParameter, params []*ast.Parameter) ast.Mark {
	for _, tp := range typeParams {
		if tp != nil && tp.ID != nil {
			return tp.ID.Mark
		}
	}
	for _, p := range params {
		if p != nil && p.ID != nil {
			return p.ID.Mark
		}
	}
	return ast.NoMark
}

// declareFunctionScope opens the storage that holds the generic and value
// parameters of a function so its body can see them.
func (a *Analyzer) declareFunctionScope(parent *storage.Storage, owner ast.Node, sig *ast.FunctionSignature, body *ast.BlockStatement) {
	var typeParams []*ast.TypeParameter
	var params []*ast.Parameter
	if sig != nil {
		typeParams, params = sig.TypeParams, sig.Params
	}
	a.declareParamScope(parent, owner, typeParams, params, body)
}

func (a *Analyzer) declareParamScope(parent *storage.Storage, owner ast.Node, typeParams []*ast.TypeParameter, params []*ast.Parameter, body *ast.BlockStatement) {
	st := parent
	if mark := signatureMark(typeParams, params); mark != ast.NoMark {
		st = a.childScope(parent, mark)
		for _, tp := range typeParams {
			if tp != nil {
				a.declareNamed(st, tp.ID, storage.DeclTypeParam, tp, false, false)
			}
		}
		for _, p := range params {
			if p != nil {
				a.declareNamed(st, p.ID, storage.DeclParam, p, false, false)
			}
		}
	}
	a.scopes[owner] = st
	a.declareBlock(st, body)
}

func (a *Analyzer) declareClassScopes(parent *storage.Storage, n *ast.ClassDeclaration) {
	st := parent
	if len(n.TypeParams) > 0 && n.TypeParams[0] != nil {
		st = a.childScope(parent, n.TypeParams[0].ID.Mark)
		for _, tp := range n.TypeParams {
			if tp != nil {
				a.declareNamed(st, tp.ID, storage.DeclTypeParam, tp, false, false)
			}
		}
	}
	a.scopes[n] = st
	for _, member := range n.Members {
		switch m := member.(type) {
		case *ast.ClassMethod:
			a.declareFunctionScope(st, m, m.Signature, m.Body)
		case *ast.ClassConstructor:
			a.declareParamScope(st, m, nil, m.Params, m.Body)
		}
	}
}

func (a *Analyzer) declareImport(st *storage.Storage, n *ast.ImportDeclaration) {
	// Each binding is declared with its own node so a rejected binding
	// leaves its siblings intact.
	bind := func(local *ast.Identifier, imported string, node ast.Node) {
		if local == nil {
			return
		}
		if a.declareNamed(st, local, storage.DeclImport, node, false, false) {
			a.imports[types.IdOf(local)] = &importBinding{source: n.Source, imported: imported, node: n}
		}
	}
	bind(n.Default, "default", n.Default)
	bind(n.Namespace, "*", n.Namespace)
	for _, spec := range n.Specifiers {
		if spec != nil {
			bind(spec.Local, spec.Imported, spec)
		}
	}
	a.loadModule(n.Source, n)
}

func (a *Analyzer) declareExportNamed(st *storage.Storage, n *ast.ExportNamed) {
	if n.Source == "" {
		for _, spec := range n.Specifiers {
			if spec != nil && spec.Local != nil {
				st.Export(spec.Exported, types.IdOf(spec.Local))
			}
		}
		return
	}
	target := a.loadModule(n.Source, n)
	if target == nil {
		return
	}
	if n.Star {
		st.ExportAll(target)
		return
	}
	for _, spec := range n.Specifiers {
		if spec == nil || spec.Local == nil {
			continue
		}
		exp, ok := target.LookupExport(spec.Local.Name)
		if !ok {
			a.report(CodeNoExportedMember, spec, "Module '\"%s\"' has no exported member '%s'.", n.Source, spec.Local.Name)
			continue
		}
		st.ExportFrom(spec.Exported, exp.Id, exp.Owner)
	}
}

// loadModule resolves an import specifier once per analyzer. A missing
// module is reported at its first import only.
func (a *Analyzer) loadModule(specifier string, node ast.Node) *storage.Storage {
	if s, ok := a.modules[specifier]; ok {
		return s
	}
	if a.missing[specifier] {
		return nil
	}
	s, err := a.loader.Resolve(specifier, a.path)
	if err != nil || s == nil {
		a.missing[specifier] = true
		diag := Diagnostic{
			Severity: SeverityError,
			Code:     CodeModuleNotFound,
			Message:  fmt.Sprintf("Cannot find module '%s' or its corresponding type declarations.", specifier),
			Node:     node,
		}
		if err != nil && !errors.Is(err, ErrModuleNotFound) {
			diag.Notes = append(diag.Notes, DiagnosticNote{Message: err.Error()})
		}
		a.addDiagnostic(diag)
		return nil
	}
	a.logger.Debug("import", "specifier", specifier, "resolved", s.Path())
	a.modules[specifier] = s
	a.storage.Link(s)
	return s
}
