package analyzer

import (
	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/storage"
	"github.com/devgony/stc/pkg/types"
)

// importTarget returns the binding of a local import name and the storage of
// the imported module, which is nil when the module could not be loaded.
func (a *Analyzer) importTarget(id types.Id) (*importBinding, *storage.Storage) {
	b := a.imports[id]
	if b == nil {
		return nil, nil
	}
	return b, a.modules[b.source]
}

// lookupExport finds the export an import binding names. A missing export is
// reported once per binding.
func (a *Analyzer) lookupExport(b *importBinding, target *storage.Storage) (storage.Export, bool) {
	exp, ok := target.LookupExport(b.imported)
	if ok {
		return exp, true
	}
	if !b.reported {
		b.reported = true
		if b.imported == "default" {
			a.report(CodeNoExportedMember, b.node, "Module '\"%s\"' has no default export.", b.source)
		} else {
			a.report(CodeNoExportedMember, b.node, "Module '\"%s\"' has no exported member '%s'.", b.source, b.imported)
		}
	}
	return storage.Export{}, false
}

// importTypes resolves the type candidates of an import binding to those of
// the exported declaration.
func (a *Analyzer) importTypes(id types.Id) ([]types.Type, error) {
	b, target := a.importTarget(id)
	if b == nil || target == nil {
		return []types.Type{types.ErrorType}, nil
	}
	if b.namespace() {
		return []types.Type{a.moduleFromStorage(id, target)}, nil
	}
	exp, ok := a.lookupExport(b, target)
	if !ok {
		return []types.Type{types.ErrorType}, nil
	}
	e, ok := exp.Owner.LookupLocal(exp.Id)
	if !ok {
		return nil, nil
	}
	return a.resolveEntry(e, exp.Owner)
}

// importedEntry returns the type entry an import binding denotes, reporting
// bindings that cannot be used as a type.
func (a *Analyzer) importedEntry(id types.Id, node ast.Node) (*storage.Entry, *storage.Storage) {
	b, target := a.importTarget(id)
	if b == nil || target == nil {
		return nil, nil
	}
	if b.namespace() {
		a.report(CodeNamespaceAsType, node, "Cannot use namespace '%s' as a type.", id.Sym)
		return nil, nil
	}
	exp, ok := a.lookupExport(b, target)
	if !ok {
		return nil, nil
	}
	e, ok := exp.Owner.LookupLocal(exp.Id)
	if !ok || len(e.Decls) == 0 {
		a.report(CodeValueAsType, node, "'%s' refers to a value, but is being used as a type here. Did you mean 'typeof %s'?", id.Sym, id.Sym)
		return nil, nil
	}
	return e, exp.Owner
}

func (a *Analyzer) importValue(id types.Id) (types.Type, error) {
	b, target := a.importTarget(id)
	if b == nil || target == nil {
		return types.ErrorType, nil
	}
	if b.namespace() {
		return a.moduleFromStorage(id, target), nil
	}
	exp, ok := a.lookupExport(b, target)
	if !ok {
		return types.ErrorType, nil
	}
	e, owner := exp.Owner.LookupVar(exp.Id)
	if e == nil || owner != exp.Owner {
		return types.ErrorType, nil
	}
	return a.resolveVarEntry(e, owner)
}

// moduleFromStorage builds the export table of a module or namespace scope.
// Members stay symbolic so building it resolves nothing.
func (a *Analyzer) moduleFromStorage(name types.Id, st *storage.Storage) *types.Module {
	m := &types.Module{Name: name, Types: make(map[string][]types.Type), Vars: make(map[string]types.Type)}
	for _, exportName := range st.ExportNames() {
		if exp, ok := st.LookupExport(exportName); ok {
			addExport(m, exp)
		}
	}
	return m
}

func (a *Analyzer) namespaceModule(id types.Id, decls []*ast.NamespaceDeclaration, owner *storage.Storage) *types.Module {
	m := &types.Module{Name: id, Types: make(map[string][]types.Type), Vars: make(map[string]types.Type)}
	for _, n := range decls {
		ns, ok := owner.ByMark(n.ScopeMark)
		if !ok || ns == owner {
			continue
		}
		for _, exp := range ns.Exports() {
			addExport(m, exp)
		}
	}
	return m
}

func addExport(m *types.Module, exp storage.Export) {
	if e, ok := exp.Owner.LookupLocal(exp.Id); ok && len(e.Decls) > 0 && !onlyValueImport(e) {
		m.Types[exp.Name] = append(m.Types[exp.Name], &types.Ref{Name: exp.Id})
	}
	if e, owner := exp.Owner.LookupVar(exp.Id); e != nil && owner == exp.Owner {
		m.Vars[exp.Name] = &types.Query{Name: exp.Id}
	}
}

// onlyValueImport reports an import entry whose resolution found no type.
func onlyValueImport(e *storage.Entry) bool {
	return e.State == storage.StateResolved && len(e.Types) == 0
}
