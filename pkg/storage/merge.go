package storage

// MergePolicy decides whether a declaration may merge into a binding that
// already has a declaration of another (or the same) kind.
type MergePolicy interface {
	CanMerge(existing, incoming DeclKind) bool
}

// MergeTable is a symmetric table of compatible declaration kinds.
type MergeTable map[DeclKind]map[DeclKind]bool

func (t MergeTable) CanMerge(existing, incoming DeclKind) bool {
	return t[existing][incoming] || t[incoming][existing]
}

// Allow records that a and b may merge.
func (t MergeTable) Allow(a, b DeclKind) MergeTable {
	if t[a] == nil {
		t[a] = make(map[DeclKind]bool)
	}
	t[a][b] = true
	return t
}

// DefaultMergePolicy merges interfaces with interfaces and classes, function
// overloads, enums with enums, `var` redeclarations, and namespaces with any
// of those. Everything else conflicts.
func DefaultMergePolicy() MergeTable {
	t := MergeTable{}
	t.Allow(DeclInterface, DeclInterface)
	t.Allow(DeclInterface, DeclClass)
	t.Allow(DeclFunction, DeclFunction)
	t.Allow(DeclEnum, DeclEnum)
	t.Allow(DeclVar, DeclVar)
	for _, k := range []DeclKind{DeclNamespace, DeclInterface, DeclClass, DeclFunction, DeclEnum} {
		t.Allow(DeclNamespace, k)
	}
	return t
}

// StrictMergePolicy rejects every merge. Useful for languages without
// declaration merging.
func StrictMergePolicy() MergeTable {
	return MergeTable{}
}
