package storage

import (
	"sort"

	"github.com/devgony/stc/pkg/types"
)

// Export binds an exported name to the id it denotes and the storage that
// owns that id. Re-exports point at another module's storage.
type Export struct {
	Name  string
	Id    types.Id
	Owner *Storage
}

// Export records a local binding under the exported name.
func (s *Storage) Export(name string, id types.Id) {
	s.ExportFrom(name, id, s)
}

// ExportFrom records a binding owned by another storage.
func (s *Storage) ExportFrom(name string, id types.Id, owner *Storage) {
	s.mustMutate()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exports[name]; !ok {
		s.order = append(s.order, name)
	}
	s.exports[name] = Export{Name: name, Id: id, Owner: owner}
}

// ExportAll re-exports every export of from (`export * from`).
func (s *Storage) ExportAll(from *Storage) {
	s.mustMutate()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stars = append(s.stars, from)
}

// LookupExport finds an exported name, consulting star re-exports last.
func (s *Storage) LookupExport(name string) (Export, bool) {
	return s.lookupExport(name, map[*Storage]bool{})
}

func (s *Storage) lookupExport(name string, seen map[*Storage]bool) (Export, bool) {
	if seen[s] {
		return Export{}, false
	}
	seen[s] = true
	s.mu.RLock()
	exp, ok := s.exports[name]
	stars := append([]*Storage(nil), s.stars...)
	s.mu.RUnlock()
	if ok {
		return exp, true
	}
	for _, star := range stars {
		if exp, ok := star.lookupExport(name, seen); ok && name != "default" {
			return exp, true
		}
	}
	return Export{}, false
}

// Exports returns the directly exported names in declaration order.
func (s *Storage) Exports() []Export {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Export, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.exports[name])
	}
	return out
}

// ExportNames returns every exported name including star re-exports, sorted.
func (s *Storage) ExportNames() []string {
	names := map[string]bool{}
	s.collectExportNames(names, map[*Storage]bool{}, true)
	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *Storage) collectExportNames(names map[string]bool, seen map[*Storage]bool, top bool) {
	if seen[s] {
		return
	}
	seen[s] = true
	s.mu.RLock()
	for name := range s.exports {
		if top || name != "default" {
			names[name] = true
		}
	}
	stars := append([]*Storage(nil), s.stars...)
	s.mu.RUnlock()
	for _, star := range stars {
		star.collectExportNames(names, seen, false)
	}
}
