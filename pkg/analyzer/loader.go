package analyzer

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/devgony/stc/pkg/storage"
)

// Loader resolves an import specifier to the finalized storage of the target
// module. Implementations return ErrModuleNotFound for unknown specifiers.
type Loader interface {
	Resolve(specifier, fromPath string) (*storage.Storage, error)
}

// NoopLoader never finds a module. Imports then resolve to undeclared names.
type NoopLoader struct{}

func (NoopLoader) Resolve(specifier, _ string) (*storage.Storage, error) {
	return nil, errors.Wrapf(ErrModuleNotFound, "%q", specifier)
}

// MapLoader serves pre-built storages keyed by specifier.
type MapLoader struct {
	mu      sync.RWMutex
	modules map[string]*storage.Storage
}

func NewMapLoader() *MapLoader {
	return &MapLoader{modules: make(map[string]*storage.Storage)}
}

// Add registers a storage. It is frozen so importers only ever read it.
func (l *MapLoader) Add(specifier string, s *storage.Storage) {
	s.Freeze()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.modules[specifier] = s
}

func (l *MapLoader) Resolve(specifier, _ string) (*storage.Storage, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if s, ok := l.modules[specifier]; ok {
		return s, nil
	}
	return nil, errors.Wrapf(ErrModuleNotFound, "%q", specifier)
}
