// Package source keeps the text of analysed files so diagnostics can quote
// the offending line.
package source

import (
	"sort"
	"strings"
	"sync"
)

// File is the immutable content of one source file.
type File struct {
	Path    string
	Content []byte
	lines   []int
}

func newFile(path string, content []byte) *File {
	f := &File{Path: path, Content: content, lines: []int{0}}
	for i, b := range content {
		if b == '\n' {
			f.lines = append(f.lines, i+1)
		}
	}
	return f
}

// LineCount returns the number of lines.
func (f *File) LineCount() int { return len(f.lines) }

// Line returns the 1-based line n without its terminator.
func (f *File) Line(n int) (string, bool) {
	if n < 1 || n > len(f.lines) {
		return "", false
	}
	start := f.lines[n-1]
	end := len(f.Content)
	if n < len(f.lines) {
		end = f.lines[n] - 1
	}
	return strings.TrimSuffix(string(f.Content[start:end]), "\r"), true
}

// Map is the shared source context of a run. It is safe for concurrent use.
type Map struct {
	mu    sync.RWMutex
	files map[string]*File
}

func NewMap() *Map {
	return &Map{files: make(map[string]*File)}
}

// AddFile registers path, replacing any earlier content.
func (m *Map) AddFile(path string, content []byte) *File {
	f := newFile(path, content)
	m.mu.Lock()
	m.files[path] = f
	m.mu.Unlock()
	return f
}

func (m *Map) File(path string) (*File, bool) {
	if m == nil {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[path]
	return f, ok
}

// Paths returns the registered paths in sorted order.
func (m *Map) Paths() []string {
	m.mu.RLock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	m.mu.RUnlock()
	sort.Strings(out)
	return out
}
