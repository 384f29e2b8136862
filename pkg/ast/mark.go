package ast

import (
	"strconv"
	"sync"
	"sync/atomic"
)

// Mark is an opaque hygienic scope marker. Two identifiers with the same name
// but different marks denote distinct bindings.
type Mark uint32

// NoMark is carried by identifiers that have not been through the hygiene pass.
const NoMark Mark = 0

var (
	markCounter atomic.Uint32
	markParents sync.Map // Mark -> Mark
)

// NewMark mints a fresh root mark.
func NewMark() Mark {
	return Mark(markCounter.Add(1))
}

// NewMarkWithParent mints a fresh mark derived from parent.
func NewMarkWithParent(parent Mark) Mark {
	m := NewMark()
	if parent != NoMark {
		markParents.Store(m, parent)
	}
	return m
}

// Parent returns the mark this one was derived from, or NoMark for roots.
func (m Mark) Parent() Mark {
	if v, ok := markParents.Load(m); ok {
		return v.(Mark)
	}
	return NoMark
}

// IsDescendantOf reports whether m was derived, directly or transitively, from ancestor.
func (m Mark) IsDescendantOf(ancestor Mark) bool {
	for cur := m; cur != NoMark; cur = cur.Parent() {
		if cur == ancestor {
			return true
		}
	}
	return false
}

func (m Mark) String() string {
	return "#" + strconv.FormatUint(uint64(m), 10)
}
