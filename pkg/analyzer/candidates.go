package analyzer

import (
	"iter"
	"slices"

	"github.com/devgony/stc/pkg/types"
)

// Candidates is the non-empty, memoized result of a type lookup in
// declaration-merge order. Iterating it never triggers resolution, so it can
// be walked any number of times.
type Candidates struct {
	types []types.Type
}

func newCandidates(ts []types.Type) *Candidates {
	if len(ts) == 0 {
		return nil
	}
	return &Candidates{types: ts}
}

// All yields every candidate in order.
func (c *Candidates) All() iter.Seq[types.Type] {
	return func(yield func(types.Type) bool) {
		for _, t := range c.types {
			if !yield(t) {
				return
			}
		}
	}
}

func (c *Candidates) First() types.Type { return c.types[0] }

func (c *Candidates) Len() int { return len(c.types) }

// Slice returns a copy of the candidates.
func (c *Candidates) Slice() []types.Type { return slices.Clone(c.types) }
