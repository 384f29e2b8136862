package analyzer

import (
	"github.com/pkg/errors"

	"github.com/devgony/stc/pkg/types"
)

var (
	// ErrDepthExceeded aborts a resolution path that nested deeper than
	// Config.MaxDepth.
	ErrDepthExceeded = errors.New("analyzer: resolution depth exceeded")
	// ErrInvariant reports an internal inconsistency of the engine.
	ErrInvariant = errors.New("analyzer: invariant violated")
	// ErrModuleNotFound is returned by loaders for unknown specifiers.
	ErrModuleNotFound = errors.New("analyzer: module not found")
)

// cycleError signals that id is already being resolved further up the
// current resolution chain. It never escapes the package.
type cycleError struct {
	id types.Id
}

func (e *cycleError) Error() string {
	return "analyzer: " + e.id.String() + " is being resolved"
}

func asCycle(err error) (*cycleError, bool) {
	var c *cycleError
	if errors.As(err, &c) {
		return c, true
	}
	return nil, false
}
