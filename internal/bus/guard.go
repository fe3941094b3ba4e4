package bus

import (
	"bondflow/pkg/exception"

	"github.com/yanun0323/errors"
)

// DefaultMaxDepth bounds how deep synchronous notifications may nest.
const DefaultMaxDepth = 32

// Guard tracks the nesting depth of notifications across every store that
// shares it. A nil Guard never trips.
type Guard struct {
	max   int
	depth int
}

func NewGuard(max int) *Guard {
	if max <= 0 {
		max = DefaultMaxDepth
	}
	return &Guard{max: max}
}

func (g *Guard) enter(store string) error {
	if g == nil {
		return nil
	}
	if g.depth >= g.max {
		return errors.Wrapf(exception.ErrCallDepthExceeded, "store: %s, depth: %d", store, g.depth)
	}
	g.depth++
	return nil
}

func (g *Guard) leave() {
	if g == nil {
		return
	}
	g.depth--
}

// Depth is the current nesting depth.
func (g *Guard) Depth() int {
	if g == nil {
		return 0
	}
	return g.depth
}
