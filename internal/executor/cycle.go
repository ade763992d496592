package executor

import (
	"sync/atomic"

	"github.com/ocrbench/ocrbench/internal/loader"
)

// Cycle is an infinite, restartable round-robin sequence over a target
// list. Advancement is a single atomic increment so independent workers can
// consume it concurrently; two workers observing the same target at the
// same instant is acceptable.
type Cycle struct {
	targets []loader.Target
	next    atomic.Uint64
}

// NewCycle creates a cycle over the given targets. The slice is shared, not
// copied; targets are read-only by contract.
func NewCycle(targets []loader.Target) *Cycle {
	return &Cycle{targets: targets}
}

// Next returns the next target in round-robin order, wrapping without
// bound.
func (c *Cycle) Next() *loader.Target {
	i := c.next.Add(1) - 1
	return &c.targets[i%uint64(len(c.targets))]
}

// Reset restarts the cycle at the first target.
func (c *Cycle) Reset() {
	c.next.Store(0)
}
