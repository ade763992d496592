package executor

import "context"

// Gate is a counting admission control of fixed width. Starting a request
// requires a free slot; the slot is returned only after the request fully
// completes, never on cancellation without completion.
type Gate struct {
	slots chan struct{}
}

// NewGate creates a gate admitting at most width concurrent holders.
func NewGate(width int) *Gate {
	if width < 1 {
		width = 1
	}
	return &Gate{slots: make(chan struct{}, width)}
}

// Acquire blocks until a slot is free or the context is done. A done
// context always fails, even when a slot is free.
func (g *Gate) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case g.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot. Must be called exactly once per successful
// Acquire.
func (g *Gate) Release() {
	<-g.slots
}

// Width returns the gate's capacity.
func (g *Gate) Width() int {
	return cap(g.slots)
}

// InFlight returns the number of currently held slots.
func (g *Gate) InFlight() int {
	return len(g.slots)
}
