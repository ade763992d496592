package executor

import (
	"context"

	"github.com/ocrbench/ocrbench/internal/config"
)

// Capacity sweeps the same concurrency progression as Stress but always
// runs exactly one full pass per level, producing comparable per-stage
// statistics for picking an operating point.
type Capacity struct {
	env *Env
}

// Mode returns the discipline this executor implements.
func (e *Capacity) Mode() config.Mode {
	return config.ModeCapacity
}

// Run executes one single-pass stage per concurrency level.
func (e *Capacity) Run(ctx context.Context) error {
	return runStages(ctx, e.env, 0)
}
