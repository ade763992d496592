package executor

import (
	"context"
	"time"

	"github.com/ocrbench/ocrbench/internal/config"
)

// defaultStabilityDuration applies when the scenario leaves the run
// duration unset or non-positive.
const defaultStabilityDuration = 600 * time.Second

// Stability sustains a single fixed concurrency level against the target
// set, round-robin, until a wall-clock deadline. There are no stage
// boundaries; degradation shows up in the timeline.
type Stability struct {
	env *Env
}

// Mode returns the discipline this executor implements.
func (e *Stability) Mode() config.Mode {
	return config.ModeStability
}

// Run drives the fixed-duration workload.
func (e *Stability) Run(ctx context.Context) error {
	env := e.env

	duration := env.Scenario.Duration()
	if duration <= 0 {
		duration = defaultStabilityDuration
	}

	workers := env.Scenario.Concurrency
	env.logf("Running %d workers for %s", workers, duration)

	gate := NewGate(workers)
	cycle := NewCycle(env.Targets)
	runDeadlineWorkers(ctx, env, gate, cycle, workers, time.Now().Add(duration), 0)

	env.logf("Completed: %d requests", env.Collector.Len())
	return ctx.Err()
}
