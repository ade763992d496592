package executor

import (
	"context"
	"sync"
	"time"

	"github.com/ocrbench/ocrbench/internal/config"
	"github.com/ocrbench/ocrbench/internal/metrics"
)

// Stress ramps concurrency from the starting level to max_concurrency in
// fixed steps, running one stage per level. With a ramp duration configured
// each stage sustains load for that wall-clock window; without one each
// stage executes exactly one full pass over the task list. Every outcome is
// tagged with its stage's concurrency level.
type Stress struct {
	env *Env
}

// Mode returns the discipline this executor implements.
func (e *Stress) Mode() config.Mode {
	return config.ModeStress
}

// Run executes the concurrency ramp.
func (e *Stress) Run(ctx context.Context) error {
	return runStages(ctx, e.env, e.env.Scenario.RampDuration())
}

// runStages executes one stage per concurrency level. Shared by the stress
// ramp and the capacity sweep (which always runs duration-less stages).
func runStages(ctx context.Context, env *Env, perStage time.Duration) error {
	step := env.Scenario.ConcurrencyStep
	if step < 1 {
		step = 1
	}

	// Mark the run as staged before the first stage so even an aborted run
	// reports "staged, nothing closed" rather than "not applicable".
	env.Collector.SetStagedResults(nil)

	cycle := NewCycle(env.Targets)
	for level := env.Scenario.Concurrency; level <= env.Scenario.MaxConcurrency; level += step {
		if err := ctx.Err(); err != nil {
			return err
		}

		stageStart := time.Now()
		gate := NewGate(level)

		var err error
		if perStage > 0 {
			runDeadlineWorkers(ctx, env, gate, cycle, level, stageStart.Add(perStage), level)
		} else {
			err = runTaskList(ctx, env, gate, env.buildTasks(), level)
		}
		stageEnd := time.Now()

		result := metrics.ComputeStageStats(env.Collector.StageOutcomes(level), stageStart, stageEnd, level)
		env.Collector.AppendStageResult(result)
		env.logf("  Concurrency %3d: QPS=%.2f, P99=%.2fms, Success=%.2f%%",
			level, result.QPS, result.P99Ms, result.SuccessRate)

		if err != nil {
			return err
		}
	}
	return nil
}

// runDeadlineWorkers runs `workers` independent loops that pick targets
// round-robin and issue gate-bound requests until the wall-clock deadline.
// The deadline is checked before each new request; requests in flight at
// the deadline finish and are recorded.
func runDeadlineWorkers(ctx context.Context, env *Env, gate *Gate, cycle *Cycle, workers int, deadline time.Time, stage int) {
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(deadline) {
				if err := gate.Acquire(ctx); err != nil {
					return
				}

				target := cycle.Next()
				outcome := env.execute(ctx, env.NextSeq(), target, 0, stage)
				env.Collector.Append(outcome)
				gate.Release()
			}
		}()
	}
	wg.Wait()
}
