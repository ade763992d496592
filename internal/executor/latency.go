package executor

import (
	"context"

	"github.com/ocrbench/ocrbench/internal/config"
	"github.com/ocrbench/ocrbench/internal/metrics"
)

// Latency measures unloaded per-request latency: targets are iterated one
// at a time, each repeated runs_per_target times in strict sequence, with
// concurrency fixed at one. Issuance order equals completion order.
type Latency struct {
	env *Env
}

// Mode returns the discipline this executor implements.
func (e *Latency) Mode() config.Mode {
	return config.ModeLatency
}

// Run drives the serial workload.
func (e *Latency) Run(ctx context.Context) error {
	env := e.env

	for i := range env.Targets {
		target := &env.Targets[i]
		env.logf("[%d/%d] Testing %s...", i+1, len(env.Targets), target.Name)

		for run := 0; run < env.Scenario.RunsPerTarget; run++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			outcome := env.execute(ctx, env.NextSeq(), target, run, 0)
			env.Collector.Append(outcome)

			if outcome.Status == metrics.StatusSuccess {
				env.logf("  Run %d: %.2fms, %d chars", run+1, outcome.Latency.Seconds()*1000, outcome.CharCount)
			} else {
				env.logf("  Run %d: %s", run+1, outcome.ErrorMsg)
			}
		}
	}
	return nil
}
