package executor

import (
	"context"
	"sync"

	"github.com/ocrbench/ocrbench/internal/config"
)

// Throughput builds the full task list up front and admits tasks through a
// concurrency gate of fixed width. Start order follows gate-arrival order;
// completion order is unconstrained.
type Throughput struct {
	env *Env
}

// Mode returns the discipline this executor implements.
func (e *Throughput) Mode() config.Mode {
	return config.ModeThroughput
}

// Run admits every task through the gate and waits for all to complete.
func (e *Throughput) Run(ctx context.Context) error {
	env := e.env
	tasks := env.buildTasks()
	env.logf("Total tasks: %d", len(tasks))

	gate := NewGate(env.Scenario.Concurrency)
	err := runTaskList(ctx, env, gate, tasks, 0)
	return err
}

// runTaskList pushes a fixed task list through the gate. The admission loop
// stops when the context is cancelled; requests already admitted run to
// completion and their outcomes are recorded. Shared by the throughput mode
// and the single-pass stages of ramp-type modes.
func runTaskList(ctx context.Context, env *Env, gate *Gate, tasks []task, stage int) error {
	var wg sync.WaitGroup

	var admissionErr error
	for _, t := range tasks {
		if err := gate.Acquire(ctx); err != nil {
			admissionErr = err
			break
		}

		wg.Add(1)
		go func(t task) {
			defer wg.Done()
			outcome := env.execute(ctx, t.seq, t.target, t.runIndex, stage)
			env.Collector.Append(outcome)
			gate.Release()
		}(t)
	}

	wg.Wait()
	return admissionErr
}
