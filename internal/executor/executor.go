// Package executor realizes the benchmark workload disciplines: serial
// latency runs, gate-bounded throughput runs, staged stress ramps,
// fixed-duration stability runs, and staged capacity sweeps.
//
// Every executor drives requests against a fixed, read-only target set and
// feeds each completed outcome into the metrics collector before returning.
// Individual request failures are recorded as data and never abort a run.
package executor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ocrbench/ocrbench/internal/client"
	"github.com/ocrbench/ocrbench/internal/config"
	"github.com/ocrbench/ocrbench/internal/loader"
	"github.com/ocrbench/ocrbench/internal/metrics"
)

// Sender issues one request with a pre-encoded body. *client.Client
// implements it; tests substitute fakes.
type Sender interface {
	Send(ctx context.Context, body []byte) *client.Result
}

// Executor runs one workload discipline to completion.
type Executor interface {
	// Mode returns the discipline this executor implements.
	Mode() config.Mode

	// Run drives the workload and blocks until every completed request has
	// reached the collector. Cancellation of ctx stops admission of new
	// requests; in-flight requests are allowed to finish.
	Run(ctx context.Context) error
}

// Env is the shared environment an executor operates in.
type Env struct {
	Scenario  config.ScenarioConfig
	Targets   []loader.Target
	Client    Sender
	Collector *metrics.Collector

	// Logf, when set, receives human-readable progress lines.
	Logf func(format string, args ...any)

	seq atomic.Int64
}

// NextSeq returns the next outcome sequence number. Numbers are unique,
// monotone, and never reused across the whole run.
func (e *Env) NextSeq() int64 {
	return e.seq.Add(1) - 1
}

func (e *Env) logf(format string, args ...any) {
	if e.Logf != nil {
		e.Logf(format, args...)
	}
}

// execute performs one request against a target and shapes the outcome.
// The outcome's timing brackets the full round trip so completion time is
// never before issue time.
func (e *Env) execute(ctx context.Context, seq int64, target *loader.Target, runIndex, stage int) metrics.Outcome {
	start := time.Now()
	result := e.Client.Send(ctx, target.Payload)
	end := time.Now()

	return metrics.Outcome{
		Seq:       seq,
		Target:    target.Name,
		RunIndex:  runIndex,
		Start:     start,
		End:       end,
		Latency:   end.Sub(start),
		Status:    result.Status,
		HTTPCode:  result.StatusCode,
		ErrorMsg:  result.ErrorMsg,
		Category:  result.Category,
		CharCount: result.CharCount,
		PageCount: result.PageCount,
		Text:      result.Text,
		Stage:     stage,
	}
}

// task is one scheduled repetition of one target.
type task struct {
	seq      int64
	target   *loader.Target
	runIndex int
}

// buildTasks enumerates every repetition of every target in repetition-major
// order and assigns sequence numbers up front.
func (e *Env) buildTasks() []task {
	tasks := make([]task, 0, e.Scenario.RunsPerTarget*len(e.Targets))
	for run := 0; run < e.Scenario.RunsPerTarget; run++ {
		for i := range e.Targets {
			tasks = append(tasks, task{
				seq:      e.NextSeq(),
				target:   &e.Targets[i],
				runIndex: run,
			})
		}
	}
	return tasks
}

// New creates the executor for a mode. Precondition violations — an empty
// target list or invalid concurrency bounds — are reported here, before any
// request is issued.
func New(mode config.Mode, env *Env) (Executor, error) {
	if len(env.Targets) == 0 {
		return nil, fmt.Errorf("executor: target list is empty")
	}
	if env.Scenario.Concurrency < 1 {
		return nil, fmt.Errorf("executor: concurrency must be >= 1, got %d", env.Scenario.Concurrency)
	}
	if env.Scenario.RunsPerTarget < 1 {
		return nil, fmt.Errorf("executor: runs_per_target must be >= 1, got %d", env.Scenario.RunsPerTarget)
	}

	switch mode {
	case config.ModeLatency:
		return &Latency{env: env}, nil
	case config.ModeThroughput:
		return &Throughput{env: env}, nil
	case config.ModeStress, config.ModeCapacity:
		if env.Scenario.MaxConcurrency < env.Scenario.Concurrency {
			return nil, fmt.Errorf("executor: max_concurrency %d below starting concurrency %d",
				env.Scenario.MaxConcurrency, env.Scenario.Concurrency)
		}
		if mode == config.ModeStress {
			return &Stress{env: env}, nil
		}
		return &Capacity{env: env}, nil
	case config.ModeStability:
		return &Stability{env: env}, nil
	default:
		return nil, fmt.Errorf("executor: unknown mode %q", mode)
	}
}
