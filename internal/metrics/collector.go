package metrics

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Collector accumulates request outcomes in append order.
//
// Append is safe for concurrent use; all other mutation happens on the
// single control goroutine that drives a benchmark mode. Statistics are
// computed on demand by Compute and never cached.
type Collector struct {
	testName  string
	startTime time.Time

	mu       sync.Mutex
	outcomes []Outcome

	endTime   time.Time
	finalized bool

	// staged is nil unless a ramp-type mode attached stage results.
	staged []StageResult
}

// NewCollector creates a collector whose measurement window starts now.
func NewCollector(testName string) *Collector {
	return &Collector{
		testName:  testName,
		startTime: time.Now(),
	}
}

// TestName returns the name the collector was created with.
func (c *Collector) TestName() string {
	return c.testName
}

// StartTime returns the start of the measurement window.
func (c *Collector) StartTime() time.Time {
	return c.startTime
}

// Append records one outcome. Concurrent appends are serialized so none are
// lost or duplicated.
func (c *Collector) Append(o Outcome) {
	c.mu.Lock()
	c.outcomes = append(c.outcomes, o)
	c.mu.Unlock()
}

// Finalize fixes the end of the measurement window. Calls after the first
// are no-ops so later duration computations always use the first end time.
func (c *Collector) Finalize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finalized {
		return
	}
	c.endTime = time.Now()
	c.finalized = true
}

// EndTime returns the fixed end of the measurement window, or the zero time
// if Finalize has not been called.
func (c *Collector) EndTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endTime
}

// Len returns the number of recorded outcomes.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.outcomes)
}

// Outcomes returns a copy of the outcome log in append order.
func (c *Collector) Outcomes() []Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Outcome, len(c.outcomes))
	copy(out, c.outcomes)
	return out
}

// StageOutcomes returns the outcomes tagged with the given stage
// concurrency, in append order.
func (c *Collector) StageOutcomes(stage int) []Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Outcome
	for _, o := range c.outcomes {
		if o.Stage == stage {
			out = append(out, o)
		}
	}
	return out
}

// SetStagedResults marks the run as staged. A ramp-type mode calls this
// before its first stage so an empty stage list is distinguishable from
// "not applicable".
func (c *Collector) SetStagedResults(results []StageResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if results == nil {
		results = []StageResult{}
	}
	c.staged = results
}

// AppendStageResult appends one closed stage's statistics in execution order.
func (c *Collector) AppendStageResult(r StageResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged = append(c.staged, r)
}

// StagedResults returns the staged results, or nil when not applicable.
func (c *Collector) StagedResults() []StageResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staged == nil {
		return nil
	}
	out := make([]StageResult, len(c.staged))
	copy(out, c.staged)
	return out
}

// SummaryLine returns a short human-readable synopsis of the run so far.
func (c *Collector) SummaryLine() string {
	s := c.Compute(nil, nil)

	var b strings.Builder
	fmt.Fprintf(&b, "Test: %s\n", s.TestName)
	fmt.Fprintf(&b, "Duration: %.2f ms\n", s.Throughput.TotalDurationMs)
	fmt.Fprintf(&b, "Total Requests: %d\n", s.Throughput.TotalRequests)
	fmt.Fprintf(&b, "Success Rate: %.2f%%\n", s.Throughput.SuccessRate)
	fmt.Fprintf(&b, "QPS: %.2f\n", s.Throughput.QPS)
	fmt.Fprintf(&b, "Avg Latency: %.2f ms\n", s.Latency.Mean)
	fmt.Fprintf(&b, "P99 Latency: %.2f ms", s.Latency.P99)
	return b.String()
}
