package metrics

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorAppendOrder(t *testing.T) {
	c := NewCollector("order")
	for i := 0; i < 5; i++ {
		c.Append(Outcome{Seq: int64(i), Target: fmt.Sprintf("t%d", i)})
	}

	outcomes := c.Outcomes()
	require.Len(t, outcomes, 5)
	for i, o := range outcomes {
		assert.Equal(t, int64(i), o.Seq)
	}
}

func TestCollectorConcurrentAppends(t *testing.T) {
	c := NewCollector("concurrent")

	const goroutines = 50
	const perGoroutine = 20

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				c.Append(Outcome{Seq: int64(g*perGoroutine + i), Status: StatusSuccess})
			}
		}(g)
	}
	wg.Wait()

	require.Equal(t, goroutines*perGoroutine, c.Len())

	// No outcome lost or duplicated.
	seen := map[int64]bool{}
	for _, o := range c.Outcomes() {
		assert.False(t, seen[o.Seq], "duplicate seq %d", o.Seq)
		seen[o.Seq] = true
	}
	assert.Len(t, seen, goroutines*perGoroutine)
}

func TestFinalizeIdempotent(t *testing.T) {
	c := NewCollector("finalize")
	c.Append(Outcome{Status: StatusSuccess})

	c.Finalize()
	first := c.EndTime()
	require.False(t, first.IsZero())

	time.Sleep(10 * time.Millisecond)
	c.Finalize()
	assert.Equal(t, first, c.EndTime())
}

func TestStagedResultsNilVersusEmpty(t *testing.T) {
	c := NewCollector("staged")
	assert.Nil(t, c.StagedResults(), "no ramp ran")

	c.SetStagedResults(nil)
	got := c.StagedResults()
	require.NotNil(t, got, "ramp ran but closed no stages")
	assert.Empty(t, got)

	c.AppendStageResult(StageResult{Concurrency: 2})
	c.AppendStageResult(StageResult{Concurrency: 4})
	got = c.StagedResults()
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Concurrency)
	assert.Equal(t, 4, got[1].Concurrency)
}

func TestStageOutcomesFilter(t *testing.T) {
	c := NewCollector("stages")
	c.Append(Outcome{Seq: 0, Stage: 2})
	c.Append(Outcome{Seq: 1, Stage: 4})
	c.Append(Outcome{Seq: 2, Stage: 2})
	c.Append(Outcome{Seq: 3})

	stage2 := c.StageOutcomes(2)
	require.Len(t, stage2, 2)
	assert.Equal(t, int64(0), stage2[0].Seq)
	assert.Equal(t, int64(2), stage2[1].Seq)

	assert.Len(t, c.StageOutcomes(4), 1)
	assert.Empty(t, c.StageOutcomes(8))
}

func TestSummaryLine(t *testing.T) {
	c := NewCollector("synopsis")
	c.Append(Outcome{Status: StatusSuccess, Latency: 20 * time.Millisecond})
	c.Finalize()

	line := c.SummaryLine()
	assert.Contains(t, line, "Test: synopsis")
	assert.Contains(t, line, "Total Requests: 1")
	assert.Contains(t, line, "Success Rate: 100.00%")
}
