package metrics

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func successOutcome(target string, latency time.Duration, chars int) Outcome {
	return Outcome{
		Target:    target,
		Status:    StatusSuccess,
		Category:  CategoryNone,
		Latency:   latency,
		CharCount: chars,
	}
}

func TestComputeEmptyLog(t *testing.T) {
	c := NewCollector("empty")
	s := c.Compute(nil, nil)

	assert.Equal(t, "empty", s.TestName)
	assert.Zero(t, s.Throughput.TotalRequests)
	assert.Zero(t, s.Latency.P99)
	assert.Zero(t, s.OCR.TotalChars)
	assert.Nil(t, s.OCR.Accuracy)
	assert.Empty(t, s.PerTarget)
	assert.Empty(t, s.Timeline)
	assert.Nil(t, s.StagedResults)
}

func TestComputePercentileOrdering(t *testing.T) {
	c := NewCollector("percentiles")
	for i := 1; i <= 200; i++ {
		c.Append(successOutcome("t", time.Duration(i)*time.Millisecond, 10))
	}

	l := c.Compute(nil, nil).Latency
	assert.LessOrEqual(t, l.Min, l.P50)
	assert.LessOrEqual(t, l.P50, l.P90)
	assert.LessOrEqual(t, l.P90, l.P95)
	assert.LessOrEqual(t, l.P95, l.P99)
	assert.LessOrEqual(t, l.P99, l.P999)
	assert.LessOrEqual(t, l.P999, l.Max)
	assert.LessOrEqual(t, l.Min, l.Mean)
	assert.LessOrEqual(t, l.Mean, l.Max)
	assert.Equal(t, l.P50, l.Median)
}

func TestComputeIsPure(t *testing.T) {
	c := NewCollector("pure")
	c.Append(successOutcome("a", 12*time.Millisecond, 5))
	c.Append(Outcome{Target: "b", Status: StatusError, Category: CategoryHTTP5xx, Latency: 40 * time.Millisecond})
	c.Append(Outcome{Target: "c", Status: StatusTimeout, Category: CategoryTimeout, Latency: time.Second})

	first := c.Compute(nil, nil)
	second := c.Compute(nil, nil)
	assert.True(t, reflect.DeepEqual(first, second), "repeated Compute must be identical")
}

func TestComputeFixesWindowEnd(t *testing.T) {
	c := NewCollector("window")
	c.Append(successOutcome("a", time.Millisecond, 1))

	first := c.Compute(nil, nil)
	time.Sleep(15 * time.Millisecond)
	second := c.Compute(nil, nil)
	assert.Equal(t, first.DurationMs, second.DurationMs)
}

func TestThroughputStatusCounts(t *testing.T) {
	c := NewCollector("counts")
	c.Append(successOutcome("a", time.Millisecond, 1))
	c.Append(successOutcome("a", time.Millisecond, 1))
	c.Append(Outcome{Target: "b", Status: StatusTimeout, Category: CategoryTimeout})
	c.Append(Outcome{Target: "c", Status: StatusError, Category: CategoryConnection})
	c.Append(Outcome{Target: "d", Status: StatusCancelled, Category: CategoryTimeout})

	tp := c.Compute(nil, nil).Throughput
	assert.Equal(t, 5, tp.TotalRequests)
	assert.Equal(t, 2, tp.SuccessfulRequests)
	assert.Equal(t, 1, tp.TimeoutRequests)
	assert.Equal(t, 2, tp.FailedRequests)
	assert.Equal(t, tp.TotalRequests, tp.SuccessfulRequests+tp.TimeoutRequests+tp.FailedRequests)
	assert.Equal(t, 40.0, tp.SuccessRate)
}

func TestErrorBreakdownSumsToTotal(t *testing.T) {
	c := NewCollector("breakdown")
	c.Append(successOutcome("a", time.Millisecond, 1))
	c.Append(Outcome{Target: "b", Status: StatusError, Category: CategoryHTTP4xx})
	c.Append(Outcome{Target: "b", Status: StatusError, Category: CategoryHTTP4xx})
	c.Append(Outcome{Target: "c", Status: StatusError, Category: CategoryValidation})
	c.Append(Outcome{Target: "d", Status: StatusTimeout, Category: CategoryTimeout})

	e := c.Compute(nil, nil).Errors
	total := 0
	for _, n := range e.Breakdown {
		total += n
	}
	assert.Equal(t, 5, total)
	assert.Equal(t, 2, e.Breakdown[CategoryHTTP4xx])
	assert.Equal(t, 1, e.Breakdown[CategoryNone])
	assert.Equal(t, 60.0, e.ErrorRate)
	assert.Equal(t, 20.0, e.TimeoutRate)
}

func TestAccuracyScoresFirstSuccessPerTarget(t *testing.T) {
	c := NewCollector("accuracy")
	first := successOutcome("a.png", time.Millisecond, 5)
	first.Text = "first"
	second := successOutcome("a.png", time.Millisecond, 6)
	second.Text = "second"
	other := successOutcome("b.png", time.Millisecond, 4)
	other.Text = "other"
	unmatched := successOutcome("c.png", time.Millisecond, 3)
	unmatched.Text = "ignored"
	c.Append(first)
	c.Append(second)
	c.Append(other)
	c.Append(unmatched)

	var scored []string
	scorer := func(predicted, reference string) float64 {
		scored = append(scored, predicted)
		if predicted == reference {
			return 100
		}
		return 0
	}
	reference := map[string]string{"a.png": "first", "b.png": "nope"}

	s := c.Compute(reference, scorer)
	require.NotNil(t, s.OCR.Accuracy)
	// a.png scores 100 on its first success, b.png scores 0: average 50.
	assert.Equal(t, 50.0, *s.OCR.Accuracy)
	assert.Equal(t, []string{"first", "other"}, scored)
}

func TestAccuracyNilWhenNothingMatches(t *testing.T) {
	c := NewCollector("accuracy-none")
	c.Append(successOutcome("a.png", time.Millisecond, 5))

	s := c.Compute(map[string]string{"z.png": "text"}, func(p, r string) float64 { return 100 })
	assert.Nil(t, s.OCR.Accuracy)

	s = c.Compute(nil, func(p, r string) float64 { return 100 })
	assert.Nil(t, s.OCR.Accuracy)
}

func TestPerTargetAllFailed(t *testing.T) {
	c := NewCollector("per-target")
	c.Append(successOutcome("good", 10*time.Millisecond, 7))
	c.Append(successOutcome("good", 30*time.Millisecond, 7))
	c.Append(Outcome{Target: "bad", Status: StatusError, Category: CategoryHTTP5xx})

	per := c.Compute(nil, nil).PerTarget
	require.Contains(t, per, "good")
	require.Contains(t, per, "bad")

	good := per["good"]
	assert.Equal(t, 2, good.TotalRuns)
	assert.Equal(t, 2, good.SuccessfulRuns)
	assert.False(t, good.AllFailed)
	assert.InDelta(t, 20.0, good.AvgLatencyMs, 0.01)
	assert.Equal(t, 7, good.CharCount)

	bad := per["bad"]
	assert.Equal(t, 1, bad.TotalRuns)
	assert.Zero(t, bad.SuccessfulRuns)
	assert.True(t, bad.AllFailed)
}

func TestTimelineSortedByTimestamp(t *testing.T) {
	c := NewCollector("timeline")
	base := time.Now()
	for _, offset := range []time.Duration{30, 10, 20} {
		o := successOutcome("t", time.Millisecond, 1)
		o.Start = base.Add(offset * time.Millisecond)
		c.Append(o)
	}

	timeline := c.Compute(nil, nil).Timeline
	require.Len(t, timeline, 3)
	for i := 1; i < len(timeline); i++ {
		assert.False(t, timeline[i].Timestamp.Before(timeline[i-1].Timestamp))
	}
}

func TestComputeStageStats(t *testing.T) {
	start := time.Now()
	end := start.Add(2 * time.Second)

	outcomes := []Outcome{
		successOutcome("a", 10*time.Millisecond, 1),
		successOutcome("a", 20*time.Millisecond, 1),
		{Target: "b", Status: StatusError, Category: CategoryHTTP5xx},
		{Target: "b", Status: StatusTimeout, Category: CategoryTimeout},
	}

	r := ComputeStageStats(outcomes, start, end, 4)
	assert.Equal(t, 4, r.Concurrency)
	assert.Equal(t, 4, r.TotalRequests)
	assert.Equal(t, 2, r.SuccessfulRequests)
	assert.Equal(t, 2.0, r.DurationSeconds)
	assert.Equal(t, 2.0, r.QPS)
	assert.Equal(t, 1.0, r.SuccessQPS)
	assert.Equal(t, 50.0, r.SuccessRate)
	assert.LessOrEqual(t, r.P95Ms, r.P99Ms)
}

func TestComputeStageStatsDegenerate(t *testing.T) {
	now := time.Now()

	// Zero-length window must not produce infinite rates.
	r := ComputeStageStats(nil, now, now, 1)
	assert.Zero(t, r.TotalRequests)
	assert.Zero(t, r.SuccessRate)
	assert.False(t, r.QPS != r.QPS, "QPS must not be NaN")
}
