package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram bounds: 1 microsecond to 1 hour, 3 significant figures.
// Matches the range the latency engine in lunge-style tooling uses.
const (
	histMinMicros = 1
	histMaxMicros = 3600000000
	histSigFigs   = 3
)

// Scorer compares predicted text against reference text and returns a
// similarity score in [0, 100]. It is invoked once per matched target.
type Scorer func(predicted, reference string) float64

// Compute derives a full statistics summary from the outcome log.
//
// It is a pure function of the outcomes, the reference mapping, and the
// measurement window: repeated calls without new appends yield identical
// results. Accuracy is computed only when both a reference mapping and a
// scorer are supplied. If the collector has not been finalized yet, the
// first call fixes the window end.
func (c *Collector) Compute(reference map[string]string, scorer Scorer) *Summary {
	c.Finalize()

	c.mu.Lock()
	outcomes := make([]Outcome, len(c.outcomes))
	copy(outcomes, c.outcomes)
	start, end := c.startTime, c.endTime
	staged := c.staged
	c.mu.Unlock()

	s := &Summary{
		TestName:   c.testName,
		StartTime:  start,
		EndTime:    end,
		DurationMs: round2(end.Sub(start).Seconds() * 1000),
		Errors:     ErrorStats{Breakdown: map[Category]int{}},
		PerTarget:  map[string]TargetStats{},
		Timeline:   []TimelinePoint{},
	}
	if staged != nil {
		s.StagedResults = make([]StageResult, len(staged))
		copy(s.StagedResults, staged)
	}
	if len(outcomes) == 0 {
		return s
	}

	s.Latency = computeLatencyStats(outcomes)
	s.Throughput = computeThroughputStats(outcomes, end.Sub(start))
	s.OCR = computeOCRStats(outcomes, end.Sub(start), reference, scorer)
	s.Errors = computeErrorStats(outcomes)
	s.PerTarget = computePerTargetStats(outcomes)
	s.Timeline = computeTimeline(outcomes, start)
	return s
}

func successes(outcomes []Outcome) []Outcome {
	var ok []Outcome
	for _, o := range outcomes {
		if o.Status == StatusSuccess {
			ok = append(ok, o)
		}
	}
	return ok
}

// latencyHistogram builds a fresh HDR histogram over the given outcomes.
// A new histogram per computation keeps Compute side-effect free.
func latencyHistogram(outcomes []Outcome) *hdrhistogram.Histogram {
	hist := hdrhistogram.New(histMinMicros, histMaxMicros, histSigFigs)
	for _, o := range outcomes {
		micros := o.Latency.Microseconds()
		if micros < histMinMicros {
			micros = histMinMicros
		}
		if micros > histMaxMicros {
			micros = histMaxMicros
		}
		_ = hist.RecordValue(micros)
	}
	return hist
}

func computeLatencyStats(outcomes []Outcome) LatencyStats {
	ok := successes(outcomes)
	if len(ok) == 0 {
		return LatencyStats{}
	}

	hist := latencyHistogram(ok)
	return LatencyStats{
		Min:    microsToMs(hist.Min()),
		Max:    microsToMs(hist.Max()),
		Mean:   round2(hist.Mean() / 1000),
		Median: microsToMs(hist.ValueAtQuantile(50)),
		Std:    round2(hist.StdDev() / 1000),
		P50:    microsToMs(hist.ValueAtQuantile(50)),
		P90:    microsToMs(hist.ValueAtQuantile(90)),
		P95:    microsToMs(hist.ValueAtQuantile(95)),
		P99:    microsToMs(hist.ValueAtQuantile(99)),
		P999:   microsToMs(hist.ValueAtQuantile(99.9)),
	}
}

func computeThroughputStats(outcomes []Outcome, window time.Duration) ThroughputStats {
	stats := ThroughputStats{
		TotalRequests:   len(outcomes),
		TotalDurationMs: round2(window.Seconds() * 1000),
	}
	for _, o := range outcomes {
		switch o.Status {
		case StatusSuccess:
			stats.SuccessfulRequests++
		case StatusTimeout:
			stats.TimeoutRequests++
		default:
			stats.FailedRequests++
		}
	}
	if stats.TotalDurationMs > 0 {
		stats.QPS = round2(float64(stats.TotalRequests) * 1000 / stats.TotalDurationMs)
		stats.SuccessQPS = round2(float64(stats.SuccessfulRequests) * 1000 / stats.TotalDurationMs)
	}
	if stats.TotalRequests > 0 {
		stats.SuccessRate = round2(float64(stats.SuccessfulRequests) * 100 / float64(stats.TotalRequests))
	}
	return stats
}

func computeOCRStats(outcomes []Outcome, window time.Duration, reference map[string]string, scorer Scorer) OCRStats {
	stats := OCRStats{}
	ok := successes(outcomes)
	if len(ok) == 0 {
		return stats
	}

	for _, o := range ok {
		stats.TotalChars += o.CharCount
		stats.TotalPages += o.PageCount
	}
	if sec := window.Seconds(); sec > 0 {
		stats.CPS = round2(float64(stats.TotalChars) / sec)
		stats.PPS = round2(float64(stats.TotalPages) / sec)
	}

	if len(reference) > 0 && scorer != nil {
		if acc, matched := computeAccuracy(ok, reference, scorer); matched {
			stats.Accuracy = &acc
		}
	}
	return stats
}

// computeAccuracy scores the first successful prediction of each target that
// has a reference text, once per target, and averages the scores.
func computeAccuracy(ok []Outcome, reference map[string]string, scorer Scorer) (float64, bool) {
	firstSuccess := map[string]string{}
	order := []string{}
	for _, o := range ok {
		if _, seen := firstSuccess[o.Target]; !seen {
			firstSuccess[o.Target] = o.Text
			order = append(order, o.Target)
		}
	}

	total, count := 0.0, 0
	for _, name := range order {
		ref, has := reference[name]
		if !has {
			continue
		}
		total += scorer(firstSuccess[name], ref)
		count++
	}
	if count == 0 {
		return 0, false
	}
	return round2(total / float64(count)), true
}

func computeErrorStats(outcomes []Outcome) ErrorStats {
	stats := ErrorStats{Breakdown: map[Category]int{}}
	failed, timedOut := 0, 0
	for _, o := range outcomes {
		stats.Breakdown[o.Category]++
		switch o.Status {
		case StatusTimeout:
			timedOut++
		case StatusError, StatusCancelled:
			failed++
		}
	}
	if total := len(outcomes); total > 0 {
		stats.ErrorRate = round2(float64(failed) * 100 / float64(total))
		stats.TimeoutRate = round2(float64(timedOut) * 100 / float64(total))
	}
	return stats
}

func computePerTargetStats(outcomes []Outcome) map[string]TargetStats {
	byTarget := map[string][]Outcome{}
	for _, o := range outcomes {
		byTarget[o.Target] = append(byTarget[o.Target], o)
	}

	perTarget := map[string]TargetStats{}
	for name, runs := range byTarget {
		ok := successes(runs)
		if len(ok) == 0 {
			perTarget[name] = TargetStats{TotalRuns: len(runs), AllFailed: true}
			continue
		}

		minMs := math.MaxFloat64
		maxMs, sumMs := 0.0, 0.0
		for _, o := range ok {
			ms := o.Latency.Seconds() * 1000
			sumMs += ms
			if ms < minMs {
				minMs = ms
			}
			if ms > maxMs {
				maxMs = ms
			}
		}
		perTarget[name] = TargetStats{
			TotalRuns:      len(runs),
			SuccessfulRuns: len(ok),
			AvgLatencyMs:   round2(sumMs / float64(len(ok))),
			MinLatencyMs:   round2(minMs),
			MaxLatencyMs:   round2(maxMs),
			CharCount:      ok[0].CharCount,
			PageCount:      ok[0].PageCount,
		}
	}
	return perTarget
}

func computeTimeline(outcomes []Outcome, start time.Time) []TimelinePoint {
	timeline := make([]TimelinePoint, 0, len(outcomes))
	for _, o := range outcomes {
		timeline = append(timeline, TimelinePoint{
			Timestamp:      o.Start,
			RelativeTimeMs: round2(o.Start.Sub(start).Seconds() * 1000),
			LatencyMs:      round2(o.Latency.Seconds() * 1000),
			Status:         o.Status,
			Target:         o.Target,
		})
	}
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Timestamp.Before(timeline[j].Timestamp)
	})
	return timeline
}

// ComputeStageStats aggregates one stage's outcome subset. The elapsed
// duration is floor-clamped above zero so rates stay finite.
func ComputeStageStats(outcomes []Outcome, start, end time.Time, concurrency int) StageResult {
	duration := end.Sub(start).Seconds()
	if duration < 1e-6 {
		duration = 1e-6
	}

	ok := successes(outcomes)
	result := StageResult{
		Concurrency:        concurrency,
		TotalRequests:      len(outcomes),
		SuccessfulRequests: len(ok),
		DurationSeconds:    round2(duration),
		QPS:                round2(float64(len(outcomes)) / duration),
		SuccessQPS:         round2(float64(len(ok)) / duration),
	}
	if len(outcomes) > 0 {
		result.SuccessRate = round2(float64(len(ok)) * 100 / float64(len(outcomes)))
	}
	if len(ok) > 0 {
		hist := latencyHistogram(ok)
		result.P95Ms = microsToMs(hist.ValueAtQuantile(95))
		result.P99Ms = microsToMs(hist.ValueAtQuantile(99))
	}
	return result
}

func microsToMs(v int64) float64 {
	return round2(float64(v) / 1000)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
