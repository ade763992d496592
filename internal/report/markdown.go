package report

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ocrbench/ocrbench/internal/metrics"
)

// GenerateMarkdown renders the human-facing report and writes it to
// outputPath.
func GenerateMarkdown(in Input, outputPath string) error {
	body := renderMarkdown(in)
	if err := os.WriteFile(outputPath, []byte(body), 0o644); err != nil {
		return fmt.Errorf("failed to write markdown report: %w", err)
	}
	return nil
}

func renderMarkdown(in Input) string {
	s := in.Summary
	var b strings.Builder

	fmt.Fprintf(&b, "# OCR API Benchmark Report: %s\n\n", s.TestName)
	fmt.Fprintf(&b, "**Generated at:** %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	if cfg := in.Config; cfg != nil {
		b.WriteString("## Test Configuration\n\n")
		b.WriteString("| Item | Value |\n|------|-------|\n")
		fmt.Fprintf(&b, "| Test Name | %s |\n", s.TestName)
		fmt.Fprintf(&b, "| Test Mode | %s |\n", cfg.Scenario.Mode)
		fmt.Fprintf(&b, "| Concurrency | %d |\n", cfg.Scenario.Concurrency)
		fmt.Fprintf(&b, "| Runs per Target | %d |\n", cfg.Scenario.RunsPerTarget)
		fmt.Fprintf(&b, "| Server URL | %s |\n", cfg.Server.URL)
		fmt.Fprintf(&b, "| Timeout | %ds |\n", cfg.Server.TimeoutSeconds)
		b.WriteString("\n")
	}

	b.WriteString("## Overall Performance\n\n")
	b.WriteString("| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(&b, "| **Total Requests** | %d |\n", s.Throughput.TotalRequests)
	fmt.Fprintf(&b, "| **Success Rate** | %.2f%% |\n", s.Throughput.SuccessRate)
	fmt.Fprintf(&b, "| **QPS** | **%.2f** |\n", s.Throughput.QPS)
	fmt.Fprintf(&b, "| **Success QPS** | %.2f |\n", s.Throughput.SuccessQPS)
	fmt.Fprintf(&b, "| **Total Duration (ms)** | %.2f |\n\n", s.Throughput.TotalDurationMs)

	b.WriteString("## Latency Distribution (ms)\n\n")
	b.WriteString("| Percentile | Latency |\n|------------|--------|\n")
	fmt.Fprintf(&b, "| Min | %.2f |\n", s.Latency.Min)
	fmt.Fprintf(&b, "| P50 (Median) | %.2f |\n", s.Latency.P50)
	fmt.Fprintf(&b, "| P90 | %.2f |\n", s.Latency.P90)
	fmt.Fprintf(&b, "| P95 | %.2f |\n", s.Latency.P95)
	fmt.Fprintf(&b, "| P99 | %.2f |\n", s.Latency.P99)
	fmt.Fprintf(&b, "| P99.9 | %.2f |\n", s.Latency.P999)
	fmt.Fprintf(&b, "| Max | %.2f |\n", s.Latency.Max)
	fmt.Fprintf(&b, "| Mean | %.2f |\n", s.Latency.Mean)
	fmt.Fprintf(&b, "| Std Dev | %.2f |\n\n", s.Latency.Std)

	b.WriteString("## OCR Performance\n\n")
	b.WriteString("| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(&b, "| Total Characters | %d |\n", s.OCR.TotalChars)
	fmt.Fprintf(&b, "| Total Pages (pdf) | %d |\n", s.OCR.TotalPages)
	fmt.Fprintf(&b, "| CPS (Chars/sec) | %.2f |\n", s.OCR.CPS)
	if s.OCR.TotalPages > 0 {
		fmt.Fprintf(&b, "| PPS (Pages/sec) | %.2f |\n", s.OCR.PPS)
	}
	if s.OCR.Accuracy != nil {
		fmt.Fprintf(&b, "| Accuracy | %.2f%% |\n", *s.OCR.Accuracy)
	}
	b.WriteString("\n")

	if s.Throughput.FailedRequests > 0 || s.Throughput.TimeoutRequests > 0 {
		b.WriteString("## Error Analysis\n\n")
		b.WriteString("| Error Type | Count |\n|------------|-------|\n")
		for _, cat := range sortedCategories(s.Errors.Breakdown) {
			fmt.Fprintf(&b, "| %s | %d |\n", cat, s.Errors.Breakdown[cat])
		}
		fmt.Fprintf(&b, "\n**Error Rate:** %.2f%%\n", s.Errors.ErrorRate)
		fmt.Fprintf(&b, "**Timeout Rate:** %.2f%%\n\n", s.Errors.TimeoutRate)
	}

	if m := in.Monitor; m != nil && m.Samples > 0 {
		b.WriteString("## Resource Monitoring\n\n")
		b.WriteString("### CPU Usage (%)\n\n")
		b.WriteString("| Stat | Value |\n|------|-------|\n")
		fmt.Fprintf(&b, "| Average | %.2f%% |\n", m.CPU.Avg)
		fmt.Fprintf(&b, "| Max | %.2f%% |\n", m.CPU.Max)
		fmt.Fprintf(&b, "| Min | %.2f%% |\n\n", m.CPU.Min)
		b.WriteString("### Memory Usage (%)\n\n")
		b.WriteString("| Stat | Value |\n|------|-------|\n")
		fmt.Fprintf(&b, "| Average | %.2f%% |\n", m.Memory.Avg)
		fmt.Fprintf(&b, "| Max | %.2f%% |\n", m.Memory.Max)
		fmt.Fprintf(&b, "| Min | %.2f%% |\n\n", m.Memory.Min)
		if m.AccelUtilization != nil {
			b.WriteString("### Accelerator Utilization (%)\n\n")
			b.WriteString("| Stat | Value |\n|------|-------|\n")
			fmt.Fprintf(&b, "| Average | %.2f%% |\n", m.AccelUtilization.Avg)
			fmt.Fprintf(&b, "| Max | %.2f%% |\n\n", m.AccelUtilization.Max)
		}
	}

	if s.StagedResults != nil {
		b.WriteString("## Staged Results\n\n")
		b.WriteString("| Concurrency | QPS | Success QPS | Success Rate (%) | P95 (ms) | P99 (ms) | Requests |\n")
		b.WriteString("|-------------|-----|-------------|------------------|----------|----------|----------|\n")
		for _, st := range s.StagedResults {
			fmt.Fprintf(&b, "| %d | %.2f | %.2f | %.2f | %.2f | %.2f | %d |\n",
				st.Concurrency, st.QPS, st.SuccessQPS, st.SuccessRate, st.P95Ms, st.P99Ms, st.TotalRequests)
		}
		b.WriteString("\n")
	}

	if len(s.PerTarget) > 0 {
		b.WriteString("## Per-Target Results\n\n")
		b.WriteString("| Target | Runs | Successes | Avg Latency (ms) | Chars | Pages |\n")
		b.WriteString("|--------|------|-----------|------------------|-------|-------|\n")
		for _, name := range sortedTargets(s.PerTarget) {
			ts := s.PerTarget[name]
			fmt.Fprintf(&b, "| `%s` | %d | %d | %.2f | %d | %d |\n",
				name, ts.TotalRuns, ts.SuccessfulRuns, ts.AvgLatencyMs, ts.CharCount, ts.PageCount)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n*Report generated by ocrbench*\n")
	return b.String()
}

func sortedCategories(breakdown map[metrics.Category]int) []metrics.Category {
	cats := make([]metrics.Category, 0, len(breakdown))
	for cat, n := range breakdown {
		if cat != metrics.CategoryNone && n > 0 {
			cats = append(cats, cat)
		}
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

func sortedTargets(perTarget map[string]metrics.TargetStats) []string {
	names := make([]string, 0, len(perTarget))
	for name := range perTarget {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
