// Package metrics collects per-request outcomes and computes aggregate
// statistics for a benchmark run.
package metrics

import "time"

// Status classifies the terminal state of one request attempt.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusTimeout   Status = "timeout"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

// Category identifies the failure class of an outcome. Successful outcomes
// carry CategoryNone. Exactly one category applies per outcome.
type Category string

const (
	CategoryNone       Category = "none"
	CategoryTimeout    Category = "timeout"
	CategoryConnection Category = "connection"
	CategoryHTTP4xx    Category = "http_4xx"
	CategoryHTTP5xx    Category = "http_5xx"
	CategoryDecode     Category = "decode"
	CategoryValidation Category = "validation"
	CategoryUnknown    Category = "unknown"
)

// StatusFor derives the outcome status from a failure category.
func StatusFor(c Category) Status {
	switch c {
	case CategoryNone:
		return StatusSuccess
	case CategoryTimeout:
		return StatusTimeout
	default:
		return StatusError
	}
}

// Outcome is the recorded result of a single request attempt.
// It is immutable once appended to a Collector.
type Outcome struct {
	// Identity
	Seq      int64  `json:"seq"`
	Target   string `json:"target"`
	RunIndex int    `json:"runIndex"`

	// Timing
	Start   time.Time     `json:"start"`
	End     time.Time     `json:"end"`
	Latency time.Duration `json:"latency"`

	// Classification
	Status   Status   `json:"status"`
	HTTPCode int      `json:"httpCode,omitempty"`
	ErrorMsg string   `json:"errorMsg,omitempty"`
	Category Category `json:"category"`

	// OCR yield
	CharCount int    `json:"charCount"`
	PageCount int    `json:"pageCount"`
	Text      string `json:"-"`

	// Stage is the concurrency level active when the request was issued.
	// Zero means the outcome is not part of a ramp stage.
	Stage int `json:"stage,omitempty"`
}

// LatencyStats describes the latency distribution over successful outcomes,
// in milliseconds.
type LatencyStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
	P999   float64 `json:"p999"`
}

// ThroughputStats describes request counts and rates over the measurement
// window.
type ThroughputStats struct {
	TotalRequests      int     `json:"totalRequests"`
	SuccessfulRequests int     `json:"successfulRequests"`
	FailedRequests     int     `json:"failedRequests"`
	TimeoutRequests    int     `json:"timeoutRequests"`
	TotalDurationMs    float64 `json:"totalDurationMs"`
	QPS                float64 `json:"qps"`
	SuccessQPS         float64 `json:"successQps"`
	SuccessRate        float64 `json:"successRate"`
}

// OCRStats describes recognized-text yield over successful outcomes.
type OCRStats struct {
	TotalChars int     `json:"totalChars"`
	TotalPages int     `json:"totalPages"`
	CPS        float64 `json:"cps"`
	PPS        float64 `json:"pps"`
	// Accuracy is nil unless reference texts were supplied at compute time.
	Accuracy *float64 `json:"accuracy,omitempty"`
}

// ErrorStats describes the failure-category breakdown over all outcomes.
type ErrorStats struct {
	Breakdown   map[Category]int `json:"breakdown"`
	ErrorRate   float64          `json:"errorRate"`
	TimeoutRate float64          `json:"timeoutRate"`
}

// TargetStats summarizes the runs of a single target.
type TargetStats struct {
	TotalRuns      int     `json:"totalRuns"`
	SuccessfulRuns int     `json:"successfulRuns"`
	AvgLatencyMs   float64 `json:"avgLatencyMs,omitempty"`
	MinLatencyMs   float64 `json:"minLatencyMs,omitempty"`
	MaxLatencyMs   float64 `json:"maxLatencyMs,omitempty"`
	CharCount      int     `json:"charCount,omitempty"`
	PageCount      int     `json:"pageCount,omitempty"`
	// AllFailed marks targets with zero successful runs.
	AllFailed bool `json:"allFailed,omitempty"`
}

// TimelinePoint projects one outcome onto the run's time axis.
type TimelinePoint struct {
	Timestamp      time.Time `json:"timestamp"`
	RelativeTimeMs float64   `json:"relativeTimeMs"`
	LatencyMs      float64   `json:"latencyMs"`
	Status         Status    `json:"status"`
	Target         string    `json:"target"`
}

// StageResult summarizes one concurrency stage of a ramp-type run.
type StageResult struct {
	Concurrency        int     `json:"concurrency"`
	TotalRequests      int     `json:"totalRequests"`
	SuccessfulRequests int     `json:"successfulRequests"`
	DurationSeconds    float64 `json:"durationSeconds"`
	QPS                float64 `json:"qps"`
	SuccessQPS         float64 `json:"successQps"`
	SuccessRate        float64 `json:"successRate"`
	P95Ms              float64 `json:"p95Ms"`
	P99Ms              float64 `json:"p99Ms"`
}

// Summary is a derived aggregate over an outcome set. It is recomputable at
// any time and never a source of truth.
type Summary struct {
	TestName   string    `json:"testName"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	DurationMs float64   `json:"durationMs"`

	Latency    LatencyStats           `json:"latency"`
	Throughput ThroughputStats        `json:"throughput"`
	OCR        OCRStats               `json:"ocr"`
	Errors     ErrorStats             `json:"errors"`
	PerTarget  map[string]TargetStats `json:"perTarget"`
	Timeline   []TimelinePoint        `json:"timeline"`

	// StagedResults is nil for modes without stages. A non-nil empty slice
	// means a ramp-type run closed no stages.
	StagedResults []StageResult `json:"stagedResults,omitempty"`
}
