package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ocrbench/ocrbench/internal/config"
	"github.com/ocrbench/ocrbench/internal/metrics"
	"github.com/ocrbench/ocrbench/internal/monitor"
)

// jsonReport is the machine-readable result document.
type jsonReport struct {
	TestName    string           `json:"testName"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Config      *config.Config   `json:"config,omitempty"`
	Metrics     *metrics.Summary `json:"metrics"`
	Monitor     *monitor.Summary `json:"monitor,omitempty"`
}

// GenerateJSON writes the full result set as indented JSON. The timeline is
// included only when the configuration asks for it.
func GenerateJSON(in Input, outputPath string) error {
	summary := in.Summary
	if in.Config != nil && !in.Config.Report.SaveTimeline {
		trimmed := *summary
		trimmed.Timeline = nil
		summary = &trimmed
	}

	doc := jsonReport{
		TestName:    in.Summary.TestName,
		GeneratedAt: time.Now(),
		Config:      in.Config,
		Metrics:     summary,
		Monitor:     in.Monitor,
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(outputPath, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}
	return nil
}
