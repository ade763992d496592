// Package report renders benchmark results to files in the configured
// formats. Markdown is the human-facing report; JSON carries the full
// result set for downstream tooling.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ocrbench/ocrbench/internal/config"
	"github.com/ocrbench/ocrbench/internal/metrics"
	"github.com/ocrbench/ocrbench/internal/monitor"
)

// Input bundles everything a report renderer needs.
type Input struct {
	Summary *metrics.Summary
	Monitor *monitor.Summary
	Config  *config.Config
}

// Generate writes one report file per requested format into outputDir,
// creating the directory if needed. It returns the paths written. Unknown
// formats are skipped with an error entry rather than aborting the run.
func Generate(in Input, formats []string, outputDir string) ([]string, error) {
	if in.Summary == nil {
		return nil, fmt.Errorf("summary cannot be nil")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	var written []string
	for _, format := range formats {
		var path string
		var err error
		switch format {
		case "markdown", "md":
			path = filepath.Join(outputDir, in.Summary.TestName+"_report.md")
			err = GenerateMarkdown(in, path)
		case "json":
			path = filepath.Join(outputDir, in.Summary.TestName+"_results.json")
			err = GenerateJSON(in, path)
		default:
			err = fmt.Errorf("unknown report format: %s", format)
		}
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
