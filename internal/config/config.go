// Package config defines the benchmark scenario descriptor and its YAML
// loading and validation.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects the workload discipline for a run.
type Mode string

const (
	// ModeLatency measures unloaded per-request latency, one request at a time.
	ModeLatency Mode = "latency"
	// ModeThroughput drives the full task list through a fixed concurrency gate.
	ModeThroughput Mode = "throughput"
	// ModeStress ramps concurrency stage by stage up to a maximum.
	ModeStress Mode = "stress"
	// ModeStability sustains a fixed concurrency for a wall-clock duration.
	ModeStability Mode = "stability"
	// ModeCapacity runs one full pass per concurrency level for comparison.
	ModeCapacity Mode = "capacity"
)

// Config is the root benchmark configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server"`
	OCR      OCRParams      `yaml:"ocr" json:"ocr"`
	Scenario ScenarioConfig `yaml:"scenario" json:"scenario"`
	Data     DataConfig     `yaml:"data" json:"data"`
	Monitor  MonitorConfig  `yaml:"monitor" json:"monitor"`
	Report   ReportConfig   `yaml:"report" json:"report"`
}

// ServerConfig describes the tested service endpoint.
type ServerConfig struct {
	URL            string `yaml:"url" json:"url"`
	Token          string `yaml:"token" json:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	VerifySSL      bool   `yaml:"verify_ssl" json:"verify_ssl"`
}

// Timeout returns the per-request timeout as a duration.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// OCRParams are the option flags sent with every request. The JSON tags are
// the wire names the service expects.
type OCRParams struct {
	UseDocOrientationClassify bool    `yaml:"use_doc_orientation_classify" json:"useDocOrientationClassify"`
	UseDocUnwarping           bool    `yaml:"use_doc_unwarping" json:"useDocUnwarping"`
	UseTextlineOrientation    bool    `yaml:"use_textline_orientation" json:"useTextlineOrientation"`
	TextDetThresh             float64 `yaml:"text_det_thresh" json:"textDetThresh"`
	TextDetBoxThresh          float64 `yaml:"text_det_box_thresh" json:"textDetBoxThresh"`
	TextDetUnclipRatio        float64 `yaml:"text_det_unclip_ratio" json:"textDetUnclipRatio"`
	TextRecScoreThresh        float64 `yaml:"text_rec_score_thresh" json:"textRecScoreThresh"`
	Visualize                 bool    `yaml:"visualize" json:"visualize"`

	// PDF rendering parameters.
	PDFDpi      int `yaml:"pdf_dpi" json:"pdfDpi"`
	PDFMaxPages int `yaml:"pdf_max_pages" json:"pdfMaxPages"`
}

// ScenarioConfig describes one workload scenario.
type ScenarioConfig struct {
	Name string `yaml:"name" json:"name"`
	Mode Mode   `yaml:"mode" json:"mode"`

	// Concurrency is the gate width, or the starting level for ramp modes.
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	// DurationSeconds bounds stability runs. Zero means run every task once.
	DurationSeconds int `yaml:"duration_seconds" json:"duration_seconds"`

	RunsPerTarget  int `yaml:"runs_per_target" json:"runs_per_target"`
	WarmupRequests int `yaml:"warmup_requests" json:"warmup_requests"`

	// Ramp-mode shape: per-stage duration, ceiling, and step.
	RampUpSeconds   int `yaml:"ramp_up_seconds" json:"ramp_up_seconds"`
	MaxConcurrency  int `yaml:"max_concurrency" json:"max_concurrency"`
	ConcurrencyStep int `yaml:"concurrency_step" json:"concurrency_step"`
}

// Duration returns the configured wall-clock duration.
func (s ScenarioConfig) Duration() time.Duration {
	return time.Duration(s.DurationSeconds) * time.Second
}

// RampDuration returns the per-stage duration for ramp modes.
func (s ScenarioConfig) RampDuration() time.Duration {
	return time.Duration(s.RampUpSeconds) * time.Second
}

// DataConfig locates the workload inputs.
type DataConfig struct {
	ImagesDir  string `yaml:"images_dir" json:"images_dir"`
	PDFsDir    string `yaml:"pdfs_dir" json:"pdfs_dir"`
	LabelsFile string `yaml:"labels_file" json:"labels_file"`

	// MaxTargets caps the loaded target count. Zero keeps all.
	MaxTargets int  `yaml:"max_targets" json:"max_targets"`
	Shuffle    bool `yaml:"shuffle" json:"shuffle"`
}

// MonitorConfig controls background resource sampling.
type MonitorConfig struct {
	Enabled         bool    `yaml:"enabled" json:"enabled"`
	IntervalSeconds float64 `yaml:"interval_seconds" json:"interval_seconds"`
	Accel           bool    `yaml:"accel" json:"accel"`
}

// Interval returns the sampling period.
func (m MonitorConfig) Interval() time.Duration {
	return time.Duration(m.IntervalSeconds * float64(time.Second))
}

// ReportConfig controls report generation.
type ReportConfig struct {
	OutputDir    string   `yaml:"output_dir" json:"output_dir"`
	Formats      []string `yaml:"formats" json:"formats"`
	SaveTimeline bool     `yaml:"save_timeline" json:"save_timeline"`
}

// Default returns a configuration with the same defaults the service's own
// tooling ships with.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:            "http://localhost:8080/ocr",
			Token:          "test_token",
			TimeoutSeconds: 60,
		},
		OCR: OCRParams{
			TextDetThresh:      0.3,
			TextDetBoxThresh:   0.6,
			TextDetUnclipRatio: 1.5,
			PDFDpi:             150,
			PDFMaxPages:        10,
		},
		Scenario: ScenarioConfig{
			Name:            "default",
			Mode:            ModeThroughput,
			Concurrency:     10,
			RunsPerTarget:   1,
			WarmupRequests:  5,
			MaxConcurrency:  100,
			ConcurrencyStep: 5,
		},
		Monitor: MonitorConfig{
			Enabled:         true,
			IntervalSeconds: 1.0,
			Accel:           true,
		},
		Report: ReportConfig{
			OutputDir:    "results",
			Formats:      []string{"markdown", "json"},
			SaveTimeline: true,
		},
	}
}

// Load reads a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
