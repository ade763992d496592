package config

// ValidationError reports a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "validation error on field '" + e.Field + "': " + e.Message
}

func validModes() map[Mode]bool {
	return map[Mode]bool{
		ModeLatency:    true,
		ModeThroughput: true,
		ModeStress:     true,
		ModeStability:  true,
		ModeCapacity:   true,
	}
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return &ValidationError{Field: "server.url", Message: "server URL is required"}
	}
	if c.Server.TimeoutSeconds <= 0 {
		return &ValidationError{Field: "server.timeout_seconds", Message: "timeout must be > 0"}
	}

	if c.Data.ImagesDir == "" && c.Data.PDFsDir == "" {
		return &ValidationError{Field: "data", Message: "at least one of images_dir or pdfs_dir must be set"}
	}

	if !validModes()[c.Scenario.Mode] {
		return &ValidationError{Field: "scenario.mode", Message: "unknown mode: " + string(c.Scenario.Mode)}
	}
	if c.Scenario.Concurrency < 1 {
		return &ValidationError{Field: "scenario.concurrency", Message: "concurrency must be >= 1"}
	}
	if c.Scenario.RunsPerTarget < 1 {
		return &ValidationError{Field: "scenario.runs_per_target", Message: "runs_per_target must be >= 1"}
	}

	if c.Scenario.Mode == ModeStress || c.Scenario.Mode == ModeCapacity {
		if c.Scenario.MaxConcurrency < c.Scenario.Concurrency {
			return &ValidationError{Field: "scenario.max_concurrency", Message: "max_concurrency must be >= concurrency"}
		}
		if c.Scenario.ConcurrencyStep < 1 {
			return &ValidationError{Field: "scenario.concurrency_step", Message: "concurrency_step must be >= 1"}
		}
	}

	if c.Report.OutputDir == "" {
		return &ValidationError{Field: "report.output_dir", Message: "output directory is required"}
	}
	return nil
}
