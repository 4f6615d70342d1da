package config

// DefaultConfig returns configuration with the tool's documented defaults.
// Used when no config file exists, or to backfill fields a loaded config
// leaves unset.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Commands: nil,
			Exclude:  nil,
			Jobs:     0,
		},
		Quality: QualityConfig{
			MinConfidence:   0.5,
			MinCoverage:     0.4,
			AllowLowQuality: false,
		},
		Output: OutputConfig{
			DefaultFormat: "json",
		},
	}
}

// Merge combines a loaded config with defaults, preferring loaded values
// wherever they were explicitly set.
func Merge(loaded, defaults *Config) *Config {
	return &Config{
		Scan:    mergeScanConfig(loaded.Scan, defaults.Scan),
		Quality: mergeQualityConfig(loaded.Quality, defaults.Quality),
		Output:  mergeOutputConfig(loaded.Output, defaults.Output),
	}
}

func mergeScanConfig(loaded, defaults ScanConfig) ScanConfig {
	result := ScanConfig{
		Commands: loaded.Commands,
		Exclude:  loaded.Exclude,
		Jobs:     loaded.Jobs,
	}
	if len(result.Commands) == 0 {
		result.Commands = defaults.Commands
	}
	if len(result.Exclude) == 0 {
		result.Exclude = defaults.Exclude
	}
	if result.Jobs == 0 {
		result.Jobs = defaults.Jobs
	}
	return result
}

func mergeQualityConfig(loaded, defaults QualityConfig) QualityConfig {
	result := loaded
	if result.MinConfidence == 0 {
		result.MinConfidence = defaults.MinConfidence
	}
	if result.MinCoverage == 0 {
		result.MinCoverage = defaults.MinCoverage
	}
	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	result := loaded
	if result.DefaultFormat == "" {
		result.DefaultFormat = defaults.DefaultFormat
	}
	return result
}
