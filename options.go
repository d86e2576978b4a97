package tacit

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Options configures binding and execution.
type Options struct {
	// Logging configuration
	LogLevel             string `yaml:"log_level"`               // "error", "warn", "info", "debug" (default: "warn")
	LogTimeFormat        string `yaml:"log_time_format"`         // strftime pattern for timestamps
	LogStackPreviewDepth int    `yaml:"log_stack_preview_depth"` // values shown per debug line (default: 3)

	// Logger overrides the logger built from LogLevel.
	Logger Logger `yaml:"-"`

	// EnableDiagnostics collects advisory lints while binding (default: true).
	EnableDiagnostics bool `yaml:"enable_diagnostics"`

	// MaxCallDepth bounds nested function calls (default: 512).
	MaxCallDepth int `yaml:"max_call_depth"`
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		LogLevel:             "warn",
		LogTimeFormat:        DefaultLogTimeFormat,
		LogStackPreviewDepth: 3,
		EnableDiagnostics:    true,
		MaxCallDepth:         512,
	}
}

// LoadOptions reads options from YAML. Keys that are absent keep their
// default value.
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.NewDecoder(r).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("failed to decode options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate checks option values that have no usable fallback.
func (o *Options) Validate() error {
	if o.MaxCallDepth <= 0 {
		return fmt.Errorf("max_call_depth must be positive, got %d", o.MaxCallDepth)
	}
	if o.LogStackPreviewDepth < 0 {
		o.LogStackPreviewDepth = 0
	}
	return nil
}

func (o Options) newLogger() Logger {
	if o.Logger != nil {
		return o.Logger
	}
	if o.LogLevel == "" {
		return NopLogger()
	}
	return newLogger(ParseLogLevel(o.LogLevel), nil, o.LogTimeFormat)
}
