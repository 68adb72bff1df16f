package config

import (
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/c360/streampump/errors"
)

// Sink kinds
const (
	SinkStdout = "stdout"
	SinkNull   = "null"
	SinkFile   = "file"
)

// Defaults
const (
	DefaultSegmentPath = "./etc/processors/*"
	DefaultPipelineID  = "main"
	DefaultMetricsPort = 9090
	DefaultMetricsPath = "/metrics"
)

// Config represents the complete application configuration
type Config struct {
	SegmentBuilder SegmentBuilderConfig `yaml:"segment_builder" json:"segment_builder"`
	Pipelines      []PipelineConfig     `yaml:"pipelines" json:"pipelines"`
	Metrics        MetricsConfig        `yaml:"metrics" json:"metrics"`
}

// SegmentBuilderConfig locates the processor and lookup definition files.
type SegmentBuilderConfig struct {
	Path string `yaml:"path" json:"path"` // doublestar glob, "**" recurses
}

// PipelineConfig declares one pipeline and the sink terminating it.
type PipelineConfig struct {
	ID     string `yaml:"id" json:"id"`
	Sink   string `yaml:"sink" json:"sink"`                         // stdout, null, file
	Output string `yaml:"output,omitempty" json:"output,omitempty"` // file sink target
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Port    int    `yaml:"port" json:"port"`
	Path    string `yaml:"path" json:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SegmentBuilder: SegmentBuilderConfig{Path: DefaultSegmentPath},
		Pipelines:      []PipelineConfig{{ID: DefaultPipelineID, Sink: SinkStdout}},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    DefaultMetricsPort,
			Path:    DefaultMetricsPath,
		},
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SegmentBuilder.Path) == "" {
		return invalid("segment_builder.path is required")
	}

	if len(c.Pipelines) == 0 {
		return invalid("at least one pipeline is required")
	}

	seen := make(map[string]bool, len(c.Pipelines))
	for i, p := range c.Pipelines {
		if p.ID == "" {
			return invalid(fmt.Sprintf("pipelines[%d].id is required", i))
		}
		if seen[p.ID] {
			return invalid(fmt.Sprintf("pipelines[%d].id '%s' is duplicated", i, p.ID))
		}
		seen[p.ID] = true

		switch p.Sink {
		case SinkStdout, SinkNull:
		case SinkFile:
			if p.Output == "" {
				return invalid(fmt.Sprintf("pipelines[%d].output is required for a file sink", i))
			}
		default:
			return invalid(fmt.Sprintf("pipelines[%d].sink '%s' is not one of stdout, null, file", i, p.Sink))
		}
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
			return invalid(fmt.Sprintf("metrics.port %d is out of range", c.Metrics.Port))
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return invalid(fmt.Sprintf("metrics.path '%s' must start with '/'", c.Metrics.Path))
		}
	}

	return nil
}

func invalid(msg string) error {
	return errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrInvalidConfig, msg), "Config", "Validate", "config validation")
}

// Pipeline returns the pipeline config with the given id.
func (c *Config) Pipeline(id string) (PipelineConfig, bool) {
	for _, p := range c.Pipelines {
		if p.ID == id {
			return p, true
		}
	}
	return PipelineConfig{}, false
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}
	clone := *c
	clone.Pipelines = append([]PipelineConfig(nil), c.Pipelines...)
	return &clone
}

// String returns a YAML representation of the config
func (c *Config) String() string {
	data, _ := yaml.Marshal(c)
	return string(data)
}

// SafeConfig provides thread-safe access to configuration
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig creates a new thread-safe config wrapper
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = &Config{}
	}
	return &SafeConfig{config: cfg}
}

// Get returns a deep copy of the current configuration
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically updates the configuration after validation
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "SafeConfig", "Update", "nil config")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg.Clone()
	return nil
}
