package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath  string
	SegmentPath string
	Pipeline    string
	LogLevel    string
	LogFormat   string
	Debug       bool
	ShowVersion bool
	ShowHelp    bool
	Validate    bool
	Inputs      []string
}

// parseFlags parses args with environment variable fallbacks.
func parseFlags(args []string, getenv func(string) string, stderr io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&cfg.ConfigPath, "config",
		getEnv(getenv, "STREAMPUMP_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: STREAMPUMP_CONFIG)")

	fs.StringVar(&cfg.ConfigPath, "c",
		getEnv(getenv, "STREAMPUMP_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: STREAMPUMP_CONFIG)")

	fs.StringVar(&cfg.SegmentPath, "segment-path", "",
		"Definition file glob, overrides segment_builder.path")

	fs.StringVar(&cfg.Pipeline, "pipeline",
		getEnv(getenv, "STREAMPUMP_PIPELINE", ""),
		"Pipeline receiving the input events, defaults to the first configured (env: STREAMPUMP_PIPELINE)")

	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv(getenv, "STREAMPUMP_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: STREAMPUMP_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv(getenv, "STREAMPUMP_LOG_FORMAT", "json"),
		"Log format: json, text (env: STREAMPUMP_LOG_FORMAT)")

	fs.BoolVar(&cfg.Debug, "debug",
		getEnvBool(getenv, "STREAMPUMP_DEBUG", false),
		"Enable debug logging (env: STREAMPUMP_DEBUG)")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	fs.BoolVar(&cfg.Validate, "validate", false, "Build every segment and exit without reading events")

	fs.Usage = func() {
		printDetailedHelp(fs, stderr)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Inputs = fs.Args()

	if cfg.ShowHelp {
		fs.Usage()
	}

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}
	return nil
}

func printDetailedHelp(fs *flag.FlagSet, w io.Writer) {
	_, _ = fmt.Fprintf(w, `%s - Declarative event pipelines

Usage: %s [options] [input.jsonl ...]

Reads JSON-line events from the inputs (stdin when none or "-") and pushes
them through the configured pipeline.

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(w, `
Examples:
  # Run events from a file through the rules under ./rules
  %s --segment-path='./rules/**/*.yml' events.jsonl

  # Run with debug logging
  cat events.jsonl | %s --log-level=debug --log-format=text

  # Check every definition compiles
  %s --config=streampump.yml --validate

Version: %s
Build: %s
`, appName, appName, appName, Version, BuildTime)
}

// Environment variable helper functions
func getEnv(getenv func(string) string, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(getenv func(string) string, key string, defaultValue bool) bool {
	if value := getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
