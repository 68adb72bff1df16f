package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/c360/streampump/errors"
)

const (
	// Security limits for configuration
	maxConfigSize = 10 << 20 // 10MB max config file size
	maxPathLen    = 4096     // Maximum file path length
)

// validateConfigPath does basic path validation
func validateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty config path", errors.ErrInvalidConfig)
	}
	if len(path) > maxPathLen {
		return fmt.Errorf("%w: path too long: %d > %d", errors.ErrInvalidConfig, len(path), maxPathLen)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yml", ".yaml":
		return nil
	default:
		return fmt.Errorf("%w: only JSON or YAML config files allowed: %s", errors.ErrInvalidConfig, path)
	}
}

// safeReadFile reads a config file with security validation
func safeReadFile(path string) ([]byte, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "safeReadFile", "config path validation")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "safeReadFile", "stat config file")
	}
	if info.Size() > maxConfigSize {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: config file too large: %d > %d", errors.ErrInvalidConfig, info.Size(), maxConfigSize),
			"Loader", "safeReadFile", "config size check")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapTransient(err, "Loader", "safeReadFile", "read config file")
	}
	return data, nil
}
