package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

// Config holds the working-directory layout and export retention for one
// run of the tools.
type Config struct {
	DataDir         string
	ExportDir       string
	ExportRetention time.Duration
}

const defaultRetention = 30 * 24 * time.Hour

// fileConfig is the YAML shape. Retention is a string so the file can say
// "720h" like the env variable does.
type fileConfig struct {
	DataDir         string `yaml:"data_dir"`
	ExportDir       string `yaml:"export_dir"`
	ExportRetention string `yaml:"export_retention"`
}

// Load builds the config from defaults, an optional YAML file, and env
// variables, in increasing order of precedence. An empty path skips the
// file; a named file that is missing is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{
		DataDir:         "data",
		ExportRetention: defaultRetention,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read config file %s: %w", path, err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("unable to parse config file %s: %w", path, err)
		}
		if fc.DataDir != "" {
			cfg.DataDir = fc.DataDir
		}
		if fc.ExportDir != "" {
			cfg.ExportDir = fc.ExportDir
		}
		if fc.ExportRetention != "" {
			retention, err := time.ParseDuration(fc.ExportRetention)
			if err != nil {
				return nil, fmt.Errorf("invalid export_retention in %s: %q (%w)", path, fc.ExportRetention, err)
			}
			cfg.ExportRetention = retention
		}
	}

	cfg.DataDir = getEnvString("FINBOOK_DATA_DIR", cfg.DataDir)
	cfg.ExportDir = getEnvString("FINBOOK_EXPORT_DIR", cfg.ExportDir)
	retention, err := getEnvDuration("FINBOOK_EXPORT_RETENTION", cfg.ExportRetention)
	if err != nil {
		return nil, err
	}
	cfg.ExportRetention = retention

	if cfg.ExportDir == "" {
		cfg.ExportDir = filepath.Join(cfg.DataDir, "exports")
	}
	return cfg, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}
