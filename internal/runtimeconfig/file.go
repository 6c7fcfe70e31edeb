package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the conventional config file name at the log root.
const DefaultConfigFile = "til.yaml"

// envConfigPath overrides the config file location when set.
const envConfigPath = "TIL_CONFIG"

// envLogLevel overrides the configured logging level when set.
const envLogLevel = "TIL_LOG_LEVEL"

// Load reads a YAML config file on top of DefaultConfig. A missing file is not
// an error: callers get the defaults and can decide whether that is acceptable.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	resolved := strings.TrimSpace(path)
	if resolved == "" {
		resolved = strings.TrimSpace(os.Getenv(envConfigPath))
	}
	if resolved == "" {
		resolved = DefaultConfigFile
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && strings.TrimSpace(path) == "" {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("til config: read %s: %w", resolved, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("til config: parse %s: %w", resolved, err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if level := strings.TrimSpace(os.Getenv(envLogLevel)); level != "" {
		cfg.Logging.Level = level
	}
}
