package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// LoadWithFile loads configuration from a YAML file, then overrides
// with environment variables.
//
// Precedence (highest to lowest):
//  1. Environment variables prefixed MINUTED_ (MINUTED_SERVER_PORT,
//     MINUTED_SLACK_BOT_TOKEN, ...)
//  2. YAML config file
//  3. Hardcoded defaults
//
// If configPath is empty the default ~/.config/minuted/config.yaml is
// used. A missing file is not an error; env vars and defaults apply.
func LoadWithFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "minuted", "config.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		// Open once and validate via the file descriptor to avoid a
		// TOCTOU race between stat and read.
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// MINUTED_SLACK_BOT_TOKEN -> slack.bot_token
	// Section is the first underscore-delimited token; the rest keeps
	// its underscores as the field name.
	if err := k.Load(env.Provider("MINUTED_", ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, "MINUTED_"))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
