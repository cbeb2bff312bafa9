// Package config provides configuration loading for minuted.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the minuted daemon.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Slack     SlackConfig     `koanf:"slack"`
	GitHub    GitHubConfig    `koanf:"github"`
	Airtable  AirtableConfig  `koanf:"airtable"`
	Anthropic AnthropicConfig `koanf:"anthropic"`
	Proposals ProposalsConfig `koanf:"proposals"`
	Projects  []ProjectConfig `koanf:"projects"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// SlackConfig holds credentials for the presentation surface.
type SlackConfig struct {
	BotToken Secret `koanf:"bot_token"`
	APIRoot  string `koanf:"api_root"`
}

// GitHubConfig holds credentials for the document store.
type GitHubConfig struct {
	Token Secret `koanf:"token"`
}

// AirtableConfig holds credentials for the record store.
type AirtableConfig struct {
	APIKey  Secret `koanf:"api_key"`
	APIRoot string `koanf:"api_root"`
	Table   string `koanf:"table"`
}

// AnthropicConfig holds credentials for the extraction model.
type AnthropicConfig struct {
	APIKey  Secret   `koanf:"api_key"`
	Model   string   `koanf:"model"`
	BaseURL string   `koanf:"base_url"`
	Timeout Duration `koanf:"timeout"`
}

// ProposalsConfig controls the pending-proposal store.
type ProposalsConfig struct {
	TTL Duration `koanf:"ttl"`
}

// ProjectConfig maps a project to its persistence destinations. Either
// destination may be absent; the corresponding sink then refuses whole
// batches for that project.
type ProjectConfig struct {
	ID         string `koanf:"id"`
	Name       string `koanf:"name"`
	DocOwner   string `koanf:"doc_owner"`
	DocRepo    string `koanf:"doc_repo"`
	DocBranch  string `koanf:"doc_branch"`
	RecordBase string `koanf:"record_base"`
}

// applyDefaults fills in defaults for unset values.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Slack.APIRoot == "" {
		cfg.Slack.APIRoot = "https://slack.com/api"
	}
	if cfg.Airtable.APIRoot == "" {
		cfg.Airtable.APIRoot = "https://api.airtable.com"
	}
	if cfg.Airtable.Table == "" {
		cfg.Airtable.Table = "Tasks"
	}
	if cfg.Anthropic.Model == "" {
		cfg.Anthropic.Model = "claude-3-5-sonnet-20241022"
	}
	if cfg.Anthropic.BaseURL == "" {
		cfg.Anthropic.BaseURL = "https://api.anthropic.com"
	}
	if cfg.Anthropic.Timeout == 0 {
		cfg.Anthropic.Timeout = Duration(60 * time.Second)
	}
	if cfg.Proposals.TTL == 0 {
		cfg.Proposals.TTL = Duration(time.Hour)
	}
	for i := range cfg.Projects {
		if cfg.Projects[i].DocBranch == "" && cfg.Projects[i].DocRepo != "" {
			cfg.Projects[i].DocBranch = "main"
		}
	}
}

// Validate checks the configuration for structural errors. Credential
// presence is checked at wiring time, not here, so read-only commands
// can still load a partial config.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}
	if c.Proposals.TTL.Duration() <= 0 {
		return fmt.Errorf("proposals ttl must be > 0")
	}
	seen := make(map[string]struct{}, len(c.Projects))
	for _, p := range c.Projects {
		if p.ID == "" {
			return fmt.Errorf("project id cannot be empty")
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("duplicate project id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
		if (p.DocOwner == "") != (p.DocRepo == "") {
			return fmt.Errorf("project %q: doc_owner and doc_repo must be set together", p.ID)
		}
	}
	return nil
}
