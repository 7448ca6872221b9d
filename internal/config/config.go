// Package config loads and validates docpolish configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// ModelConfig holds per-model CLI invocation settings.
type ModelConfig struct {
	// Command is the CLI executable for this model
	Command string `yaml:"command"`

	// Args are the base arguments prepended to every invocation
	Args []string `yaml:"args"`

	// Timeout is the maximum duration for a single invocation
	Timeout time.Duration `yaml:"-"`

	// Enabled controls whether the model is loaded at all
	Enabled bool `yaml:"enabled"`
}

// SessionConfig holds session-management settings.
type SessionConfig struct {
	// Enabled controls whether document-context sessions are used
	Enabled bool `yaml:"enabled"`

	// Mode is "auto-recreate" or "fail-fast" for lost sessions
	Mode string `yaml:"mode"`

	// MaxRetries is the retry budget for failed session queries
	MaxRetries int `yaml:"max_retries"`

	// RetryDelay is the pause between retry attempts
	RetryDelay time.Duration `yaml:"-"`

	// PurposePrompt is the system prompt sent when seeding a session
	PurposePrompt string `yaml:"purpose_prompt"`
}

// SeverityConfig holds the similarity thresholds that map disagreement onto
// severity levels, plus the shared-concern scaling point. The defaults come
// from trial-tuned heuristics, so they stay configurable.
type SeverityConfig struct {
	CriticalBelow float64 `yaml:"critical_below"`
	HighBelow     float64 `yaml:"high_below"`
	MediumBelow   float64 `yaml:"medium_below"`

	// SharedMediumAt is the number of models that must share a concern
	// before an agreement-with-shared-concerns section escalates from low
	// to medium severity.
	SharedMediumAt int `yaml:"shared_medium_at"`
}

// DetectionConfig holds ambiguity-detection settings.
type DetectionConfig struct {
	// Strategy is "simple" or "llm_judge"
	Strategy string `yaml:"strategy"`

	// JudgeModel names the model used as judge (llm_judge strategy)
	JudgeModel string `yaml:"judge_model"`

	// SimilarityThreshold is the agreement cutoff for the simple strategy
	SimilarityThreshold float64 `yaml:"similarity_threshold"`

	Severity SeverityConfig `yaml:"severity"`
}

// HistoryConfig holds run-history store settings.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// Config represents docpolish configuration options.
type Config struct {
	// Workspace is the directory for pipeline artifacts
	Workspace string `yaml:"workspace"`

	// LogLevel sets console verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	Models    map[string]ModelConfig `yaml:"models"`
	Sessions  SessionConfig          `yaml:"session_management"`
	Detection DetectionConfig        `yaml:"detection"`
	History   HistoryConfig          `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Workspace: ".docpolish",
		LogLevel:  "info",
		Models: map[string]ModelConfig{
			"claude": {Command: "claude", Args: []string{"-p"}, Timeout: 60 * time.Second, Enabled: true},
			"gemini": {Command: "gemini", Args: []string{}, Timeout: 60 * time.Second, Enabled: true},
			"codex":  {Command: "codex", Args: []string{"exec", "--skip-git-repo-check"}, Timeout: 60 * time.Second, Enabled: true},
		},
		Sessions: SessionConfig{
			Enabled:       true,
			Mode:          "auto-recreate",
			MaxRetries:    1,
			RetryDelay:    2 * time.Second,
			PurposePrompt: "You will be asked to interpret sections of the following document. Read it carefully and keep it in mind for all follow-up questions.",
		},
		Detection: DetectionConfig{
			Strategy:            "llm_judge",
			JudgeModel:          "claude",
			SimilarityThreshold: 0.7,
			Severity: SeverityConfig{
				CriticalBelow:  0.3,
				HighBelow:      0.5,
				MediumBelow:    0.7,
				SharedMediumAt: 3,
			},
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  filepath.Join(".docpolish", "history.db"),
		},
	}
}

// yamlModelConfig mirrors ModelConfig with a string timeout for parsing.
type yamlModelConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Timeout string   `yaml:"timeout"`
	Enabled *bool    `yaml:"enabled"`
}

type yamlSessionConfig struct {
	Enabled       *bool  `yaml:"enabled"`
	Mode          string `yaml:"mode"`
	MaxRetries    *int   `yaml:"max_retries"`
	RetryDelay    string `yaml:"retry_delay"`
	PurposePrompt string `yaml:"purpose_prompt"`
}

type yamlConfig struct {
	Workspace string                     `yaml:"workspace"`
	LogLevel  string                     `yaml:"log_level"`
	Models    map[string]yamlModelConfig `yaml:"models"`
	Sessions  *yamlSessionConfig         `yaml:"session_management"`
	Detection *DetectionConfig           `yaml:"detection"`
	History   *HistoryConfig             `yaml:"history"`
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yc.Workspace != "" {
		cfg.Workspace = yc.Workspace
	}
	if yc.LogLevel != "" {
		cfg.LogLevel = yc.LogLevel
	}

	// A models section replaces the defaults entirely: listing models is an
	// explicit statement of which CLIs exist on this machine.
	if len(yc.Models) > 0 {
		cfg.Models = make(map[string]ModelConfig, len(yc.Models))
		for name, ym := range yc.Models {
			mc := ModelConfig{
				Command: ym.Command,
				Args:    ym.Args,
				Timeout: 60 * time.Second,
				Enabled: true,
			}
			if mc.Command == "" {
				mc.Command = name
			}
			if ym.Timeout != "" {
				d, err := time.ParseDuration(ym.Timeout)
				if err != nil {
					return nil, fmt.Errorf("invalid timeout for model %q: %w", name, err)
				}
				mc.Timeout = d
			}
			if ym.Enabled != nil {
				mc.Enabled = *ym.Enabled
			}
			cfg.Models[name] = mc
		}
	}

	if yc.Sessions != nil {
		if yc.Sessions.Enabled != nil {
			cfg.Sessions.Enabled = *yc.Sessions.Enabled
		}
		if yc.Sessions.Mode != "" {
			cfg.Sessions.Mode = yc.Sessions.Mode
		}
		if yc.Sessions.MaxRetries != nil {
			cfg.Sessions.MaxRetries = *yc.Sessions.MaxRetries
		}
		if yc.Sessions.RetryDelay != "" {
			d, err := time.ParseDuration(yc.Sessions.RetryDelay)
			if err != nil {
				return nil, fmt.Errorf("invalid retry_delay %q: %w", yc.Sessions.RetryDelay, err)
			}
			cfg.Sessions.RetryDelay = d
		}
		if yc.Sessions.PurposePrompt != "" {
			cfg.Sessions.PurposePrompt = yc.Sessions.PurposePrompt
		}
	}

	if yc.Detection != nil {
		if yc.Detection.Strategy != "" {
			cfg.Detection.Strategy = yc.Detection.Strategy
		}
		if yc.Detection.JudgeModel != "" {
			cfg.Detection.JudgeModel = yc.Detection.JudgeModel
		}
		if yc.Detection.SimilarityThreshold != 0 {
			cfg.Detection.SimilarityThreshold = yc.Detection.SimilarityThreshold
		}
		if yc.Detection.Severity.CriticalBelow != 0 {
			cfg.Detection.Severity.CriticalBelow = yc.Detection.Severity.CriticalBelow
		}
		if yc.Detection.Severity.HighBelow != 0 {
			cfg.Detection.Severity.HighBelow = yc.Detection.Severity.HighBelow
		}
		if yc.Detection.Severity.MediumBelow != 0 {
			cfg.Detection.Severity.MediumBelow = yc.Detection.Severity.MediumBelow
		}
		if yc.Detection.Severity.SharedMediumAt != 0 {
			cfg.Detection.Severity.SharedMediumAt = yc.Detection.Severity.SharedMediumAt
		}
	}

	if yc.History != nil {
		cfg.History = *yc.History
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .docpolish/config.yaml in the
// specified directory, falling back to defaults when absent.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".docpolish", "config.yaml"))
}

// EnabledModels returns the names of enabled models. A non-empty preference
// list keeps its order and drops anything unknown or disabled; otherwise all
// enabled models are returned sorted by name.
func (c *Config) EnabledModels(preferred []string) []string {
	if len(preferred) > 0 {
		var out []string
		for _, name := range preferred {
			if mc, ok := c.Models[name]; ok && mc.Enabled {
				out = append(out, name)
			}
		}
		return out
	}
	var out []string
	for name, mc := range c.Models {
		if mc.Enabled {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	switch c.Sessions.Mode {
	case "auto-recreate", "fail-fast":
	default:
		return fmt.Errorf("invalid session mode %q, must be auto-recreate or fail-fast", c.Sessions.Mode)
	}
	if c.Sessions.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0, got %d", c.Sessions.MaxRetries)
	}
	if c.Sessions.RetryDelay < 0 {
		return fmt.Errorf("retry_delay must be >= 0, got %v", c.Sessions.RetryDelay)
	}

	switch c.Detection.Strategy {
	case "simple", "llm_judge":
	default:
		return fmt.Errorf("invalid detection strategy %q, must be simple or llm_judge", c.Detection.Strategy)
	}
	if c.Detection.Strategy == "llm_judge" {
		if _, ok := c.Models[c.Detection.JudgeModel]; !ok {
			return fmt.Errorf("judge model %q is not configured", c.Detection.JudgeModel)
		}
	}
	if t := c.Detection.SimilarityThreshold; t < 0 || t > 1 {
		return fmt.Errorf("similarity_threshold must be in [0,1], got %v", t)
	}
	sev := c.Detection.Severity
	if !(sev.CriticalBelow <= sev.HighBelow && sev.HighBelow <= sev.MediumBelow) {
		return fmt.Errorf("severity thresholds must be ordered: critical_below <= high_below <= medium_below")
	}
	if sev.SharedMediumAt < 2 {
		return fmt.Errorf("shared_medium_at must be >= 2, got %d", sev.SharedMediumAt)
	}

	for name, mc := range c.Models {
		if mc.Command == "" {
			return fmt.Errorf("model %q has no command", name)
		}
		if mc.Timeout <= 0 {
			return fmt.Errorf("model %q timeout must be > 0, got %v", name, mc.Timeout)
		}
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}

	return nil
}
