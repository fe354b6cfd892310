package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "STOCKPULSE_CONFIG"
	geminiAPIKeyEnv    = "GEMINI_API_KEY"
	geminiModelEnv     = "GEMINI_MODEL"
	subredditEnv       = "STOCKPULSE_SUBREDDIT"
	serverPortEnv      = "STOCKPULSE_PORT"
	fetchLimitEnv      = "STOCKPULSE_FETCH_LIMIT"
	intervalSecondsEnv = "STOCKPULSE_INTERVAL_SECONDS"
	pacingSecondsEnv   = "STOCKPULSE_PACING_SECONDS"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Server   ServerConfig   `yaml:"server"`
	Reddit   RedditConfig   `yaml:"reddit"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig describes the HTTP listener for the read-only API.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// RedditConfig wires the content-source collaborator.
type RedditConfig struct {
	BaseURL   string `yaml:"baseUrl"`
	Subreddit string `yaml:"subreddit"`
	UserAgent string `yaml:"userAgent"`
}

// AnalyzerConfig defines how to contact the Gemini API and which response
// schema the deployment expects back.
type AnalyzerConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
	Prompt   string `yaml:"prompt"`
	Schema   string `yaml:"schema"`
}

// PipelineConfig sets the cadence and batch size of analysis cycles.
type PipelineConfig struct {
	FetchLimit      int `yaml:"fetchLimit"`
	IntervalSeconds int `yaml:"intervalSeconds"`
	PacingSeconds   int `yaml:"pacingSeconds"`
}

// Interval is the wait between consecutive analysis cycles.
func (p PipelineConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

// PacingDelay is the wait between consecutive analyzer calls within a cycle.
func (p PipelineConfig) PacingDelay() time.Duration {
	return time.Duration(p.PacingSeconds) * time.Second
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

// Validate reports configuration problems that must stop startup before the
// scheduler ever runs.
func (c Config) Validate() error {
	if c.Analyzer.APIKey == "" {
		return fmt.Errorf("missing %s: the analyzer credential is required", geminiAPIKeyEnv)
	}
	if c.Pipeline.FetchLimit <= 0 {
		return fmt.Errorf("pipeline fetch limit must be positive, got %d", c.Pipeline.FetchLimit)
	}
	if c.Pipeline.IntervalSeconds <= 0 {
		return fmt.Errorf("pipeline interval must be positive, got %d", c.Pipeline.IntervalSeconds)
	}
	if c.Pipeline.PacingSeconds < 0 {
		return fmt.Errorf("pacing delay must not be negative, got %d", c.Pipeline.PacingSeconds)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Analyzer.APIKey = v
	}

	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Analyzer.Model = v
	}

	if v := os.Getenv(subredditEnv); v != "" {
		c.Reddit.Subreddit = v
	}

	if v := envInt(serverPortEnv); v > 0 {
		c.Server.Port = v
	}

	if v := envInt(fetchLimitEnv); v > 0 {
		c.Pipeline.FetchLimit = v
	}

	if v := envInt(intervalSecondsEnv); v > 0 {
		c.Pipeline.IntervalSeconds = v
	}

	if v := envInt(pacingSecondsEnv); v >= 0 {
		c.Pipeline.PacingSeconds = v
	}
}

func envInt(key string) int {
	raw := os.Getenv(key)
	if raw == "" {
		return -1
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, ignoring", key, raw)
		return -1
	}
	return value
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Server.Host != "" {
		base.Server.Host = override.Server.Host
	}
	if override.Server.Port != 0 {
		base.Server.Port = override.Server.Port
	}

	if override.Reddit.BaseURL != "" {
		base.Reddit.BaseURL = override.Reddit.BaseURL
	}
	if override.Reddit.Subreddit != "" {
		base.Reddit.Subreddit = override.Reddit.Subreddit
	}
	if override.Reddit.UserAgent != "" {
		base.Reddit.UserAgent = override.Reddit.UserAgent
	}

	if override.Analyzer.Endpoint != "" {
		base.Analyzer.Endpoint = override.Analyzer.Endpoint
	}
	if override.Analyzer.Model != "" {
		base.Analyzer.Model = override.Analyzer.Model
	}
	if override.Analyzer.APIKey != "" {
		base.Analyzer.APIKey = override.Analyzer.APIKey
	}
	if override.Analyzer.Prompt != "" {
		base.Analyzer.Prompt = override.Analyzer.Prompt
	}
	if override.Analyzer.Schema != "" {
		base.Analyzer.Schema = override.Analyzer.Schema
	}

	if override.Pipeline.FetchLimit != 0 {
		base.Pipeline.FetchLimit = override.Pipeline.FetchLimit
	}
	if override.Pipeline.IntervalSeconds != 0 {
		base.Pipeline.IntervalSeconds = override.Pipeline.IntervalSeconds
	}
	if override.Pipeline.PacingSeconds != 0 {
		base.Pipeline.PacingSeconds = override.Pipeline.PacingSeconds
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{Host: "0.0.0.0", Port: 8080},
		Reddit: RedditConfig{
			BaseURL:   "https://www.reddit.com",
			Subreddit: "wallstreetbets",
			UserAgent: "stockpulse/1.0",
		},
		Analyzer: AnalyzerConfig{
			Endpoint: "https://generativelanguage.googleapis.com/v1beta",
			Model:    "gemini-1.5-flash-latest",
			APIKey:   "",
			Schema:   "report",
		},
		Pipeline: PipelineConfig{
			FetchLimit:      15,
			IntervalSeconds: 7200,
			PacingSeconds:   6,
		},
	}
}
