// Package config provides configuration loading for bizflowd.
//
// Configuration is loaded from a YAML file with environment variable
// overrides and hardcoded defaults. See LoadWithFile for precedence rules.
package config

import (
	"fmt"
	"time"
)

// Config holds the complete bizflowd configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	CORS      CORSConfig      `koanf:"cors"`
	Pipeline  PipelineConfig  `koanf:"pipeline"`
	LLM       LLMConfig       `koanf:"llm"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// CORSConfig holds cross-origin settings for the convert API.
type CORSConfig struct {
	AllowOrigins []string `koanf:"allow_origins"`
}

// PipelineConfig holds conversion loop settings.
type PipelineConfig struct {
	// MaxRetries bounds the planner/validator retry loop.
	MaxRetries int `koanf:"max_retries"`
	// WarningRetryLimit is the number of retries after which a
	// warnings-only issue set is accepted.
	WarningRetryLimit int `koanf:"warning_retry_limit"`
}

// LLMConfig holds optional LLM augmentation settings.
//
// Augmentation is additive: when disabled or failing, the rule-based
// pipeline produces the full result on its own.
type LLMConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Provider string `koanf:"provider"` // "openai", "gemini", "none"
	Model    string `koanf:"model"`
	APIKey   Secret `koanf:"api_key"`
	BaseURL  string `koanf:"base_url"`
	// Features restricts augmentation to the named stages
	// (reader, planner, generator). Empty means all stages.
	Features []string `koanf:"features"`
	Timeout  Duration `koanf:"timeout"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // "json" or "console"
	OTEL   bool   `koanf:"otel"`
}

// TelemetryConfig holds OpenTelemetry export settings. The richer
// runtime options (sampling, intervals) default in internal/telemetry.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Endpoint    string `koanf:"endpoint"`
	Protocol    string `koanf:"protocol"` // "grpc" or "http/protobuf"
	Insecure    bool   `koanf:"insecure"`
	ServiceName string `koanf:"service_name"`
}

// llmProviders are the accepted llm.provider values.
var llmProviders = map[string]bool{
	"openai": true,
	"gemini": true,
	"none":   true,
}

// logFormats are the accepted logging.format values.
var logFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return fmt.Errorf("server shutdown_timeout must be positive")
	}

	if c.Pipeline.MaxRetries < 0 {
		return fmt.Errorf("pipeline max_retries cannot be negative")
	}
	if c.Pipeline.WarningRetryLimit < 0 {
		return fmt.Errorf("pipeline warning_retry_limit cannot be negative")
	}

	if !llmProviders[c.LLM.Provider] {
		return fmt.Errorf("unknown llm provider: %q (expected openai, gemini or none)", c.LLM.Provider)
	}
	if c.LLM.Enabled && c.LLM.Provider == "none" {
		return fmt.Errorf("llm enabled but provider is none")
	}
	// A missing api_key is not a config error: augmentation degrades at
	// call time and the failure is recorded in the usage metadata.
	if c.LLM.Timeout.Duration() <= 0 {
		return fmt.Errorf("llm timeout must be positive")
	}

	if !logFormats[c.Logging.Format] {
		return fmt.Errorf("unknown logging format: %q (expected json or console)", c.Logging.Format)
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry endpoint is required when telemetry is enabled")
	}

	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}

	if len(cfg.CORS.AllowOrigins) == 0 {
		cfg.CORS.AllowOrigins = []string{"*"}
	}

	if cfg.Pipeline.MaxRetries == 0 {
		cfg.Pipeline.MaxRetries = 2
	}
	if cfg.Pipeline.WarningRetryLimit == 0 {
		cfg.Pipeline.WarningRetryLimit = 1
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "none"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = Duration(30 * time.Second)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.Protocol == "" {
		cfg.Telemetry.Protocol = "grpc"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "bizflowd"
	}
}
