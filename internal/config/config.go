package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	LLM      LLMConfig      `json:"llm"`
	Models   ModelsConfig   `json:"models"`
	Logging  LoggingConfig  `json:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Addr            string `json:"addr"             env:"SERVER_ADDR"      envDefault:":8000"`
	ReadTimeout     string `json:"read_timeout"     env:"READ_TIMEOUT"     envDefault:"10s"`
	WriteTimeout    string `json:"write_timeout"    env:"WRITE_TIMEOUT"    envDefault:"30s"`
	ShutdownTimeout string `json:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DatabaseConfig represents the MySQL connection configuration
type DatabaseConfig struct {
	Host     string `json:"host"     env:"DB_HOST"     envDefault:"127.0.0.1"`
	Port     int    `json:"port"     env:"DB_PORT"     envDefault:"3307"`
	Name     string `json:"name"     env:"DB_NAME"     envDefault:"SADOP_BDD"`
	User     string `json:"user"     env:"DB_USER"     envDefault:"sadop_user"`
	Password string `json:"-"        env:"DB_PASSWORD" envDefault:""`
	Timeout  string `json:"timeout"  env:"DB_TIMEOUT"  envDefault:"5s"`
}

// DSN returns the go-sql-driver/mysql data source name
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&timeout=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.Timeout)
}

// LLMConfig represents the remote language-model service configuration
type LLMConfig struct {
	BaseURL string `json:"base_url" env:"LLM_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	APIKey  string `json:"-"        env:"LLM_API_KEY"`
	Model   string `json:"model"    env:"LLM_MODEL"    envDefault:"llama-3.3-70b-versatile"`
	Timeout string `json:"timeout"  env:"LLM_TIMEOUT"  envDefault:"8s"`
}

// ModelsConfig represents the frozen model artifact locations
type ModelsConfig struct {
	ClassifierPath string `json:"classifier_path" env:"MODEL_CLASSIFIER_PATH" envDefault:"models/slow_query_classifier.onnx"`
	PolicyPath     string `json:"policy_path"     env:"MODEL_POLICY_PATH"     envDefault:"models/index_policy.onnx"`
	RuntimeLib     string `json:"runtime_lib"     env:"MODEL_RUNTIME_LIB"     envDefault:"models/libonnxruntime.so"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"  env:"LOG_LEVEL"  envDefault:"info"`  // debug, info, warn, error
	Format string `json:"format" env:"LOG_FORMAT" envDefault:"json"`  // json, console
}

// Load loads configuration from environment variables with defaults applied
func Load() (*Config, error) {
	config := &Config{}

	if err := env.ParseWithOptions(config, env.Options{
		Prefix: "SADOP_",
	}); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LLMTimeout returns the parsed outbound LLM call timeout
func (c *Config) LLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 8 * time.Second
	}

	return d
}

// validateConfig validates the configuration for common errors
func validateConfig(config *Config) error {
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf(
			"invalid log level: %s (must be debug, info, warn, or error)",
			config.Logging.Level,
		)
	}

	validLogFormats := map[string]bool{
		"json": true, "console": true,
	}
	if !validLogFormats[strings.ToLower(config.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be json or console)", config.Logging.Format)
	}

	for name, value := range map[string]string{
		"server read timeout":     config.Server.ReadTimeout,
		"server write timeout":    config.Server.WriteTimeout,
		"server shutdown timeout": config.Server.ShutdownTimeout,
		"database timeout":        config.Database.Timeout,
		"llm timeout":             config.LLM.Timeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %s", name, value)
		}
	}

	if config.Database.Port <= 0 {
		return fmt.Errorf("database port must be positive: %d", config.Database.Port)
	}

	if config.Models.ClassifierPath == "" || config.Models.PolicyPath == "" {
		return fmt.Errorf("model artifact paths must not be empty")
	}

	return nil
}
