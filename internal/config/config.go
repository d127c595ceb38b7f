package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	DefaultAnalysisModel = "gemini-1.5-flash"
	DefaultPromptModel   = "gemini-2.0-flash"
)

type Config struct {
	Host               string        `env:"HOST" envDefault:"0.0.0.0"`
	Port               string        `env:"PORT" envDefault:"7860"`
	ReadTimeout        time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	MaxRequestBodySize int64         `env:"MAX_REQUEST_BODY_SIZE" envDefault:"20971520"` // 20MB, Gemini's inline limit

	// GeminiAPIKey wins over GoogleAPIKey when both are set.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GoogleAPIKey string `env:"GOOGLE_API_KEY"`

	AnalysisModel string `env:"ANALYSIS_MODEL" envDefault:"gemini-1.5-flash"`
	PromptModel   string `env:"PROMPT_MODEL" envDefault:"gemini-2.0-flash"`
	Locale        string `env:"LOCALE" envDefault:"en"`

	TemplateDir string `env:"TEMPLATE_DIR" envDefault:"templates"`
	StaticDir   string `env:"STATIC_DIR" envDefault:"static"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// APIKey returns the provider key, empty when AI calls are disabled.
func (c *Config) APIKey() string {
	if key := strings.TrimSpace(c.GeminiAPIKey); key != "" {
		return key
	}
	return strings.TrimSpace(c.GoogleAPIKey)
}

func (c *Config) AIConfigured() bool {
	return c.APIKey() != ""
}

// LoadFromEnv reads an optional .env file, then the process environment.
func LoadFromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("READ_TIMEOUT must be > 0 (got %s)", c.ReadTimeout)
	}
	if strings.TrimSpace(c.AnalysisModel) == "" || strings.TrimSpace(c.PromptModel) == "" {
		return fmt.Errorf("ANALYSIS_MODEL and PROMPT_MODEL must not be empty")
	}
	return nil
}
