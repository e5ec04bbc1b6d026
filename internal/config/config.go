package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"

	DefaultTemperature = 0.6
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Insight   InsightConfig   `yaml:"insight"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type UpstreamConfig struct {
	ChartBaseURL   string        `yaml:"chart_base_url"`
	SummaryBaseURL string        `yaml:"summary_base_url"`
	Range          string        `yaml:"range"`
	Interval       string        `yaml:"interval"`
	Modules        []string      `yaml:"modules"`
	Timeout        time.Duration `yaml:"timeout"`
	LookupDeadline time.Duration `yaml:"lookup_deadline"`
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	RateLimit      float64       `yaml:"rate_limit"` // requests/sec; 0 disables the limiter
	Proxy          string        `yaml:"proxy"`
}

// InsightConfig is passed explicitly to the insight service; an empty
// APIKey means the feature is unavailable.
type InsightConfig struct {
	Provider    string        `yaml:"provider"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature *float32      `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// SamplingTemperature returns the configured temperature. An explicit zero is
// kept; unset means DefaultTemperature.
func (c InsightConfig) SamplingTemperature() float32 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

type LogConfig struct {
	Env  string `yaml:"env"`
	File string `yaml:"file"`
}

type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Load reads config from a YAML file, then .env, then applies environment
// variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the process
	_ = godotenv.Load()

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Upstream.Proxy = v
	}
	if v := os.Getenv("UPSTREAM_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Upstream.MaxAttempts = n
		}
	}
	if v := os.Getenv("INSIGHT_PROVIDER"); v != "" {
		c.Insight.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("INSIGHT_MODEL"); v != "" {
		c.Insight.Model = v
	}
	if v := os.Getenv("INSIGHT_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			t := float32(f)
			c.Insight.Temperature = &t
		}
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.Insight.BaseURL = v
	}
	if c.Insight.APIKey == "" {
		c.Insight.APIKey = os.Getenv(APIKeyEnv(c.Insight.Provider))
	}
	if v := os.Getenv("INSIGHT_API_KEY"); v != "" {
		c.Insight.APIKey = v
	}
	if v := os.Getenv("LOG_ENV"); v != "" {
		c.Log.Env = v
	} else if v := os.Getenv("APP_ENV"); v != "" && c.Log.Env == "" {
		c.Log.Env = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("TELEMETRY_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Telemetry.Enabled = b
		}
	}
}

// APIKeyEnv names the environment variable holding the provider credential.
func APIKeyEnv(provider string) string {
	switch provider {
	case ProviderClaude:
		return "ANTHROPIC_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}

	u := &c.Upstream
	if u.ChartBaseURL == "" {
		u.ChartBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	}
	if u.SummaryBaseURL == "" {
		u.SummaryBaseURL = "https://query1.finance.yahoo.com/v10/finance/quoteSummary"
	}
	if u.Range == "" {
		u.Range = "1y"
	}
	if u.Interval == "" {
		u.Interval = "1d"
	}
	if len(u.Modules) == 0 {
		u.Modules = []string{"defaultKeyStatistics", "financialData", "summaryDetail", "assetProfile"}
	}
	if u.Timeout == 0 {
		u.Timeout = 10 * time.Second
	}
	if u.LookupDeadline == 0 {
		u.LookupDeadline = 20 * time.Second
	}
	if u.MaxAttempts == 0 {
		u.MaxAttempts = 3
	}
	if u.InitialBackoff == 0 {
		u.InitialBackoff = 200 * time.Millisecond
	}
	if u.MaxBackoff == 0 {
		u.MaxBackoff = 2 * time.Second
	}

	in := &c.Insight
	if in.Provider == "" {
		in.Provider = ProviderOpenAI
	}
	if in.Model == "" {
		switch in.Provider {
		case ProviderClaude:
			in.Model = "claude-3-5-haiku-latest"
		case ProviderGemini:
			in.Model = "gemini-2.0-flash"
		default:
			in.Model = "gpt-4o-mini"
		}
	}
	if in.MaxTokens == 0 {
		in.MaxTokens = 400
	}
	if in.Temperature == nil {
		t := float32(DefaultTemperature)
		in.Temperature = &t
	}
	if in.Timeout == 0 {
		in.Timeout = 30 * time.Second
	}

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "stock-insight"
	}
	if c.Telemetry.SampleRatio == 0 {
		c.Telemetry.SampleRatio = 1.0
	}
}

// Validate checks values that would make the server misbehave. A missing
// insight API key is reported per request, not here.
func (c *Config) Validate() error {
	if p, err := strconv.Atoi(c.Server.Port); err != nil || p <= 0 {
		return fmt.Errorf("server.port must be a positive integer, got %q", c.Server.Port)
	}
	switch c.Insight.Provider {
	case ProviderOpenAI, ProviderClaude, ProviderGemini:
	default:
		return fmt.Errorf("insight.provider %q is not supported", c.Insight.Provider)
	}
	if c.Upstream.MaxAttempts < 1 {
		return fmt.Errorf("upstream.max_attempts must be at least 1")
	}
	if c.Upstream.RateLimit < 0 {
		return fmt.Errorf("upstream.rate_limit must not be negative")
	}
	if t := c.Insight.SamplingTemperature(); t < 0 || t > 2 {
		return fmt.Errorf("insight.temperature must be within [0,2]")
	}
	if c.Upstream.LookupDeadline <= 0 {
		return fmt.Errorf("upstream.lookup_deadline must be positive")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry.sample_ratio must be within [0,1]")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
