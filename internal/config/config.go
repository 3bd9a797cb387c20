// Package config holds t5gmcp runtime settings.
//
// Settings come from three layers, later layers winning: built-in
// defaults, an optional YAML file, and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Transport selects how the MCP server talks to clients.
type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
)

// Environment variables read by Load.
const (
	EnvDashboardAPI = "DASHBOARD_API"
	EnvMCPURL       = "MCP_URL"
	EnvChatModel    = "CHAT_MODEL"
	EnvDataDir      = "T5G_DATA_DIR"
	EnvLogLevel     = "T5G_LOG_LEVEL"
)

// Config is the full runtime configuration.
type Config struct {
	DashboardAPI      string        `yaml:"dashboard_api"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	RateLimit         float64       `yaml:"rate_limit"`
	RateBurst         int           `yaml:"rate_burst"`
	Transport         Transport     `yaml:"transport"`
	ListenAddr        string        `yaml:"listen_addr"`
	EndpointPath      string        `yaml:"endpoint_path"`
	MetricsPath       string        `yaml:"metrics_path"`
	DataDir           string        `yaml:"data_dir"`
	SnapshotRetention int           `yaml:"snapshot_retention"`
	LogLevel          string        `yaml:"log_level"`
	Chat              ChatConfig    `yaml:"chat"`
}

// ChatConfig configures the chat and get commands.
type ChatConfig struct {
	MCPURL string `yaml:"mcp_url"`
	Model  string `yaml:"model"`
	NoLLM  bool   `yaml:"no_llm"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		RequestTimeout:    30 * time.Second,
		RateLimit:         10,
		RateBurst:         6,
		Transport:         TransportStdio,
		ListenAddr:        ":8000",
		EndpointPath:      "/mcp",
		MetricsPath:       "/metrics",
		DataDir:           filepath.Join(home, ".t5gmcp"),
		SnapshotRetention: 50,
		LogLevel:          "info",
		Chat: ChatConfig{
			MCPURL: "http://localhost:8000/mcp",
			Model:  "gemini-2.0-flash",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnv(&cfg, os.LookupEnv)
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDashboardAPI); ok && v != "" {
		cfg.DashboardAPI = v
	}
	if v, ok := lookup(EnvMCPURL); ok && v != "" {
		cfg.Chat.MCPURL = v
	}
	if v, ok := lookup(EnvChatModel); ok && v != "" {
		cfg.Chat.Model = v
	}
	if v, ok := lookup(EnvDataDir); ok && v != "" {
		cfg.DataDir = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
}

// ErrNoDashboard is returned when the dashboard API base URL is unset.
var ErrNoDashboard = errors.New("dashboard_api is not set (use " + EnvDashboardAPI + " or the config file)")

// ValidateServer checks the settings the MCP server needs.
func (c Config) ValidateServer() error {
	if strings.TrimSpace(c.DashboardAPI) == "" {
		return ErrNoDashboard
	}
	u, err := url.Parse(c.DashboardAPI)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("dashboard_api %q is not an absolute URL", c.DashboardAPI)
	}
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("transport %q is not one of %s, %s", c.Transport, TransportStdio, TransportHTTP)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %g", c.RateLimit)
	}
	if c.Transport == TransportHTTP {
		if !strings.HasPrefix(c.EndpointPath, "/") {
			return fmt.Errorf("endpoint_path %q must start with /", c.EndpointPath)
		}
		if c.MetricsPath != "" && !strings.HasPrefix(c.MetricsPath, "/") {
			return fmt.Errorf("metrics_path %q must start with /", c.MetricsPath)
		}
	}
	return nil
}
