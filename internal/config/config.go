package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/afroash/plant-monitor/internal/models"
)

// Source modes. In mock mode readings are synthesized locally; esp32 polls
// the device backend over HTTP; websocket is a documented alternative
// transport that is not part of the active polling flow.
const (
	ModeMock      = "mock"
	ModeESP32     = "esp32"
	ModeWebSocket = "websocket"
)

// Config holds all configuration for the dashboard process. It is read once
// at startup and immutable for the session.
type Config struct {
	Source     SourceConfig      `yaml:"source"`
	Backend    BackendConfig     `yaml:"backend"`
	History    HistoryConfig     `yaml:"history"`
	Thresholds models.Thresholds `yaml:"thresholds"`
	Mock       MockConfig        `yaml:"mock"`
	WebSocket  WebSocketConfig   `yaml:"websocket"`
	Server     ServerConfig      `yaml:"server"`
	Logging    LoggingConfig     `yaml:"logging"`
}

// SourceConfig selects where readings come from and how often.
type SourceConfig struct {
	Mode           string        `yaml:"mode"`
	UpdateInterval time.Duration `yaml:"update_interval"`
}

// BackendConfig contains settings for the device's HTTP endpoint.
type BackendConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// HistoryConfig bounds the in-memory chart history.
type HistoryConfig struct {
	Capacity int `yaml:"capacity"`
}

// MockConfig contains the default reading and the calibration ranges the
// mock generator draws from.
type MockConfig struct {
	SoilDefault  int `yaml:"soil_default"`
	LightDefault int `yaml:"light_default"`
	SoilMin      int `yaml:"soil_min"`
	SoilMax      int `yaml:"soil_max"`
	LightMin     int `yaml:"light_min"`
	LightMax     int `yaml:"light_max"`
}

// WebSocketConfig contains settings for the alternative push transport.
type WebSocketConfig struct {
	URL               string        `yaml:"url"`
	ReconnectInterval time.Duration `yaml:"reconnect_interval"`
	MaxRetries        int           `yaml:"max_retries"`
}

// ServerConfig contains settings for the dashboard's own HTTP listener.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadConfig loads configuration from a YAML file, applies defaults and
// environment overrides, and validates the result.
func LoadConfig(path string) (*Config, error) {
	yamlData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(yamlData, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.ApplyDefaults()
	cfg.OverrideFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a fully defaulted configuration in mock mode.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults sets default values for any unset fields
func (c *Config) ApplyDefaults() {
	if c.Source.Mode == "" {
		c.Source.Mode = ModeMock
	}
	if c.Source.UpdateInterval == 0 {
		c.Source.UpdateInterval = 5 * time.Second
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 15 * time.Second
	}
	if c.History.Capacity == 0 {
		c.History.Capacity = 30
	}
	if c.Thresholds == (models.Thresholds{}) {
		c.Thresholds = models.DefaultThresholds()
	}
	if c.Mock.SoilDefault == 0 {
		c.Mock.SoilDefault = 2067
	}
	if c.Mock.LightDefault == 0 {
		c.Mock.LightDefault = 2858
	}
	if c.Mock.SoilMax == 0 {
		c.Mock.SoilMin = 1200
		c.Mock.SoilMax = 3200
	}
	if c.Mock.LightMax == 0 {
		c.Mock.LightMin = 800
		c.Mock.LightMax = 3800
	}
	if c.WebSocket.ReconnectInterval == 0 {
		c.WebSocket.ReconnectInterval = 3 * time.Second
	}
	if c.WebSocket.MaxRetries == 0 {
		c.WebSocket.MaxRetries = 5
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// OverrideFromEnv overrides config values from environment variables
func (c *Config) OverrideFromEnv() {
	if v := os.Getenv("PLANT_SOURCE_MODE"); v != "" {
		c.Source.Mode = v
	}
	if v := os.Getenv("PLANT_BACKEND_ENDPOINT"); v != "" {
		c.Backend.Endpoint = v
	}
	if v := os.Getenv("PLANT_WEBSOCKET_URL"); v != "" {
		c.WebSocket.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Source.Mode {
	case ModeMock, ModeESP32, ModeWebSocket:
	default:
		return fmt.Errorf("source mode must be one of mock, esp32, websocket; got %q", c.Source.Mode)
	}
	if c.Source.UpdateInterval < time.Second {
		return fmt.Errorf("update interval must be at least 1 second")
	}
	if c.Source.Mode == ModeESP32 {
		if c.Backend.Endpoint == "" {
			return fmt.Errorf("backend endpoint is required in esp32 mode")
		}
		if !strings.HasPrefix(c.Backend.Endpoint, "http://") && !strings.HasPrefix(c.Backend.Endpoint, "https://") {
			return fmt.Errorf("backend endpoint must start with http:// or https://")
		}
	}
	if c.Source.Mode == ModeWebSocket && c.WebSocket.URL == "" {
		return fmt.Errorf("websocket URL is required in websocket mode")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}
	if c.History.Capacity <= 0 {
		return fmt.Errorf("history capacity must be positive")
	}
	if c.Thresholds.SoilGood >= c.Thresholds.SoilOkay {
		return fmt.Errorf("soil good bound must be below soil okay bound")
	}
	if c.Thresholds.LightOkay >= c.Thresholds.LightGood {
		return fmt.Errorf("light okay bound must be below light good bound")
	}
	if c.Mock.SoilMin > c.Mock.SoilMax || c.Mock.LightMin > c.Mock.LightMax {
		return fmt.Errorf("mock calibration range is inverted")
	}
	if c.WebSocket.MaxRetries < 0 {
		return fmt.Errorf("websocket max retries must not be negative")
	}
	return nil
}

// String returns a readable summary of the effective configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Interval: %s, Endpoint: %s, Timeout: %s, HistoryCapacity: %d}",
		c.Source.Mode,
		c.Source.UpdateInterval,
		c.Backend.Endpoint,
		c.Backend.Timeout,
		c.History.Capacity,
	)
}
