package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jgoulah/energyviz/internal/dateindex"
)

// Config holds the application configuration
type Config struct {
	API         APIConfig       `yaml:"api"`
	Dashboard   DashboardConfig `yaml:"dashboard"`
	Server      ServerConfig    `yaml:"server,omitempty"`
	MQTT        MQTTConfig      `yaml:"mqtt,omitempty"`
	SessionFile string          `yaml:"session_file,omitempty"` // Where the access token is kept (fallback: session.yaml)
}

// APIConfig describes the energy API
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`                  // e.g., "http://localhost:8000"
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"` // Per-request timeout (fallback: 30)
}

// DashboardConfig holds the fixed date window and default selection
type DashboardConfig struct {
	StartDate        string `yaml:"start_date,omitempty"`   // First day of the date index
	EndDate          string `yaml:"end_date,omitempty"`     // Last day of the date index
	RangePolicy      string `yaml:"range_policy,omitempty"` // "window" or "full"
	WindowStart      string `yaml:"window_start,omitempty"`
	WindowEnd        string `yaml:"window_end,omitempty"`
	FilterByLocation *bool  `yaml:"filter_by_location,omitempty"`
}

// ServerConfig holds HTTP dashboard settings
type ServerConfig struct {
	Addr            string   `yaml:"addr,omitempty"`
	CORSOrigins     []string `yaml:"cors_origins,omitempty"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds,omitempty"`
}

// MQTTConfig holds MQTT broker configuration
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // e.g., "localhost:1883"
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"`
}

const (
	defaultBaseURL     = "http://localhost:8000"
	defaultStartDate   = "2023-01-01"
	defaultEndDate     = "2025-04-08"
	defaultWindowStart = "2025-01-01"
	defaultWindowEnd   = "2025-04-08"
	defaultAddr        = ":8080"
	defaultTopicPrefix = "energyviz"
	defaultSessionFile = "session.yaml"
)

// Load reads the config file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if _, err := dateindex.ParsePolicy(cfg.Dashboard.RangePolicy); err != nil {
		return nil, fmt.Errorf("dashboard.range_policy: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// GetBaseURL returns the API base URL with a local default
func (c *Config) GetBaseURL() string {
	if c.API.BaseURL == "" {
		return defaultBaseURL
	}
	return c.API.BaseURL
}

// GetTimeout returns the per-request API timeout, 30s by default
func (c *Config) GetTimeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// GetSessionFile returns the session file path
func (c *Config) GetSessionFile() string {
	if c.SessionFile == "" {
		return defaultSessionFile
	}
	return c.SessionFile
}

// GetDateBounds returns the first and last day of the date index
func (c *Config) GetDateBounds() (string, string) {
	start, end := c.Dashboard.StartDate, c.Dashboard.EndDate
	if start == "" {
		start = defaultStartDate
	}
	if end == "" {
		end = defaultEndDate
	}
	return start, end
}

// GetWindow returns the "interesting" default window
func (c *Config) GetWindow() (string, string) {
	start, end := c.Dashboard.WindowStart, c.Dashboard.WindowEnd
	if start == "" {
		start = defaultWindowStart
	}
	if end == "" {
		end = defaultWindowEnd
	}
	return start, end
}

// GetRangePolicy returns the default range policy (window unless configured)
func (c *Config) GetRangePolicy() dateindex.Policy {
	p, err := dateindex.ParsePolicy(c.Dashboard.RangePolicy)
	if err != nil {
		return dateindex.PolicyWindow
	}
	return p
}

// GetFilterByLocation reports whether location subsets apply to the line chart
func (c *Config) GetFilterByLocation() bool {
	if c.Dashboard.FilterByLocation == nil {
		return true
	}
	return *c.Dashboard.FilterByLocation
}

// BuildDateIndex builds the date index and the configured default range
func (c *Config) BuildDateIndex() (dateindex.Index, dateindex.Range, error) {
	start, end := c.GetDateBounds()
	ix, err := dateindex.Parse(start, end)
	if err != nil {
		return nil, dateindex.Range{}, fmt.Errorf("building date index: %w", err)
	}
	windowStart, windowEnd := c.GetWindow()
	return ix, ix.DefaultRange(c.GetRangePolicy(), windowStart, windowEnd), nil
}

// GetAddr returns the HTTP listen address
func (c *Config) GetAddr() string {
	if c.Server.Addr == "" {
		return defaultAddr
	}
	return c.Server.Addr
}

// GetCacheTTL returns how long fetched records are served before refetching
func (c *Config) GetCacheTTL() time.Duration {
	if c.Server.CacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Server.CacheTTLSeconds) * time.Second
}

// GetCORSOrigins returns the allowed origins, "*" when none are configured
func (c *Config) GetCORSOrigins() []string {
	if len(c.Server.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return c.Server.CORSOrigins
}

// GetTopicPrefix returns the MQTT topic prefix
func (c *Config) GetTopicPrefix() string {
	if c.MQTT.TopicPrefix == "" {
		return defaultTopicPrefix
	}
	return c.MQTT.TopicPrefix
}
