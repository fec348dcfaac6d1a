package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AWX       AWXConfig  `yaml:"awx"`
	Poll      PollConfig `yaml:"poll"`
	HTTP      HTTPConfig `yaml:"http"`
	Log       LogConfig  `yaml:"log"`
	StateFile string     `yaml:"state_file"`
}

// AWXConfig holds the form defaults used until a connect succeeds and the
// store takes over.
type AWXConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
}

// PollConfig holds the refresh cadence. The page size is fixed by the client.
type PollConfig struct {
	Interval    time.Duration `yaml:"interval"`
	AutoRefresh bool          `yaml:"auto_refresh"`
}

type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

func defaultConfig() *Config {
	dir := stateDir()
	return &Config{
		AWX: AWXConfig{
			URL:      "http://localhost:8080",
			Username: "admin",
		},
		Poll: PollConfig{
			Interval:    5 * time.Second,
			AutoRefresh: true,
		},
		HTTP: HTTPConfig{
			Timeout: 10 * time.Second,
		},
		Log: LogConfig{
			File:  filepath.Join(dir, "awx-monitor.log"),
			Level: "info",
		},
		StateFile: filepath.Join(dir, "state.yaml"),
	}
}

// Load reads path over the defaults and applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}
	cfg = defaultConfig()
	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.AWX.URL = String("AWX_URL", c.AWX.URL)
	c.AWX.Username = String("AWX_USERNAME", c.AWX.Username)
	c.Poll.Interval = Duration("AWX_MONITOR_INTERVAL", c.Poll.Interval)
	c.Poll.AutoRefresh = Bool("AWX_MONITOR_AUTO_REFRESH", c.Poll.AutoRefresh)
	c.StateFile = String("AWX_MONITOR_STATE", c.StateFile)
	c.Log.Level = String("AWX_MONITOR_LOG_LEVEL", c.Log.Level)
}

// normalize replaces nonsensical values with the defaults.
func (c *Config) normalize() {
	d := defaultConfig()
	if c.Poll.Interval <= 0 {
		c.Poll.Interval = d.Poll.Interval
	}
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = d.HTTP.Timeout
	}
	if c.StateFile == "" {
		c.StateFile = d.StateFile
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// DefaultPath is where the config file is looked for when --config is not
// given.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "awx-monitor", "config.yaml")
	}
	return "config.yaml"
}

func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "awx-monitor")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "awx-monitor")
	}
	return "."
}
