package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the loader reads
const EnvPrefix = "CANVASDL_"

// Config holds all configuration options for the course downloader
type Config struct {
	Canvas   CanvasConfig   `yaml:"canvas" json:"canvas"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	Download DownloadConfig `yaml:"download" json:"download"`
	Retry    RetryConfig    `yaml:"retry" json:"retry"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// CanvasConfig holds the remote API settings
type CanvasConfig struct {
	APIURL         string        `yaml:"api_url" json:"api_url"`
	APIKey         string        `yaml:"api_key" json:"api_key"`
	PerPage        int           `yaml:"per_page" json:"per_page"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// OutputConfig holds the local directory settings
type OutputConfig struct {
	SavePath string `yaml:"save_path" json:"save_path"`
	// SkipList is the file recording completed course ids. Empty means the
	// default location in the user data directory.
	SkipList string `yaml:"skip_list" json:"skip_list"`
}

// DownloadConfig holds file transfer settings
type DownloadConfig struct {
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	MaxFileSize int64         `yaml:"max_file_size" json:"max_file_size"`
}

// RetryConfig controls retries of transient API failures
type RetryConfig struct {
	Enabled        bool          `yaml:"enabled" json:"enabled"`
	MaxAttempts    int           `yaml:"max_attempts" json:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff" json:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff" json:"max_backoff"`
	Multiplier     float64       `yaml:"multiplier" json:"multiplier"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

// legacyCredentials is the flat creds.yaml layout of earlier releases
type legacyCredentials struct {
	APIURL   string `yaml:"API_URL"`
	Key      string `yaml:"KEY"`
	SavePath string `yaml:"SAVE_PATH"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Canvas: CanvasConfig{
			PerPage:        100,
			RequestTimeout: 30 * time.Second,
		},
		Output: OutputConfig{
			SavePath: "./courses",
		},
		Download: DownloadConfig{
			Timeout:     10 * time.Minute,
			MaxFileSize: 0, // unlimited
		},
		Retry: RetryConfig{
			Enabled:        true,
			MaxAttempts:    3,
			InitialBackoff: time.Second,
			MaxBackoff:     30 * time.Second,
			Multiplier:     2.0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromEnv overrides values with CANVASDL_* environment variables
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv(EnvPrefix + "API_URL"); v != "" {
		c.Canvas.APIURL = v
	}
	if v := os.Getenv(EnvPrefix + "API_KEY"); v != "" {
		c.Canvas.APIKey = v
	}
	if v := os.Getenv(EnvPrefix + "SAVE_PATH"); v != "" {
		c.Output.SavePath = v
	}
	if v := os.Getenv(EnvPrefix + "SKIP_LIST"); v != "" {
		c.Output.SkipList = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvPrefix + "MAX_FILE_SIZE"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %sMAX_FILE_SIZE: %w", EnvPrefix, err)
		}
		c.Download.MaxFileSize = size
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file. Both the sectioned
// layout and the flat creds.yaml layout are understood.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	var legacy legacyCredentials
	if err := yaml.Unmarshal(data, &legacy); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if legacy.APIURL != "" {
		c.Canvas.APIURL = legacy.APIURL
	}
	if legacy.Key != "" {
		c.Canvas.APIKey = legacy.Key
	}
	if legacy.SavePath != "" {
		c.Output.SavePath = legacy.SavePath
	}

	return nil
}

// findConfigFile searches for a config file in standard locations
func findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"canvasdl.yaml",
		".canvasdl.yaml",
		"creds.yaml",
		filepath.Join(home, ".config", "canvasdl", "config.yaml"),
		filepath.Join(home, ".canvasdl.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// Validate checks if the configuration is usable. Credentials are not
// checked here because they may still come from the credential store.
func (c *Config) Validate() error {
	var errs []error

	if c.Output.SavePath == "" {
		errs = append(errs, errors.New("save path is required"))
	}
	if c.Canvas.PerPage <= 0 || c.Canvas.PerPage > 100 {
		errs = append(errs, errors.New("per_page must be between 1 and 100"))
	}
	if c.Canvas.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.MaxFileSize < 0 {
		errs = append(errs, errors.New("max file size cannot be negative"))
	}
	if c.Retry.MaxAttempts < 0 || c.Retry.MaxAttempts > 10 {
		errs = append(errs, errors.New("max attempts must be between 0 and 10"))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}
	if f := strings.ToLower(c.Logging.Format); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("invalid log format %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// ValidateCredentials checks that the remote API can be addressed
func (c *Config) ValidateCredentials() error {
	var errs []error
	if c.Canvas.APIURL == "" {
		errs = append(errs, errors.New("Canvas API URL is required"))
	} else if !strings.HasPrefix(c.Canvas.APIURL, "http://") && !strings.HasPrefix(c.Canvas.APIURL, "https://") {
		errs = append(errs, fmt.Errorf("Canvas API URL %q must start with http:// or https://", c.Canvas.APIURL))
	}
	if c.Canvas.APIKey == "" {
		errs = append(errs, errors.New("Canvas API key is required"))
	}
	return errors.Join(errs...)
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["api-url"].(string); ok && v != "" {
		c.Canvas.APIURL = v
	}
	if v, ok := flags["api-key"].(string); ok && v != "" {
		c.Canvas.APIKey = v
	}
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Output.SavePath = v
	}
	if v, ok := flags["skip-list"].(string); ok && v != "" {
		c.Output.SkipList = v
	}
	if v, ok := flags["max-file-size"].(int64); ok && v > 0 {
		c.Download.MaxFileSize = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".canvasdl.env"))

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg.MergeCommandLineFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
