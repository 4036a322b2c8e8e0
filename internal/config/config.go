// Package config loads pulse configuration with viper.
//
// Precedence (highest first): environment (PULSE_*, then the provider's own
// API key variable), project .pulse/config.yaml, ~/.pulse/config.yaml,
// built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Oracle providers
const (
	OracleAnthropic = "anthropic"
	OracleGemini    = "gemini"
)

// Notification providers
const (
	NotifyWebhook = "webhook"
	NotifyLog     = "log"
)

// Config is the typed view of the effective configuration.
type Config struct {
	DBPath    string          `mapstructure:"db_path"`
	Principal string          `mapstructure:"principal"`
	Org       OrgConfig       `mapstructure:"org"`
	Oracle    OracleConfig    `mapstructure:"oracle"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Timeouts  TimeoutConfig   `mapstructure:"timeouts"`
	Log       LogConfig       `mapstructure:"log"`

	// File is the config file that was read, empty when running on defaults.
	File string `mapstructure:"-"`
}

// OrgConfig holds organization-wide policy.
type OrgConfig struct {
	Timezone string `mapstructure:"timezone"` // IANA zone defining calendar days
	Language string `mapstructure:"language"` // language of oracle messages
}

// OracleConfig selects and configures the scoring oracle.
type OracleConfig struct {
	Provider   string `mapstructure:"provider"`
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	MaxRetries int    `mapstructure:"max_retries"`
}

// NotifyConfig selects and configures the notification gateway.
type NotifyConfig struct {
	Provider string `mapstructure:"provider"`
	Endpoint string `mapstructure:"endpoint"`
	Token    string `mapstructure:"token"`
	From     string `mapstructure:"from"`
}

// SchedulerConfig controls the reminder daemon.
type SchedulerConfig struct {
	Hour        int           `mapstructure:"hour"`     // org-local hour after which reminders go out
	Interval    time.Duration `mapstructure:"interval"` // ticker period
	Concurrency int           `mapstructure:"concurrency"`
	LockFile    string        `mapstructure:"lock_file"`
}

// TimeoutConfig bounds every external call.
type TimeoutConfig struct {
	Oracle  time.Duration `mapstructure:"oracle"`
	Notify  time.Duration `mapstructure:"notify"`
	Storage time.Duration `mapstructure:"storage"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "json" or "console"
	File       string `mapstructure:"file"`   // empty means stderr
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// HomeDir returns ~/.pulse.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".pulse"), nil
}

// providerKeyEnv names the conventional API key variable of each oracle provider.
var providerKeyEnv = map[string]string{
	OracleAnthropic: "ANTHROPIC_API_KEY",
	OracleGemini:    "GEMINI_API_KEY",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	home, _ := HomeDir()
	setDefaults(v)
	v.SetDefault("db_path", filepath.Join(home, "pulse.db"))
	v.SetDefault("scheduler.lock_file", filepath.Join(home, "remind.lock"))
	return v
}

// setDefaults registers every default except the paths under the home
// directory, which only the loading viper knows.
func setDefaults(v *viper.Viper) {
	v.SetDefault("principal", "")
	v.SetDefault("org.timezone", "UTC")
	v.SetDefault("org.language", "English")
	v.SetDefault("oracle.provider", OracleAnthropic)
	v.SetDefault("oracle.model", "")
	v.SetDefault("oracle.api_key", "")
	v.SetDefault("oracle.base_url", "")
	v.SetDefault("oracle.max_retries", 3)
	v.SetDefault("notify.provider", NotifyLog)
	v.SetDefault("notify.endpoint", "")
	v.SetDefault("notify.token", "")
	v.SetDefault("notify.from", "pulse@localhost")
	v.SetDefault("scheduler.hour", 17)
	v.SetDefault("scheduler.interval", "5m")
	v.SetDefault("scheduler.concurrency", 4)
	v.SetDefault("timeouts.oracle", "60s")
	v.SetDefault("timeouts.notify", "15s")
	v.SetDefault("timeouts.storage", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 20)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
}

// findConfigFile resolves the config file for dir: project .pulse/config.yaml
// first, then ~/.pulse/config.yaml. Returns "" when neither exists.
func findConfigFile(dir string) string {
	candidates := []string{filepath.Join(dir, ".pulse", "config.yaml")}
	if home, err := HomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, "config.yaml"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load reads configuration for the given working directory.
func Load(dir string) (*Config, error) {
	v := newViper()

	file := findConfigFile(dir)
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.File = file
	applyProviderKey(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyProviderKey takes the API key from the selected provider's own
// variable unless PULSE_ORACLE_API_KEY is set.
func applyProviderKey(cfg *Config) {
	if os.Getenv("PULSE_ORACLE_API_KEY") != "" {
		return
	}
	if key := os.Getenv(providerKeyEnv[cfg.Oracle.Provider]); key != "" {
		cfg.Oracle.APIKey = key
	}
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Org.Timezone); err != nil {
		return fmt.Errorf("invalid org.timezone %q: %w", c.Org.Timezone, err)
	}
	switch c.Oracle.Provider {
	case OracleAnthropic, OracleGemini:
	default:
		return fmt.Errorf("invalid oracle.provider %q (want %s or %s)", c.Oracle.Provider, OracleAnthropic, OracleGemini)
	}
	switch c.Notify.Provider {
	case NotifyWebhook:
		if c.Notify.Endpoint == "" {
			return fmt.Errorf("notify.endpoint is required when notify.provider is %s", NotifyWebhook)
		}
	case NotifyLog:
	default:
		return fmt.Errorf("invalid notify.provider %q (want %s or %s)", c.Notify.Provider, NotifyWebhook, NotifyLog)
	}
	if c.Scheduler.Hour < 0 || c.Scheduler.Hour > 23 {
		return fmt.Errorf("scheduler.hour must be between 0 and 23, got %d", c.Scheduler.Hour)
	}
	if c.Scheduler.Concurrency < 1 {
		return fmt.Errorf("scheduler.concurrency must be positive, got %d", c.Scheduler.Concurrency)
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be positive")
	}
	return nil
}

// Location returns the organization timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Org.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WriteDefault writes the default configuration to dir/.pulse/config.yaml.
// Only built-in defaults are written: nothing from the environment, no
// credentials and no home-directory paths. Fails if the file already exists.
func WriteDefault(dir string) (string, error) {
	pulseDir := filepath.Join(dir, ".pulse")
	if err := os.MkdirAll(pulseDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create .pulse dir: %w", err)
	}

	path := filepath.Join(pulseDir, "config.yaml")
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	if err := v.SafeWriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}
