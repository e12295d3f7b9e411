package main

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/dsbot/pkg/adapters"
	"github.com/ruslano69/dsbot/pkg/events"
	"github.com/ruslano69/dsbot/pkg/logger"
	"github.com/ruslano69/dsbot/pkg/resilience"
	"github.com/ruslano69/dsbot/pkg/retry"
)

// Config represents the main configuration structure
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Bot      BotConfig      `yaml:"bot"`
	Log      logger.Config  `yaml:"log,omitempty"`
	Retry    RetryConfig    `yaml:"retry,omitempty"`
	Audit    AuditConfig    `yaml:"audit,omitempty"`
	Events   events.Config  `yaml:"events,omitempty"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Type        string `yaml:"type"`                   // mysql, postgres, sqlite, mssql
	Host        string `yaml:"host,omitempty"`         // For network databases
	Port        int    `yaml:"port,omitempty"`         // Database port
	Database    string `yaml:"database"`               // Database name or file path
	User        string `yaml:"user,omitempty"`         // Username
	Password    string `yaml:"password,omitempty"`     // Password
	Schema      string `yaml:"schema,omitempty"`       // PostgreSQL schema (default: public)
	WindowsAuth bool   `yaml:"windows_auth,omitempty"` // MS SQL Windows authentication
	SSLMode     string `yaml:"sslmode,omitempty"`      // PostgreSQL SSL mode
	Timeout     int    `yaml:"timeout,omitempty"`      // Query timeout in seconds
	MaxConns    int    `yaml:"max_conns,omitempty"`
}

// BotConfig contains bot defaults for servers without own settings
type BotConfig struct {
	Prefix      string `yaml:"prefix"`
	DefaultLang string `yaml:"default_lang"`
	LangsDir    string `yaml:"langs_dir,omitempty"` // External dictionaries (default: built-in)
}

// RetryConfig for retrying reads on dropped connections
type RetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	MaxAttempts int    `yaml:"max_attempts"`
	Strategy    string `yaml:"strategy"` // constant, linear, exponential
	InitialWait int    `yaml:"initial_wait_ms"`
	MaxWait     int    `yaml:"max_wait_ms"`
	Jitter      bool   `yaml:"jitter"`
}

// AuditConfig for audit logging settings
type AuditConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Level    string `yaml:"level"` // minimal, standard, full
	File     string `yaml:"file,omitempty"`
	MaxSize  int    `yaml:"max_size_mb,omitempty"` // Max file size in MB
	Database bool   `yaml:"database,omitempty"`    // Write to audit_log table
	Log      bool   `yaml:"log,omitempty"`         // Write to application log
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${VAR} with environment values; plain $ is left intact
func expandEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		name := envPattern.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// LoadConfig loads configuration from YAML file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses configuration with ${VAR} expansion and defaults
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(expandEnv(data), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Database.Type == "" {
		return nil, fmt.Errorf("database.type is required")
	}
	if config.Bot.DefaultLang == "" {
		config.Bot.DefaultLang = "ptbr"
	}
	if config.Bot.Prefix == "" {
		config.Bot.Prefix = "!"
	}

	return &config, nil
}

// SaveConfig saves configuration to YAML file
func SaveConfig(filename string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// CreateSampleConfig creates sample configuration for different database types
func CreateSampleConfig(dbType string) *Config {
	config := &Config{
		Database: DatabaseConfig{
			Type:    dbType,
			Timeout: 30,
		},
		Bot: BotConfig{
			Prefix:      "!",
			DefaultLang: "ptbr",
		},
		Log: logger.Config{
			Level: "info",
		},
		Retry: RetryConfig{
			Enabled:     true,
			MaxAttempts: 3,
			Strategy:    "exponential",
			InitialWait: 200,
			MaxWait:     5000,
			Jitter:      true,
		},
		Audit: AuditConfig{
			Enabled: true,
			Level:   "standard",
			File:    "audit.log",
			MaxSize: 100,
		},
		Events: events.Config{
			Type:    "none",
			Breaker: resilience.DefaultConfig(""),
		},
	}

	switch adapters.NormalizeType(dbType) {
	case "postgres":
		config.Database.Host = "localhost"
		config.Database.Port = 5432
		config.Database.Database = "dontstarvebot"
		config.Database.User = "postgres"
		config.Database.Password = "${DSBOT_DB_PASSWORD}"
		config.Database.Schema = "public"
		config.Database.SSLMode = "disable"

	case "mssql":
		config.Database.Host = "localhost"
		config.Database.Port = 1433
		config.Database.Database = "dontstarvebot"
		config.Database.User = "sa"
		config.Database.Password = "${DSBOT_DB_PASSWORD}"

	case "sqlite":
		config.Database.Database = "dsbot.db"

	case "mysql":
		config.Database.Host = "localhost"
		config.Database.Port = 3306
		config.Database.Database = "dontstarvebot"
		config.Database.User = "root"
		config.Database.Password = "${DSBOT_DB_PASSWORD}"
	}

	return config
}

// BuildDSN constructs database connection string from config
func (c *DatabaseConfig) BuildDSN() string {
	user := url.UserPassword(c.User, c.Password)

	switch adapters.NormalizeType(c.Type) {
	case "postgres":
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		schema := c.Schema
		if schema == "" {
			schema = "public"
		}
		return fmt.Sprintf("postgres://%s@%s:%d/%s?sslmode=%s&search_path=%s",
			user.String(), c.Host, c.Port, c.Database, sslMode, schema)

	case "mssql":
		if c.WindowsAuth {
			return fmt.Sprintf("sqlserver://%s:%d?database=%s&integrated+security=SSPI",
				c.Host, c.Port, c.Database)
		}
		return fmt.Sprintf("sqlserver://%s@%s:%d?database=%s",
			user.String(), c.Host, c.Port, c.Database)

	case "sqlite":
		return c.Database

	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			c.User, c.Password, c.Host, c.Port, c.Database)

	default:
		return ""
	}
}

// AdapterConfig converts database and retry settings for the adapter factory
func (c *Config) AdapterConfig() (adapters.Config, error) {
	retryCfg, err := c.Retry.ToRetry()
	if err != nil {
		return adapters.Config{}, err
	}

	return adapters.Config{
		Type:     c.Database.Type,
		DSN:      c.Database.BuildDSN(),
		Timeout:  time.Duration(c.Database.Timeout) * time.Second,
		MaxConns: c.Database.MaxConns,
		Retry:    retryCfg,
	}, nil
}

// ToRetry converts YAML retry settings
func (r RetryConfig) ToRetry() (retry.Config, error) {
	cfg := retry.DefaultConfig()
	if !r.Enabled {
		return cfg, nil
	}

	cfg.Enabled = true
	if r.MaxAttempts > 0 {
		cfg.MaxAttempts = r.MaxAttempts
	}
	if r.Strategy != "" {
		cfg.BackoffStrategy = retry.BackoffStrategy(r.Strategy)
	}
	if r.InitialWait > 0 {
		cfg.InitialDelay = time.Duration(r.InitialWait) * time.Millisecond
	}
	if r.MaxWait > 0 {
		cfg.MaxDelay = time.Duration(r.MaxWait) * time.Millisecond
	}
	if !r.Jitter {
		cfg.Jitter = 0
	}

	if err := cfg.Validate(); err != nil {
		return retry.Config{}, fmt.Errorf("invalid retry config: %w", err)
	}
	return cfg, nil
}
