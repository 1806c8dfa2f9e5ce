// Package config loads the bot's configuration.
//
// Configuration comes from a single YAML file named by the --config flag,
// layered over Default(). A handful of deployment secrets and addresses can
// then be overridden from ZODBOT_* environment variables so they never have
// to be written to disk.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete bot configuration
type Config struct {
	BotName       string         `yaml:"bot_name"`
	Version       string         `yaml:"version"`
	CommandPrefix string         `yaml:"command_prefix"`
	ControlRoom   string         `yaml:"controlroom"`
	SafeDomains   []string       `yaml:"safe_domains"`
	ListenAddr    string         `yaml:"listen_addr"`
	LogLevel      string         `yaml:"log_level"`
	Matrix        MatrixConfig   `yaml:"matrix"`
	Database      DatabaseConfig `yaml:"database"`
	Services      ServicesConfig `yaml:"services"`
	Kafka         KafkaConfig    `yaml:"kafka"`
	Throttle      ThrottleConfig `yaml:"throttle"`
}

// MatrixConfig is the homeserver connection
type MatrixConfig struct {
	Homeserver  string `yaml:"homeserver"`
	UserID      string `yaml:"user_id"`
	AccessToken string `yaml:"access_token"`
	// SyncTimeout is the long-poll timeout passed to /sync
	SyncTimeout time.Duration `yaml:"sync_timeout"`
}

// DatabaseConfig selects the SQL backend.
// Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

// ServicesConfig holds the Fedora service endpoints and shared client limits
type ServicesConfig struct {
	FASJSONURL        string        `yaml:"fasjson_url"`
	BodhiURL          string        `yaml:"bodhi_url"`
	BugzillaURL       string        `yaml:"bugzilla_url"`
	PagureIOURL       string        `yaml:"pagureio_url"`
	PagureDistGitURL  string        `yaml:"paguredistgit_url"`
	FedoraStatusURL   string        `yaml:"fedorastatus_url"`
	FedocalURL        string        `yaml:"fedocal_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	// ReleaseCacheTTL is how long Bodhi's current release is reused
	ReleaseCacheTTL time.Duration `yaml:"release_cache_ttl"`
}

// KafkaConfig enables cookie event publishing. No brokers disables it.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// ThrottleConfig limits how many commands one sender may issue per window
type ThrottleConfig struct {
	Commands int           `yaml:"commands"`
	Window   time.Duration `yaml:"window"`
}

// Default returns the configuration of the Fedora deployment, minus secrets
func Default() *Config {
	return &Config{
		BotName:       "zodbot",
		Version:       "dev",
		CommandPrefix: "!",
		SafeDomains:   []string{"fedora.im"},
		ListenAddr:    ":8080",
		LogLevel:      "info",
		Matrix: MatrixConfig{
			SyncTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			URL:    "zodbot.db",
		},
		Services: ServicesConfig{
			FASJSONURL:        "https://fasjson.fedoraproject.org",
			BodhiURL:          "https://bodhi.fedoraproject.org",
			BugzillaURL:       "https://bugzilla.redhat.com",
			PagureIOURL:       "https://pagure.io",
			PagureDistGitURL:  "https://src.fedoraproject.org",
			FedoraStatusURL:   "https://status.fedoraproject.org",
			FedocalURL:        "https://apps.fedoraproject.org/calendar/api/",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 10,
			Burst:             20,
			ReleaseCacheTTL:   time.Hour,
		},
		Kafka: KafkaConfig{
			Topic: "org.fedoraproject.prod.maubot.cookie.give.v1",
		},
		Throttle: ThrottleConfig{
			Commands: 20,
			Window:   time.Minute,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides fields from ZODBOT_* variables that are set and non-empty
func (c *Config) applyEnv(getenv func(string) string) {
	for name, field := range map[string]*string{
		"ZODBOT_MATRIX_ACCESS_TOKEN": &c.Matrix.AccessToken,
		"ZODBOT_DATABASE_URL":        &c.Database.URL,
		"ZODBOT_DATABASE_DRIVER":     &c.Database.Driver,
		"ZODBOT_LOG_LEVEL":           &c.LogLevel,
		"ZODBOT_LISTEN_ADDR":         &c.ListenAddr,
	} {
		if v := getenv(name); v != "" {
			*field = v
		}
	}

	if v := getenv("ZODBOT_KAFKA_BROKERS"); v != "" {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		c.Kafka.Brokers = brokers
	}
}

// DefaultDomain is the homeserver assumed for bare usernames
func (c *Config) DefaultDomain() string {
	if len(c.SafeDomains) == 0 {
		return ""
	}
	return c.SafeDomains[0]
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	var errs []error

	if c.BotName == "" {
		errs = append(errs, errors.New("bot_name is required"))
	}
	if c.CommandPrefix == "" {
		errs = append(errs, errors.New("command_prefix is required"))
	}
	if len(c.SafeDomains) == 0 {
		errs = append(errs, errors.New("safe_domains needs at least one domain"))
	}
	if !contains([]string{"debug", "info", "warn", "error"}, c.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel))
	}

	if err := checkURL("matrix.homeserver", c.Matrix.Homeserver); err != nil {
		errs = append(errs, err)
	}
	if c.Matrix.AccessToken == "" {
		errs = append(errs, errors.New("matrix.access_token is required (or set ZODBOT_MATRIX_ACCESS_TOKEN)"))
	}
	if c.Matrix.SyncTimeout < 0 {
		errs = append(errs, errors.New("matrix.sync_timeout must not be negative"))
	}

	if !contains([]string{"postgres", "postgresql", "sqlite", "sqlite3"}, strings.ToLower(c.Database.Driver)) {
		errs = append(errs, fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required"))
	}

	for name, raw := range map[string]string{
		"services.fasjson_url":       c.Services.FASJSONURL,
		"services.bodhi_url":         c.Services.BodhiURL,
		"services.bugzilla_url":      c.Services.BugzillaURL,
		"services.pagureio_url":      c.Services.PagureIOURL,
		"services.paguredistgit_url": c.Services.PagureDistGitURL,
		"services.fedorastatus_url":  c.Services.FedoraStatusURL,
		"services.fedocal_url":       c.Services.FedocalURL,
	} {
		if err := checkURL(name, raw); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Services.Timeout <= 0 {
		errs = append(errs, errors.New("services.timeout must be positive"))
	}
	if c.Services.RequestsPerSecond <= 0 || c.Services.Burst <= 0 {
		errs = append(errs, errors.New("services.requests_per_second and services.burst must be positive"))
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when brokers are set"))
	}
	if c.Throttle.Commands <= 0 || c.Throttle.Window <= 0 {
		errs = append(errs, errors.New("throttle.commands and throttle.window must be positive"))
	}

	return errors.Join(errs...)
}

func checkURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
	}
	return nil
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
