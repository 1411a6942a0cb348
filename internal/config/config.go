// Package config reads server settings from flags, SPLITVAULT_* environment
// variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/mmynk/splitvault/internal/money"
)

// EnvPrefix is prepended to every flag name to form its environment variable,
// e.g. --db-path becomes SPLITVAULT_DB_PATH.
const EnvPrefix = "SPLITVAULT"

// Config holds the server settings.
type Config struct {
	Port            int
	DBPath          string
	LogLevel        string
	LogFormat       string
	DefaultCurrency money.Currency
	MetricsPath     string
	CORSOrigin      string
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load parses args on top of the environment. Variables from the file named
// by SPLITVAULT_ENV_FILE, or ./.env when unset, are loaded first without
// overriding ones already set.
func Load(args []string) (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	flags := ff.NewFlagSet("splitvault")
	var (
		port        = flags.IntLong("port", 8080, "HTTP server port")
		dbPath      = flags.StringLong("db-path", "./data/splitvault.db", "SQLite database file path")
		logLevel    = flags.StringLong("log-level", "info", "Log level: debug, info, warn, error")
		logFormat   = flags.StringLong("log-format", "text", "Log format: text or json")
		currency    = flags.StringLong("currency", money.IDR.Code, "Default currency code ("+strings.Join(money.CurrencyCodes(), ", ")+")")
		metricsPath = flags.StringLong("metrics-path", "/metrics", "Path of the Prometheus metrics endpoint")
		corsOrigin  = flags.StringLong("cors-origin", "*", "Value of Access-Control-Allow-Origin")
	)

	if err := ff.Parse(flags, args, ff.WithEnvVarPrefix(EnvPrefix)); err != nil {
		return nil, fmt.Errorf("%w\n%s", err, ffhelp.Flags(flags))
	}

	cfg := &Config{
		Port:        *port,
		DBPath:      *dbPath,
		LogLevel:    strings.ToLower(*logLevel),
		LogFormat:   strings.ToLower(*logFormat),
		MetricsPath: *metricsPath,
		CORSOrigin:  *corsOrigin,
	}
	cur, err := money.LookupCurrency(*currency)
	if err != nil {
		return nil, fmt.Errorf("invalid --currency: %w", err)
	}
	cfg.DefaultCurrency = cur

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid --port %d", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("--db-path must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid --log-level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid --log-format %q", c.LogFormat)
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("--metrics-path must start with /, got %q", c.MetricsPath)
	}
	return nil
}

func loadDotenv() error {
	path, explicit := os.LookupEnv(EnvPrefix + "_ENV_FILE")
	if !explicit {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", path, err)
}
