// Package config handles configuration for the backup daemon: defaults,
// an optional config file, environment variables and command-line flags,
// applied in that order.
package config

import (
	"errors"
	"flag"
	"io"
	"os"

	"github.com/dmitrijs2005/lifetrack/internal/configfile"
	"github.com/dmitrijs2005/lifetrack/internal/flagx"
)

// Config holds runtime settings for the backup daemon.
type Config struct {
	// ListenAddr is the gRPC bind address.
	ListenAddr string `json:"listen_addr" yaml:"listen_addr" toml:"listen_addr"`
	// DatabaseDSN is the SQLite DSN (modernc.org/sqlite).
	DatabaseDSN string `json:"database_dsn" yaml:"database_dsn" toml:"database_dsn"`
	// SecretKey verifies HS256 access tokens issued by the auth provider.
	SecretKey string `json:"secret_key" yaml:"secret_key" toml:"secret_key"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.ListenAddr = "127.0.0.1:50061"
	c.DatabaseDSN = "file:lifetrack-backup.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	c.LogFormat = "json"
	c.LogLevel = "info"
}

// Environment variable names.
const (
	EnvListenAddr  = "LIFETRACK_BACKUP_LISTEN_ADDR"
	EnvDatabaseDSN = "LIFETRACK_BACKUP_DSN"
	EnvSecretKey   = "LIFETRACK_JWT_SECRET"
	EnvLogFormat   = "LIFETRACK_LOG_FORMAT"
	EnvLogLevel    = "LIFETRACK_LOG_LEVEL"
)

var ErrSecretRequired = errors.New("jwt secret is required (-s or " + EnvSecretKey + ")")

// LoadConfig builds a Config from os.Args and the process environment.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

func load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.ConfigFile(args); path != "" {
		if err := configfile.Decode(path, cfg); err != nil {
			return nil, err
		}
	}

	parseEnv(cfg, lookup)

	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	if cfg.SecretKey == "" {
		return nil, ErrSecretRequired
	}
	return cfg, nil
}

func parseEnv(cfg *Config, lookup func(string) (string, bool)) {
	for name, dst := range map[string]*string{
		EnvListenAddr:  &cfg.ListenAddr,
		EnvDatabaseDSN: &cfg.DatabaseDSN,
		EnvSecretKey:   &cfg.SecretKey,
		EnvLogFormat:   &cfg.LogFormat,
		EnvLogLevel:    &cfg.LogLevel,
	} {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
}

// parseFlags applies the flags this component understands:
//
//	-a string   gRPC bind address
//	-d string   SQLite DSN
//	-s string   JWT HMAC secret
//	-l string   log format (json, text, zerolog)
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-l"})

	fs := flag.NewFlagSet("backupd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ListenAddr, "a", cfg.ListenAddr, "address and port to listen on")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "sqlite DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "jwt secret")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format")

	return fs.Parse(args)
}
