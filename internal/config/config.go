// Package config handles configuration for the lifetrack CLI. Values come
// from defaults, an optional config file (-c), the environment and flags,
// later sources overriding earlier ones.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/lifetrack/internal/configfile"
	"github.com/dmitrijs2005/lifetrack/internal/flagx"
	"github.com/dmitrijs2005/lifetrack/internal/objectstore"
	"github.com/dmitrijs2005/lifetrack/internal/timex"
)

// Config holds runtime settings for the lifetrack CLI.
type Config struct {
	// DatabaseDSN is the Postgres connection string of the primary store.
	DatabaseDSN string `json:"database_dsn" yaml:"database_dsn" toml:"database_dsn"`
	// RunMigrations applies the primary schema on start.
	RunMigrations bool `json:"run_migrations" yaml:"run_migrations" toml:"run_migrations"`

	AuthURL    string `json:"auth_url" yaml:"auth_url" toml:"auth_url"`
	AuthAPIKey string `json:"auth_api_key" yaml:"auth_api_key" toml:"auth_api_key"`

	// BackupAddr is the backup service host:port; empty disables mirroring.
	BackupAddr      string         `json:"backup_addr" yaml:"backup_addr" toml:"backup_addr"`
	BackupTimeout   timex.Duration `json:"backup_timeout" yaml:"backup_timeout" toml:"backup_timeout"`
	MirrorQueueSize int            `json:"mirror_queue_size" yaml:"mirror_queue_size" toml:"mirror_queue_size"`

	S3Endpoint        string `json:"s3_endpoint" yaml:"s3_endpoint" toml:"s3_endpoint"`
	S3AccessKeyID     string `json:"s3_access_key_id" yaml:"s3_access_key_id" toml:"s3_access_key_id"`
	S3SecretAccessKey string `json:"s3_secret_access_key" yaml:"s3_secret_access_key" toml:"s3_secret_access_key"`
	S3Bucket          string `json:"s3_bucket" yaml:"s3_bucket" toml:"s3_bucket"`
	S3PublicURL       string `json:"s3_public_url" yaml:"s3_public_url" toml:"s3_public_url"`
	S3AccountID       string `json:"s3_account_id" yaml:"s3_account_id" toml:"s3_account_id"`
	S3Region          string `json:"s3_region" yaml:"s3_region" toml:"s3_region"`
	ImageNamespace    string `json:"image_namespace" yaml:"image_namespace" toml:"image_namespace"`

	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
}

func (c *Config) LoadDefaults() {
	c.BackupAddr = "127.0.0.1:50061"
	c.BackupTimeout = timex.Duration{Duration: 5 * time.Second}
	c.MirrorQueueSize = 64
	c.S3Region = objectstore.DefaultRegion
	c.ImageNamespace = objectstore.DefaultNamespace
	c.LogFormat = "text"
	c.LogLevel = "warn"
}

// ObjectStore returns the object-store part of c.
func (c *Config) ObjectStore() objectstore.Config {
	return objectstore.Config{
		Endpoint:        c.S3Endpoint,
		AccountID:       c.S3AccountID,
		AccessKeyID:     c.S3AccessKeyID,
		SecretAccessKey: c.S3SecretAccessKey,
		Bucket:          c.S3Bucket,
		PublicURL:       c.S3PublicURL,
		Region:          c.S3Region,
		Namespace:       c.ImageNamespace,
	}
}

// Environment variable names.
const (
	EnvDatabaseDSN     = "LIFETRACK_DATABASE_DSN"
	EnvRunMigrations   = "LIFETRACK_RUN_MIGRATIONS"
	EnvAuthURL         = "LIFETRACK_AUTH_URL"
	EnvAuthAPIKey      = "LIFETRACK_AUTH_ANON_KEY"
	EnvBackupAddr      = "LIFETRACK_BACKUP_ADDR"
	EnvBackupTimeout   = "LIFETRACK_BACKUP_TIMEOUT"
	EnvMirrorQueueSize = "LIFETRACK_MIRROR_QUEUE_SIZE"
	EnvS3Endpoint      = "CF_ENDPOINT"
	EnvS3AccessKeyID   = "CF_ACCESSKEY_ID"
	EnvS3SecretKey     = "CF_ACCESSKEY_SECRET"
	EnvS3Bucket        = "CF_BUCKET_NAME"
	EnvS3PublicURL     = "CF_PUBLIC_URL"
	EnvS3AccountID     = "CF_ACCOUNT_ID"
	EnvLogFormat       = "LIFETRACK_LOG_FORMAT"
	EnvLogLevel        = "LIFETRACK_LOG_LEVEL"
)

var (
	ErrDatabaseRequired = errors.New("database dsn is required (-d or " + EnvDatabaseDSN + ")")
	ErrAuthRequired     = errors.New("auth url is required (-u or " + EnvAuthURL + ")")
)

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

	if err := parseEnv(cfg, lookup); err != nil {
		return nil, err
	}

	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	switch {
	case cfg.DatabaseDSN == "":
		return nil, ErrDatabaseRequired
	case cfg.AuthURL == "":
		return nil, ErrAuthRequired
	}
	return cfg, nil
}

func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for name, dst := range map[string]*string{
		EnvDatabaseDSN:   &cfg.DatabaseDSN,
		EnvAuthURL:       &cfg.AuthURL,
		EnvAuthAPIKey:    &cfg.AuthAPIKey,
		EnvBackupAddr:    &cfg.BackupAddr,
		EnvS3Endpoint:    &cfg.S3Endpoint,
		EnvS3AccessKeyID: &cfg.S3AccessKeyID,
		EnvS3SecretKey:   &cfg.S3SecretAccessKey,
		EnvS3Bucket:      &cfg.S3Bucket,
		EnvS3PublicURL:   &cfg.S3PublicURL,
		EnvS3AccountID:   &cfg.S3AccountID,
		EnvLogFormat:     &cfg.LogFormat,
		EnvLogLevel:      &cfg.LogLevel,
	} {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup(EnvRunMigrations); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRunMigrations, err)
		}
		cfg.RunMigrations = b
	}
	if v, ok := lookup(EnvMirrorQueueSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMirrorQueueSize, err)
		}
		cfg.MirrorQueueSize = n
	}
	if v, ok := lookup(EnvBackupTimeout); ok && v != "" {
		if err := cfg.BackupTimeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", EnvBackupTimeout, err)
		}
	}
	return nil
}

// parseFlags applies the flags this component understands:
//
//	-d string     primary database DSN
//	-u string     auth provider URL
//	-k string     auth provider API key
//	-b string     backup service address ("" disables mirroring)
//	-t duration   backup call timeout
//	-l string     log format (json, text, zerolog)
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-d", "-u", "-k", "-b", "-t", "-l"})

	fs := flag.NewFlagSet("lifetrack", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "primary database DSN")
	fs.StringVar(&cfg.AuthURL, "u", cfg.AuthURL, "auth provider URL")
	fs.StringVar(&cfg.AuthAPIKey, "k", cfg.AuthAPIKey, "auth provider API key")
	fs.StringVar(&cfg.BackupAddr, "b", cfg.BackupAddr, "backup service address")
	fs.DurationVar(&cfg.BackupTimeout.Duration, "t", cfg.BackupTimeout.Duration, "backup call timeout")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format")

	return fs.Parse(args)
}
