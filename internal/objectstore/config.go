package objectstore

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultRegion        = "auto"
	DefaultNamespace     = "life-track"
	DefaultPresignExpiry = 5 * time.Minute
)

// Config describes an S3-compatible bucket (Cloudflare R2 in production).
type Config struct {
	// Endpoint overrides the account endpoint, e.g. a MinIO URL.
	Endpoint        string
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	// PublicURL is the public-read base; "https://" is assumed when it has
	// no scheme.
	PublicURL     string
	Region        string
	Namespace     string
	PresignExpiry time.Duration
}

// Enabled reports whether enough settings are present to build a Store.
func (c Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKeyID != "" && (c.Endpoint != "" || c.AccountID != "")
}

func (c Config) withDefaults() Config {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if c.PresignExpiry <= 0 {
		c.PresignExpiry = DefaultPresignExpiry
	}
	return c
}

func (c Config) validate() error {
	var errs []error
	if c.Bucket == "" {
		errs = append(errs, errors.New("bucket is required"))
	}
	if c.Endpoint == "" && c.AccountID == "" {
		errs = append(errs, errors.New("endpoint or account id is required"))
	}
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		errs = append(errs, errors.New("access key id and secret are required"))
	}
	if c.PublicURL == "" {
		errs = append(errs, errors.New("public url is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("object store config: %w", errors.Join(errs...))
	}
	return nil
}

// endpoint returns the S3 API endpoint.
func (c Config) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

// publicBase returns the public-read base URL without a trailing slash.
func (c Config) publicBase() string {
	base := strings.TrimRight(c.PublicURL, "/")
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return base
}
