// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
loaded first when present, so development setups need no exported variables.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, storage) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

// # Configuration Schema

// Config holds all runtime configuration for the directory API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./migrations"`

	// Key-Value Store (Redis), used for slug reservation locks
	RedisURL    string        `env:"REDIS_URL,required,notEmpty"`
	SlugLockTTL time.Duration `env:"SLUG_LOCK_TTL" envDefault:"5s"`

	// Token verification keys. The private key is only needed to mint tokens.
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required,notEmpty"`
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH"`

	// File storage
	StorageDriver       string `env:"STORAGE_DRIVER"        envDefault:"local"`
	StorageRoot         string `env:"STORAGE_ROOT"          envDefault:"./public/uploads"`
	StoragePublicPrefix string `env:"STORAGE_PUBLIC_PREFIX" envDefault:"/uploads"`

	// Object Storage (Cloudflare R2 / S3-compatible)
	S3Bucket   string `env:"S3_BUCKET"`
	S3Region   string `env:"S3_REGION"   envDefault:"auto"`
	S3Endpoint string `env:"S3_ENDPOINT"`

	// Image derivatives (pixel widths; height follows the aspect ratio)
	ImageLargeWidth  int   `env:"IMAGE_LARGE_WIDTH"  envDefault:"1024"`
	ImageMediumWidth int   `env:"IMAGE_MEDIUM_WIDTH" envDefault:"512"`
	ImageSmallWidth  int   `env:"IMAGE_SMALL_WIDTH"  envDefault:"256"`
	UploadMaxBytes   int64 `env:"UPLOAD_MAX_BYTES"   envDefault:"10485760"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// ImageFormat names one derivative produced for every uploaded image.
type ImageFormat struct {
	Name  string
	Width int
}

// StorageConfig is the subset of [Config] needed to build a file store.
type StorageConfig struct {
	Driver       string
	Root         string
	PublicPrefix string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// 1. Local overrides; a missing .env is not an error
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env: %w", err)
	}

	// 2. Map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	// 3. Cross-field checks
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageDriverLocal:
	case StorageDriverS3:
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	for _, format := range c.ImageFormats() {
		if format.Width <= 0 {
			return fmt.Errorf("image width for %q must be positive", format.Name)
		}
	}

	if c.UploadMaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}

	return nil
}

// ImageFormats returns the derivative set in descending width order.
func (c *Config) ImageFormats() []ImageFormat {
	return []ImageFormat{
		{Name: "large", Width: c.ImageLargeWidth},
		{Name: "medium", Width: c.ImageMediumWidth},
		{Name: "small", Width: c.ImageSmallWidth},
	}
}

// Storage returns the file store settings.
func (c *Config) Storage() StorageConfig {
	return StorageConfig{
		Driver:       c.StorageDriver,
		Root:         c.StorageRoot,
		PublicPrefix: strings.TrimRight(c.StoragePublicPrefix, "/"),
		S3Bucket:     c.S3Bucket,
		S3Region:     c.S3Region,
		S3Endpoint:   c.S3Endpoint,
	}
}

// AllowedOrigins returns the comma-separated EXTRA_ORIGINS as a list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
