// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"agencysite/internal/roots"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Content locations
	DBPath   string
	DistRoot string
	RepoRoot string
	Sections string // comma separated file-based sections

	// Shared secret guarding write endpoints. The hash is a bcrypt digest
	// and is used when the plain key is not set.
	AdminAPIKey     string
	AdminAPIKeyHash string

	// Valkey (Redis-compatible cache). Caching is off when ValkeyHost is empty.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// S3-compatible media storage. Uploads are off when S3Bucket is empty.
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string
}

// LoadDotEnv reads variables from a .env file into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBPath:   envOrDefault("CONTENT_DB_PATH", "server/data/content.sqlite"),
		DistRoot: os.Getenv("DIST_ROOT"),
		RepoRoot: envOrDefault("REPO_ROOT", "."),
		Sections: envOrDefault("SECTIONS", "cases"),

		AdminAPIKey:     os.Getenv("ADMIN_API_KEY"),
		AdminAPIKeyHash: os.Getenv("ADMIN_API_KEY_HASH"),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),
	}

	if cfg.Env == "production" && !cfg.HasAPIKey() {
		return nil, fmt.Errorf("ADMIN_API_KEY or ADMIN_API_KEY_HASH must be set in production")
	}

	return cfg, nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HasAPIKey reports whether write endpoints can be unlocked at all.
func (c *Config) HasAPIKey() bool {
	return c.AdminAPIKey != "" || c.AdminAPIKeyHash != ""
}

// ValkeyEnabled reports whether a response cache is configured.
func (c *Config) ValkeyEnabled() bool {
	return c.ValkeyHost != ""
}

// S3Enabled reports whether media uploads are configured.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// Roots returns the content root convention for this deployment.
func (c *Config) Roots() roots.Roots {
	return roots.Roots{Dist: c.DistRoot, Repo: c.RepoRoot}
}

// SectionNames returns the configured file-based sections, trimmed and
// without duplicates.
func (c *Config) SectionNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(c.Sections, ",") {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
