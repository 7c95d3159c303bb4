// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package config loads startup configuration from an optional YAML file
// layered with command-line flags. Flags that were explicitly set win over
// file values; file values win over flag defaults.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Mail     MailConfig     `koanf:"mail"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig holds the listen addresses.
type ServerConfig struct {
	ListenAddr  string `koanf:"listen-addr"`
	MetricsAddr string `koanf:"metrics-addr"`
}

// DatabaseConfig holds the PostgreSQL connection string.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// AuthConfig holds token signing and validity settings.
type AuthConfig struct {
	Secret        string        `koanf:"secret"`
	Algorithm     string        `koanf:"algorithm"`
	TokenTTL      time.Duration `koanf:"token-ttl"`
	ResetTokenTTL time.Duration `koanf:"reset-token-ttl"`
	ResetBaseURL  string        `koanf:"reset-base-url"`
}

// MailConfig holds SMTP delivery settings. An empty Host selects the no-op
// dispatcher.
type MailConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
	FromName string `koanf:"from-name"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Format string `koanf:"format"`
}

// RegisterFlags registers all configuration flags on the flag set. Flag
// names use dotted paths matching the YAML structure.
func RegisterFlags(f *pflag.FlagSet) {
	f.String("server.listen-addr", ":8000", "API listen address")
	f.String("server.metrics-addr", "127.0.0.1:9100", "metrics/health listen address")

	f.String("database.url", "", "PostgreSQL connection URL")

	f.String("auth.secret", "", "token signing secret")
	f.String("auth.algorithm", "HS256", "token signing algorithm")
	f.Duration("auth.token-ttl", 30*time.Minute, "session token validity window")
	f.Duration("auth.reset-token-ttl", 15*time.Minute, "password reset token validity window")
	f.String("auth.reset-base-url", "http://localhost:8000/password/reset", "base URL for password reset links")

	f.String("mail.host", "", "SMTP host (empty disables outbound mail)")
	f.Int("mail.port", 587, "SMTP port")
	f.String("mail.username", "", "SMTP username")
	f.String("mail.password", "", "SMTP password")
	f.String("mail.from", "", "sender address for outbound mail")
	f.String("mail.from-name", "Inkwell", "sender display name for outbound mail")

	f.String("log.format", "json", "log output format (json or text)")
}

// Load builds the configuration from the optional YAML file at path plus the
// flag set. An empty path skips the file layer.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_INVALID").
				With("operation", "load config file").
				With("path", path).
				Wrap(err)
		}
	}

	// Changed flags always win; unchanged flags only fill keys the file
	// left unset.
	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return nil, oops.Code("CONFIG_INVALID").
			With("operation", "load flags").
			Wrap(err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").
			With("operation", "unmarshal config").
			Wrap(err)
	}

	return &cfg, nil
}

// Validate checks the settings the server cannot run without. Commands that
// need only a subset (such as migrations) skip it and check their own keys.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}
	if c.Auth.Secret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("auth.secret is required")
	}
	if c.Auth.Algorithm == "" {
		return oops.Code("CONFIG_INVALID").Errorf("auth.algorithm is required")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" && c.Log.Format != "" {
		return oops.Code("CONFIG_INVALID").Errorf("log.format must be json or text, got %q", c.Log.Format)
	}
	return nil
}
