// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/inkwell/pkg/errutil"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(f)
	require.NoError(t, f.Parse(args))
	return f
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", newFlagSet(t))
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.ListenAddr)
	assert.Equal(t, "127.0.0.1:9100", cfg.Server.MetricsAddr)
	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 15*time.Minute, cfg.Auth.ResetTokenTTL)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_File(t *testing.T) {
	path := writeConfigFile(t, `
server:
  listen-addr: ":9999"
database:
  url: postgres://localhost:5432/blog
auth:
  secret: file-secret
  token-ttl: 10m
`)

	cfg, err := Load(path, newFlagSet(t))
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.ListenAddr)
	assert.Equal(t, "postgres://localhost:5432/blog", cfg.Database.URL)
	assert.Equal(t, "file-secret", cfg.Auth.Secret)
	assert.Equal(t, 10*time.Minute, cfg.Auth.TokenTTL)

	// Flag defaults still fill keys the file left unset.
	assert.Equal(t, "127.0.0.1:9100", cfg.Server.MetricsAddr)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  listen-addr: ":9999"
auth:
  secret: file-secret
`)

	flags := newFlagSet(t, "--server.listen-addr", ":7777", "--auth.token-ttl", "5m")

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, ":7777", cfg.Server.ListenAddr, "explicit flag wins over file")
	assert.Equal(t, "file-secret", cfg.Auth.Secret, "file wins over flag default")
	assert.Equal(t, 5*time.Minute, cfg.Auth.TokenTTL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml", newFlagSet(t))
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		Database: DatabaseConfig{URL: "postgres://localhost/blog"},
		Auth:     AuthConfig{Secret: "s", Algorithm: "HS256"},
		Log:      LogConfig{Format: "json"},
	}

	t.Run("valid", func(t *testing.T) {
		cfg := valid
		require.NoError(t, cfg.Validate())
	})

	t.Run("missing database url", func(t *testing.T) {
		cfg := valid
		cfg.Database.URL = ""
		err := cfg.Validate()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	})

	t.Run("missing secret", func(t *testing.T) {
		cfg := valid
		cfg.Auth.Secret = ""
		err := cfg.Validate()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	})

	t.Run("missing algorithm", func(t *testing.T) {
		cfg := valid
		cfg.Auth.Algorithm = ""
		err := cfg.Validate()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	})

	t.Run("bad log format", func(t *testing.T) {
		cfg := valid
		cfg.Log.Format = "xml"
		err := cfg.Validate()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	})
}
