package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/agilira/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fncall.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	coder, ok := err.(errors.ErrorCoder)
	require.True(t, ok, "expected ErrorCoder, got %T", err)
	return string(coder.ErrorCode())
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("FNCALL_LOG_LEVEL", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
auto_quote: false
cache_size: 0
log_level: DEBUG
pretty: true
workers: 16
output: yaml
trace: run.ndjson
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.AutoQuote)
	assert.Equal(t, 0, cfg.CacheSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Pretty)
	assert.Equal(t, 16, cfg.Workers)
	assert.Equal(t, "yaml", cfg.Output)
	assert.Equal(t, "run.ndjson", cfg.Trace)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "workers: 16\nauto_quote: true\n")
	t.Setenv("FNCALL_WORKERS", "2")
	t.Setenv("FNCALL_AUTO_QUOTE", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.False(t, cfg.AutoQuote)
}

func TestLogLevelEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FNCALL_LOG_LEVEL", "")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)

	t.Setenv("FNCALL_LOG_LEVEL", "error")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative cache", "cache_size: -1\n"},
		{"zero workers", "workers: 0\n"},
		{"too many workers", "workers: 1000\n"},
		{"bad level", "log_level: verbose\n"},
		{"bad output", "output: xml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Equal(t, ErrCodeConfigInvalid, errorCode(t, err))
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeConfigRead, errorCode(t, err))
}

func TestWrite(t *testing.T) {
	cfg := Default()
	var buf bytes.Buffer
	require.NoError(t, cfg.Write(&buf))

	out := buf.String()
	assert.Contains(t, out, "auto_quote: true")
	assert.Contains(t, out, "cache_size: 1024")
	assert.Contains(t, out, "workers: 4")
	assert.NotContains(t, out, "trace:")
}
