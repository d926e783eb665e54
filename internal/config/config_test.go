package config_test

import (
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookdeck/dwn-go/internal/config"
)

// mockOS is an in-memory OSInterface for config tests: files and env vars
// live in maps instead of touching the real filesystem/process environment.
type mockOS struct {
	files   map[string][]byte
	envVars map[string]string
}

func (m *mockOS) Getenv(key string) string { return m.envVars[key] }

func (m *mockOS) Environ() []string {
	out := make([]string, 0, len(m.envVars))
	for k, v := range m.envVars {
		out = append(out, k+"="+v)
	}
	return out
}

func (m *mockOS) Stat(name string) (fs.FileInfo, error) {
	if _, ok := m.files[name]; ok {
		return nil, nil
	}
	return nil, os.ErrNotExist
}

func (m *mockOS) ReadFile(name string) ([]byte, error) {
	if data, ok := m.files[name]; ok {
		return data, nil
	}
	return nil, os.ErrNotExist
}

func requiredEnvVars() map[string]string {
	return map[string]string{
		"MESSAGE_STORE_URL": "mem://local/messages",
		"DATA_STORE_URL":    "mem://local/data",
		"EVENT_LOG_URL":     "mem://local/events",
		"TASK_STORE_URL":    "mem://local/tasks",
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	mock := &mockOS{envVars: requiredEnvVars()}

	cfg, err := config.ParseWithOS("", mock)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.AuditLog)
	assert.Equal(t, 60, cfg.TaskLeaseSeconds)
	assert.Equal(t, 16, cfg.EventBusBuffer)
	assert.Equal(t, 60*time.Second, cfg.TaskLeaseDuration())
}

func TestParseEnvOverridesDefaults(t *testing.T) {
	envVars := requiredEnvVars()
	envVars["LOG_LEVEL"] = "debug"
	envVars["TASK_LEASE_SECONDS"] = "120"
	mock := &mockOS{envVars: envVars}

	cfg, err := config.ParseWithOS("", mock)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 120, cfg.TaskLeaseSeconds)
}

func TestParseYAMLConfigFile(t *testing.T) {
	envVars := requiredEnvVars()
	envVars["CONFIG"] = "config.yaml"
	mock := &mockOS{
		envVars: envVars,
		files: map[string][]byte{
			"config.yaml": []byte("log_level: warn\ntask_concurrency: 8\n"),
		},
	}

	cfg, err := config.ParseWithOS("", mock)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 8, cfg.TaskConcurrency)
	assert.Equal(t, "config.yaml", cfg.ConfigFilePath())
}

func TestParseRejectsMissingRequiredURLs(t *testing.T) {
	mock := &mockOS{envVars: map[string]string{}}

	_, err := config.ParseWithOS("", mock)
	assert.ErrorIs(t, err, config.ErrMissingMessageStore)
}

func TestParseRejectsMalformedConnectionString(t *testing.T) {
	envVars := requiredEnvVars()
	envVars["DATA_STORE_URL"] = "not-a-conn-string"
	mock := &mockOS{envVars: envVars}

	_, err := config.ParseWithOS("", mock)
	assert.ErrorIs(t, err, config.ErrMissingDataStore)
}
