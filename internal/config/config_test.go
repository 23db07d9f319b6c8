package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
)

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		env      map[string]string
		want     string
	}{
		{
			name: "default when nothing set",
			env:  map[string]string{},
			want: DefaultTarget,
		},
		{
			name:     "explicit wins",
			explicit: "tcp://explicit:1",
			env:      map[string]string{"FAKTORY_URL": "tcp://env:2"},
			want:     "tcp://explicit:1",
		},
		{
			name: "default provider variable",
			env:  map[string]string{"FAKTORY_URL": "tcp://env:2"},
			want: "tcp://env:2",
		},
		{
			name: "custom provider variable",
			env: map[string]string{
				"FAKTORY_PROVIDER": "MY_FAKTORY",
				"MY_FAKTORY":       "tcp://custom:3",
				"FAKTORY_URL":      "tcp://env:2",
			},
			want: "tcp://custom:3",
		},
		{
			name: "provider names an unset variable",
			env:  map[string]string{"FAKTORY_PROVIDER": "MISSING"},
			want: DefaultTarget,
		},
		{
			name: "empty value counts as unset",
			env:  map[string]string{"FAKTORY_URL": ""},
			want: DefaultTarget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTarget(tt.explicit, MapLookup(tt.env)))
		})
	}
}

func TestResolveTargetNilLookup(t *testing.T) {
	assert.Equal(t, DefaultTarget, ResolveTarget("", nil))
}

func TestNewSystemConfigDefaults(t *testing.T) {
	cfg := NewSystemConfig(MapLookup(map[string]string{}))

	assert.False(t, cfg.DebugMode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultTarget, cfg.FaktoryConfig.Target)
	assert.Equal(t, []string{"golang"}, cfg.FaktoryConfig.Labels)
	assert.Equal(t, 10*time.Second, cfg.FaktoryConfig.DialTimeout)
	assert.Zero(t, cfg.FaktoryConfig.ReadTimeout)
	assert.Equal(t, []string{"default"}, cfg.WorkerConfig.Queues)
	assert.Equal(t, 1, cfg.WorkerConfig.Concurrency)
	assert.Equal(t, 15*time.Second, cfg.WorkerConfig.HeartbeatInterval)
	assert.False(t, cfg.RedisConfig.Enabled)
	assert.Equal(t, "localhost:6379", cfg.RedisConfig.Url)
	assert.False(t, cfg.PostgresConfig.Enabled)
	assert.Equal(t, "public", cfg.PostgresConfig.Schema)
	assert.Equal(t, 8082, cfg.HTTPConfig.Port)
	require.NoError(t, cfg.Validate())
}

func TestNewSystemConfigFromEnv(t *testing.T) {
	cfg := NewSystemConfig(MapLookup(map[string]string{
		"DEBUG_MODE":                     "true",
		"LOG_LEVEL":                      "warn",
		"FAKTORY_URL":                    "tcp://faktory:7419",
		"FAKTORY_TLS":                    "true",
		"FAKTORY_LABELS":                 "golang, reports ,,",
		"FAKTORY_READ_TIMEOUT_SEC":       "30",
		"FAKTORY_QUEUES":                 "high,low",
		"FAKTORY_CONCURRENCY":            "8",
		"FAKTORY_HEARTBEAT_INTERVAL_SEC": "bogus",
		"REDIS_ADDR":                     "redis:6379",
		"REDIS_DB":                       "2",
		"DATABASE_URL":                   "postgres://faktory@db:5432/jobs",
		"DB_SCHEMA":                      "worker",
		"HTTP_PORT":                      "0",
	}))

	assert.True(t, cfg.DebugMode)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "tcp://faktory:7419", cfg.FaktoryConfig.Target)
	assert.True(t, cfg.FaktoryConfig.TLS)
	assert.Equal(t, []string{"golang", "reports"}, cfg.FaktoryConfig.Labels)
	assert.Equal(t, 30*time.Second, cfg.FaktoryConfig.ReadTimeout)
	assert.Equal(t, []string{"high", "low"}, cfg.WorkerConfig.Queues)
	assert.Equal(t, 8, cfg.WorkerConfig.Concurrency)
	assert.Equal(t, 15*time.Second, cfg.WorkerConfig.HeartbeatInterval)
	assert.True(t, cfg.RedisConfig.Enabled)
	assert.Equal(t, "redis:6379", cfg.RedisConfig.Url)
	assert.Equal(t, 2, cfg.RedisConfig.DB)
	assert.True(t, cfg.PostgresConfig.Enabled)
	assert.Equal(t, "postgres://faktory@db:5432/jobs", cfg.PostgresConfig.Url)
	assert.Equal(t, "worker", cfg.PostgresConfig.Schema)
	assert.Equal(t, 0, cfg.HTTPConfig.Port)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileOverlaysEnv(t *testing.T) {
	base := NewSystemConfig(MapLookup(map[string]string{"REDIS_ADDR": "redis:6379"}))

	cfg, err := LoadFile(filepath.Join("testdata", "worker.yaml"), base)
	require.NoError(t, err)

	assert.True(t, cfg.DebugMode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "tcp://:secret@faktory.internal:7420", cfg.FaktoryConfig.Target)
	assert.Equal(t, []string{"golang", "batch"}, cfg.FaktoryConfig.Labels)
	assert.Equal(t, 10*time.Second, cfg.FaktoryConfig.DialTimeout)
	assert.Equal(t, []string{"critical", "default"}, cfg.WorkerConfig.Queues)
	assert.Equal(t, 4, cfg.WorkerConfig.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.WorkerConfig.HeartbeatInterval)
	assert.Equal(t, time.Second, cfg.WorkerConfig.IdleDelay)
	assert.True(t, cfg.RedisConfig.Enabled)
	assert.False(t, cfg.PostgresConfig.Enabled)
	assert.Equal(t, "faktory", cfg.PostgresConfig.Schema)
	assert.Equal(t, 8082, cfg.HTTPConfig.Port)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "missing.yaml"), nil)
	require.Error(t, err)

	_, err = LoadFile(filepath.Join("testdata", "invalid.yaml"), nil)
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"bad target scheme", func(c *AppConfig) { c.FaktoryConfig.Target = "http://localhost" }},
		{"zero concurrency", func(c *AppConfig) { c.WorkerConfig.Concurrency = 0 }},
		{"zero heartbeat", func(c *AppConfig) { c.WorkerConfig.HeartbeatInterval = 0 }},
		{"negative idle delay", func(c *AppConfig) { c.WorkerConfig.IdleDelay = -time.Second }},
		{"no queues", func(c *AppConfig) { c.WorkerConfig.Queues = nil }},
		{"port out of range", func(c *AppConfig) { c.HTTPConfig.Port = 70000 }},
		{"missing section", func(c *AppConfig) { c.WorkerConfig = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewSystemConfig(MapLookup(map[string]string{}))
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), errs.ErrInvalidInput)
		})
	}
}
