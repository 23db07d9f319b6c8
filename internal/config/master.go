package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
)

const (
	MinPort = 1
	MaxPort = 65535
)

type AppConfig struct {
	DebugMode      bool            `yaml:"debug"`
	LogLevel       string          `yaml:"log_level"`
	FaktoryConfig  *FaktoryConfig  `yaml:"faktory"`
	WorkerConfig   *WorkerConfig   `yaml:"worker"`
	RedisConfig    *RedisConfig    `yaml:"redis"`
	PostgresConfig *PostgresConfig `yaml:"postgres"`
	HTTPConfig     *HTTPConfig     `yaml:"http"`
}

func NewSystemConfig(lookup LookupFunc) *AppConfig {
	return &AppConfig{
		DebugMode:      lookup.Bool("DEBUG_MODE"),
		LogLevel:       lookup.Get("LOG_LEVEL", "info"),
		FaktoryConfig:  NewFaktoryConfig(lookup),
		WorkerConfig:   NewWorkerConfig(lookup),
		RedisConfig:    NewRedisConfig(lookup),
		PostgresConfig: NewPostgresConfig(lookup),
		HTTPConfig:     NewHTTPConfig(lookup),
	}
}

// LoadFile overlays the YAML document at path onto base. Keys absent from the
// file keep their base values.
func LoadFile(path string, base *AppConfig) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if base == nil {
		base = &AppConfig{}
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config file: %w", errs.ErrInvalidInput, err)
	}
	return base, nil
}

// Validate checks the settings the client cannot run without.
func (c *AppConfig) Validate() error {
	if c.FaktoryConfig == nil || c.WorkerConfig == nil || c.HTTPConfig == nil {
		return fmt.Errorf("%w: incomplete configuration", errs.ErrInvalidInput)
	}
	if _, err := domain.ParseAddress(c.FaktoryConfig.Target); err != nil {
		return err
	}
	if c.WorkerConfig.Concurrency <= 0 {
		return fmt.Errorf("%w: worker concurrency must be greater than 0", errs.ErrInvalidInput)
	}
	if c.WorkerConfig.HeartbeatInterval <= 0 {
		return fmt.Errorf("%w: worker heartbeat interval must be greater than 0", errs.ErrInvalidInput)
	}
	if c.WorkerConfig.IdleDelay < 0 {
		return fmt.Errorf("%w: worker idle delay must not be negative", errs.ErrInvalidInput)
	}
	if len(c.WorkerConfig.Queues) == 0 {
		return fmt.Errorf("%w: at least one queue is required", errs.ErrInvalidInput)
	}
	if p := c.HTTPConfig.Port; p != 0 && (p < MinPort || p > MaxPort) {
		return fmt.Errorf("%w: invalid http port: %d (must be between %d and %d)", errs.ErrInvalidInput, p, MinPort, MaxPort)
	}
	return nil
}
